// Package model defines the core domain types for the organization site.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Category is the closed set of event kinds shown in the directory.
type Category string

const (
	CategoryCultural    Category = "cultural"
	CategoryCulinary    Category = "culinary"
	CategoryEducational Category = "educational"
	CategoryGaming      Category = "gaming"
	CategoryAcademic    Category = "academic"
	CategorySocial      Category = "social"
	CategoryWorkshop    Category = "workshop"
)

var categories = []Category{
	CategoryCultural,
	CategoryCulinary,
	CategoryEducational,
	CategoryGaming,
	CategoryAcademic,
	CategorySocial,
	CategoryWorkshop,
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory normalises s and returns the matching category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Organizer is the optional contact person for an event.
type Organizer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Event represents one organization activity in the catalog.
type Event struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Date             Date       `json:"date"`
	StartTime        string     `json:"startTime"`
	EndTime          string     `json:"endTime"`
	Location         string     `json:"location"`
	Category         Category   `json:"category"`
	Featured         bool       `json:"featured"`
	Attendees        int        `json:"attendees"`
	MaxAttendees     int        `json:"maxAttendees"`
	Image            string     `json:"image"`
	Price            string     `json:"price"`
	Highlights       []string   `json:"highlights"`
	RSVPDeadline     Date       `json:"rsvpDeadline"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	IsPublished      bool       `json:"isPublished"`
	Organizer        *Organizer `json:"organizer,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	RegistrationLink string     `json:"registrationLink,omitempty"`
	EmbedCode        string     `json:"embedCode,omitempty"`
}

// Remaining returns the number of open spots.
func (e *Event) Remaining() int {
	if e.MaxAttendees <= e.Attendees {
		return 0
	}
	return e.MaxAttendees - e.Attendees
}

// IsFull returns true when no spots remain.
func (e *Event) IsFull() bool {
	return e.Attendees >= e.MaxAttendees
}

// EventDraft is the payload for adding an event. The catalog assigns the
// identifier, attendee count and timestamps.
type EventDraft struct {
	Title            string     `json:"title" validate:"required"`
	Description      string     `json:"description"`
	Date             Date       `json:"date"`
	StartTime        string     `json:"startTime"`
	EndTime          string     `json:"endTime"`
	Location         string     `json:"location"`
	Category         Category   `json:"category"`
	Featured         bool       `json:"featured"`
	MaxAttendees     int        `json:"maxAttendees" validate:"min=0,max=100000"`
	Image            string     `json:"image"`
	Price            string     `json:"price"`
	Highlights       []string   `json:"highlights"`
	RSVPDeadline     Date       `json:"rsvpDeadline"`
	IsPublished      bool       `json:"isPublished"`
	Organizer        *Organizer `json:"organizer,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	RegistrationLink string     `json:"registrationLink,omitempty"`
	EmbedCode        string     `json:"embedCode,omitempty"`
}

// EventPatch is a partial update. Nil fields are left untouched.
type EventPatch struct {
	Title            *string    `json:"title,omitempty"`
	Description      *string    `json:"description,omitempty"`
	Date             *Date      `json:"date,omitempty"`
	StartTime        *string    `json:"startTime,omitempty"`
	EndTime          *string    `json:"endTime,omitempty"`
	Location         *string    `json:"location,omitempty"`
	Category         *Category  `json:"category,omitempty"`
	Featured         *bool      `json:"featured,omitempty"`
	MaxAttendees     *int       `json:"maxAttendees,omitempty"`
	Image            *string    `json:"image,omitempty"`
	Price            *string    `json:"price,omitempty"`
	Highlights       *[]string  `json:"highlights,omitempty"`
	RSVPDeadline     *Date      `json:"rsvpDeadline,omitempty"`
	IsPublished      *bool      `json:"isPublished,omitempty"`
	Organizer        *Organizer `json:"organizer,omitempty"`
	Tags             *[]string  `json:"tags,omitempty"`
	RegistrationLink *string    `json:"registrationLink,omitempty"`
	EmbedCode        *string    `json:"embedCode,omitempty"`
}

// RSVPRequest is the payload for reserving a spot at an event.
type RSVPRequest struct {
	Email string `json:"email"`
}

// ContactRequest is the contact form payload.
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,orgemail"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

// MembershipRequest is the membership sign-up payload.
type MembershipRequest struct {
	FirstName      string   `json:"firstName" validate:"required"`
	LastName       string   `json:"lastName" validate:"required"`
	Email          string   `json:"email" validate:"required,orgemail"`
	Phone          string   `json:"phone"`
	StudentID      string   `json:"studentId"`
	Major          string   `json:"major"`
	Year           string   `json:"year"`
	Interests      []string `json:"interests"`
	HowDidYouHear  string   `json:"howDidYouHear"`
	JoinNewsletter bool     `json:"joinNewsletter"`
}

// NewsletterRequest is the newsletter subscription payload.
type NewsletterRequest struct {
	Email string `json:"email" validate:"required,orgemail"`
	Name  string `json:"name"`
}

// VolunteerRequest is the volunteer sign-up payload.
type VolunteerRequest struct {
	Name         string   `json:"name" validate:"required"`
	Email        string   `json:"email" validate:"required,orgemail"`
	Phone        string   `json:"phone"`
	Interests    []string `json:"interests"`
	Availability string   `json:"availability"`
	Experience   string   `json:"experience"`
	EventID      string   `json:"eventId"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse acknowledges an accepted submission.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
