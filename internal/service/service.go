// Package service implements business rules and validation between the
// HTTP handlers and the event catalog.
package service

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vsa-campus/vsa-site/internal/catalog"
	"github.com/vsa-campus/vsa-site/internal/model"
	"go.uber.org/zap"
)

// MaxCapacity is the largest maxAttendees an event may have.
const MaxCapacity = 100_000

// ErrRSVPClosed is returned when the RSVP deadline has passed.
var ErrRSVPClosed = errors.New("rsvp is closed for this event")

// Directory views accepted by EventService.Directory.
const (
	ViewUpcoming = "upcoming"
	ViewPast     = "past"
	ViewFeatured = "featured"
)

// EventService orchestrates event operations for the public directory and
// the admin console.
type EventService struct {
	catalog  *catalog.Catalog
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

// NewEventService constructs an EventService over c.
func NewEventService(c *catalog.Catalog, log *zap.Logger) *EventService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventService{catalog: c, validate: newValidator(), log: log, now: time.Now}
}

// Directory returns the published events for a view, optionally narrowed to
// one category. An empty view means upcoming.
func (s *EventService) Directory(view, category string) ([]model.Event, error) {
	var events []model.Event
	switch strings.ToLower(strings.TrimSpace(view)) {
	case "", ViewUpcoming:
		events = s.catalog.Upcoming()
	case ViewPast:
		events = s.catalog.Past()
	case ViewFeatured:
		events = s.catalog.Featured()
	default:
		return nil, invalid("view", "view must be one of %s, %s, %s", ViewUpcoming, ViewPast, ViewFeatured)
	}

	if strings.TrimSpace(category) == "" {
		return events, nil
	}
	c, err := model.ParseCategory(category)
	if err != nil {
		return nil, invalid("category", "%s", err.Error())
	}
	filtered := events[:0]
	for _, e := range events {
		if e.Category == c {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// PublicEvent returns a published event. Unpublished events are reported
// as not found.
func (s *EventService) PublicEvent(id string) (model.Event, error) {
	e, ok := s.catalog.Get(id)
	if !ok || !e.IsPublished {
		return model.Event{}, catalog.ErrNotFound
	}
	return e, nil
}

// RSVP reserves one spot at a published event.
func (s *EventService) RSVP(id string, req model.RSVPRequest) (model.Event, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		return model.Event{}, invalid("email", "email is required")
	}
	if !IsValidEmail(email) {
		return model.Event{}, invalid("email", "email is not a valid email address")
	}

	e, err := s.PublicEvent(id)
	if err != nil {
		return model.Event{}, err
	}
	if !e.RSVPDeadline.IsZero() && s.now().After(rsvpCutoff(e.RSVPDeadline)) {
		return model.Event{}, ErrRSVPClosed
	}

	updated, err := s.catalog.IncrementAttendees(id)
	if err != nil {
		return model.Event{}, err
	}
	s.log.Info("rsvp accepted",
		zap.String("event_id", id),
		zap.String("email", email),
		zap.Int("attendees", updated.Attendees),
		zap.Int("max_attendees", updated.MaxAttendees),
	)
	return updated, nil
}

// rsvpCutoff treats a date-only deadline as open through the end of that day.
func rsvpCutoff(d model.Date) time.Time {
	if d.DateOnly() {
		return d.AddDate(0, 0, 1)
	}
	return d.Time
}

// ─── Admin operations ─────────────────────────────────────────────────────────

// ListAll returns every event, published or not.
func (s *EventService) ListAll() []model.Event {
	return s.catalog.All()
}

// GetEvent returns any event by id.
func (s *EventService) GetEvent(id string) (model.Event, error) {
	e, ok := s.catalog.Get(id)
	if !ok {
		return model.Event{}, catalog.ErrNotFound
	}
	return e, nil
}

// CreateEvent validates the draft and adds it to the catalog.
func (s *EventService) CreateEvent(draft model.EventDraft) (model.Event, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	if err := check(s.validate, draft); err != nil {
		return model.Event{}, err
	}
	if draft.Date.IsZero() {
		return model.Event{}, invalid("date", "date is required")
	}
	c, err := model.ParseCategory(string(draft.Category))
	if err != nil {
		return model.Event{}, invalid("category", "%s", err.Error())
	}
	draft.Category = c
	if draft.Organizer != nil && draft.Organizer.Email != "" && !IsValidEmail(draft.Organizer.Email) {
		return model.Event{}, invalid("organizer.email", "organizer.email is not a valid email address")
	}

	e := s.catalog.Add(draft)
	s.log.Info("event created", zap.String("event_id", e.ID), zap.String("title", e.Title))
	return e, nil
}

// UpdateEvent validates the supplied fields and merges them.
func (s *EventService) UpdateEvent(id string, patch model.EventPatch) (model.Event, error) {
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return model.Event{}, invalid("title", "title is required")
		}
		patch.Title = &t
	}
	if patch.Category != nil {
		c, err := model.ParseCategory(string(*patch.Category))
		if err != nil {
			return model.Event{}, invalid("category", "%s", err.Error())
		}
		patch.Category = &c
	}
	if patch.Date != nil && patch.Date.IsZero() {
		return model.Event{}, invalid("date", "date is required")
	}
	if patch.MaxAttendees != nil {
		n := *patch.MaxAttendees
		if n < 0 || n > MaxCapacity {
			return model.Event{}, invalid("maxAttendees", "maxAttendees must be between 0 and %d", MaxCapacity)
		}
	}
	if patch.Organizer != nil && patch.Organizer.Email != "" && !IsValidEmail(patch.Organizer.Email) {
		return model.Event{}, invalid("organizer.email", "organizer.email is not a valid email address")
	}

	e, err := s.catalog.Update(id, patch)
	if errors.Is(err, catalog.ErrCapacityBelowAttendees) {
		return model.Event{}, invalid("maxAttendees", "maxAttendees cannot be below the current attendee count (%d)", e.Attendees)
	}
	if err != nil {
		return model.Event{}, err
	}
	s.log.Info("event updated", zap.String("event_id", id))
	return e, nil
}

// DeleteEvent removes an event.
func (s *EventService) DeleteEvent(id string) error {
	if err := s.catalog.Remove(id); err != nil {
		return err
	}
	s.log.Info("event deleted", zap.String("event_id", id))
	return nil
}

// TogglePublish flips an event's published flag.
func (s *EventService) TogglePublish(id string) (model.Event, error) {
	e, err := s.catalog.TogglePublish(id)
	if err != nil {
		return model.Event{}, err
	}
	s.log.Info("event publish toggled", zap.String("event_id", id), zap.Bool("published", e.IsPublished))
	return e, nil
}

// AddAttendee increments attendance.
func (s *EventService) AddAttendee(id string) (model.Event, error) {
	return s.catalog.IncrementAttendees(id)
}

// RemoveAttendee decrements attendance.
func (s *EventService) RemoveAttendee(id string) (model.Event, error) {
	return s.catalog.DecrementAttendees(id)
}
