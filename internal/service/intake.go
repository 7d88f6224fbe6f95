package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vsa-campus/vsa-site/internal/model"
	"go.uber.org/zap"
)

// IntakeService validates the public form submissions. Submissions are
// logged and acknowledged; nothing is stored.
type IntakeService struct {
	validate *validator.Validate
	log      *zap.Logger
	orgName  string
}

// NewIntakeService constructs an IntakeService. orgName appears in the
// acknowledgment messages.
func NewIntakeService(orgName string, log *zap.Logger) *IntakeService {
	if log == nil {
		log = zap.NewNop()
	}
	if orgName == "" {
		orgName = "VSA"
	}
	return &IntakeService{validate: newValidator(), log: log.Named("intake"), orgName: orgName}
}

// Contact handles the contact form.
func (s *IntakeService) Contact(req model.ContactRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if err := check(s.validate, req); err != nil {
		return "", err
	}

	s.log.Info("contact form submission",
		zap.String("name", req.Name),
		zap.String("email", req.Email),
		zap.String("subject", req.Subject),
		zap.Int("message_length", len(req.Message)),
	)
	return fmt.Sprintf("Thanks for reaching out, %s! We'll get back to you soon.", req.Name), nil
}

// Membership handles the membership sign-up form.
func (s *IntakeService) Membership(req model.MembershipRequest) (string, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = normalizeEmail(req.Email)
	if err := check(s.validate, req); err != nil {
		return "", err
	}

	s.log.Info("membership application",
		zap.String("first_name", req.FirstName),
		zap.String("last_name", req.LastName),
		zap.String("email", req.Email),
		zap.String("major", req.Major),
		zap.String("year", req.Year),
		zap.Strings("interests", req.Interests),
		zap.Bool("join_newsletter", req.JoinNewsletter),
	)
	return fmt.Sprintf("Welcome to %s, %s! Your membership application has been received.", s.orgName, req.FirstName), nil
}

// Newsletter handles newsletter subscriptions.
func (s *IntakeService) Newsletter(req model.NewsletterRequest) (string, error) {
	req.Email = normalizeEmail(req.Email)
	if err := check(s.validate, req); err != nil {
		return "", err
	}

	s.log.Info("newsletter subscription", zap.String("email", req.Email))
	return "You're subscribed! Look out for our next newsletter.", nil
}

// Volunteer handles the volunteer sign-up form.
func (s *IntakeService) Volunteer(req model.VolunteerRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := check(s.validate, req); err != nil {
		return "", err
	}

	s.log.Info("volunteer sign-up",
		zap.String("name", req.Name),
		zap.String("email", req.Email),
		zap.Strings("interests", req.Interests),
		zap.String("availability", req.Availability),
		zap.String("event_id", req.EventID),
	)
	return fmt.Sprintf("Thank you for volunteering, %s! Our team will contact you with next steps.", req.Name), nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
