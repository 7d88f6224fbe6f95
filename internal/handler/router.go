package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouterConfig carries everything NewRouter mounts.
type RouterConfig struct {
	Events   *EventHandler
	Intake   *IntakeHandler
	Calendar *CalendarHandler

	// AdminAuth guards /api/admin. When nil the admin routes are not mounted.
	AdminAuth func(http.Handler) http.Handler

	SiteURL     string
	StaticDir   string
	CORSOrigins []string
	Log         *zap.Logger
}

// NewRouter builds the chi router for the site API and static files.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	calendar := cfg.Calendar
	if calendar == nil {
		calendar = NewCalendarHandler(cfg.Events)
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(log))
	r.Use(CORS(cfg.CORSOrigins))

	r.Get("/health", HealthCheck)
	r.Get("/sitemap.xml", cfg.Events.Sitemap(cfg.SiteURL))

	r.Route("/api", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", cfg.Events.ListEvents)
			r.Get("/categories", cfg.Events.ListCategories)
			r.Get("/calendar.ics", calendar.SubscriptionICS)
			r.Get("/{id}", cfg.Events.GetEvent)
			r.Get("/{id}/calendar.ics", calendar.EventICS)
			r.Post("/{id}/rsvp", cfg.Events.RSVP)
		})

		r.Post("/contact", cfg.Intake.Contact)
		r.Post("/membership", cfg.Intake.Membership)
		r.Post("/newsletter", cfg.Intake.Newsletter)
		r.Post("/volunteer", cfg.Intake.Volunteer)

		if cfg.AdminAuth != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Use(cfg.AdminAuth)
				r.Get("/events", cfg.Events.AdminListEvents)
				r.Post("/events", cfg.Events.CreateEvent)
				r.Get("/events/{id}", cfg.Events.AdminGetEvent)
				r.Patch("/events/{id}", cfg.Events.UpdateEvent)
				r.Delete("/events/{id}", cfg.Events.DeleteEvent)
				r.Post("/events/{id}/publish", cfg.Events.TogglePublish)
				r.Post("/events/{id}/attendees", cfg.Events.AddAttendee)
				r.Delete("/events/{id}/attendees", cfg.Events.RemoveAttendee)
			})
		}
	})

	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}
