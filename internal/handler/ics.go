package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vsa-campus/vsa-site/internal/model"
	"github.com/vsa-campus/vsa-site/internal/service"
)

const (
	icsProductID = "-//VSA//Events//EN"
	icsUIDDomain = "events.vsa-site"
)

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

// CalendarHandler serves iCalendar exports of the directory.
type CalendarHandler struct {
	events *EventHandler
	now    func() time.Time
}

// NewCalendarHandler constructs a CalendarHandler over the event handler's service.
func NewCalendarHandler(events *EventHandler) *CalendarHandler {
	return &CalendarHandler{events: events, now: time.Now}
}

// EventICS handles GET /api/events/{id}/calendar.ics
// Downloads a single published event. ?reminder=true adds a display alarm
// one day before.
func (h *CalendarHandler) EventICS(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.svc.PublicEvent(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.events.log, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=event_%s.ics", event.ID))

	cw := &icsWriter{w: w}
	cw.header(event.Title, false)
	cw.event(event, h.now(), r.URL.Query().Get("reminder") == "true")
	cw.line("END:VCALENDAR")
}

// SubscriptionICS handles GET /api/events/calendar.ics
// A subscription feed of upcoming events: inline, no alarms, hourly refresh hint.
func (h *CalendarHandler) SubscriptionICS(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.svc.Directory(service.ViewUpcoming, r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, h.events.log, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")

	cw := &icsWriter{w: w}
	cw.header("VSA Events", true)
	now := h.now()
	for _, e := range events {
		cw.event(e, now, false)
	}
	cw.line("END:VCALENDAR")
}

// icsWriter writes CRLF-terminated lines and keeps the first write error.
type icsWriter struct {
	w   io.Writer
	err error
}

func (c *icsWriter) line(format string, args ...any) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintf(c.w, format+"\r\n", args...)
}

func (c *icsWriter) header(name string, subscription bool) {
	c.line("BEGIN:VCALENDAR")
	c.line("VERSION:2.0")
	c.line("PRODID:%s", icsProductID)
	c.line("CALSCALE:GREGORIAN")
	if subscription {
		c.line("METHOD:PUBLISH")
		c.line("X-PUBLISHED-TTL:PT1H")
	}
	c.line("X-WR-CALNAME:%s", icsEscaper.Replace(name))
}

func (c *icsWriter) event(e model.Event, now time.Time, reminder bool) {
	c.line("BEGIN:VEVENT")
	c.line("UID:%s@%s", e.ID, icsUIDDomain)
	c.line("DTSTAMP:%s", now.UTC().Format("20060102T150405Z"))

	start, end, timed := eventSpan(e)
	if timed {
		// Floating local time: the event happens at the venue's wall clock.
		c.line("DTSTART:%s", start.Format("20060102T150405"))
		c.line("DTEND:%s", end.Format("20060102T150405"))
	} else {
		c.line("DTSTART;VALUE=DATE:%s", start.Format("20060102"))
		c.line("DTEND;VALUE=DATE:%s", start.AddDate(0, 0, 1).Format("20060102"))
	}

	c.line("SUMMARY:%s", icsEscaper.Replace(e.Title))
	if e.Description != "" {
		c.line("DESCRIPTION:%s", icsEscaper.Replace(e.Description))
	}
	if e.Location != "" {
		c.line("LOCATION:%s", icsEscaper.Replace(e.Location))
	}
	if e.Category != "" {
		c.line("CATEGORIES:%s", strings.ToUpper(string(e.Category)))
	}
	if e.RegistrationLink != "" {
		c.line("URL:%s", e.RegistrationLink)
	}
	c.line("LAST-MODIFIED:%s", e.UpdatedAt.UTC().Format("20060102T150405Z"))

	if reminder {
		c.line("BEGIN:VALARM")
		c.line("ACTION:DISPLAY")
		c.line("DESCRIPTION:Reminder: %s", icsEscaper.Replace(e.Title))
		c.line("TRIGGER:-P1D")
		c.line("END:VALARM")
	}
	c.line("END:VEVENT")
}

// eventSpan combines the event date with its HH:MM start and end times.
// timed is false when the start time is missing or unparseable.
func eventSpan(e model.Event) (start, end time.Time, timed bool) {
	day := e.Date.UTC()
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	st, err := time.Parse("15:04", strings.TrimSpace(e.StartTime))
	if err != nil {
		return day, day, false
	}
	start = day.Add(time.Duration(st.Hour())*time.Hour + time.Duration(st.Minute())*time.Minute)

	et, err := time.Parse("15:04", strings.TrimSpace(e.EndTime))
	if err != nil {
		return start, start.Add(2 * time.Hour), true
	}
	end = day.Add(time.Duration(et.Hour())*time.Hour + time.Duration(et.Minute())*time.Minute)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, true
}
