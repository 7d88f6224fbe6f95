package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vsa-campus/vsa-site/internal/auth"
	"github.com/vsa-campus/vsa-site/internal/catalog"
	"github.com/vsa-campus/vsa-site/internal/model"
	"github.com/vsa-campus/vsa-site/internal/service"
)

type fixture struct {
	router  http.Handler
	catalog *catalog.Catalog
}

func newFixture(t *testing.T, authn *auth.Authenticator) *fixture {
	t.Helper()
	c := catalog.New(nil)
	events := NewEventHandler(service.NewEventService(c, nil), nil)
	cfg := RouterConfig{
		Events:  events,
		Intake:  NewIntakeHandler(service.NewIntakeService("VSA", nil), nil),
		SiteURL: "https://vsa.example.edu",
	}
	if authn != nil {
		cfg.AdminAuth = authn.Middleware
	}
	return &fixture{router: NewRouter(cfg), catalog: c}
}

func (f *fixture) add(t *testing.T, title string, offsetDays int, published bool, capacity int) model.Event {
	t.Helper()
	return f.catalog.Add(model.EventDraft{
		Title:        title,
		Date:         model.NewDate(time.Now().AddDate(0, 0, offsetDays)),
		StartTime:    "18:00",
		EndTime:      "21:00",
		Category:     model.CategorySocial,
		MaxAttendees: capacity,
		IsPublished:  published,
	})
}

func (f *fixture) do(t *testing.T, method, path, body string, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody[map[string]string](t, rec)["status"]; got != "ok" {
		t.Errorf("status field = %q", got)
	}
}

func TestMembership(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantText   string
	}{
		{"missing email", `{"firstName":"Linh","lastName":"Tran"}`, http.StatusBadRequest, "email is required"},
		{"malformed email", `{"firstName":"Linh","lastName":"Tran","email":"not-an-email"}`, http.StatusBadRequest, "not a valid email"},
		{"valid", `{"firstName":"Linh","lastName":"Tran","email":"linh@school.edu"}`, http.StatusOK, "Linh"},
		{"unknown fields tolerated", `{"firstName":"Linh","lastName":"Tran","email":"linh@school.edu","agree":true}`, http.StatusOK, "Linh"},
		{"broken json", `{"firstName":`, http.StatusBadRequest, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/membership", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantStatus == http.StatusOK {
				resp := decodeBody[model.SuccessResponse](t, rec)
				if !resp.Success || !strings.Contains(resp.Message, tt.wantText) {
					t.Errorf("response = %+v", resp)
				}
				return
			}
			resp := decodeBody[model.ErrorResponse](t, rec)
			if !strings.Contains(resp.Error, tt.wantText) {
				t.Errorf("error = %q, want it to contain %q", resp.Error, tt.wantText)
			}
		})
	}
}

func TestIntakeEndpoints(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		path       string
		body       string
		wantStatus int
	}{
		{"/api/contact", `{"name":"An","email":"an@school.edu","message":"Hello"}`, http.StatusOK},
		{"/api/contact", `{"name":"An","email":"an@school.edu"}`, http.StatusBadRequest},
		{"/api/newsletter", `{"email":"an@school.edu"}`, http.StatusOK},
		{"/api/newsletter", `{"email":"an@school"}`, http.StatusBadRequest},
		{"/api/volunteer", `{"name":"An","email":"an@school.edu","availability":"weekends"}`, http.StatusOK},
		{"/api/volunteer", `{"email":"an@school.edu"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("POST %s %s: status = %d, want %d", tt.path, tt.body, rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestListEvents(t *testing.T) {
	f := newFixture(t, nil)
	soon := f.add(t, "Board Game Night", 7, true, 40)
	f.add(t, "Draft Mixer", 3, false, 40)
	old := f.add(t, "Welcome Back Mixer", -30, true, 40)

	rec := f.do(t, http.MethodGet, "/api/events", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	upcoming := decodeBody[[]model.Event](t, rec)
	if len(upcoming) != 1 || upcoming[0].ID != soon.ID {
		t.Errorf("upcoming = %+v", upcoming)
	}

	past := decodeBody[[]model.Event](t, f.do(t, http.MethodGet, "/api/events?view=past", ""))
	if len(past) != 1 || past[0].ID != old.ID {
		t.Errorf("past = %+v", past)
	}

	rec = f.do(t, http.MethodGet, "/api/events?category=gaming", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty category: status %d body %s", rec.Code, rec.Body)
	}

	if rec := f.do(t, http.MethodGet, "/api/events?category=karaoke", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown category status = %d", rec.Code)
	}
}

func TestGetEvent_HidesUnpublished(t *testing.T) {
	f := newFixture(t, nil)
	pub := f.add(t, "Phở Night", 14, true, 80)
	draft := f.add(t, "Secret Planning", 14, false, 10)

	if rec := f.do(t, http.MethodGet, "/api/events/"+pub.ID, ""); rec.Code != http.StatusOK {
		t.Errorf("published: status = %d", rec.Code)
	}
	rec := f.do(t, http.MethodGet, "/api/events/"+draft.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unpublished: status = %d", rec.Code)
	}
	if got := decodeBody[model.ErrorResponse](t, rec).Error; got != "event not found" {
		t.Errorf("error = %q", got)
	}
}

func TestRSVP(t *testing.T) {
	f := newFixture(t, nil)
	e := f.add(t, "Lantern Workshop", 5, true, 1)

	rec := f.do(t, http.MethodPost, "/api/events/"+e.ID+"/rsvp", `{"email":"bao@school.edu"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first rsvp: status = %d body %s", rec.Code, rec.Body)
	}
	if got := decodeBody[model.Event](t, rec).Attendees; got != 1 {
		t.Errorf("attendees = %d, want 1", got)
	}

	rec = f.do(t, http.MethodPost, "/api/events/"+e.ID+"/rsvp", `{"email":"mai@school.edu"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("full event: status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/events/"+e.ID+"/rsvp", `{"email":"nope"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad email: status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/events/missing/rsvp", `{"email":"bao@school.edu"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing event: status = %d", rec.Code)
	}

	if got, _ := f.catalog.Get(e.ID); got.Attendees != 1 {
		t.Errorf("catalog attendees = %d, want 1", got.Attendees)
	}
}

func TestAdminRoutes_NotMountedWithoutAuth(t *testing.T) {
	f := newFixture(t, nil)
	if rec := f.do(t, http.MethodGet, "/api/admin/events", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAdminRoutes(t *testing.T) {
	hash, err := auth.HashPassword("pho-is-life")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	authn, err := auth.New("admin", hash, nil)
	if err != nil {
		t.Fatalf("auth.New: %v", err)
	}
	f := newFixture(t, authn)
	login := func(r *http.Request) { r.SetBasicAuth("admin", "pho-is-life") }

	if rec := f.do(t, http.MethodGet, "/api/admin/events", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no credentials: status = %d", rec.Code)
	}
	wrong := func(r *http.Request) { r.SetBasicAuth("admin", "banh-mi") }
	if rec := f.do(t, http.MethodGet, "/api/admin/events", "", wrong); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d", rec.Code)
	}

	date := time.Now().AddDate(0, 0, 10).Format("2006-01-02")
	rec := f.do(t, http.MethodPost, "/api/admin/events",
		`{"title":"Karaoke Night","date":"`+date+`","category":"social","maxAttendees":2}`, login)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d body %s", rec.Code, rec.Body)
	}
	created := decodeBody[model.Event](t, rec)
	if created.IsPublished || created.Attendees != 0 {
		t.Errorf("created = %+v", created)
	}

	rec = f.do(t, http.MethodPost, "/api/admin/events", `{"title":"x","bogus":1}`, login)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field: status = %d", rec.Code)
	}

	if rec := f.do(t, http.MethodGet, "/api/events/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("draft visible publicly: status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/admin/events/"+created.ID+"/publish", "", login)
	if rec.Code != http.StatusOK || !decodeBody[model.Event](t, rec).IsPublished {
		t.Fatalf("publish: status = %d body %s", rec.Code, rec.Body)
	}

	rec = f.do(t, http.MethodPatch, "/api/admin/events/"+created.ID, `{"location":"Student Union 204"}`, login)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: status = %d body %s", rec.Code, rec.Body)
	}
	if got := decodeBody[model.Event](t, rec); got.Location != "Student Union 204" || got.Title != "Karaoke Night" {
		t.Errorf("patched = %+v", got)
	}

	if rec := f.do(t, http.MethodDelete, "/api/admin/events/"+created.ID+"/attendees", "", login); rec.Code != http.StatusConflict {
		t.Errorf("decrement at zero: status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/api/admin/events/"+created.ID+"/attendees", "", login); rec.Code != http.StatusOK {
		t.Errorf("increment: status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodPatch, "/api/admin/events/"+created.ID, `{"maxAttendees":0}`, login)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("shrink below attendees: status = %d body %s", rec.Code, rec.Body)
	}

	list := decodeBody[[]model.Event](t, f.do(t, http.MethodGet, "/api/admin/events", "", login))
	if len(list) != 1 || list[0].Attendees != 1 {
		t.Errorf("admin list = %+v", list)
	}

	if rec := f.do(t, http.MethodDelete, "/api/admin/events/"+created.ID, "", login); rec.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/admin/events/"+created.ID, "", login); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d", rec.Code)
	}
}

func TestCalendarExport(t *testing.T) {
	f := newFixture(t, nil)
	a := f.add(t, "Tết Festival", 20, true, 350)
	b := f.add(t, "Phở Night; with friends", 10, true, 80)
	f.add(t, "Unpublished", 5, false, 10)
	f.add(t, "Last Year", -40, true, 10)

	rec := f.do(t, http.MethodGet, "/api/events/"+b.ID+"/calendar.ics?reminder=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"UID:" + b.ID + "@" + icsUIDDomain,
		`SUMMARY:Phở Night\; with friends`,
		"T180000\r\n",
		"BEGIN:VALARM",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("event ics missing %q:\n%s", want, body)
		}
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, b.ID) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	feed := f.do(t, http.MethodGet, "/api/events/calendar.ics", "").Body.String()
	if n := strings.Count(feed, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("feed has %d events, want 2:\n%s", n, feed)
	}
	if !strings.Contains(feed, "UID:"+a.ID+"@") || strings.Contains(feed, "VALARM") {
		t.Errorf("unexpected feed:\n%s", feed)
	}
}

func TestEventSpan(t *testing.T) {
	day := model.NewDate(time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name      string
		start     string
		end       string
		wantTimed bool
		wantStart string
		wantEnd   string
	}{
		{"timed", "17:00", "21:30", true, "20260217T170000", "20260217T213000"},
		{"no end", "17:00", "", true, "20260217T170000", "20260217T190000"},
		{"past midnight", "22:00", "01:00", true, "20260217T220000", "20260218T010000"},
		{"all day", "", "", false, "20260217T000000", "20260217T000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, timed := eventSpan(model.Event{Date: day, StartTime: tt.start, EndTime: tt.end})
			if timed != tt.wantTimed {
				t.Fatalf("timed = %v", timed)
			}
			if got := start.Format("20060102T150405"); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format("20060102T150405"); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestSitemap(t *testing.T) {
	f := newFixture(t, nil)
	pub := f.add(t, "Public", 3, true, 10)
	old := f.add(t, "Old", -3, true, 10)
	hidden := f.add(t, "Hidden", 3, false, 10)

	rec := f.do(t, http.MethodGet, "/sitemap.xml", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<loc>https://vsa.example.edu/</loc>",
		"<loc>https://vsa.example.edu/membership</loc>",
		"/events/" + pub.ID,
		"/events/" + old.ID,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap missing %q", want)
		}
	}
	if strings.Contains(body, hidden.ID) {
		t.Errorf("sitemap lists unpublished event %s", hidden.ID)
	}
}
