package handler

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/vsa-campus/vsa-site/internal/service"
	"go.uber.org/zap"
)

// StaticPages are the site's fixed routes, listed in the sitemap.
var StaticPages = []string{"/", "/about", "/events", "/membership", "/volunteer", "/contact", "/gallery", "/game"}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap returns a handler for GET /sitemap.xml listing the static pages
// and every published event.
func (h *EventHandler) Sitemap(baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
		today := time.Now().UTC().Format("2006-01-02")

		for _, p := range StaticPages {
			priority := "0.7"
			if p == "/" {
				priority = "1.0"
			}
			set.URLs = append(set.URLs, sitemapURL{Loc: baseURL + p, LastMod: today, ChangeFreq: "weekly", Priority: priority})
		}

		upcoming, _ := h.svc.Directory(service.ViewUpcoming, "")
		past, _ := h.svc.Directory(service.ViewPast, "")
		for _, e := range append(upcoming, past...) {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        baseURL + "/events/" + e.ID,
				LastMod:    e.UpdatedAt.UTC().Format("2006-01-02"),
				ChangeFreq: "daily",
				Priority:   "0.6",
			})
		}

		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		_, _ = w.Write([]byte(xml.Header))
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(set); err != nil {
			h.log.Error("encode sitemap", zap.Error(err))
		}
	}
}
