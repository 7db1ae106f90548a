// Package preview serves the single-page app and, for link-preview crawlers,
// rewrites its meta tags so shared event links unfurl with the event's title,
// description and image.
package preview

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/q6kkhvmy6s/rsvp/internal/models"
	"github.com/q6kkhvmy6s/rsvp/pkg/logger"
	"go.uber.org/zap"
)

const (
	MsgConfigError = "Server configuration error. Please contact support."
	MsgFatalError  = "An error occurred. Please try again later."

	descriptionSuffix = " Haz una reservación haciendo clic en este link."
)

var DefaultCrawlers = []string{
	"facebookexternalhit",
	"WhatsApp",
	"Twitterbot",
	"LinkedInBot",
	"Slackbot",
	"TelegramBot",
}

var contentTypes = map[string]string{
	".js":    "application/javascript",
	".css":   "text/css",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".ico":   "image/x-icon",
	".svg":   "image/svg+xml",
	".json":  "application/json",
	".txt":   "text/plain",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".eot":   "application/vnd.ms-fontobject",
}

var eventPath = regexp.MustCompile(`/(?:reservation|join)/([^/?]+)`)

var metaTags = []struct {
	re  *regexp.Regexp
	tpl string
	val func(Meta) string
}{
	{regexp.MustCompile(`<meta property="og:title" content="[^"]*" />`), `<meta property="og:title" content="%s" />`, func(m Meta) string { return m.Title }},
	{regexp.MustCompile(`<meta property="og:description" content="[^"]*" />`), `<meta property="og:description" content="%s" />`, func(m Meta) string { return m.Description }},
	{regexp.MustCompile(`<meta property="og:image" content="[^"]*" />`), `<meta property="og:image" content="%s" />`, func(m Meta) string { return m.Image }},
	{regexp.MustCompile(`<meta property="twitter:title" content="[^"]*" />`), `<meta property="twitter:title" content="%s" />`, func(m Meta) string { return m.Title }},
	{regexp.MustCompile(`<meta property="twitter:description" content="[^"]*" />`), `<meta property="twitter:description" content="%s" />`, func(m Meta) string { return m.Description }},
	{regexp.MustCompile(`<meta property="twitter:image" content="[^"]*" />`), `<meta property="twitter:image" content="%s" />`, func(m Meta) string { return m.Image }},
	{regexp.MustCompile(`<title>[^<]*</title>`), `<title>%s</title>`, func(m Meta) string { return m.Title }},
}

// EventSource looks events up by id.
type EventSource interface {
	PublicSummary(ctx context.Context, id string) (*models.Event, error)
}

type Config struct {
	HostingDir         string
	Crawlers           []string
	DefaultTitle       string
	DefaultDescription string
	DefaultImage       string
}

// Meta is the preview content written into the document head.
type Meta struct {
	Title       string
	Description string
	Image       string
}

type Handler struct {
	cfg    Config
	events EventSource
}

func New(cfg Config, events EventSource) *Handler {
	if len(cfg.Crawlers) == 0 {
		cfg.Crawlers = DefaultCrawlers
	}
	return &Handler{cfg: cfg, events: events}
}

// Serve answers every GET that is not an API route: known static assets are
// served from the hosting directory, everything else gets index.html.
func (h *Handler) Serve(c echo.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("preview panic", zap.Any("panic", r), zap.String("path", c.Request().URL.Path))
			err = c.String(http.StatusInternalServerError, MsgFatalError)
		}
	}()

	urlPath := c.Request().URL.Path
	if ctype, ok := contentTypes[path.Ext(urlPath)]; ok {
		if b, err := os.ReadFile(h.hostingPath(urlPath)); err == nil {
			return c.Blob(http.StatusOK, ctype, b)
		}
	}

	raw, err := os.ReadFile(filepath.Join(h.cfg.HostingDir, "index.html"))
	if err != nil {
		logger.Log.Error("index.html unavailable", zap.String("dir", h.cfg.HostingDir), zap.Error(err))
		return c.String(http.StatusInternalServerError, MsgConfigError)
	}
	doc := string(raw)

	if id := EventID(urlPath); id != "" && IsCrawler(c.Request().UserAgent(), h.cfg.Crawlers) {
		event, err := h.events.PublicSummary(c.Request().Context(), id)
		if err != nil {
			logger.Log.Warn("preview event lookup failed", zap.String("event_id", id), zap.Error(err))
		} else {
			doc = Rewrite(doc, h.metaFor(event))
		}
	}

	return c.HTML(http.StatusOK, doc)
}

// hostingPath resolves a request path inside the hosting directory. Cleaning
// the rooted path first keeps ".." segments from escaping it.
func (h *Handler) hostingPath(urlPath string) string {
	return filepath.Join(h.cfg.HostingDir, filepath.FromSlash(path.Clean("/"+urlPath)))
}

func (h *Handler) metaFor(e *models.Event) Meta {
	m := Meta{Title: e.Title, Description: h.cfg.DefaultDescription, Image: h.cfg.DefaultImage}
	if m.Title == "" {
		m.Title = h.cfg.DefaultTitle
	}
	if e.Description != "" {
		m.Description = e.Description + descriptionSuffix
	}
	if e.HasImage() {
		m.Image = e.ImageURL
	}
	return m
}

// IsCrawler matches the user agent against the patterns as case-insensitive
// substrings.
func IsCrawler(userAgent string, patterns []string) bool {
	ua := strings.ToLower(userAgent)
	for _, p := range patterns {
		if p != "" && strings.Contains(ua, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// EventID extracts the event id from a /reservation/<id> or /join/<id> path.
func EventID(urlPath string) string {
	if m := eventPath.FindStringSubmatch(urlPath); m != nil {
		return m[1]
	}
	return ""
}

// Rewrite replaces the first occurrence of each preview tag. Values are
// HTML-escaped and inserted literally.
func Rewrite(doc string, m Meta) string {
	for _, tag := range metaTags {
		loc := tag.re.FindStringIndex(doc)
		if loc == nil {
			continue
		}
		repl := fmt.Sprintf(tag.tpl, html.EscapeString(tag.val(m)))
		doc = doc[:loc[0]] + repl + doc[loc[1]:]
	}
	return doc
}
