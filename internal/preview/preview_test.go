package preview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/q6kkhvmy6s/rsvp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexHTML = `<html><head>
<title>Reservaciones</title>
<meta property="og:title" content="Reservaciones" />
<meta property="og:description" content="default" />
<meta property="og:image" content="https://cdn.test/logo.png" />
<meta property="twitter:title" content="Reservaciones" />
<meta property="twitter:description" content="default" />
<meta property="twitter:image" content="https://cdn.test/logo.png" />
</head><body><div id="root"></div></body></html>`

const (
	crawlerUA = "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)"
	browserUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36"
)

type stubEvents struct {
	events map[string]*models.Event
	err    error
	calls  int
}

func (s *stubEvents) PublicSummary(ctx context.Context, id string) (*models.Event, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	e, ok := s.events[id]
	if !ok {
		return nil, errors.New("event not found")
	}
	return e, nil
}

func newHosting(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(indexHTML), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "static", "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static", "js", "main.js"), []byte("console.log(1)"), 0o644))
	return dir
}

func serve(t *testing.T, h *Handler, target, ua string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("User-Agent", ua)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Serve(e.NewContext(req, rec)))
	return rec
}

func testConfig(dir string) Config {
	return Config{
		HostingDir:         dir,
		DefaultTitle:       "Reservaciones",
		DefaultDescription: "Create reservations for your favorite events",
		DefaultImage:       "https://cdn.test/logo.png",
	}
}

func TestIsCrawler(t *testing.T) {
	assert.True(t, IsCrawler(crawlerUA, DefaultCrawlers))
	assert.True(t, IsCrawler("whatsapp/2.23", DefaultCrawlers))
	assert.True(t, IsCrawler("Mozilla/5.0 (compatible; Twitterbot/1.0)", DefaultCrawlers))
	assert.False(t, IsCrawler(browserUA, DefaultCrawlers))
	assert.False(t, IsCrawler("", DefaultCrawlers))
	assert.True(t, IsCrawler("Discordbot/2.0", []string{"discordbot"}))
}

func TestEventID(t *testing.T) {
	assert.Equal(t, "ev-1", EventID("/reservation/ev-1"))
	assert.Equal(t, "ev-2", EventID("/join/ev-2"))
	assert.Equal(t, "ev-3", EventID("/reservation/ev-3/extra"))
	assert.Empty(t, EventID("/dashboard"))
	assert.Empty(t, EventID("/reservation/"))
}

func TestRewrite_EscapesAndReplacesLiterally(t *testing.T) {
	out := Rewrite(indexHTML, Meta{
		Title:       `Jazz & "Blues" $1`,
		Description: "<b>late</b>",
		Image:       "https://img.test/a.png?x=1&y=2",
	})

	assert.Contains(t, out, `<title>Jazz &amp; &#34;Blues&#34; $1</title>`)
	assert.Contains(t, out, `<meta property="og:title" content="Jazz &amp; &#34;Blues&#34; $1" />`)
	assert.Contains(t, out, `<meta property="twitter:description" content="&lt;b&gt;late&lt;/b&gt;" />`)
	assert.Contains(t, out, `<meta property="og:image" content="https://img.test/a.png?x=1&amp;y=2" />`)
	assert.NotContains(t, out, `content="default"`)
}

func TestServe_CrawlerGetsEventMeta(t *testing.T) {
	dir := newHosting(t)
	events := &stubEvents{events: map[string]*models.Event{
		"ev-1": {ID: "ev-1", Title: "Noche de Jazz", Description: "Música en vivo.", ImageURL: "/uploads/ev-1/cover.png"},
	}}
	h := New(testConfig(dir), events)

	rec := serve(t, h, "/reservation/ev-1?ref=prom-1", crawlerUA)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<title>Noche de Jazz</title>`)
	assert.Contains(t, body, `<meta property="og:description" content="Música en vivo. Haz una reservación haciendo clic en este link." />`)
	assert.Contains(t, body, `<meta property="twitter:image" content="/uploads/ev-1/cover.png" />`)
}

func TestServe_DefaultsForPlaceholderAndEmptyDescription(t *testing.T) {
	dir := newHosting(t)
	events := &stubEvents{events: map[string]*models.Event{
		"ev-1": {ID: "ev-1", Title: "Gala", ImageURL: models.ImagePlaceholder},
	}}
	h := New(testConfig(dir), events)

	body := serve(t, h, "/join/ev-1", crawlerUA).Body.String()

	assert.Contains(t, body, `<title>Gala</title>`)
	assert.Contains(t, body, `content="Create reservations for your favorite events"`)
	assert.Contains(t, body, `<meta property="og:image" content="https://cdn.test/logo.png" />`)
}

func TestServe_BrowserGetsUntouchedIndex(t *testing.T) {
	dir := newHosting(t)
	events := &stubEvents{events: map[string]*models.Event{"ev-1": {ID: "ev-1", Title: "Gala"}}}
	h := New(testConfig(dir), events)

	rec := serve(t, h, "/reservation/ev-1", browserUA)

	assert.Equal(t, indexHTML, rec.Body.String())
	assert.Zero(t, events.calls)
}

func TestServe_LookupFailureFallsBackToDefault(t *testing.T) {
	dir := newHosting(t)
	h := New(testConfig(dir), &stubEvents{err: errors.New("db down")})

	rec := serve(t, h, "/reservation/ev-1", crawlerUA)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, indexHTML, rec.Body.String())
}

func TestServe_StaticAssets(t *testing.T) {
	dir := newHosting(t)
	h := New(testConfig(dir), &stubEvents{})

	rec := serve(t, h, "/static/js/main.js", browserUA)
	assert.Equal(t, "application/javascript", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "console.log(1)", rec.Body.String())

	// missing asset falls through to the app shell
	rec = serve(t, h, "/static/js/missing.js", browserUA)
	assert.Equal(t, indexHTML, rec.Body.String())

	rec = serve(t, h, "/../../etc/passwd.txt", browserUA)
	assert.Equal(t, indexHTML, rec.Body.String())
}

func TestServe_MissingIndex(t *testing.T) {
	h := New(testConfig(t.TempDir()), &stubEvents{})

	rec := serve(t, h, "/", browserUA)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, MsgConfigError, rec.Body.String())
}

type panicEvents struct{}

func (panicEvents) PublicSummary(ctx context.Context, id string) (*models.Event, error) {
	panic("boom")
}

func TestServe_PanicIsAGenericError(t *testing.T) {
	h := New(testConfig(newHosting(t)), panicEvents{})

	rec := serve(t, h, "/join/ev-1", crawlerUA)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, MsgFatalError, rec.Body.String())
}
