package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/unrolled/render"

	"github.com/patrickashi/vi-predict/internal/services"
	"github.com/patrickashi/vi-predict/internal/session"
	"github.com/patrickashi/vi-predict/internal/websocket"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Account    services.AccountServicer
	Onboarding services.OnboardingServicer
	Fixtures   services.FixturesServicer
	Leagues    services.LeaguesServicer
	Stats      services.StatsServicer
	Sessions   *session.Store
	Hub        *websocket.Hub
	Log        HTTPLogger

	render       *render.Render
	staticServer http.Handler
	baseURL      string
}

// New creates a new Handlers instance with all dependencies
func New(
	account services.AccountServicer,
	onboarding services.OnboardingServicer,
	fixtures services.FixturesServicer,
	leagues services.LeaguesServicer,
	stats services.StatsServicer,
	sessions *session.Store,
	hub *websocket.Hub,
	templatesFS embed.FS,
	staticServer http.Handler,
	baseURL string,
	log HTTPLogger,
) *Handlers {
	return &Handlers{
		Account:      account,
		Onboarding:   onboarding,
		Fixtures:     fixtures,
		Leagues:      leagues,
		Stats:        stats,
		Sessions:     sessions,
		Hub:          hub,
		Log:          log,
		render:       newRender(templatesFS),
		staticServer: staticServer,
		baseURL:      baseURL,
	}
}

func newRender(templatesFS embed.FS) *render.Render {
	return render.New(render.Options{
		Directory: "templates",
		Layout:    "layout",
		FileSystem: &render.EmbedFileSystem{
			FS: templatesFS,
		},
		Funcs: []template.FuncMap{
			{
				"dict": dictFunc,
			},
		},
	})
}

// dictFunc builds a map from key/value pairs so templates can pass grouped
// data to sub-templates.
func dictFunc(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict requires an even number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// Page carries the fields every template's layout needs
type Page struct {
	Title    string
	Active   string
	UserName string
	Flash    string
	Error    string
}

// page builds the layout fields for an authenticated request
func (h *Handlers) page(r *http.Request, title, active string) Page {
	p := Page{
		Title:  title,
		Active: active,
		Flash:  r.URL.Query().Get("flash"),
		Error:  r.URL.Query().Get("error"),
	}
	if sess, ok := session.FromContext(r.Context()); ok {
		p.UserName = h.Account.DisplayName(r.Context(), sess.Token)
	}
	return p
}

// errorMessage extracts the display message from a service or backend error
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	if reqErr, ok := predictapi.AsRequestError(err); ok {
		return reqErr.Message
	}
	return err.Error()
}
