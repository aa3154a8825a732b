package web

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/seanblong/repofinder/internal/finder"
	"github.com/seanblong/repofinder/internal/github"
	"github.com/seanblong/repofinder/pkg/models"
)

// Server renders the finder over HTTP. Every request gets its own controller, so no
// selection or result is shared between requests.
type Server struct {
	Searcher        github.Searcher
	DefaultLanguage finder.Language
	Timeout         time.Duration
	Logger          zerolog.Logger

	// Picker overrides the random pick; nil keeps the controller default.
	Picker finder.Picker
}

// NewServer creates a new server with the provided searcher and logger
func NewServer(s github.Searcher, lang finder.Language, timeout time.Duration, logger zerolog.Logger) *Server {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Server{
		Searcher:        s,
		DefaultLanguage: lang,
		Timeout:         timeout,
		Logger:          logger,
	}
}

// RandomResponse is the JSON body of /api/random.
type RandomResponse struct {
	State      string             `json:"state"`
	Language   string             `json:"language"`
	Message    string             `json:"message,omitempty"`
	Repository *models.Repository `json:"repository,omitempty"`
}

// LanguageOption is one entry of /api/languages.
type LanguageOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Handler returns the routes wrapped in zerolog request and access logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	mux.HandleFunc("/api/languages", s.handleLanguages)
	mux.HandleFunc("/api/random", s.handleRandom)
	mux.HandleFunc("/", s.handlePage)

	logger := s.Logger
	return hlog.NewHandler(logger)(
		hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
			logger.Info().Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Int("size", size).Dur("dur", dur).Msg("http")
		})(mux),
	)
}

func (s *Server) controller(lang string) (*finder.Controller, error) {
	opts := []finder.Option{
		finder.WithLanguage(s.DefaultLanguage),
		finder.WithLogger(s.Logger),
		finder.WithPicker(s.Picker),
	}
	c := finder.New(s.Searcher, opts...)
	if lang != "" {
		if err := c.SelectLanguage(lang); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	out := make([]LanguageOption, 0, len(finder.Languages()))
	for _, l := range finder.Languages() {
		out = append(out, LanguageOption{ID: l.String(), Label: l.Label()})
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	c, err := s.controller(r.URL.Query().Get("language"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.Timeout)
	defer cancel()
	v := c.FetchRandom(ctx)

	resp := RandomResponse{
		State:      v.Kind.String(),
		Language:   c.Language().String(),
		Message:    v.Text(),
		Repository: v.Repository,
	}
	status := http.StatusOK
	if v.Kind == finder.KindError {
		status = http.StatusBadGateway
	}

	hlog.FromRequest(r).Info().Str("path", "/api/random").Str("language", resp.Language).Str("state", resp.State).Msg("served")
	writeJSON(w, r, status, resp)
}

type pageData struct {
	Languages []LanguageOption
	Selected  string
	FetchText string
	View      finder.ViewState
	Badges    []string
	Refresh   string
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	c, err := s.controller(q.Get("language"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	v := c.View()
	if q.Get("fetch") != "" {
		ctx, cancel := context.WithTimeout(r.Context(), s.Timeout)
		defer cancel()
		v = c.FetchRandom(ctx)
	}

	data := pageData{
		Selected:  c.Language().String(),
		FetchText: finder.FetchLabel,
		View:      v,
		Refresh:   finder.RefreshLabel,
	}
	for _, l := range finder.Languages() {
		data.Languages = append(data.Languages, LanguageOption{ID: l.String(), Label: l.Label()})
	}
	if v.Repository != nil {
		data.Badges = finder.Badges(*v.Repository)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render page")
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to encode response")
	}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>GitHub Repository Finder</title>
<style>
body{font-family:sans-serif;background:#f3f4f6;display:flex;flex-direction:column;align-items:center;padding-top:4rem}
.card{background:#fff;border-radius:.5rem;box-shadow:0 1px 4px rgba(0,0,0,.15);padding:1.5rem;margin-top:1.5rem;max-width:36rem;width:100%}
.badge{display:inline-block;border-radius:999px;padding:.25rem .75rem;font-size:.85rem;font-weight:600;margin-right:.5rem}
.stars{background:#fde047}.forks{background:#86efac}.issues{background:#fca5a5}
.error{color:#ef4444}.muted{color:#4b5563}
button{background:#3b82f6;color:#fff;font-weight:700;border:0;border-radius:.375rem;padding:.5rem 1rem;margin-top:1rem}
</style>
</head>
<body>
<h1>GitHub Repository Finder</h1>
<form method="get" action="/">
<select name="language">
{{- range .Languages}}
<option value="{{.ID}}"{{if eq .ID $.Selected}} selected{{end}}>{{.Label}}</option>
{{- end}}
</select>
<input type="hidden" name="fetch" value="1">
<button type="submit">{{.FetchText}}</button>
</form>
{{- with .View}}
{{- if eq .Kind.String "loading"}}
<p class="muted">{{.Text}}</p>
{{- else if eq .Kind.String "error"}}
<p class="error">{{.Text}}</p>
{{- else if eq .Kind.String "empty"}}
<p class="muted">{{.Text}}</p>
{{- else if eq .Kind.String "found"}}
<div class="card">
<h3>{{.Repository.Name}}</h3>
<p class="muted">{{.Repository.Description}}</p>
<div>
{{- range $i, $b := $.Badges}}
<span class="badge {{if eq $i 0}}stars{{else if eq $i 1}}forks{{else}}issues{{end}}">{{$b}}</span>
{{- end}}
</div>
<form method="get" action="/">
<input type="hidden" name="language" value="{{$.Selected}}">
<input type="hidden" name="fetch" value="1">
<button type="submit">{{$.Refresh}}</button>
</form>
</div>
{{- end}}
{{- end}}
</body>
</html>
`))
