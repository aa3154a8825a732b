package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/seanblong/repofinder/internal/finder"
	"github.com/seanblong/repofinder/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSearcher implements github.Searcher for testing
type MockSearcher struct {
	SearchFunc func(ctx context.Context, language string) (models.SearchResult, error)
	Languages  []string
}

func (m *MockSearcher) SearchRepositories(ctx context.Context, language string) (models.SearchResult, error) {
	m.Languages = append(m.Languages, language)
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, language)
	}
	return models.SearchResult{}, nil
}

func one(r models.Repository) func(context.Context, string) (models.SearchResult, error) {
	return func(context.Context, string) (models.SearchResult, error) {
		return models.SearchResult{TotalCount: 1, Items: []models.Repository{r}}, nil
	}
}

func newTestServer(s *MockSearcher) (*Server, *bytes.Buffer) {
	var logs bytes.Buffer
	srv := NewServer(s, finder.JavaScript, time.Second, zerolog.New(&logs))
	srv.Picker = func(n int) int { return 0 }
	return srv, &logs
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeRandom(t *testing.T, rec *httptest.ResponseRecorder) RandomResponse {
	t.Helper()
	var out RandomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestNewServerDefaults(t *testing.T) {
	srv := NewServer(&MockSearcher{}, finder.Go, 0, zerolog.Nop())
	assert.Equal(t, 10*time.Second, srv.Timeout)
	assert.Equal(t, finder.Go, srv.DefaultLanguage)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(&MockSearcher{})
	rec := do(t, srv.Handler(), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLanguages(t *testing.T) {
	srv, _ := newTestServer(&MockSearcher{})
	rec := do(t, srv.Handler(), http.MethodGet, "/api/languages")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out []LanguageOption
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []LanguageOption{
		{ID: "javascript", Label: "JavaScript"},
		{ID: "python", Label: "Python"},
		{ID: "ruby", Label: "Ruby"},
		{ID: "go", Label: "Go"},
		{ID: "java", Label: "Java"},
	}, out)
}

func TestRandom(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		search     func(context.Context, string) (models.SearchResult, error)
		wantStatus int
		wantState  string
		wantLang   string
		wantMsg    string
		wantRepo   string
	}{
		{
			name:       "found",
			target:     "/api/random?language=python",
			search:     one(models.Repository{Name: "x", Stars: 5, Forks: 1}),
			wantStatus: http.StatusOK,
			wantState:  "found",
			wantLang:   "python",
			wantRepo:   "x",
		},
		{
			name:       "empty",
			target:     "/api/random?language=go",
			wantStatus: http.StatusOK,
			wantState:  "empty",
			wantLang:   "go",
			wantMsg:    "No repositories found",
		},
		{
			name:   "error",
			target: "/api/random?language=ruby",
			search: func(context.Context, string) (models.SearchResult, error) {
				return models.SearchResult{}, errors.New("upstream 503")
			},
			wantStatus: http.StatusBadGateway,
			wantState:  "error",
			wantLang:   "ruby",
			wantMsg:    "Error fetching repositories",
		},
		{
			name:       "default language",
			target:     "/api/random",
			wantStatus: http.StatusOK,
			wantState:  "empty",
			wantLang:   "javascript",
			wantMsg:    "No repositories found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &MockSearcher{SearchFunc: tt.search}
			srv, _ := newTestServer(s)

			rec := do(t, srv.Handler(), http.MethodGet, tt.target)
			require.Equal(t, tt.wantStatus, rec.Code)

			out := decodeRandom(t, rec)
			assert.Equal(t, tt.wantState, out.State)
			assert.Equal(t, tt.wantLang, out.Language)
			assert.Equal(t, tt.wantMsg, out.Message)
			if tt.wantRepo != "" {
				require.NotNil(t, out.Repository)
				assert.Equal(t, tt.wantRepo, out.Repository.Name)
			} else {
				assert.Nil(t, out.Repository)
			}
			assert.Equal(t, []string{tt.wantLang}, s.Languages)
		})
	}
}

func TestRandomFoundJSONShape(t *testing.T) {
	srv, _ := newTestServer(&MockSearcher{SearchFunc: one(models.Repository{Name: "x", Stars: 5, Forks: 1, OpenIssues: 0})})
	rec := do(t, srv.Handler(), http.MethodGet, "/api/random?language=python")

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	repo, ok := raw["repository"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "x", repo["name"])
	assert.EqualValues(t, 5, repo["stargazers_count"])
	assert.EqualValues(t, 1, repo["forks_count"])
	assert.EqualValues(t, 0, repo["open_issues_count"])
}

func TestRandomRejectsUnsupportedLanguage(t *testing.T) {
	s := &MockSearcher{}
	srv, _ := newTestServer(s)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/random?language=cobol")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported language")
	assert.Empty(t, s.Languages)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(&MockSearcher{})
	h := srv.Handler()

	for _, target := range []string{"/api/random", "/api/languages", "/"} {
		rec := do(t, h, http.MethodPost, target)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, target)
	}
}

func TestRandomTimeout(t *testing.T) {
	s := &MockSearcher{
		SearchFunc: func(ctx context.Context, language string) (models.SearchResult, error) {
			<-ctx.Done()
			return models.SearchResult{}, ctx.Err()
		},
	}
	srv, _ := newTestServer(s)
	srv.Timeout = 10 * time.Millisecond

	rec := do(t, srv.Handler(), http.MethodGet, "/api/random?language=java")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "error", decodeRandom(t, rec).State)
}

func TestPageIdle(t *testing.T) {
	s := &MockSearcher{}
	srv, _ := newTestServer(s)

	rec := do(t, srv.Handler(), http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "GitHub Repository Finder")
	assert.Contains(t, body, `<option value="javascript" selected>JavaScript</option>`)
	assert.Contains(t, body, `<option value="java">Java</option>`)
	assert.Contains(t, body, "Fetch Repository")
	assert.NotContains(t, body, "Refresh")
	assert.Empty(t, s.Languages, "the idle page must not fetch")
}

func TestPageFound(t *testing.T) {
	s := &MockSearcher{SearchFunc: one(models.Repository{Name: "x", Description: "small thing", Stars: 5, Forks: 1})}
	srv, _ := newTestServer(s)

	rec := do(t, srv.Handler(), http.MethodGet, "/?language=python&fetch=1")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<option value="python" selected>Python</option>`)
	assert.Contains(t, body, "<h3>x</h3>")
	assert.Contains(t, body, "small thing")
	assert.Contains(t, body, "⭐ Stars: 5")
	assert.Contains(t, body, "🍴 Forks: 1")
	assert.Contains(t, body, "🔓 Open Issues: 0")
	assert.Contains(t, body, "Refresh")
	assert.Equal(t, []string{"python"}, s.Languages)
}

func TestPageEmptyAndError(t *testing.T) {
	srv, _ := newTestServer(&MockSearcher{})
	body := do(t, srv.Handler(), http.MethodGet, "/?language=go&fetch=1").Body.String()
	assert.Contains(t, body, "No repositories found")
	assert.NotContains(t, body, "Refresh")

	srv, _ = newTestServer(&MockSearcher{SearchFunc: func(context.Context, string) (models.SearchResult, error) {
		return models.SearchResult{}, errors.New("boom")
	}})
	body = do(t, srv.Handler(), http.MethodGet, "/?fetch=1").Body.String()
	assert.Contains(t, body, "Error fetching repositories")
	assert.NotContains(t, body, "boom")
}

func TestPageEscapesDescription(t *testing.T) {
	srv, _ := newTestServer(&MockSearcher{SearchFunc: one(models.Repository{Name: "x", Description: "<script>alert(1)</script>"})})
	body := do(t, srv.Handler(), http.MethodGet, "/?fetch=1").Body.String()

	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestPageUnknownPathAndLanguage(t *testing.T) {
	srv, _ := newTestServer(&MockSearcher{})
	h := srv.Handler()

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/nope").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/?language=cobol").Code)
}

func TestAccessLog(t *testing.T) {
	srv, logs := newTestServer(&MockSearcher{})
	do(t, srv.Handler(), http.MethodGet, "/api/random?language=go")

	assert.Contains(t, logs.String(), `"path":"/api/random"`)
	assert.Contains(t, logs.String(), `"message":"http"`)
	assert.Contains(t, logs.String(), `"state":"empty"`)
}
