package finder

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog"
	"github.com/seanblong/repofinder/internal/github"
	"github.com/seanblong/repofinder/pkg/models"
)

var errNoSearcher = errors.New("no searcher configured")

// Picker returns an index in [0, n). n is always > 0.
type Picker func(n int) int

// Request identifies one fetch started by Begin.
type Request struct {
	Generation uint64
	Language   Language
}

// Controller holds the language selection and the current view, and runs the fetch
// lifecycle. It is safe for concurrent use.
type Controller struct {
	Searcher github.Searcher

	mu         sync.Mutex
	language   Language
	view       ViewState
	generation uint64
	pick       Picker
	log        zerolog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLanguage sets the initial selection. Unsupported values are ignored.
func WithLanguage(l Language) Option {
	return func(c *Controller) {
		if _, err := ParseLanguage(string(l)); err == nil {
			c.language = l
		}
	}
}

// WithPicker replaces the uniform random index picker.
func WithPicker(p Picker) Option {
	return func(c *Controller) {
		if p != nil {
			c.pick = p
		}
	}
}

// WithLogger sets the logger used for fetch lifecycle events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// New creates a controller in the Idle state with DefaultLanguage selected.
func New(s github.Searcher, opts ...Option) *Controller {
	c := &Controller{
		Searcher: s,
		language: DefaultLanguage,
		view:     Idle(),
		pick:     rand.IntN,
		log:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Language returns the current selection.
func (c *Controller) Language() Language {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language
}

// View returns the current view state.
func (c *Controller) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// SelectLanguage changes the selection. It does not fetch and does not touch the view.
func (c *Controller) SelectLanguage(id string) error {
	l, err := ParseLanguage(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.language = l
	c.mu.Unlock()
	return nil
}

// Begin moves the view to Loading, dropping any previous result or error, and returns
// the request to hand to Complete once the search settles.
func (c *Controller) Begin() Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.view = Loading()
	req := Request{Generation: c.generation, Language: c.language}
	c.log.Debug().Str("language", req.Language.String()).Uint64("generation", req.Generation).Msg("fetching repositories")
	return req
}

// Complete applies the outcome of req. It reports false, leaving the view untouched,
// when a newer request has been started since req.
func (c *Controller) Complete(req Request, res models.SearchResult, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if req.Generation != c.generation {
		c.log.Debug().Uint64("generation", req.Generation).Uint64("latest", c.generation).Msg("dropping stale result")
		return false
	}

	switch {
	case err != nil:
		c.log.Warn().Err(err).Str("language", req.Language.String()).Msg("repository search failed")
		c.view = Failed(ErrorText)
	case len(res.Items) == 0:
		c.view = Empty()
	default:
		i := c.pick(len(res.Items))
		if i < 0 || i >= len(res.Items) {
			c.log.Warn().Int("pick", i).Int("candidates", len(res.Items)).Msg("picker index out of range, using first repository")
			i = 0
		}
		c.view = Found(res.Items[i])
		c.log.Debug().Str("language", req.Language.String()).Str("repository", res.Items[i].Name).Int("candidates", len(res.Items)).Msg("repository picked")
	}
	return true
}

// FetchRandom runs one full fetch for the selected language and returns the view it
// produced. If another fetch was started meanwhile, the returned view is the current
// one, which belongs to that newer fetch.
func (c *Controller) FetchRandom(ctx context.Context) ViewState {
	req := c.Begin()
	res, err := c.Search(ctx, req)
	c.Complete(req, res, err)
	return c.View()
}

// Search performs the single outbound call for req without touching the view.
func (c *Controller) Search(ctx context.Context, req Request) (models.SearchResult, error) {
	if c.Searcher == nil {
		return models.SearchResult{}, errNoSearcher
	}
	return c.Searcher.SearchRepositories(ctx, req.Language.String())
}
