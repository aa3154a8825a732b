package github

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v61/github"
	"github.com/seanblong/repofinder/pkg/models"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com/"

// ErrMalformedResponse is returned when a search response lacks its items array or
// carries a null item.
var ErrMalformedResponse = errors.New("malformed search response")

// Searcher finds the top-starred repositories written in a language.
type Searcher interface {
	SearchRepositories(ctx context.Context, language string) (models.SearchResult, error)
}

// ClientConfig holds configuration for the search client
type ClientConfig struct {
	APIURL  string
	Timeout time.Duration
}

// Client searches repositories through the GitHub REST API.
type Client struct {
	config *ClientConfig
	http   *http.Client
	gh     *gh.Client
}

// NewClient creates a new search client. An empty APIURL falls back to DefaultAPIURL.
func NewClient(cfg *ClientConfig) (*Client, error) {
	config := &ClientConfig{}
	if cfg != nil {
		*config = *cfg
	}
	if config.APIURL == "" {
		config.APIURL = DefaultAPIURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}

	// Check for environment variable to skip TLS verification (for corporate proxies, etc.)
	if skipTLS, _ := strconv.ParseBool(os.Getenv("REPOFINDER_SKIP_TLS_VERIFY")); skipTLS {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	httpClient := &http.Client{
		Timeout:   config.Timeout,
		Transport: transport,
	}

	c := &Client{config: config, http: httpClient}
	if err := c.reset(); err != nil {
		return nil, err
	}
	return c, nil
}

// reset rebuilds the go-github client around the current http client.
func (c *Client) reset() error {
	base := c.config.APIURL
	// go-github refuses base URLs without a trailing slash
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("parse api url %q: %w", c.config.APIURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api url %q must be absolute", c.config.APIURL)
	}

	client := gh.NewClient(c.http)
	client.BaseURL = u
	c.gh = client
	return nil
}

// Query returns the search query sent for language.
func Query(language string) string {
	return "language:" + language
}

// SearchRepositories issues one search request sorted by stars, descending. Only the
// first page (the API default size) is requested.
func (c *Client) SearchRepositories(ctx context.Context, language string) (models.SearchResult, error) {
	opts := &gh.SearchOptions{Sort: "stars", Order: "desc"}

	res, _, err := c.gh.Search.Repositories(ctx, Query(language), opts)
	if err != nil {
		return models.SearchResult{}, fmt.Errorf("search repositories for %s: %w", language, err)
	}

	// "items":[] decodes to an empty slice, a missing or null field to nil
	if res.Repositories == nil {
		return models.SearchResult{}, fmt.Errorf("search repositories for %s: %w: no items", language, ErrMalformedResponse)
	}

	out := models.SearchResult{
		TotalCount: res.GetTotal(),
		Items:      make([]models.Repository, 0, len(res.Repositories)),
	}
	for _, r := range res.Repositories {
		if r == nil {
			return models.SearchResult{}, fmt.Errorf("search repositories for %s: %w: null item", language, ErrMalformedResponse)
		}
		out.Items = append(out.Items, toModel(r))
	}
	return out, nil
}

func toModel(r *gh.Repository) models.Repository {
	return models.Repository{
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		OpenIssues:  r.GetOpenIssuesCount(),
		HTMLURL:     r.GetHTMLURL(),
		Language:    r.GetLanguage(),
	}
}
