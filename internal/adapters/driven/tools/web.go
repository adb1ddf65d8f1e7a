package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// Web tool defaults.
const (
	defaultWebResults = 5
	maxWebResults     = 10
	DefaultFetchLimit = 12000
	fetchTimeout      = 20 * time.Second
	maxFetchBytes     = 2 << 20
)

// WebSearchConfig configures the web_search tool.
type WebSearchConfig struct {
	// APIKey is the Google Custom Search API key.
	APIKey string

	// EngineID is the programmable search engine ID (cx).
	EngineID string

	// Endpoint overrides the API base URL.
	Endpoint string
}

// WebSearch queries Google Programmable Search.
type WebSearch struct {
	svc      *customsearch.Service
	engineID string
}

// NewWebSearch creates the web_search tool. Without credentials the tool
// is still offered but every call fails with ErrMissingCredentials, so the
// model learns it is unavailable.
func NewWebSearch(ctx context.Context, cfg WebSearchConfig) (*WebSearch, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return &WebSearch{}, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("customsearch: %w", err)
	}
	return &WebSearch{svc: svc, engineID: cfg.EngineID}, nil
}

func (t *WebSearch) Name() string { return "web_search" }

func (t *WebSearch) Description() string {
	return "Search the web for context the speech corpus lacks. Returns titles, links and snippets."
}

func (t *WebSearch) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "minLength": 1},
			"num_results": {"type": "integer", "minimum": 1, "maximum": 10, "description": "Number of results (default 5)"}
		},
		"required": ["query"]
	}`)
}

type webResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

func (t *WebSearch) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	if t.svc == nil {
		return "", fmt.Errorf("web search: %w: set search.google_api_key and search.google_cx",
			domain.ErrMissingCredentials)
	}

	var params struct {
		Query      string `json:"query"`
		NumResults int    `json:"num_results"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return "", err
	}
	n := params.NumResults
	if n <= 0 {
		n = defaultWebResults
	}
	n = min(n, maxWebResults)

	resp, err := t.svc.Cse.List().Q(params.Query).Cx(t.engineID).Num(int64(n)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("web search: %w", err)
	}

	results := make([]webResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, webResult{Title: item.Title, URL: item.Link, Snippet: item.Snippet})
	}
	return encodeResult(results)
}

// FetchURL downloads a web page and returns it as Markdown.
type FetchURL struct {
	client   *http.Client
	maxChars int
}

// NewFetchURL creates the fetch_url tool. maxChars <= 0 uses
// DefaultFetchLimit.
func NewFetchURL(maxChars int) *FetchURL {
	if maxChars <= 0 {
		maxChars = DefaultFetchLimit
	}
	return &FetchURL{
		client:   &http.Client{Timeout: fetchTimeout},
		maxChars: maxChars,
	}
}

func (t *FetchURL) Name() string { return "fetch_url" }

func (t *FetchURL) Description() string {
	return "Fetch an http(s) page and return its main text as Markdown."
}

func (t *FetchURL) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {"type": "string", "description": "Absolute http or https URL"}
		},
		"required": ["url"]
	}`)
}

func (t *FetchURL) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		URL string `json:"url"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return "", err
	}

	u, err := url.Parse(params.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an http(s) URL", domain.ErrInvalidInput, params.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	req.Header.Set("Accept", "text/html, text/plain;q=0.9")
	req.Header.Set("User-Agent", "rostrum/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch %s: status %d", u.Host, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("fetch %s: read body: %w", u.Host, err)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	var text string
	switch {
	case mediaType == "" || mediaType == "text/html" || mediaType == "application/xhtml+xml":
		text, err = htmltomarkdown.ConvertString(string(body), converter.WithDomain(u.Scheme+"://"+u.Host))
		if err != nil {
			return "", fmt.Errorf("convert %s: %w", u.Host, err)
		}
	case strings.HasPrefix(mediaType, "text/"):
		text = string(body)
	default:
		return "", fmt.Errorf("fetch %s: %w: %s", u.Host, domain.ErrUnsupportedType, mediaType)
	}

	return clip(strings.TrimSpace(text), t.maxChars), nil
}

func clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "\n[truncated]"
}
