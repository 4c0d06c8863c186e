package datasource

import (
	"context"
	"fmt"
	"strings"

	"github.com/seenimoa/nivesh/pkg/models"
)

// DefaultTavilyURL is the Tavily search API host.
const DefaultTavilyURL = "https://api.tavily.com"

// Search depths accepted by Tavily.
const (
	DepthBasic    = "basic"
	DepthAdvanced = "advanced"
)

// FinanceDomains restricts financial news searches to Indian finance sites.
var FinanceDomains = []string{
	"moneycontrol.com", "valueresearchonline.com",
	"economictimes.indiatimes.com", "livemint.com",
	"screener.in", "tickertape.in", "morningstar.in",
	"amfiindia.com", "mutualfundindia.com",
}

// SearchRequest is one web search.
type SearchRequest struct {
	Query          string
	Depth          string // DepthBasic when empty
	IncludeDomains []string
	MaxResults     int
}

// WebSearch queries the Tavily search API.
type WebSearch struct {
	*client
	baseURL string
	apiKey  string
}

// NewWebSearch creates a Tavily client. An empty baseURL uses DefaultTavilyURL.
func NewWebSearch(baseURL, apiKey string, opts Options) *WebSearch {
	if baseURL == "" {
		baseURL = DefaultTavilyURL
	}
	return &WebSearch{
		client:  newClient("tavily", opts),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// Name returns the data source name.
func (w *WebSearch) Name() string { return "Tavily" }

// Configured reports whether an API key is set.
func (w *WebSearch) Configured() bool { return w != nil && w.apiKey != "" }

type tavilyRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	MaxResults     int      `json:"max_results,omitempty"`
}

type tavilyResponse struct {
	Query   string                `json:"query"`
	Results []models.SearchResult `json:"results"`
}

// Search runs a web search. It returns ErrNotConfigured without an API key.
func (w *WebSearch) Search(ctx context.Context, req SearchRequest) ([]models.SearchResult, error) {
	if !w.Configured() {
		return nil, fmt.Errorf("tavily: %w: TAVILY_API_KEY is not set", ErrNotConfigured)
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	depth := req.Depth
	if depth == "" {
		depth = DepthBasic
	}

	var resp tavilyResponse
	err := w.postJSON(ctx, w.baseURL+"/search", tavilyRequest{
		APIKey:         w.apiKey,
		Query:          query,
		SearchDepth:    depth,
		IncludeDomains: req.IncludeDomains,
		MaxResults:     req.MaxResults,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}
	return resp.Results, nil
}
