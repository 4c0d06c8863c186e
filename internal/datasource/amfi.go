package datasource

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/seenimoa/nivesh/pkg/models"
	"github.com/seenimoa/nivesh/pkg/utils"
)

const (
	// DefaultMFAPIURL serves per-scheme NAV history as JSON.
	DefaultMFAPIURL = "https://api.mfapi.in"
	// DefaultNAVAllURL is AMFI's daily NAV file listing every open scheme.
	DefaultNAVAllURL = "https://www.amfiindia.com/spages/NAVAll.txt"

	// MaxSchemeMatches caps the matches returned by SearchSchemes.
	MaxSchemeMatches = 20
)

// AMFI fetches mutual fund data: NAV history and latest quotes from
// mfapi.in and the scheme registry from AMFI's NAVAll.txt.
type AMFI struct {
	*client
	apiURL    string
	navAllURL string
	schemeTTL time.Duration
	schemes   *Cache[[]models.Scheme]
}

// NewAMFI creates a mutual fund source. Empty URLs use the public defaults.
// The scheme list is cached for schemeTTL (24h when zero).
func NewAMFI(apiURL, navAllURL string, schemeTTL time.Duration, opts Options) *AMFI {
	if apiURL == "" {
		apiURL = DefaultMFAPIURL
	}
	if navAllURL == "" {
		navAllURL = DefaultNAVAllURL
	}
	if schemeTTL <= 0 {
		schemeTTL = 24 * time.Hour
	}
	return &AMFI{
		client:    newClient("amfi", opts),
		apiURL:    strings.TrimRight(apiURL, "/"),
		navAllURL: navAllURL,
		schemeTTL: schemeTTL,
		schemes:   NewCache[[]models.Scheme](schemeTTL),
	}
}

// Name returns the data source name.
func (a *AMFI) Name() string { return "AMFI" }

type mfapiMeta struct {
	FundHouse      string      `json:"fund_house"`
	SchemeType     string      `json:"scheme_type"`
	SchemeCategory string      `json:"scheme_category"`
	SchemeCode     json.Number `json:"scheme_code"`
	SchemeName     string      `json:"scheme_name"`
}

type mfapiResponse struct {
	Meta   mfapiMeta          `json:"meta"`
	Data   []models.NAVRecord `json:"data"`
	Status string             `json:"status"`
}

// GetNAVHistory returns every published NAV for a scheme, newest first as
// upstream publishes it.
func (a *AMFI) GetNAVHistory(ctx context.Context, schemeCode string) ([]models.NAVRecord, error) {
	resp, err := a.scheme(ctx, schemeCode, "")
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetSchemeQuote returns scheme metadata with the latest NAV.
func (a *AMFI) GetSchemeQuote(ctx context.Context, schemeCode string) (*models.SchemeQuote, error) {
	resp, err := a.scheme(ctx, schemeCode, "/latest")
	if err != nil {
		return nil, err
	}
	latest := resp.Data[0]
	return &models.SchemeQuote{
		Code:       schemeCode,
		Name:       resp.Meta.SchemeName,
		FundHouse:  resp.Meta.FundHouse,
		SchemeType: resp.Meta.SchemeType,
		Category:   resp.Meta.SchemeCategory,
		NAV:        latest.NAV,
		NAVDate:    latest.Date,
	}, nil
}

func (a *AMFI) scheme(ctx context.Context, schemeCode, suffix string) (*mfapiResponse, error) {
	code := strings.TrimSpace(schemeCode)
	if !utils.IsSchemeCode(code) {
		return nil, fmt.Errorf("invalid scheme code %q", schemeCode)
	}

	endpoint := fmt.Sprintf("%s/mf/%s%s", a.apiURL, url.PathEscape(code), suffix)
	var resp mfapiResponse
	if err := a.getJSON(ctx, endpoint, &resp); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, &NotFoundError{Source: "amfi", ID: code}
		}
		return nil, fmt.Errorf("mfapi scheme %s: %w", code, err)
	}
	if len(resp.Data) == 0 {
		return nil, &NotFoundError{Source: "amfi", ID: code}
	}
	return &resp, nil
}

// SchemeList returns every scheme in the AMFI registry.
func (a *AMFI) SchemeList(ctx context.Context) ([]models.Scheme, error) {
	if cached, ok := a.schemes.Get("all"); ok {
		return cached, nil
	}

	body, err := a.get(ctx, a.navAllURL, map[string]string{"Accept": "text/plain"})
	if err != nil {
		return nil, fmt.Errorf("amfi scheme list: %w", err)
	}
	defer body.Close()

	schemes, err := parseNAVAll(body)
	if err != nil {
		return nil, fmt.Errorf("parse NAVAll: %w", err)
	}
	a.log.WithField("schemes", len(schemes)).Debug("Loaded AMFI scheme list")

	a.schemes.Set("all", schemes)
	return schemes, nil
}

// SearchSchemes returns schemes whose name contains every word of query,
// ordered by scheme code. At most limit (capped at MaxSchemeMatches) are
// returned along with the total number of matches.
func (a *AMFI) SearchSchemes(ctx context.Context, query string, limit int) ([]models.Scheme, int, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, 0, fmt.Errorf("empty search query")
	}
	if limit <= 0 || limit > MaxSchemeMatches {
		limit = MaxSchemeMatches
	}

	all, err := a.SchemeList(ctx)
	if err != nil {
		return nil, 0, err
	}

	var matches []models.Scheme
	for _, s := range all {
		if containsAll(strings.ToLower(s.Name), terms) {
			matches = append(matches, s)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return lessCode(matches[i].Code, matches[j].Code)
	})

	total := len(matches)
	if total > limit {
		matches = matches[:limit]
	}
	return matches, total, nil
}

// parseNAVAll reads the semicolon-separated NAVAll.txt layout. Section
// lines such as "Open Ended Schemes(Equity Scheme - Large Cap Fund)" set
// the category, any other non-data line sets the fund house.
func parseNAVAll(r io.Reader) ([]models.Scheme, error) {
	var (
		schemes   []models.Scheme
		category  string
		fundHouse string
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, ";")
		if len(fields) >= 6 {
			code := strings.TrimSpace(fields[0])
			if !utils.IsSchemeCode(code) {
				continue // header
			}
			schemes = append(schemes, models.Scheme{
				Code:      code,
				Name:      strings.Join(strings.Fields(fields[3]), " "),
				FundHouse: fundHouse,
				Category:  category,
			})
			continue
		}

		if open := strings.Index(line, "Schemes("); open >= 0 {
			inner := line[open+len("Schemes("):]
			category = strings.TrimSpace(strings.TrimSuffix(inner, ")"))
			continue
		}
		fundHouse = line
	}
	return schemes, scanner.Err()
}

func containsAll(s string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(s, t) {
			return false
		}
	}
	return true
}

// lessCode orders numeric codes numerically.
func lessCode(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// SchemeCodes maps every registered scheme code to its name.
func (a *AMFI) SchemeCodes(ctx context.Context) (map[string]string, error) {
	all, err := a.SchemeList(ctx)
	if err != nil {
		return nil, err
	}
	codes := make(map[string]string, len(all))
	for _, s := range all {
		codes[s.Code] = s.Name
	}
	return codes, nil
}
