package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSearch(t *testing.T) {
	var got tavilyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"query":"q","results":[
			{"title":"SBI Small Cap","url":"https://www.valueresearchonline.com/x","content":"Expense ratio 0.7%","score":0.91}]}`)
	}))
	defer srv.Close()

	ws := NewWebSearch(srv.URL, "tvly-test", testOptions(srv))
	require.True(t, ws.Configured())

	results, err := ws.Search(context.Background(), SearchRequest{
		Query:          "sbi small cap expense ratio",
		Depth:          DepthAdvanced,
		IncludeDomains: FinanceDomains,
		MaxResults:     8,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "SBI Small Cap", results[0].Title)
	assert.Equal(t, 0.91, results[0].Score)

	assert.Equal(t, "tvly-test", got.APIKey)
	assert.Equal(t, DepthAdvanced, got.SearchDepth)
	assert.Equal(t, 8, got.MaxResults)
	assert.Contains(t, got.IncludeDomains, "moneycontrol.com")
}

func TestWebSearchDefaultsToBasic(t *testing.T) {
	var got tavilyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer srv.Close()

	ws := NewWebSearch(srv.URL, "k", testOptions(srv))
	results, err := ws.Search(context.Background(), SearchRequest{Query: "weather in mumbai"})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, DepthBasic, got.SearchDepth)
	assert.Empty(t, got.IncludeDomains)
}

func TestWebSearchNotConfigured(t *testing.T) {
	ws := NewWebSearch("", "", Options{})
	assert.False(t, ws.Configured())
	_, err := ws.Search(context.Background(), SearchRequest{Query: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
