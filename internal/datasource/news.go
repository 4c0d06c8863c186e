package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/nivesh/pkg/models"
)

// NewsSource is one RSS feed of Indian financial news.
type NewsSource struct {
	Name   string
	RSSURL string
}

// DefaultNewsSources lists the Indian financial news RSS feeds.
var DefaultNewsSources = []NewsSource{
	{Name: "Moneycontrol", RSSURL: "https://www.moneycontrol.com/rss/marketreports.xml"},
	{Name: "Economic Times Markets", RSSURL: "https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms"},
	{Name: "LiveMint Markets", RSSURL: "https://www.livemint.com/rss/markets"},
	{Name: "Business Standard Markets", RSSURL: "https://www.business-standard.com/rss/markets-106.rss"},
}

// News aggregates headlines from RSS feeds.
type News struct {
	*client
	sources []NewsSource
	feeds   *Cache[[]models.NewsArticle]
}

// NewNews creates a news source. Nil sources use DefaultNewsSources.
func NewNews(sources []NewsSource, opts Options) *News {
	if sources == nil {
		sources = DefaultNewsSources
	}
	return &News{
		client:  newClient("news", opts),
		sources: sources,
		feeds:   NewCache[[]models.NewsArticle](10 * time.Minute),
	}
}

// Name returns the data source name.
func (n *News) Name() string { return "Indian News" }

// Latest returns recent articles from every feed, newest first. Feeds that
// fail are skipped; an error is returned only when all of them fail.
func (n *News) Latest(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	var (
		mu       sync.Mutex
		all      []models.NewsArticle
		failures int
		lastErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range n.sources {
		g.Go(func() error {
			articles, err := n.feed(gctx, src)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
				lastErr = err
				n.log.WithError(err).WithField("feed", src.Name).Warn("RSS feed failed")
				return nil
			}
			all = append(all, articles...)
			return nil
		})
	}
	_ = g.Wait()

	if len(n.sources) > 0 && failures == len(n.sources) {
		return nil, fmt.Errorf("all news feeds failed: %w", lastErr)
	}

	sortArticlesByDate(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Search returns recent articles whose title or summary contains every
// word of query.
func (n *News) Search(ctx context.Context, query string, limit int) ([]models.NewsArticle, error) {
	terms := strings.Fields(strings.ToLower(query))
	all, err := n.Latest(ctx, 0)
	if err != nil {
		return nil, err
	}

	var matched []models.NewsArticle
	for _, a := range all {
		if containsAll(strings.ToLower(a.Title+" "+a.Summary), terms) {
			matched = append(matched, a)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// feed downloads and parses one RSS feed.
func (n *News) feed(ctx context.Context, src NewsSource) ([]models.NewsArticle, error) {
	if cached, ok := n.feeds.Get(src.RSSURL); ok {
		return cached, nil
	}

	body, err := n.get(ctx, src.RSSURL, map[string]string{"Accept": "application/rss+xml, application/xml, text/xml"})
	if err != nil {
		return nil, fmt.Errorf("fetch RSS %s: %w", src.Name, err)
	}
	defer body.Close()

	parsed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	articles := make([]models.NewsArticle, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		a := models.NewsArticle{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}

	n.feeds.Set(src.RSSURL, articles)
	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// sortArticlesByDate sorts articles newest first.
func sortArticlesByDate(articles []models.NewsArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
