// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/docufetch/pkg/types"
)

// queryPlaceholder marks where a feed URL takes the search keyword.
const queryPlaceholder = "{query}"

// DefaultNewsFeeds is a keyword search feed plus general feeds from major
// outlets, which are filtered locally by keyword.
var DefaultNewsFeeds = []string{
	"https://news.google.com/rss/search?q={query}&hl=en-US&gl=US&ceid=US:en",
	"https://feeds.bbci.co.uk/news/rss.xml",
	"https://www.theguardian.com/world/rss",
	"https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml",
	"https://www.aljazeera.com/xml/rss/all.xml",
	"https://techcrunch.com/feed/",
}

// News reads RSS and Atom feeds. Feeds are read in order until the limit is
// reached; a failing feed is skipped unless every feed fails.
type News struct {
	HTTP
	Feeds []string
}

func (n *News) Name() string             { return "news" }
func (n *News) Category() types.Category { return types.CategoryNews }

func (n *News) Search(ctx context.Context, keyword string, limit int) ([]RawHit, error) {
	limit = clampLimit(limit, 50, 0)
	feeds := n.Feeds
	if len(feeds) == 0 {
		feeds = DefaultNewsFeeds
	}

	fp := gofeed.NewParser()
	seen := make(map[string]bool)
	var (
		hits    []RawHit
		errs    []error
		success bool
	)
	for _, feedURL := range feeds {
		if len(hits) >= limit {
			break
		}
		searchable := strings.Contains(feedURL, queryPlaceholder)
		reqURL := strings.ReplaceAll(feedURL, queryPlaceholder, url.QueryEscape(keyword))

		body, err := n.getBody(ctx, n.Name(), reqURL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			errs = append(errs, err)
			continue
		}
		feed, err := fp.Parse(bytes.NewReader(body))
		if err != nil {
			errs = append(errs, &Error{Source: n.Name(), Kind: types.ErrorParse, Err: err})
			continue
		}
		success = true

		for _, item := range feed.Items {
			if item.Link == "" || seen[item.Link] {
				continue
			}
			if !searchable && !matchesKeyword(item, keyword) {
				continue
			}
			seen[item.Link] = true
			hits = append(hits, feedItemHit(item))
		}
	}

	if !success && len(errs) > 0 {
		return nil, errs[0]
	}
	return truncate(hits, limit), nil
}

// matchesKeyword reports whether every keyword term appears in the item's
// title or description.
func matchesKeyword(item *gofeed.Item, keyword string) bool {
	text := strings.ToLower(item.Title + " " + item.Description)
	for _, term := range strings.Fields(strings.ToLower(keyword)) {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

func feedItemHit(item *gofeed.Item) RawHit {
	h := RawHit{
		ID:        item.GUID,
		Title:     item.Title,
		URL:       item.Link,
		Published: item.Published,
		Abstract:  item.Description,
	}
	if item.PublishedParsed != nil {
		h.Published = item.PublishedParsed.UTC().Format(time.RFC3339)
	} else if item.UpdatedParsed != nil {
		h.Published = item.UpdatedParsed.UTC().Format(time.RFC3339)
	}
	for _, p := range item.Authors {
		if p != nil && p.Name != "" {
			h.Authors = append(h.Authors, p.Name)
		}
	}
	for _, enc := range item.Enclosures {
		if enc != nil && enc.Type == "application/pdf" {
			h.PDFURL = enc.URL
			break
		}
	}
	return h
}
