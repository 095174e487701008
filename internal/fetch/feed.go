package fetch

import (
	"context"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FeedItem is a normalized entry from an RSS or Atom feed.
type FeedItem struct {
	Title       string
	Description string
	Content     string
	Link        string
	Published   *time.Time
}

// FeedFetcher pulls and parses RSS/Atom feeds through the rate-limited
// client.
type FeedFetcher struct {
	client *Client
	parser *gofeed.Parser
	limit  int
}

// NewFeedFetcher creates a feed fetcher. limit caps the items returned
// per feed; <= 0 means no cap.
func NewFeedFetcher(client *Client, limit int) *FeedFetcher {
	return &FeedFetcher{
		client: client,
		parser: gofeed.NewParser(),
		limit:  limit,
	}
}

// Fetch downloads and parses the feed at the URL.
func (f *FeedFetcher) Fetch(ctx context.Context, url string) ([]FeedItem, error) {
	body, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: get feed %s", url)
	}

	feed, err := f.parser.ParseString(string(body))
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: parse feed %s", url)
	}

	items := make([]FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if f.limit > 0 && len(items) >= f.limit {
			break
		}
		items = append(items, FeedItem{
			Title:       it.Title,
			Description: it.Description,
			Content:     it.Content,
			Link:        it.Link,
			Published:   published(it),
		})
	}

	zap.L().Debug("feed fetched",
		zap.String("url", url),
		zap.String("title", feed.Title),
		zap.Int("items", len(items)),
	)
	return items, nil
}

func published(it *gofeed.Item) *time.Time {
	if it.PublishedParsed != nil {
		return it.PublishedParsed
	}
	return it.UpdatedParsed
}
