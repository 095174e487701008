package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Pharma News</title>
    <item>
      <title>Acme Pharma seeks manufacturing partner</title>
      <description>Expansion into injectables.</description>
      <link>https://example.com/acme</link>
      <pubDate>Mon, 10 Aug 2026 09:30:00 +0530</pubDate>
    </item>
    <item>
      <title>Zenith Labs recalls batch</title>
      <description>Quality issue in tablet line.</description>
      <link>https://example.com/zenith</link>
    </item>
  </channel>
</rss>`

func TestFeedFetcherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	f := NewFeedFetcher(testClient(), 0)
	items, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Acme Pharma seeks manufacturing partner", items[0].Title)
	assert.Equal(t, "https://example.com/acme", items[0].Link)
	require.NotNil(t, items[0].Published)
	assert.Equal(t, 2026, items[0].Published.Year())

	assert.Nil(t, items[1].Published)
}

func TestFeedFetcherLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	f := NewFeedFetcher(testClient(), 1)
	items, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFeedFetcherBadXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a feed"))
	}))
	defer srv.Close()

	f := NewFeedFetcher(testClient(), 0)
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
}
