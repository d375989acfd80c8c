package roster

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const httpTimeout = 30 * time.Second

// PageCache stores fetched roster pages between runs so repeated simulations
// do not hammer the registrar. Implemented by Cache (Redis); a nil cache
// disables caching.
type PageCache interface {
	Get(ctx context.Context, url string) (string, bool)
	Store(ctx context.Context, url, content string)
}

// Fetcher downloads roster pages over HTTP.
type Fetcher struct {
	client *http.Client
	cache  PageCache
}

// NewFetcher constructs a Fetcher with a shared HTTP client. cache may be nil.
func NewFetcher(cache PageCache) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: httpTimeout},
		cache:  cache,
	}
}

// Fetch retrieves one roster page. When the page carries a data-wrap section
// the fetch narrows to it: registrar pages embed the roster tables there and
// the surrounding chrome confuses header detection.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.cache != nil {
		if content, ok := f.cache.Get(ctx, url); ok {
			logrus.Debugf("roster page cache hit: %s", url)
			return content, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body from %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned %d", url, resp.StatusCode)
	}

	content := string(body)
	if wrapped, ok := dataWrapSection(content); ok {
		logrus.Debugf("%s: narrowed to data-wrap section (%d bytes)", url, len(wrapped))
		content = wrapped
	}

	if f.cache != nil {
		f.cache.Store(ctx, url, content)
	}
	return content, nil
}

// dataWrapSection extracts the inner HTML of the first div.data-wrap element.
func dataWrapSection(content string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", false
	}
	var found *html.Node
	walk(doc, func(n *html.Node) {
		if found != nil || n.Type != html.ElementNode || n.Data != "div" {
			return
		}
		if strings.Contains(attr(n, "class"), "data-wrap") {
			found = n
		}
	})
	if found == nil {
		return "", false
	}
	var b strings.Builder
	if err := html.Render(&b, found); err != nil {
		return "", false
	}
	return b.String(), true
}
