package headless

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// MaxHTMLSize limits page sources to 10MB
const MaxHTMLSize = 10 * 1024 * 1024

// Load reads a page from a file path or an http(s) URL and parses it
func Load(ctx context.Context, source string, opts ...Option) (*Page, error) {
	data, err := readSource(ctx, source)
	if err != nil {
		return nil, err
	}

	if isRemote(source) {
		opts = append([]Option{WithURL(source)}, opts...)
	}
	return Parse(data, opts...)
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func readSource(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, fmt.Errorf("page source required")
	}
	if isRemote(source) {
		return fetch(ctx, source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open page source: %w", err)
	}
	defer f.Close()
	return readLimited(f)
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = nil

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build page request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch page: HTTP %d (url: %s)", resp.StatusCode, url)
	}
	return readLimited(resp.Body)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxHTMLSize+1))
	if err != nil {
		return nil, fmt.Errorf("read page source: %w", err)
	}
	if len(data) > MaxHTMLSize {
		return nil, fmt.Errorf("page source exceeds maximum size of %d bytes", MaxHTMLSize)
	}
	return data, nil
}

// checkMIME accepts HTML and anything text-like (fragments sniff as text/plain)
func checkMIME(data []byte) error {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/html") || m.Is("text/plain") {
			return nil
		}
	}
	return fmt.Errorf("page source is %s, not HTML", detected.String())
}

// detectCharset guesses the source encoding. Valid UTF-8 is taken as is.
func detectCharset(data []byte) string {
	if utf8.Valid(data) {
		return "utf-8"
	}
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// toUTF8 converts the source into UTF-8
func toUTF8(data []byte) io.Reader {
	contentType := "text/html; charset=" + detectCharset(data)
	r, err := charset.NewReader(bytes.NewReader(data), contentType)
	if err != nil {
		return bytes.NewReader(data)
	}
	return r
}

// sanitizer strips scripts and event handlers but keeps what picking needs:
// identity and class attributes, links, and the outline declaration.
func sanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataAttributes()
	p.AllowAttrs("class", "id").Globally()
	p.AllowStyles("outline").Globally()
	p.AllowElements("main", "section", "header", "footer", "nav", "article", "aside", "button", "label")
	p.AllowAttrs("type", "name", "value").OnElements("button")
	return p
}
