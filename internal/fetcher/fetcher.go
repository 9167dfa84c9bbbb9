package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"mvdan.cc/xurls/v2"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	maxBodyBytes = 5 << 20

	noiseSelector = "script, style, noscript, nav, footer, aside, form, iframe, header nav, svg"
)

var contentSelectors = []string{"article", "main", "body"}

type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// Fetcher downloads a web page and turns its main content into markdown
// text that can be fed to the cleanup stage.
type Fetcher struct {
	client     *http.Client
	converter  *md.Converter
	httpsURLRe *regexp.Regexp
}

func New(timeout time.Duration) (*Fetcher, error) {
	httpsURLRe, err := xurls.StrictMatchingScheme("https://")
	if err != nil {
		return nil, fmt.Errorf("create regexp: %w", err)
	}

	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		converter:  md.NewConverter("", true, nil),
		httpsURLRe: httpsURLRe,
	}, nil
}

// SingleURL reports whether text is nothing but one https URL.
func (f *Fetcher) SingleURL(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, " \t\n") {
		return "", false
	}

	match := f.httpsURLRe.FindString(text)
	if match == "" || match != text {
		return "", false
	}

	return match, true
}

func (f *Fetcher) FetchArticle(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{StatusCode: resp.StatusCode, URL: pageURL}
	}

	return f.Extract(io.LimitReader(resp.Body, maxBodyBytes))
}

// Extract strips page chrome from an HTML document and renders its most
// specific content container as markdown.
func (f *Fetcher) Extract(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	doc.Find(noiseSelector).Remove()

	for _, selector := range contentSelectors {
		selection := doc.Find(selector).First()
		if selection.Length() == 0 || strings.TrimSpace(selection.Text()) == "" {
			continue
		}

		text := strings.TrimSpace(f.converter.Convert(selection))
		if text != "" {
			return text, nil
		}
	}

	return "", errors.New("page has no readable content")
}
