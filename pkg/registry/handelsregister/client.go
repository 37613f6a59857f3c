// Package handelsregister provides a registry.Client implementation backed by
// the public handelsregister.de portal.
//
// The portal is a JSF application: every post must carry the session cookie
// and the javax.faces.ViewState token of the previously rendered page. The
// client therefore loads the search page first, lifts the view state out of
// the HTML, and replays it on the search and download posts.
package handelsregister

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"resolver/pkg/domain"
	"resolver/pkg/logger"
	"resolver/pkg/registry"
	"resolver/pkg/serrors"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	searchPath   = "/rp_web/erweitertesuche.xhtml"
	resultsPath  = "/rp_web/ergebnisse.xhtml"
	documentPath = "/rp_web/documents-dk.xhtml"

	// the portal blocks obvious bot user agents
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36" //nolint: lll
)

// Options configures the portal client.
type Options struct {
	// BaseURL is the portal entry point, e.g. "https://www.handelsregister.de".
	BaseURL string
	// SearchAttempts is how often an empty result page is retried before the
	// empty list is returned as-is. Values below 1 mean a single attempt.
	SearchAttempts int
	// RetryDelay is the fixed pause between search attempts.
	RetryDelay time.Duration
}

// Client talks to the handelsregister.de portal and fulfills the
// registry.Client interface. It is safe for concurrent use; the portal
// session cookie is shared through the http.Client's cookie jar.
type Client struct {
	httpClient *http.Client
	opts       Options
}

// Ensure Client conforms to the registry.Client interface at compile time.
var _ registry.Client = (*Client)(nil)

// New constructs a Client that uses the provided http.Client to interact with
// the portal. When the http.Client has no cookie jar, one is attached since
// the portal session does not survive without it.
func New(httpClient *http.Client, opts Options) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		// cookiejar.New never fails with nil options
		jar, _ := cookiejar.New(nil)
		httpClient.Jar = jar
	}
	if opts.SearchAttempts < 1 {
		opts.SearchAttempts = 1
	}

	return &Client{
		httpClient: httpClient,
		opts:       opts,
	}
}

// Search runs a keyword search against the portal and parses the result rows.
// The portal intermittently renders an empty results table for queries that do
// have matches, so an empty page is retried with a fixed delay before the
// empty list is accepted.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Company, error) {
	var companies []domain.Company
	for attempt := 1; ; attempt++ {
		var err error
		companies, err = c.searchOnce(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(companies) > 0 || attempt >= c.opts.SearchAttempts {
			break
		}

		logger.Debug(ctx, "empty result page, retrying search",
			zap.String("query", query),
			zap.Int("attempt", attempt))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("canceled while waiting to retry search: %w", ctx.Err())
		case <-time.After(c.opts.RetryDelay):
		}
	}

	return companies, nil
}

func (c *Client) searchOnce(ctx context.Context, query string) ([]domain.Company, error) {
	viewState, err := c.loadSearchPage(ctx)
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"form":                  {"form"},
		"form:schlagwoerter":    {query},
		"form:btnSuche":         {"Suchen"},
		"javax.faces.ViewState": {viewState},
	}

	doc, err := c.postForm(ctx, searchPath, form)
	if err != nil {
		return nil, err
	}

	return parseResults(doc), nil
}

// FetchDocument downloads the PDF behind a document link id. The id is the
// JSF component id of the AD/CD/... anchor in the results table, captured by
// parseResults.
func (c *Client) FetchDocument(ctx context.Context, linkID string) ([]byte, error) {
	viewState, err := c.loadSearchPage(ctx)
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"ergebnissForm":         {"ergebnissForm"},
		linkID:                  {linkID},
		"javax.faces.ViewState": {viewState},
	}

	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost,
		c.opts.BaseURL+documentPath,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read document body: %w", err)
	}
	if !strings.HasPrefix(string(b), "%PDF") {
		return nil, serrors.With(serrors.ErrNotFound, "portal returned no PDF for link %q", linkID)
	}

	return b, nil
}

// loadSearchPage fetches the search form and returns its view state token.
func (c *Client) loadSearchPage(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+searchPath, nil)
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("could not parse search page: %w", err)
	}

	viewState, ok := doc.Find(`input[name="javax.faces.ViewState"]`).First().Attr("value")
	if !ok {
		return "", serrors.With(serrors.ErrUnavailable, "search page carried no view state")
	}

	return viewState, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost,
		c.opts.BaseURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not parse response: %w", err)
	}

	return doc, nil
}

// checkStatus maps portal HTTP failures onto semantic kinds the job layer can
// act on: 429 snoozes the job, 5xx defers it, everything else fails it.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return serrors.With(serrors.ErrRateLimited, "portal rate limited the request")
	case resp.StatusCode >= 500:
		return serrors.With(serrors.ErrUnavailable, "portal unavailable: %s", resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("portal request failed: %s", resp.Status)
	default:
		return nil
	}
}
