// Package aipocr is a client for the AIP-style recognition service: an HTTP
// API taking form-encoded requests with base64 image payloads, authenticated
// by a bearer token from a separate OAuth endpoint.
//
// The client owns the token lifecycle (lazy refresh, cached while fresh) and
// enforces the service's payload ceiling via CompressForAPI. It never
// retries: per-page retry policy is the concern of the recognize package.
//
// Located-text recognition returns words already mapped into document
// points; callers never see pixel coordinates.
package aipocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skarde/ocrkit/pkg/coords"
)

const (
	defaultBaseURL = "https://aip.baidubce.com"

	tokenPath   = "/oauth/2.0/token"
	locatePath  = "/rest/2.0/ocr/v1/accurate"
	textPath    = "/rest/2.0/ocr/v1/accurate_basic"
	formulaPath = "/rest/2.0/ocr/v1/formula"
	tablePath   = "/rest/2.0/ocr/v1/table"

	// The service expires tokens after 30 days; refresh with a margin.
	tokenLifetime = 25 * 24 * time.Hour

	defaultTimeout = 60 * time.Second
)

// DefaultPayloadLimit is the ceiling on the base64-encoded image payload.
const DefaultPayloadLimit = 3 * 1024 * 1024

var log = logrus.WithField("component", "aipocr")

// accessToken is owned exclusively by one Client and guarded by its mutex.
type accessToken struct {
	value    string
	issuedAt time.Time
}

func (t accessToken) fresh(now time.Time) bool {
	return t.value != "" && now.Sub(t.issuedAt) < tokenLifetime
}

// Client talks to the recognition service. A Client is safe for sequential
// use; concurrent use from multiple goroutines requires external
// synchronization beyond the token cache.
type Client struct {
	apiKey       string
	secretKey    string
	httpClient   *http.Client
	baseURL      string
	payloadLimit int

	mu    sync.Mutex
	token accessToken
	now   func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (60s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at a different service root, e.g. a test
// server.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithPayloadLimit overrides the base64 payload ceiling.
func WithPayloadLimit(n int) Option {
	return func(c *Client) { c.payloadLimit = n }
}

// New creates a client for the given credential pair.
func New(apiKey, secretKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		secretKey:    secretKey,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		baseURL:      defaultBaseURL,
		payloadLimit: DefaultPayloadLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticate eagerly acquires an access token. Composers call this before
// the first page so that credential failures abort the whole document instead
// of surfacing as per-page errors.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.getAccessToken(ctx)
	return err
}

// getAccessToken returns the cached token or fetches a fresh one.
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.fresh(c.now()) {
		return c.token.value, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.apiKey},
		"client_secret": {c.secretKey},
	}
	body, err := c.postForm(ctx, "token", c.baseURL+tokenPath, form)
	if err != nil {
		return "", err
	}

	var tr tokenResponseJSON
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", &ServiceError{Code: -1, Message: fmt.Sprintf("malformed token response: %v", err)}
	}
	if tr.AccessToken == "" {
		desc := tr.ErrorDescription
		if desc == "" {
			desc = tr.Error
		}
		if desc == "" {
			desc = "token missing from response"
		}
		return "", &AuthError{Description: desc}
	}

	c.token = accessToken{value: tr.AccessToken, issuedAt: c.now()}
	log.WithField("issued_at", c.token.issuedAt).Debug("access token refreshed")
	return c.token.value, nil
}

// RecognizeText runs plain high-accuracy recognition and returns text lines
// in service order.
func (c *Client) RecognizeText(ctx context.Context, image []byte) ([]string, error) {
	form := url.Values{
		"language_type":    {"CHN_ENG"},
		"detect_direction": {"true"},
		"paragraph":        {"true"},
	}
	resp, err := c.recognize(ctx, "text", c.baseURL+textPath, image, form)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(resp.WordsResult))
	for _, item := range resp.WordsResult {
		lines = append(lines, item.Words)
	}
	return lines, nil
}

// RecognizeTextWithLocation runs located recognition on an image rendered at
// dpi and returns words with boxes already mapped to document points.
// Items missing text or a bounding box are dropped.
func (c *Client) RecognizeTextWithLocation(ctx context.Context, image []byte, dpi int) ([]Word, error) {
	form := url.Values{
		"language_type":         {"CHN_ENG"},
		"detect_direction":      {"true"},
		"paragraph":             {"false"},
		"recognize_granularity": {"small"},
	}
	resp, err := c.recognize(ctx, "locate", c.baseURL+locatePath, image, form)
	if err != nil {
		return nil, err
	}

	words := make([]Word, 0, len(resp.WordsResult))
	for _, item := range resp.WordsResult {
		if item.Words == "" || item.Location == nil {
			continue
		}
		box := coords.MapBox(coords.Box{
			Left:   item.Location.Left,
			Top:    item.Location.Top,
			Width:  item.Location.Width,
			Height: item.Location.Height,
		}, dpi)
		words = append(words, Word{
			Text: item.Words,
			X:    box.Left,
			Y:    box.Top,
			W:    box.Width,
			H:    box.Height,
		})
	}
	log.WithFields(logrus.Fields{"dpi": dpi, "words": len(words)}).Debug("located recognition done")
	return words, nil
}

// RecognizeFormula returns LaTeX strings for the formulas found in the image.
// Depending on service version the payload carries formulas_result or
// words_result; both are accepted.
func (c *Client) RecognizeFormula(ctx context.Context, image []byte) ([]string, error) {
	form := url.Values{
		"recognize_granularity": {"big"},
	}
	resp, err := c.recognize(ctx, "formula", c.baseURL+formulaPath, image, form)
	if err != nil {
		return nil, err
	}

	items := resp.FormulasResult
	if len(items) == 0 {
		items = resp.WordsResult
	}
	var formulas []string
	for _, item := range items {
		if item.Words != "" {
			formulas = append(formulas, item.Words)
		}
	}
	return formulas, nil
}

// RecognizeTable returns the spanning cells of every table found in the
// image, in service order. Grid assembly is the tablegrid package's job.
func (c *Client) RecognizeTable(ctx context.Context, image []byte, opts TableOptions) ([]TableCell, error) {
	form := url.Values{}
	if opts.CellContents {
		form.Set("cell_contents", "true")
	}
	resp, err := c.recognize(ctx, "table", c.baseURL+tablePath, image, form)
	if err != nil {
		return nil, err
	}

	var cells []TableCell
	for _, table := range resp.TablesResult {
		for _, cell := range table.Body {
			cells = append(cells, TableCell{
				RowStart: cell.RowStart,
				RowEnd:   cell.RowEnd,
				ColStart: cell.ColStart,
				ColEnd:   cell.ColEnd,
				Text:     cell.Words,
			})
		}
	}
	return cells, nil
}

// recognize compresses the image, attaches the token, and posts one
// recognition request.
func (c *Client) recognize(ctx context.Context, op, endpoint string, image []byte, form url.Values) (*recognizeResponseJSON, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	compressed, err := c.CompressForAPI(image, c.payloadLimit)
	if err != nil {
		return nil, err
	}
	form.Set("image", base64.StdEncoding.EncodeToString(compressed))

	body, err := c.postForm(ctx, op, endpoint+"?access_token="+url.QueryEscape(token), form)
	if err != nil {
		return nil, err
	}

	var resp recognizeResponseJSON
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ServiceError{Code: -1, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	if resp.ErrorCode != 0 {
		return nil, &ServiceError{Code: resp.ErrorCode, Message: resp.ErrorMsg}
	}
	return &resp, nil
}

// postForm sends one form-encoded POST and returns the raw response body.
func (c *Client) postForm(ctx context.Context, op, rawURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	return body, nil
}
