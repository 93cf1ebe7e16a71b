// Package upstream fetches raw meal plans from the Studierendenwerk API and
// converts them into domain plans.
package upstream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Keksclan/goMensaSquirrel/meal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultURL     = "https://app2022.stw.berlin/api/getdata.php"
	DefaultTimeout = 30 * time.Second

	// maxBody bounds how much of a response is read.
	maxBody = 8 << 20
)

// Client is a fetcher for the upstream API.
type Client struct {
	base       string
	httpClient *http.Client
	timeout    time.Duration
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithURL overrides the API endpoint.
func WithURL(u string) Option {
	return func(c *Client) { c.base = u }
}

// WithHTTPClient replaces the HTTP client. It is used as given, including
// its transport and timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client. It
// has no effect together with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for payload anomalies.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a Client whose transport is instrumented with otelhttp.
func NewClient(opts ...Option) *Client {
	c := &Client{
		base:    DefaultURL,
		timeout: DefaultTimeout,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return c
}

func (c *Client) endpoint(facility, lang string) (string, error) {
	u, err := url.Parse(c.base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("mensa_id", facility)
	q.Set("json", "1")
	q.Set("mode", "slsys")
	if lang != "" {
		q.Set("lang", lang)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch downloads and converts the plan of facility in lang. An empty lang
// leaves the choice to the upstream.
func (c *Client) Fetch(ctx context.Context, facility, lang string) (*meal.Plan, error) {
	target, err := c.endpoint(facility, lang)
	if err != nil {
		return nil, &TransportError{Facility: facility, Lang: lang, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{Facility: facility, Lang: lang, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Facility: facility, Lang: lang, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, &TransportError{
			Facility:   facility,
			Lang:       lang,
			StatusCode: resp.StatusCode,
			Err:        &httpStatusError{code: resp.StatusCode},
		}
	}

	var res meal.Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&res); err != nil {
		return nil, &ParseError{Facility: facility, Lang: lang, Err: err}
	}
	plan, err := meal.FromResult(res, c.log.With("facility", facility, "lang", lang))
	if err != nil {
		return nil, &ParseError{Facility: facility, Lang: lang, Err: err}
	}
	return plan, nil
}

type httpStatusError struct{ code int }

func (e *httpStatusError) Error() string { return http.StatusText(e.code) }
