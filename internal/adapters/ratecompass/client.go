// internal/adapters/ratecompass/client.go
package ratecompass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"ratecompass/internal/adapters/observability"
)

const service = "ratecompass"

// route labels for outbound metrics; interpolated paths would explode cardinality
const (
	routeCompasses = "/api/v1/compasses/"
	routeReviews   = "/api/v1/compasses/{compass}/products/{product}/reviews"
	routeOrders    = "/api/v1/compasses/{compass}/orders/"
	routeAdhoc     = "adhoc"
)

type Client struct {
	host   string
	apiKey string
	rc     *resty.Client
	log    zerolog.Logger
	rl     *rate.Limiter
}

type options struct {
	hc      *http.Client
	log     zerolog.Logger
	rl      *rate.Limiter
	timeout time.Duration
}

type Option func(*options)

// WithLogger sets the logging sink. The default discards everything.
func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.log = l } }

// WithHTTPClient swaps the underlying transport. WithTimeout does not apply
// to a client passed this way; hc.Timeout is left untouched.
func WithHTTPClient(hc *http.Client) Option { return func(o *options) { o.hc = hc } }

// WithLimiter paces outbound requests. Share one limiter between clients
// that talk to the same RateCompass account.
func WithLimiter(rl *rate.Limiter) Option { return func(o *options) { o.rl = rl } }

func WithTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

func New(host, apiKey string, opts ...Option) (*Client, error) {
	if host == "" {
		return nil, &ConfigurationError{Missing: "host"}
	}
	if apiKey == "" {
		return nil, &ConfigurationError{Missing: "apikey"}
	}

	o := options{log: zerolog.Nop(), timeout: 20 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	var rc *resty.Client
	if o.hc != nil {
		// the caller's client keeps its own timeout
		rc = resty.NewWithClient(o.hc)
	} else {
		rc = resty.New().SetTimeout(o.timeout)
	}
	rc.SetLogger(restyLogger{l: o.log}).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "ratecompass-go/1.0")

	return &Client{
		host:   NormalizeHost(host),
		apiKey: apiKey,
		rc:     rc,
		log:    o.log,
		rl:     o.rl,
	}, nil
}

// NormalizeHost prefixes https:// unless the host already carries an http(s) scheme.
func NormalizeHost(host string) string {
	if strings.HasPrefix(host, "http") {
		return host
	}
	return "https://" + host
}

func (c *Client) Host() string { return c.host }

// BuildURL joins host and endpoint verbatim; endpoint must start with "/".
func (c *Client) BuildURL(endpoint string) string {
	return c.host + endpoint
}

// RequestOptions carries the optional bearer token and JSON body of a request.
type RequestOptions struct {
	Bearer string
	JSON   any
}

// MarshalZerologObject keeps the bearer token out of the logs.
func (o RequestOptions) MarshalZerologObject(e *zerolog.Event) {
	if o.Bearer != "" {
		e.Str("auth_bearer", "***")
	}
	if o.JSON != nil {
		e.Interface("json", o.JSON)
	}
}

// ---- Public API ----

func (c *Client) GetCompassID(ctx context.Context) (string, error) {
	out, err := c.do(ctx, routeCompasses, http.MethodGet, "/api/v1/compasses/", RequestOptions{Bearer: c.apiKey})
	if err != nil {
		c.log.Error().Err(err).Msg("Error getting Compass ID")
		return "", err
	}

	v, ok := out["id"]
	if !ok {
		c.log.Error().Interface("content", out).Msg("Compass ID is missing from response")
		return "", &MissingFieldError{Field: "id", Message: "Compass ID is missing from response"}
	}
	id, ok := v.(string)
	if !ok {
		c.log.Error().Interface("id", v).Msg("Compass ID is not a string")
		return "", &DecodeError{Content: fmt.Sprint(v), Err: fmt.Errorf("id is %T, want string", v)}
	}
	return id, nil
}

// GetReviews is best-effort: request failures come back as {"error": msg}
// with a nil error. Only a successful body without "count" is an error.
func (c *Client) GetReviews(ctx context.Context, compassID, productID string) (map[string]any, error) {
	uri := fmt.Sprintf("/api/v1/compasses/%s/products/%s/reviews", compassID, productID)
	out, err := c.do(ctx, routeReviews, http.MethodGet, uri, RequestOptions{})
	if err != nil {
		c.log.Error().Err(err).
			Str("compass_id", compassID).
			Str("product_id", productID).
			Msg("Error getting reviews")
		return map[string]any{"error": err.Error()}, nil
	}

	if _, ok := out["count"]; ok {
		return out, nil
	}
	c.log.Error().Interface("content", out).Msg("Failed to get reviews from RateCompass")
	return nil, &MissingFieldError{Field: "count", Message: "Failed to get reviews from RateCompass"}
}

// PostOrder submits an order for review solicitation. The payload is sent
// as-is and the confirmation is returned as decoded.
func (c *Client) PostOrder(ctx context.Context, compassID string, order map[string]any) (map[string]any, error) {
	opts := RequestOptions{Bearer: c.apiKey, JSON: order}

	c.log.Debug().
		Str("compass_id", compassID).
		Object("options", opts).
		Msg("Create new order")

	out, err := c.do(ctx, routeOrders, http.MethodPost, fmt.Sprintf("/api/v1/compasses/%s/orders/", compassID), opts)
	if err != nil {
		c.log.Error().Err(err).Str("compass_id", compassID).Msg("Error create new order")
		return nil, err
	}

	c.log.Debug().Interface("response", out).Msg("Order created")
	return out, nil
}

// ---- Internals ----

// DoRequest performs one request and classifies the outcome into
// TransportError, APIError or DecodeError. It never retries.
func (c *Client) DoRequest(ctx context.Context, method, endpoint string, opts RequestOptions) (map[string]any, error) {
	return c.do(ctx, routeAdhoc, method, endpoint, opts)
}

func (c *Client) do(ctx context.Context, route, method, endpoint string, opts RequestOptions) (map[string]any, error) {
	url := c.BuildURL(endpoint)

	if c.rl != nil {
		if err := c.rl.Wait(ctx); err != nil {
			c.log.Error().Err(err).Str("url", url).Msg("Rate limiter wait aborted")
			return nil, &TransportError{Method: method, URL: url, Err: err}
		}
	}

	req := c.rc.R().SetContext(ctx)
	if opts.Bearer != "" {
		req.SetAuthToken(opts.Bearer)
	}
	if opts.JSON != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(opts.JSON)
	}

	start := time.Now()
	resp, err := req.Execute(method, url)
	if err != nil {
		// connection, DNS, timeout or body read failure: nothing to decode
		observability.ObserveExternal(service, route, 0, time.Since(start))
		c.log.Error().
			Str("exception", err.Error()).
			Object("options", opts).
			Msg("Network error occurred while making request")
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}

	status := resp.StatusCode()
	observability.ObserveExternal(service, route, status, time.Since(start))
	content := resp.Body()

	if !resp.IsSuccess() {
		// a 400 usually carries a JSON validation message; if it does not
		// even parse, report that instead of the status
		if status == http.StatusBadRequest {
			if _, derr := decodeAny(content); derr != nil {
				c.log.Error().Str("content", string(content)).Msg("Could not decode JSON response")
				return nil, &DecodeError{Content: string(content), Err: derr}
			}
		}

		c.log.Error().
			Int("status", status).
			Str("content", string(content)).
			Str("exception", fmt.Sprintf("HTTP %d returned for %q", status, url)).
			Msg("API request response other than 200")
		return nil, &APIError{Status: status, Content: string(content)}
	}

	out, derr := decodeObject(content)
	if derr != nil {
		c.log.Error().Str("content", string(content)).Msg("Could not decode JSON response")
		return nil, &DecodeError{Content: string(content), Err: derr}
	}
	return out, nil
}

// decodeAny accepts any JSON value except null.
func decodeAny(b []byte) (any, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("empty JSON value")
	}
	return v, nil
}

func decodeObject(b []byte) (map[string]any, error) {
	v, err := decodeAny(b)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("JSON value is %T, want object", v)
	}
	return m, nil
}

// restyLogger routes resty's internal messages into zerolog.
type restyLogger struct{ l zerolog.Logger }

func (r restyLogger) Errorf(format string, v ...interface{}) { r.l.Error().Msgf(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.l.Warn().Msgf(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.l.Debug().Msgf(format, v...) }
