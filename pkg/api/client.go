package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stitchforge/embroidery-studio/pkg/config"
	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/metrics"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

var (
	errBaseURLRequired = errors.New("api base url is required")
	errLoggerRequired  = errors.New("api logger is required")
)

// TokenSource supplies the bearer token attached to every request. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// Options wires the client's collaborators.
type Options struct {
	Tokens  TokenSource
	Logger  *logger.Logger
	Metrics *metrics.RequestMetrics

	// OnUnauthorized runs once per 401 response: the ambient session is gone
	// and the caller should drop to the signed-out state.
	OnUnauthorized func()

	// HTTPClient overrides the default transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks JSON-over-HTTP to the embroidery backend with centralized
// auth, logging, timeouts, and error mapping.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	generateTimeout time.Duration
	userAgent       string
	tokens          TokenSource
	onUnauthorized  func()
	logger          *logger.Logger
	metrics         *metrics.RequestMetrics
}

// NewClient validates the configuration and builds the backend client.
func NewClient(cfg config.APIConfig, opts Options) (*Client, error) {
	if opts.Logger == nil {
		return nil, errLoggerRequired
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	generateTimeout := cfg.GenerateTimeout
	if generateTimeout <= 0 {
		generateTimeout = 180 * time.Second
	}

	return &Client{
		baseURL:         base,
		httpClient:      httpClient,
		generateTimeout: generateTimeout,
		userAgent:       cfg.UserAgent,
		tokens:          opts.Tokens,
		onUnauthorized:  opts.OnUnauthorized,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
	}, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// ResolveAssetURL turns a backend-relative media path into an absolute URL.
// Absolute refs pass through untouched.
func (c *Client) ResolveAssetURL(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	origin := c.baseURL
	if u, err := url.Parse(c.baseURL); err == nil && u.Host != "" {
		origin = u.Scheme + "://" + u.Host
	}
	return origin + "/" + strings.TrimLeft(ref, "/")
}

type requestSpec struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	fields map[string]any
}

// do executes one backend call, decoding the JSON payload into out. The out
// struct is expected to embed types.Envelope so the shared success/error
// shape is visible here.
func (c *Client) do(ctx context.Context, spec requestSpec, out envelopeCarrier) error {
	start := time.Now()
	err := c.doOnce(ctx, spec, out)
	c.metrics.ObserveDuration(spec.op, time.Since(start))
	if err != nil {
		c.metrics.IncFailure(spec.op)
		c.log(ctx, "error", spec.op, map[string]any{"error": err.Error()})
		return err
	}
	c.metrics.IncSuccess(spec.op)
	return nil
}

func (c *Client) doOnce(ctx context.Context, spec requestSpec, out envelopeCarrier) error {
	c.log(ctx, "request", spec.op, spec.fields)

	var bodyReader io.Reader
	if spec.body != nil {
		encoded, err := json.Marshal(spec.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, spec.method, spec.path, spec.query, bodyReader)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(ctx, spec.op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return c.handleUnauthorized(ctx, spec.op)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response body")
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			if resp.StatusCode >= 400 {
				return pkgerrors.New(domainCodeForStatus(resp.StatusCode), fmt.Sprintf("%s failed with status %d", spec.op, resp.StatusCode))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response body")
		}
	}

	if resp.StatusCode >= 400 || (out != nil && !out.envelope().Success) {
		return c.backendError(resp.StatusCode, spec.op, out)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// handleUnauthorized fires the global logout hook; a 401 anywhere means the
// session is over, not that one call failed.
func (c *Client) handleUnauthorized(ctx context.Context, op string) error {
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	c.logger.Warn(c.logger.WithField(ctx, "operation", op), "session rejected by backend, signing out")
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
}

func (c *Client) transportError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s timed out", op))
	}
	if errors.Is(err, context.Canceled) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s canceled", op))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s failed", op))
}

// backendError surfaces the backend's error string verbatim when present.
func (c *Client) backendError(status int, op string, out envelopeCarrier) error {
	code := domainCodeForStatus(status)
	message := ""
	if out != nil {
		message = out.envelope().Error
	}
	if message == "" {
		message = fmt.Sprintf("%s failed", op)
	}
	if strings.Contains(strings.ToLower(message), "insufficient token") {
		code = pkgerrors.CodeInsufficientTokens
	}
	return pkgerrors.New(code, message)
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusPaymentRequired:
		return pkgerrors.CodeInsufficientTokens
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		if status >= 500 {
			return pkgerrors.CodeDependency
		}
		return pkgerrors.CodeValidation
	}
}

// envelopeCarrier is satisfied by response payloads embedding types.Envelope.
type envelopeCarrier interface {
	envelope() types.Envelope
}

// envelopeResponse gives response structs the carrier method via embedding.
type envelopeResponse struct {
	types.Envelope
}

func (e envelopeResponse) envelope() types.Envelope {
	return e.Envelope
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Warn(ctx, fmt.Sprintf("api %s", op))
	default:
		c.logger.Debug(ctx, fmt.Sprintf("api %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"password", "token", "secret", "email"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
