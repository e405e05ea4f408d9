package alfresco

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
	"golang.org/x/text/unicode/norm"
)

const (
	defaultUserAgent         = "alfresco-fixtures/0.1"
	defaultNetwork           = "-default-"
	defaultUploadConcurrency = 4

	legacyAPIPath  = "/alfresco/service/api/"
	publicAPIPathF = "/alfresco/api/%s/public/alfresco/versions/1/"
)

// API selects which Alfresco base URL a request path is relative to.
type API int

const (
	// PublicAPI is the versioned REST API (sites, people, nodes).
	PublicAPI API = iota
	// LegacyAPI is the web script API (login, legacy site listing).
	LegacyAPI
)

// AuthMode selects how a request is authenticated.
type AuthMode int

const (
	AuthNone AuthMode = iota
	// AuthTicket appends a login ticket as the alf_ticket query parameter.
	AuthTicket
	// AuthBasic sends the credentials as HTTP Basic authorization.
	AuthBasic
)

// Request describes one call against the Alfresco API. Path is relative to
// the selected API base and must already have its name segments escaped
// (see escapeName).
type Request struct {
	Method      string
	API         API
	Network     string // tenant network for PublicAPI; empty means "-default-"
	Path        string
	Query       url.Values
	Body        io.Reader
	ContentType string
	Auth        AuthMode
}

// Response is a fully read HTTP response. The body has already been closed.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Outcome classifies the response status.
func (r *Response) Outcome() Outcome {
	return Classify(r.StatusCode)
}

// TicketSource provides short-lived login tickets. Defined at the consumer
// so tests and embedding callers can substitute their own provider.
type TicketSource interface {
	Ticket(ctx context.Context, creds Credentials) (string, error)
}

// Client is an HTTP client for the Alfresco REST API. It holds no mutable
// state after construction and is safe for concurrent use.
type Client struct {
	serverURL         string
	httpClient        *http.Client
	tickets           TicketSource
	logger            *slog.Logger
	userAgent         string
	uploadConcurrency int
}

// Option configures a Client.
type Option func(*Client)

// WithTicketSource replaces the default login-endpoint ticket source.
func WithTicketSource(ts TicketSource) Option {
	return func(c *Client) {
		c.tickets = ts
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithUploadConcurrency bounds how many files a bulk upload sends at once.
func WithUploadConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.uploadConcurrency = n
		}
	}
}

// NewClient creates an Alfresco client.
// serverURL is the scheme, host and port, e.g. "http://localhost:8080".
func NewClient(serverURL string, httpClient *http.Client, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{
		serverURL:         strings.TrimRight(serverURL, "/"),
		httpClient:        httpClient,
		logger:            logger,
		userAgent:         defaultUserAgent,
		uploadConcurrency: defaultUploadConcurrency,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.tickets == nil {
		c.tickets = NewLoginTicketSource(c)
	}

	return c
}

// Execute performs a single request with its own ticket (when the request
// uses ticket authentication). Non-2xx statuses are returned, not treated
// as errors; only transport failures produce an error.
func (c *Client) Execute(ctx context.Context, req Request, creds Credentials) (*Response, error) {
	return c.begin(creds).do(ctx, req)
}

// call is one public operation's view of the client. The ticket is
// acquired lazily on the first ticket-authenticated request and reused for
// the rest of the operation only.
type call struct {
	c      *Client
	creds  Credentials
	ticket string
}

func (c *Client) begin(creds Credentials) *call {
	return &call{c: c, creds: creds}
}

func (cl *call) do(ctx context.Context, req Request) (*Response, error) {
	c := cl.c

	target, err := c.buildURL(req)
	if err != nil {
		return nil, err
	}

	if req.Auth == AuthTicket {
		if cl.ticket == "" {
			ticket, ticketErr := c.tickets.Ticket(ctx, cl.creds)
			if ticketErr != nil {
				return nil, fmt.Errorf("alfresco: obtaining ticket: %w", ticketErr)
			}

			cl.ticket = ticket
		}

		q := target.Query()
		if qErr := mergeQuery(q, ticketQuery{Ticket: cl.ticket}); qErr != nil {
			return nil, qErr
		}

		target.RawQuery = q.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), req.Body)
	if err != nil {
		return nil, fmt.Errorf("alfresco: creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json, */*")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		contentType := req.ContentType
		if contentType == "" {
			contentType = "application/json"
		}

		httpReq.Header.Set("Content-Type", contentType)
	}

	if req.Auth == AuthBasic {
		httpReq.SetBasicAuth(cl.creds.Username, cl.creds.Password)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// *url.Error carries the full URL, including any password or ticket.
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = RedactURL(ue.URL)
		}

		return nil, fmt.Errorf("alfresco: %s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alfresco: reading %s %s response: %w", req.Method, req.Path, err)
	}

	c.logger.Debug("request completed",
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// buildURL concatenates the API base with the request path and query.
func (c *Client) buildURL(req Request) (*url.URL, error) {
	base := c.serverURL + legacyAPIPath

	if req.API == PublicAPI {
		network := req.Network
		if network == "" {
			network = defaultNetwork
		}

		base = c.serverURL + fmt.Sprintf(publicAPIPathF, url.PathEscape(network))
	}

	u, err := url.Parse(base + strings.TrimLeft(req.Path, "/"))
	if err != nil {
		return nil, fmt.Errorf("alfresco: parsing request URL for %s: %w", req.Path, err)
	}

	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	return u, nil
}

// mergeQuery encodes a url-tagged struct and adds its values to dst.
func mergeQuery(dst url.Values, opts any) error {
	v, err := query.Values(opts)
	if err != nil {
		return fmt.Errorf("alfresco: encoding query params: %w", err)
	}

	for k, vs := range v {
		dst[k] = vs
	}

	return nil
}

// escapeName NFC-normalizes a user-supplied name and percent-encodes it
// for use as a single path segment.
func escapeName(name string) string {
	return url.PathEscape(norm.NFC.String(name))
}

// sameName compares two entity names after NFC normalization.
func sameName(a, b string) bool {
	return norm.NFC.String(a) == norm.NFC.String(b)
}
