package alfresco

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// ticketQuery carries a login ticket on ticket-authenticated requests.
type ticketQuery struct {
	Ticket string `url:"alf_ticket"`
}

// loginQuery defines the query parameters for the legacy login web script.
type loginQuery struct {
	User     string `url:"u"`
	Password string `url:"pw"`
	Format   string `url:"format,omitempty"`
}

// loginResponse mirrors {"data":{"ticket":"TICKET_..."}}.
type loginResponse struct {
	Data struct {
		Ticket string `json:"ticket"`
	} `json:"data"`
}

// LoginTicketSource obtains a fresh ticket from the login web script on
// every call. Tickets are never cached.
type LoginTicketSource struct {
	client *Client
}

// NewLoginTicketSource returns a TicketSource backed by c's login endpoint.
func NewLoginTicketSource(c *Client) *LoginTicketSource {
	return &LoginTicketSource{client: c}
}

// Ticket logs in with creds and returns the ticket. Rejected credentials
// (401 or 403) are reported as ErrUnauthorized.
func (s *LoginTicketSource) Ticket(ctx context.Context, creds Credentials) (string, error) {
	if creds.blank() {
		return "", fmt.Errorf("%w: user name and password are required for a ticket", ErrInvalidArgument)
	}

	q := url.Values{}
	if err := mergeQuery(q, loginQuery{User: creds.Username, Password: creds.Password, Format: "json"}); err != nil {
		return "", err
	}

	req := Request{
		Method: http.MethodGet,
		API:    LegacyAPI,
		Path:   "login",
		Query:  q,
		Auth:   AuthNone,
	}

	resp, err := s.client.begin(creds).do(ctx, req)
	if err != nil {
		return "", err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", &StatusError{
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Err:        ErrUnauthorized,
		}
	default:
		return "", newStatusError(req, resp)
	}

	var lr loginResponse
	if err := json.Unmarshal(resp.Body, &lr); err != nil {
		return "", fmt.Errorf("alfresco: decoding login response: %w", err)
	}

	if lr.Data.Ticket == "" {
		return "", fmt.Errorf("alfresco: login response carried no ticket")
	}

	s.client.logger.Debug("obtained ticket", slog.String("user", creds.Username))

	return lr.Data.Ticket, nil
}
