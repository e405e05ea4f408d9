package alfresco

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// sitePreset is the dashboard preset every fixture site is created with.
const sitePreset = "site-dashboard"

// CreateSite creates a site in the given domain (tenant network; empty means
// the default network). The site title is its id. Creating a site that
// already exists is surfaced as a *StatusError wrapping ErrConflict.
func (c *Client) CreateSite(
	ctx context.Context, creds Credentials, domain, siteID, description string, visibility Visibility,
) (*Site, error) {
	if err := checkArgs(creds, siteID); err != nil {
		return nil, err
	}

	if visibility == "" {
		visibility = VisibilityPublic
	}

	c.logger.Info("creating site",
		slog.String("domain", domain),
		slog.String("site", siteID),
		slog.String("visibility", string(visibility)),
		slog.String("preset", sitePreset),
	)

	bodyBytes, err := json.Marshal(createSiteRequest{
		ID:          siteID,
		Title:       siteID,
		Description: description,
		Visibility:  visibility,
	})
	if err != nil {
		return nil, fmt.Errorf("alfresco: marshaling create site request: %w", err)
	}

	req := Request{
		Method:  http.MethodPost,
		API:     PublicAPI,
		Network: domain,
		Path:    "sites",
		Body:    bytes.NewReader(bodyBytes),
		Auth:    AuthBasic,
	}

	resp, err := c.begin(creds).do(ctx, req)
	if err != nil {
		return nil, err
	}

	if !resp.Outcome().IsSuccess() {
		return nil, newStatusError(req, resp)
	}

	var ser siteEntryResponse
	if err := decode(resp.Body, &ser, "create site"); err != nil {
		return nil, err
	}

	site := ser.Entry.toSite()

	return &site, nil
}

// DeleteSite deletes a site by name. The server resolves the name; any
// non-2xx status is surfaced as a *StatusError.
func (c *Client) DeleteSite(ctx context.Context, creds Credentials, domain, siteID string) error {
	if err := checkArgs(creds, siteID); err != nil {
		return err
	}

	c.logger.Info("deleting site",
		slog.String("domain", domain),
		slog.String("site", siteID),
	)

	req := Request{
		Method:  http.MethodDelete,
		API:     PublicAPI,
		Network: domain,
		Path:    "sites/" + escapeName(siteID),
		Auth:    AuthBasic,
	}

	resp, err := c.begin(creds).do(ctx, req)
	if err != nil {
		return err
	}

	if !resp.Outcome().IsSuccess() {
		return newStatusError(req, resp)
	}

	return nil
}

// SiteExists reports whether the legacy site endpoint answers 200 for site.
func (c *Client) SiteExists(ctx context.Context, creds Credentials, siteID string) (bool, error) {
	if err := checkArgs(creds, siteID); err != nil {
		return false, err
	}

	resp, err := c.begin(creds).do(ctx, Request{
		Method: http.MethodGet,
		API:    LegacyAPI,
		Path:   "sites/" + escapeName(siteID),
		Auth:   AuthTicket,
	})
	if err != nil {
		return false, err
	}

	return resp.StatusCode == http.StatusOK, nil
}

// ListSites returns every site visible to the user. A non-200 listing
// yields an empty result, like any other lookup.
func (c *Client) ListSites(ctx context.Context, creds Credentials) ([]SiteSummary, error) {
	if err := checkArgs(creds); err != nil {
		return nil, err
	}

	resp, err := c.begin(creds).do(ctx, Request{
		Method: http.MethodGet,
		API:    LegacyAPI,
		Path:   "sites",
		Auth:   AuthTicket,
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("listing sites returned no result",
			slog.Int("status", resp.StatusCode),
		)

		return []SiteSummary{}, nil
	}

	var raw []legacySiteResponse
	if err := decode(resp.Body, &raw, "site list"); err != nil {
		return nil, err
	}

	sites := make([]SiteSummary, 0, len(raw))
	for _, s := range raw {
		sites = append(sites, SiteSummary{ShortName: s.ShortName, Title: s.Title})
	}

	c.logger.Debug("listed sites", slog.Int("count", len(sites)))

	return sites, nil
}
