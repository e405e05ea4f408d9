package alfresco

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// The favorites endpoints are addressed by node reference, so every
// favorite operation resolves the site first, within the same call.

func favoritesPath(user string) string {
	return "people/" + escapeName(user) + "/favorites"
}

func favoritePath(user string, ref NodeRef) string {
	return favoritesPath(user) + "/" + escapeName(ref.String())
}

// SetFavorite marks a site as a favorite of creds.Username.
//
//   - 201 → true
//   - 404 → *NotFoundError for the site
//   - 401 → ErrUnauthorized
//   - anything else → false, logged
//
// A site that cannot be resolved is a *NotFoundError and the favorites
// endpoint is never called.
func (c *Client) SetFavorite(ctx context.Context, creds Credentials, site string) (bool, error) {
	if err := checkArgs(creds, site); err != nil {
		return false, err
	}

	cl := c.begin(creds)

	ref, err := cl.requireSiteRef(ctx, site)
	if err != nil {
		return false, err
	}

	bodyBytes, err := json.Marshal(favoriteRequest{
		Target: favoriteTarget{Site: &favoriteSite{GUID: ref}},
	})
	if err != nil {
		return false, fmt.Errorf("alfresco: marshaling favorite request: %w", err)
	}

	req := Request{
		Method: http.MethodPost,
		API:    PublicAPI,
		Path:   favoritesPath(creds.Username),
		Body:   bytes.NewReader(bodyBytes),
		Auth:   AuthBasic,
	}

	resp, err := cl.do(ctx, req)
	if err != nil {
		return false, err
	}

	switch resp.Outcome() {
	case OutcomeCreated:
		c.logger.Debug("site marked as favorite", slog.String("site", site))
		return true, nil
	case OutcomeNotFound:
		return false, &NotFoundError{Kind: "site", Name: site}
	case OutcomeUnauthorized:
		return false, fmt.Errorf("%w: marking %q as favorite", ErrUnauthorized, site)
	default:
		c.logger.Error("unable to mark as favorite",
			slog.String("site", site),
			slog.Int("status", resp.StatusCode),
			slog.String("body", truncateBody(resp.Body)),
		)

		return false, nil
	}
}

// IsFavorite reports whether the site is a favorite of creds.Username.
// A site that cannot be resolved is simply not a favorite.
func (c *Client) IsFavorite(ctx context.Context, creds Credentials, site string) (bool, error) {
	if err := checkArgs(creds, site); err != nil {
		return false, err
	}

	cl := c.begin(creds)

	l, err := cl.findSiteRef(ctx, site)
	if err != nil {
		return false, err
	}

	if !l.Found() {
		return false, nil
	}

	resp, err := cl.do(ctx, Request{
		Method: http.MethodGet,
		API:    PublicAPI,
		Path:   favoritePath(creds.Username, l.Ref),
		Auth:   AuthBasic,
	})
	if err != nil {
		return false, err
	}

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	c.logger.Debug("site is marked as favorite", slog.String("site", site))

	return true, nil
}

// RemoveFavorite removes a site from creds.Username's favorites.
// 204 → true; anything else → false, logged. A site that cannot be
// resolved is a *NotFoundError and no delete is issued.
func (c *Client) RemoveFavorite(ctx context.Context, creds Credentials, site string) (bool, error) {
	if err := checkArgs(creds, site); err != nil {
		return false, err
	}

	cl := c.begin(creds)

	ref, err := cl.requireSiteRef(ctx, site)
	if err != nil {
		return false, err
	}

	resp, err := cl.do(ctx, Request{
		Method: http.MethodDelete,
		API:    PublicAPI,
		Path:   favoritePath(creds.Username, ref),
		Auth:   AuthBasic,
	})
	if err != nil {
		return false, err
	}

	if resp.Outcome() == OutcomeNoContent {
		c.logger.Debug("site removed from favorites", slog.String("site", site))
		return true, nil
	}

	c.logger.Error("unable to remove favorite site",
		slog.String("site", site),
		slog.Int("status", resp.StatusCode),
		slog.String("body", truncateBody(resp.Body)),
	)

	return false, nil
}
