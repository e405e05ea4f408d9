package alfresco

import "net/url"

// Redacted replaces secret values in URLs shown to users or saved to disk.
const Redacted = "REDACTED"

// SecretQueryParams are query parameters that carry credentials: the login
// password and the per-operation ticket.
var SecretQueryParams = []string{"pw", "alf_ticket"}

// RedactURL replaces secret query parameter values in raw. Unparsable URLs
// are returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	changed := false

	for _, key := range SecretQueryParams {
		if q.Has(key) {
			q.Set(key, Redacted)
			changed = true
		}
	}

	if !changed {
		return raw
	}

	u.RawQuery = q.Encode()

	return u.String()
}
