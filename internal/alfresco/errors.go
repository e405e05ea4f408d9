// Package alfresco provides a fixture client for the Alfresco REST API:
// ticket and basic authentication, node-reference resolution by name, and
// create/delete operations for sites, folders, documents and favorites.
package alfresco

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// Sentinel errors for outcome classification.
// Use errors.Is(err, alfresco.ErrNotFound) to check.
var (
	ErrInvalidArgument  = errors.New("alfresco: parameter missing")
	ErrUnauthorized     = errors.New("alfresco: invalid user name or password")
	ErrNotFound         = errors.New("alfresco: not found")
	ErrConflict         = errors.New("alfresco: conflict")
	ErrUnexpectedStatus = errors.New("alfresco: unexpected status")
	ErrNotADirectory    = errors.New("alfresco: upload source is not a directory")
	ErrFolderNotEmpty   = errors.New("alfresco: folder is not empty")
)

// Outcome is the classified result of an HTTP status code.
type Outcome int

const (
	OutcomeOther Outcome = iota
	OutcomeSuccess
	OutcomeCreated
	OutcomeNoContent
	OutcomeNotFound
	OutcomeUnauthorized
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeCreated:
		return "created"
	case OutcomeNoContent:
		return "no-content"
	case OutcomeNotFound:
		return "not-found"
	case OutcomeUnauthorized:
		return "unauthorized"
	default:
		return "other"
	}
}

// Classify maps an HTTP status code to an Outcome. 2xx codes other than
// 201 and 204 count as plain success.
func Classify(code int) Outcome {
	switch code {
	case http.StatusCreated:
		return OutcomeCreated
	case http.StatusNoContent:
		return OutcomeNoContent
	case http.StatusNotFound:
		return OutcomeNotFound
	case http.StatusUnauthorized:
		return OutcomeUnauthorized
	default:
		if code >= http.StatusOK && code < http.StatusMultipleChoices {
			return OutcomeSuccess
		}

		return OutcomeOther
	}
}

// IsSuccess reports whether the outcome is one of the 2xx outcomes.
func (o Outcome) IsSuccess() bool {
	return o == OutcomeSuccess || o == OutcomeCreated || o == OutcomeNoContent
}

// Err maps the outcome to its sentinel error, or nil for success outcomes.
func (o Outcome) Err() error {
	switch o {
	case OutcomeSuccess, OutcomeCreated, OutcomeNoContent:
		return nil
	case OutcomeNotFound:
		return ErrNotFound
	case OutcomeUnauthorized:
		return ErrUnauthorized
	default:
		return ErrUnexpectedStatus
	}
}

// classifyStatus is Outcome.Err with 409 told apart from other failures.
func classifyStatus(code int) error {
	if code == http.StatusConflict {
		return ErrConflict
	}

	return Classify(code).Err()
}

// StatusError wraps a sentinel error with the request that produced it
// and the response body, for operations that surface failures as-is.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error // sentinel, for errors.Is()
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("alfresco: %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	}

	return fmt.Sprintf("alfresco: %s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// newStatusError builds a StatusError for a non-2xx response.
func newStatusError(req Request, resp *Response) *StatusError {
	return &StatusError{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: resp.StatusCode,
		Body:       truncateBody(resp.Body),
		Err:        classifyStatus(resp.StatusCode),
	}
}

// maxErrorBody caps how much of a response body is kept in a StatusError.
const maxErrorBody = 512

// truncateBody cuts body to at most maxErrorBody bytes without splitting a
// UTF-8 sequence.
func truncateBody(body []byte) string {
	if len(body) <= maxErrorBody {
		return string(body)
	}

	cut := maxErrorBody
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}

	return string(body[:cut]) + "..."
}

// NotFoundError reports that a named entity a mutation depends on is absent.
type NotFoundError struct {
	Kind string // "site", "folder", "document" or "node"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("alfresco: %s does not exist: %s", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
