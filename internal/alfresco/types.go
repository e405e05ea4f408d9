package alfresco

import (
	"strings"
	"time"
)

// Credentials identify the Alfresco user a call acts as.
type Credentials struct {
	Username string
	Password string
}

// blank reports whether either half of the credentials is empty or only
// whitespace. Non-blank values are sent as given, untrimmed.
func (c Credentials) blank() bool {
	return strings.TrimSpace(c.Username) == "" || strings.TrimSpace(c.Password) == ""
}

// NodeRef is an opaque server-assigned reference to a site, folder or
// document. It is only meaningful within one Alfresco instance; an empty
// NodeRef marks absence.
type NodeRef string

// IsZero reports whether the reference is empty.
func (r NodeRef) IsZero() bool {
	return r == ""
}

func (r NodeRef) String() string {
	return string(r)
}

// Lookup is the result of a plain existence check. An empty Ref means the
// entity was not found; Status holds the HTTP status of the lookup request
// (0 when no request was made).
type Lookup struct {
	Ref    NodeRef
	Status int
}

// Found reports whether the lookup resolved a reference.
func (l Lookup) Found() bool {
	return !l.Ref.IsZero()
}

// Visibility is the site visibility type.
type Visibility string

const (
	VisibilityPublic    Visibility = "PUBLIC"
	VisibilityModerated Visibility = "MODERATED"
	VisibilityPrivate   Visibility = "PRIVATE"
)

// ParseVisibility converts a case-insensitive name to a Visibility.
func ParseVisibility(s string) (Visibility, bool) {
	switch Visibility(strings.ToUpper(strings.TrimSpace(s))) {
	case VisibilityPublic:
		return VisibilityPublic, true
	case VisibilityModerated:
		return VisibilityModerated, true
	case VisibilityPrivate:
		return VisibilityPrivate, true
	default:
		return "", false
	}
}

// DocumentType is the MIME type a fixture document is created with.
type DocumentType string

const (
	DocumentTextPlain  DocumentType = "text/plain"
	DocumentXML        DocumentType = "text/xml"
	DocumentHTML       DocumentType = "text/html"
	DocumentPDF        DocumentType = "application/pdf"
	DocumentMSWord     DocumentType = "application/msword"
	DocumentMSExcel    DocumentType = "application/vnd.ms-excel"
	DocumentPowerPoint DocumentType = "application/vnd.ms-powerpoint"
)

// documentTypeNames maps short CLI names to document types.
var documentTypeNames = map[string]DocumentType{
	"text":       DocumentTextPlain,
	"plain":      DocumentTextPlain,
	"xml":        DocumentXML,
	"html":       DocumentHTML,
	"pdf":        DocumentPDF,
	"word":       DocumentMSWord,
	"msword":     DocumentMSWord,
	"excel":      DocumentMSExcel,
	"msexcel":    DocumentMSExcel,
	"powerpoint": DocumentPowerPoint,
}

// ParseDocumentType accepts a short name ("text", "word") or a MIME type.
func ParseDocumentType(s string) (DocumentType, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if dt, ok := documentTypeNames[key]; ok {
		return dt, true
	}

	for _, dt := range documentTypeNames {
		if string(dt) == key {
			return dt, true
		}
	}

	return "", false
}

// MimeType returns the MIME type string, defaulting to text/plain.
func (d DocumentType) MimeType() string {
	if d == "" {
		return string(DocumentTextPlain)
	}

	return string(d)
}

// Site is a site as returned by the versioned sites API.
type Site struct {
	ID          string
	GUID        NodeRef
	Title       string
	Description string
	Visibility  Visibility
}

// SiteSummary is one row of the legacy site listing.
type SiteSummary struct {
	ShortName string
	Title     string
}

// Node is a folder or document in a site's document library.
type Node struct {
	Ref        NodeRef
	Name       string
	ParentRef  NodeRef
	IsFolder   bool
	IsFile     bool
	MimeType   string
	Size       int64
	CreatedAt  time.Time
	ModifiedAt time.Time
}
