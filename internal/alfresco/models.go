package alfresco

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Alfresco timestamps use a numeric zone without a colon.
const alfrescoTimeLayout = "2006-01-02T15:04:05.000-0700"

// siteEntryResponse mirrors the versioned API site entry.
// Unexported; callers use Site via toSite().
type siteEntryResponse struct {
	Entry siteEntry `json:"entry"`
}

type siteEntry struct {
	ID          string `json:"id"`
	GUID        string `json:"guid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
}

type createSiteRequest struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Visibility  Visibility `json:"visibility"`
}

// legacySiteResponse is one element of the legacy site listing array.
type legacySiteResponse struct {
	ShortName string `json:"shortName"`
	Title     string `json:"title"`
}

type containerResponse struct {
	Entry struct {
		ID       string `json:"id"`
		FolderID string `json:"folderId"`
	} `json:"entry"`
}

type nodeEntryResponse struct {
	Entry nodeEntry `json:"entry"`
}

type nodeEntry struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	ParentID   string       `json:"parentId"`
	IsFolder   bool         `json:"isFolder"`
	IsFile     bool         `json:"isFile"`
	Content    *contentInfo `json:"content"`
	CreatedAt  string       `json:"createdAt"`
	ModifiedAt string       `json:"modifiedAt"`
}

type contentInfo struct {
	MimeType    string `json:"mimeType"`
	SizeInBytes int64  `json:"sizeInBytes"`
}

type nodeListResponse struct {
	List struct {
		Pagination pagination          `json:"pagination"`
		Entries    []nodeEntryResponse `json:"entries"`
	} `json:"list"`
}

type pagination struct {
	Count        int  `json:"count"`
	HasMoreItems bool `json:"hasMoreItems"`
	SkipCount    int  `json:"skipCount"`
	MaxItems     int  `json:"maxItems"`
}

type createFolderRequest struct {
	Name     string `json:"name"`
	NodeType string `json:"nodeType"`
}

type favoriteRequest struct {
	Target favoriteTarget `json:"target"`
}

type favoriteTarget struct {
	Site *favoriteSite `json:"site,omitempty"`
}

type favoriteSite struct {
	GUID NodeRef `json:"guid"`
}

func (e *siteEntry) toSite() Site {
	return Site{
		ID:          e.ID,
		GUID:        NodeRef(e.GUID),
		Title:       e.Title,
		Description: e.Description,
		Visibility:  Visibility(e.Visibility),
	}
}

// toNode normalizes a node entry into our Node type.
func (e *nodeEntry) toNode(logger *slog.Logger) Node {
	n := Node{
		Ref:       NodeRef(e.ID),
		Name:      e.Name,
		ParentRef: NodeRef(e.ParentID),
		IsFolder:  e.IsFolder,
		IsFile:    e.IsFile,
	}

	if e.Content != nil {
		n.MimeType = e.Content.MimeType
		n.Size = e.Content.SizeInBytes
	}

	n.CreatedAt = parseTimestamp(e.CreatedAt, "createdAt", e.ID, logger)
	n.ModifiedAt = parseTimestamp(e.ModifiedAt, "modifiedAt", e.ID, logger)

	return n
}

// parseTimestamp accepts Alfresco's own layout and RFC3339. Missing or
// malformed values become the zero time.
func parseTimestamp(raw, field, nodeID string, logger *slog.Logger) time.Time {
	if raw == "" {
		return time.Time{}
	}

	for _, layout := range []string{alfrescoTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}

	logger.Warn("invalid timestamp",
		slog.String("field", field),
		slog.String("node_id", nodeID),
		slog.String("raw", raw),
	)

	return time.Time{}
}

// decode unmarshals a response body into v, naming what was decoded on error.
func decode(body []byte, v any, what string) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("alfresco: decoding %s response: %w", what, err)
	}

	return nil
}
