package alfresco

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// childrenPageSize is the maxItems value for children listings.
const childrenPageSize = 100

// childrenQuery defines the paging parameters for nodes/{id}/children.
type childrenQuery struct {
	SkipCount int `url:"skipCount"`
	MaxItems  int `url:"maxItems"`
}

// nodeKind restricts which nodes a name lookup may match.
type nodeKind int

const (
	anyNode nodeKind = iota
	folderNode
	documentNode
)

func (k nodeKind) String() string {
	switch k {
	case folderNode:
		return "folder"
	case documentNode:
		return "document"
	default:
		return "node"
	}
}

func (k nodeKind) matches(n *Node) bool {
	switch k {
	case folderNode:
		return n.IsFolder
	case documentNode:
		return !n.IsFolder
	default:
		return true
	}
}

// checkArgs fails with ErrInvalidArgument if the credentials or any of the
// named values are blank. It never touches the network.
func checkArgs(creds Credentials, values ...string) error {
	if creds.blank() {
		return fmt.Errorf("%w: user name and password are required", ErrInvalidArgument)
	}

	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return ErrInvalidArgument
		}
	}

	return nil
}

// FindSiteRef resolves a site name to its node reference. Any non-200
// status yields an empty Lookup rather than an error; only transport and
// decoding failures are returned as errors.
func (c *Client) FindSiteRef(ctx context.Context, creds Credentials, site string) (Lookup, error) {
	if err := checkArgs(creds, site); err != nil {
		return Lookup{}, err
	}

	return c.begin(creds).findSiteRef(ctx, site)
}

// RequireSiteRef resolves a site that a mutation depends on. An absent site
// is a *NotFoundError; rejected credentials are ErrUnauthorized.
func (c *Client) RequireSiteRef(ctx context.Context, creds Credentials, site string) (NodeRef, error) {
	if err := checkArgs(creds, site); err != nil {
		return "", err
	}

	return c.begin(creds).requireSiteRef(ctx, site)
}

// GetNodeRef returns the reference of the first node named name anywhere in
// the site's document library, or "" if the site or node does not exist.
func (c *Client) GetNodeRef(ctx context.Context, creds Credentials, site, name string) (NodeRef, error) {
	l, err := c.FindNodeRef(ctx, creds, site, name)
	if err != nil {
		return "", err
	}

	return l.Ref, nil
}

// RequireFolderRef resolves a folder by name for a mutation. A missing site
// or folder is a *NotFoundError.
func (c *Client) RequireFolderRef(ctx context.Context, creds Credentials, site, name string) (NodeRef, error) {
	return c.requireRef(ctx, creds, site, name, folderNode)
}

// RequireDocumentRef is RequireFolderRef for documents.
func (c *Client) RequireDocumentRef(ctx context.Context, creds Credentials, site, name string) (NodeRef, error) {
	return c.requireRef(ctx, creds, site, name, documentNode)
}

func (c *Client) requireRef(ctx context.Context, creds Credentials, site, name string, kind nodeKind) (NodeRef, error) {
	if err := checkArgs(creds, site, name); err != nil {
		return "", err
	}

	n, err := c.begin(creds).requireNode(ctx, site, name, kind)
	if err != nil {
		return "", err
	}

	return n.Ref, nil
}

// FindNodeRef is GetNodeRef with the lookup status attached.
func (c *Client) FindNodeRef(ctx context.Context, creds Credentials, site, name string) (Lookup, error) {
	if err := checkArgs(creds, site, name); err != nil {
		return Lookup{}, err
	}

	n, status, err := c.begin(creds).findNode(ctx, site, name, anyNode)
	if err != nil {
		return Lookup{}, err
	}

	if n == nil {
		return Lookup{Status: status}, nil
	}

	return Lookup{Ref: n.Ref, Status: status}, nil
}

func (cl *call) findSiteRef(ctx context.Context, site string) (Lookup, error) {
	resp, err := cl.do(ctx, Request{
		Method: http.MethodGet,
		API:    PublicAPI,
		Path:   "sites/" + escapeName(site),
		Auth:   AuthBasic,
	})
	if err != nil {
		return Lookup{}, err
	}

	if resp.StatusCode != http.StatusOK {
		cl.c.logger.Debug("site not resolved",
			slog.String("site", site),
			slog.Int("status", resp.StatusCode),
		)

		return Lookup{Status: resp.StatusCode}, nil
	}

	var ser siteEntryResponse
	if err := decode(resp.Body, &ser, "site"); err != nil {
		return Lookup{}, err
	}

	return Lookup{Ref: NodeRef(ser.Entry.GUID), Status: resp.StatusCode}, nil
}

func (cl *call) requireSiteRef(ctx context.Context, site string) (NodeRef, error) {
	l, err := cl.findSiteRef(ctx, site)
	if err != nil {
		return "", err
	}

	if l.Found() {
		return l.Ref, nil
	}

	return "", lookupError(l, "site", site)
}

// documentLibrary resolves the document library container of a site.
func (cl *call) documentLibrary(ctx context.Context, site string) (Lookup, error) {
	resp, err := cl.do(ctx, Request{
		Method: http.MethodGet,
		API:    PublicAPI,
		Path:   "sites/" + escapeName(site) + "/containers/documentLibrary",
		Auth:   AuthTicket,
	})
	if err != nil {
		return Lookup{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return Lookup{Status: resp.StatusCode}, nil
	}

	var cr containerResponse
	if err := decode(resp.Body, &cr, "container"); err != nil {
		return Lookup{}, err
	}

	ref := cr.Entry.ID
	if ref == "" {
		ref = cr.Entry.FolderID
	}

	return Lookup{Ref: NodeRef(ref), Status: resp.StatusCode}, nil
}

// requireDocumentLibrary is documentLibrary for mutations: a missing site
// is a *NotFoundError.
func (cl *call) requireDocumentLibrary(ctx context.Context, site string) (NodeRef, error) {
	l, err := cl.documentLibrary(ctx, site)
	if err != nil {
		return "", err
	}

	if !l.Found() {
		return "", lookupError(l, "site", site)
	}

	return l.Ref, nil
}

// listChildren returns every child of parent, following pagination.
// A non-200 page is returned as a *StatusError.
func (cl *call) listChildren(ctx context.Context, parent NodeRef) ([]Node, error) {
	var nodes []Node

	skip := 0

	for {
		q := url.Values{}
		if err := mergeQuery(q, childrenQuery{SkipCount: skip, MaxItems: childrenPageSize}); err != nil {
			return nil, err
		}

		req := Request{
			Method: http.MethodGet,
			API:    PublicAPI,
			Path:   "nodes/" + escapeName(parent.String()) + "/children",
			Query:  q,
			Auth:   AuthTicket,
		}

		resp, err := cl.do(ctx, req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			return nil, newStatusError(req, resp)
		}

		var nlr nodeListResponse
		if err := decode(resp.Body, &nlr, "children"); err != nil {
			return nil, err
		}

		for i := range nlr.List.Entries {
			nodes = append(nodes, nlr.List.Entries[i].Entry.toNode(cl.c.logger))
		}

		if !nlr.List.Pagination.HasMoreItems || len(nlr.List.Entries) == 0 {
			return nodes, nil
		}

		skip += len(nlr.List.Entries)
	}
}

// findNode walks the site's document library breadth-first and returns the
// first node of the given kind named name. Absence, including a missing
// site or an unreadable document library, is reported as a nil node with the
// status that ended the search. Unreadable sub-folders are skipped.
func (cl *call) findNode(ctx context.Context, site, name string, kind nodeKind) (*Node, int, error) {
	lib, err := cl.documentLibrary(ctx, site)
	if err != nil {
		return nil, 0, err
	}

	if !lib.Found() {
		return nil, lib.Status, nil
	}

	queue := []NodeRef{lib.Ref}

	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		children, err := cl.listChildren(ctx, parent)
		if err != nil {
			var se *StatusError
			if !errors.As(err, &se) {
				return nil, 0, err
			}

			if parent == lib.Ref {
				return nil, se.StatusCode, nil
			}

			// An unreadable sub-folder hides only its own subtree.
			cl.c.logger.Debug("skipping unreadable folder",
				slog.String("folder", parent.String()),
				slog.Int("status", se.StatusCode),
			)

			continue
		}

		for i := range children {
			if sameName(children[i].Name, name) && kind.matches(&children[i]) {
				return &children[i], http.StatusOK, nil
			}

			if children[i].IsFolder {
				queue = append(queue, children[i].Ref)
			}
		}
	}

	return nil, http.StatusNotFound, nil
}

// requireNode is findNode for mutations: absence is a *NotFoundError.
func (cl *call) requireNode(ctx context.Context, site, name string, kind nodeKind) (*Node, error) {
	n, status, err := cl.findNode(ctx, site, name, kind)
	if err != nil {
		return nil, err
	}

	if n == nil {
		return nil, lookupError(Lookup{Status: status}, kind.String(), name)
	}

	return n, nil
}

// lookupError promotes an empty lookup to the error a mutation reports.
func lookupError(l Lookup, kind, name string) error {
	if l.Status == http.StatusUnauthorized {
		return fmt.Errorf("%w: resolving %s %q", ErrUnauthorized, kind, name)
	}

	return &NotFoundError{Kind: kind, Name: name}
}
