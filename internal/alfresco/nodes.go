package alfresco

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// Content model node types.
const (
	nodeTypeFolder  = "cm:folder"
	nodeTypeContent = "cm:content"
)

func nodePath(ref NodeRef) string {
	return "nodes/" + escapeName(ref.String())
}

// CreateFolder creates a folder at the root of the site's document library.
// A duplicate or invalid name is surfaced as a *StatusError.
func (c *Client) CreateFolder(ctx context.Context, creds Credentials, site, name string) (*Node, error) {
	if err := checkArgs(creds, site, name); err != nil {
		return nil, err
	}

	cl := c.begin(creds)

	lib, err := cl.requireDocumentLibrary(ctx, site)
	if err != nil {
		return nil, err
	}

	return cl.createFolder(ctx, lib, name)
}

// CreateFolderIn creates a folder inside an existing folder of the site.
func (c *Client) CreateFolderIn(ctx context.Context, creds Credentials, site, parent, name string) (*Node, error) {
	if err := checkArgs(creds, site, parent, name); err != nil {
		return nil, err
	}

	cl := c.begin(creds)

	p, err := cl.requireNode(ctx, site, parent, folderNode)
	if err != nil {
		return nil, err
	}

	return cl.createFolder(ctx, p.Ref, name)
}

func (cl *call) createFolder(ctx context.Context, parent NodeRef, name string) (*Node, error) {
	cl.c.logger.Info("creating folder",
		slog.String("parent", parent.String()),
		slog.String("name", name),
	)

	bodyBytes, err := json.Marshal(createFolderRequest{Name: name, NodeType: nodeTypeFolder})
	if err != nil {
		return nil, fmt.Errorf("alfresco: marshaling create folder request: %w", err)
	}

	return cl.createChild(ctx, parent, bytes.NewReader(bodyBytes), "application/json", "create folder")
}

// CreateDocument creates a document at the root of the site's document
// library with the given content.
func (c *Client) CreateDocument(
	ctx context.Context, creds Credentials, site string, docType DocumentType, name, content string,
) (*Node, error) {
	if err := checkArgs(creds, site, name); err != nil {
		return nil, err
	}

	cl := c.begin(creds)

	lib, err := cl.requireDocumentLibrary(ctx, site)
	if err != nil {
		return nil, err
	}

	return cl.createDocument(ctx, lib, docType, name, strings.NewReader(content))
}

// CreateDocumentInFolder creates a document inside an existing folder of
// the site. A missing folder is a *NotFoundError.
func (c *Client) CreateDocumentInFolder(
	ctx context.Context, creds Credentials, site, folder string, docType DocumentType, name, content string,
) (*Node, error) {
	if err := checkArgs(creds, site, folder, name); err != nil {
		return nil, err
	}

	cl := c.begin(creds)

	f, err := cl.requireNode(ctx, site, folder, folderNode)
	if err != nil {
		return nil, err
	}

	return cl.createDocument(ctx, f.Ref, docType, name, strings.NewReader(content))
}

// CreateDocumentFromFile creates a document whose content is read from a
// local file. An empty name uses the file's base name.
func (c *Client) CreateDocumentFromFile(
	ctx context.Context, creds Credentials, site string, docType DocumentType, path, name string,
) (*Node, error) {
	if name == "" {
		name = filepath.Base(path)
	}

	if err := checkArgs(creds, site, path, name); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("alfresco: opening %s: %w", path, err)
	}
	defer f.Close()

	cl := c.begin(creds)

	lib, err := cl.requireDocumentLibrary(ctx, site)
	if err != nil {
		return nil, err
	}

	return cl.createDocument(ctx, lib, docType, name, f)
}

// createDocument uploads content as a new cm:content child of parent in a
// single multipart request. Name collisions fail rather than auto-rename.
func (cl *call) createDocument(
	ctx context.Context, parent NodeRef, docType DocumentType, name string, content io.Reader,
) (*Node, error) {
	cl.c.logger.Info("creating document",
		slog.String("parent", parent.String()),
		slog.String("name", name),
		slog.String("mime_type", docType.MimeType()),
	)

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	for _, field := range [][2]string{
		{"name", name},
		{"nodeType", nodeTypeContent},
		{"autoRename", "false"},
	} {
		if err := mw.WriteField(field[0], field[1]); err != nil {
			return nil, fmt.Errorf("alfresco: writing %s field: %w", field[0], err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="filedata"; filename=%q`, name))
	h.Set("Content-Type", docType.MimeType())

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("alfresco: creating filedata part: %w", err)
	}

	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("alfresco: buffering content of %s: %w", name, err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("alfresco: closing multipart body: %w", err)
	}

	return cl.createChild(ctx, parent, &buf, mw.FormDataContentType(), "create document")
}

// createChild POSTs a new child under parent and decodes the created node.
func (cl *call) createChild(ctx context.Context, parent NodeRef, body io.Reader, contentType, what string) (*Node, error) {
	req := Request{
		Method:      http.MethodPost,
		API:         PublicAPI,
		Path:        nodePath(parent) + "/children",
		Body:        body,
		ContentType: contentType,
		Auth:        AuthBasic,
	}

	resp, err := cl.do(ctx, req)
	if err != nil {
		return nil, err
	}

	if !resp.Outcome().IsSuccess() {
		return nil, newStatusError(req, resp)
	}

	var ner nodeEntryResponse
	if err := decode(resp.Body, &ner, what); err != nil {
		return nil, err
	}

	n := ner.Entry.toNode(cl.c.logger)

	return &n, nil
}

// DeleteFolder deletes an empty folder. A folder with children fails with
// ErrFolderNotEmpty; use DeleteTree for those.
func (c *Client) DeleteFolder(ctx context.Context, creds Credentials, site, folder string) error {
	if err := checkArgs(creds, site, folder); err != nil {
		return err
	}

	cl := c.begin(creds)

	f, err := cl.requireNode(ctx, site, folder, folderNode)
	if err != nil {
		return err
	}

	children, err := cl.listChildren(ctx, f.Ref)
	if err != nil {
		return err
	}

	if len(children) > 0 {
		return fmt.Errorf("%w: %s has %d children", ErrFolderNotEmpty, folder, len(children))
	}

	return cl.deleteNode(ctx, f.Ref)
}

// DeleteTree deletes a folder and everything below it, deepest first.
func (c *Client) DeleteTree(ctx context.Context, creds Credentials, site, folder string) error {
	if err := checkArgs(creds, site, folder); err != nil {
		return err
	}

	cl := c.begin(creds)

	f, err := cl.requireNode(ctx, site, folder, folderNode)
	if err != nil {
		return err
	}

	return cl.deleteTree(ctx, f.Ref)
}

func (cl *call) deleteTree(ctx context.Context, ref NodeRef) error {
	children, err := cl.listChildren(ctx, ref)
	if err != nil {
		return err
	}

	for i := range children {
		if children[i].IsFolder {
			if err := cl.deleteTree(ctx, children[i].Ref); err != nil {
				return err
			}

			continue
		}

		if err := cl.deleteNode(ctx, children[i].Ref); err != nil {
			return err
		}
	}

	return cl.deleteNode(ctx, ref)
}

// DeleteDocument deletes the first document named name in the site.
func (c *Client) DeleteDocument(ctx context.Context, creds Credentials, site, name string) error {
	if err := checkArgs(creds, site, name); err != nil {
		return err
	}

	cl := c.begin(creds)

	n, err := cl.requireNode(ctx, site, name, documentNode)
	if err != nil {
		return err
	}

	return cl.deleteNode(ctx, n.Ref)
}

// DeleteFiles deletes each named document wherever it sits in the site.
// No names is a no-op. Every name is attempted; failures are joined.
func (c *Client) DeleteFiles(ctx context.Context, creds Credentials, site string, names ...string) error {
	if err := checkArgs(creds, site); err != nil {
		return err
	}

	if len(names) == 0 {
		return nil
	}

	cl := c.begin(creds)

	var errs []error

	for _, name := range names {
		n, err := cl.requireNode(ctx, site, name, documentNode)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := cl.deleteNode(ctx, n.Ref); err != nil {
			errs = append(errs, fmt.Errorf("deleting %q: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// DeleteNode deletes a node by reference.
func (c *Client) DeleteNode(ctx context.Context, creds Credentials, ref NodeRef) error {
	if err := checkArgs(creds, ref.String()); err != nil {
		return err
	}

	return c.begin(creds).deleteNode(ctx, ref)
}

func (cl *call) deleteNode(ctx context.Context, ref NodeRef) error {
	cl.c.logger.Info("deleting node", slog.String("node", ref.String()))

	req := Request{
		Method: http.MethodDelete,
		API:    PublicAPI,
		Path:   nodePath(ref),
		Auth:   AuthBasic,
	}

	resp, err := cl.do(ctx, req)
	if err != nil {
		return err
	}

	if !resp.Outcome().IsSuccess() {
		return newStatusError(req, resp)
	}

	return nil
}

// GetDocumentContent returns the content of the first document named name.
func (c *Client) GetDocumentContent(ctx context.Context, creds Credentials, site, name string) (string, error) {
	if err := checkArgs(creds, site, name); err != nil {
		return "", err
	}

	cl := c.begin(creds)

	n, err := cl.requireNode(ctx, site, name, documentNode)
	if err != nil {
		return "", err
	}

	req := Request{
		Method: http.MethodGet,
		API:    PublicAPI,
		Path:   nodePath(n.Ref) + "/content",
		Auth:   AuthTicket,
	}

	resp, err := cl.do(ctx, req)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", newStatusError(req, resp)
	}

	return string(resp.Body), nil
}

// UpdateDocumentContent replaces the content of the first document named
// name. A missing document is a *NotFoundError; an unexpected status is
// logged and reported as false.
func (c *Client) UpdateDocumentContent(
	ctx context.Context, creds Credentials, site string, docType DocumentType, name, content string,
) (bool, error) {
	if err := checkArgs(creds, site, name); err != nil {
		return false, err
	}

	cl := c.begin(creds)

	n, err := cl.requireNode(ctx, site, name, documentNode)
	if err != nil {
		return false, err
	}

	resp, err := cl.do(ctx, Request{
		Method:      http.MethodPut,
		API:         PublicAPI,
		Path:        nodePath(n.Ref) + "/content",
		Body:        strings.NewReader(content),
		ContentType: docType.MimeType(),
		Auth:        AuthBasic,
	})
	if err != nil {
		return false, err
	}

	switch outcome := resp.Outcome(); {
	case outcome.IsSuccess():
		return true, nil
	case outcome == OutcomeUnauthorized:
		return false, fmt.Errorf("%w: updating %q", ErrUnauthorized, name)
	default:
		c.logger.Error("unable to update content",
			slog.String("site", site),
			slog.String("document", name),
			slog.Int("status", resp.StatusCode),
		)

		return false, nil
	}
}
