package alfresco

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// fallbackMimeType is used for files whose extension has no known type.
const fallbackMimeType = "application/octet-stream"

// UploadFiles creates one document per regular file in dir at the root of
// the site's document library. Results follow the sorted file names. On
// failure the error comes with the nodes created so far; entries for files
// that were not created are nil.
func (c *Client) UploadFiles(ctx context.Context, creds Credentials, site, dir string) ([]*Node, error) {
	if err := checkArgs(creds, site, dir); err != nil {
		return nil, err
	}

	files, err := uploadSources(dir)
	if err != nil {
		return nil, err
	}

	lib, err := c.begin(creds).requireDocumentLibrary(ctx, site)
	if err != nil {
		return nil, err
	}

	return c.uploadAll(ctx, creds, lib, files)
}

// UploadFilesInFolder is UploadFiles into an existing folder of the site.
func (c *Client) UploadFilesInFolder(
	ctx context.Context, creds Credentials, site, dir, folder string,
) ([]*Node, error) {
	if err := checkArgs(creds, site, dir, folder); err != nil {
		return nil, err
	}

	files, err := uploadSources(dir)
	if err != nil {
		return nil, err
	}

	f, err := c.begin(creds).requireNode(ctx, site, folder, folderNode)
	if err != nil {
		return nil, err
	}

	return c.uploadAll(ctx, creds, f.Ref, files)
}

// uploadSources lists the regular files directly inside dir, sorted.
func uploadSources(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("alfresco: reading upload source: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("alfresco: listing %s: %w", dir, err)
	}

	var files []string

	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(files)

	return files, nil
}

// uploadAll sends files through a bounded errgroup. The first failure
// cancels the uploads that have not started yet.
func (c *Client) uploadAll(ctx context.Context, creds Credentials, parent NodeRef, files []string) ([]*Node, error) {
	results := make([]*Node, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.uploadConcurrency)

	for i, path := range files {
		g.Go(func() error {
			n, err := c.uploadFile(gctx, creds, parent, path)
			if err != nil {
				return err
			}

			results[i] = n

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	c.logger.Info("uploaded files",
		slog.String("parent", parent.String()),
		slog.Int("count", len(results)),
	)

	return results, nil
}

func (c *Client) uploadFile(ctx context.Context, creds Credentials, parent NodeRef, path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("alfresco: opening %s: %w", path, err)
	}
	defer f.Close()

	n, err := c.begin(creds).createDocument(ctx, parent, typeForFile(path), filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", path, err)
	}

	return n, nil
}

// typeForFile guesses the document type from the file extension.
func typeForFile(path string) DocumentType {
	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		return fallbackMimeType
	}

	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	return DocumentType(mt)
}
