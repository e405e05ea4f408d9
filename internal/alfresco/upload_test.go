package alfresco

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeUploadDir creates a directory with three files and one sub-directory.
func writeUploadDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range map[string]string{
		"b.txt":  "bravo",
		"a.html": "<p>alpha</p>",
		"c.zzz":  "charlie",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))

	return dir
}

func TestUploadFiles(t *testing.T) {
	f := newFakeAlfresco(t)
	s := f.addSite("s1")
	c := f.client(WithUploadConcurrency(2))

	nodes, err := c.UploadFiles(context.Background(), adminCreds, "s1", writeUploadDir(t))
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	assert.Equal(t, "a.html", nodes[0].Name)
	assert.Equal(t, "b.txt", nodes[1].Name)
	assert.Equal(t, "c.zzz", nodes[2].Name)

	for _, n := range nodes {
		assert.Equal(t, NodeRef(s.libID), n.ParentRef)
	}

	assert.Equal(t, "bravo", string(f.node(nodes[1].Ref.String()).content))
	assert.Equal(t, "text/html", f.node(nodes[0].Ref.String()).mime)
	assert.Equal(t, fallbackMimeType, f.node(nodes[2].Ref.String()).mime)
	assert.Nil(t, f.nodeNamed("nested"), "sub-directories are not uploaded")
}

func TestUploadFilesInFolder(t *testing.T) {
	f := newFakeAlfresco(t)
	s := f.addSite("s1")
	folder := f.addNode(s.libID, "F1", true, "")
	c := f.client()
	ctx := context.Background()

	nodes, err := c.UploadFilesInFolder(ctx, adminCreds, "s1", writeUploadDir(t), "F1")
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	for _, n := range nodes {
		assert.Equal(t, NodeRef(folder.id), n.ParentRef)
	}

	_, err = c.UploadFilesInFolder(ctx, adminCreds, "s1", writeUploadDir(t), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadFiles_SourceIsFile(t *testing.T) {
	f := newFakeAlfresco(t)
	f.addSite("s1")
	c := f.client()

	path := filepath.Join(t.TempDir(), "single.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := c.UploadFiles(context.Background(), adminCreds, "s1", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotADirectory)
	assert.Empty(t, f.requestLog())
}

func TestUploadFiles_MissingSource(t *testing.T) {
	f := newFakeAlfresco(t)
	c := f.client()

	_, err := c.UploadFiles(context.Background(), adminCreds, "s1", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUploadFiles_FailureIsReported(t *testing.T) {
	f := newFakeAlfresco(t)
	s := f.addSite("s1")
	f.addNode(s.libID, "b.txt", false, "already here")
	c := f.client(WithUploadConcurrency(1))

	nodes, err := c.UploadFiles(context.Background(), adminCreds, "s1", writeUploadDir(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "b.txt")

	// a.html went out before the conflict and is still reported.
	require.NotEmpty(t, nodes)
	require.NotNil(t, nodes[0])
	assert.Equal(t, "a.html", nodes[0].Name)
	assert.Nil(t, nodes[1])
}

func TestUploadFiles_EmptyDirectory(t *testing.T) {
	f := newFakeAlfresco(t)
	f.addSite("s1")
	c := f.client()

	nodes, err := c.UploadFiles(context.Background(), adminCreds, "s1", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.Zero(t, f.count(http.MethodPost, "/children"))
}

func TestTypeForFile(t *testing.T) {
	assert.Equal(t, DocumentType("text/html"), typeForFile("x.html"))
	assert.Equal(t, DocumentPDF, typeForFile("/tmp/report.pdf"))
	assert.Equal(t, DocumentType(fallbackMimeType), typeForFile("noext"))
}
