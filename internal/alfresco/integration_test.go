//go:build integration

package alfresco

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/alfresco-fixtures/testutil"
)

const integrationTimeout = 2 * time.Minute

func TestMain(m *testing.M) {
	testutil.LoadDotEnv(filepath.Join(testutil.FindModuleRoot("."), ".env"))

	if env, ok := testutil.LookupServerEnv(); ok {
		testutil.ValidateAllowlist(env.URL)
	}

	os.Exit(m.Run())
}

// testLogger returns an slog.Logger at Debug level that writes to t.Log.
func testLogger(t *testing.T) *slog.Logger {
	t.Helper()

	return slog.New(slog.NewTextHandler(testLogWriter{t: t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testLogWriter struct {
	t *testing.T
}

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

// newIntegrationClient returns a client for the live server, skipping the
// test when no server is configured.
func newIntegrationClient(t *testing.T) (*Client, Credentials) {
	t.Helper()

	env, ok := testutil.LookupServerEnv()
	if !ok {
		t.Skipf("%s, %s and %s must be set", testutil.EnvServerURL, testutil.EnvUser, testutil.EnvPassword)
	}

	hc := &http.Client{Timeout: 30 * time.Second}

	return NewClient(env.URL, hc, testLogger(t)), Credentials{Username: env.User, Password: env.Password}
}

// uniqueSiteID returns a site id that cannot collide with a previous run.
func uniqueSiteID() string {
	return "it-" + uuid.NewString()[:8]
}

// TestIntegration_FavoriteLifecycle runs the site and favorite lifecycle
// against a live server and always deletes the site it created.
func TestIntegration_FavoriteLifecycle(t *testing.T) {
	c, creds := newIntegrationClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), integrationTimeout)
	defer cancel()

	site := uniqueSiteID()

	_, err := c.CreateSite(ctx, creds, "", site, "integration fixture", VisibilityPublic)
	require.NoError(t, err)

	t.Cleanup(func() {
		if delErr := c.DeleteSite(context.Background(), creds, "", site); delErr != nil {
			t.Logf("cleanup: deleting site %s: %v", site, delErr)
		}
	})

	exists, err := c.SiteExists(ctx, creds, site)
	require.NoError(t, err)
	assert.True(t, exists)

	ok, err := c.SetFavorite(ctx, creds, site)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsFavorite(ctx, creds, site)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.RemoveFavorite(ctx, creds, site)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsFavorite(ctx, creds, site)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.CreateSite(ctx, creds, "", site, "", VisibilityPublic)
	assert.ErrorIs(t, err, ErrConflict)
}

// TestIntegration_ContentLifecycle creates, reads, updates and deletes
// folders and documents in a fresh site.
func TestIntegration_ContentLifecycle(t *testing.T) {
	c, creds := newIntegrationClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), integrationTimeout)
	defer cancel()

	site := uniqueSiteID()

	_, err := c.CreateSite(ctx, creds, "", site, "", VisibilityPrivate)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.DeleteSite(context.Background(), creds, "", site)
	})

	_, err = c.CreateFolder(ctx, creds, site, "F1")
	require.NoError(t, err)

	_, err = c.CreateFolderIn(ctx, creds, site, "F1", "F2")
	require.NoError(t, err)

	_, err = c.CreateDocumentInFolder(ctx, creds, site, "F2", DocumentTextPlain, "a.txt", "first")
	require.NoError(t, err)

	got, err := c.GetDocumentContent(ctx, creds, site, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	ok, err := c.UpdateDocumentContent(ctx, creds, site, DocumentTextPlain, "a.txt", "second")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = c.GetDocumentContent(ctx, creds, site, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	require.ErrorIs(t, c.DeleteFolder(ctx, creds, site, "F1"), ErrFolderNotEmpty)
	require.NoError(t, c.DeleteTree(ctx, creds, site, "F1"))

	ref, err := c.GetNodeRef(ctx, creds, site, "a.txt")
	require.NoError(t, err)
	assert.True(t, ref.IsZero())
}
