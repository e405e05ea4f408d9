// Package ledger records the fixtures a run creates in a local SQLite
// database so a later "teardown" can remove them again, newest first.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	// Pure-Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Kind is the type of fixture a ledger row tracks.
type Kind string

// Fixture kinds.
const (
	KindSite     Kind = "site"
	KindFolder   Kind = "folder"
	KindDocument Kind = "document"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSite, KindFolder, KindDocument:
		return true
	default:
		return false
	}
}

// ErrInvalidFixture is returned by Record for rows missing a kind, site, or name.
var ErrInvalidFixture = errors.New("ledger: invalid fixture")

// ErrNoSuchFixture is returned by Remove when no row has the given ID.
var ErrNoSuchFixture = errors.New("ledger: no such fixture")

const dirPermissions = 0o700

// SQL statements for ledger operations.
const (
	sqlInsertFixture = `INSERT INTO fixtures (kind, domain, site, name, node_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	// Documents go before the folders that hold them, folders before their
	// sites. Within a kind, newest first.
	sqlListFixtures = `SELECT id, kind, domain, site, name, node_ref, created_at
		FROM fixtures
		ORDER BY CASE kind WHEN 'document' THEN 0 WHEN 'folder' THEN 1 ELSE 2 END, id DESC`

	sqlListSiteFixtures = `SELECT id, kind, domain, site, name, node_ref, created_at
		FROM fixtures
		WHERE site = ?
		ORDER BY CASE kind WHEN 'document' THEN 0 WHEN 'folder' THEN 1 ELSE 2 END, id DESC`

	sqlDeleteFixture = `DELETE FROM fixtures WHERE id = ?`
)

// Fixture is one server-side object created by a run.
type Fixture struct {
	ID        int64
	Kind      Kind
	Domain    string
	Site      string
	Name      string
	NodeRef   string
	CreatedAt time.Time
}

// Ledger is the sole writer to the fixture database.
type Ledger struct {
	db      *sql.DB
	logger  *slog.Logger
	nowFunc func() time.Time
}

// Open opens (creating if needed) the ledger database at path and applies
// pending migrations. The database uses WAL mode with synchronous=FULL.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("ledger: creating directory for %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", dsnFor(path))
	if err != nil {
		return nil, fmt.Errorf("ledger: opening database %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("ledger opened", slog.String("path", path))

	return &Ledger{
		db:      db,
		logger:  logger,
		nowFunc: time.Now,
	}, nil
}

// dsnPragmas are applied to every connection.
const dsnPragmas = "_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)"

// dsnFor builds a SQLite URI for path. The path is percent-encoded so that
// characters such as '?' or '#' in a directory name stay part of the file
// name instead of starting the query or fragment.
func dsnFor(path string) string {
	u := url.URL{
		Scheme:   "file",
		OmitHost: true,
		Path:     filepath.ToSlash(path),
		RawQuery: dsnPragmas,
	}

	return u.String()
}

// Close releases the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record appends f to the ledger and returns its row ID. ID and CreatedAt
// on f are ignored.
func (l *Ledger) Record(ctx context.Context, f Fixture) (int64, error) {
	if !f.Kind.Valid() || f.Site == "" || f.Name == "" {
		return 0, fmt.Errorf("%w: kind=%q site=%q name=%q", ErrInvalidFixture, f.Kind, f.Site, f.Name)
	}

	res, err := l.db.ExecContext(ctx, sqlInsertFixture,
		string(f.Kind), f.Domain, f.Site, f.Name, f.NodeRef, l.nowFunc().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("ledger: recording %s %s: %w", f.Kind, f.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ledger: reading row id: %w", err)
	}

	l.logger.Debug("fixture recorded",
		slog.Int64("id", id),
		slog.String("kind", string(f.Kind)),
		slog.String("site", f.Site),
		slog.String("name", f.Name),
	)

	return id, nil
}

// List returns every recorded fixture in teardown order: documents, then
// folders, then sites, newest first within each kind.
func (l *Ledger) List(ctx context.Context) ([]Fixture, error) {
	return l.query(ctx, sqlListFixtures)
}

// ListSite is List restricted to fixtures in one site.
func (l *Ledger) ListSite(ctx context.Context, site string) ([]Fixture, error) {
	return l.query(ctx, sqlListSiteFixtures, site)
}

func (l *Ledger) query(ctx context.Context, query string, args ...any) ([]Fixture, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: listing fixtures: %w", err)
	}
	defer rows.Close()

	var out []Fixture

	for rows.Next() {
		var (
			f       Fixture
			kind    string
			created int64
		)

		if err := rows.Scan(&f.ID, &kind, &f.Domain, &f.Site, &f.Name, &f.NodeRef, &created); err != nil {
			return nil, fmt.Errorf("ledger: scanning fixture row: %w", err)
		}

		f.Kind = Kind(kind)
		f.CreatedAt = time.Unix(0, created)
		out = append(out, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: iterating fixture rows: %w", err)
	}

	return out, nil
}

// Remove deletes the row with the given ID.
func (l *Ledger) Remove(ctx context.Context, id int64) error {
	res, err := l.db.ExecContext(ctx, sqlDeleteFixture, id)
	if err != nil {
		return fmt.Errorf("ledger: removing fixture %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger: removing fixture %d: %w", id, err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNoSuchFixture, id)
	}

	return nil
}
