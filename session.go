package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"gopkg.in/dnaeon/go-vcr.v3/recorder"

	"github.com/tonimelisma/alfresco-fixtures/internal/alfresco"
	"github.com/tonimelisma/alfresco-fixtures/internal/config"
	"github.com/tonimelisma/alfresco-fixtures/internal/ledger"
)

// userAgent identifies the CLI to the server.
var userAgent = "alfresco-fixtures/" + version

// Session holds everything a command needs to talk to the server: the
// client, the credentials every call acts as, and the fixture ledger.
type Session struct {
	Client *alfresco.Client
	Creds  alfresco.Credentials
	Domain string
	Logger *slog.Logger

	ledger   *ledger.Ledger
	recorder *recorder.Recorder
}

// NewSession builds a Session from resolved config. The ledger is opened
// only when withLedger is set and --no-ledger is not.
func NewSession(ctx context.Context, cfg *config.Config, withLedger bool) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("no configuration loaded")
	}

	if err := config.ValidateConnection(cfg); err != nil {
		return nil, err
	}

	logger := buildLogger(cfg, os.Stderr)
	s := &Session{
		Creds:  alfresco.Credentials{Username: cfg.Username, Password: cfg.Password},
		Domain: cfg.Domain,
		Logger: logger,
	}

	httpClient := &http.Client{Timeout: cfg.TimeoutDuration()}

	if flagRecord != "" {
		r, err := newRecorder(flagRecord, http.DefaultTransport)
		if err != nil {
			return nil, err
		}

		s.recorder = r
		httpClient = r.GetDefaultClient()
		httpClient.Timeout = cfg.TimeoutDuration()

		logger.Debug("recording HTTP traffic", slog.String("cassette", flagRecord))
	}

	s.Client = alfresco.NewClient(cfg.ServerURL, httpClient, logger,
		alfresco.WithUserAgent(userAgent),
		alfresco.WithUploadConcurrency(cfg.UploadConcurrency),
	)

	if withLedger && !flagNoLedger {
		l, err := ledger.Open(ctx, cfg.LedgerPath, logger)
		if err != nil {
			s.Close()
			return nil, err
		}

		s.ledger = l
	}

	return s, nil
}

// Close stops recording and closes the ledger.
func (s *Session) Close() error {
	var errs []error

	if s.recorder != nil {
		if err := s.recorder.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("saving recording: %w", err))
		}
	}

	if s.ledger != nil {
		if err := s.ledger.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Record adds a created fixture to the ledger. The fixture already exists
// on the server, so a ledger failure is logged rather than returned.
func (s *Session) Record(ctx context.Context, f ledger.Fixture) {
	if s.ledger == nil {
		return
	}

	if f.Domain == "" && f.Kind == ledger.KindSite {
		f.Domain = s.Domain
	}

	if _, err := s.ledger.Record(ctx, f); err != nil {
		s.Logger.Warn("fixture not recorded for teardown",
			slog.String("kind", string(f.Kind)),
			slog.String("name", f.Name),
			slog.String("error", err.Error()),
		)
	}
}

// withSession runs fn with a Session built from resolvedCfg and closes it
// afterwards, joining any close error into the result.
func withSession(ctx context.Context, withLedger bool, fn func(*Session) error) (err error) {
	s, err := NewSession(ctx, resolvedCfg, withLedger)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, s.Close())
	}()

	return fn(s)
}
