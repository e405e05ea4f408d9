package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrGone marks a fixture that no longer exists on the server. A Deleter
// wraps it so Teardown drops the row instead of reporting a failure.
var ErrGone = errors.New("fixture already gone")

// Deleter removes one fixture from the server.
type Deleter interface {
	DeleteFixture(ctx context.Context, f Fixture) error
}

// DeleterFunc adapts a function to Deleter.
type DeleterFunc func(ctx context.Context, f Fixture) error

// DeleteFixture calls fn.
func (fn DeleterFunc) DeleteFixture(ctx context.Context, f Fixture) error {
	return fn(ctx, f)
}

// Report summarizes a Teardown run.
type Report struct {
	Deleted int
	Gone    int
	Failed  int
}

// Teardown deletes fixtures through d in List order and drops each row whose
// fixture was deleted or was already gone. Rows that fail stay in the ledger
// for the next run; their errors are joined into the returned error.
// An empty site means every recorded fixture.
func (l *Ledger) Teardown(ctx context.Context, site string, d Deleter) (Report, error) {
	var (
		fixtures []Fixture
		err      error
	)

	if site == "" {
		fixtures, err = l.List(ctx)
	} else {
		fixtures, err = l.ListSite(ctx, site)
	}

	if err != nil {
		return Report{}, err
	}

	var (
		report Report
		errs   []error
	)

	for _, f := range fixtures {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		delErr := d.DeleteFixture(ctx, f)

		switch {
		case delErr == nil:
			report.Deleted++
		case errors.Is(delErr, ErrGone):
			report.Gone++
			l.logger.Debug("fixture already gone",
				slog.String("kind", string(f.Kind)),
				slog.String("site", f.Site),
				slog.String("name", f.Name),
			)
		default:
			report.Failed++
			errs = append(errs, fmt.Errorf("%s %s/%s: %w", f.Kind, f.Site, f.Name, delErr))

			continue
		}

		if err := l.Remove(ctx, f.ID); err != nil {
			errs = append(errs, err)
		}
	}

	l.logger.Info("teardown finished",
		slog.Int("deleted", report.Deleted),
		slog.Int("gone", report.Gone),
		slog.Int("failed", report.Failed),
	)

	return report, errors.Join(errs...)
}
