package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nekocare/internal/care"
	"nekocare/internal/realtime"
	"nekocare/internal/repo"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidTransition  = errors.New("invalid incident status transition")
	ErrInsufficientPoints = errors.New("insufficient footprint points")
	ErrAlreadyOwned       = errors.New("theme already owned")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// mapRepoErr translates repository errors into service errors.
func mapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, repo.ErrInsufficientPoints):
		return ErrInsufficientPoints
	case errors.Is(err, repo.ErrAlreadyOwned):
		return ErrAlreadyOwned
	case errors.Is(err, repo.ErrInvalidTransition):
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	case repo.IsConstraint(err):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}

// SnapshotCache is the read-through cache of care snapshots. *cache.FeedCache
// implements it. Invalidate bumps the household version; Set stores nothing
// when the version moved since it was read.
type SnapshotCache interface {
	Get(ctx context.Context, householdID int64) (care.Snapshot, bool, error)
	Version(ctx context.Context, householdID int64) (int64, error)
	Set(ctx context.Context, snap care.Snapshot, version int64) (bool, error)
	Invalidate(ctx context.Context, householdID int64) error
}

// Publisher broadcasts row changes. *realtime.Hub implements it.
type Publisher interface {
	Publish(ctx context.Context, ev realtime.Event) error
}

// notifier runs after every successful write: it drops the household's cached
// snapshot and publishes the change. Failures are logged, never returned.
type notifier struct {
	cache SnapshotCache
	pub   Publisher
	log   *zap.Logger
}

func (n notifier) changed(ctx context.Context, householdID int64, table string, op realtime.Op, rowID int64, row any, at time.Time) {
	if n.cache != nil {
		if err := n.cache.Invalidate(ctx, householdID); err != nil {
			n.log.Warn("cache invalidate failed", zap.Int64("household_id", householdID), zap.Error(err))
		}
	}
	if n.pub == nil {
		return
	}
	ev, err := realtime.NewEvent(table, op, householdID, rowID, row, at)
	if err == nil {
		err = n.pub.Publish(ctx, ev)
	}
	if err != nil {
		n.log.Warn("publish change failed", zap.String("table", table), zap.Int64("row_id", rowID), zap.Error(err))
	}
}

// Deps are the optional collaborators shared by the services.
type Deps struct {
	Cache     SnapshotCache
	Publisher Publisher
	Log       *zap.Logger
	Location  *time.Location
	Now       func() time.Time
}

func (d Deps) notifier() notifier {
	return notifier{cache: d.Cache, pub: d.Publisher, log: d.logger()}
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// clock returns the current time in the household time zone.
func (d Deps) clock() func() time.Time {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return now().In(loc) }
}
