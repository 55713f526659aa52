package storageconfig

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"vaultkeeper/internal/logging"
)

// HashCacheFlusher is the capability the maintenance sweep needs from the
// file-hash cache: persist it to disk. *hashcache.Cache.Save satisfies
// this signature once bound to a sidecar path.
type HashCacheFlusher func() error

// GlacierRevalidator is the capability the maintenance sweep needs from
// the mirrored store: re-probe glacier tiers so a silently-lost object is
// noticed before a read falls through to it. *mirror.Store can supply
// this via a thin wrapper over its glacier tiers.
type GlacierRevalidator func(ctx context.Context) error

// Maintenance runs a periodic sweep: flush the hash cache, then
// revalidate glacier tiers. Both steps are best-effort; a failure in
// either is logged and does not stop the scheduler.
type Maintenance struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// StartMaintenance parses interval (a time.ParseDuration string) and
// starts a background sweep on that cadence. An empty interval disables
// the sweep and returns a nil *Maintenance.
func StartMaintenance(interval string, flush HashCacheFlusher, revalidate GlacierRevalidator, logger *slog.Logger) (*Maintenance, error) {
	if interval == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(interval)
	if err != nil {
		return nil, err
	}

	logger = logging.Default(logger).With("component", "storageconfig.maintenance")

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create maintenance scheduler: %w", err)
	}

	sweep := func() {
		if flush != nil {
			if err := flush(); err != nil {
				logger.Warn("hash cache flush failed", "error", err)
			}
		}
		if revalidate != nil {
			if err := revalidate(context.Background()); err != nil {
				logger.Warn("glacier revalidation failed", "error", err)
			}
		}
	}

	_, err = sched.NewJob(
		gocron.DurationJob(d),
		gocron.NewTask(sweep),
		gocron.WithName("storage-maintenance-sweep"),
	)
	if err != nil {
		return nil, fmt.Errorf("create maintenance job: %w", err)
	}

	sched.Start()
	return &Maintenance{scheduler: sched, logger: logger}, nil
}

// Stop shuts down the maintenance scheduler. Idempotent-safe to call on a
// nil *Maintenance (no-op), matching the "maintenance disabled" case.
func (m *Maintenance) Stop() error {
	if m == nil {
		return nil
	}
	return m.scheduler.Shutdown()
}
