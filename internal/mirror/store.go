package mirror

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"vaultkeeper/internal/logging"
)

// Store is the mirrored tiered store: exactly one primary, zero or more
// mirrors, zero or more glaciers. Mirror/glacier writes fan out
// concurrently via errgroup as independent, best-effort side work.
type Store struct {
	primary  Tier
	mirrors  []Tier
	glaciers []Tier

	failOnPrimaryError bool
	logger             *slog.Logger
}

// Config assembles a Store. A tier's role comes from the field it is passed
// in; Store does not check for or treat VolumeSecondary tiers specially.
type Config struct {
	Primary            Tier
	Mirrors            []Tier
	Glaciers           []Tier
	FailOnPrimaryError bool
	Logger             *slog.Logger
}

// New assembles a Store from cfg. Primary.Backend must be non-nil.
func New(cfg Config) *Store {
	return &Store{
		primary:            cfg.Primary,
		mirrors:            cfg.Mirrors,
		glaciers:           cfg.Glaciers,
		failOnPrimaryError: cfg.FailOnPrimaryError,
		logger:             logging.Default(cfg.Logger).With("component", "mirror"),
	}
}

// fanoutTargets returns every mirror then every glacier tier, in that order.
func (s *Store) fanoutTargets() []Tier {
	out := make([]Tier, 0, len(s.mirrors)+len(s.glaciers))
	out = append(out, s.mirrors...)
	out = append(out, s.glaciers...)
	return out
}

// readTargets returns primary, then mirrors, then glaciers: the read
// probe order.
func (s *Store) readTargets() []Tier {
	out := make([]Tier, 0, 1+len(s.mirrors)+len(s.glaciers))
	out = append(out, s.primary)
	out = append(out, s.mirrors...)
	out = append(out, s.glaciers...)
	return out
}

// Write attempts the primary first, then fans the same payload out to every
// mirror and glacier concurrently. Mirror/glacier failures are logged and
// swallowed; they never fail the operation.
func (s *Store) Write(ctx context.Context, id string, data []byte) error {
	if s.primary.Backend == nil {
		return newError(KindNoPrimary, "no primary backend configured", nil)
	}

	if err := s.primary.Backend.Write(ctx, id, data); err != nil {
		if s.failOnPrimaryError {
			return newError(KindPrimaryFailed, "primary write failed", err)
		}
		s.logger.Warn("primary write failed, continuing to mirrors/glaciers",
			"id", id, "backend", s.primary.Backend.Label(), "error", err)
	}

	targets := s.fanoutTargets()
	if len(targets) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, tier := range targets {
		tier := tier
		g.Go(func() error {
			if err := tier.Backend.Write(gctx, id, data); err != nil {
				s.logger.Warn("mirror/glacier write failed",
					"id", id, "backend", tier.Backend.Label(), "error", err)
			}
			return nil
		})
	}
	// g.Wait's error is always nil: fan-out workers never return an error,
	// per the write contract that mirror/glacier failures are swallowed.
	_ = g.Wait()
	return nil
}

// Read probes primary, then each mirror, then each glacier, in order, and
// returns the first hit. "Not found" on every tier yields (nil, false, nil).
func (s *Store) Read(ctx context.Context, id string) ([]byte, bool, error) {
	for _, tier := range s.readTargets() {
		if tier.Backend == nil {
			continue
		}
		data, found, err := tier.Backend.ReadAll(ctx, id)
		if err != nil {
			return nil, false, newError(KindReadFailure, "tier read failed: "+tier.Backend.Label(), err)
		}
		if found {
			return data, true, nil
		}
	}
	return nil, false, nil
}

// Delete fans out to every tier. The operation fails only if the primary
// delete failed or a required tier errored.
func (s *Store) Delete(ctx context.Context, id string) error {
	all := append([]Tier{s.primary}, s.fanoutTargets()...)

	g, gctx := errgroup.WithContext(ctx)
	for _, tier := range all {
		tier := tier
		g.Go(func() error {
			if tier.Backend == nil {
				return nil
			}
			if err := tier.Backend.Delete(gctx, id); err != nil {
				if tier.Location.VolumeType == VolumePrimary || tier.Location.Required {
					return newError(KindDeleteFailure, "required tier delete failed: "+tier.Backend.Label(), err)
				}
				s.logger.Warn("optional tier delete failed", "id", id, "backend", tier.Backend.Label(), "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Exists reports true iff any tier has the chunk.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	for _, tier := range s.readTargets() {
		if tier.Backend == nil {
			continue
		}
		found, err := tier.Backend.Exists(ctx, id)
		if err != nil {
			return false, newError(KindReadFailure, "tier exists probe failed: "+tier.Backend.Label(), err)
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

// Size reports the chunk's size from the first tier, in read-probe order,
// that has it.
func (s *Store) Size(ctx context.Context, id string) (int64, bool, error) {
	for _, tier := range s.readTargets() {
		if tier.Backend == nil {
			continue
		}
		n, found, err := tier.Backend.Size(ctx, id)
		if err != nil {
			return 0, false, newError(KindReadFailure, "tier size probe failed: "+tier.Backend.Label(), err)
		}
		if found {
			return n, true, nil
		}
	}
	return 0, false, nil
}
