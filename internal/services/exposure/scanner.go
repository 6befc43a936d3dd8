// Package exposure decides which structures stand in sunlight. Each scan
// casts a ray from every structure toward the sun against a fresh occluder
// batch; a clear ray means exposed.
package exposure

import (
	"log/slog"
	"time"

	"sunward.gg/internal/model"
	"sunward.gg/internal/registry"
	"sunward.gg/internal/world"
)

// Listener is told about exposure flips as the scan finds them
type Listener interface {
	OnExposureChanged(s *model.Structure, exposed bool, now time.Time)
}

// Scanner walks the registry once per pass and updates exposure flags
type Scanner struct {
	registry  *registry.Registry
	index     *world.Index
	direction model.Vec3
	listener  Listener
	logger    *slog.Logger
}

// New creates a scanner casting rays along direction, which must be
// normalized and point from structures toward the sun.
func New(reg *registry.Registry, index *world.Index, direction model.Vec3, listener Listener, logger *slog.Logger) *Scanner {
	return &Scanner{
		registry:  reg,
		index:     index,
		direction: direction,
		listener:  listener,
		logger:    logger.With(slog.String("component", "exposure")),
	}
}

// Scan re-evaluates exposure for every structure and reports the number of
// flips. The occluder batch is built once per pass; a structure never
// occludes itself.
func (s *Scanner) Scan(now time.Time) int {
	structures := s.registry.All()
	if len(structures) == 0 {
		return 0
	}
	batch := s.index.Batch(structures)

	flips := 0
	for _, st := range structures {
		origin := world.BoundsFor(st.Type, st.Transform).TopCenter()
		exposed := !world.HitsAny(batch, origin, s.direction, st.ID)
		if exposed == st.Exposed {
			continue
		}
		st.Exposed = exposed
		flips++
		if s.listener != nil {
			s.listener.OnExposureChanged(st, exposed, now)
		}
	}

	if flips > 0 {
		s.logger.Debug("exposure scan",
			slog.Int("structures", len(structures)),
			slog.Int("flips", flips))
	}
	return flips
}
