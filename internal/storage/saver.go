package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"sunward.gg/internal/model"
)

// Saver writes structure records to storage from a background goroutine so
// the simulation never blocks on persistence. Writes for the same owner
// coalesce: only the newest enqueued set is written. Failed writes are
// logged and dropped; the snapshot taken at shutdown covers the gap.
type Saver struct {
	store   Storage
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[model.PlayerID]map[model.StructureID]model.StructureRecord

	wake     chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewSaver creates a saver writing to store. Call Start before enqueueing.
func NewSaver(store Storage, logger *slog.Logger, timeout time.Duration) *Saver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Saver{
		store:   store,
		logger:  logger,
		timeout: timeout,
		pending: make(map[model.PlayerID]map[model.StructureID]model.StructureRecord),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Start launches the background writer
func (s *Saver) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
}

// Stop drains any pending writes and stops the writer
func (s *Saver) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
	s.wg.Wait()
	// Catch writes enqueued while the worker was exiting.
	s.Flush()
}

// Enqueue schedules the owner's full record set for writing. The saver takes
// ownership of the map; callers must pass a fresh projection.
func (s *Saver) Enqueue(owner model.PlayerID, records map[model.StructureID]model.StructureRecord) {
	s.mu.Lock()
	s.pending[owner] = records
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Flush synchronously writes everything currently pending
func (s *Saver) Flush() {
	s.mu.Lock()
	batch := s.pending
	s.pending = make(map[model.PlayerID]map[model.StructureID]model.StructureRecord)
	s.mu.Unlock()

	for owner, records := range batch {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := s.store.SaveStructures(ctx, owner, records)
		cancel()
		if err != nil {
			s.logger.Error("structure save failed",
				"owner", owner,
				"structures", len(records),
				"error", err)
		}
	}
}

func (s *Saver) loop() {
	for {
		select {
		case <-s.wake:
			s.Flush()
		case <-s.done:
			s.Flush()
			return
		}
	}
}
