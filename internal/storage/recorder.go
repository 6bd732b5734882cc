package storage

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/dyike/DepotGo/internal/logging"
)

// Journal receives interactions as they finish.
type Journal interface {
	Record(in Interaction)
}

var _ Journal = (*Recorder)(nil)

// Recorder writes interactions to a Store from a background goroutine so
// handlers never wait on the database.
type Recorder struct {
	store  *Store
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	events chan Interaction
	once   sync.Once
	wg     sync.WaitGroup
}

func NewRecorder(store *Store, logger *zap.Logger) (*Recorder, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if logger == nil {
		logger = logging.Nop()
	}

	r := &Recorder{
		store:  store,
		logger: logger,
		events: make(chan Interaction, 64),
	}

	r.wg.Add(1)
	go r.loop()
	return r, nil
}

func (r *Recorder) loop() {
	defer r.wg.Done()
	ctx := context.Background()
	for in := range r.events {
		if _, err := r.store.Insert(ctx, in); err != nil {
			r.logger.Warn("history write failed", zap.String("kind", in.Kind), zap.Error(err))
		}
	}
}

// Record queues in for writing. When the queue is full the interaction is
// dropped and a warning logged.
func (r *Recorder) Record(in Interaction) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.events <- in:
	default:
		r.logger.Warn("history queue full, dropping interaction", zap.String("kind", in.Kind))
	}
}

// Close flushes queued interactions and stops the writer.
func (r *Recorder) Close() {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.events)
		r.mu.Unlock()
		r.wg.Wait()
	})
}

// Discard is a Journal that drops everything.
var Discard Journal = discard{}

type discard struct{}

func (discard) Record(Interaction) {}
