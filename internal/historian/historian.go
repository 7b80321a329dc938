// Package historian drains the game action queue that the server publishes
// to Redis, batches the records and hands them to a Sink. It also notices
// games that stop producing actions without ever finishing.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Source yields raw action records. Pop blocks for up to timeout and reports
// ok=false when nothing arrived.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (raw string, ok bool, err error)
}

// Sink receives flushed batches in queue order.
type Sink interface {
	Write(batch []models.GameAction) error
}

// RedisSource pops from the list the server RPUSHes to.
type RedisSource struct {
	rdb   *redis.Client
	queue string
}

func NewRedisSource(rdb *redis.Client, queue string) *RedisSource {
	return &RedisSource{rdb: rdb, queue: queue}
}

func (s *RedisSource) Pop(ctx context.Context, timeout time.Duration) (string, bool, error) {
	res, err := s.rdb.BLPop(ctx, timeout, s.queue).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return "", false, nil
	}
	return res[1], true, nil
}

// JSONLinesSink writes one JSON record per line.
type JSONLinesSink struct {
	enc *json.Encoder
}

func NewJSONLinesSink(w io.Writer) *JSONLinesSink {
	return &JSONLinesSink{enc: json.NewEncoder(w)}
}

func (s *JSONLinesSink) Write(batch []models.GameAction) error {
	for _, rec := range batch {
		if err := s.enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// Options tunes batching and the abandonment check. Zero values take the
// defaults below.
type Options struct {
	BatchSize  int
	FlushDelay time.Duration
	Inactivity time.Duration
	PopTimeout time.Duration
	Clock      quartz.Clock
}

const (
	DefaultBatchSize  = 20
	DefaultFlushDelay = 500 * time.Millisecond
	DefaultInactivity = 10 * time.Minute
	DefaultPopTimeout = 3 * time.Second
)

// Historian moves records from a Source to a Sink.
type Historian struct {
	source Source
	sink   Sink
	logger *logrus.Logger
	opts   Options

	mu           sync.Mutex
	batch        []models.GameAction
	lastActivity map[uuid.UUID]time.Time
	abandoned    []uuid.UUID
}

func New(source Source, sink Sink, logger *logrus.Logger, opts Options) *Historian {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = DefaultFlushDelay
	}
	if opts.Inactivity <= 0 {
		opts.Inactivity = DefaultInactivity
	}
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = DefaultPopTimeout
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	return &Historian{
		source:       source,
		sink:         sink,
		logger:       logger,
		opts:         opts,
		batch:        make([]models.GameAction, 0, opts.BatchSize),
		lastActivity: make(map[uuid.UUID]time.Time),
	}
}

// Run reads until ctx is done, then flushes what is left.
func (h *Historian) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.readLoop(gctx) })
	g.Go(func() error { return h.tickLoop(gctx) })
	err := g.Wait()
	if ferr := h.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (h *Historian) readLoop(ctx context.Context) error {
	for {
		raw, ok, err := h.source.Pop(ctx, h.opts.PopTimeout)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			h.logger.WithError(err).Error("pop action")
			continue
		}
		if !ok {
			continue
		}
		if err := h.Ingest(raw); err != nil {
			h.logger.WithError(err).Warn("invalid action record")
		}
	}
}

func (h *Historian) tickLoop(ctx context.Context) error {
	flush := h.opts.Clock.TickerFunc(ctx, h.opts.FlushDelay, func() error {
		if err := h.Flush(); err != nil {
			h.logger.WithError(err).Error("flush actions")
		}
		return nil
	}, "historian", "flush")
	sweep := h.opts.Clock.TickerFunc(ctx, time.Minute, func() error {
		h.Sweep()
		return nil
	}, "historian", "sweep")
	if err := flush.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return sweep.Wait()
}

// Ingest decodes one raw record and adds it to the batch, flushing once the
// batch is full.
func (h *Historian) Ingest(raw string) error {
	var rec models.GameAction
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return fmt.Errorf("decode action: %w", err)
	}

	h.mu.Lock()
	if rec.ActionType == models.ActionGameEnd {
		delete(h.lastActivity, rec.GameID)
	} else {
		h.lastActivity[rec.GameID] = h.opts.Clock.Now()
	}
	h.batch = append(h.batch, rec)
	full := len(h.batch) >= h.opts.BatchSize
	h.mu.Unlock()

	if full {
		return h.Flush()
	}
	return nil
}

// Flush writes the pending batch. A failed batch is dropped and logged.
func (h *Historian) Flush() error {
	h.mu.Lock()
	if len(h.batch) == 0 {
		h.mu.Unlock()
		return nil
	}
	batch := make([]models.GameAction, len(h.batch))
	copy(batch, h.batch)
	h.batch = h.batch[:0]
	h.mu.Unlock()

	if err := h.sink.Write(batch); err != nil {
		return fmt.Errorf("write %d actions: %w", len(batch), err)
	}
	h.logger.WithField("count", len(batch)).Debug("flushed actions")
	return nil
}

// Sweep forgets games idle for longer than the inactivity threshold and
// reports them as abandoned.
func (h *Historian) Sweep() []uuid.UUID {
	now := h.opts.Clock.Now()
	var idle []uuid.UUID

	h.mu.Lock()
	for id, last := range h.lastActivity {
		if now.Sub(last) > h.opts.Inactivity {
			idle = append(idle, id)
			delete(h.lastActivity, id)
		}
	}
	h.abandoned = append(h.abandoned, idle...)
	h.mu.Unlock()

	for _, id := range idle {
		h.logger.WithField("game", id).Warn("game abandoned")
	}
	return idle
}

// Abandoned lists every game Sweep has given up on.
func (h *Historian) Abandoned() []uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]uuid.UUID(nil), h.abandoned...)
}

// Tracked is the number of games still producing actions.
func (h *Historian) Tracked() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.lastActivity)
}
