// Package historian drains game log records from the Redis queue into
// PostgreSQL and marks games that stop producing records as abandoned.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/skat/internal/gamelog"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Popper is the part of *redis.Client the historian reads with.
type Popper interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Store persists drained records.
type Store interface {
	InsertRecords(ctx context.Context, recs []gamelog.Record) error
	MarkAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error)
}

// Options tunes the service. Zero values take the defaults.
type Options struct {
	Queue      string
	BatchSize  int
	FlushDelay time.Duration
	PopTimeout time.Duration
	Inactivity time.Duration
	SweepEvery time.Duration
}

func (o *Options) setDefaults() {
	if o.Queue == "" {
		o.Queue = gamelog.DefaultQueueName
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 20
	}
	if o.FlushDelay <= 0 {
		o.FlushDelay = 500 * time.Millisecond
	}
	if o.PopTimeout <= 0 {
		o.PopTimeout = 3 * time.Second
	}
	if o.Inactivity <= 0 {
		o.Inactivity = 10 * time.Minute
	}
	if o.SweepEvery <= 0 {
		o.SweepEvery = time.Minute
	}
}

// Service is the historian.
type Service struct {
	rdb    Popper
	store  Store
	opts   Options
	logger logrus.FieldLogger
	now    func() time.Time

	batchMu sync.Mutex
	batch   []gamelog.Record

	activityMu   sync.Mutex
	lastActivity map[uuid.UUID]time.Time
}

// New builds a historian reading rdb and writing store.
func New(rdb Popper, store Store, opts Options, logger logrus.FieldLogger) *Service {
	opts.setDefaults()
	return &Service{
		rdb:          rdb,
		store:        store,
		opts:         opts,
		logger:       logger.WithField("queue", opts.Queue),
		now:          time.Now,
		batch:        make([]gamelog.Record, 0, opts.BatchSize),
		lastActivity: make(map[uuid.UUID]time.Time),
	}
}

// Run drains the queue and sweeps for inactive games until ctx is done. The
// pending batch is flushed before it returns.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("historian started")
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(ctx) })
	g.Go(func() error { return s.inactivityLoop(ctx) })
	err := g.Wait()

	if ferr := s.Flush(context.WithoutCancel(ctx)); ferr != nil {
		s.logger.Errorf("final flush: %v", ferr)
	}
	s.logger.Info("historian stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Service) readLoop(ctx context.Context) error {
	lastFlush := s.now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := s.rdb.BLPop(ctx, s.opts.PopTimeout, s.opts.Queue).Result()
		switch {
		case err == nil && len(res) == 2:
			// res[0] is the queue name and res[1] the payload
			s.handle(res[1])
		case err == nil, errors.Is(err, redis.Nil):
		case ctx.Err() != nil:
			continue
		default:
			s.logger.Errorf("BLPop: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		if s.pending() >= s.opts.BatchSize || s.now().Sub(lastFlush) >= s.opts.FlushDelay {
			if err := s.Flush(ctx); err != nil {
				s.logger.Errorf("flush: %v", err)
			}
			lastFlush = s.now()
		}
	}
}

func (s *Service) handle(payload string) {
	var rec gamelog.Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		s.logger.Warnf("invalid game record: %v", err)
		return
	}
	if rec.GameID == uuid.Nil {
		s.logger.Warn("game record without game id")
		return
	}

	s.activityMu.Lock()
	s.lastActivity[rec.GameID] = s.now()
	s.activityMu.Unlock()

	s.batchMu.Lock()
	s.batch = append(s.batch, rec)
	s.batchMu.Unlock()
}

func (s *Service) pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}

// Flush writes the current batch in one transaction. A failed batch stays
// queued and is retried with the next flush.
func (s *Service) Flush(ctx context.Context) error {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	if len(s.batch) == 0 {
		return nil
	}
	if err := s.store.InsertRecords(ctx, s.batch); err != nil {
		return err
	}
	s.logger.Debugf("flushed %d records", len(s.batch))
	s.batch = s.batch[:0]
	return nil
}

func (s *Service) inactivityLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.SweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.SweepInactive(ctx)
		}
	}
}

// SweepInactive marks every game silent for longer than the inactivity window
// as abandoned and forgets it. Finished games are left alone by the store.
func (s *Service) SweepInactive(ctx context.Context) {
	now := s.now()
	var stale []uuid.UUID
	s.activityMu.Lock()
	for id, last := range s.lastActivity {
		if now.Sub(last) > s.opts.Inactivity {
			stale = append(stale, id)
			delete(s.lastActivity, id)
		}
	}
	s.activityMu.Unlock()

	for _, id := range stale {
		changed, err := s.store.MarkAbandoned(ctx, id)
		switch {
		case err != nil:
			s.logger.Error(err)
		case changed:
			s.logger.Infof("marked game %v as abandoned due to inactivity", id)
		}
	}
}
