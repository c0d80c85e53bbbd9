// Package azsignal wires the strategy models, data feeders, scheduler
// and signal consumers into a scanning engine.
package azsignal

import (
	"context"
	"time"

	"github.com/ezquant/azsignal/azsignal/exchange"
	"github.com/ezquant/azsignal/azsignal/model"
	"github.com/ezquant/azsignal/azsignal/notification"
	"github.com/ezquant/azsignal/azsignal/plus/localkv"
	"github.com/ezquant/azsignal/azsignal/scheduler"
	"github.com/ezquant/azsignal/azsignal/storage"
	"github.com/ezquant/azsignal/azsignal/strategy"
	"github.com/ezquant/azsignal/azsignal/timeframe"
	"github.com/ezquant/azsignal/azsignal/tools/log"
)

func init() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04",
	})
}

type Engine struct {
	scheduler *scheduler.Scheduler
	feeders   exchange.Feeders
	models    []strategy.Model

	storage  *storage.Storage
	notifier notification.Notifier
	kv       *localkv.LocalKV

	scanInterval time.Duration
	workers      int
}

type Option func(*Engine)

func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

func WithStorage(s *storage.Storage) Option {
	return func(e *Engine) { e.storage = s }
}

func WithNotifier(n notification.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithLocalKV(kv *localkv.LocalKV) Option {
	return func(e *Engine) { e.kv = kv }
}

func WithScanInterval(d time.Duration) Option {
	return func(e *Engine) { e.scanInterval = d }
}

// NewEngine registers the given models and prepares the scan pipeline.
// Model configuration problems (malformed timeframe codes, lookback
// gaps) surface here, before any data is fetched.
func NewEngine(feeders exchange.Feeders, models []strategy.Model,
	options ...Option) (*Engine, error) {

	for _, m := range models {
		if _, ok := strategy.Get(m.Name()); !ok {
			if err := strategy.Register(m); err != nil {
				return nil, err
			}
		}
	}

	e := &Engine{
		feeders:      feeders,
		models:       models,
		scanInterval: time.Minute,
		workers:      4,
	}
	for _, opt := range options {
		opt(e)
	}
	e.scheduler = scheduler.New(feeders, scheduler.WithWorkers(e.workers))
	return e, nil
}

func (e *Engine) Models() []strategy.Model {
	return e.models
}

// Warmup prefetches every subscription window the models need.
func (e *Engine) Warmup(ctx context.Context) error {
	reqs, err := scheduler.Subscriptions(e.models)
	if err != nil {
		return err
	}
	_, err = exchange.Warmup(ctx, e.feeders, reqs)
	return err
}

// ScanOnce evaluates every (model, symbol, timeframe) combination and
// fans fresh signals out to the configured consumers. Signals whose
// trigger bar was already emitted for the same combination are dropped.
func (e *Engine) ScanOnce(ctx context.Context) ([]*model.SignalEvent, error) {
	signals, err := e.scheduler.Scan(ctx, e.models)
	if err != nil {
		return nil, err
	}

	fresh := make([]*model.SignalEvent, 0, len(signals))
	for _, sig := range signals {
		if e.kv != nil {
			if e.kv.SeenSignal(sig) {
				continue
			}
			if err := e.kv.MarkSignal(sig); err != nil {
				log.Warnf("kv mark failed: %v", err)
			}
		}
		fresh = append(fresh, sig)

		log.WithFields(log.Fields{
			"venue":     sig.Venue,
			"symbol":    sig.Symbol,
			"timeframe": sig.Timeframe,
			"model":     sig.Strategy,
		}).Infof("signal %s @ %.8g", sig.Direction, sig.EntryPrice)

		if e.storage != nil {
			if err := e.storage.Save(sig); err != nil {
				log.Errorf("storage save failed: %v", err)
			}
		}
		if e.notifier != nil {
			if err := e.notifier.OnSignal(sig); err != nil {
				log.Errorf("notify failed: %v", err)
			}
		}
	}
	return fresh, nil
}

// Run scans on the configured interval until the context ends.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.scanInterval)
	defer ticker.Stop()

	for {
		if _, err := e.ScanOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Errorf("scan failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ScanIntervalFromTimeframe converts a timeframe code into a ticker
// period for the live loop.
func ScanIntervalFromTimeframe(tf string) (time.Duration, error) {
	return timeframe.Duration(tf)
}
