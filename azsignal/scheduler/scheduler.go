// Package scheduler expands registered models into per (venue, symbol,
// timeframe) evaluation jobs, supplies each job with enriched lookback
// windows, and collects the signals the models emit.
package scheduler

import (
	"context"
	"sort"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/exp/maps"

	"github.com/ezquant/azsignal/azsignal/exchange"
	"github.com/ezquant/azsignal/azsignal/feature"
	"github.com/ezquant/azsignal/azsignal/model"
	"github.com/ezquant/azsignal/azsignal/strategy"
	"github.com/ezquant/azsignal/azsignal/tools/log"
)

const defaultLookback = 150

// Job is one model evaluation: a model on one venue symbol and one of
// its operating timeframes.
type Job struct {
	Model     strategy.Model
	Venue     string
	Symbol    string // local symbol
	Remote    string // venue symbol used for data requests
	Timeframe string
}

type Scheduler struct {
	feeders exchange.Feeders
	workers int
}

type Option func(*Scheduler)

func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

func New(feeders exchange.Feeders, options ...Option) *Scheduler {
	s := &Scheduler{feeders: feeders, workers: 4}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Jobs expands models into the full evaluation set, deterministic
// order: venue, then symbol, then the model's timeframe order.
func Jobs(models []strategy.Model) []Job {
	return lo.FlatMap(models, func(m strategy.Model, _ int) []Job {
		var jobs []Job
		instruments := m.Instruments()

		venues := maps.Keys(instruments)
		sort.Strings(venues)
		for _, venue := range venues {
			symbols := maps.Keys(instruments[venue])
			sort.Strings(symbols)
			for _, local := range symbols {
				for _, tf := range m.OperatingTimeframes() {
					jobs = append(jobs, Job{
						Model:     m,
						Venue:     venue,
						Symbol:    local,
						Remote:    instruments[venue][local],
						Timeframe: tf,
					})
				}
			}
		}
		return jobs
	})
}

// Subscriptions reports every (venue, symbol, timeframe, lookback)
// window the given models need, operating and required timeframes
// alike, for startup warmup.
func Subscriptions(models []strategy.Model) ([]exchange.WarmupRequest, error) {
	var reqs []exchange.WarmupRequest
	seen := map[string]bool{}

	for _, m := range models {
		required, err := m.RequiredTimeframes(m.OperatingTimeframes())
		if err != nil {
			return nil, err
		}
		tfs := append(m.OperatingTimeframes(), required...)
		lookback := m.Lookback()

		instruments := m.Instruments()
		venues := maps.Keys(instruments)
		sort.Strings(venues)
		for _, venue := range venues {
			for _, remote := range instruments[venue] {
				for _, tf := range tfs {
					key := venue + ":" + remote + ":" + tf
					if seen[key] {
						continue
					}
					seen[key] = true
					reqs = append(reqs, exchange.WarmupRequest{
						Venue:     venue,
						Symbol:    remote,
						Timeframe: tf,
						Lookback:  lookbackFor(lookback, tf),
					})
				}
			}
		}
	}
	return reqs, nil
}

// Scan runs every job once on a bounded worker pool and returns the
// emitted signals. Per-job data problems are logged and absorbed as
// "no signal"; only setup failures surface as errors.
func (s *Scheduler) Scan(ctx context.Context, models []strategy.Model) ([]*model.SignalEvent, error) {
	jobs := Jobs(models)

	var (
		mu      sync.Mutex
		signals []*model.SignalEvent
		wg      sync.WaitGroup
	)

	queue := make(chan Job)
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				sig := s.runJob(ctx, job)
				if sig != nil {
					mu.Lock()
					signals = append(signals, sig)
					mu.Unlock()
				}
			}
		}()
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			close(queue)
			wg.Wait()
			return signals, ctx.Err()
		case queue <- job:
		}
	}
	close(queue)
	wg.Wait()

	return signals, nil
}

func (s *Scheduler) runJob(ctx context.Context, job Job) *model.SignalEvent {
	op, req, err := s.fetch(ctx, job)
	if err != nil {
		log.WithFields(log.Fields{
			"model":     job.Model.Name(),
			"venue":     job.Venue,
			"symbol":    job.Symbol,
			"timeframe": job.Timeframe,
		}).Warnf("data fetch failed: %v", err)
		return nil
	}

	sig, err := job.Model.Run(op, req, job.Timeframe, job.Symbol, job.Venue)
	if err != nil {
		// Internal model defect: report with context, keep scanning.
		log.WithFields(log.Fields{
			"model":     job.Model.Name(),
			"venue":     job.Venue,
			"symbol":    job.Symbol,
			"timeframe": job.Timeframe,
		}).Errorf("model run failed: %v", err)
		return nil
	}
	return sig
}

// fetch builds op_data (timeframe plus required confirmations) and the
// supplementary frame list for one job.
func (s *Scheduler) fetch(ctx context.Context, job Job) (map[string]*model.Dataframe, []*model.Dataframe, error) {
	feeder, err := s.feeders.For(job.Venue)
	if err != nil {
		return nil, nil, err
	}

	lookback := job.Model.Lookback()
	op := make(map[string]*model.Dataframe)

	df, err := feeder.Klines(ctx, job.Remote, job.Timeframe, lookbackFor(lookback, job.Timeframe))
	if err != nil {
		return nil, nil, err
	}
	if err := feature.Apply(df, job.Model.Features()); err != nil {
		return nil, nil, err
	}
	op[job.Timeframe] = df

	required, err := job.Model.RequiredTimeframes([]string{job.Timeframe})
	if err != nil {
		return nil, nil, err
	}

	var req []*model.Dataframe
	for _, tf := range required {
		aux, err := feeder.Klines(ctx, job.Remote, tf, lookbackFor(lookback, tf))
		if err != nil {
			return nil, nil, err
		}
		if err := feature.Apply(aux, job.Model.Features()); err != nil {
			return nil, nil, err
		}
		op[tf] = aux
		req = append(req, aux)
	}
	return op, req, nil
}

func lookbackFor(lookback map[string]int, tf string) int {
	if n, ok := lookback[tf]; ok {
		return n
	}
	return defaultLookback
}
