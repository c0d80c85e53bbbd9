// Package exchange supplies lookback bar windows from market venues.
package exchange

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"

	"github.com/ezquant/azsignal/azsignal/model"
)

// Feeder fetches the most recent `limit` bars for a symbol on one
// timeframe, ordered oldest first.
type Feeder interface {
	Klines(ctx context.Context, symbol, timeframe string, limit int) (*model.Dataframe, error)
}

// Feeders maps venue name to its feeder implementation.
type Feeders map[string]Feeder

func (f Feeders) For(venue string) (Feeder, error) {
	feeder, ok := f[venue]
	if !ok {
		return nil, fmt.Errorf("exchange: no feeder for venue %q", venue)
	}
	return feeder, nil
}

// WarmupRequest names one window to prefetch.
type WarmupRequest struct {
	Venue     string
	Symbol    string
	Timeframe string
	Lookback  int
}

// Warmup prefetches every requested window sequentially with a
// progress bar, returning frames keyed by venue:symbol:timeframe.
// Used at startup so the first scan has full lookback available.
func Warmup(ctx context.Context, feeders Feeders, reqs []WarmupRequest) (map[string]*model.Dataframe, error) {
	bar := progressbar.Default(int64(len(reqs)), "warmup")
	out := make(map[string]*model.Dataframe, len(reqs))

	for _, req := range reqs {
		feeder, err := feeders.For(req.Venue)
		if err != nil {
			return nil, err
		}
		df, err := feeder.Klines(ctx, req.Symbol, req.Timeframe, req.Lookback)
		if err != nil {
			return nil, fmt.Errorf("warmup %s %s %s: %w", req.Venue, req.Symbol, req.Timeframe, err)
		}
		out[req.Venue+":"+req.Symbol+":"+req.Timeframe] = df
		_ = bar.Add(1)
	}
	return out, nil
}
