package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jpillora/backoff"

	"github.com/ezquant/azsignal/azsignal/model"
)

const bitmexBaseURL = "https://www.bitmex.com/api/v1"

// bitmex's bucketed-trade endpoint only serves these bin sizes;
// coarser frames are resampled upstream by the aggregation layer.
var bitmexBins = map[string]string{
	"1Min": "1m",
	"5Min": "5m",
	"1H":   "1h",
	"1D":   "1d",
}

type bitmexBucket struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// BitMEX feeds bucketed trade bars over REST, retrying transient
// failures with exponential backoff.
type BitMEX struct {
	client  *resty.Client
	retries int
}

func NewBitMEX() *BitMEX {
	return &BitMEX{
		client:  resty.New().SetBaseURL(bitmexBaseURL),
		retries: 3,
	}
}

func (b *BitMEX) Klines(ctx context.Context, symbol, tf string, limit int) (*model.Dataframe, error) {
	bin, ok := bitmexBins[tf]
	if !ok {
		return nil, fmt.Errorf("bitmex: no native bin size for timeframe %q", tf)
	}

	boff := &backoff.Backoff{
		Min:    500 * time.Millisecond,
		Max:    10 * time.Second,
		Jitter: true,
	}

	var buckets []bitmexBucket
	var lastErr error
	for attempt := 0; attempt <= b.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(boff.Duration()):
			}
		}

		resp, err := b.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"binSize": bin,
				"symbol":  symbol,
				"count":   fmt.Sprintf("%d", limit),
				"partial": "false",
				"reverse": "true",
			}).
			SetResult(&buckets).
			Get("/trade/bucketed")
		if err != nil {
			lastErr = err
			continue
		}
		if resp.IsError() {
			lastErr = fmt.Errorf("bitmex: %s", resp.Status())
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return nil, fmt.Errorf("bitmex klines %s %s: %w", symbol, tf, lastErr)
	}

	// Response is newest first, flip to time order.
	df := model.NewDataframe(symbol, tf)
	for i := len(buckets) - 1; i >= 0; i-- {
		bk := buckets[i]
		df.Append(bk.Timestamp.UTC(), bk.Open, bk.High, bk.Low, bk.Close, bk.Volume)
	}
	return df, nil
}
