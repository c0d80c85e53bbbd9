// Package feature computes the indicator columns a model declares onto
// its lookback windows, naming each column by function and parameter
// ("EMA" 10 -> "EMA10") so models can address them deterministically.
package feature

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"github.com/ezquant/azsignal/azsignal/model"
)

// MACD defaults, standard 12/26/9.
const (
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
)

// Apply computes every declared feature onto df.Metadata. Columns for
// warm-up spans hold NaN so detectors can skip undefined bars.
func Apply(df *model.Dataframe, features []model.Feature) error {
	for _, f := range features {
		col, err := compute(df, f)
		if err != nil {
			return fmt.Errorf("feature %s: %w", f.Column(), err)
		}
		df.Metadata[f.Column()] = col
	}
	return nil
}

func compute(df *model.Dataframe, f model.Feature) (model.Series[float64], error) {
	n := df.Len()

	switch f.Fn {
	case "EMA":
		if f.Param <= 0 {
			return nil, fmt.Errorf("EMA requires a positive period")
		}
		if n < f.Param {
			return undefined(n), nil
		}
		return warmupNaN(talib.Ema(df.Close, f.Param), f.Param-1), nil

	case "SMA":
		if f.Param <= 0 {
			return nil, fmt.Errorf("SMA requires a positive period")
		}
		if n < f.Param {
			return undefined(n), nil
		}
		return warmupNaN(talib.Sma(df.Close, f.Param), f.Param-1), nil

	case "MACD":
		// talib aligns all three MACD outputs to the signal-line
		// lookback.
		span := macdSlow + macdSignal - 2
		if n <= span {
			return undefined(n), nil
		}
		macd, _, _ := talib.Macd(df.Close, macdFast, macdSlow, macdSignal)
		return warmupNaN(macd, span), nil

	default:
		return nil, fmt.Errorf("unknown feature function %q", f.Fn)
	}
}

// warmupNaN replaces the leading `span` values (talib emits zeros over
// the unstable period) with NaN.
func warmupNaN(values []float64, span int) model.Series[float64] {
	out := model.Series[float64](values)
	if span > len(out) {
		span = len(out)
	}
	for i := 0; i < span; i++ {
		out[i] = math.NaN()
	}
	return out
}

func undefined(n int) model.Series[float64] {
	out := make(model.Series[float64], n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
