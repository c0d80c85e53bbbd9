package exchange

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"

	"github.com/ezquant/azsignal/azsignal/model"
	"github.com/ezquant/azsignal/azsignal/timeframe"
)

// Binance feeds spot klines through the official REST API.
type Binance struct {
	client *binance.Client
}

func NewBinance(apiKey, secretKey string) *Binance {
	return &Binance{client: binance.NewClient(apiKey, secretKey)}
}

func (b *Binance) Klines(ctx context.Context, symbol, tf string, limit int) (*model.Dataframe, error) {
	interval, err := binanceInterval(tf)
	if err != nil {
		return nil, err
	}

	klines, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s %s: %w", symbol, tf, err)
	}

	df := model.NewDataframe(symbol, tf)
	for _, k := range klines {
		open, err := strconv.ParseFloat(k.Open, 64)
		if err != nil {
			return nil, err
		}
		high, err := strconv.ParseFloat(k.High, 64)
		if err != nil {
			return nil, err
		}
		low, err := strconv.ParseFloat(k.Low, 64)
		if err != nil {
			return nil, err
		}
		closePrice, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return nil, err
		}
		volume, err := strconv.ParseFloat(k.Volume, 64)
		if err != nil {
			return nil, err
		}
		df.Append(time.UnixMilli(k.OpenTime).UTC(), open, high, low, closePrice, volume)
	}
	return df, nil
}

// binanceInterval translates a canonical timeframe code into binance's
// interval notation ("1Min" -> "1m", "4H" -> "4h", "7D" -> "1w").
func binanceInterval(tf string) (string, error) {
	if tf == "7D" {
		return "1w", nil
	}
	n, unit, err := timeframe.Parse(tf)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(unit) {
	case "min":
		return fmt.Sprintf("%dm", n), nil
	case "h":
		return fmt.Sprintf("%dh", n), nil
	case "d":
		return fmt.Sprintf("%dd", n), nil
	default:
		return "", fmt.Errorf("binance: unsupported timeframe %q", tf)
	}
}
