package strategy

import (
	"github.com/ezquant/azsignal/azsignal/model"
	"github.com/ezquant/azsignal/azsignal/tools/log"
)

// Default lookback for every timeframe a model may run or confirm on.
// Per-timeframe tuning still pending, 150 bars everywhere for now.
func defaultLookback() map[string]int {
	lookback := make(map[string]int, len(allTimeframes))
	for _, tf := range allTimeframes {
		lookback[tf] = 150
	}
	return lookback
}

var allTimeframes = []string{
	"1Min", "3Min", "5Min", "15Min", "30Min",
	"1H", "2H", "3H", "4H", "6H", "8H",
	"12H", "16H", "1D", "2D", "3D", "4D",
	"7D", "14D",
}

// EMACross is a testing-only model: market entry when the 10/20 EMAs
// cross, no stop, take-profit at a fixed 0.5% from entry. The opposite
// cross produces the opposing signal.
type EMACross struct {
	instruments map[string]map[string]string
	operating   []string
	lookback    map[string]int
	features    []model.Feature
}

func NewEMACross() *EMACross {
	return &EMACross{
		instruments: map[string]map[string]string{
			"BitMEX": {
				"XBTUSD": "XBTUSD",
			},
			"Binance": {},
			"FTX":     {},
		},
		operating: []string{"1Min"},
		lookback:  defaultLookback(),
		features: []model.Feature{
			{Kind: model.FeatureIndicator, Fn: "EMA", Param: 10},
			{Kind: model.FeatureIndicator, Fn: "EMA", Param: 20},
		},
	}
}

func (m *EMACross) Name() string { return "emacross" }

func (m *EMACross) Instruments() map[string]map[string]string {
	out := make(map[string]map[string]string, len(m.instruments))
	for venue, symbols := range m.instruments {
		inner := make(map[string]string, len(symbols))
		for local, remote := range symbols {
			inner[local] = remote
		}
		out[venue] = inner
	}
	return out
}

func (m *EMACross) OperatingTimeframes() []string {
	return append([]string{}, m.operating...)
}

func (m *EMACross) Lookback() map[string]int {
	out := make(map[string]int, len(m.lookback))
	for tf, n := range m.lookback {
		out[tf] = n
	}
	return out
}

func (m *EMACross) Features() []model.Feature {
	return append([]model.Feature{}, m.features...)
}

// RequiredTimeframes reports no auxiliary timeframes: the model reads
// only the series it operates on.
func (m *EMACross) RequiredTimeframes(tfs []string) ([]string, error) {
	return nil, nil
}

func (m *EMACross) Run(op map[string]*model.Dataframe, req []*model.Dataframe,
	timeframe, symbol, venue string) (*model.SignalEvent, error) {

	log.Infof("running %s %s", timeframe, m.Name())

	if !contains(m.operating, timeframe) {
		return nil, nil
	}

	df := op[timeframe]
	if df == nil {
		log.Warnf("%s: no %s series for %s, skipping", m.Name(), timeframe, symbol)
		return nil, nil
	}

	longs, shorts := crossovers(df, m.features[0].Column(), m.features[1].Column())
	return crossSignal(df, longs, shorts, m.Name(), symbol, venue)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
