package strategy

import (
	"github.com/ezquant/azsignal/azsignal/model"
	"github.com/ezquant/azsignal/azsignal/timeframe"
	"github.com/ezquant/azsignal/azsignal/tools/log"
)

// EQTrend is a long-short trend-following model around the 10/20 EMA
// equilibrium.
//
// Rules:
//  1. Price trending on the trigger timeframe (EMA10/EMA20 aligned).
//  2. Price trending on the doubled trigger timeframe.
//  3. MACD convergent with the trigger-timeframe direction.
//  4. Price pulled back into the 10/20 EMA EQ zone.
//
// Entry: stop order at the break of the trigger bar's high/low.
// Stop-loss: at the swing low/high of the trigger bar.
// T1 at 1R closes 50% of the position, remainder trails the trend.
type EQTrend struct {
	instruments map[string]map[string]string
	operating   []string
	lookback    map[string]int
	features    []model.Feature
}

func NewEQTrend() *EQTrend {
	return &EQTrend{
		instruments: map[string]map[string]string{
			"BitMEX": {
				"XBTUSD": "XBTUSD",
			},
			"Binance": {},
			"FTX":     {},
		},
		operating: []string{
			"1Min", "5Min", "15Min", "30Min", "1H", "2H", "3H", "4H",
			"6H", "8H", "12H", "16H", "1D", "2D", "3D", "7D", "14D",
		},
		lookback: defaultLookback(),
		features: []model.Feature{
			{Kind: model.FeatureIndicator, Fn: "EMA", Param: 10},
			{Kind: model.FeatureIndicator, Fn: "EMA", Param: 20},
			{Kind: model.FeatureIndicator, Fn: "MACD"},
		},
	}
}

func (m *EQTrend) Name() string { return "eq-trend" }

func (m *EQTrend) Instruments() map[string]map[string]string {
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

func (m *EQTrend) OperatingTimeframes() []string {
	return append([]string{}, m.operating...)
}

func (m *EQTrend) Lookback() map[string]int {
	out := make(map[string]int, len(m.lookback))
	for tf, n := range m.lookback {
		out[tf] = n
	}
	return out
}

func (m *EQTrend) Features() []model.Feature {
	return append([]model.Feature{}, m.features...)
}

// RequiredTimeframes resolves the doubled confirmation timeframe for
// each operating timeframe.
func (m *EQTrend) RequiredTimeframes(tfs []string) ([]string, error) {
	return timeframe.Required(tfs)
}

func (m *EQTrend) Run(op map[string]*model.Dataframe, req []*model.Dataframe,
	timeframe, symbol, venue string) (*model.SignalEvent, error) {

	log.Infof("running %s %s", timeframe, m.Name())

	if !contains(m.operating, timeframe) {
		return nil, nil
	}

	df := op[timeframe]
	if df == nil || df.Len() < 3 {
		return nil, nil
	}

	confirm := m.confirmFrame(op, req, timeframe)

	if sig := m.evaluate(df, confirm, model.DirectionLong, symbol, venue); sig != nil {
		return sig, nil
	}
	if sig := m.evaluate(df, confirm, model.DirectionShort, symbol, venue); sig != nil {
		return sig, nil
	}
	return nil, nil
}

// confirmFrame locates the doubled-timeframe series, either in the
// operating map or among the supplementary frames.
func (m *EQTrend) confirmFrame(op map[string]*model.Dataframe,
	req []*model.Dataframe, tf string) *model.Dataframe {

	d, err := timeframe.Double(tf)
	if err != nil {
		// Config is validated at registration; an unknown code here
		// means the caller passed a timeframe the model never declared.
		return nil
	}
	if frame, ok := op[d]; ok {
		return frame
	}
	for _, frame := range req {
		if frame != nil && frame.Timeframe == d {
			return frame
		}
	}
	return nil
}

func (m *EQTrend) evaluate(df, confirm *model.Dataframe,
	direction model.Direction, symbol, venue string) *model.SignalEvent {

	if !trending(df, direction) {
		return nil
	}
	if !trending(confirm, direction) {
		return nil
	}
	if !convergent(df, direction) {
		return nil
	}
	if !pulledBack(df, direction) {
		return nil
	}

	last := df.Len() - 1
	var entry, stop float64
	if direction == model.DirectionLong {
		entry, stop = df.High[last], df.Low[last]
	} else {
		entry, stop = df.Low[last], df.High[last]
	}
	risk := entry - stop
	if direction == model.DirectionShort {
		risk = stop - entry
	}
	if risk <= 0 {
		return nil
	}

	// T1 at 1R closing half, trade is risk free afterwards.
	t1 := entry + risk
	if direction == model.DirectionShort {
		t1 = entry - risk
	}

	trail := risk
	return &model.SignalEvent{
		Symbol:     symbol,
		EntryTS:    df.LastTime().Unix(),
		Direction:  direction,
		Timeframe:  df.Timeframe,
		Strategy:   m.Name(),
		Venue:      venue,
		EntryPrice: entry,
		OrderType:  model.OrderTypeStop,
		Targets:    []model.Target{{Price: t1, ClosePct: 50}},
		StopPrice:  &stop,
		Trail:      &trail,
		Series:     df.Snapshot(),
	}
}

// trending checks EMA10/EMA20 alignment on the last bar.
func trending(df *model.Dataframe, direction model.Direction) bool {
	if df == nil || df.Len() == 0 {
		return false
	}
	i := df.Len() - 1
	fast, slow := df.Column("EMA10"), df.Column("EMA20")
	if !model.Defined(fast, i) || !model.Defined(slow, i) {
		return false
	}
	if direction == model.DirectionLong {
		return fast[i] > slow[i]
	}
	return fast[i] < slow[i]
}

// convergent checks the MACD line agrees with the trend direction.
func convergent(df *model.Dataframe, direction model.Direction) bool {
	i := df.Len() - 1
	macd := df.Column("MACD")
	if !model.Defined(macd, i) {
		return false
	}
	if direction == model.DirectionLong {
		return macd[i] > 0
	}
	return macd[i] < 0
}

// pulledBack checks the last bar reached into the 10/20 EMA EQ zone
// without closing through the slow side of it.
func pulledBack(df *model.Dataframe, direction model.Direction) bool {
	i := df.Len() - 1
	fast, slow := df.Column("EMA10"), df.Column("EMA20")
	if !model.Defined(fast, i) || !model.Defined(slow, i) {
		return false
	}
	if direction == model.DirectionLong {
		return df.Low[i] <= fast[i] && df.Close[i] > slow[i]
	}
	return df.High[i] >= fast[i] && df.Close[i] < slow[i]
}
