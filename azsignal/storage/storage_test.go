package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezquant/azsignal/azsignal/model"
)

func TestSaveAndList(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)

	stop := 99.0
	require.NoError(t, store.Save(&model.SignalEvent{
		Symbol:     "XBTUSD",
		Venue:      "BitMEX",
		Strategy:   "emacross",
		Timeframe:  "1Min",
		Direction:  model.DirectionLong,
		EntryTS:    1767348000,
		EntryPrice: 100,
		OrderType:  model.OrderTypeMarket,
		Targets:    []model.Target{{Price: 100.5, ClosePct: 100}},
		StopPrice:  &stop,
	}))
	require.NoError(t, store.Save(&model.SignalEvent{
		Symbol:     "XBTUSD",
		Venue:      "BitMEX",
		Strategy:   "emacross",
		Timeframe:  "1Min",
		Direction:  model.DirectionShort,
		EntryTS:    1767348060,
		EntryPrice: 101,
		OrderType:  model.OrderTypeMarket,
		Targets:    []model.Target{{Price: 100.495, ClosePct: 100}},
	}))

	signals, err := store.Signals(10)
	require.NoError(t, err)
	require.Len(t, signals, 2)

	assert.Equal(t, "SHORT", signals[0].Direction, "newest first")
	assert.Equal(t, "LONG", signals[1].Direction)
	assert.Equal(t, 100.0, signals[1].EntryPrice)
	require.NotNil(t, signals[1].StopPrice)
	assert.Equal(t, 99.0, *signals[1].StopPrice)
	assert.Contains(t, signals[1].Targets, "100.5")

	one, err := store.Signals(1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}
