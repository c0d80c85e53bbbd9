// Package strategy defines the model contract every trading strategy
// implements and a registry the scheduler uses to look models up by
// name and plan data subscriptions.
package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ezquant/azsignal/azsignal/model"
)

// Model is the contract between a strategy and the platform. All
// metadata accessors return immutable configuration fixed at
// construction; Run must be a pure function of its arguments so the
// scheduler can invoke it concurrently for distinct (symbol, timeframe)
// combinations.
type Model interface {
	// Name returns the model's unique identifier.
	Name() string

	// Instruments maps venue name to local symbol to venue symbol.
	Instruments() map[string]map[string]string

	// OperatingTimeframes lists the timeframes the model evaluates
	// for signals, shortest first.
	OperatingTimeframes() []string

	// Lookback maps timeframe code to the number of historical bars
	// the model needs before it can evaluate that timeframe.
	Lookback() map[string]int

	// Features lists the indicator columns the feature engine must
	// compute on each operating-timeframe window before Run.
	Features() []model.Feature

	// Run evaluates one (symbol, timeframe) combination. op holds the
	// bar series per timeframe, including every timeframe returned by
	// RequiredTimeframes; req holds series for auxiliary timeframes in
	// the order RequiredTimeframes reported them. Returns at most one
	// signal, or nil when no qualifying condition exists on the final
	// bar. A non-nil error reports an internal defect, never a data
	// anomaly.
	Run(op map[string]*model.Dataframe, req []*model.Dataframe,
		timeframe, symbol, venue string) (*model.SignalEvent, error)

	// RequiredTimeframes returns the auxiliary timeframes the model
	// needs fetched for the given operating set, excluding codes
	// already in tfs and free of duplicates. Pure: tfs is never
	// modified.
	RequiredTimeframes(tfs []string) ([]string, error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Model{}
)

// Register adds a model to the registry, validating its configuration
// once so malformed timeframe codes fail at startup rather than per
// scan.
func Register(m Model) error {
	name := m.Name()
	if name == "" {
		return fmt.Errorf("strategy: model with empty name")
	}

	lookback := m.Lookback()
	for _, tf := range m.OperatingTimeframes() {
		if _, ok := lookback[tf]; !ok {
			return fmt.Errorf("strategy %q: operating timeframe %s has no lookback entry", name, tf)
		}
	}
	if _, err := m.RequiredTimeframes(m.OperatingTimeframes()); err != nil {
		return fmt.Errorf("strategy %q: %w", name, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[name]; dup {
		return fmt.Errorf("strategy %q already registered", name)
	}
	registry[name] = m
	return nil
}

// Get returns the registered model with the given name.
func Get(name string) (Model, bool) {
	mu.RLock()
	defer mu.RUnlock()
	m, ok := registry[name]
	return m, ok
}

// Models returns all registered models sorted by name.
func Models() []Model {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Model, 0, len(registry))
	for _, m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
