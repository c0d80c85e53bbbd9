package model

import "strconv"

// FeatureKind distinguishes numeric indicator columns from boolean
// classifier columns.
type FeatureKind string

const (
	FeatureIndicator FeatureKind = "indicator"
	FeatureBoolean   FeatureKind = "boolean"
)

// Feature declares one column a model expects the feature engine to
// compute on its lookback windows before Run is invoked.
type Feature struct {
	Kind  FeatureKind
	Fn    string // symbolic function name, e.g. "EMA", "MACD"
	Param int    // numeric parameter, 0 when the function takes none
}

// Column returns the deterministic column name for the feature:
// function name plus parameter ("EMA" 10 -> "EMA10"), or the bare
// function name for parameterless features ("MACD").
func (f Feature) Column() string {
	if f.Param == 0 {
		return f.Fn
	}
	return f.Fn + strconv.Itoa(f.Param)
}
