// Package timeframe handles the canonical timeframe codes used across
// the platform ("1Min", "4H", "7D", ...) and resolves the auxiliary
// timeframes a model needs fetched alongside its operating set.
package timeframe

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/StudioSol/set"
	str2duration "github.com/xhit/go-str2duration/v2"
)

// Canonical "doubled" trigger timeframes. Codes not listed here fall
// back to plain numeric doubling.
var doubled = map[string]string{
	"1Min":  "3Min",
	"3Min":  "5Min",
	"5Min":  "15Min",
	"30Min": "1H",
	"12H":   "1D",
	"16H":   "1D",
	"3D":    "7D",
}

// Parse splits a timeframe code into numeric magnitude and unit suffix.
// A code with no digits is a configuration error.
func Parse(tf string) (int, string, error) {
	var digits, unit strings.Builder
	for _, r := range tf {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		} else if unicode.IsLetter(r) {
			unit.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, "", fmt.Errorf("timeframe %q: no numeric magnitude", tf)
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, "", fmt.Errorf("timeframe %q: %w", tf, err)
	}
	return n, unit.String(), nil
}

// Double returns the confirmation timeframe for tf: the canonical
// mapping when one exists, otherwise the magnitude doubled with the
// unit suffix preserved ("4H" -> "8H").
func Double(tf string) (string, error) {
	if d, ok := doubled[tf]; ok {
		return d, nil
	}
	n, unit, err := Parse(tf)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n*2) + unit, nil
}

// Required returns the doubled timeframe for each element of tfs,
// excluding codes already present in tfs and duplicates among the
// results themselves. The input is never modified.
func Required(tfs []string) ([]string, error) {
	have := set.NewLinkedHashSetString(tfs...)
	added := set.NewLinkedHashSetString()

	for _, tf := range tfs {
		d, err := Double(tf)
		if err != nil {
			return nil, err
		}
		if !have.InArray(d) && !added.InArray(d) {
			added.Add(d)
		}
	}
	return added.AsSlice(), nil
}

// Merge returns a new list holding tfs followed by every element of add
// not already present, preserving order. Neither argument is modified.
func Merge(tfs, add []string) []string {
	out := make([]string, len(tfs), len(tfs)+len(add))
	copy(out, tfs)
	seen := set.NewLinkedHashSetString(tfs...)
	for _, tf := range add {
		if !seen.InArray(tf) {
			seen.Add(tf)
			out = append(out, tf)
		}
	}
	return out
}

// Duration converts a timeframe code to its bar period, e.g.
// "5Min" -> 5m, "4H" -> 4h, "7D" -> 168h.
func Duration(tf string) (time.Duration, error) {
	n, unit, err := Parse(tf)
	if err != nil {
		return 0, err
	}
	var suffix string
	switch strings.ToLower(unit) {
	case "min", "m":
		suffix = "m"
	case "h":
		suffix = "h"
	case "d":
		suffix = "d"
	case "w":
		suffix = "w"
	default:
		return 0, fmt.Errorf("timeframe %q: unknown unit %q", tf, unit)
	}
	return str2duration.ParseDuration(strconv.Itoa(n) + suffix)
}

// Sort returns tfs ordered by bar period, shortest first. Codes that
// fail to parse keep their relative input position at the end.
func Sort(tfs []string) []string {
	out := append([]string{}, tfs...)
	key := func(tf string) time.Duration {
		d, err := Duration(tf)
		if err != nil {
			return time.Duration(1<<62 - 1)
		}
		return d
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && key(out[j]) < key(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
