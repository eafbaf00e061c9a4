// Package core provides filtering of history entries.
package core

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/ocnotify/internal/model"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // kind, mechanism, attempted, played, attempts, duration, timestamp
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	regex       *regexp.Regexp
	intVal      int64
	timestampOp time.Time
	boolVal     bool
}

// FilterExpr is a set of conditions ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition
}

// FilterOptions specifies simple criteria for filtering entries.
type FilterOptions struct {
	Since  time.Duration   // Only entries newer than now-since (0=all)
	Kind   model.EventKind // Exact kind ("" = any)
	Failed bool            // Only entries where nothing played
	Limit  int             // Maximum results (0=unlimited)
}

// Filter filters entries based on the provided options. Order is preserved.
func Filter(entries []model.Entry, opts FilterOptions) []model.Entry {
	now := time.Now()
	result := make([]model.Entry, 0, len(entries))

	for _, e := range entries {
		if opts.Since > 0 && time.Unix(e.Timestamp, 0).Before(now.Add(-opts.Since)) {
			continue
		}
		if opts.Kind != "" && e.Kind != opts.Kind {
			continue
		}
		if opts.Failed && e.Played {
			continue
		}
		result = append(result, e)
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// ParseDuration parses a duration string with extended formats.
// Supports: 48h, 7d, 1w, 0 (all time)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if s == "0" || s == "" {
		return 0, nil
	}

	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2,field3>value3"
// Multiple conditions are comma-separated and ANDed together.
//
// Supported fields: kind, mechanism, attempted, played, attempts, duration, timestamp
// Supported operators: = (equal), != (not equal), ~ (contains), ~= (regex), >, <, >=, <=
//
// Examples:
//   - "kind=permission"
//   - "played=false,timestamp>1d" - failures in the last day
//   - "attempted=paplay" - paplay was tried, whether or not it worked
//   - "attempts>1" - the primary mechanism failed
//   - "duration>=2000" - playback took two seconds or more
func ParseFilter(expr string) (*FilterExpr, error) {
	if expr == "" {
		return &FilterExpr{}, nil
	}

	filter := &FilterExpr{
		Conditions: make([]FilterCondition, 0),
	}

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}

	return filter, nil
}

// parseCondition parses a single condition like "kind=permission".
func parseCondition(s string) (FilterCondition, error) {
	// Longest operators first so "!=" is not read as "=".
	operators := []FilterOp{
		FilterOpNotEqual,
		FilterOpGreaterEq,
		FilterOpLessEq,
		FilterOpRegex,
		FilterOpEqual,
		FilterOpContains,
		FilterOpGreater,
		FilterOpLess,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx > 0 {
			cond := FilterCondition{
				Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
				Operator: op,
				Value:    strings.TrimSpace(s[idx+len(op):]),
			}
			if err := cond.init(); err != nil {
				return FilterCondition{}, err
			}
			return cond, nil
		}
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

// init pre-parses and validates the condition value.
func (c *FilterCondition) init() error {
	switch c.Field {
	case "kind", "event":
		c.Field = "kind"
		if c.Operator == FilterOpEqual || c.Operator == FilterOpNotEqual {
			if _, err := model.ParseEventKind(c.Value); err != nil {
				return err
			}
		}
	case "mechanism", "mech", "via":
		c.Field = "mechanism"
	case "attempted", "tried":
		c.Field = "attempted"
	case "played", "ok":
		c.Field = "played"
		c.boolVal = parseBool(c.Value)
	case "attempts", "tries":
		c.Field = "attempts"
		n, err := strconv.ParseInt(c.Value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid attempts value: %s", c.Value)
		}
		c.intVal = n
	case "duration", "duration_ms", "took":
		c.Field = "duration"
		n, err := strconv.ParseInt(c.Value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid duration value: %s (milliseconds)", c.Value)
		}
		c.intVal = n
	case "timestamp", "time", "ts":
		c.Field = "timestamp"
		dur, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid timestamp value: %w", err)
		}
		c.timestampOp = time.Now().Add(-dur)
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}

	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "y", "t":
		return true
	default:
		return false
	}
}

// Match tests if an entry matches every condition.
func (f *FilterExpr) Match(e model.Entry) bool {
	for _, cond := range f.Conditions {
		if !cond.Match(e) {
			return false
		}
	}
	return true
}

// Match tests if an entry matches this single condition.
func (c *FilterCondition) Match(e model.Entry) bool {
	switch c.Field {
	case "kind":
		return c.matchString(string(e.Kind))
	case "mechanism":
		return c.matchString(e.Mechanism)
	case "attempted":
		if c.Operator == FilterOpNotEqual {
			return !slices.Contains(e.Attempts, c.Value)
		}
		return slices.ContainsFunc(e.Attempts, c.matchPositive)
	case "played":
		return c.matchBool(e.Played)
	case "attempts":
		return c.matchInt(int64(len(e.Attempts)))
	case "duration":
		return c.matchInt(e.DurationMs)
	case "timestamp":
		return c.matchTimestamp(time.Unix(e.Timestamp, 0))
	default:
		return false
	}
}

// matchPositive applies the non-negated string operators.
func (c *FilterCondition) matchPositive(v string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return v == c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(v), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(v)
	default:
		return false
	}
}

func (c *FilterCondition) matchString(v string) bool {
	if c.Operator == FilterOpNotEqual {
		return v != c.Value
	}
	return c.matchPositive(v)
}

func (c *FilterCondition) matchInt(v int64) bool {
	switch c.Operator {
	case FilterOpEqual:
		return v == c.intVal
	case FilterOpNotEqual:
		return v != c.intVal
	case FilterOpGreater:
		return v > c.intVal
	case FilterOpLess:
		return v < c.intVal
	case FilterOpGreaterEq:
		return v >= c.intVal
	case FilterOpLessEq:
		return v <= c.intVal
	default:
		return false
	}
}

func (c *FilterCondition) matchBool(v bool) bool {
	switch c.Operator {
	case FilterOpEqual:
		return v == c.boolVal
	case FilterOpNotEqual:
		return v != c.boolVal
	default:
		return false
	}
}

// matchTimestamp compares against now minus the parsed duration, so
// "timestamp>1h" means newer than an hour ago.
func (c *FilterCondition) matchTimestamp(v time.Time) bool {
	switch c.Operator {
	case FilterOpGreater:
		return v.After(c.timestampOp)
	case FilterOpLess:
		return v.Before(c.timestampOp)
	case FilterOpGreaterEq:
		return !v.Before(c.timestampOp)
	case FilterOpLessEq:
		return !v.After(c.timestampOp)
	default:
		return false
	}
}

// FilterWithExpr filters entries using a filter expression.
func FilterWithExpr(entries []model.Entry, expr *FilterExpr) []model.Entry {
	if expr == nil || len(expr.Conditions) == 0 {
		return entries
	}

	result := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if expr.Match(e) {
			result = append(result, e)
		}
	}
	return result
}
