package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/orneryd/replacer/pkg/pool"
	"github.com/orneryd/replacer/pkg/replace"
)

var errUnknownOp = errors.New("unknown comparison operator")

// parsePredicate builds "v <op> than" for the --op/--than flags.
func parsePredicate(op string, than float64) (replace.Predicate[float64], error) {
	switch strings.ToLower(op) {
	case "lt", "<":
		return func(v float64) bool { return v < than }, nil
	case "le", "<=":
		return func(v float64) bool { return v <= than }, nil
	case "gt", ">":
		return func(v float64) bool { return v > than }, nil
	case "ge", ">=":
		return func(v float64) bool { return v >= than }, nil
	case "eq", "==":
		return func(v float64) bool { return v == than }, nil
	case "ne", "!=":
		return func(v float64) bool { return v != than }, nil
	}
	return nil, fmt.Errorf("%w %q (want lt, le, gt, ge, eq or ne)", errUnknownOp, op)
}

// parseValues parses positional arguments as float64. Arguments may also
// hold comma-separated lists.
func parseValues(args []string) ([]float64, error) {
	values := make([]float64, 0, len(args))
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid value %q: %w", field, err)
			}
			values = append(values, v)
		}
	}
	return values, nil
}

// formatValues renders values space-separated in their shortest form.
func formatValues(values []float64) string {
	buf := pool.GetByteBuffer()
	defer func() { pool.PutByteBuffer(buf) }()

	for i, v := range values {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
	}
	return string(buf)
}
