package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// parseSelection convierte "all" o "1,3,5-7" en índices 0-based ordenados y
// sin duplicados, como los devuelve una lista con selección múltiple.
func parseSelection(expr string, n int) ([]int, error) {
	expr = strings.TrimSpace(strings.ToLower(expr))
	if expr == "" {
		return nil, fmt.Errorf("empty selection")
	}
	if expr == "all" || expr == "*" {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	seen := make(map[int]bool)
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, err := parseRange(part)
		if err != nil {
			return nil, err
		}
		if lo < 1 || hi > n {
			return nil, fmt.Errorf("selection %q out of range 1-%d", part, n)
		}
		for i := lo; i <= hi; i++ {
			seen[i-1] = true
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("empty selection")
	}

	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out, nil
}

func parseRange(part string) (int, int, error) {
	from, to, isRange := strings.Cut(part, "-")
	lo, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid selection %q", part)
	}
	if !isRange {
		return lo, lo, nil
	}
	hi, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil || hi < lo {
		return 0, 0, fmt.Errorf("invalid range %q", part)
	}
	return lo, hi, nil
}
