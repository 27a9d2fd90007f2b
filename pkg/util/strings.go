package util

import (
	"fmt"
	"strconv"
	"strings"
)

// SplitCommaSeparated splits a comma-separated string and trims whitespace from each element.
// Empty input returns nil.
func SplitCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// SplitCommaSeparatedInts is SplitCommaSeparated for integer lists ("10,20,30").
func SplitCommaSeparatedInts(s string) ([]int, error) {
	parts := SplitCommaSeparated(s)
	if parts == nil {
		return nil, nil
	}
	result := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", p)
		}
		result = append(result, n)
	}
	return result, nil
}

// LeftPad pads s on the left with pad up to width bytes.
func LeftPad(s string, width int, pad byte) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(string(pad), width-len(s)) + s
}
