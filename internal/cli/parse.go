package cli

import (
	"fmt"
	"math"
	"palettecore/pkg/domain"
	"strconv"
	"strings"
)

// optionalSlider parses a slider flag. Slider flags are strings so that an
// unset flag can be told apart from 0.
func optionalSlider(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 100 {
		return nil, fmt.Errorf("%w: --%s must be a number between 0 and 100, got %q", domain.ErrInvalidInput, name, raw)
	}
	return &v, nil
}

// parseIDs accepts repeated or comma-separated ids.
func parseIDs(name string, raw []string) ([]int64, error) {
	var ids []int64
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("%w: --%s expects color ids, got %q", domain.ErrInvalidInput, name, part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// familyName canonicalizes a known family name. Unknown names pass through
// unchanged and match no colors.
func familyName(raw string) string {
	raw = strings.TrimSpace(raw)
	if family, ok := domain.ParseColorFamily(raw); ok {
		return string(family)
	}
	return raw
}
