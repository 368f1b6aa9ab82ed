package config

import (
	"math"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
)

// yt-dlp accepts a number with an optional binary suffix up to Y, e.g. 50K, 4.2M or 1T
var rateLimitPattern = regexp.MustCompile(`^\d+(\.\d+)?[KkMmGgTtPpEeZzYy]?$`)

// ParseRateLimit validates a rate limit and returns its approximate bytes per
// second, saturating at math.MaxUint64. The original string is what yt-dlp receives.
func ParseRateLimit(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if !rateLimitPattern.MatchString(s) {
		return 0, errors.Newf("invalid rate limit %q: expected a number with optional K, M, G, T, P, E, Z or Y suffix", s)
	}
	amount := s
	if last := s[len(s)-1]; last < '0' || last > '9' {
		amount = strings.ToLower(s) + "ib"
	}
	bps, err := humanize.ParseBigBytes(amount)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid rate limit %q", s)
	}
	if bps.Sign() <= 0 {
		return 0, errors.Newf("invalid rate limit %q: must be positive", s)
	}
	if !bps.IsUint64() {
		return math.MaxUint64, nil
	}
	return bps.Uint64(), nil
}

// SplitLangs splits a comma separated language list, trimming whitespace and
// dropping empty entries
func SplitLangs(s string) []string {
	var langs []string
	for _, part := range strings.Split(s, ",") {
		if lang := strings.TrimSpace(part); lang != "" {
			langs = append(langs, lang)
		}
	}
	return langs
}
