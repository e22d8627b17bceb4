package sanitize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	rxUnitSuffix = regexp.MustCompile(`^(-?[\d.,]+)[\p{L}²³%]+$`)
	rxKmPrefix   = regexp.MustCompile(`(?i)^km\.?\s*`)
	rxKmPlus     = regexp.MustCompile(`(?i)^(\d+)\s*\+\s*(\d{1,3})\s*m?$`)
	spaces       = strings.NewReplacer(" ", "", "\u00A0", "", "\u202F", "", "\u2009", "", "\t", "")
)

// Number turns a raw cell value into a float. Strings may use a decimal
// comma ("12,5", "1.234,56") or carry trailing units ("120 m"). Sentinels,
// unparseable text ("2x3", "3/4"), NaN/Inf and unsupported types give nil.
func Number(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return finite(float64(t))
	case int64:
		return finite(float64(t))
	case *float64:
		if t == nil {
			return nil
		}
		return finite(*t)
	case string:
		f, ok := ParseFloatBR(t)
		if !ok {
			return nil
		}
		return finite(f)
	default:
		return nil
	}
}

// ParseFloatBR parses "12,5", "1.234,56", "1 234,5", "10.5" and "120m".
// Text without a comma is parsed as-is first, so already valid numbers
// round-trip unchanged.
func ParseFloatBR(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || IsSentinel(s) {
		return 0, false
	}
	s = spaces.Replace(s)
	// units only as a suffix; anything between digit groups is malformed
	if m := rxUnitSuffix.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	if strings.Contains(s, ",") {
		if strings.Count(s, ",") > 1 {
			return 0, false
		}
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// Km parses a kilometre mark. Besides plain numbers it accepts the road
// notation "123+450" (km 123.450), with an optional "km" prefix and a
// trailing "m".
func Km(v any) *float64 {
	if s, ok := v.(string); ok {
		s = rxKmPrefix.ReplaceAllString(strings.TrimSpace(s), "")
		if m := rxKmPlus.FindStringSubmatch(s); m != nil {
			km, _ := strconv.ParseFloat(m[1], 64)
			mt, _ := strconv.ParseFloat(m[2], 64)
			// "+5" is 5 meters, "+500" is 500 meters
			out := km + mt/1000
			return &out
		}
		return Number(s)
	}
	return Number(v)
}

// Latitude parses a coordinate, converting a decimal comma to a dot, and
// drops values outside [-90, 90].
func Latitude(v any) *float64 { return coordinate(v, 90) }

// Longitude is Latitude for [-180, 180].
func Longitude(v any) *float64 { return coordinate(v, 180) }

func coordinate(v any, limit float64) *float64 {
	var f *float64
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" || IsSentinel(s) {
			return nil
		}
		// coordinates never carry thousand separators
		p, err := strconv.ParseFloat(strings.ReplaceAll(spaces.Replace(s), ",", "."), 64)
		if err != nil {
			return nil
		}
		f = finite(p)
	} else {
		f = Number(v)
	}
	if f == nil || math.Abs(*f) > limit {
		return nil
	}
	return f
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
