// Package geo holds the pure geometry used to compare surveyed and planned
// assets: point distance, km-interval overlap and side-of-road rules.
package geo

import (
	"math"

	"github.com/shopspring/decimal"
)

// EarthRadiusM is the mean earth radius used by Distance.
const EarthRadiusM = 6371000.0

// Distance returns the great-circle distance in meters between two points
// (haversine on a spherical earth). NaN inputs propagate.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := lat1 * math.Pi / 180
	p2 := lat2 * math.Pi / 180
	dp := (lat2 - lat1) * math.Pi / 180
	dl := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dp/2)*math.Sin(dp/2) +
		math.Cos(p1)*math.Cos(p2)*math.Sin(dl/2)*math.Sin(dl/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusM * c
}

// Overlap returns the shared length (km) of the necessidade interval and the
// cadastro interval, and that length as a percentage of the necessidade's own
// length rounded to one decimal. Intervals given end-first are reordered.
// A zero-length necessidade yields 0%.
func Overlap(necStart, necEnd, cadStart, cadEnd float64) (float64, float64) {
	if necEnd < necStart {
		necStart, necEnd = necEnd, necStart
	}
	if cadEnd < cadStart {
		cadStart, cadEnd = cadEnd, cadStart
	}
	ov := math.Max(0, math.Min(necEnd, cadEnd)-math.Max(necStart, cadStart))

	necLen := necEnd - necStart
	if necLen <= 0 {
		return ov, 0
	}
	pct, _ := decimal.NewFromFloat(ov / necLen * 100).Round(1).Float64()
	return ov, pct
}
