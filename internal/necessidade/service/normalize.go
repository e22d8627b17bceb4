package service

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"sinaliza-recon/internal/geo"
	"sinaliza-recon/internal/necessidade/model"
	"sinaliza-recon/internal/sanitize"
)

var rxCodeSep = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// normalizeCode folds an asset code so spelling variants collide:
// "R-19", "r 19" and "R19" all give "R19".
func normalizeCode(s string) string {
	s = sanitize.Fold(s)
	s = rxCodeSep.ReplaceAllString(s, "")
	return strings.ToUpper(s)
}

// kmKey renders a km mark with three decimals (meter precision).
func kmKey(km float64) string {
	return decimal.NewFromFloat(km).StringFixed(3)
}

// ConflictKey identifies "the same asset position" for conflict detection:
// km (plus km_final for linear assets), code-or-type and canonical side.
func ConflictKey(n *model.Necessidade) string {
	var loc string
	switch {
	case n.Segment != nil:
		loc = kmKey(n.Segment.KmInicial) + "-" + kmKey(n.Segment.KmFinal)
	case n.Point != nil:
		loc = kmKey(n.Point.Km)
	}
	return strings.Join([]string{
		string(n.Tipo),
		loc,
		normalizeCode(n.Identity.Key()),
		geo.SideKey(n.Lado),
	}, "|")
}
