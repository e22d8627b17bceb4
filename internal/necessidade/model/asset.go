package model

import (
	"fmt"
	"strings"

	"sinaliza-recon/internal/geo"
	"sinaliza-recon/internal/sanitize"
)

// AssetType identifies one of the road-safety asset families.
type AssetType string

const (
	Placas              AssetType = "placas"
	Inscricoes          AssetType = "inscricoes"
	Porticos            AssetType = "porticos"
	MarcasLongitudinais AssetType = "marcas_longitudinais"
	Cilindros           AssetType = "cilindros"
	Defensas            AssetType = "defensas"
	Tachas              AssetType = "tachas"
)

// Geometry separates assets located at a single km from assets spanning
// a km interval.
type Geometry int

const (
	GeometryPoint Geometry = iota
	GeometryLinear
)

func (g Geometry) String() string {
	if g == GeometryLinear {
		return "linear"
	}
	return "ponto"
}

var assetGeometry = map[AssetType]Geometry{
	Placas:              GeometryPoint,
	Inscricoes:          GeometryPoint,
	Porticos:            GeometryPoint,
	MarcasLongitudinais: GeometryLinear,
	Cilindros:           GeometryLinear,
	Defensas:            GeometryLinear,
	Tachas:              GeometryLinear,
}

// AssetTypes lists every known asset type in a stable order.
func AssetTypes() []AssetType {
	return []AssetType{Placas, Inscricoes, Porticos, MarcasLongitudinais, Cilindros, Defensas, Tachas}
}

// ParseAssetType accepts the canonical code or a loose spelling
// ("Marcas Longitudinais", "tacha").
func ParseAssetType(s string) (AssetType, error) {
	f := strings.ReplaceAll(sanitize.Fold(s), " ", "_")
	if _, ok := assetGeometry[AssetType(f)]; ok {
		return AssetType(f), nil
	}
	for _, t := range AssetTypes() {
		if strings.TrimSuffix(string(t), "s") == f {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown asset type %q", s)
}

func (t AssetType) Valid() bool {
	_, ok := assetGeometry[t]
	return ok
}

func (t AssetType) Geometry() Geometry { return assetGeometry[t] }

func (t AssetType) IsLinear() bool { return t.Geometry() == GeometryLinear }

// SidePolicy: markings and guardrails need the exact side, studs accept
// "ambos" on either record, the rest ignore the side.
func (t AssetType) SidePolicy() geo.SidePolicy {
	switch t {
	case MarcasLongitudinais, Inscricoes, Defensas:
		return geo.SideExact
	case Tachas:
		return geo.SideAmbosWildcard
	default:
		return geo.SideIgnored
	}
}

// SideCompatible reports whether two raw side values may refer to the same
// asset of this type.
func (t AssetType) SideCompatible(necSide, cadSide string) bool {
	return geo.SideIsCompatible(t.SidePolicy(), necSide, cadSide)
}
