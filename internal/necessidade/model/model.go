package model

import "time"

// Service is the work implied for an asset.
type Service string

const (
	Implantar  Service = "Implantar"
	Substituir Service = "Substituir"
	Remover    Service = "Remover"
	Manter     Service = "Manter"
)

func (s Service) Valid() bool {
	switch s {
	case Implantar, Substituir, Remover, Manter:
		return true
	}
	return false
}

// Status is the reconciliation state shown as a badge.
type Status string

const (
	SemMatch          Status = "sem_match"
	PendenteAprovacao Status = "pendente_aprovacao"
	Aprovado          Status = "aprovado"
	Rejeitado         Status = "rejeitado"
)

// MatchKind grades a match. Linear assets get exato/alto/parcial by overlap,
// point assets get proximidade.
type MatchKind string

const (
	Exato       MatchKind = "exato"
	Alto        MatchKind = "alto"
	Parcial     MatchKind = "parcial"
	Proximidade MatchKind = "proximidade"
)

// Point locates a point asset.
type Point struct {
	Km  float64  `json:"km"`
	Lat *float64 `json:"latitude,omitempty"`
	Lon *float64 `json:"longitude,omitempty"`
}

// Segment locates a linear asset.
type Segment struct {
	KmInicial  float64  `json:"km_inicial"`
	KmFinal    float64  `json:"km_final"`
	LatInicial *float64 `json:"latitude_inicial,omitempty"`
	LonInicial *float64 `json:"longitude_inicial,omitempty"`
	LatFinal   *float64 `json:"latitude_final,omitempty"`
	LonFinal   *float64 `json:"longitude_final,omitempty"`
}

// Location holds exactly one of Point or Segment, chosen by the asset
// type's geometry.
type Location struct {
	Point   *Point   `json:"ponto,omitempty"`
	Segment *Segment `json:"segmento,omitempty"`
}

// Fits reports whether the location carries the variant g requires.
func (l Location) Fits(g Geometry) bool {
	if g == GeometryLinear {
		return l.Segment != nil && l.Point == nil
	}
	return l.Point != nil && l.Segment == nil
}

// Identity is the descriptive part of an asset. Which fields are filled
// depends on the asset type.
type Identity struct {
	Codigo   string `json:"codigo,omitempty"`
	Tipo     string `json:"tipo_ativo,omitempty"`
	Cor      string `json:"cor,omitempty"`
	Material string `json:"material,omitempty"`
}

// Key is the code when present, otherwise the type.
func (i Identity) Key() string {
	if i.Codigo != "" {
		return i.Codigo
	}
	return i.Tipo
}

// CadastroItem is a field-surveyed asset.
type CadastroItem struct {
	ID           string     `json:"id"`
	Lote         string     `json:"lote"`
	Rodovia      string     `json:"rodovia"`
	Tipo         AssetType  `json:"tipo"`
	Identity
	Location
	Lado         string     `json:"lado,omitempty"`
	DataVistoria *time.Time `json:"data_vistoria,omitempty"`
	Fotos        []string   `json:"fotos,omitempty"`
}

// Necessidade is a planned action read from a project spreadsheet.
type Necessidade struct {
	ID       string    `json:"id"`
	ImportID string    `json:"import_id"`
	Linha    int       `json:"linha_planilha"`
	Lote     string    `json:"lote"`
	Rodovia  string    `json:"rodovia"`
	Tipo     AssetType `json:"tipo"`
	Identity
	Location
	Lado           string   `json:"lado,omitempty"`
	Quantidade     *float64 `json:"quantidade,omitempty"`
	ExtensaoMetros *float64 `json:"extensao_metros,omitempty"`

	SolucaoPlanilha string  `json:"solucao_planilha,omitempty"`
	Servico         Service `json:"servico,omitempty"`
	ServicoInferido Service `json:"servico_inferido"`
	ServicoFinal    Service `json:"servico_final"`

	CadastroID           *string   `json:"cadastro_id"`
	DistanciaMatchMetros *float64  `json:"distancia_match_metros,omitempty"`
	OverlapPorcentagem   *float64  `json:"overlap_porcentagem,omitempty"`
	MatchKind            MatchKind `json:"match_kind,omitempty"`

	StatusReconciliacao Status `json:"status_reconciliacao"`
	MotivoRevisao       string `json:"motivo_revisao,omitempty"`
	Reconciliado        bool   `json:"reconciliado"`

	Conflitos []ConflictAnnotation `json:"conflitos,omitempty"`

	Substituida bool      `json:"substituida"`
	Versao      int       `json:"versao"`
	CriadoEm    time.Time `json:"criado_em"`
}

// Match is one candidate correspondence between a Necessidade and a
// CadastroItem. Score is meters for point assets and overlap percent for
// linear assets.
type Match struct {
	CadastroID string    `json:"cadastro_id"`
	Score      float64   `json:"score"`
	Kind       MatchKind `json:"kind"`
}

// ApplyMatch records m (or its absence) on n, keeping cadastro_id and the
// score field in step.
func (n *Necessidade) ApplyMatch(m *Match) {
	n.CadastroID, n.DistanciaMatchMetros, n.OverlapPorcentagem, n.MatchKind = nil, nil, nil, ""
	if m == nil {
		return
	}
	id, score := m.CadastroID, m.Score
	n.CadastroID = &id
	n.MatchKind = m.Kind
	if n.Tipo.IsLinear() {
		n.OverlapPorcentagem = &score
	} else {
		n.DistanciaMatchMetros = &score
	}
}

// HasConflict reports whether any conflict annotation is attached.
func (n *Necessidade) HasConflict() bool { return len(n.Conflitos) > 0 }

// ConflictKind tags a conflict annotation.
type ConflictKind string

const (
	ServicoContraditorio ConflictKind = "SERVICO_CONTRADICTORIO"
	DuplicataProjeto     ConflictKind = "DUPLICATA_PROJETO"
)

type Severity string

const (
	Critica  Severity = "critica"
	Moderada Severity = "moderada"
)

// ConflictAnnotation is informational; it never blocks persistence.
type ConflictAnnotation struct {
	Tipo               ConflictKind `json:"tipo"`
	Severidade         Severity     `json:"severidade"`
	LinhaConflitante   int          `json:"linha_conflitante"`
	ServicoAtual       Service      `json:"servico_atual"`
	ServicoConflitante Service      `json:"servico_conflitante"`
}
