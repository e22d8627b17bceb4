package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sinaliza-recon/internal/necessidade/model"
)

// Table names shared by both dialects.
const (
	TableCadastro     = "cadastro"
	TableNecessidades = "necessidades"
	TableDecisoes     = "decisoes"
)

// Scanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Placeholder renders the i-th (1-based) bind parameter of a dialect.
type Placeholder func(i int) string

// Dollar is the Postgres placeholder style.
func Dollar(i int) string { return fmt.Sprintf("$%d", i) }

// Question is the SQLite placeholder style.
func Question(int) string { return "?" }

// InsertSQL builds "INSERT INTO table (cols) VALUES (...)". With key set it
// becomes an upsert that overwrites every other column.
func InsertSQL(table string, cols []string, key string, ph Placeholder) string {
	vals := make([]string, len(cols))
	for i := range cols {
		vals[i] = ph(i + 1)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(vals, ", "))
	if key == "" {
		return q
	}
	var updates []string
	for _, c := range cols {
		if c == key {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	return q + fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", key, strings.Join(updates, ", "))
}

// SelectSQL builds "SELECT cols FROM table" followed by the given tail.
func SelectSQL(table string, cols []string, tail string) string {
	return fmt.Sprintf("SELECT %s FROM %s %s", strings.Join(cols, ", "), table, tail)
}

// Time scans timestamps from either driver: pgx hands over time.Time,
// modernc/sqlite hands over time.Time or text depending on the column type.
type Time struct {
	T     time.Time
	Valid bool
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Time{}
		return nil
	case time.Time:
		*t = Time{T: v.UTC(), Valid: true}
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}
	return fmt.Errorf("store: cannot scan %T into time", src)
}

func (t *Time) parse(s string) error {
	s = strings.TrimSpace(s)
	// time.Time.String() output carries a monotonic suffix
	if i := strings.Index(s, " m="); i > 0 {
		s = s[:i]
	}
	for _, l := range timeLayouts {
		if p, err := time.Parse(l, s); err == nil {
			*t = Time{T: p.UTC(), Valid: true}
			return nil
		}
	}
	return fmt.Errorf("store: unrecognized time %q", s)
}

func (t Time) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.T
	return &v
}

// CadastroColumns is the column order used by CadastroArgs and ScanCadastro.
var CadastroColumns = []string{
	"id", "lote", "rodovia", "tipo",
	"codigo", "tipo_ativo", "cor", "material", "lado",
	"km", "latitude", "longitude",
	"km_inicial", "km_final", "latitude_inicial", "longitude_inicial", "latitude_final", "longitude_final",
	"data_vistoria", "fotos",
}

type locationCols struct {
	km, lat, lon                                 *float64
	kmIni, kmFim, latIni, lonIni, latFim, lonFim *float64
}

func splitLocation(l model.Location) locationCols {
	var c locationCols
	if p := l.Point; p != nil {
		km := p.Km
		c.km, c.lat, c.lon = &km, p.Lat, p.Lon
	}
	if s := l.Segment; s != nil {
		ini, fim := s.KmInicial, s.KmFinal
		c.kmIni, c.kmFim = &ini, &fim
		c.latIni, c.lonIni, c.latFim, c.lonFim = s.LatInicial, s.LonInicial, s.LatFinal, s.LonFinal
	}
	return c
}

func (c locationCols) join() model.Location {
	switch {
	case c.kmIni != nil && c.kmFim != nil:
		return model.Location{Segment: &model.Segment{
			KmInicial: *c.kmIni, KmFinal: *c.kmFim,
			LatInicial: c.latIni, LonInicial: c.lonIni, LatFinal: c.latFim, LonFinal: c.lonFim,
		}}
	case c.km != nil:
		return model.Location{Point: &model.Point{Km: *c.km, Lat: c.lat, Lon: c.lon}}
	}
	return model.Location{}
}

func (c *locationCols) dest() []any {
	return []any{&c.km, &c.lat, &c.lon, &c.kmIni, &c.kmFim, &c.latIni, &c.lonIni, &c.latFim, &c.lonFim}
}

func (c locationCols) args() []any {
	return []any{c.km, c.lat, c.lon, c.kmIni, c.kmFim, c.latIni, c.lonIni, c.latFim, c.lonFim}
}

func CadastroArgs(c model.CadastroItem) ([]any, error) {
	fotos, err := json.Marshal(c.Fotos)
	if err != nil {
		return nil, fmt.Errorf("encode fotos: %w", err)
	}
	var vistoria any
	if c.DataVistoria != nil {
		vistoria = c.DataVistoria.UTC()
	}
	args := []any{c.ID, c.Lote, c.Rodovia, string(c.Tipo),
		c.Codigo, c.Identity.Tipo, c.Cor, c.Material, c.Lado}
	args = append(args, splitLocation(c.Location).args()...)
	return append(args, vistoria, string(fotos)), nil
}

func ScanCadastro(row Scanner) (model.CadastroItem, error) {
	var (
		c        model.CadastroItem
		tipo     string
		loc      locationCols
		vistoria Time
		fotos    string
	)
	dest := []any{&c.ID, &c.Lote, &c.Rodovia, &tipo,
		&c.Codigo, &c.Identity.Tipo, &c.Cor, &c.Material, &c.Lado}
	dest = append(dest, loc.dest()...)
	dest = append(dest, &vistoria, &fotos)
	if err := row.Scan(dest...); err != nil {
		return c, err
	}
	c.Tipo = model.AssetType(tipo)
	c.Location = loc.join()
	c.DataVistoria = vistoria.Ptr()
	if fotos != "" && fotos != "null" {
		if err := json.Unmarshal([]byte(fotos), &c.Fotos); err != nil {
			return c, fmt.Errorf("decode fotos of %s: %w", c.ID, err)
		}
	}
	return c, nil
}

// NecessidadeColumns is the column order used by NecessidadeArgs and
// ScanNecessidade.
var NecessidadeColumns = []string{
	"id", "import_id", "linha", "lote", "rodovia", "tipo",
	"codigo", "tipo_ativo", "cor", "material", "lado",
	"km", "latitude", "longitude",
	"km_inicial", "km_final", "latitude_inicial", "longitude_inicial", "latitude_final", "longitude_final",
	"quantidade", "extensao_metros", "solucao_planilha",
	"servico", "servico_inferido", "servico_final",
	"cadastro_id", "distancia_match_metros", "overlap_porcentagem", "match_kind",
	"status_reconciliacao", "motivo_revisao", "reconciliado",
	"conflitos", "substituida", "versao", "criado_em",
}

func NecessidadeArgs(n model.Necessidade) ([]any, error) {
	conflitos := "[]"
	if len(n.Conflitos) > 0 {
		b, err := json.Marshal(n.Conflitos)
		if err != nil {
			return nil, fmt.Errorf("encode conflitos: %w", err)
		}
		conflitos = string(b)
	}
	args := []any{n.ID, n.ImportID, n.Linha, n.Lote, n.Rodovia, string(n.Tipo),
		n.Codigo, n.Identity.Tipo, n.Cor, n.Material, n.Lado}
	args = append(args, splitLocation(n.Location).args()...)
	return append(args,
		n.Quantidade, n.ExtensaoMetros, n.SolucaoPlanilha,
		string(n.Servico), string(n.ServicoInferido), string(n.ServicoFinal),
		n.CadastroID, n.DistanciaMatchMetros, n.OverlapPorcentagem, string(n.MatchKind),
		string(n.StatusReconciliacao), n.MotivoRevisao, n.Reconciliado,
		conflitos, n.Substituida, n.Versao, n.CriadoEm.UTC(),
	), nil
}

func ScanNecessidade(row Scanner) (model.Necessidade, error) {
	var (
		n                       model.Necessidade
		tipo, servico, inferido string
		final, kind, status     string
		loc                     locationCols
		conflitos               string
		criado                  Time
	)
	dest := []any{&n.ID, &n.ImportID, &n.Linha, &n.Lote, &n.Rodovia, &tipo,
		&n.Codigo, &n.Identity.Tipo, &n.Cor, &n.Material, &n.Lado}
	dest = append(dest, loc.dest()...)
	dest = append(dest,
		&n.Quantidade, &n.ExtensaoMetros, &n.SolucaoPlanilha,
		&servico, &inferido, &final,
		&n.CadastroID, &n.DistanciaMatchMetros, &n.OverlapPorcentagem, &kind,
		&status, &n.MotivoRevisao, &n.Reconciliado,
		&conflitos, &n.Substituida, &n.Versao, &criado,
	)
	if err := row.Scan(dest...); err != nil {
		return n, err
	}
	n.Tipo = model.AssetType(tipo)
	n.Location = loc.join()
	n.Servico, n.ServicoInferido, n.ServicoFinal = model.Service(servico), model.Service(inferido), model.Service(final)
	n.MatchKind = model.MatchKind(kind)
	n.StatusReconciliacao = model.Status(status)
	n.CriadoEm = criado.T
	if conflitos != "" && conflitos != "[]" && conflitos != "null" {
		if err := json.Unmarshal([]byte(conflitos), &n.Conflitos); err != nil {
			return n, fmt.Errorf("decode conflitos of %s: %w", n.ID, err)
		}
	}
	return n, nil
}

// DecisionColumns is the column order used by DecisionArgs and ScanDecision.
var DecisionColumns = []string{
	"id", "necessidade_id", "actor_id", "role", "outcome", "justificativa", "status", "servico_final", "criado_em",
}

func DecisionArgs(d model.ReconciliationDecision) []any {
	return []any{d.ID, d.NecessidadeID, d.ActorID, string(d.Role), string(d.Outcome),
		d.Justificativa, string(d.Status), string(d.ServicoFinal), d.CriadoEm.UTC()}
}

func ScanDecision(row Scanner) (model.ReconciliationDecision, error) {
	var (
		d                              model.ReconciliationDecision
		role, outcome, status, servico string
		criado                         Time
	)
	if err := row.Scan(&d.ID, &d.NecessidadeID, &d.ActorID, &role, &outcome,
		&d.Justificativa, &status, &servico, &criado); err != nil {
		return d, err
	}
	d.Role, d.Outcome = model.Role(role), model.Outcome(outcome)
	d.Status, d.ServicoFinal = model.Status(status), model.Service(servico)
	d.CriadoEm = criado.T
	return d, nil
}
