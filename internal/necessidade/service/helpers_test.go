package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sinaliza-recon/internal/geo"
	"sinaliza-recon/internal/necessidade/model"
	"sinaliza-recon/internal/store"
)

var (
	testLogger = zerolog.New(io.Discard)
	testNow    = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
)

// memStore is an in-memory ImportStore + DecisionStore.
type memStore struct {
	mu        sync.Mutex
	cadastro  []model.CadastroItem
	nec       map[string]model.Necessidade
	decisions map[string][]model.ReconciliationDecision
	upserts   int
	failOn    map[int]error // upsert call number (1-based) -> error
	cadErr    error
	marked    []string
}

func newMemStore(cad ...model.CadastroItem) *memStore {
	return &memStore{
		cadastro:  cad,
		nec:       make(map[string]model.Necessidade),
		decisions: make(map[string][]model.ReconciliationDecision),
		failOn:    make(map[int]error),
	}
}

func (m *memStore) ListCadastro(_ context.Context, lote, rodovia string, tipo model.AssetType) ([]model.CadastroItem, error) {
	if m.cadErr != nil {
		return nil, m.cadErr
	}
	var out []model.CadastroItem
	for _, c := range m.cadastro {
		if c.Lote == lote && c.Rodovia == rodovia && c.Tipo == tipo {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) MarkSuperseded(_ context.Context, lote, rodovia string, tipo model.AssetType, keep string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, n := range m.nec {
		if n.Lote == lote && n.Rodovia == rodovia && n.Tipo == tipo && n.ImportID != keep {
			n.Substituida = true
			m.nec[id] = n
		}
	}
	m.marked = append(m.marked, keep)
	return nil
}

func (m *memStore) UpsertNecessidades(_ context.Context, batch []model.Necessidade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if err := m.failOn[m.upserts]; err != nil {
		return err
	}
	for _, n := range batch {
		m.nec[n.ID] = n
	}
	return nil
}

func (m *memStore) GetNecessidade(_ context.Context, id string) (model.Necessidade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nec[id]
	if !ok {
		return model.Necessidade{}, store.ErrNotFound
	}
	return n, nil
}

func (m *memStore) ApplyDecision(_ context.Context, n model.Necessidade, d model.ReconciliationDecision, expected int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.nec[n.ID]
	if !ok {
		return store.ErrNotFound
	}
	if cur.Versao != expected {
		return store.ErrVersionConflict
	}
	m.nec[n.ID] = n
	m.decisions[n.ID] = append(m.decisions[n.ID], d)
	return nil
}

func (m *memStore) ListDecisions(_ context.Context, id string) ([]model.ReconciliationDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ReconciliationDecision(nil), m.decisions[id]...), nil
}

// seqIDs returns deterministic ids: prefix-1, prefix-2, ...
func seqIDs(prefix string) func() string {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		i++
		return fmt.Sprintf("%s-%d", prefix, i)
	}
}

// northOf moves a latitude m meters north on the spherical earth.
func northOf(lat, m float64) float64 {
	return lat + m/geo.EarthRadiusM*180/3.141592653589793
}

func f64(f float64) *float64 { return &f }

func fs(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func pointCad(id string, tipo model.AssetType, lat, lon float64, lado string) model.CadastroItem {
	return model.CadastroItem{
		ID: id, Lote: "L1", Rodovia: "BR-101", Tipo: tipo, Lado: lado,
		Location: model.Location{Point: &model.Point{Km: 10, Lat: f64(lat), Lon: f64(lon)}},
	}
}

func segCad(id string, tipo model.AssetType, ini, fim float64, lado string) model.CadastroItem {
	return model.CadastroItem{
		ID: id, Lote: "L1", Rodovia: "BR-101", Tipo: tipo, Lado: lado,
		Location: model.Location{Segment: &model.Segment{KmInicial: ini, KmFinal: fim}},
	}
}

func pointNec(tipo model.AssetType, lat, lon float64, lado string) *model.Necessidade {
	return &model.Necessidade{
		Tipo: tipo, Lado: lado,
		Location: model.Location{Point: &model.Point{Km: 10, Lat: f64(lat), Lon: f64(lon)}},
	}
}

func segNec(tipo model.AssetType, ini, fim float64, lado string) *model.Necessidade {
	return &model.Necessidade{
		Tipo: tipo, Lado: lado,
		Location: model.Location{Segment: &model.Segment{KmInicial: ini, KmFinal: fim}},
	}
}

// cancelAfter reports Canceled once Err has been asked more than n times.
type cancelAfter struct {
	context.Context
	n     int
	calls int
}

func (c *cancelAfter) Err() error {
	c.calls++
	if c.calls > c.n {
		return context.Canceled
	}
	return nil
}
