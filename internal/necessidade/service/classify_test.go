package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinaliza-recon/internal/necessidade/model"
)

func TestClassifyRules(t *testing.T) {
	exato := model.Match{CadastroID: "c1", Score: 97, Kind: model.Exato}
	alto := model.Match{CadastroID: "c2", Score: 82, Kind: model.Alto}
	parcial := model.Match{CadastroID: "c3", Score: 60, Kind: model.Parcial}
	perto := model.Match{CadastroID: "c4", Score: 12.3, Kind: model.Proximidade}

	tests := []struct {
		name    string
		n       *model.Necessidade
		matches []model.Match
		servico model.Service
		status  model.Status
		motivo  string
	}{
		{"no match", segNec(model.Defensas, 0, 1, ""), nil, model.Implantar, model.SemMatch, ""},
		{"no match beats removal signal", &model.Necessidade{Tipo: model.Placas, Quantidade: f64(0)}, nil, model.Implantar, model.SemMatch, ""},
		{"zero quantity", &model.Necessidade{Tipo: model.Placas, Quantidade: f64(0)}, []model.Match{perto}, model.Remover, model.Aprovado, ""},
		{"zero length over exact match", &model.Necessidade{Tipo: model.Defensas, ExtensaoMetros: f64(0)}, []model.Match{exato}, model.Remover, model.Aprovado, ""},
		{"removal wording over partial", &model.Necessidade{Tipo: model.Defensas, SolucaoPlanilha: "Remoção"}, []model.Match{parcial}, model.Remover, model.Aprovado, ""},
		{"desativar", &model.Necessidade{Tipo: model.Tachas, SolucaoPlanilha: "DESATIVAR"}, []model.Match{alto}, model.Remover, model.Aprovado, ""},
		{"partial", &model.Necessidade{Tipo: model.Defensas}, []model.Match{parcial}, model.Substituir, model.PendenteAprovacao, "sobreposição parcial de 60% com o cadastro"},
		{"high", &model.Necessidade{Tipo: model.Defensas, ExtensaoMetros: f64(820)}, []model.Match{alto, parcial}, model.Substituir, model.Aprovado, ""},
		{"exact", &model.Necessidade{Tipo: model.Defensas}, []model.Match{exato}, model.Substituir, model.Aprovado, ""},
		{"point", &model.Necessidade{Tipo: model.Placas, Quantidade: f64(2)}, []model.Match{perto}, model.Substituir, model.Aprovado, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.n, tt.matches)
			assert.Equal(t, tt.servico, c.Servico)
			assert.Equal(t, tt.status, c.Status())
			assert.Equal(t, tt.motivo, c.Motivo)
			if len(tt.matches) > 0 {
				require.NotNil(t, c.Match)
				assert.Equal(t, tt.matches[0].CadastroID, c.Match.CadastroID)
			} else {
				assert.Nil(t, c.Match)
			}
		})
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	n := &model.Necessidade{Tipo: model.Defensas, SolucaoPlanilha: "substituir"}
	ms := []model.Match{{CadastroID: "c", Score: 55.5, Kind: model.Parcial}}
	a := Classify(n, ms)
	b := Classify(n, ms)
	assert.Equal(t, a.Servico, b.Servico)
	assert.Equal(t, a.Status(), b.Status())
	assert.Contains(t, a.Motivo, "55.5%")
}

func TestApply(t *testing.T) {
	n := segNec(model.Defensas, 10, 11, "LD")
	Apply(n, Classify(n, []model.Match{{CadastroID: "c9", Score: 60, Kind: model.Parcial}}))
	require.NotNil(t, n.CadastroID)
	assert.Equal(t, "c9", *n.CadastroID)
	require.NotNil(t, n.OverlapPorcentagem)
	assert.Equal(t, 60.0, *n.OverlapPorcentagem)
	assert.Equal(t, model.Substituir, n.ServicoInferido)
	assert.Equal(t, model.Substituir, n.ServicoFinal)
	assert.Equal(t, model.PendenteAprovacao, n.StatusReconciliacao)
	assert.Contains(t, n.MotivoRevisao, "60%")
	assert.False(t, n.Reconciliado)
	assert.True(t, n.ServicoFinal.Valid())
}
