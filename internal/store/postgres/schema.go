package postgres

// Schema is applied by Migrate. Statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS cadastro (
		id                TEXT PRIMARY KEY,
		lote              TEXT NOT NULL,
		rodovia           TEXT NOT NULL,
		tipo              TEXT NOT NULL,
		codigo            TEXT NOT NULL DEFAULT '',
		tipo_ativo        TEXT NOT NULL DEFAULT '',
		cor               TEXT NOT NULL DEFAULT '',
		material          TEXT NOT NULL DEFAULT '',
		lado              TEXT NOT NULL DEFAULT '',
		km                DOUBLE PRECISION,
		latitude          DOUBLE PRECISION,
		longitude         DOUBLE PRECISION,
		km_inicial        DOUBLE PRECISION,
		km_final          DOUBLE PRECISION,
		latitude_inicial  DOUBLE PRECISION,
		longitude_inicial DOUBLE PRECISION,
		latitude_final    DOUBLE PRECISION,
		longitude_final   DOUBLE PRECISION,
		data_vistoria     TIMESTAMPTZ,
		fotos             TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS cadastro_scope ON cadastro (lote, rodovia, tipo)`,
	`CREATE TABLE IF NOT EXISTS necessidades (
		id                     TEXT PRIMARY KEY,
		import_id              TEXT NOT NULL,
		linha                  INTEGER NOT NULL,
		lote                   TEXT NOT NULL,
		rodovia                TEXT NOT NULL,
		tipo                   TEXT NOT NULL,
		codigo                 TEXT NOT NULL DEFAULT '',
		tipo_ativo             TEXT NOT NULL DEFAULT '',
		cor                    TEXT NOT NULL DEFAULT '',
		material               TEXT NOT NULL DEFAULT '',
		lado                   TEXT NOT NULL DEFAULT '',
		km                     DOUBLE PRECISION,
		latitude               DOUBLE PRECISION,
		longitude              DOUBLE PRECISION,
		km_inicial             DOUBLE PRECISION,
		km_final               DOUBLE PRECISION,
		latitude_inicial       DOUBLE PRECISION,
		longitude_inicial      DOUBLE PRECISION,
		latitude_final         DOUBLE PRECISION,
		longitude_final        DOUBLE PRECISION,
		quantidade             DOUBLE PRECISION,
		extensao_metros        DOUBLE PRECISION,
		solucao_planilha       TEXT NOT NULL DEFAULT '',
		servico                TEXT NOT NULL DEFAULT '',
		servico_inferido       TEXT NOT NULL,
		servico_final          TEXT NOT NULL,
		cadastro_id            TEXT,
		distancia_match_metros DOUBLE PRECISION,
		overlap_porcentagem    DOUBLE PRECISION,
		match_kind             TEXT NOT NULL DEFAULT '',
		status_reconciliacao   TEXT NOT NULL,
		motivo_revisao         TEXT NOT NULL DEFAULT '',
		reconciliado           BOOLEAN NOT NULL DEFAULT false,
		conflitos              TEXT NOT NULL DEFAULT '[]',
		substituida            BOOLEAN NOT NULL DEFAULT false,
		versao                 INTEGER NOT NULL DEFAULT 1,
		criado_em              TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS necessidades_scope ON necessidades (lote, rodovia, tipo, import_id)`,
	`CREATE TABLE IF NOT EXISTS decisoes (
		id             TEXT PRIMARY KEY,
		necessidade_id TEXT NOT NULL REFERENCES necessidades (id),
		actor_id       TEXT NOT NULL,
		role           TEXT NOT NULL,
		outcome        TEXT NOT NULL,
		justificativa  TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL,
		servico_final  TEXT NOT NULL,
		criado_em      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS decisoes_necessidade ON decisoes (necessidade_id, criado_em)`,
}
