package sqlite

var schema = []string{
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
		km                REAL,
		latitude          REAL,
		longitude         REAL,
		km_inicial        REAL,
		km_final          REAL,
		latitude_inicial  REAL,
		longitude_inicial REAL,
		latitude_final    REAL,
		longitude_final   REAL,
		data_vistoria     TIMESTAMP,
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
		km                     REAL,
		latitude               REAL,
		longitude              REAL,
		km_inicial             REAL,
		km_final               REAL,
		latitude_inicial       REAL,
		longitude_inicial      REAL,
		latitude_final         REAL,
		longitude_final        REAL,
		quantidade             REAL,
		extensao_metros        REAL,
		solucao_planilha       TEXT NOT NULL DEFAULT '',
		servico                TEXT NOT NULL DEFAULT '',
		servico_inferido       TEXT NOT NULL,
		servico_final          TEXT NOT NULL,
		cadastro_id            TEXT,
		distancia_match_metros REAL,
		overlap_porcentagem    REAL,
		match_kind             TEXT NOT NULL DEFAULT '',
		status_reconciliacao   TEXT NOT NULL,
		motivo_revisao         TEXT NOT NULL DEFAULT '',
		reconciliado           INTEGER NOT NULL DEFAULT 0,
		conflitos              TEXT NOT NULL DEFAULT '[]',
		substituida            INTEGER NOT NULL DEFAULT 0,
		versao                 INTEGER NOT NULL DEFAULT 1,
		criado_em              TIMESTAMP NOT NULL
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
		criado_em      TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS decisoes_necessidade ON decisoes (necessidade_id, criado_em)`,
}
