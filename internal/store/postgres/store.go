// Package postgres is the record store backed by pgx v5. Batches are sent as
// one pgx.Batch inside a transaction, so a batch lands completely or not at all.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sinaliza-recon/internal/necessidade/model"
	"sinaliza-recon/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

// Open creates the pool and applies the schema. The returned close function
// releases the pool.
func Open(ctx context.Context, dsn string) (*Store, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return s, pool.Close, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range Schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate: %w", pgDetail(err))
		}
	}
	return nil
}

func (s *Store) ListCadastro(ctx context.Context, lote, rodovia string, tipo model.AssetType) ([]model.CadastroItem, error) {
	q := store.SelectSQL(store.TableCadastro, store.CadastroColumns, "WHERE lote = $1 AND rodovia = $2 AND tipo = $3 ORDER BY id")
	rows, err := s.pool.Query(ctx, q, lote, rodovia, string(tipo))
	if err != nil {
		return nil, fmt.Errorf("postgres: list cadastro: %w", err)
	}
	defer rows.Close()

	var out []model.CadastroItem
	for rows.Next() {
		c, err := store.ScanCadastro(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan cadastro: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpsertCadastro(ctx context.Context, items []model.CadastroItem) error {
	q := store.InsertSQL(store.TableCadastro, store.CadastroColumns, "id", store.Dollar)
	return s.sendBatch(ctx, q, len(items), func(i int) ([]any, error) { return store.CadastroArgs(items[i]) })
}

func (s *Store) MarkSuperseded(ctx context.Context, lote, rodovia string, tipo model.AssetType, keepImportID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE necessidades SET substituida = true WHERE lote = $1 AND rodovia = $2 AND tipo = $3 AND import_id <> $4`,
		lote, rodovia, string(tipo), keepImportID)
	if err != nil {
		return fmt.Errorf("postgres: mark superseded: %w", pgDetail(err))
	}
	return nil
}

func (s *Store) UpsertNecessidades(ctx context.Context, batch []model.Necessidade) error {
	q := store.InsertSQL(store.TableNecessidades, store.NecessidadeColumns, "id", store.Dollar)
	return s.sendBatch(ctx, q, len(batch), func(i int) ([]any, error) { return store.NecessidadeArgs(batch[i]) })
}

func (s *Store) GetNecessidade(ctx context.Context, id string) (model.Necessidade, error) {
	q := store.SelectSQL(store.TableNecessidades, store.NecessidadeColumns, "WHERE id = $1")
	n, err := store.ScanNecessidade(s.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return n, store.ErrNotFound
	}
	if err != nil {
		return n, fmt.Errorf("postgres: get necessidade: %w", err)
	}
	return n, nil
}

// ApplyDecision is an optimistic update: the row changes only while its
// versao still equals expectedVersion.
func (s *Store) ApplyDecision(ctx context.Context, n model.Necessidade, d model.ReconciliationDecision, expectedVersion int) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE necessidades
			    SET servico_final = $1, reconciliado = $2, status_reconciliacao = $3, versao = $4
			  WHERE id = $5 AND versao = $6`,
			string(n.ServicoFinal), n.Reconciliado, string(n.StatusReconciliacao), n.Versao, n.ID, expectedVersion)
		if err != nil {
			return fmt.Errorf("postgres: update necessidade: %w", pgDetail(err))
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM necessidades WHERE id = $1)`, n.ID).Scan(&exists); err != nil {
				return fmt.Errorf("postgres: check necessidade: %w", err)
			}
			if !exists {
				return store.ErrNotFound
			}
			return store.ErrVersionConflict
		}
		q := store.InsertSQL(store.TableDecisoes, store.DecisionColumns, "", store.Dollar)
		if _, err := tx.Exec(ctx, q, store.DecisionArgs(d)...); err != nil {
			return fmt.Errorf("postgres: insert decision: %w", pgDetail(err))
		}
		return nil
	})
}

func (s *Store) ListDecisions(ctx context.Context, necessidadeID string) ([]model.ReconciliationDecision, error) {
	q := store.SelectSQL(store.TableDecisoes, store.DecisionColumns, "WHERE necessidade_id = $1 ORDER BY criado_em, id")
	rows, err := s.pool.Query(ctx, q, necessidadeID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list decisions: %w", err)
	}
	defer rows.Close()

	var out []model.ReconciliationDecision
	for rows.Next() {
		d, err := store.ScanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan decision: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// sendBatch queues q once per row and sends everything in one round trip
// inside a transaction.
func (s *Store) sendBatch(ctx context.Context, q string, n int, args func(i int) ([]any, error)) error {
	if n == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for i := 0; i < n; i++ {
		a, err := args(i)
		if err != nil {
			return err
		}
		b.Queue(q, a...)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, b)
		for i := 0; i < n; i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("postgres: row %d: %w", i, pgDetail(err))
			}
		}
		return br.Close()
	})
}

// pgDetail folds the server-side detail into the error text.
func pgDetail(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w (%s, %s)", err, pgErr.Detail, pgErr.SQLState())
	}
	return err
}
