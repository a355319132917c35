package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/port"
)

const movementSelect = `
	SELECT m.id, m.product_id, p.nome, m.quantity, m.type, m.observacao,
	       COALESCE(m.user_id::text, ''), m.created_at
	FROM movimentacoes m
	JOIN produtos p ON p.id = m.product_id`

func scanMovement(row rowScanner) (*domain.Movement, error) {
	var m domain.Movement
	if err := row.Scan(
		&m.ID, &m.ProductID, &m.ProductNome, &m.Quantity, &m.Type,
		&m.Observacao, &m.UserID, &m.Timestamp,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMovements returns every movement, newest first.
func (s *PostgresStore) ListMovements(ctx context.Context) ([]domain.Movement, error) {
	rows, err := s.db.QueryContext(ctx, movementSelect+` ORDER BY m.created_at DESC`)
	if err != nil {
		return nil, mapError("list movements", err)
	}
	defer rows.Close()

	var movements []domain.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movements = append(movements, *m)
	}
	return movements, rows.Err()
}

// GetMovement returns a movement by ID.
func (s *PostgresStore) GetMovement(ctx context.Context, id string) (*domain.Movement, error) {
	m, err := scanMovement(s.db.QueryRowContext(ctx, movementSelect+` WHERE m.id = $1`, id))
	if err != nil {
		return nil, mapError("get movement", err)
	}
	return m, nil
}

// CreateMovement records a movement and applies its delta to the product.
func (s *PostgresStore) CreateMovement(ctx context.Context, m *domain.Movement) (*domain.Movement, error) {
	var id string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := applyDeltas(ctx, tx, movementDeltas(nil, m)); err != nil {
			return err
		}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO movimentacoes (product_id, quantity, type, observacao, user_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			m.ProductID, m.Quantity, string(m.Type), m.Observacao, nullable(m.UserID),
		).Scan(&id)
		return mapError("create movement", err)
	})
	if err != nil {
		return nil, err
	}
	return s.GetMovement(ctx, id)
}

// UpdateMovement swaps the stored movement's delta for the new one and
// rewrites the row, all in one transaction.
func (s *PostgresStore) UpdateMovement(ctx context.Context, id string, m *domain.Movement) (*domain.Movement, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		old, err := lockMovement(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := applyDeltas(ctx, tx, movementDeltas(old, m)); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE movimentacoes SET product_id = $1, quantity = $2, type = $3, observacao = $4
			WHERE id = $5`,
			m.ProductID, m.Quantity, string(m.Type), m.Observacao, id,
		)
		return mapError("update movement", err)
	})
	if err != nil {
		return nil, err
	}
	return s.GetMovement(ctx, id)
}

// DeleteMovement removes a movement and reverts its delta on the product.
func (s *PostgresStore) DeleteMovement(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		old, err := lockMovement(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := applyDeltas(ctx, tx, movementDeltas(old, nil)); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM movimentacoes WHERE id = $1`, id)
		return mapError("delete movement", err)
	})
}

func lockMovement(ctx context.Context, tx *sql.Tx, id string) (*domain.Movement, error) {
	var m domain.Movement
	err := tx.QueryRowContext(ctx,
		`SELECT id, product_id, quantity, type FROM movimentacoes WHERE id = $1 FOR UPDATE`, id,
	).Scan(&m.ID, &m.ProductID, &m.Quantity, &m.Type)
	if err != nil {
		return nil, mapError("lock movement", err)
	}
	return &m, nil
}

// movementDeltas returns the net quantity change per product that replaces
// old with next. Either may be nil: nil old is a new movement, nil next a
// deleted one. Products whose net change is zero are left out.
func movementDeltas(old, next *domain.Movement) map[string]int {
	deltas := make(map[string]int, 2)
	if old != nil {
		deltas[old.ProductID] -= old.Type.Delta(old.Quantity)
	}
	if next != nil {
		deltas[next.ProductID] += next.Type.Delta(next.Quantity)
	}
	for id, d := range deltas {
		if d == 0 {
			delete(deltas, id)
		}
	}
	return deltas
}

// stockAfter applies delta to current, refusing to go below zero.
func stockAfter(current, delta int) (int, error) {
	next := current + delta
	if next < 0 {
		v := port.NewValidationError()
		v.Add("quantity", fmt.Sprintf("estoque insuficiente: disponível %d", current))
		return current, v
	}
	return next, nil
}

// applyDeltas locks and updates each product in ID order so concurrent
// movements never deadlock on each other.
func applyDeltas(ctx context.Context, tx *sql.Tx, deltas map[string]int) error {
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := applyDelta(ctx, tx, id, deltas[id]); err != nil {
			return err
		}
	}
	return nil
}

// applyDelta changes a product's quantity under a row lock and refuses to let
// it go negative.
func applyDelta(ctx context.Context, tx *sql.Tx, productID string, delta int) error {
	var current int
	err := tx.QueryRowContext(ctx,
		`SELECT quantidade FROM produtos WHERE id = $1 FOR UPDATE`, productID,
	).Scan(&current)
	if err != nil {
		mapped := mapError("lock product", err)
		if errors.Is(mapped, port.ErrNotFound) {
			v := port.NewValidationError()
			v.Add("product_id", "produto não encontrado")
			return v
		}
		return mapped
	}

	next, err := stockAfter(current, delta)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE produtos SET quantidade = $1 WHERE id = $2`, next, productID)
	return mapError("apply stock delta", err)
}
