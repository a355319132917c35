package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arturoeanton/controle-estoque/internal/domain"
)

const productSelect = `
	SELECT p.id, p.nome, p.quantidade, COALESCE(p.idtipo::text, ''), COALESCE(t.nome, ''),
	       p.local, COALESCE(p.codigo, ''), p.entrada
	FROM produtos p
	LEFT JOIN tipos t ON t.id = p.idtipo`

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID, &p.Nome, &p.Quantidade, &p.IDTipo, &p.TipoNome,
		&p.Local, &p.Codigo, &p.Entrada,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts returns every product with its resolved type name, newest first.
func (s *PostgresStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, productSelect+` ORDER BY p.entrada DESC`)
	if err != nil {
		return nil, mapError("list products", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// GetProduct returns a product by ID.
func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, mapError("get product", err)
	}
	return p, nil
}

// CreateProduct inserts a product and returns it with the type name resolved.
func (s *PostgresStore) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO produtos (nome, quantidade, idtipo, local, codigo)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		in.Nome, in.Quantidade, nullable(in.IDTipo), in.Local, nullable(in.Codigo),
	).Scan(&id)
	if err != nil {
		return nil, mapError("create product", err)
	}
	return s.GetProduct(ctx, id)
}

// UpdateProduct replaces the editable fields of a product.
func (s *PostgresStore) UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE produtos SET nome = $1, quantidade = $2, idtipo = $3, local = $4, codigo = $5
		WHERE id = $6`,
		in.Nome, in.Quantidade, nullable(in.IDTipo), in.Local, nullable(in.Codigo), id,
	)
	if err != nil {
		return nil, mapError("update product", err)
	}
	if err := expectAffected("update product", res); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product and, by cascade, its movements.
func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM produtos WHERE id = $1`, id)
	if err != nil {
		return mapError("delete product", err)
	}
	return expectAffected("delete product", res)
}

// ImportProducts inserts a batch of products in one transaction; either all
// rows are stored or none.
func (s *PostgresStore) ImportProducts(ctx context.Context, in []domain.ProductInput) (int, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO produtos (nome, quantidade, idtipo, local, codigo)
			VALUES ($1, $2, $3, $4, $5)`)
		if err != nil {
			return fmt.Errorf("prepare import: %w", err)
		}
		defer stmt.Close()

		for i, p := range in {
			if _, err := stmt.ExecContext(ctx, p.Nome, p.Quantidade, nullable(p.IDTipo), p.Local, nullable(p.Codigo)); err != nil {
				return mapError(fmt.Sprintf("import product %d", i+1), err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(in), nil
}

// ListProductTypes returns every product type ordered by name.
func (s *PostgresStore) ListProductTypes(ctx context.Context) ([]domain.ProductType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, nome FROM tipos ORDER BY nome`)
	if err != nil {
		return nil, mapError("list product types", err)
	}
	defer rows.Close()

	var types []domain.ProductType
	for rows.Next() {
		var t domain.ProductType
		if err := rows.Scan(&t.ID, &t.Nome); err != nil {
			return nil, fmt.Errorf("scan product type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}
