package store

import (
	"context"
	"fmt"

	"github.com/arturoeanton/controle-estoque/internal/domain"
)

const supplierColumns = `id, nome, cnpj, email, telefone, created_at`

func scanSupplier(row rowScanner) (*domain.Supplier, error) {
	var f domain.Supplier
	if err := row.Scan(&f.ID, &f.Nome, &f.CNPJ, &f.Email, &f.Telefone, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// ListSuppliers returns every supplier, newest first.
func (s *PostgresStore) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+supplierColumns+` FROM fornecedores ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapError("list suppliers", err)
	}
	defer rows.Close()

	var suppliers []domain.Supplier
	for rows.Next() {
		f, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, *f)
	}
	return suppliers, rows.Err()
}

// GetSupplier retrieves one supplier.
func (s *PostgresStore) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	f, err := scanSupplier(s.db.QueryRowContext(ctx, `SELECT `+supplierColumns+` FROM fornecedores WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get supplier", err)
	}
	return f, nil
}

// CreateSupplier inserts a supplier.
func (s *PostgresStore) CreateSupplier(ctx context.Context, in domain.SupplierInput) (*domain.Supplier, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO fornecedores (nome, cnpj, email, telefone)
		VALUES ($1, $2, $3, $4)
		RETURNING `+supplierColumns,
		in.Nome, in.CNPJ, in.Email, in.Telefone,
	)
	f, err := scanSupplier(row)
	if err != nil {
		return nil, mapError("create supplier", err)
	}
	return f, nil
}

// UpdateSupplier replaces the editable fields of a supplier.
func (s *PostgresStore) UpdateSupplier(ctx context.Context, id string, in domain.SupplierInput) (*domain.Supplier, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE fornecedores SET nome = $1, cnpj = $2, email = $3, telefone = $4
		WHERE id = $5
		RETURNING `+supplierColumns,
		in.Nome, in.CNPJ, in.Email, in.Telefone, id,
	)
	f, err := scanSupplier(row)
	if err != nil {
		return nil, mapError("update supplier", err)
	}
	return f, nil
}

// DeleteSupplier removes a supplier.
func (s *PostgresStore) DeleteSupplier(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fornecedores WHERE id = $1`, id)
	if err != nil {
		return mapError("delete supplier", err)
	}
	return expectAffected("delete supplier", res)
}
