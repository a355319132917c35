package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/arturoeanton/controle-estoque/internal/domain"
)

const profileColumns = `id, nome, email, perfil, telefone, COALESCE(cargo, ''), COALESCE(departamento, ''), created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(
		&p.ID, &p.Nome, &p.Email, &p.Perfil, &p.Telefone,
		&p.Cargo, &p.Departamento, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// --- Identities ---

// CreateIdentityWithProfile inserts the auth identity and its profile in one
// transaction, so a failed profile insert never leaves an orphaned identity.
func (s *PostgresStore) CreateIdentityWithProfile(ctx context.Context, id *domain.Identity, p *domain.Profile) (*domain.Profile, error) {
	var created *domain.Profile
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO auth_identities (id, email, password_hash) VALUES ($1, $2, $3)`,
			id.ID, strings.ToLower(id.Email), id.PasswordHash,
		); err != nil {
			return mapError("create identity", err)
		}

		row := tx.QueryRowContext(ctx, `
			INSERT INTO users (id, nome, email, perfil, telefone, cargo, departamento)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+profileColumns,
			id.ID, p.Nome, strings.ToLower(p.Email), string(p.Perfil), p.Telefone,
			nullable(p.Cargo), nullable(p.Departamento),
		)
		var err error
		created, err = scanProfile(row)
		return mapError("create profile", err)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetIdentityByEmail looks up an identity by case-insensitive email.
func (s *PostgresStore) GetIdentityByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	var id domain.Identity
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM auth_identities WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&id.ID, &id.Email, &id.PasswordHash, &id.CreatedAt)
	if err != nil {
		return nil, mapError("get identity", err)
	}
	return &id, nil
}

// --- Profiles ---

// GetProfile retrieves a profile by user ID.
func (s *PostgresStore) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM users WHERE id = $1`, id)
	p, err := scanProfile(row)
	if err != nil {
		return nil, mapError("get profile", err)
	}
	return p, nil
}

// ListProfiles returns every profile ordered by name.
func (s *PostgresStore) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM users ORDER BY nome`)
	if err != nil {
		return nil, mapError("list profiles", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// UpdateProfile applies a partial update and returns the stored profile.
func (s *PostgresStore) UpdateProfile(ctx context.Context, id string, u domain.ProfileUpdate) (*domain.Profile, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if u.Nome != nil {
		add("nome", *u.Nome)
	}
	if u.Perfil != nil {
		add("perfil", string(*u.Perfil))
	}
	if u.Telefone != nil {
		add("telefone", *u.Telefone)
	}
	if u.Cargo != nil {
		add("cargo", nullable(*u.Cargo))
	}
	if u.Departamento != nil {
		add("departamento", nullable(*u.Departamento))
	}
	if len(sets) == 0 {
		return s.GetProfile(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), profileColumns)

	p, err := scanProfile(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError("update profile", err)
	}
	return p, nil
}

// DeleteUser removes the identity; the profile goes with it (ON DELETE CASCADE).
func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM auth_identities WHERE id = $1`, id)
	if err != nil {
		return mapError("delete user", err)
	}
	return expectAffected("delete user", res)
}

func expectAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return mapError(op, sql.ErrNoRows)
	}
	return nil
}
