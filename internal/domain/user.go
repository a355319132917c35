package domain

import (
	"fmt"
	"time"
)

// Role is the only authorization signal carried by a profile.
type Role string

// Role constants.
const (
	RoleAdministrador Role = "administrador"
	RoleFuncionario   Role = "funcionario"
)

// ParseRole validates a raw perfil value.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdministrador, RoleFuncionario:
		return Role(s), nil
	default:
		return "", fmt.Errorf("invalid role %q", s)
	}
}

// CanAccess reports whether the role may open a route. Admin-only routes are
// reachable by administrators alone; everything else by any known role.
func (r Role) CanAccess(requireAdmin bool) bool {
	switch r {
	case RoleAdministrador:
		return true
	case RoleFuncionario:
		return !requireAdmin
	default:
		return false
	}
}

// Profile is the application-level user record (table users), distinct from
// the bare authentication identity.
type Profile struct {
	ID           string    `json:"id"           db:"id"`
	Nome         string    `json:"nome"         db:"nome"`
	Email        string    `json:"email"        db:"email"`
	Perfil       Role      `json:"perfil"       db:"perfil"`
	Telefone     string    `json:"telefone"     db:"telefone"`
	Cargo        string    `json:"cargo"        db:"cargo"`
	Departamento string    `json:"departamento" db:"departamento"`
	CreatedAt    time.Time `json:"created_at"   db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"   db:"updated_at"`
}

// Identity is the authentication record backing a profile.
type Identity struct {
	ID           string    `json:"id"         db:"id"`
	Email        string    `json:"email"      db:"email"`
	PasswordHash string    `json:"-"          db:"password_hash"` // never serialized to JSON
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SignUpInput is the registration form.
type SignUpInput struct {
	Nome            string `json:"nome"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Telefone        string `json:"telefone"`
	Perfil          string `json:"perfil"`
	Cargo           string `json:"cargo"`
	Departamento    string `json:"departamento"`
}

// ProfileUpdate is a partial profile update; nil fields are left untouched.
type ProfileUpdate struct {
	Nome         *string `json:"nome,omitempty"`
	Perfil       *Role   `json:"perfil,omitempty"`
	Telefone     *string `json:"telefone,omitempty"`
	Cargo        *string `json:"cargo,omitempty"`
	Departamento *string `json:"departamento,omitempty"`
}

// Empty reports whether the update carries no field.
func (u ProfileUpdate) Empty() bool {
	return u.Nome == nil && u.Perfil == nil && u.Telefone == nil && u.Cargo == nil && u.Departamento == nil
}

// UserContext is the authenticated user context injected into request handlers.
type UserContext struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
}
