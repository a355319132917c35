package service

import (
	"context"
	"log/slog"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/port"
)

// UserService is the admin-side user management service.
type UserService struct {
	profiles port.ProfileRepository
	identity port.IdentityProvider
}

// NewUserService creates a user service. identity is told about profile
// changes and deletions so live sessions pick them up.
func NewUserService(profiles port.ProfileRepository, identity port.IdentityProvider) *UserService {
	return &UserService{profiles: profiles, identity: identity}
}

func (s *UserService) List(ctx context.Context) ([]domain.Profile, error) {
	users, err := s.profiles.ListProfiles(ctx)
	return users, remote("list users", "Erro ao carregar usuários.", err)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, id)
	return p, remote("get user", "Erro ao carregar usuário.", err)
}

// Update applies a partial profile update and notifies the user's sessions.
func (s *UserService) Update(ctx context.Context, id string, u domain.ProfileUpdate) (*domain.Profile, error) {
	current, err := s.profiles.GetProfile(ctx, id)
	if err != nil {
		return nil, remote("update user", "Erro ao carregar usuário.", err)
	}
	if err := ValidateProfileUpdate(&u, current.Perfil); err != nil {
		return nil, err
	}

	updated, err := s.profiles.UpdateProfile(ctx, id, u)
	if err != nil {
		return nil, remote("update user", "Erro ao salvar alterações.", err)
	}
	s.identity.NotifyUserUpdated(id)
	return updated, nil
}

// Delete removes a user and revokes their sessions. actorID may not delete
// itself.
func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return port.NewRemoteError("delete user", "Você não pode excluir sua própria conta.", port.ErrForbidden)
	}
	if err := s.profiles.DeleteUser(ctx, id); err != nil {
		return remote("delete user", "Erro ao excluir usuário.", err)
	}
	if err := s.identity.RevokeUser(ctx, id); err != nil {
		slog.Warn("user deleted but sessions not revoked", "user_id", id, "error", err)
	}
	return nil
}
