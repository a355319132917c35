package service

import (
	"context"
	"log/slog"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/port"
)

// MovementService records stock movements. The repository applies each
// movement's delta to the product in the same transaction.
type MovementService struct {
	repo port.MovementRepository
}

// NewMovementService creates a movement service.
func NewMovementService(repo port.MovementRepository) *MovementService {
	return &MovementService{repo: repo}
}

func (s *MovementService) List(ctx context.Context) ([]domain.Movement, error) {
	movements, err := s.repo.ListMovements(ctx)
	return movements, remote("list movements", "Erro ao carregar movimentações.", err)
}

func (s *MovementService) Get(ctx context.Context, id string) (*domain.Movement, error) {
	m, err := s.repo.GetMovement(ctx, id)
	return m, remote("get movement", "Movimentação não encontrada.", err)
}

// Create records a movement on behalf of userID.
func (s *MovementService) Create(ctx context.Context, userID string, in domain.MovementInput) (*domain.Movement, error) {
	m, err := validateMovement(in)
	if err != nil {
		return nil, err
	}
	m.UserID = userID

	created, err := s.repo.CreateMovement(ctx, m)
	if err != nil {
		return nil, remote("create movement", "Erro ao registrar movimentação. Tente novamente.", err)
	}
	slog.Info("movement recorded",
		"movement_id", created.ID,
		"product_id", created.ProductID,
		"type", created.Type,
		"quantity", created.Quantity,
	)
	return created, nil
}

func (s *MovementService) Update(ctx context.Context, id string, in domain.MovementInput) (*domain.Movement, error) {
	m, err := validateMovement(in)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateMovement(ctx, id, m)
	return updated, remote("update movement", "Erro ao atualizar movimentação. Tente novamente.", err)
}

func (s *MovementService) Delete(ctx context.Context, id string) error {
	return remote("delete movement", "Erro ao excluir movimentação.", s.repo.DeleteMovement(ctx, id))
}
