package service

import (
	"context"
	"errors"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/port"
)

// SupplierService is the suppliers data service. CNPJ and phone are stored
// masked.
type SupplierService struct {
	repo port.SupplierRepository
}

// NewSupplierService creates a supplier service.
func NewSupplierService(repo port.SupplierRepository) *SupplierService {
	return &SupplierService{repo: repo}
}

func (s *SupplierService) List(ctx context.Context) ([]domain.Supplier, error) {
	suppliers, err := s.repo.ListSuppliers(ctx)
	return suppliers, remote("list suppliers", "Falha ao carregar fornecedores", err)
}

func (s *SupplierService) Get(ctx context.Context, id string) (*domain.Supplier, error) {
	f, err := s.repo.GetSupplier(ctx, id)
	return f, remote("get supplier", "Fornecedor não encontrado.", err)
}

func (s *SupplierService) Create(ctx context.Context, in domain.SupplierInput) (*domain.Supplier, error) {
	if err := validateSupplier(&in); err != nil {
		return nil, err
	}
	f, err := s.repo.CreateSupplier(ctx, in)
	if err != nil {
		return nil, supplierError("create supplier", err)
	}
	return f, nil
}

func (s *SupplierService) Update(ctx context.Context, id string, in domain.SupplierInput) (*domain.Supplier, error) {
	if err := validateSupplier(&in); err != nil {
		return nil, err
	}
	f, err := s.repo.UpdateSupplier(ctx, id, in)
	if err != nil {
		return nil, supplierError("update supplier", err)
	}
	return f, nil
}

func (s *SupplierService) Delete(ctx context.Context, id string) error {
	return remote("delete supplier", "Falha ao excluir fornecedor", s.repo.DeleteSupplier(ctx, id))
}

func supplierError(op string, err error) error {
	if errors.Is(err, port.ErrConflict) {
		return port.NewRemoteError(op, "Já existe um fornecedor com este CNPJ", err)
	}
	return remote(op, "Falha ao salvar fornecedor", err)
}
