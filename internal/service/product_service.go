package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/port"
)

// ProductService is the products data service.
type ProductService struct {
	repo port.ProductRepository
}

// NewProductService creates a product service.
func NewProductService(repo port.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// List returns every product with its resolved type name.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	return products, remote("list products", "Erro ao carregar produtos.", err)
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	return p, remote("get product", "Produto não encontrado.", err)
}

// Create validates and stores a product.
func (s *ProductService) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	v := port.NewValidationError()
	validateProduct(&in, v, "")
	if err := v.Err(); err != nil {
		return nil, err
	}
	p, err := s.repo.CreateProduct(ctx, in)
	if err != nil {
		return nil, remote("create product", "Erro ao cadastrar produto. Tente novamente.", err)
	}
	slog.Info("product created", "product_id", p.ID, "nome", p.Nome)
	return p, nil
}

// Update validates and replaces a product's editable fields.
func (s *ProductService) Update(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	v := port.NewValidationError()
	validateProduct(&in, v, "")
	if err := v.Err(); err != nil {
		return nil, err
	}
	p, err := s.repo.UpdateProduct(ctx, id, in)
	return p, remote("update product", "Erro ao atualizar produto.", err)
}

// Delete removes a product and its movements.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	return remote("delete product", "Erro ao excluir produto.", s.repo.DeleteProduct(ctx, id))
}

// ListTypes returns the product types for the product form.
func (s *ProductService) ListTypes(ctx context.Context) ([]domain.ProductType, error) {
	types, err := s.repo.ListProductTypes(ctx)
	return types, remote("list product types", "Erro ao carregar tipos.", err)
}

// Import validates every row first and then stores them all in one
// transaction. A single bad row rejects the whole batch.
func (s *ProductService) Import(ctx context.Context, in []domain.ProductInput) (int, error) {
	v := port.NewValidationError()
	if len(in) == 0 {
		v.Add("produtos", "Nenhum produto para importar")
	}
	for i := range in {
		validateProduct(&in[i], v, fmt.Sprintf("produtos[%d].", i))
	}
	if err := v.Err(); err != nil {
		return 0, err
	}

	n, err := s.repo.ImportProducts(ctx, in)
	if err != nil {
		return 0, remote("import products", "Erro ao importar produtos.", err)
	}
	slog.Info("products imported", "count", n)
	return n, nil
}
