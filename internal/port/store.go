package port

import (
	"context"

	"github.com/arturoeanton/controle-estoque/internal/domain"
)

// IdentityRepository stores authentication identities.
type IdentityRepository interface {
	// CreateIdentityWithProfile inserts both records atomically.
	CreateIdentityWithProfile(ctx context.Context, id *domain.Identity, p *domain.Profile) (*domain.Profile, error)
	GetIdentityByEmail(ctx context.Context, email string) (*domain.Identity, error)
}

// ProfileRepository stores user profiles (table users).
type ProfileRepository interface {
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	UpdateProfile(ctx context.Context, id string, u domain.ProfileUpdate) (*domain.Profile, error)
	DeleteUser(ctx context.Context, id string) error
}

// ProductRepository stores products and product types.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ImportProducts(ctx context.Context, in []domain.ProductInput) (int, error)
	ListProductTypes(ctx context.Context) ([]domain.ProductType, error)
}

// SupplierRepository stores suppliers.
type SupplierRepository interface {
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*domain.Supplier, error)
	CreateSupplier(ctx context.Context, in domain.SupplierInput) (*domain.Supplier, error)
	UpdateSupplier(ctx context.Context, id string, in domain.SupplierInput) (*domain.Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error
}

// MovementRepository stores stock movements. Every mutation also applies or
// reverts the movement's delta on the product quantity in the same unit of
// work.
type MovementRepository interface {
	ListMovements(ctx context.Context) ([]domain.Movement, error)
	GetMovement(ctx context.Context, id string) (*domain.Movement, error)
	CreateMovement(ctx context.Context, m *domain.Movement) (*domain.Movement, error)
	UpdateMovement(ctx context.Context, id string, m *domain.Movement) (*domain.Movement, error)
	DeleteMovement(ctx context.Context, id string) error
}

// AuditRepository stores and lists audit logs.
type AuditRepository interface {
	WriteAudit(userID, action, resource, resourceID, details, ip, userAgent string) error
	ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error)
}
