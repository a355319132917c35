package service

import (
	"context"
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/port"
)

type fakeSuppliers struct {
	created []domain.SupplierInput
	err     error
}

func (f *fakeSuppliers) ListSuppliers(context.Context) ([]domain.Supplier, error) {
	return nil, f.err
}

func (f *fakeSuppliers) GetSupplier(_ context.Context, id string) (*domain.Supplier, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Supplier{ID: id, Nome: "ACME"}, nil
}

func (f *fakeSuppliers) CreateSupplier(_ context.Context, in domain.SupplierInput) (*domain.Supplier, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	return &domain.Supplier{ID: "f1", Nome: in.Nome, CNPJ: in.CNPJ, Email: in.Email, Telefone: in.Telefone}, nil
}

func (f *fakeSuppliers) UpdateSupplier(_ context.Context, id string, in domain.SupplierInput) (*domain.Supplier, error) {
	return &domain.Supplier{ID: id, Nome: in.Nome}, f.err
}

func (f *fakeSuppliers) DeleteSupplier(context.Context, string) error { return f.err }

func TestSupplierService_CreateStoresMasked(t *testing.T) {
	c := qt.New(t)
	repo := &fakeSuppliers{}
	svc := NewSupplierService(repo)

	f, err := svc.Create(context.Background(), domain.SupplierInput{
		Nome: "ACME", CNPJ: "12.345.678/0001-95", Email: "a@acme.com", Telefone: "(11) 98765-4321",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(f.CNPJ, qt.Equals, "12.345.678/0001-95")
	c.Assert(repo.created, qt.HasLen, 1)
	c.Assert(repo.created[0].Telefone, qt.Equals, "(11) 98765-4321")
}

func TestSupplierService_InvalidNeverReachesBackend(t *testing.T) {
	c := qt.New(t)
	repo := &fakeSuppliers{}
	_, err := NewSupplierService(repo).Create(context.Background(), domain.SupplierInput{Nome: "ACME"})
	var verr *port.ValidationError
	c.Assert(errors.As(err, &verr), qt.IsTrue)
	c.Assert(repo.created, qt.HasLen, 0)
}

func TestSupplierService_ErrorMessages(t *testing.T) {
	c := qt.New(t)
	in := domain.SupplierInput{Nome: "ACME", CNPJ: "12345678000195", Email: "a@acme.com", Telefone: "1133334444"}

	_, err := NewSupplierService(&fakeSuppliers{err: port.ErrConflict}).Create(context.Background(), in)
	c.Assert(port.UserMessage(err, "x"), qt.Equals, "Já existe um fornecedor com este CNPJ")

	_, err = NewSupplierService(&fakeSuppliers{err: errors.New("boom")}).Create(context.Background(), in)
	c.Assert(port.UserMessage(err, "x"), qt.Equals, "Falha ao salvar fornecedor")

	_, err = NewSupplierService(&fakeSuppliers{err: errors.New("boom")}).List(context.Background())
	c.Assert(port.UserMessage(err, "x"), qt.Equals, "Falha ao carregar fornecedores")
}

type fakeProducts struct {
	port.ProductRepository
	imported []domain.ProductInput
}

func (f *fakeProducts) ImportProducts(_ context.Context, in []domain.ProductInput) (int, error) {
	f.imported = in
	return len(in), nil
}

func TestProductService_ImportRejectsWholeBatch(t *testing.T) {
	c := qt.New(t)
	repo := &fakeProducts{}
	svc := NewProductService(repo)

	_, err := svc.Import(context.Background(), []domain.ProductInput{
		{Nome: "Parafuso", Quantidade: 10},
		{Nome: "", Quantidade: -1},
	})
	fields := fieldsOf(c, err)
	c.Assert(fields["produtos[1].nome"], qt.Equals, "Nome é obrigatório")
	c.Assert(fields["produtos[1].quantidade"], qt.Equals, "Quantidade não pode ser negativa")
	c.Assert(repo.imported, qt.IsNil)

	n, err := svc.Import(context.Background(), []domain.ProductInput{{Nome: " Parafuso ", Quantidade: 10}})
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 1)
	c.Assert(repo.imported[0].Nome, qt.Equals, "Parafuso")
}

type fakeProfiles struct {
	port.ProfileRepository
	profile *domain.Profile
	deleted []string
	updates []domain.ProfileUpdate
}

func (f *fakeProfiles) GetProfile(context.Context, string) (*domain.Profile, error) {
	return f.profile, nil
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, _ string, u domain.ProfileUpdate) (*domain.Profile, error) {
	f.updates = append(f.updates, u)
	return f.profile, nil
}

func (f *fakeProfiles) DeleteUser(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeIdentity struct {
	port.IdentityProvider
	notified []string
	revoked  []string
}

func (f *fakeIdentity) NotifyUserUpdated(userID string) { f.notified = append(f.notified, userID) }

func (f *fakeIdentity) RevokeUser(_ context.Context, userID string) error {
	f.revoked = append(f.revoked, userID)
	return nil
}

func TestUserService_DeleteSelfIsForbidden(t *testing.T) {
	c := qt.New(t)
	profiles := &fakeProfiles{}
	ident := &fakeIdentity{}
	svc := NewUserService(profiles, ident)

	err := svc.Delete(context.Background(), "admin-1", "admin-1")
	c.Assert(err, qt.ErrorIs, port.ErrForbidden)
	c.Assert(port.UserMessage(err, "x"), qt.Equals, "Você não pode excluir sua própria conta.")
	c.Assert(profiles.deleted, qt.HasLen, 0)

	c.Assert(svc.Delete(context.Background(), "admin-1", "u-2"), qt.IsNil)
	c.Assert(profiles.deleted, qt.DeepEquals, []string{"u-2"})
	c.Assert(ident.revoked, qt.DeepEquals, []string{"u-2"})
}

func TestUserService_UpdateNotifiesSessions(t *testing.T) {
	c := qt.New(t)
	profiles := &fakeProfiles{profile: &domain.Profile{ID: "u-2", Perfil: domain.RoleFuncionario}}
	ident := &fakeIdentity{}
	svc := NewUserService(profiles, ident)

	nome := "Bruno"
	_, err := svc.Update(context.Background(), "u-2", domain.ProfileUpdate{Nome: &nome})
	c.Assert(err, qt.IsNil)
	c.Assert(ident.notified, qt.DeepEquals, []string{"u-2"})
	c.Assert(*profiles.updates[0].Nome, qt.Equals, "Bruno")
}

type fakeMovements struct {
	port.MovementRepository
	created []*domain.Movement
	err     error
}

func (f *fakeMovements) CreateMovement(_ context.Context, m *domain.Movement) (*domain.Movement, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, m)
	cp := *m
	cp.ID = "m1"
	return &cp, nil
}

func (f *fakeMovements) UpdateMovement(_ context.Context, id string, m *domain.Movement) (*domain.Movement, error) {
	return m, f.err
}

func TestMovementService_CreateStampsUser(t *testing.T) {
	c := qt.New(t)
	repo := &fakeMovements{}
	svc := NewMovementService(repo)

	m, err := svc.Create(context.Background(), "u-1", domain.MovementInput{
		ProductID: " p1 ", Quantity: 3, Type: "saida", Observacao: "venda",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(m.ID, qt.Equals, "m1")
	c.Assert(repo.created, qt.HasLen, 1)
	c.Assert(repo.created[0].UserID, qt.Equals, "u-1")
	c.Assert(repo.created[0].ProductID, qt.Equals, "p1")
	c.Assert(repo.created[0].Type.Delta(repo.created[0].Quantity), qt.Equals, -3)
}

func TestMovementService_InsufficientStockPassesThrough(t *testing.T) {
	c := qt.New(t)
	stock := port.NewValidationError()
	stock.Add("quantity", "estoque insuficiente: disponível 2")
	svc := NewMovementService(&fakeMovements{err: stock})

	in := domain.MovementInput{ProductID: "p1", Quantity: 5, Type: "saida"}
	for _, call := range []func() error{
		func() error { _, err := svc.Create(context.Background(), "u-1", in); return err },
		func() error { _, err := svc.Update(context.Background(), "m1", in); return err },
	} {
		err := call()
		var verr *port.ValidationError
		c.Assert(errors.As(err, &verr), qt.IsTrue)
		c.Assert(err, qt.Equals, error(stock))
		c.Assert(port.UserMessage(err, "x"), qt.Equals, "estoque insuficiente: disponível 2")
	}
}

func TestMovementService_RejectsBadInputBeforeBackend(t *testing.T) {
	c := qt.New(t)
	repo := &fakeMovements{}
	_, err := NewMovementService(repo).Create(context.Background(), "u-1", domain.MovementInput{Type: "ajuste"})
	c.Assert(fieldsOf(c, err), qt.DeepEquals, map[string]string{
		"product_id": "Produto é obrigatório",
		"quantity":   "Quantidade deve ser maior que zero",
		"type":       "Tipo deve ser entrada ou saida",
	})
	c.Assert(repo.created, qt.HasLen, 0)
}
