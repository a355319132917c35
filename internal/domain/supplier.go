package domain

import "time"

// Supplier is a fornecedor. CNPJ and Telefone are stored in display form.
type Supplier struct {
	ID        string    `json:"id"         db:"id"`
	Nome      string    `json:"nome"       db:"nome"`
	CNPJ      string    `json:"cnpj"       db:"cnpj"`
	Email     string    `json:"email"      db:"email"`
	Telefone  string    `json:"telefone"   db:"telefone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SupplierInput is the supplier form.
type SupplierInput struct {
	Nome     string `json:"nome"`
	CNPJ     string `json:"cnpj"`
	Email    string `json:"email"`
	Telefone string `json:"telefone"`
}
