package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/format"
	"github.com/arturoeanton/controle-estoque/internal/port"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

const minPasswordLength = 6

// ValidateSignUp checks the registration form and normalizes it in place:
// names and emails are trimmed, the phone is masked, and cargo/departamento
// are cleared unless the profile is funcionario.
func ValidateSignUp(in *domain.SignUpInput) error {
	v := port.NewValidationError()

	in.Nome = strings.TrimSpace(in.Nome)
	in.Email = strings.TrimSpace(in.Email)
	in.Telefone = strings.TrimSpace(in.Telefone)
	in.Cargo = strings.TrimSpace(in.Cargo)
	in.Departamento = strings.TrimSpace(in.Departamento)

	if in.Nome == "" {
		v.Add("nome", "Nome é obrigatório")
	}

	switch {
	case in.Email == "":
		v.Add("email", "Email é obrigatório")
	case !emailPattern.MatchString(in.Email):
		v.Add("email", "Email inválido")
	}

	switch {
	case in.Password == "":
		v.Add("password", "Senha é obrigatória")
	case len([]rune(in.Password)) < minPasswordLength:
		v.Add("password", fmt.Sprintf("Senha deve ter pelo menos %d caracteres", minPasswordLength))
	}
	if in.Password != in.ConfirmPassword {
		v.Add("confirmPassword", "Senhas não coincidem")
	}

	if in.Telefone == "" {
		v.Add("telefone", "Telefone é obrigatório")
	} else {
		in.Telefone = format.FormatPhoneBR(in.Telefone)
	}

	if in.Perfil == "" {
		v.Add("perfil", "Perfil é obrigatório")
	} else if _, err := domain.ParseRole(in.Perfil); err != nil {
		v.Add("perfil", "Perfil inválido")
	}

	if domain.Role(in.Perfil) == domain.RoleFuncionario {
		if in.Cargo == "" {
			v.Add("cargo", "Cargo é obrigatório para funcionários")
		}
		if in.Departamento == "" {
			v.Add("departamento", "Departamento é obrigatório para funcionários")
		}
	} else {
		in.Cargo = ""
		in.Departamento = ""
	}

	return v.Err()
}

// ValidateProfileUpdate checks the fields present in u and normalizes them.
// current is the role the profile has before the update. A profile switching
// to funcionario must bring cargo and departamento along.
func ValidateProfileUpdate(u *domain.ProfileUpdate, current domain.Role) error {
	v := port.NewValidationError()

	if u.Nome != nil {
		nome := strings.TrimSpace(*u.Nome)
		if nome == "" {
			v.Add("nome", "Nome é obrigatório")
		}
		u.Nome = &nome
	}
	if u.Telefone != nil {
		tel := strings.TrimSpace(*u.Telefone)
		if tel == "" {
			v.Add("telefone", "Telefone é obrigatório")
		} else {
			tel = format.FormatPhoneBR(tel)
		}
		u.Telefone = &tel
	}

	target := current
	if u.Perfil != nil {
		role, err := domain.ParseRole(string(*u.Perfil))
		if err != nil {
			v.Add("perfil", "Perfil inválido")
		} else {
			target = role
		}
	}

	if target != domain.RoleFuncionario {
		empty := ""
		if u.Cargo != nil || u.Perfil != nil {
			u.Cargo = &empty
		}
		if u.Departamento != nil || u.Perfil != nil {
			u.Departamento = &empty
		}
		return v.Err()
	}

	becoming := current != domain.RoleFuncionario
	u.Cargo = requireJobField(v, u.Cargo, becoming, "cargo", "Cargo é obrigatório para funcionários")
	u.Departamento = requireJobField(v, u.Departamento, becoming, "departamento", "Departamento é obrigatório para funcionários")
	return v.Err()
}

// requireJobField trims a funcionario job field. A present field may not be
// blank; an absent one is an error only when mandatory.
func requireJobField(v *port.ValidationError, field *string, mandatory bool, name, msg string) *string {
	if field == nil {
		if mandatory {
			v.Add(name, msg)
		}
		return nil
	}
	val := strings.TrimSpace(*field)
	if val == "" {
		v.Add(name, msg)
	}
	return &val
}

func validateProduct(in *domain.ProductInput, v *port.ValidationError, prefix string) {
	in.Nome = strings.TrimSpace(in.Nome)
	in.Local = strings.TrimSpace(in.Local)
	in.Codigo = strings.TrimSpace(in.Codigo)
	in.IDTipo = strings.TrimSpace(in.IDTipo)

	if in.Nome == "" {
		v.Add(prefix+"nome", "Nome é obrigatório")
	}
	if in.Quantidade < 0 {
		v.Add(prefix+"quantidade", "Quantidade não pode ser negativa")
	}
}

func validateSupplier(in *domain.SupplierInput) error {
	v := port.NewValidationError()

	in.Nome = strings.TrimSpace(in.Nome)
	in.Email = strings.TrimSpace(in.Email)

	if in.Nome == "" {
		v.Add("nome", "Nome é obrigatório")
	}

	if cnpj := format.StripNonDigits(in.CNPJ); len(cnpj) != 14 {
		v.Add("cnpj", "CNPJ deve ter 14 dígitos")
	} else {
		in.CNPJ = format.FormatCNPJ(cnpj)
	}

	switch {
	case in.Email == "":
		v.Add("email", "Email é obrigatório")
	case !emailPattern.MatchString(in.Email):
		v.Add("email", "Email inválido")
	}

	if tel := format.StripNonDigits(in.Telefone); len(tel) < 10 || len(tel) > 11 {
		v.Add("telefone", "Telefone deve ter 10 ou 11 dígitos")
	} else {
		in.Telefone = format.FormatPhoneBR(tel)
	}

	return v.Err()
}

func validateMovement(in domain.MovementInput) (*domain.Movement, error) {
	v := port.NewValidationError()

	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		v.Add("product_id", "Produto é obrigatório")
	}
	if in.Quantity <= 0 {
		v.Add("quantity", "Quantidade deve ser maior que zero")
	}
	typ, err := domain.ParseMovementType(in.Type)
	if err != nil {
		v.Add("type", "Tipo deve ser entrada ou saida")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	return &domain.Movement{
		ProductID:  productID,
		Quantity:   in.Quantity,
		Type:       typ,
		Observacao: strings.TrimSpace(in.Observacao),
	}, nil
}
