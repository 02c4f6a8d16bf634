package usuario

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("usuário não encontrado")
	ErrLoginEmUso     = errors.New("login já existe")
	ErrPerfilInvalido = errors.New("perfil inválido")
	ErrEmUso          = errors.New("usuário referenciado por atendimentos")
)

const (
	PerfilAdmin     = "ADMIN"
	PerfilAtendente = "ATENDENTE"
	PerfilOperador  = "OPERADOR"
)

var validPerfis = map[string]struct{}{
	PerfilAdmin:     {},
	PerfilAtendente: {},
	PerfilOperador:  {},
}

// Usuario representa operador do sistema com papel de acesso.
type Usuario struct {
	ID           uuid.UUID  `json:"id"`
	Login        string     `json:"login"`
	Nome         *string    `json:"nome,omitempty"`
	SenhaHash    string     `json:"-"`
	Perfil       string     `json:"perfil"`
	CriadoEm     time.Time  `json:"criado_em"`
	AtualizadoEm *time.Time `json:"atualizado_em,omitempty"`
}

// NomeExibicao devolve nome de exibição, caindo para o login quando vazio.
func (u Usuario) NomeExibicao() string {
	if u.Nome != nil && strings.TrimSpace(*u.Nome) != "" {
		return *u.Nome
	}
	return u.Login
}

// CreateInput encapsula campos para cadastro de usuário.
type CreateInput struct {
	Login  string
	Nome   *string
	Senha  string
	Perfil string
}

// UpdateInput permite alterar login, nome, perfil e opcionalmente a senha.
type UpdateInput struct {
	ID     uuid.UUID
	Login  string
	Nome   *string
	Perfil string
	Senha  *string // nil ou vazio mantém a senha atual
}

// NormalizePerfil padroniza papel em maiúsculas.
func NormalizePerfil(perfil string) string {
	return strings.ToUpper(strings.TrimSpace(perfil))
}

// IsValidPerfil indica se o papel é aceito.
func IsValidPerfil(perfil string) bool {
	_, ok := validPerfis[NormalizePerfil(perfil)]
	return ok
}
