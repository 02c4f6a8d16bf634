package service

import (
	"errors"
	"strings"

	"github.com/redeabrigos/atendimento/internal/usuario"
)

var (
	// ErrForbidden indica ausência de permissão.
	ErrForbidden = errors.New("acesso negado")
)

// Decision é o resultado da avaliação de permissão.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// Evaluate decide acesso a partir do perfil e do conjunto de perfis aceitos.
// Admin sempre passa, como regra explícita; os demais precisam constar no
// conjunto declarado. Função pura, sem estado.
func Evaluate(perfil string, aceitos ...string) Decision {
	perfil = usuario.NormalizePerfil(perfil)
	if perfil == "" {
		return Deny
	}
	if perfil == usuario.PerfilAdmin {
		return Allow
	}
	for _, aceito := range aceitos {
		if perfil == strings.ToUpper(strings.TrimSpace(aceito)) {
			return Allow
		}
	}
	return Deny
}
