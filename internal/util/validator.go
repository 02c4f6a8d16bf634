package util

import (
	"errors"
	"strings"
)

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " obrigatório")
	}
	return nil
}

// ValidatePassword verifica requisitos mínimos de senha.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("senha deve ter pelo menos 8 caracteres")
	}
	return nil
}

// ValidateUF aceita sigla de estado com duas letras.
func ValidateUF(uf string) error {
	uf = strings.TrimSpace(uf)
	if len(uf) != 2 {
		return errors.New("estado deve ter 2 letras")
	}
	for _, r := range uf {
		if r < 'A' || r > 'Z' {
			return errors.New("estado deve ter 2 letras maiúsculas")
		}
	}
	return nil
}
