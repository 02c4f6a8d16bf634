package abrigo

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("abrigo não encontrado")
	ErrStatusInvalid = errors.New("status de abrigo inválido")
)

const (
	StatusAtivo   = "Ativo"
	StatusInativo = "Inativo"
)

// Abrigo representa instalação física capaz de receber atendimentos.
type Abrigo struct {
	ID           uuid.UUID  `json:"id"`
	Nome         string     `json:"nome"`
	Status       string     `json:"status"`
	Logradouro   *string    `json:"logradouro,omitempty"`
	Bairro       *string    `json:"bairro,omitempty"`
	CEP          *string    `json:"cep,omitempty"`
	Cidade       *string    `json:"cidade,omitempty"`
	Estado       *string    `json:"estado,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	CriadoEm     time.Time  `json:"criado_em"`
	AtualizadoEm *time.Time `json:"atualizado_em,omitempty"`
}

// Geocodificado indica se o abrigo possui coordenadas.
func (a Abrigo) Geocodificado() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// Input agrupa campos de cadastro e edição de abrigo.
type Input struct {
	Nome       string
	Status     string
	Logradouro *string
	Bairro     *string
	CEP        *string
	Cidade     *string
	Estado     *string
	Latitude   *float64
	Longitude  *float64
}

// NormalizeStatus padroniza capitalização do status.
func NormalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "ativo":
		return StatusAtivo
	case "inativo":
		return StatusInativo
	default:
		return strings.TrimSpace(status)
	}
}

// IsValidStatus indica se o status é aceito.
func IsValidStatus(status string) bool {
	s := NormalizeStatus(status)
	return s == StatusAtivo || s == StatusInativo
}
