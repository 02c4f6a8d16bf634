package abrigo

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/redeabrigos/atendimento/internal/util"
)

type repository interface {
	Create(ctx context.Context, input Input) (*Abrigo, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*Abrigo, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Abrigo, error)
	List(ctx context.Context, apenasAtivos bool) ([]Abrigo, error)
}

// Service reúne regras de negócio de abrigos.
type Service struct {
	repo repository
}

// NewService cria uma nova instância do serviço.
func NewService(repo repository) *Service {
	return &Service{repo: repo}
}

// Create cadastra novo abrigo. Não existe remoção; abrigos inativos
// permanecem visíveis para atendimentos históricos.
func (s *Service) Create(ctx context.Context, input Input) (*Abrigo, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, input)
}

// Update altera abrigo existente.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input Input) (*Abrigo, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, input)
}

// Get busca abrigo pelo id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Abrigo, error) {
	return s.repo.GetByID(ctx, id)
}

// List devolve todos os abrigos.
func (s *Service) List(ctx context.Context) ([]Abrigo, error) {
	return s.repo.List(ctx, false)
}

// ListAtivos devolve apenas abrigos ofertáveis para novos atendimentos.
func (s *Service) ListAtivos(ctx context.Context) ([]Abrigo, error) {
	return s.repo.List(ctx, true)
}

func validate(input *Input) error {
	input.Nome = strings.TrimSpace(input.Nome)
	input.Status = NormalizeStatus(input.Status)

	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return err
	}
	if !IsValidStatus(input.Status) {
		return ErrStatusInvalid
	}
	if input.Estado != nil {
		uf := strings.ToUpper(strings.TrimSpace(*input.Estado))
		if uf == "" {
			input.Estado = nil
		} else {
			if err := util.ValidateUF(uf); err != nil {
				return err
			}
			input.Estado = &uf
		}
	}
	return nil
}
