package usuario

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/redeabrigos/atendimento/internal/auth"
	"github.com/redeabrigos/atendimento/internal/util"
)

type repository interface {
	Create(ctx context.Context, login string, nome *string, senhaHash, perfil string) (*Usuario, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Usuario, error)
	GetByLogin(ctx context.Context, login string) (*Usuario, error)
	List(ctx context.Context) ([]Usuario, error)
	Update(ctx context.Context, id uuid.UUID, login string, nome *string, perfil, senhaHash string) (*Usuario, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service reúne regras de negócio de usuários.
type Service struct {
	repo repository
}

// NewService cria uma nova instância do serviço.
func NewService(repo repository) *Service {
	return &Service{repo: repo}
}

// Create cadastra usuário com senha hasheada.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Usuario, error) {
	input.Login = strings.TrimSpace(input.Login)
	input.Perfil = NormalizePerfil(input.Perfil)

	if err := util.RequireString(input.Login, "login"); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(input.Senha); err != nil {
		return nil, err
	}
	if !IsValidPerfil(input.Perfil) {
		return nil, ErrPerfilInvalido
	}

	hash, err := auth.Hash(input.Senha)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, input.Login, trimNome(input.Nome), hash, input.Perfil)
}

// Update altera dados cadastrais; senha em branco mantém a atual.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Usuario, error) {
	input.Login = strings.TrimSpace(input.Login)
	input.Perfil = NormalizePerfil(input.Perfil)

	if err := util.RequireString(input.Login, "login"); err != nil {
		return nil, err
	}
	if !IsValidPerfil(input.Perfil) {
		return nil, ErrPerfilInvalido
	}

	senhaHash := ""
	if input.Senha != nil && strings.TrimSpace(*input.Senha) != "" {
		if err := util.ValidatePassword(*input.Senha); err != nil {
			return nil, err
		}
		hash, err := auth.Hash(*input.Senha)
		if err != nil {
			return nil, err
		}
		senhaHash = hash
	}

	return s.repo.Update(ctx, input.ID, input.Login, trimNome(input.Nome), input.Perfil, senhaHash)
}

// Delete remove usuário sem histórico de atendimentos.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Get busca usuário pelo id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Usuario, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByLogin busca usuário pelo login.
func (s *Service) GetByLogin(ctx context.Context, login string) (*Usuario, error) {
	return s.repo.GetByLogin(ctx, login)
}

// List devolve todos os usuários.
func (s *Service) List(ctx context.Context) ([]Usuario, error) {
	return s.repo.List(ctx)
}

func trimNome(nome *string) *string {
	if nome == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*nome)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
