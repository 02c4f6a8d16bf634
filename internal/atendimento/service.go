package atendimento

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redeabrigos/atendimento/internal/abrigo"
	"github.com/redeabrigos/atendimento/internal/auth"
	"github.com/redeabrigos/atendimento/internal/usuario"
	"github.com/redeabrigos/atendimento/internal/util"
)

type repository interface {
	Create(ctx context.Context, input CreateInput, agora time.Time) (*Atendimento, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Atendimento, error)
	List(ctx context.Context) ([]Atendimento, error)
	Edit(ctx context.Context, input EditInput, agora time.Time) (*Atendimento, error)
	SetEmAtendimento(ctx context.Context, id uuid.UUID, agora time.Time) (*Atendimento, error)
	Finalizar(ctx context.Context, id uuid.UUID, conclusao string, agora time.Time) (*Atendimento, error)
	Cancelar(ctx context.Context, id uuid.UUID, justificativa string, agora time.Time) (*Atendimento, error)
	Stats(ctx context.Context) (*Stats, error)
}

type abrigoGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*abrigo.Abrigo, error)
}

type usuarioGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*usuario.Usuario, error)
}

// Service controla o ciclo de vida dos atendimentos.
type Service struct {
	repo     repository
	abrigos  abrigoGetter
	usuarios usuarioGetter
}

// NewService cria uma nova instância do serviço.
func NewService(repo repository, abrigos abrigoGetter, usuarios usuarioGetter) *Service {
	return &Service{repo: repo, abrigos: abrigos, usuarios: usuarios}
}

// Create abre atendimento com status Aberto contra um abrigo ativo.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Atendimento, error) {
	if err := validarCampos(input.Solicitante, input.Telefone, input.Descricao); err != nil {
		return nil, err
	}

	ab, err := s.abrigos.Get(ctx, input.AbrigoID)
	if err != nil {
		if errors.Is(err, abrigo.ErrNotFound) {
			return nil, ErrAbrigoIndisponivel
		}
		return nil, err
	}
	if ab.Status != abrigo.StatusAtivo {
		return nil, ErrAbrigoIndisponivel
	}

	return s.repo.Create(ctx, input, util.Now())
}

// Edit altera os campos editáveis. Só atendimentos abertos aceitam edição;
// qualquer outro estado rejeita sem mutação.
func (s *Service) Edit(ctx context.Context, input EditInput) (*Atendimento, error) {
	if err := validarCampos(input.Solicitante, input.Telefone, input.Descricao); err != nil {
		return nil, err
	}

	atual, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if atual.Status != StatusAberto {
		return nil, ErrNaoEditavel
	}

	if input.AbrigoID != atual.AbrigoID {
		ab, err := s.abrigos.Get(ctx, input.AbrigoID)
		if err != nil {
			if errors.Is(err, abrigo.ErrNotFound) {
				return nil, ErrAbrigoIndisponivel
			}
			return nil, err
		}
		if ab.Status != abrigo.StatusAtivo {
			return nil, ErrAbrigoIndisponivel
		}
	}

	return s.repo.Edit(ctx, input, util.Now())
}

// Iniciar move o atendimento para Em Atendimento. Restrito a Admin/Atendente.
func (s *Service) Iniciar(ctx context.Context, id uuid.UUID, perfil string) (*Atendimento, error) {
	if perfil != usuario.PerfilAdmin && perfil != usuario.PerfilAtendente {
		return nil, ErrSemPermissao
	}

	atual, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if atual.Status == StatusEmAtendimento {
		// já iniciado: idempotente para quem reabre o link de mensagem
		return atual, nil
	}
	if !CanTransition(atual.Status, StatusEmAtendimento) {
		return nil, ErrTransicaoInvalida
	}

	return s.repo.SetEmAtendimento(ctx, id, util.Now())
}

// Finalizar move para o estado terminal Atendido. Exige reconfirmação da
// senha do próprio usuário e texto de conclusão.
func (s *Service) Finalizar(ctx context.Context, id uuid.UUID, conclusao, senha string, callerID uuid.UUID) (*Atendimento, error) {
	conclusao = strings.TrimSpace(conclusao)
	if conclusao == "" || strings.TrimSpace(senha) == "" {
		return nil, ErrConclusaoObrigatoria
	}

	if err := s.reconfirmarSenha(ctx, callerID, senha); err != nil {
		return nil, err
	}

	atual, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(atual.Status, StatusAtendido) {
		return nil, ErrTransicaoInvalida
	}

	return s.repo.Finalizar(ctx, id, conclusao, util.Now())
}

// Cancelar move para o estado terminal Cancelado. Exige reconfirmação da
// senha e justificativa não vazia.
func (s *Service) Cancelar(ctx context.Context, id uuid.UUID, justificativa, senha string, callerID uuid.UUID) (*Atendimento, error) {
	justificativa = strings.TrimSpace(justificativa)
	if justificativa == "" || strings.TrimSpace(senha) == "" {
		return nil, ErrJustificativaObrigatoria
	}

	if err := s.reconfirmarSenha(ctx, callerID, senha); err != nil {
		return nil, err
	}

	atual, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(atual.Status, StatusCancelado) {
		return nil, ErrTransicaoInvalida
	}

	return s.repo.Cancelar(ctx, id, justificativa, util.Now())
}

// Get busca atendimento pelo id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Atendimento, error) {
	return s.repo.GetByID(ctx, id)
}

// List devolve todos os atendimentos.
func (s *Service) List(ctx context.Context) ([]Atendimento, error) {
	return s.repo.List(ctx)
}

// Stats devolve contadores do painel.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *Service) reconfirmarSenha(ctx context.Context, callerID uuid.UUID, senha string) error {
	caller, err := s.usuarios.Get(ctx, callerID)
	if err != nil {
		return err
	}
	ok, err := auth.Verify(senha, caller.SenhaHash)
	if err != nil || !ok {
		return ErrSenhaIncorreta
	}
	return nil
}

func validarCampos(solicitante, telefone, descricao string) error {
	if err := util.RequireString(solicitante, "solicitante"); err != nil {
		return err
	}
	if err := util.RequireString(telefone, "telefone"); err != nil {
		return err
	}
	return util.RequireString(descricao, "descricao")
}
