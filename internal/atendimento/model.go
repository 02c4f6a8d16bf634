package atendimento

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound                 = errors.New("atendimento não encontrado")
	ErrNaoEditavel              = errors.New("atendimento não pode ser editado porque não está aberto")
	ErrTransicaoInvalida        = errors.New("transição de status inválida")
	ErrSenhaIncorreta           = errors.New("senha incorreta")
	ErrSemPermissao             = errors.New("sem permissão para iniciar atendimentos")
	ErrAbrigoIndisponivel       = errors.New("abrigo inexistente ou inativo")
	ErrJustificativaObrigatoria = errors.New("justificativa e senha são obrigatórios")
	ErrConclusaoObrigatoria     = errors.New("conclusão e senha são obrigatórios")
)

// Status fecha o conjunto de estados do ciclo de vida.
type Status string

const (
	StatusAberto        Status = "Aberto"
	StatusEmAtendimento Status = "Em Atendimento"
	StatusAtendido      Status = "Atendido"
	StatusCancelado     Status = "Cancelado"
)

// ParseStatus converte texto persistido em Status.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.TrimSpace(s)) {
	case StatusAberto:
		return StatusAberto, true
	case StatusEmAtendimento:
		return StatusEmAtendimento, true
	case StatusAtendido:
		return StatusAtendido, true
	case StatusCancelado:
		return StatusCancelado, true
	default:
		return "", false
	}
}

// IsTerminal indica estado final; nenhuma transição sai dele.
func (s Status) IsTerminal() bool {
	return s == StatusAtendido || s == StatusCancelado
}

// transicoes é a tabela fechada de transições permitidas.
var transicoes = map[Status][]Status{
	StatusAberto:        {StatusEmAtendimento, StatusAtendido, StatusCancelado},
	StatusEmAtendimento: {StatusAtendido, StatusCancelado},
}

// CanTransition valida a transição contra a tabela.
func CanTransition(from, to Status) bool {
	for _, allowed := range transicoes[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Atendimento representa uma solicitação de assistência vinculada a um abrigo.
type Atendimento struct {
	ID                        uuid.UUID  `json:"id"`
	Solicitante               string     `json:"solicitante"`
	Telefone                  string     `json:"telefone"`
	AbrigoID                  uuid.UUID  `json:"abrigo_id"`
	AbrigoNome                string     `json:"abrigo_nome,omitempty"`
	Descricao                 string     `json:"descricao"`
	OperadorID                uuid.UUID  `json:"operador_id"`
	OperadorNome              string     `json:"operador_nome"`
	Status                    Status     `json:"status"`
	CriadoEm                  time.Time  `json:"criado_em"`
	FinalizadoEm              *time.Time `json:"finalizado_em,omitempty"`
	JustificativaCancelamento *string    `json:"justificativa_cancelamento,omitempty"`
	Conclusao                 *string    `json:"conclusao,omitempty"`
	EditadoPor                *string    `json:"editado_por,omitempty"`
	UltimaAtualizacao         time.Time  `json:"ultima_atualizacao"`
}

// CreateInput encapsula campos para abertura de atendimento.
type CreateInput struct {
	Solicitante  string
	Telefone     string
	AbrigoID     uuid.UUID
	Descricao    string
	OperadorID   uuid.UUID
	OperadorNome string
}

// EditInput encapsula campos editáveis enquanto o atendimento está aberto.
type EditInput struct {
	ID          uuid.UUID
	Solicitante string
	Telefone    string
	AbrigoID    uuid.UUID
	Descricao   string
	EditadoPor  string
}

// Stats agrega contadores exibidos no painel principal.
type Stats struct {
	Total         int           `json:"total"`
	Abertos       int           `json:"abertos"`
	EmAtendimento int           `json:"em_atendimento"`
	Atendidos     int           `json:"atendidos"`
	Cancelados    int           `json:"cancelados"`
	Recentes      []Atendimento `json:"recentes"`
}
