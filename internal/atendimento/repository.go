package atendimento

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const colunas = `a.id, a.solicitante, a.telefone, a.abrigo_id, b.nome, a.descricao,
        a.operador_id, a.operador_nome, a.status, a.criado_em, a.finalizado_em,
        a.justificativa_cancelamento, a.conclusao, a.editado_por, a.ultima_atualizacao`

// Repository provê acesso à tabela de atendimentos.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere atendimento com status Aberto.
func (r *Repository) Create(ctx context.Context, input CreateInput, agora time.Time) (*Atendimento, error) {
	const query = `
        WITH inserido AS (
            INSERT INTO atendimentos
                (solicitante, telefone, abrigo_id, descricao, operador_id, operador_nome, status, criado_em, ultima_atualizacao)
            VALUES ($1, $2, $3, $4, $5, $6, 'Aberto', $7, $7)
            RETURNING *
        )
        SELECT ` + colunas + `
        FROM inserido a
        JOIN abrigos b ON b.id = a.abrigo_id
    `

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Solicitante),
		strings.TrimSpace(input.Telefone),
		input.AbrigoID,
		strings.TrimSpace(input.Descricao),
		input.OperadorID,
		input.OperadorNome,
		agora,
	)
	return scanAtendimento(row)
}

// GetByID busca atendimento com nome do abrigo.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Atendimento, error) {
	query := `SELECT ` + colunas + ` FROM atendimentos a JOIN abrigos b ON b.id = a.abrigo_id WHERE a.id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanAtendimento(row)
}

// List devolve atendimentos mais recentes primeiro.
func (r *Repository) List(ctx context.Context) ([]Atendimento, error) {
	query := `SELECT ` + colunas + ` FROM atendimentos a JOIN abrigos b ON b.id = a.abrigo_id ORDER BY a.criado_em DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collect(rows)
}

// Edit atualiza os campos editáveis e registra autor e instante da edição.
// O WHERE restringe a Aberto; edição de não-aberto não muta nada.
func (r *Repository) Edit(ctx context.Context, input EditInput, agora time.Time) (*Atendimento, error) {
	const query = `
        WITH alterado AS (
            UPDATE atendimentos
            SET solicitante = $2, telefone = $3, abrigo_id = $4, descricao = $5,
                editado_por = $6, ultima_atualizacao = $7
            WHERE id = $1 AND status = 'Aberto'
            RETURNING *
        )
        SELECT ` + colunas + `
        FROM alterado a
        JOIN abrigos b ON b.id = a.abrigo_id
    `

	row := r.pool.QueryRow(ctx, query,
		input.ID,
		strings.TrimSpace(input.Solicitante),
		strings.TrimSpace(input.Telefone),
		input.AbrigoID,
		strings.TrimSpace(input.Descricao),
		input.EditadoPor,
		agora,
	)
	at, err := scanAtendimento(row)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNaoEditavel
	}
	return at, err
}

// SetEmAtendimento move Aberto -> Em Atendimento.
func (r *Repository) SetEmAtendimento(ctx context.Context, id uuid.UUID, agora time.Time) (*Atendimento, error) {
	const query = `
        WITH alterado AS (
            UPDATE atendimentos
            SET status = 'Em Atendimento', ultima_atualizacao = $2
            WHERE id = $1 AND status = 'Aberto'
            RETURNING *
        )
        SELECT ` + colunas + `
        FROM alterado a
        JOIN abrigos b ON b.id = a.abrigo_id
    `

	row := r.pool.QueryRow(ctx, query, id, agora)
	return scanAtendimento(row)
}

// Finalizar grava estado terminal Atendido com conclusão.
func (r *Repository) Finalizar(ctx context.Context, id uuid.UUID, conclusao string, agora time.Time) (*Atendimento, error) {
	const query = `
        WITH alterado AS (
            UPDATE atendimentos
            SET status = 'Atendido', conclusao = $2, finalizado_em = $3, ultima_atualizacao = $3
            WHERE id = $1 AND status IN ('Aberto', 'Em Atendimento')
            RETURNING *
        )
        SELECT ` + colunas + `
        FROM alterado a
        JOIN abrigos b ON b.id = a.abrigo_id
    `

	row := r.pool.QueryRow(ctx, query, id, strings.TrimSpace(conclusao), agora)
	return scanAtendimento(row)
}

// Cancelar grava estado terminal Cancelado com justificativa.
func (r *Repository) Cancelar(ctx context.Context, id uuid.UUID, justificativa string, agora time.Time) (*Atendimento, error) {
	const query = `
        WITH alterado AS (
            UPDATE atendimentos
            SET status = 'Cancelado', justificativa_cancelamento = $2, finalizado_em = $3, ultima_atualizacao = $3
            WHERE id = $1 AND status IN ('Aberto', 'Em Atendimento')
            RETURNING *
        )
        SELECT ` + colunas + `
        FROM alterado a
        JOIN abrigos b ON b.id = a.abrigo_id
    `

	row := r.pool.QueryRow(ctx, query, id, strings.TrimSpace(justificativa), agora)
	return scanAtendimento(row)
}

// Stats agrega contadores por status e os cinco mais recentes.
func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	const query = `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE status = 'Aberto'),
            COUNT(*) FILTER (WHERE status = 'Em Atendimento'),
            COUNT(*) FILTER (WHERE status = 'Atendido'),
            COUNT(*) FILTER (WHERE status = 'Cancelado')
        FROM atendimentos
    `

	var stats Stats
	if err := r.pool.QueryRow(ctx, query).
		Scan(&stats.Total, &stats.Abertos, &stats.EmAtendimento, &stats.Atendidos, &stats.Cancelados); err != nil {
		return nil, err
	}

	recentes := `SELECT ` + colunas + ` FROM atendimentos a JOIN abrigos b ON b.id = a.abrigo_id ORDER BY a.criado_em DESC LIMIT 5`
	rows, err := r.pool.Query(ctx, recentes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats.Recentes, err = collect(rows)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func collect(rows pgx.Rows) ([]Atendimento, error) {
	var atendimentos []Atendimento
	for rows.Next() {
		at, err := scanAtendimento(rows)
		if err != nil {
			return nil, err
		}
		atendimentos = append(atendimentos, *at)
	}
	return atendimentos, rows.Err()
}

func scanAtendimento(row pgx.Row) (*Atendimento, error) {
	var (
		at     Atendimento
		status string
	)
	err := row.Scan(&at.ID, &at.Solicitante, &at.Telefone, &at.AbrigoID, &at.AbrigoNome,
		&at.Descricao, &at.OperadorID, &at.OperadorNome, &status, &at.CriadoEm,
		&at.FinalizadoEm, &at.JustificativaCancelamento, &at.Conclusao, &at.EditadoPor,
		&at.UltimaAtualizacao)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	at.Status = Status(status)
	return &at, nil
}
