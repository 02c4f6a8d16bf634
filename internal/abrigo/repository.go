package abrigo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const colunas = "id, nome, status, logradouro, bairro, cep, cidade, estado, latitude, longitude, criado_em, atualizado_em"

// Repository provê acesso à tabela de abrigos.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere novo abrigo.
func (r *Repository) Create(ctx context.Context, input Input) (*Abrigo, error) {
	const query = `
        INSERT INTO abrigos (nome, status, logradouro, bairro, cep, cidade, estado, latitude, longitude)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + colunas

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Nome),
		input.Status,
		input.Logradouro,
		input.Bairro,
		input.CEP,
		input.Cidade,
		input.Estado,
		input.Latitude,
		input.Longitude,
	)
	return scanAbrigo(row)
}

// Update altera abrigo existente.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input Input) (*Abrigo, error) {
	const query = `
        UPDATE abrigos
        SET nome = $2, status = $3, logradouro = $4, bairro = $5, cep = $6,
            cidade = $7, estado = $8, latitude = $9, longitude = $10,
            atualizado_em = now()
        WHERE id = $1
        RETURNING ` + colunas

	row := r.pool.QueryRow(ctx, query,
		id,
		strings.TrimSpace(input.Nome),
		input.Status,
		input.Logradouro,
		input.Bairro,
		input.CEP,
		input.Cidade,
		input.Estado,
		input.Latitude,
		input.Longitude,
	)
	return scanAbrigo(row)
}

// GetByID busca abrigo pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Abrigo, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+colunas+` FROM abrigos WHERE id = $1`, id)
	return scanAbrigo(row)
}

// List devolve todos os abrigos; apenasAtivos restringe aos ofertáveis.
func (r *Repository) List(ctx context.Context, apenasAtivos bool) ([]Abrigo, error) {
	query := `SELECT ` + colunas + ` FROM abrigos`
	if apenasAtivos {
		query += ` WHERE status = 'Ativo'`
	}
	query += ` ORDER BY nome`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var abrigos []Abrigo
	for rows.Next() {
		a, err := scanAbrigo(rows)
		if err != nil {
			return nil, err
		}
		abrigos = append(abrigos, *a)
	}
	return abrigos, rows.Err()
}

func scanAbrigo(row pgx.Row) (*Abrigo, error) {
	var a Abrigo
	err := row.Scan(&a.ID, &a.Nome, &a.Status, &a.Logradouro, &a.Bairro, &a.CEP,
		&a.Cidade, &a.Estado, &a.Latitude, &a.Longitude, &a.CriadoEm, &a.AtualizadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
