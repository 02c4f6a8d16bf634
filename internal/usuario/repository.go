package usuario

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/redeabrigos/atendimento/internal/db"
)

const colunas = "id, login, nome, senha_hash, perfil, criado_em, atualizado_em"

// Repository provê acesso à tabela de usuários.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere novo usuário.
func (r *Repository) Create(ctx context.Context, login string, nome *string, senhaHash, perfil string) (*Usuario, error) {
	const query = `
        INSERT INTO usuarios (login, nome, senha_hash, perfil)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + colunas

	row := r.pool.QueryRow(ctx, query, strings.TrimSpace(login), nome, senhaHash, perfil)
	user, err := scanUsuario(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrLoginEmUso
		}
		return nil, err
	}
	return user, nil
}

// GetByID busca usuário pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Usuario, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+colunas+` FROM usuarios WHERE id = $1`, id)
	return scanUsuario(row)
}

// GetByLogin busca usuário pelo login.
func (r *Repository) GetByLogin(ctx context.Context, login string) (*Usuario, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+colunas+` FROM usuarios WHERE login = $1`, strings.TrimSpace(login))
	return scanUsuario(row)
}

// List devolve todos os usuários ordenados por login.
func (r *Repository) List(ctx context.Context) ([]Usuario, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+colunas+` FROM usuarios ORDER BY login`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usuarios []Usuario
	for rows.Next() {
		user, err := scanUsuario(rows)
		if err != nil {
			return nil, err
		}
		usuarios = append(usuarios, *user)
	}
	return usuarios, rows.Err()
}

// Update altera login, nome e perfil; senhaHash vazio mantém a atual.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, login string, nome *string, perfil, senhaHash string) (*Usuario, error) {
	const query = `
        UPDATE usuarios
        SET login = $2,
            nome = $3,
            perfil = $4,
            senha_hash = CASE WHEN $5 = '' THEN senha_hash ELSE $5 END,
            atualizado_em = now()
        WHERE id = $1
        RETURNING ` + colunas

	row := r.pool.QueryRow(ctx, query, id, strings.TrimSpace(login), nome, perfil, senhaHash)
	user, err := scanUsuario(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrLoginEmUso
		}
		return nil, err
	}
	return user, nil
}

// Delete remove o usuário. A FK de atendimentos é RESTRICT; a checagem
// explícita existe para devolver erro de domínio em vez de erro do banco.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	// verificação e exclusão na mesma transação; a FK RESTRICT cobre corridas
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var referenced bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM atendimentos WHERE operador_id = $1)`, id).Scan(&referenced)
		if err != nil {
			return err
		}
		if referenced {
			return ErrEmUso
		}

		tag, err := tx.Exec(ctx, `DELETE FROM usuarios WHERE id = $1`, id)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return ErrEmUso
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func scanUsuario(row pgx.Row) (*Usuario, error) {
	var u Usuario
	if err := row.Scan(&u.ID, &u.Login, &u.Nome, &u.SenhaHash, &u.Perfil, &u.CriadoEm, &u.AtualizadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
