package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/redeabrigos/atendimento/internal/auth"
	"github.com/redeabrigos/atendimento/internal/repo"
	"github.com/redeabrigos/atendimento/internal/usuario"
	"github.com/redeabrigos/atendimento/internal/util"
)

// Audience identifica tokens emitidos por esta API.
const Audience = "atendimento"

var (
	// ErrInvalidCredentials indica falha na autenticação. Login inexistente e
	// senha errada devolvem o mesmo erro para evitar enumeração de logins.
	ErrInvalidCredentials = errors.New("usuário ou senha incorretos")
	// ErrRefreshInvalid indica refresh token inválido ou expirado.
	ErrRefreshInvalid = errors.New("refresh token inválido")
)

type usuarioRepository interface {
	GetByLogin(ctx context.Context, login string) (*usuario.Usuario, error)
	GetByID(ctx context.Context, id uuid.UUID) (*usuario.Usuario, error)
}

type tokenRepository interface {
	InsertRefreshToken(ctx context.Context, arg repo.InsertRefreshTokenParams) (repo.TokenRefresh, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.TokenRefresh, error)
	InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, audience, keepHash string) error
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra regras de autenticação e sessões.
type AuthService struct {
	usuarios   usuarioRepository
	tokens     tokenRepository
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(usuarios usuarioRepository, tokens tokenRepository, redisClient redisCommander, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{usuarios: usuarios, tokens: tokens, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// Profile descreve o usuário autenticado.
type Profile struct {
	ID     string  `json:"id"`
	Login  string  `json:"login"`
	Nome   *string `json:"nome,omitempty"`
	Perfil string  `json:"perfil"`
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	Subject       uuid.UUID
	Perfil        string
	Profile       *Profile
	RefreshExpiry time.Time
}

// Login autentica pelo par login/senha.
func (s *AuthService) Login(ctx context.Context, login, senha string) (*LoginResult, error) {
	user, err := s.usuarios.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, usuario.ErrNotFound) {
			log.Warn().Msg("login: usuário não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(senha, user.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verificação de senha falhou")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	return s.sessionFor(ctx, user)
}

// Refresh troca refresh token por novos tokens, com rotação.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	record, err := s.tokens.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	if record.Revogado || time.Now().UTC().After(record.Expiracao) || record.Audience != Audience {
		return nil, ErrRefreshInvalid
	}

	status, err := s.redis.Get(ctx, auth.RefreshRedisKey(Audience, hash)).Result()
	if err == redis.Nil {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	if status != "active" {
		return nil, ErrRefreshInvalid
	}

	user, err := s.usuarios.GetByID(ctx, record.Subject)
	if err != nil {
		if errors.Is(err, usuario.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	return s.sessionFor(ctx, user)
}

// Logout revoga refresh token atual.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}

	hash := auth.HashRefreshToken(rawToken)
	if err := s.tokens.RevokeRefreshToken(ctx, hash); err != nil {
		return err
	}
	return s.redis.Del(ctx, auth.RefreshRedisKey(Audience, hash)).Err()
}

func (s *AuthService) sessionFor(ctx context.Context, user *usuario.Usuario) (*LoginResult, error) {
	token, _, err := s.jwt.GenerateAccessToken(user.ID.String(), Audience, user.Perfil, user.NomeExibicao())
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := util.Now().Add(s.refreshTTL)
	if err := s.persistRefresh(ctx, user.ID, refreshHash, expires); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  token,
		RefreshToken: rawRefresh,
		Subject:      user.ID,
		Perfil:       user.Perfil,
		Profile: &Profile{
			ID:     user.ID.String(),
			Login:  user.Login,
			Nome:   user.Nome,
			Perfil: user.Perfil,
		},
		RefreshExpiry: expires,
	}, nil
}

func (s *AuthService) persistRefresh(ctx context.Context, subject uuid.UUID, hash string, expires time.Time) error {
	_, err := s.tokens.InsertRefreshToken(ctx, repo.InsertRefreshTokenParams{
		ID:        uuid.New(),
		Subject:   subject,
		Audience:  Audience,
		TokenHash: hash,
		Expiracao: expires,
		CriadoEm:  util.Now(),
	})
	if err != nil {
		return err
	}

	if err := s.tokens.InvalidateOtherRefreshTokens(ctx, subject, Audience, hash); err != nil {
		return err
	}

	return s.redis.Set(ctx, auth.RefreshRedisKey(Audience, hash), "active", time.Until(expires)).Err()
}
