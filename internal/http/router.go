package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/redeabrigos/atendimento/internal/abrigo"
	"github.com/redeabrigos/atendimento/internal/atendimento"
	"github.com/redeabrigos/atendimento/internal/config"
	httpmiddleware "github.com/redeabrigos/atendimento/internal/http/middleware"
	"github.com/redeabrigos/atendimento/internal/service"
	"github.com/redeabrigos/atendimento/internal/usuario"
)

// Handler agrega dependências dos handlers HTTP.
type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	authService   *service.AuthService
	usuarios      *usuario.Service
	abrigos       *abrigo.Service
	atendimentos  *atendimento.Service
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService) (http.Handler, error) {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	usuarioService := usuario.NewService(usuario.NewRepository(pool))
	abrigoService := abrigo.NewService(abrigo.NewRepository(pool))
	atendimentoService := atendimento.NewService(atendimento.NewRepository(pool), abrigoService, usuarioService)

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		authService:   authService,
		usuarios:      usuarioService,
		abrigos:       abrigoService,
		atendimentos:  atendimentoService,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		devCookies:    devCookies,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		public.Get("/api/abrigo/{id}", h.AbrigoLookup)

		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Login)
			auth.Post("/refresh", h.Refresh)
			auth.Post("/logout", h.Logout)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)
		private.Get("/principal", h.Principal)

		private.Get("/atendimentos", h.ListAtendimentos)
		private.Post("/operador/novo-chamado", h.CreateAtendimento)
		private.Get("/atendimento/{id}", h.GetAtendimento)
		private.Put("/atendimento/editar/{id}", h.EditAtendimento)
		private.Post("/finalizar_atendimento/{id}", h.FinalizarAtendimento)
		private.Post("/atendimento/cancelar/{id}/ajax", h.CancelarAtendimento)
		private.Get("/atendimento/{id}/pdf", h.AtendimentoPDF)

		private.Group(func(iniciar chi.Router) {
			iniciar.Use(httpmiddleware.RequirePerfis(usuario.PerfilAtendente))
			iniciar.Get("/atendimento/whatsapp/{id}", h.AtendimentoWhatsApp)
		})

		private.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.RequirePerfis(usuario.PerfilAdmin))

			admin.Route("/config/abrigos", func(ab chi.Router) {
				ab.Get("/", h.ListAbrigos)
				ab.Post("/", h.CreateAbrigo)
				ab.Get("/{id}", h.GetAbrigo)
				ab.Put("/{id}", h.UpdateAbrigo)
			})

			admin.Route("/config/usuarios", func(u chi.Router) {
				u.Get("/", h.ListUsuarios)
				u.Post("/", h.CreateUsuario)
				u.Get("/{id}", h.GetUsuario)
				u.Put("/{id}", h.UpdateUsuario)
				u.Delete("/{id}", h.DeleteUsuario)
			})
		})
	})

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready verifica dependências (banco e redis).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "banco indisponível", nil)
		return
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "redis indisponível", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Me devolve identidade da sessão atual.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	user, err := h.usuarios.Get(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "usuário não encontrado", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"usuario": service.Profile{
		ID:     user.ID.String(),
		Login:  user.Login,
		Nome:   user.Nome,
		Perfil: user.Perfil,
	}})
}

// Principal devolve estatísticas do painel inicial.
func (h *Handler) Principal(w http.ResponseWriter, r *http.Request) {
	stats, err := h.atendimentos.Stats(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar o painel", nil)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) subjectUUID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(httpmiddleware.GetSubject(r.Context()))
}

func urlParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(chi.URLParam(r, name)))
}

func parseUUIDField(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}
