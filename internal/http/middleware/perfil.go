package middleware

import (
	"net/http"

	"github.com/redeabrigos/atendimento/internal/service"
)

// RequirePerfis libera a rota para os perfis declarados. A avaliação é a
// função pura service.Evaluate; Admin passa por qualquer conjunto.
func RequirePerfis(aceitos ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			perfil := GetPerfil(r.Context())
			if perfil == "" {
				writeError(w, http.StatusUnauthorized, "AUTH", "sessão ausente")
				return
			}

			if service.Evaluate(perfil, aceitos...) != service.Allow {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
