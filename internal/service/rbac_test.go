package service

import (
	"testing"

	"github.com/redeabrigos/atendimento/internal/usuario"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		perfil  string
		aceitos []string
		want    Decision
	}{
		{"admin sempre passa", usuario.PerfilAdmin, []string{usuario.PerfilAtendente}, Allow},
		{"admin passa mesmo sem conjunto", usuario.PerfilAdmin, nil, Allow},
		{"atendente no conjunto", usuario.PerfilAtendente, []string{usuario.PerfilAtendente}, Allow},
		{"operador fora do conjunto", usuario.PerfilOperador, []string{usuario.PerfilAtendente}, Deny},
		{"perfil vazio", "", []string{usuario.PerfilAtendente}, Deny},
		{"perfil desconhecido", "GERENTE", []string{usuario.PerfilAtendente}, Deny},
		{"case insensitive", "atendente", []string{usuario.PerfilAtendente}, Allow},
		{"conjunto vazio nega não-admin", usuario.PerfilAtendente, nil, Deny},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.perfil, tc.aceitos...); got != tc.want {
				t.Fatalf("Evaluate(%q, %v) = %v, esperado %v", tc.perfil, tc.aceitos, got, tc.want)
			}
		})
	}
}
