package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/redeabrigos/atendimento/internal/usuario"
)

// ListUsuarios lista usuários cadastrados (sem hash de senha).
func (h *Handler) ListUsuarios(w http.ResponseWriter, r *http.Request) {
	usuarios, err := h.usuarios.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar usuários", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"usuarios": usuarios})
}

// CreateUsuario cadastra novo usuário.
func (h *Handler) CreateUsuario(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Login  string  `json:"login"`
		Nome   *string `json:"nome"`
		Senha  string  `json:"senha"`
		Perfil string  `json:"perfil"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	u, err := h.usuarios.Create(r.Context(), usuario.CreateInput{
		Login:  payload.Login,
		Nome:   payload.Nome,
		Senha:  payload.Senha,
		Perfil: payload.Perfil,
	})
	if err != nil {
		writeUsuarioError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"usuario": u})
}

// GetUsuario devolve um usuário pelo id.
func (h *Handler) GetUsuario(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	u, err := h.usuarios.Get(r.Context(), id)
	if err != nil {
		writeUsuarioError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"usuario": u})
}

// UpdateUsuario altera login, nome, perfil e opcionalmente a senha.
func (h *Handler) UpdateUsuario(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Login  string  `json:"login"`
		Nome   *string `json:"nome"`
		Senha  *string `json:"senha"`
		Perfil string  `json:"perfil"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	u, err := h.usuarios.Update(r.Context(), usuario.UpdateInput{
		ID:     id,
		Login:  payload.Login,
		Nome:   payload.Nome,
		Senha:  payload.Senha,
		Perfil: payload.Perfil,
	})
	if err != nil {
		writeUsuarioError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"usuario": u})
}

// DeleteUsuario remove usuário sem atendimentos vinculados.
func (h *Handler) DeleteUsuario(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.usuarios.Delete(r.Context(), id); err != nil {
		writeUsuarioError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeUsuarioError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usuario.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "usuário não encontrado", nil)
	case errors.Is(err, usuario.ErrLoginEmUso):
		WriteError(w, http.StatusConflict, "CONFLICT", "Login já existe! Escolha outro.", nil)
	case errors.Is(err, usuario.ErrEmUso):
		WriteError(w, http.StatusConflict, "CONFLICT", "usuário possui atendimentos vinculados e não pode ser excluído", nil)
	case errors.Is(err, usuario.ErrPerfilInvalido):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "perfil inválido", nil)
	default:
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	}
}
