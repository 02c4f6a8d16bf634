package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/redeabrigos/atendimento/internal/abrigo"
)

type abrigoPayload struct {
	Nome       string   `json:"nome"`
	Status     string   `json:"status"`
	Logradouro *string  `json:"logradouro"`
	Bairro     *string  `json:"bairro"`
	CEP        *string  `json:"cep"`
	Cidade     *string  `json:"cidade"`
	Estado     *string  `json:"estado"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

func (p abrigoPayload) input() abrigo.Input {
	return abrigo.Input{
		Nome:       p.Nome,
		Status:     p.Status,
		Logradouro: p.Logradouro,
		Bairro:     p.Bairro,
		CEP:        p.CEP,
		Cidade:     p.Cidade,
		Estado:     p.Estado,
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
	}
}

// ListAbrigos lista abrigos; ?ativos=1 restringe aos ofertáveis.
func (h *Handler) ListAbrigos(w http.ResponseWriter, r *http.Request) {
	var (
		abrigos []abrigo.Abrigo
		err     error
	)
	if r.URL.Query().Get("ativos") == "1" {
		abrigos, err = h.abrigos.ListAtivos(r.Context())
	} else {
		abrigos, err = h.abrigos.List(r.Context())
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar abrigos", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"abrigos": abrigos})
}

// CreateAbrigo cadastra novo abrigo.
func (h *Handler) CreateAbrigo(w http.ResponseWriter, r *http.Request) {
	var payload abrigoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	ab, err := h.abrigos.Create(r.Context(), payload.input())
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"abrigo": ab})
}

// GetAbrigo devolve detalhes do abrigo.
func (h *Handler) GetAbrigo(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	ab, err := h.abrigos.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, abrigo.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "abrigo não encontrado", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar abrigo", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"abrigo": ab})
}

// UpdateAbrigo altera abrigo existente.
func (h *Handler) UpdateAbrigo(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload abrigoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	ab, err := h.abrigos.Update(r.Context(), id, payload.input())
	if err != nil {
		if errors.Is(err, abrigo.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "abrigo não encontrado", nil)
			return
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"abrigo": ab})
}

// AbrigoLookup é o endpoint público de consulta de endereço usado pelo
// formulário de novo chamado.
func (h *Handler) AbrigoLookup(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		writeLookupErro(w)
		return
	}

	ab, err := h.abrigos.Get(r.Context(), id)
	if err != nil {
		writeLookupErro(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"logradouro": ab.Logradouro,
		"bairro":     ab.Bairro,
		"cep":        ab.CEP,
	})
}

func writeLookupErro(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]any{"erro": "Abrigo não encontrado"})
}
