package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/redeabrigos/atendimento/internal/atendimento"
	httpmiddleware "github.com/redeabrigos/atendimento/internal/http/middleware"
)

// ListAtendimentos lista chamados mais recentes primeiro.
func (h *Handler) ListAtendimentos(w http.ResponseWriter, r *http.Request) {
	atendimentos, err := h.atendimentos.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar atendimentos", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"atendimentos": atendimentos})
}

// CreateAtendimento abre novo chamado em nome do operador logado.
func (h *Handler) CreateAtendimento(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Solicitante string `json:"solicitante"`
		Telefone    string `json:"telefone"`
		AbrigoID    string `json:"abrigo"`
		Descricao   string `json:"descricao"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	abrigoID, err := parseUUIDField(payload.AbrigoID)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "abrigo inválido", nil)
		return
	}

	operadorID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	at, err := h.atendimentos.Create(r.Context(), atendimento.CreateInput{
		Solicitante:  payload.Solicitante,
		Telefone:     payload.Telefone,
		AbrigoID:     abrigoID,
		Descricao:    payload.Descricao,
		OperadorID:   operadorID,
		OperadorNome: httpmiddleware.GetNome(r.Context()),
	})
	if err != nil {
		writeAtendimentoError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"atendimento": at})
}

// GetAtendimento devolve detalhes do chamado.
func (h *Handler) GetAtendimento(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	at, err := h.atendimentos.Get(r.Context(), id)
	if err != nil {
		writeAtendimentoError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"atendimento": at})
}

// EditAtendimento altera campos editáveis de um chamado aberto.
func (h *Handler) EditAtendimento(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Solicitante string `json:"solicitante"`
		Telefone    string `json:"telefone"`
		AbrigoID    string `json:"abrigo"`
		Descricao   string `json:"descricao"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	abrigoID, err := parseUUIDField(payload.AbrigoID)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "abrigo inválido", nil)
		return
	}

	at, err := h.atendimentos.Edit(r.Context(), atendimento.EditInput{
		ID:          id,
		Solicitante: payload.Solicitante,
		Telefone:    payload.Telefone,
		AbrigoID:    abrigoID,
		Descricao:   payload.Descricao,
		EditadoPor:  httpmiddleware.GetNome(r.Context()),
	})
	if err != nil {
		writeAtendimentoError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"atendimento": at})
}

// FinalizarAtendimento fecha o chamado como Atendido. Pede reconfirmação de
// senha e devolve o contrato {success, error?} consumido pelo painel.
func (h *Handler) FinalizarAtendimento(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Conclusao string `json:"conclusao"`
		Senha     string `json:"senha"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	callerID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	if _, err := h.atendimentos.Finalizar(r.Context(), id, payload.Conclusao, payload.Senha, callerID); err != nil {
		writeTransitionResult(w, err)
		return
	}

	writeTransitionResult(w, nil)
}

// CancelarAtendimento fecha o chamado como Cancelado com justificativa.
func (h *Handler) CancelarAtendimento(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Justificativa string `json:"justificativa"`
		Senha         string `json:"senha"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	callerID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	if _, err := h.atendimentos.Cancelar(r.Context(), id, payload.Justificativa, payload.Senha, callerID); err != nil {
		writeTransitionResult(w, err)
		return
	}

	writeTransitionResult(w, nil)
}

// AtendimentoWhatsApp inicia o atendimento e redireciona para o deep link de
// mensagem. A transição é explícita; a montagem do link é só apresentação.
func (h *Handler) AtendimentoWhatsApp(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	at, err := h.atendimentos.Iniciar(r.Context(), id, httpmiddleware.GetPerfil(r.Context()))
	if err != nil {
		writeAtendimentoError(w, err)
		return
	}

	ab, err := h.abrigos.Get(r.Context(), at.AbrigoID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar o abrigo", nil)
		return
	}

	http.Redirect(w, r, atendimento.WhatsAppLink(at, ab), http.StatusFound)
}

// AtendimentoPDF devolve o documento do chamado como PDF inline.
func (h *Handler) AtendimentoPDF(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	at, err := h.atendimentos.Get(r.Context(), id)
	if err != nil {
		writeAtendimentoError(w, err)
		return
	}

	ab, err := h.abrigos.Get(r.Context(), at.AbrigoID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar o abrigo", nil)
		return
	}

	doc, err := atendimento.PDF(at, ab, h.cfg.DisplayTZ)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível gerar o PDF", nil)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=atendimento_%s.pdf", at.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// writeTransitionResult mantém o contrato {success, error?} das ações do
// painel de atendimento.
func writeTransitionResult(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	if err == nil {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
		return
	}

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, atendimento.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, atendimento.ErrSenhaIncorreta):
		status = http.StatusUnauthorized
	case errors.Is(err, atendimento.ErrTransicaoInvalida),
		errors.Is(err, atendimento.ErrConclusaoObrigatoria),
		errors.Is(err, atendimento.ErrJustificativaObrigatoria):
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
		err = errors.New("erro interno")
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": err.Error()})
}

func writeAtendimentoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, atendimento.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "atendimento não encontrado", nil)
	case errors.Is(err, atendimento.ErrNaoEditavel):
		WriteError(w, http.StatusConflict, "VALIDATION", "Este chamado não pode ser editado porque não está aberto.", nil)
	case errors.Is(err, atendimento.ErrSemPermissao):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "Você não tem permissão para iniciar atendimentos.", nil)
	case errors.Is(err, atendimento.ErrTransicaoInvalida):
		WriteError(w, http.StatusConflict, "VALIDATION", "transição de status inválida", nil)
	case errors.Is(err, atendimento.ErrAbrigoIndisponivel):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "abrigo inexistente ou inativo", nil)
	case errors.Is(err, atendimento.ErrSenhaIncorreta):
		WriteError(w, http.StatusUnauthorized, "AUTH", "Senha incorreta.", nil)
	default:
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	}
}
