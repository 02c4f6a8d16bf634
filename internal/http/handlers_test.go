package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redeabrigos/atendimento/internal/abrigo"
	"github.com/redeabrigos/atendimento/internal/atendimento"
	"github.com/redeabrigos/atendimento/internal/auth"
	"github.com/redeabrigos/atendimento/internal/config"
	httpmiddleware "github.com/redeabrigos/atendimento/internal/http/middleware"
	"github.com/redeabrigos/atendimento/internal/usuario"
)

type stubUsuarios struct {
	usuarios map[uuid.UUID]*usuario.Usuario
}

func (s *stubUsuarios) Create(ctx context.Context, login string, nome *string, senhaHash, perfil string) (*usuario.Usuario, error) {
	for _, u := range s.usuarios {
		if u.Login == login {
			return nil, usuario.ErrLoginEmUso
		}
	}
	u := &usuario.Usuario{ID: uuid.New(), Login: login, Nome: nome, SenhaHash: senhaHash, Perfil: perfil, CriadoEm: time.Now()}
	s.usuarios[u.ID] = u
	return u, nil
}

func (s *stubUsuarios) GetByID(ctx context.Context, id uuid.UUID) (*usuario.Usuario, error) {
	u, ok := s.usuarios[id]
	if !ok {
		return nil, usuario.ErrNotFound
	}
	return u, nil
}

func (s *stubUsuarios) GetByLogin(ctx context.Context, login string) (*usuario.Usuario, error) {
	for _, u := range s.usuarios {
		if u.Login == login {
			return u, nil
		}
	}
	return nil, usuario.ErrNotFound
}

func (s *stubUsuarios) List(ctx context.Context) ([]usuario.Usuario, error) {
	out := make([]usuario.Usuario, 0, len(s.usuarios))
	for _, u := range s.usuarios {
		out = append(out, *u)
	}
	return out, nil
}

func (s *stubUsuarios) Update(ctx context.Context, id uuid.UUID, login string, nome *string, perfil, senhaHash string) (*usuario.Usuario, error) {
	u, ok := s.usuarios[id]
	if !ok {
		return nil, usuario.ErrNotFound
	}
	u.Login = login
	u.Nome = nome
	u.Perfil = perfil
	if senhaHash != "" {
		u.SenhaHash = senhaHash
	}
	return u, nil
}

func (s *stubUsuarios) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.usuarios[id]; !ok {
		return usuario.ErrNotFound
	}
	delete(s.usuarios, id)
	return nil
}

type stubAbrigos struct {
	abrigos map[uuid.UUID]*abrigo.Abrigo
}

func (s *stubAbrigos) Create(ctx context.Context, input abrigo.Input) (*abrigo.Abrigo, error) {
	ab := &abrigo.Abrigo{
		ID: uuid.New(), Nome: input.Nome, Status: input.Status,
		Logradouro: input.Logradouro, Bairro: input.Bairro, CEP: input.CEP,
		Cidade: input.Cidade, Estado: input.Estado,
		Latitude: input.Latitude, Longitude: input.Longitude,
		CriadoEm: time.Now(),
	}
	s.abrigos[ab.ID] = ab
	return ab, nil
}

func (s *stubAbrigos) Update(ctx context.Context, id uuid.UUID, input abrigo.Input) (*abrigo.Abrigo, error) {
	ab, ok := s.abrigos[id]
	if !ok {
		return nil, abrigo.ErrNotFound
	}
	ab.Nome = input.Nome
	ab.Status = input.Status
	return ab, nil
}

func (s *stubAbrigos) GetByID(ctx context.Context, id uuid.UUID) (*abrigo.Abrigo, error) {
	ab, ok := s.abrigos[id]
	if !ok {
		return nil, abrigo.ErrNotFound
	}
	return ab, nil
}

func (s *stubAbrigos) List(ctx context.Context, apenasAtivos bool) ([]abrigo.Abrigo, error) {
	out := make([]abrigo.Abrigo, 0, len(s.abrigos))
	for _, ab := range s.abrigos {
		if apenasAtivos && ab.Status != abrigo.StatusAtivo {
			continue
		}
		out = append(out, *ab)
	}
	return out, nil
}

type stubAtendimentos struct {
	atendimentos map[uuid.UUID]*atendimento.Atendimento
}

func (s *stubAtendimentos) Create(ctx context.Context, input atendimento.CreateInput, agora time.Time) (*atendimento.Atendimento, error) {
	at := &atendimento.Atendimento{
		ID:                uuid.New(),
		Solicitante:       input.Solicitante,
		Telefone:          input.Telefone,
		AbrigoID:          input.AbrigoID,
		Descricao:         input.Descricao,
		OperadorID:        input.OperadorID,
		OperadorNome:      input.OperadorNome,
		Status:            atendimento.StatusAberto,
		CriadoEm:          agora,
		UltimaAtualizacao: agora,
	}
	s.atendimentos[at.ID] = at
	return at, nil
}

func (s *stubAtendimentos) GetByID(ctx context.Context, id uuid.UUID) (*atendimento.Atendimento, error) {
	at, ok := s.atendimentos[id]
	if !ok {
		return nil, atendimento.ErrNotFound
	}
	clone := *at
	return &clone, nil
}

func (s *stubAtendimentos) List(ctx context.Context) ([]atendimento.Atendimento, error) {
	out := make([]atendimento.Atendimento, 0, len(s.atendimentos))
	for _, at := range s.atendimentos {
		out = append(out, *at)
	}
	return out, nil
}

func (s *stubAtendimentos) Edit(ctx context.Context, input atendimento.EditInput, agora time.Time) (*atendimento.Atendimento, error) {
	at, ok := s.atendimentos[input.ID]
	if !ok || at.Status != atendimento.StatusAberto {
		return nil, atendimento.ErrNaoEditavel
	}
	at.Solicitante = input.Solicitante
	at.Telefone = input.Telefone
	at.AbrigoID = input.AbrigoID
	at.Descricao = input.Descricao
	at.EditadoPor = &input.EditadoPor
	at.UltimaAtualizacao = agora
	clone := *at
	return &clone, nil
}

func (s *stubAtendimentos) SetEmAtendimento(ctx context.Context, id uuid.UUID, agora time.Time) (*atendimento.Atendimento, error) {
	at := s.atendimentos[id]
	at.Status = atendimento.StatusEmAtendimento
	at.UltimaAtualizacao = agora
	clone := *at
	return &clone, nil
}

func (s *stubAtendimentos) Finalizar(ctx context.Context, id uuid.UUID, conclusao string, agora time.Time) (*atendimento.Atendimento, error) {
	at := s.atendimentos[id]
	at.Status = atendimento.StatusAtendido
	at.Conclusao = &conclusao
	at.FinalizadoEm = &agora
	at.UltimaAtualizacao = agora
	clone := *at
	return &clone, nil
}

func (s *stubAtendimentos) Cancelar(ctx context.Context, id uuid.UUID, justificativa string, agora time.Time) (*atendimento.Atendimento, error) {
	at := s.atendimentos[id]
	at.Status = atendimento.StatusCancelado
	at.JustificativaCancelamento = &justificativa
	at.FinalizadoEm = &agora
	at.UltimaAtualizacao = agora
	clone := *at
	return &clone, nil
}

func (s *stubAtendimentos) Stats(ctx context.Context) (*atendimento.Stats, error) {
	stats := &atendimento.Stats{Recentes: []atendimento.Atendimento{}}
	for _, at := range s.atendimentos {
		stats.Total++
		switch at.Status {
		case atendimento.StatusAberto:
			stats.Abertos++
		case atendimento.StatusEmAtendimento:
			stats.EmAtendimento++
		case atendimento.StatusAtendido:
			stats.Atendidos++
		case atendimento.StatusCancelado:
			stats.Cancelados++
		}
	}
	return stats, nil
}

type testEnv struct {
	handler  *Handler
	router   chi.Router
	operador *usuario.Usuario
	senha    string
	abrigoID uuid.UUID
	ats      *stubAtendimentos
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	senha := "SenhaForte123!"
	hash, err := auth.Hash(senha)
	if err != nil {
		t.Fatalf("hash senha: %v", err)
	}

	nome := "Maria Silva"
	operador := &usuario.Usuario{ID: uuid.New(), Login: "maria", Nome: &nome, SenhaHash: hash, Perfil: usuario.PerfilAtendente}

	logradouro := "Rua das Flores, 10"
	bairro := "Centro"
	cep := "58100-000"
	abrigoAtivo := &abrigo.Abrigo{
		ID: uuid.New(), Nome: "Abrigo Central", Status: abrigo.StatusAtivo,
		Logradouro: &logradouro, Bairro: &bairro, CEP: &cep,
	}

	usuarios := &stubUsuarios{usuarios: map[uuid.UUID]*usuario.Usuario{operador.ID: operador}}
	abrigos := &stubAbrigos{abrigos: map[uuid.UUID]*abrigo.Abrigo{abrigoAtivo.ID: abrigoAtivo}}
	ats := &stubAtendimentos{atendimentos: make(map[uuid.UUID]*atendimento.Atendimento)}

	usuarioService := usuario.NewService(usuarios)
	abrigoService := abrigo.NewService(abrigos)
	atendimentoService := atendimento.NewService(ats, abrigoService, usuarioService)

	h := &Handler{
		cfg:          &config.Config{DisplayTZ: time.UTC},
		usuarios:     usuarioService,
		abrigos:      abrigoService,
		atendimentos: atendimentoService,
	}

	r := chi.NewRouter()
	r.Get("/api/abrigo/{id}", h.AbrigoLookup)
	r.Get("/atendimentos", h.ListAtendimentos)
	r.Post("/operador/novo-chamado", h.CreateAtendimento)
	r.Get("/atendimento/{id}", h.GetAtendimento)
	r.Put("/atendimento/editar/{id}", h.EditAtendimento)
	r.Post("/finalizar_atendimento/{id}", h.FinalizarAtendimento)
	r.Post("/atendimento/cancelar/{id}/ajax", h.CancelarAtendimento)
	r.Get("/atendimento/{id}/pdf", h.AtendimentoPDF)
	r.Group(func(iniciar chi.Router) {
		iniciar.Use(httpmiddleware.RequirePerfis(usuario.PerfilAtendente))
		iniciar.Get("/atendimento/whatsapp/{id}", h.AtendimentoWhatsApp)
	})

	return &testEnv{handler: h, router: r, operador: operador, senha: senha, abrigoID: abrigoAtivo.ID, ats: ats}
}

func (e *testEnv) request(t *testing.T, method, path string, body any, perfil string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	ctx := req.Context()
	ctx = context.WithValue(ctx, httpmiddleware.ContextKeySubject, e.operador.ID.String())
	ctx = context.WithValue(ctx, httpmiddleware.ContextKeyPerfil, perfil)
	ctx = context.WithValue(ctx, httpmiddleware.ContextKeyNome, "Maria Silva")
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) abrir(t *testing.T) uuid.UUID {
	t.Helper()

	rec := e.request(t, http.MethodPost, "/operador/novo-chamado", map[string]any{
		"solicitante": "João da Silva",
		"telefone":    "83999990000",
		"abrigo":      e.abrigoID.String(),
		"descricao":   "Precisa de abrigo para a noite",
	}, usuario.PerfilOperador)
	if rec.Code != http.StatusCreated {
		t.Fatalf("abrir chamado: status %d corpo %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Atendimento atendimento.Atendimento `json:"atendimento"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode resposta: %v", err)
	}
	return resp.Data.Atendimento.ID
}

func TestCreateAtendimentoHandler(t *testing.T) {
	e := newTestEnv(t)
	id := e.abrir(t)

	rec := e.request(t, http.MethodGet, "/atendimento/"+id.String(), nil, usuario.PerfilOperador)
	if rec.Code != http.StatusOK {
		t.Fatalf("buscar chamado: status %d", rec.Code)
	}

	rec = e.request(t, http.MethodGet, "/atendimento/"+uuid.NewString(), nil, usuario.PerfilOperador)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("chamado inexistente: status %d", rec.Code)
	}
}

func TestCreateAtendimentoAbrigoInvalido(t *testing.T) {
	e := newTestEnv(t)

	rec := e.request(t, http.MethodPost, "/operador/novo-chamado", map[string]any{
		"solicitante": "João",
		"telefone":    "83999990000",
		"abrigo":      uuid.NewString(),
		"descricao":   "teste",
	}, usuario.PerfilOperador)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("esperado 400 para abrigo inexistente, veio %d", rec.Code)
	}
}

func TestFinalizarHandlerContrato(t *testing.T) {
	e := newTestEnv(t)
	id := e.abrir(t)

	rec := e.request(t, http.MethodPost, "/finalizar_atendimento/"+id.String(), map[string]any{
		"conclusao": "resolvido",
		"senha":     "senha-errada",
	}, usuario.PerfilAtendente)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("senha errada: status %d corpo %s", rec.Code, rec.Body.String())
	}

	rec = e.request(t, http.MethodPost, "/finalizar_atendimento/"+id.String(), map[string]any{
		"conclusao": "resolvido",
		"senha":     e.senha,
	}, usuario.PerfilAtendente)
	if rec.Code != http.StatusOK {
		t.Fatalf("finalizar: status %d corpo %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || !resp.Success {
		t.Fatalf("contrato success esperado, corpo %s", rec.Body.String())
	}
}

func TestCancelarHandlerExigeJustificativa(t *testing.T) {
	e := newTestEnv(t)
	id := e.abrir(t)

	rec := e.request(t, http.MethodPost, "/atendimento/cancelar/"+id.String()+"/ajax", map[string]any{
		"justificativa": "",
		"senha":         e.senha,
	}, usuario.PerfilAtendente)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("justificativa vazia: status %d", rec.Code)
	}

	rec = e.request(t, http.MethodPost, "/atendimento/cancelar/"+id.String()+"/ajax", map[string]any{
		"justificativa": "solicitante desistiu",
		"senha":         e.senha,
	}, usuario.PerfilAtendente)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancelar: status %d corpo %s", rec.Code, rec.Body.String())
	}
}

func TestEditarSomenteAbertoHandler(t *testing.T) {
	e := newTestEnv(t)
	id := e.abrir(t)

	payload := map[string]any{
		"solicitante": "João Editado",
		"telefone":    "83999990000",
		"abrigo":      e.abrigoID.String(),
		"descricao":   "atualizado",
	}

	rec := e.request(t, http.MethodPut, "/atendimento/editar/"+id.String(), payload, usuario.PerfilOperador)
	if rec.Code != http.StatusOK {
		t.Fatalf("editar aberto: status %d corpo %s", rec.Code, rec.Body.String())
	}

	rec = e.request(t, http.MethodPost, "/finalizar_atendimento/"+id.String(), map[string]any{
		"conclusao": "resolvido",
		"senha":     e.senha,
	}, usuario.PerfilAtendente)
	if rec.Code != http.StatusOK {
		t.Fatalf("finalizar: status %d", rec.Code)
	}

	rec = e.request(t, http.MethodPut, "/atendimento/editar/"+id.String(), payload, usuario.PerfilOperador)
	if rec.Code != http.StatusConflict {
		t.Fatalf("editar finalizado deveria dar 409, veio %d", rec.Code)
	}
}

func TestWhatsAppHandler(t *testing.T) {
	e := newTestEnv(t)
	id := e.abrir(t)

	rec := e.request(t, http.MethodGet, "/atendimento/whatsapp/"+id.String(), nil, usuario.PerfilOperador)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("operador deveria receber 403, veio %d", rec.Code)
	}

	rec = e.request(t, http.MethodGet, "/atendimento/whatsapp/"+id.String(), nil, usuario.PerfilAtendente)
	if rec.Code != http.StatusFound {
		t.Fatalf("atendente deveria ser redirecionado, veio %d", rec.Code)
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "https://api.whatsapp.com/send?text=") {
		t.Fatalf("location inesperado: %s", location)
	}

	// a visita move o chamado para Em Atendimento
	at := e.ats.atendimentos[id]
	if at.Status != atendimento.StatusEmAtendimento {
		t.Fatalf("status após whatsapp: %q", at.Status)
	}
}

func TestAbrigoLookupHandler(t *testing.T) {
	e := newTestEnv(t)

	rec := e.request(t, http.MethodGet, "/api/abrigo/"+e.abrigoID.String(), nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("lookup: status %d", rec.Code)
	}
	var resp map[string]*string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode lookup: %v", err)
	}
	if resp["logradouro"] == nil || *resp["logradouro"] != "Rua das Flores, 10" {
		t.Fatalf("logradouro inesperado: %v", resp["logradouro"])
	}

	rec = e.request(t, http.MethodGet, "/api/abrigo/"+uuid.NewString(), nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("lookup inexistente: status %d", rec.Code)
	}
	var erro map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &erro); err != nil || erro["erro"] == "" {
		t.Fatalf("corpo de erro inesperado: %s", rec.Body.String())
	}
}

func TestAtendimentoPDFHandler(t *testing.T) {
	e := newTestEnv(t)
	id := e.abrir(t)

	rec := e.request(t, http.MethodGet, "/atendimento/"+id.String()+"/pdf", nil, usuario.PerfilAtendente)
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf: status %d corpo %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content-type inesperado: %s", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("pdf vazio")
	}
}
