package usuario

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/redeabrigos/atendimento/internal/auth"
)

type stubRepo struct {
	usuarios map[uuid.UUID]*Usuario
}

func (s *stubRepo) Create(ctx context.Context, login string, nome *string, senhaHash, perfil string) (*Usuario, error) {
	for _, u := range s.usuarios {
		if u.Login == login {
			return nil, ErrLoginEmUso
		}
	}
	u := &Usuario{ID: uuid.New(), Login: login, Nome: nome, SenhaHash: senhaHash, Perfil: perfil}
	s.usuarios[u.ID] = u
	return u, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (*Usuario, error) {
	u, ok := s.usuarios[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *stubRepo) GetByLogin(ctx context.Context, login string) (*Usuario, error) {
	for _, u := range s.usuarios {
		if u.Login == login {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubRepo) List(ctx context.Context) ([]Usuario, error) {
	out := make([]Usuario, 0, len(s.usuarios))
	for _, u := range s.usuarios {
		out = append(out, *u)
	}
	return out, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, login string, nome *string, perfil, senhaHash string) (*Usuario, error) {
	u, ok := s.usuarios[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Login = login
	u.Nome = nome
	u.Perfil = perfil
	if senhaHash != "" {
		u.SenhaHash = senhaHash
	}
	return u, nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.usuarios[id]; !ok {
		return ErrNotFound
	}
	delete(s.usuarios, id)
	return nil
}

func TestCreateNormalizaPerfil(t *testing.T) {
	svc := NewService(&stubRepo{usuarios: make(map[uuid.UUID]*Usuario)})

	u, err := svc.Create(context.Background(), CreateInput{Login: "  maria  ", Senha: "SenhaForte123!", Perfil: "atendente"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Login != "maria" || u.Perfil != PerfilAtendente {
		t.Fatalf("normalização falhou: %+v", u)
	}

	if _, err := svc.Create(context.Background(), CreateInput{Login: "ana", Senha: "SenhaForte123!", Perfil: "GERENTE"}); !errors.Is(err, ErrPerfilInvalido) {
		t.Fatalf("esperado ErrPerfilInvalido, veio %v", err)
	}

	if _, err := svc.Create(context.Background(), CreateInput{Login: "ana", Senha: "curta", Perfil: PerfilOperador}); err == nil {
		t.Fatal("senha curta deveria ser rejeitada")
	}
}

func TestUpdateSenhaEmBrancoMantemAtual(t *testing.T) {
	repo := &stubRepo{usuarios: make(map[uuid.UUID]*Usuario)}
	svc := NewService(repo)

	u, err := svc.Create(context.Background(), CreateInput{Login: "maria", Senha: "SenhaForte123!", Perfil: PerfilAtendente})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	hashOriginal := u.SenhaHash

	vazia := ""
	if _, err := svc.Update(context.Background(), UpdateInput{ID: u.ID, Login: "maria", Perfil: PerfilAdmin, Senha: &vazia}); err != nil {
		t.Fatalf("update sem senha: %v", err)
	}
	if repo.usuarios[u.ID].SenhaHash != hashOriginal {
		t.Fatal("senha em branco não pode trocar o hash")
	}
	if repo.usuarios[u.ID].Perfil != PerfilAdmin {
		t.Fatalf("perfil não atualizado: %q", repo.usuarios[u.ID].Perfil)
	}

	nova := "OutraSenha456!"
	if _, err := svc.Update(context.Background(), UpdateInput{ID: u.ID, Login: "maria", Perfil: PerfilAdmin, Senha: &nova}); err != nil {
		t.Fatalf("update com senha: %v", err)
	}
	ok, err := auth.Verify(nova, repo.usuarios[u.ID].SenhaHash)
	if err != nil || !ok {
		t.Fatal("nova senha deveria validar contra o hash atualizado")
	}
}
