package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/redeabrigos/atendimento/internal/db"
	"github.com/redeabrigos/atendimento/internal/usuario"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN ou DATABASE_URL")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	repo := usuario.NewRepository(pool)
	service := usuario.NewService(repo)

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "create":
		if err := runCreate(ctx, service, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao criar usuário")
		}
	case "list":
		if err := runList(ctx, service); err != nil {
			log.Fatal().Err(err).Msg("falha ao listar usuários")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usuario CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  usuario create --login maria --senha segredo123 --perfil ATENDENTE [--nome \"Maria Silva\"]")
	fmt.Fprintln(os.Stderr, "  usuario list")
}

func runCreate(ctx context.Context, service *usuario.Service, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		login  = fs.String("login", "", "login de acesso")
		senha  = fs.String("senha", "", "senha inicial (mínimo 8 caracteres)")
		perfil = fs.String("perfil", usuario.PerfilOperador, "perfil: ADMIN, ATENDENTE ou OPERADOR")
		nome   = fs.String("nome", "", "nome exibido (opcional)")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *login == "" || *senha == "" {
		return errors.New("login e senha são obrigatórios")
	}

	input := usuario.CreateInput{
		Login:  *login,
		Senha:  *senha,
		Perfil: *perfil,
	}
	if strings.TrimSpace(*nome) != "" {
		input.Nome = nome
	}

	criado, err := service.Create(ctx, input)
	if err != nil {
		return err
	}

	output, _ := json.MarshalIndent(criado, "", "  ")
	fmt.Println(string(output))
	return nil
}

func runList(ctx context.Context, service *usuario.Service) error {
	usuarios, err := service.List(ctx)
	if err != nil {
		return err
	}

	if len(usuarios) == 0 {
		fmt.Println("nenhum usuário cadastrado")
		return nil
	}

	encoded, _ := json.MarshalIndent(usuarios, "", "  ")
	fmt.Println(string(encoded))
	return nil
}
