// Package cli содержит команды клиента todo
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dibarradev/to-do/internal/client/api"
	"github.com/dibarradev/to-do/internal/client/auth"
	"github.com/dibarradev/to-do/internal/client/iocli"
	"github.com/dibarradev/to-do/internal/client/storage/boltdb"
	pkgapi "github.com/dibarradev/to-do/pkg/api"
)

const (
	// EnvServer адрес сервера по умолчанию
	EnvServer = "TODO_SERVER"
	// EnvDB путь к локальной базе по умолчанию
	EnvDB = "TODO_DB"
	// EnvPassword пароль для неинтерактивного запуска
	EnvPassword = "TODO_PASSWORD"

	defaultServer = "http://localhost:5000"
	defaultDB     = "todo-client.db"
)

// TaskAPI серверные операции с задачами
type TaskAPI interface {
	ListTasks(ctx context.Context, accessToken string) ([]pkgapi.Task, error)
	CreateTask(ctx context.Context, accessToken string, req pkgapi.CreateTaskRequest) (*pkgapi.Task, error)
	UpdateTask(ctx context.Context, accessToken, taskID string, req pkgapi.UpdateTaskRequest) (*pkgapi.Task, error)
	DeleteTask(ctx context.Context, accessToken, taskID string) error
	AddSubtask(ctx context.Context, accessToken, taskID string, req pkgapi.CreateSubtaskRequest) (*pkgapi.Task, error)
	UpdateSubtask(ctx context.Context, accessToken, taskID, subtaskID string, req pkgapi.UpdateSubtaskRequest) (*pkgapi.Task, error)
	DeleteSubtask(ctx context.Context, accessToken, taskID, subtaskID string) (*pkgapi.Task, error)
}

// Deps зависимости одной команды
type Deps struct {
	Auth  *auth.Service
	Tasks TaskAPI
	Close func() error
}

// Opener создает зависимости для сервера и локальной базы
type Opener func(ctx context.Context, serverURL, dbPath string) (*Deps, error)

// Open открывает bbolt базу сессии и HTTP клиент
func Open(ctx context.Context, serverURL, dbPath string) (*Deps, error) {
	store, err := boltdb.New(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}

	client := api.NewClient(serverURL)
	return &Deps{
		Auth:  auth.NewService(client, store),
		Tasks: client,
		Close: store.Close,
	}, nil
}

// Cli состояние корневой команды
type Cli struct {
	open         Opener
	io           iocli.IO
	serverURL    string
	dbPath       string
	passwordFile string
}

// NewRootCmd создает корневую команду клиента
func NewRootCmd(version string, open Opener) *cobra.Command {
	c := &Cli{open: open}

	cmd := &cobra.Command{
		Use:          "todo",
		Short:        "to-do command line client",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			c.io = iocli.NewStreams(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&c.serverURL, "server", envOr(EnvServer, defaultServer), "server URL (env "+EnvServer+")")
	pf.StringVar(&c.dbPath, "db", envOr(EnvDB, defaultDB), "path to local session database (env "+EnvDB+")")
	pf.StringVar(&c.passwordFile, "password-file", "", "read password from file instead of prompting")

	cmd.AddCommand(
		c.newRegisterCmd(),
		c.newLoginCmd(),
		c.newWhoamiCmd(),
		c.newRefreshCmd(),
		c.newLogoutCmd(),
		c.newForgotPasswordCmd(),
		c.newResetPasswordCmd(),
		c.newTasksCmd(),
		c.newSubtasksCmd(),
	)

	return cmd
}

// run открывает зависимости на время выполнения команды
func (c *Cli) run(cmd *cobra.Command, fn func(ctx context.Context, d *Deps) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := c.open(ctx, c.serverURL, c.dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = d.Close()
	}()

	return fn(ctx, d)
}

// readPassword получает пароль по приоритету:
// 1. Переменная окружения TODO_PASSWORD
// 2. Файл из --password-file
// 3. Интерактивный ввод без эха
func (c *Cli) readPassword(prompt string, confirm bool) (string, error) {
	if envPassword := os.Getenv(EnvPassword); envPassword != "" {
		return envPassword, nil
	}

	if c.passwordFile != "" {
		content, err := os.ReadFile(c.passwordFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", errors.New("password file is empty")
		}
		return password, nil
	}

	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if !confirm {
		return password, nil
	}

	repeat, err := c.io.ReadPassword("Repeat password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if repeat != password {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

// argOrPrompt берет значение из аргумента или спрашивает у пользователя
func (c *Cli) argOrPrompt(args []string, i int, prompt string) (string, error) {
	if len(args) > i {
		return args[i], nil
	}
	return c.io.ReadInput(prompt)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
