package commands

import (
	"ScholarDesk/internal/config"
	"ScholarDesk/internal/repo"
	"ScholarDesk/internal/service"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Command represents an operator subcommand.
type Command interface {
	// Name returns the command name as typed by the operator, e.g. "grant".
	Name() string
	// Description is a short human-readable description shown in help.
	Description() string
	// Usage returns the exact usage string, e.g. "grant <username>".
	Usage() string
	// Run executes the command with provided args (without the command name).
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// registry holds available commands by name.
var registry = map[string]Command{}

// Out общий writer для вывода CLI. По умолчанию os.Stdout, в тестах переназначается.
var Out io.Writer = os.Stdout

// Services сервисы, с которыми работают команды.
type Services struct {
	Users   *service.UserService
	Catalog *service.CatalogService
	close   func() error
}

// Close закрывает подключение к БД.
func (s *Services) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Connect открывает БД по конфигу. В тестах подменяется на in-memory SQLite.
var Connect = func(cfg *config.Config) (*Services, error) {
	dsn := cfg.DSN()
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.SQLitePath
	}
	db, err := repo.InitDB(cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &Services{
		Users:   service.NewUserService(repo.NewUserRepository(db), repo.NewSessionRepository(db), cfg.SessionTTL()),
		Catalog: service.NewCatalogService(repo.NewSubjectRepository(db), repo.NewTagRepository(db)),
		close:   sqlDB.Close,
	}, nil
}

// NewServices собирает Services поверх готовых сервисов.
func NewServices(users *service.UserService, catalog *service.CatalogService) *Services {
	return &Services{Users: users, Catalog: catalog}
}

// withServices открывает сервисы на время выполнения fn.
func withServices(cfg *config.Config, fn func(*Services) error) error {
	svc, err := Connect(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(svc)
}

// RegisterCmd adds a command to the registry. Should be called from init() of each command.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

// Get returns a command by name.
func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List returns all registered commands sorted by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage builds a help text for all commands.
func FormatGlobalUsage() string {
	lines := []string{
		"ScholarDesk admin",
		"",
		"Usage:",
		"  scholardesk-admin [--db-driver postgres|sqlite] [--sqlite <path>] <command> [args]",
		"",
		"Commands:",
	}
	for _, c := range List() {
		lines = append(lines, fmt.Sprintf("  %-28s %s", c.Usage(), c.Description()))
	}
	return strings.Join(lines, "\n") + "\n"
}
