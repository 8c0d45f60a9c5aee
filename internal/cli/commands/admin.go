package commands

import (
	"ScholarDesk/internal/config"
	"context"
	"fmt"
	"strings"
)

// adminCmd выдаёт или снимает права администратора.
type adminCmd struct {
	grant bool
}

func (c adminCmd) Name() string {
	if c.grant {
		return "grant"
	}
	return "revoke"
}

func (c adminCmd) Description() string {
	if c.grant {
		return "Grant admin rights to a user"
	}
	return "Revoke admin rights from a user"
}

func (c adminCmd) Usage() string { return c.Name() + " <username>" }

func (c adminCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return ErrUsage
	}
	username := strings.TrimSpace(args[0])
	return withServices(cfg, func(svc *Services) error {
		if err := svc.Users.SetAdmin(ctx, username, c.grant); err != nil {
			return err
		}
		if c.grant {
			fmt.Fprintf(Out, "User %s is now an admin\n", username)
		} else {
			fmt.Fprintf(Out, "User %s is no longer an admin\n", username)
		}
		return nil
	})
}

// listCmd печатает пользователей и их роль.
type listCmd struct{}

func (listCmd) Name() string        { return "list" }
func (listCmd) Description() string { return "List users and their admin flag" }
func (listCmd) Usage() string       { return "list" }

func (listCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withServices(cfg, func(svc *Services) error {
		users, err := svc.Users.ListUsers(ctx)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Fprintln(Out, "No users")
			return nil
		}
		for _, u := range users {
			role := "user"
			if u.IsAdmin {
				role = "admin"
			}
			fmt.Fprintf(Out, "%-6d %-32s %s\n", u.ID, u.Username, role)
		}
		return nil
	})
}

func init() {
	RegisterCmd(adminCmd{grant: true})
	RegisterCmd(adminCmd{grant: false})
	RegisterCmd(listCmd{})
}
