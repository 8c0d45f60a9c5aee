package commands

import (
	"ScholarDesk/internal/config"
	"context"
	"errors"
	"fmt"
	"strings"
)

// Коды выхода scholardesk-admin.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Dispatch выполняет команду администратора и возвращает код выхода процесса.
// Флаги к этому моменту уже разобраны config.NewConfig, в args только команда и её аргументы.
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitUsage
	}

	name := strings.ToLower(args[0])
	switch name {
	case "help", "-h", "--help":
		return help(args[1:])
	}

	c, ok := Get(name)
	if !ok {
		unknownCommand(name)
		return exitUsage
	}

	err := c.Run(ctx, cfg, args[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
		return exitUsage
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(Out, "%s interrupted\n", name)
		return exitError
	default:
		fmt.Fprintf(Out, "%s error: %v\n", name, err)
		return exitError
	}
}

// help: без аргумента общая справка, с именем команды её usage и описание.
func help(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitOK
	}
	c, ok := Get(args[0])
	if !ok {
		unknownCommand(args[0])
		return exitUsage
	}
	fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
	if d := c.Description(); d != "" {
		fmt.Fprintf(Out, "\n%s\n", d)
	}
	return exitOK
}

func unknownCommand(name string) {
	fmt.Fprintf(Out, "Unknown command: %s\n", name)
	if s := suggest(name); len(s) > 0 {
		fmt.Fprintf(Out, "Did you mean: %s?\n", strings.Join(s, ", "))
	}
	fmt.Fprint(Out, "\n"+FormatGlobalUsage())
}

// suggest команды с общим префиксом, в порядке List.
func suggest(name string) []string {
	name = strings.ToLower(name)
	if name == "" {
		return nil
	}
	var out []string
	for _, c := range List() {
		if strings.HasPrefix(c.Name(), name) || strings.HasPrefix(name, c.Name()) {
			out = append(out, c.Name())
		}
	}
	return out
}
