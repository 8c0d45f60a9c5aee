package commands

import (
	"ScholarDesk/internal/config"
	"context"
	"fmt"
)

// seedCmd досеивает справочник дисциплин.
type seedCmd struct{}

func (seedCmd) Name() string        { return "seed-subjects" }
func (seedCmd) Description() string { return "Insert missing default subjects" }
func (seedCmd) Usage() string       { return "seed-subjects" }

func (seedCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withServices(cfg, func(svc *Services) error {
		added, err := svc.Catalog.SeedSubjects(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Subjects added: %d\n", added)
		return nil
	})
}

// Version и BuildDate задаются через -ldflags.
var (
	Version   = "dev"
	BuildDate = "unknown"
)

type versionCmd struct{}

func (versionCmd) Name() string        { return "version" }
func (versionCmd) Description() string { return "Print build version" }
func (versionCmd) Usage() string       { return "version" }

func (versionCmd) Run(_ context.Context, _ *config.Config, _ []string) error {
	fmt.Fprintf(Out, "ScholarDesk admin\nVersion: %s\nBuild date: %s\n", Version, BuildDate)
	return nil
}

func init() {
	RegisterCmd(seedCmd{})
	RegisterCmd(versionCmd{})
}
