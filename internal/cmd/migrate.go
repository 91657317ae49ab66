package cmd

import (
	"context"

	"feedgraph/internal/cmd/flags"
	"feedgraph/internal/persistence"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"
)

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "Create or update the snapshot schema in Postgres",
	Flags: []cli.Flag{
		flags.POSTGRES_URL,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c,
			pal.Provide(&persistence.DB{}),
			pal.Provide(&persistence.Migrator{}),
			pal.Provide(&persistence.MigrationUpRunner{}),
		)
	},
}
