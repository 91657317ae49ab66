package flags

import (
	"fmt"
	"slices"
	"time"

	libnats "github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

var LOG_LEVEL = &cli.StringFlag{
	Name:    "log-level",
	Aliases: []string{"l"},
	Usage:   "The level of the logs",
	Value:   "info",
	Validator: func(value string) error {
		if !slices.Contains(validLogLevels, value) {
			return fmt.Errorf("invalid log level: %s, allowed values are: %s", value, validLogLevels)
		}
		return nil
	},
	Sources: cli.EnvVars("LOG_LEVEL"),
}

var NATS_URL = &cli.StringFlag{
	Name:    "nats-url",
	Aliases: []string{"n"},
	Usage:   "The URL of the NATS server",
	Value:   libnats.DefaultURL,
	Sources: cli.EnvVars("NATS_URL"),
}

var INIT_NATS = &cli.BoolFlag{
	Name:        "nats-init",
	Aliases:     []string{"i"},
	Usage:       "Initialize the NATS server: create the stream and the worker consumer",
	DefaultText: "false",
	Value:       false,
	Sources:     cli.EnvVars("NATS_INIT"),
}

var POSTGRES_URL = &cli.StringFlag{
	Name:    "postgres-url",
	Usage:   "Postgres DSN for the graph snapshot; empty disables archiving",
	Sources: cli.EnvVars("POSTGRES_URL"),
}

var METRICS_ADDR = &cli.StringFlag{
	Name:    "metrics-addr",
	Usage:   "Listen address of the metrics server",
	Value:   ":8080",
	Sources: cli.EnvVars("METRICS_ADDR"),
}

var UNLIKE_WINDOW = &cli.DurationFlag{
	Name:    "unlike-window",
	Usage:   "How long after a like it can still be taken back",
	Value:   time.Minute,
	Sources: cli.EnvVars("UNLIKE_WINDOW"),
}

var VIRAL_THRESHOLD = &cli.IntFlag{
	Name:    "viral-threshold",
	Usage:   "Inbound degree past which repost membership switches to the day walk",
	Value:   1000,
	Sources: cli.EnvVars("VIRAL_THRESHOLD"),
}
