package config

import "time"

type Config struct {
	LogLevel string `flag:"log-level"`

	NATSURL  string `flag:"nats-url"`
	NATSInit bool   `flag:"nats-init"`

	PostgresURL string `flag:"postgres-url"`
	MetricsAddr string `flag:"metrics-addr"`

	UnlikeWindow   time.Duration `flag:"unlike-window"`
	ViralThreshold int           `flag:"viral-threshold"`
}
