package persistence

import (
	"context"
	"log/slog"
)

// Migrator keeps the snapshot schema in sync; the two tables are owned by
// the gorm models, so AutoMigrate is the whole migration story.
type Migrator struct {
	Logger *slog.Logger
	DB     *DB
}

func (m *Migrator) Init(_ context.Context) error {
	m.Logger = m.Logger.With("component", "persistence.Migrator")
	return nil
}

func (m *Migrator) Up(_ context.Context) error {
	m.Logger.Info("Migrating snapshot schema")

	if err := m.DB.Gorm().AutoMigrate(&EntityModel{}, &EdgeModel{}); err != nil {
		return err
	}

	m.Logger.Info("Migration completed")
	return nil
}

// MigrationUpRunner runs the migration as a one-shot command service.
type MigrationUpRunner struct {
	Migrator *Migrator
}

func (m *MigrationUpRunner) Run(ctx context.Context) error {
	return m.Migrator.Up(ctx)
}
