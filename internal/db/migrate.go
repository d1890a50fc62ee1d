package db

import (
	"context"
	"fmt"

	"maisafe-go/internal/db/migrations"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// Migrate applies all pending schema migrations from the embedded FS.
func Migrate(ctx context.Context, gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("db handle: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
