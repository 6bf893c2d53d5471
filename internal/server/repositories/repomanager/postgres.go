// Package repomanager provides the PostgreSQL RepositoryManager, wiring the
// account repositories and the goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/dbx"
	"github.com/dmitrijs2005/clinicauth/internal/server/migrations"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/admins"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories. Every
// repository it returns bounds its queries by queryTimeout.
type PostgresRepositoryManager struct {
	queryTimeout time.Duration
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db, m.queryTimeout)
}

func (m *PostgresRepositoryManager) Admins(db dbx.DBTX) admins.Repository {
	return admins.NewPostgresRepository(db, m.queryTimeout)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager(queryTimeout time.Duration) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{queryTimeout: queryTimeout}
}
