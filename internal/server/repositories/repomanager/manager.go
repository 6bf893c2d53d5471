package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/clinicauth/internal/dbx"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/admins"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// path works against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Admins(db dbx.DBTX) admins.Repository
}
