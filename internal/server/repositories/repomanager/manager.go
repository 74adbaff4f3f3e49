// Package repomanager ties the per-entity repositories together so services
// can obtain a repository bound to either the shared *sql.DB or an open
// transaction.
package repomanager

import (
	"context"
	"database/sql"

	"pennywise/internal/dbx"
	"pennywise/internal/server/repositories/admins"
	"pennywise/internal/server/repositories/otpcodes"
	"pennywise/internal/server/repositories/settings"
	"pennywise/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Admins(db dbx.DBTX) admins.Repository
	OTPCodes(db dbx.DBTX) otpcodes.Repository
	Settings(db dbx.DBTX) settings.Repository
}
