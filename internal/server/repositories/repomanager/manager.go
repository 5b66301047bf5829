package repomanager

import (
	"context"
	"database/sql"

	"github.com/dsavelev/sessiond/internal/dbx"
	"github.com/dsavelev/sessiond/internal/server/repositories/items"
	"github.com/dsavelev/sessiond/internal/server/repositories/refreshtokens"
	"github.com/dsavelev/sessiond/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// the same repository code against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Items(db dbx.DBTX) items.Repository
}
