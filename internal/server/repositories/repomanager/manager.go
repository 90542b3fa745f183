package repomanager

import (
	"context"
	"database/sql"

	"github.com/expreshop/expreshop/internal/dbx"
	"github.com/expreshop/expreshop/internal/server/repositories/products"
	"github.com/expreshop/expreshop/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DB handle or transaction
// and exposes the schema migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Products(db dbx.DBTX) products.Repository
}
