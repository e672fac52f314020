package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/mbolis/agriquest/backend"
	"github.com/mbolis/agriquest/config"
	"github.com/mbolis/agriquest/store"
)

// App carries the dependencies every handler is built from.
type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config

	Backend *backend.Client
	Store   *store.Store
}
