package database

import "github.com/duelsim/duelsim/internal/registry"

// Service locator keys for the database layer. All three are optional:
// when no database is configured the app simply never sets them, and
// modules that can run without persistence check with registry.Get.
var (
	ConnectionKey       = registry.Key[DBConnection]("database.connection")
	LiveQueryServiceKey = registry.Key[LiveQueryService]("database.livequery")
	CardStoreKey        = registry.Key[*CardStore]("database.cardstore")
)
