package content

import "github.com/duelsim/duelsim/internal/registry"

// RegistryKey locates the card template registry in the service registry.
var RegistryKey = registry.Key[*Registry]("content.registry")
