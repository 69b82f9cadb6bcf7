// Package registry is the application's typed service locator. Each
// package that shares a service declares its own Key next to the service
// type, e.g.
//
//	var EngineKey = registry.Key[*Engine]("script.engine")
//
// so lookups are compile-time typed and key strings stay collision-free
// by module prefix.
package registry
