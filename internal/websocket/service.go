package websocket

import "github.com/duelsim/duelsim/internal/registry"

// BridgeKey locates the observer bridge in the service registry.
var BridgeKey = registry.Key[*Bridge]("websocket.bridge")

// WhitelistKey locates the shared client action whitelist, so modules can
// register the actions they accept before the bridge starts reading.
var WhitelistKey = registry.Key[*ActionWhitelist]("websocket.whitelist")
