// Package cards embeds the default character card set. External content
// directories can override any of these by card name.
package cards

import "embed"

//go:embed *.json
var Files embed.FS
