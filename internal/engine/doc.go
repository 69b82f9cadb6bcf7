// Package engine is the turn-based resolution core. One match owns a
// priority-ordered message queue shared by every character entity on the
// board; resolution repeatedly presents the head message to the entities in
// a fixed order until an authoritative entity consumes it or the resolver
// itself discards it. Each message carries its own responded-entities set,
// which is the only guard against an entity applying the same message
// twice.
//
// The engine is deliberately single-threaded: a Game and everything it owns
// must only be touched from one goroutine. Anything that wants to observe a
// match from outside (HTTP handlers, the event bus, websocket observers)
// goes through the match module, which serializes access.
package engine
