// Package topicmgr is the central registry of bus topics. Every topic the
// application publishes or subscribes to is defined once, as a typed
// value, and registered here; magic strings never cross package borders.
//
// Framework topics belong to core services:
//
//	var ClientConnected = topicmgr.DefineFramework(topicmgr.TopicConfig{
//		Name:        "ws.client.connected",
//		Description: "Published when an observer client attaches",
//		Pattern:     "ws.client.connected",
//	})
//
// Module topics belong to feature modules:
//
//	var DamageDealt = topicmgr.DefineModule(topicmgr.TopicConfig{
//		Name:        "match.damage.dealt",
//		Module:      "match",
//		Description: "A resolved damage application in a live match",
//		Pattern:     "match.damage.dealt",
//	})
package topicmgr

import "time"

// Topic is a registered topic identifier.
type Topic interface {
	Name() string
	Module() string
	Description() string
	Pattern() string
	Example() string
	Metadata() map[string]interface{}
	Scope() TopicScope
}

// TopicScope separates framework plumbing topics from module topics.
type TopicScope string

const (
	ScopeFramework TopicScope = "framework"
	ScopeModule    TopicScope = "module"
)

// TopicConfig describes a topic being defined.
type TopicConfig struct {
	Name        string                 `json:"name"`
	Module      string                 `json:"module"`
	Scope       TopicScope             `json:"scope"`
	Description string                 `json:"description"`
	Pattern     string                 `json:"pattern"`
	Example     string                 `json:"example"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// TypedTopic is the standard Topic implementation.
type TypedTopic struct {
	name        string
	module      string
	description string
	pattern     string
	example     string
	metadata    map[string]interface{}
	scope       TopicScope
}

var _ Topic = (*TypedTopic)(nil)

func (t *TypedTopic) Name() string        { return t.name }
func (t *TypedTopic) Module() string      { return t.module }
func (t *TypedTopic) Description() string { return t.description }
func (t *TypedTopic) Pattern() string     { return t.pattern }
func (t *TypedTopic) Example() string     { return t.example }
func (t *TypedTopic) Scope() TopicScope   { return t.scope }
func (t *TypedTopic) String() string      { return t.name }

// Metadata returns a copy so callers cannot mutate the registered topic.
func (t *TypedTopic) Metadata() map[string]interface{} {
	out := make(map[string]interface{}, len(t.metadata))
	for k, v := range t.metadata {
		out[k] = v
	}
	return out
}

// RegistryEntry pairs a topic with its registration time.
type RegistryEntry struct {
	Topic        Topic     `json:"topic"`
	RegisteredAt time.Time `json:"registered_at"`
	Module       string    `json:"module"`
}

// ErrorType classifies topic management failures.
type ErrorType string

const (
	ErrorTopicNotFound         ErrorType = "topic_not_found"
	ErrorDuplicateRegistration ErrorType = "duplicate_registration"
	ErrorValidationFailed      ErrorType = "validation_failed"
)

// TopicError is a structured topic management error.
type TopicError struct {
	Type    ErrorType `json:"type"`
	Topic   string    `json:"topic"`
	Module  string    `json:"module"`
	Message string    `json:"message"`
	Cause   error     `json:"cause,omitempty"`
}

func (e *TopicError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *TopicError) Unwrap() error {
	return e.Cause
}
