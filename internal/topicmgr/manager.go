package topicmgr

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z0-9_]+)+$`)

// Manager holds all registered topics. The process-wide Default() manager
// is what package-level event definitions register against at init time.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{entries: make(map[string]*RegistryEntry)}
}

// DefineFramework builds a framework-scoped topic.
func DefineFramework(config TopicConfig) Topic {
	return &TypedTopic{
		name:        config.Name,
		description: config.Description,
		pattern:     config.Pattern,
		example:     config.Example,
		metadata:    config.Metadata,
		scope:       ScopeFramework,
	}
}

// DefineModule builds a module-scoped topic.
func DefineModule(config TopicConfig) Topic {
	return &TypedTopic{
		name:        config.Name,
		module:      config.Module,
		description: config.Description,
		pattern:     config.Pattern,
		example:     config.Example,
		metadata:    config.Metadata,
		scope:       ScopeModule,
	}
}

// Register validates and adds a topic. Duplicate names are rejected.
func (m *Manager) Register(topic Topic) error {
	if err := m.validate(topic); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[topic.Name()]; exists {
		return &TopicError{
			Type:    ErrorDuplicateRegistration,
			Topic:   topic.Name(),
			Module:  topic.Module(),
			Message: fmt.Sprintf("topic %s is already registered", topic.Name()),
		}
	}

	m.entries[topic.Name()] = &RegistryEntry{
		Topic:        topic,
		RegisteredAt: time.Now(),
		Module:       topic.Module(),
	}
	return nil
}

// MustRegister registers or panics. Used by package-level topic
// definitions where a failure is a startup configuration error.
func (m *Manager) MustRegister(topic Topic) {
	if err := m.Register(topic); err != nil {
		panic(fmt.Sprintf("topic registration failed: %v", err))
	}
}

// Get looks a topic up by exact name.
func (m *Manager) Get(name string) (Topic, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[name]
	if !ok {
		return nil, false
	}
	return entry.Topic, true
}

// List returns all topics sorted by name.
func (m *Manager) List() []Topic {
	m.mu.RLock()
	defer m.mu.RUnlock()

	topics := make([]Topic, 0, len(m.entries))
	for _, entry := range m.entries {
		topics = append(topics, entry.Topic)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name() < topics[j].Name() })
	return topics
}

// ListByModule returns the topics owned by one module, sorted by name.
func (m *Manager) ListByModule(module string) []Topic {
	var topics []Topic
	for _, t := range m.List() {
		if t.Module() == module {
			topics = append(topics, t)
		}
	}
	return topics
}

// ListByScope returns topics of the given scope, sorted by name.
func (m *Manager) ListByScope(scope TopicScope) []Topic {
	var topics []Topic
	for _, t := range m.List() {
		if t.Scope() == scope {
			topics = append(topics, t)
		}
	}
	return topics
}

// ListModules returns the distinct module names with registered topics.
func (m *Manager) ListModules() []string {
	seen := make(map[string]bool)
	var modules []string
	for _, t := range m.List() {
		if t.Module() != "" && !seen[t.Module()] {
			seen[t.Module()] = true
			modules = append(modules, t.Module())
		}
	}
	sort.Strings(modules)
	return modules
}

// Count returns the number of registered topics.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Reset drops all registrations. Test use only.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*RegistryEntry)
}

// validate enforces the naming convention before registration.
// ValidateName checks a topic name against the naming rules without
// requiring a registered topic. Used by the CLI.
func ValidateName(name string) error {
	fail := func(msg string) error {
		return &TopicError{
			Type:    ErrorValidationFailed,
			Topic:   name,
			Message: msg,
		}
	}

	switch {
	case name == "":
		return fail("topic name cannot be empty")
	case len(name) > 100:
		return fail("topic name too long (max 100 characters)")
	case !namePattern.MatchString(name):
		return fail("topic name must be lowercase dot-separated segments")
	}
	for _, prefix := range []string{"system.", "internal.", "debug."} {
		if strings.HasPrefix(name, prefix) {
			return fail("topic name uses reserved prefix " + prefix)
		}
	}
	return nil
}

func (m *Manager) validate(topic Topic) error {
	name := topic.Name()
	fail := func(msg string) error {
		return &TopicError{
			Type:    ErrorValidationFailed,
			Topic:   name,
			Module:  topic.Module(),
			Message: msg,
		}
	}

	if err := ValidateName(name); err != nil {
		return err
	}

	switch topic.Scope() {
	case ScopeFramework:
		if topic.Module() != "" {
			return fail("framework topics must not name a module")
		}
	case ScopeModule:
		if strings.TrimSpace(topic.Module()) == "" {
			return fail("module topics must name their module")
		}
	default:
		return fail("unknown topic scope")
	}
	return nil
}

var (
	defaultManager *Manager
	defaultOnce    sync.Once
)

// Default returns the process-wide manager.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewManager()
	})
	return defaultManager
}

// Package-level helpers against the default manager.

func Register(topic Topic) error            { return Default().Register(topic) }
func Get(name string) (Topic, bool)         { return Default().Get(name) }
func List() []Topic                         { return Default().List() }
func ListByModule(module string) []Topic    { return Default().ListByModule(module) }
func ListByScope(scope TopicScope) []Topic  { return Default().ListByScope(scope) }
func ListModules() []string                 { return Default().ListModules() }
