package script

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Source indicates where a script was loaded from.
type Source string

const (
	SourceEmbedded Source = "embedded"
	SourceExternal Source = "external"
)

// ErrorType categorizes script failures.
type ErrorType string

const (
	ErrorTypeCompilation ErrorType = "compilation"
	ErrorTypeExecution   ErrorType = "execution"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeNotFound    ErrorType = "not_found"
)

// Script is one loaded DSL program: a skill descriptor or a module's
// event processor. External files override embedded defaults by name.
type Script struct {
	ModuleName   string
	Name         string
	Content      string
	Source       Source
	LastModified time.Time
	Checksum     string
}

// Input carries the variables exposed to an executing script. Values must
// be plain data (numbers, strings, maps, slices); live engine state never
// crosses into a script.
type Input struct {
	Context map[string]interface{}
}

// Output is the result of one execution.
type Output struct {
	Result  interface{}
	Logs    []string
	Metrics Metrics
}

// Metrics tracks one execution for monitoring.
type Metrics struct {
	ExecutionTime time.Duration
	Success       bool
	ErrorType     ErrorType
}

// Limits constrains script execution.
type Limits struct {
	MaxExecutionTime time.Duration
	AllowedPackages  []string
}

// DefaultLimits returns the standard execution constraints.
func DefaultLimits() Limits {
	return Limits{
		MaxExecutionTime: 2 * time.Second,
		AllowedPackages:  []string{"fmt", "math", "rand", "text"},
	}
}

// ScriptError is a script failure with enough context to name the
// offending program.
type ScriptError struct {
	Type       ErrorType
	ModuleName string
	ScriptName string
	Message    string
	Cause      error
	Timestamp  time.Time
}

func (e *ScriptError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ScriptError) Unwrap() error {
	return e.Cause
}

// NewScriptError builds a timestamped ScriptError.
func NewScriptError(errorType ErrorType, moduleName, scriptName, message string, cause error) *ScriptError {
	return &ScriptError{
		Type:       errorType,
		ModuleName: moduleName,
		ScriptName: scriptName,
		Message:    message,
		Cause:      cause,
		Timestamp:  time.Now(),
	}
}

func checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
