package script

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// TengoRunner compiles and executes tengo programs under the configured
// limits. All skill descriptors and event processors run through it.
type TengoRunner struct {
	limits Limits
}

// NewTengoRunner creates a runner with default limits.
func NewTengoRunner() *TengoRunner {
	return &TengoRunner{limits: DefaultLimits()}
}

// SetLimits replaces the runner's execution constraints.
func (r *TengoRunner) SetLimits(limits Limits) {
	r.limits = limits
}

// Validate checks that a program compiles against the allowed module set.
// Used by the content loader and the cards-validate command to reject
// broken descriptors before a match ever runs them.
func (r *TengoRunner) Validate(s *Script) error {
	program := tengo.NewScript([]byte(s.Content))
	program.SetImports(r.moduleMap())

	// Descriptors reference runtime variables, so declare the full
	// vocabulary before the compile check. Card descriptors use the
	// user/opponent naming, event processors use actor/skill/event.
	// Result variables (ok, targets, effects) stay undeclared because
	// the descriptors define those themselves.
	for _, name := range []string{
		"actor", "skill", "event",
		"user", "opponent", "active", "self", "all",
	} {
		if err := program.Add(name, nil); err != nil {
			return NewScriptError(ErrorTypeCompilation, s.ModuleName, s.Name,
				fmt.Sprintf("declaring %s", name), err)
		}
	}
	if err := addLogFunction(program, s); err != nil {
		return err
	}

	if _, err := program.Compile(); err != nil {
		return NewScriptError(ErrorTypeCompilation, s.ModuleName, s.Name,
			"script does not compile", err)
	}
	return nil
}

// Run executes a program with the given input, honoring the execution
// timeout. The script communicates back through a "result" variable.
func (r *TengoRunner) Run(ctx context.Context, s *Script, input *Input) (*Output, error) {
	start := time.Now()

	program := tengo.NewScript([]byte(s.Content))
	program.SetImports(r.moduleMap())

	if input != nil {
		for key, value := range input.Context {
			if err := program.Add(key, value); err != nil {
				return nil, NewScriptError(ErrorTypeExecution, s.ModuleName, s.Name,
					fmt.Sprintf("setting variable %s", key), err)
			}
		}
	}
	if err := addLogFunction(program, s); err != nil {
		return nil, err
	}

	compiled, err := program.Compile()
	if err != nil {
		return nil, NewScriptError(ErrorTypeCompilation, s.ModuleName, s.Name,
			"script does not compile", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, r.limits.MaxExecutionTime)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("script panic: %v", p)
			}
		}()
		done <- compiled.Run()
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, NewScriptError(ErrorTypeExecution, s.ModuleName, s.Name,
				"script execution failed", err)
		}
	case <-execCtx.Done():
		return nil, NewScriptError(ErrorTypeTimeout, s.ModuleName, s.Name,
			"script execution timed out", execCtx.Err())
	}

	return &Output{
		Result: extractResult(compiled),
		Logs:   extractLogs(compiled),
		Metrics: Metrics{
			ExecutionTime: time.Since(start),
			Success:       true,
		},
	}, nil
}

func (r *TengoRunner) moduleMap() *tengo.ModuleMap {
	modules := tengo.NewModuleMap()
	for _, pkg := range r.limits.AllowedPackages {
		if module, exists := stdlib.BuiltinModules[pkg]; exists {
			modules.AddBuiltinModule(pkg, module)
		}
	}
	return modules
}

func extractResult(compiled *tengo.Compiled) interface{} {
	if result := compiled.Get("result"); result != nil {
		return result.Value()
	}
	return nil
}

func extractLogs(compiled *tengo.Compiled) []string {
	logsVar := compiled.Get("logs")
	if logsVar == nil {
		return nil
	}
	values, ok := logsVar.Value().([]interface{})
	if !ok {
		return nil
	}
	logs := make([]string, len(values))
	for i, v := range values {
		logs[i] = fmt.Sprintf("%v", v)
	}
	return logs
}

// addLogFunction exposes a log builtin that feeds the application logger,
// tagged with the script's identity.
func addLogFunction(program *tengo.Script, s *Script) error {
	logFunc := &tengo.UserFunction{
		Name: "log",
		Value: func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			slog.Info("script log",
				"module", s.ModuleName,
				"script", s.Name,
				"message", args[0].String(),
			)
			return tengo.UndefinedValue, nil
		},
	}
	if err := program.Add("log", logFunc); err != nil {
		return NewScriptError(ErrorTypeExecution, s.ModuleName, s.Name,
			"adding log builtin", err)
	}
	return nil
}
