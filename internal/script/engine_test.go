package script

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelsim/duelsim/internal/config"
)

type testProvider struct {
	module  string
	scripts map[string]string
}

func (p *testProvider) GetModuleName() string              { return p.module }
func (p *testProvider) GetEmbeddedScripts() map[string]string { return p.scripts }

func newTestEngine(t *testing.T, fs afero.Fs) *Engine {
	t.Helper()
	engine := NewEngine(Dependencies{
		Config: config.Static{Scripts: "scripts"},
		Fs:     fs,
	})
	return engine
}

func TestEngine_ExecuteEmbedded(t *testing.T) {
	engine := newTestEngine(t, afero.NewMemMapFs())
	engine.RegisterProvider(&testProvider{
		module: "match",
		scripts: map[string]string{
			"double": `result := amount * 2`,
		},
	})
	require.NoError(t, engine.Initialize(context.Background(), false))

	out, err := engine.Execute(context.Background(), "match", "double", &Input{
		Context: map[string]interface{}{"amount": 3},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 6, out.Result)
	assert.True(t, out.Metrics.Success)
}

func TestEngine_ExternalOverridesEmbedded(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs,
		"scripts/match/double.tengo", []byte(`result := amount * 10`), 0o644))

	engine := newTestEngine(t, fs)
	engine.RegisterProvider(&testProvider{
		module:  "match",
		scripts: map[string]string{"double": `result := amount * 2`},
	})
	require.NoError(t, engine.Initialize(context.Background(), false))

	out, err := engine.Execute(context.Background(), "match", "double", &Input{
		Context: map[string]interface{}{"amount": 3},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 30, out.Result)

	s, err := engine.GetScript("match", "double")
	require.NoError(t, err)
	assert.Equal(t, SourceExternal, s.Source)
}

func TestEngine_UnknownScript(t *testing.T) {
	engine := newTestEngine(t, afero.NewMemMapFs())
	require.NoError(t, engine.Initialize(context.Background(), false))

	_, err := engine.Execute(context.Background(), "match", "missing", nil)
	require.Error(t, err)
	var scriptErr *ScriptError
	require.ErrorAs(t, err, &scriptErr)
	assert.Equal(t, ErrorTypeNotFound, scriptErr.Type)
}

func TestEngine_ValidateSource(t *testing.T) {
	engine := newTestEngine(t, afero.NewMemMapFs())

	assert.NoError(t, engine.ValidateSource("codex", "requirements",
		`result := actor.power >= 2`))

	err := engine.ValidateSource("codex", "requirements", `result := ((`)
	require.Error(t, err)
	var scriptErr *ScriptError
	require.ErrorAs(t, err, &scriptErr)
	assert.Equal(t, ErrorTypeCompilation, scriptErr.Type)
}

func TestEngine_ExecutionTimeout(t *testing.T) {
	engine := newTestEngine(t, afero.NewMemMapFs())
	engine.runner.SetLimits(Limits{MaxExecutionTime: 50 * time.Millisecond})
	engine.RegisterProvider(&testProvider{
		module:  "match",
		scripts: map[string]string{"spin": `for true {}`},
	})
	require.NoError(t, engine.Initialize(context.Background(), false))

	_, err := engine.Execute(context.Background(), "match", "spin", nil)
	require.Error(t, err)
	var scriptErr *ScriptError
	require.ErrorAs(t, err, &scriptErr)
	assert.Equal(t, ErrorTypeTimeout, scriptErr.Type)
}

func TestEngine_ExtractDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	engine := newTestEngine(t, fs)
	engine.RegisterProvider(&testProvider{
		module:  "match",
		scripts: map[string]string{"double": `result := amount * 2`},
	})
	require.NoError(t, engine.Initialize(context.Background(), false))

	require.NoError(t, engine.ExtractDefaults("exported"))

	content, err := afero.ReadFile(fs, "exported/match/double.tengo")
	require.NoError(t, err)
	assert.Equal(t, `result := amount * 2`, string(content))
}
