package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/chainrules/internal/rules"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func parseNumber(t *testing.T, s string) complex128 {
	t.Helper()
	c, err := strconv.ParseComplex(s, 128)
	require.NoError(t, err, s)
	return c
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "chainrules", cmd.Use)

	for _, name := range []string{"list", "show", "eval", "check", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "yaml", "version")
	assert.ErrorContains(t, err, "invalid format")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "chainrules "+Version+"\n", out)

	out, err = execute(t, "--format", "json", "version")
	require.NoError(t, err)
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, Version, v["version"])
}

func TestList(t *testing.T) {
	out, err := execute(t, "list", "--func", "abs")
	require.NoError(t, err)
	assert.Contains(t, out, "abs(Complex)")
	assert.Contains(t, out, "abs(Real)")
	assert.Contains(t, out, "2 rules\n")

	out, err = execute(t, "--format", "json", "list")
	require.NoError(t, err)
	var infos []RuleInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	assert.Len(t, infos, 52)

	byKey := make(map[string]RuleInfo)
	for _, info := range infos {
		byKey[info.Key] = info
		assert.NotEqual(t, "-", info.Pos, info.Key)
	}
	assert.True(t, byKey["*(Number, Number, Number, Number...)"].Split)
	assert.True(t, byKey["abs(Complex)"].RealOut)
	assert.True(t, byKey["sin(Number)"].Partials)
}

func TestShow(t *testing.T) {
	out, err := execute(t, "show", "tan(Real)")
	require.NoError(t, err)
	assert.Contains(t, out, "tan(Number) [standard]")
	assert.Contains(t, out, "tan(Number) [fast]")
	assert.Contains(t, out, "(tan_fast x0)")
	assert.NotContains(t, out, "diff")

	out, err = execute(t, "--format", "json", "show", "--diff", "*(Real, Real, Real, Real, Real)")
	require.NoError(t, err)
	var res ShowResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "*(Number, Number, Number, Number...)", res.Standard.Key)
	assert.Contains(t, res.Standard.Split, "*")
	assert.Contains(t, res.Fast.Split, "mul_fast")
	assert.NotEmpty(t, res.Diff)

	_, err = execute(t, "show", "nosuch(Real)")
	assert.True(t, errors.Is(err, rules.ErrNoRule))
	_, err = execute(t, "show", "sin(Quaternion)")
	assert.Error(t, err)
}

func TestEval(t *testing.T) {
	out, err := execute(t, "--format", "json", "eval", "atan(Real, Real)", "3", "4")
	require.NoError(t, err)
	var res EvalResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))

	assert.Equal(t, "atan(Real, Real)", res.Rule)
	assert.Equal(t, "standard", res.Mode)
	assert.InDelta(t, math.Atan2(3, 4), real(parseNumber(t, res.Primal)), 1e-15)
	// Both tangents default to 1.
	assert.InDelta(t, 4.0/25-3.0/25, real(parseNumber(t, res.Tangent)), 1e-15)
	require.Len(t, res.Cotangents, 2)
	assert.InDelta(t, 4.0/25, real(parseNumber(t, res.Cotangents[0])), 1e-15)
	assert.InDelta(t, -3.0/25, real(parseNumber(t, res.Cotangents[1])), 1e-15)
	require.Len(t, res.Partials, 2)
}

func TestEval_FastComplex(t *testing.T) {
	out, err := execute(t, "--format", "json", "eval", "--mode", "fast", "--ct", "(1+1i)", "exp(Complex)", "(0.5-0.25i)")
	require.NoError(t, err)
	var res EvalResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "fast", res.Mode)
	assert.Equal(t, "exp(Number)", res.Rule)

	want := complex(math.Exp(0.5)*math.Cos(-0.25), math.Exp(0.5)*math.Sin(-0.25))
	got := parseNumber(t, res.Primal)
	assert.InDelta(t, real(want), real(got), 1e-4)
	assert.InDelta(t, imag(want), imag(got), 1e-4)
}

func TestEval_Errors(t *testing.T) {
	_, err := execute(t, "eval", "sin(Real)", "abc")
	assert.ErrorContains(t, err, "argument 0")
	_, err = execute(t, "eval", "--mode", "turbo", "sin(Real)", "1")
	assert.ErrorContains(t, err, "turbo")
	_, err = execute(t, "eval", "sin(Real)", "1", "2")
	assert.True(t, errors.Is(err, rules.ErrArity))
	_, err = execute(t, "eval", "sin(Real, Real)", "1", "2")
	assert.True(t, errors.Is(err, rules.ErrNoRule))
}

func TestCheck(t *testing.T) {
	out, err := execute(t, "check", "--standard-only", "sin(Real)", "exp(Real)")
	require.NoError(t, err)
	assert.Contains(t, out, "sin(Number)")
	assert.Contains(t, out, "exp(Number)")
	assert.Contains(t, out, "2 rules, 0 failures")

	out, err = execute(t, "--format", "json", "check", "*(Real, Real)")
	require.NoError(t, err)
	var summary CheckSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 1, summary.Rules)
	assert.Empty(t, summary.Failures)

	out, err = execute(t, "check", "--dump-config")
	require.NoError(t, err)
	assert.Contains(t, out, "samples: 32")

	_, err = execute(t, "check", "nosuch(Real)")
	assert.True(t, errors.Is(err, rules.ErrNoRule))
	_, err = execute(t, "check", "--config", "/nonexistent/check.yaml")
	assert.Error(t, err)
}
