// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/chainrules/rules"
)

func TestInit(t *testing.T) {
	require.NoError(t, rules.Init())
	std := rules.CatalogueFor(rules.Standard)
	fast := rules.CatalogueFor(rules.Fast)
	assert.Equal(t, std.Keys(), fast.Keys())
	assert.NotSame(t, std, fast)
}

func TestModeSwitch(t *testing.T) {
	defer rules.SetMode(rules.CurrentMode())

	m, err := rules.ParseMode("fast")
	require.NoError(t, err)
	rules.SetMode(m)
	assert.Equal(t, rules.Fast, rules.CurrentMode())

	rr, ok := rules.LookupReverse(rules.Call("exp", rules.Real))
	require.True(t, ok)
	fast, ok := rules.CatalogueFor(rules.Fast).Rule(rr.Rule().Key())
	require.True(t, ok)
	assert.Same(t, fast, rr.Rule())

	rules.SetMode(rules.Standard)
	_, ok = rules.LookupDerivatives(rules.Call("exp", rules.Real))
	assert.True(t, ok)
}

func TestSignatures(t *testing.T) {
	sig, err := rules.ParseSignature("atan(Real, Real)")
	require.NoError(t, err)
	assert.Equal(t, rules.Call("atan", rules.Real, rules.Real), sig)

	_, ok := rules.LookupForward(rules.Call("nosuch", rules.Real))
	assert.False(t, ok)

	rr, ok := rules.LookupReverse(rules.Call("sin", rules.Real))
	require.True(t, ok)
	_, _, err = rr.Apply()
	assert.ErrorIs(t, err, rules.ErrArity)
	var re *rules.RuleError
	assert.ErrorAs(t, err, &re)
}

func TestProject(t *testing.T) {
	assert.Equal(t, rules.Float(1), rules.Project(rules.Real, rules.Cmplx(1, 2)))
	assert.True(t, rules.Project(rules.Discrete, rules.Float(1)).IsNone())
	assert.True(t, rules.Zero().IsSentinel())
	assert.True(t, rules.None().IsNone())
}
