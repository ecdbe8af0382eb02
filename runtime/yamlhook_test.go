package runtime

import (
	"testing"

	"github.com/panyam/pylang/decl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYAMLEmbedHook(t *testing.T) {
	in, out := setupInterp(t, WithEmbedHook(YAMLEmbedHook))
	run(t, in,
		&decl.EmbedStmt{Code: `
name: demo
count: 3
ratio: 0.25
on: true
missing: ~
tags: [a, b]
limits: {low: 1, high: 10}
quoted: "12"
`},
		&decl.PrintStmt{Args: []decl.Expr{vr("name"), vr("count"), vr("ratio"), vr("tags"), vr("limits")}},
	)
	assert.Equal(t, `demo 3 0.25 ["a", "b"] {"low": 1, "high": 10}`+"\n", out.String())
	assert.Equal(t, BoolValue(true), lookup(t, in, "on"))
	assert.Equal(t, None, lookup(t, in, "missing"))
	assert.Equal(t, StringValue("12"), lookup(t, in, "quoted"))
}

func TestYAMLEmbedHookErrors(t *testing.T) {
	bindings := map[string]Value{}
	assert.Error(t, YAMLEmbedHook("- just\n- a list", bindings))
	assert.Error(t, YAMLEmbedHook("a: [1", bindings))
	assert.Error(t, YAMLEmbedHook("a: 1\nb: .inf", bindings))
	assert.Empty(t, bindings, "nothing is bound when conversion fails")
	require.NoError(t, YAMLEmbedHook("", bindings))
}
