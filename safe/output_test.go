package safe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutput_String(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"7am"`, "7am"},
		{`"line\nbreak"`, "line\nbreak"},
		{`7`, "7"},
		{`["a","b"]`, `["a","b"]`},
		{`null`, "null"},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, NewOutput(tc.raw).String())
		})
	}
}

func TestOutput_Decode(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		var got []string
		require.NoError(t, NewOutput(`["a","b"]`).Decode(&got))
		assert.Equal(t, []string{"a", "b"}, got)
	})

	t.Run("json inside string", func(t *testing.T) {
		var got [][]string
		require.NoError(t, NewOutput(`"[[\"Jane\", \"Hi!\"]]"`).Decode(&got))
		assert.Equal(t, [][]string{{"Jane", "Hi!"}}, got)
	})

	t.Run("string into string", func(t *testing.T) {
		var got string
		require.NoError(t, NewOutput(`"hello"`).Decode(&got))
		assert.Equal(t, "hello", got)
	})

	t.Run("mismatch", func(t *testing.T) {
		var got int
		assert.Error(t, NewOutput(`"seven"`).Decode(&got))
		assert.Error(t, NewOutput(`[1]`).Decode(&got))
	})
}

func TestOutput_Predicates(t *testing.T) {
	assert.True(t, NewOutput(`"x"`).IsString())
	assert.False(t, NewOutput(`1`).IsString())
	assert.True(t, NewOutput(`null`).IsNull())
	assert.True(t, Output{}.IsNull())
	assert.False(t, NewOutput(`0`).IsNull())
}

func TestExtract(t *testing.T) {
	assert.Equal(t, `{"a": {"b": 1}}`, Extract(` {"a": {"b": 1}} done `))
	assert.Equal(t, "", Extract("no braces"))
	assert.Equal(t, "", Extract(""))
}
