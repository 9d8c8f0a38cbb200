package template

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	genagents "github.com/wafo210715/generative-agents"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"v2/wake_up_hour_v1.txt": {Data: []byte(
			"wake_up_hour_v1.txt\n\nVariables:\n!<INPUT 0>! -- Identity Stable Set\n" +
				CommentMarker + "\n!<INPUT 0>!\n\nIn general, !<INPUT 1>! goes to bed at !<INPUT 2>!.\n" +
				"!<INPUT 3>!'s wake up hour:\n",
		)},
		"plain.txt":   {Data: []byte("  Hello !<INPUT 0>!, meet !<INPUT 1>!.  \n")},
		"twice.txt":   {Data: []byte("a" + CommentMarker + "b" + CommentMarker + "c")},
		"unused.txt":  {Data: []byte("!<INPUT 0>! and !<INPUT 1>!")},
		"numbers.txt": {Data: []byte("!<INPUT 1>!|!<INPUT 10>!")},
	}
}

func TestEngine_Resolve(t *testing.T) {
	engine := New(testFS())

	tests := []struct {
		name   string
		id     string
		inputs []any
		want   string
	}{
		{
			name:   "substitutes and trims",
			id:     "plain.txt",
			inputs: []any{"Isabella", "Klaus"},
			want:   "Hello Isabella, meet Klaus.",
		},
		{
			name:   "strips commentary",
			id:     "v2/wake_up_hour_v1.txt",
			inputs: []any{"Name: Isabella", "Isabella", "11pm", "Isabella"},
			want: "Name: Isabella\n\nIn general, Isabella goes to bed at 11pm.\n" +
				"Isabella's wake up hour:",
		},
		{
			name:   "second marker ends the prompt",
			id:     "twice.txt",
			inputs: nil,
			want:   "b",
		},
		{
			name:   "leaves unmatched placeholders",
			id:     "unused.txt",
			inputs: []any{"x"},
			want:   "x and !<INPUT 1>!",
		},
		{
			name:   "stringifies non-string inputs",
			id:     "plain.txt",
			inputs: []any{42, 3.5},
			want:   "Hello 42, meet 3.5.",
		},
		{
			name: "distinguishes multi-digit indices",
			id:   "numbers.txt",
			inputs: []any{
				"i0", "i1", "i2", "i3", "i4", "i5", "i6", "i7", "i8", "i9", "i10",
			},
			want: "i1|i10",
		},
		{
			name:   "leading slash tolerated",
			id:     "/plain.txt",
			inputs: []any{"a", "b"},
			want:   "Hello a, meet b.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Resolve(tt.id, tt.inputs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_ResolveOne(t *testing.T) {
	engine := New(fstest.MapFS{"one.txt": {Data: []byte("[!<INPUT 0>!]")}})

	got, err := engine.ResolveOne("one.txt", "solo")
	require.NoError(t, err)
	assert.Equal(t, "[solo]", got)
}

func TestEngine_NotFound(t *testing.T) {
	engine := New(testFS())

	_, err := engine.Resolve("missing.txt", []any{"x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, genagents.ErrTemplateNotFound)
	assert.Contains(t, err.Error(), "missing.txt")
	assert.True(t, genagents.IsConfigError(err))

	var zero *Engine
	_, err = zero.Load("plain.txt")
	assert.ErrorIs(t, err, genagents.ErrTemplateNotFound)
}

func TestEngine_Load(t *testing.T) {
	engine := New(testFS())

	got, err := engine.Load("v2/wake_up_hour_v1.txt")
	require.NoError(t, err)
	assert.Equal(t, "!<INPUT 0>!\n\nIn general, !<INPUT 1>! goes to bed at !<INPUT 2>!.\n"+
		"!<INPUT 3>!'s wake up hour:", got)
}

func TestEngine_RereadsOnEveryResolve(t *testing.T) {
	fsys := fstest.MapFS{"t.txt": {Data: []byte("first !<INPUT 0>!")}}
	engine := New(fsys)

	got, err := engine.Resolve("t.txt", []any{"x"})
	require.NoError(t, err)
	assert.Equal(t, "first x", got)

	fsys["t.txt"] = &fstest.MapFile{Data: []byte("second !<INPUT 0>!")}
	got, err = engine.Resolve("t.txt", []any{"x"})
	require.NoError(t, err)
	assert.Equal(t, "second x", got)
}

func TestNewDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi !<INPUT 0>!\n"), 0o644))

	got, err := NewDir(dir).Resolve("hello.txt", []any{"there"})
	require.NoError(t, err)
	assert.Equal(t, "hi there", got)
}
