// Package template resolves prompt templates into prompt text.
//
// A template is a plain text file addressed by its path relative to the
// template root. Positional placeholders of the form !<INPUT k>! are replaced
// by the k-th input, and an optional commentary block at the top of the file
// (documentation for template authors) is removed:
//
//	Variables:
//	!<INPUT 0>! -- persona name
//	<commentblockmarker>###</commentblockmarker>
//	What time does !<INPUT 0>! wake up?
//
// Templates are read on every resolution so edits take effect without a
// restart.
package template

import (
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	genagents "github.com/wafo210715/generative-agents"
)

// CommentMarker separates the author commentary from the prompt body.
const CommentMarker = "<commentblockmarker>###</commentblockmarker>"

// Resolver turns a template id and ordered inputs into a prompt.
type Resolver interface {
	Resolve(id string, inputs []any) (string, error)
}

// Engine reads templates from a file system and substitutes inputs.
//
// Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	fsys fs.FS
}

var _ Resolver = (*Engine)(nil)

// New creates an Engine over fsys. Template ids are fs.FS paths
// (slash-separated, unrooted).
func New(fsys fs.FS) *Engine {
	return &Engine{fsys: fsys}
}

// NewDir creates an Engine over the directory tree rooted at dir.
func NewDir(dir string) *Engine {
	return New(os.DirFS(dir))
}

// Resolve reads the template id, substitutes inputs[i] for every
// !<INPUT i>! occurrence, strips the commentary block and trims surrounding
// whitespace.
//
// Inputs are stringified with fmt.Sprint. Placeholders without a matching
// input are left intact. A missing or unreadable template yields an error
// wrapping [genagents.ErrTemplateNotFound].
func (e *Engine) Resolve(id string, inputs []any) (string, error) {
	raw, err := e.read(id)
	if err != nil {
		return "", err
	}
	return Render(raw, inputs), nil
}

// ResolveOne resolves a template that takes a single input.
func (e *Engine) ResolveOne(id string, input any) (string, error) {
	return e.Resolve(id, []any{input})
}

// Load returns the commentary-stripped, trimmed template body without any
// substitution.
func (e *Engine) Load(id string) (string, error) {
	raw, err := e.read(id)
	if err != nil {
		return "", err
	}
	return StripCommentary(raw), nil
}

func (e *Engine) read(id string) (string, error) {
	if e == nil || e.fsys == nil {
		return "", fmt.Errorf("%w: %s: no template root", genagents.ErrTemplateNotFound, id)
	}
	data, err := fs.ReadFile(e.fsys, strings.TrimPrefix(id, "/"))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", genagents.ErrTemplateNotFound, id, err)
	}
	return string(data), nil
}

// Render applies input substitution and commentary stripping to raw
// template text.
func Render(raw string, inputs []any) string {
	if len(inputs) > 0 {
		pairs := make([]string, 0, 2*len(inputs))
		for i, in := range inputs {
			pairs = append(pairs, Placeholder(i), fmt.Sprint(in))
		}
		raw = strings.NewReplacer(pairs...).Replace(raw)
	}
	return StripCommentary(raw)
}

// StripCommentary keeps the text between the first and second
// [CommentMarker] (or the end of text) and trims it.
func StripCommentary(text string) string {
	if _, after, found := strings.Cut(text, CommentMarker); found {
		text, _, _ = strings.Cut(after, CommentMarker)
	}
	return strings.TrimSpace(text)
}

// Placeholder returns the placeholder token for input i.
func Placeholder(i int) string {
	return "!<INPUT " + strconv.Itoa(i) + ">!"
}
