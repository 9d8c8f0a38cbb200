package tasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wafo210715/generative-agents/safe"
	"github.com/wafo210715/generative-agents/schema"
	"github.com/wafo210715/generative-agents/task"
)

// Pronunciatio asks for an emoji that depicts an action.
var Pronunciatio = task.Task[string, string]{
	Name:               "pronunciatio",
	TemplateID:         "v2/generate_pronunciatio_v1.txt",
	ExampleOutput:      "🎶",
	SpecialInstruction: "Output ONLY a single emoji, no text.",
	Fallback:           "💡",
	BuildInputs: func(action string) ([]any, error) {
		_, detail := actionParts(action)
		return []any{detail}, nil
	},
	CleanUp: func(out safe.Output, _ string) (string, error) {
		s, err := text(out)
		if err != nil {
			return "", err
		}
		if s == "" {
			return "", errors.New("empty emoji")
		}
		return s, nil
	},
}

// RunPronunciatio returns an emoji for action.
func RunPronunciatio(ctx context.Context, rt *task.Runtime, action string, opts ...task.Option) (string, task.Result[string], error) {
	return Pronunciatio.Execute(ctx, rt, action, opts...)
}

// -----------------------------------------------------------------------------
// Event triple
// -----------------------------------------------------------------------------

// EventArgs pairs a persona with a description of something it did or
// observed.
type EventArgs struct {
	Persona     Persona
	Description string
}

// EventTriple turns an action into a (subject, predicate, object) triple.
var EventTriple = task.Task[EventArgs, [3]string]{
	Name:               "event_triple",
	TemplateID:         "v2/generate_event_triple_v1.txt",
	ExampleOutput:      [3]string{"Isabella Rodriguez", "waiting", "the cafe"},
	SpecialInstruction: `Output ONLY a JSON list with 3 elements: ["subject", "predicate", "object"]`,
	Schema:             schema.MustCompile(schema.For[[3]string]()),
	FallbackFor: func(a EventArgs) [3]string {
		subject := "person"
		if a.Persona != nil {
			subject = a.Persona.Name()
		}
		return [3]string{subject, "is", "idle"}
	},
	BuildInputs: func(a EventArgs) ([]any, error) {
		if a.Persona == nil {
			return nil, errNoPersona
		}
		return []any{a.Persona.Name(), a.Description}, nil
	},
	CleanUp: func(out safe.Output, _ string) ([3]string, error) {
		var triple [3]string
		if err := out.Decode(&triple); err != nil {
			return triple, err
		}
		for i, s := range triple {
			triple[i] = strings.TrimSpace(s)
			if triple[i] == "" {
				return triple, fmt.Errorf("empty triple element %d", i)
			}
		}
		return triple, nil
	},
}

// RunEventTriple returns the triple describing args.Description.
func RunEventTriple(ctx context.Context, rt *task.Runtime, args EventArgs, opts ...task.Option) ([3]string, task.Result[[3]string], error) {
	return EventTriple.Execute(ctx, rt, args, opts...)
}

// -----------------------------------------------------------------------------
// Event poignancy
// -----------------------------------------------------------------------------

// EventPoignancy rates how memorable an event is on a 1 to 10 scale.
var EventPoignancy = task.Task[EventArgs, int]{
	Name:               "event_poignancy",
	TemplateID:         "v2/poignancy_event_v1.txt",
	ExampleOutput:      "5",
	SpecialInstruction: "Output ONLY a single integer between 1-10.",
	Fallback:           5,
	BuildInputs: func(a EventArgs) ([]any, error) {
		if a.Persona == nil {
			return nil, errNoPersona
		}
		p := a.Persona
		return []any{p.Name(), p.Identity(), p.Name(), a.Description}, nil
	},
	CleanUp: func(out safe.Output, _ string) (int, error) {
		n, err := strconv.Atoi(strings.TrimSpace(out.String()))
		if err != nil {
			return 0, err
		}
		if n < 1 || n > 10 {
			return 0, fmt.Errorf("poignancy %d out of range", n)
		}
		return n, nil
	},
}

// RunEventPoignancy returns the poignancy of args.Description.
func RunEventPoignancy(ctx context.Context, rt *task.Runtime, args EventArgs, opts ...task.Option) (int, task.Result[int], error) {
	return EventPoignancy.Execute(ctx, rt, args, opts...)
}
