package tasks

import (
	"context"
	"slices"
	"strings"

	genagents "github.com/wafo210715/generative-agents"
	"github.com/wafo210715/generative-agents/task"
)

// Entry describes a task for tools that run tasks by name with literal
// template inputs.
type Entry struct {
	Name       string
	TemplateID string

	// Run executes the task with zero arguments. Callers pass
	// task.WithTestInput; argument-dependent fallbacks and post-steps see
	// empty arguments.
	Run func(ctx context.Context, rt *task.Runtime, opts ...task.Option) (any, genagents.RunRecord, error)
}

func entry[A, T any](t task.Task[A, T]) Entry {
	return Entry{
		Name:       t.Name,
		TemplateID: t.TemplateID,
		Run: func(ctx context.Context, rt *task.Runtime, opts ...task.Option) (any, genagents.RunRecord, error) {
			var args A
			v, r, err := t.Execute(ctx, rt, args, opts...)
			return v, r.Record(), err
		},
	}
}

// Catalog lists every task, sorted by name.
func Catalog() []Entry {
	entries := []Entry{
		entry(WakeUpHour),
		entry(DailyPlan),
		entry(HourlySchedule),
		entry(TaskDecomp),
		entry(ActionSector),
		entry(ActionArena),
		entry(ActionGameObject),
		entry(Pronunciatio),
		entry(EventTriple),
		entry(EventPoignancy),
		entry(CreateConversation),
		entry(DecideToTalk),
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return entries
}

// Lookup returns the catalog entry called name.
func Lookup(name string) (Entry, bool) {
	for _, e := range Catalog() {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}
