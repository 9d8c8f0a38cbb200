package tasks

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wafo210715/generative-agents/safe"
	"github.com/wafo210715/generative-agents/schema"
	"github.com/wafo210715/generative-agents/task"
)

// -----------------------------------------------------------------------------
// Wake-up hour
// -----------------------------------------------------------------------------

// WakeUpHour asks for the hour the persona wakes up.
var WakeUpHour = task.Task[Persona, int]{
	Name:               "wake_up_hour",
	TemplateID:         "v2/wake_up_hour_v1.txt",
	ExampleOutput:      "8",
	SpecialInstruction: "Output only a single number representing the hour",
	Fallback:           8,
	BuildInputs: func(p Persona) ([]any, error) {
		if p == nil {
			return nil, errNoPersona
		}
		return []any{p.Identity(), p.Lifestyle(), p.FirstName()}, nil
	},
	CleanUp: func(out safe.Output, _ string) (int, error) {
		s := strings.ToLower(strings.TrimSpace(out.String()))
		s, _, _ = strings.Cut(s, "am")
		return strconv.Atoi(strings.TrimSpace(s))
	},
}

// RunWakeUpHour returns the hour p wakes up.
func RunWakeUpHour(ctx context.Context, rt *task.Runtime, p Persona, opts ...task.Option) (int, task.Result[int], error) {
	return WakeUpHour.Execute(ctx, rt, p, opts...)
}

// -----------------------------------------------------------------------------
// Daily plan
// -----------------------------------------------------------------------------

// DailyPlanArgs are the arguments of DailyPlan.
type DailyPlanArgs struct {
	Persona    Persona
	WakeUpHour int
}

var defaultDay = []string{
	"wake up and complete the morning routine at 6:00 am",
	"eat breakfast at 7:00 am",
	"read a book from 8:00 am to 12:00 pm",
	"have lunch at 12:00 pm",
	"take a nap from 1:00 pm to 4:00 pm",
	"relax and watch TV from 7:00 pm to 8:00 pm",
	"go to bed at 11:00 pm",
}

// numberedItem matches the "1)" markers of a numbered list.
var numberedItem = regexp.MustCompile(`(?:^|\s)\d+\)\s*`)

// DailyPlan asks for the broad strokes of the persona's day.
var DailyPlan = task.Task[DailyPlanArgs, []string]{
	Name:       "daily_plan",
	TemplateID: "v2/daily_planning_v1.txt",
	ExampleOutput: []string{
		"wake up and complete the morning routine at 6:00 am",
		"eat breakfast at 7:00 am",
	},
	SpecialInstruction: "Output numbered list of activities",
	FallbackFor: func(DailyPlanArgs) []string {
		return append([]string(nil), defaultDay...)
	},
	BuildInputs: func(a DailyPlanArgs) ([]any, error) {
		p := a.Persona
		if p == nil {
			return nil, errNoPersona
		}
		return []any{
			p.Identity(),
			p.Lifestyle(),
			dateString(p.CurrentTime()),
			p.FirstName(),
			fmt.Sprintf("%d:00 am", a.WakeUpHour),
		}, nil
	},
	CleanUp: func(out safe.Output, _ string) ([]string, error) {
		var items []string
		if out.IsString() {
			items = numberedItem.Split(out.String(), -1)
		} else if err := out.Decode(&items); err != nil {
			return nil, err
		}

		plan := make([]string, 0, len(items))
		for _, item := range items {
			item = strings.TrimRight(strings.TrimSpace(item), ".,")
			if item != "" {
				plan = append(plan, strings.TrimSpace(item))
			}
		}
		if len(plan) == 0 {
			return nil, errors.New("empty plan")
		}
		return plan, nil
	},
}

// RunDailyPlan returns the persona's plan for the day.
func RunDailyPlan(ctx context.Context, rt *task.Runtime, p Persona, wakeUpHour int, opts ...task.Option) ([]string, task.Result[[]string], error) {
	return DailyPlan.Execute(ctx, rt, DailyPlanArgs{Persona: p, WakeUpHour: wakeUpHour}, opts...)
}

// -----------------------------------------------------------------------------
// Hourly schedule
// -----------------------------------------------------------------------------

// HourlyScheduleArgs are the arguments of HourlySchedule.
type HourlyScheduleArgs struct {
	Persona Persona

	// CurrentHour is the hour being filled in, e.g. "08:00 AM".
	CurrentHour string

	// Prior holds the activities already decided, one per hour.
	Prior []string

	// Hours labels every hour of the day.
	Hours []string

	// Intermission is an optional extra paragraph inserted before the
	// schedule to complete.
	Intermission string
}

// HourlySchedule asks what the persona does during one hour of the day.
var HourlySchedule = task.Task[HourlyScheduleArgs, string]{
	Name:               "generate_hourly_schedule",
	TemplateID:         "v2/generate_hourly_schedule_v2.txt",
	ExampleOutput:      "studying for her music classes",
	SpecialInstruction: "Output ONLY the activity description without the persona name",
	Fallback:           "asleep",
	BuildInputs:        hourlyInputs,
	CleanUp: func(out safe.Output, _ string) (string, error) {
		s, err := text(out)
		if err != nil {
			return "", err
		}
		s = strings.TrimSpace(strings.TrimSuffix(s, "."))
		if s == "" {
			return "", errors.New("empty activity")
		}
		return s, nil
	},
}

func hourlyInputs(a HourlyScheduleArgs) ([]any, error) {
	p := a.Persona
	if p == nil {
		return nil, errNoPersona
	}
	if len(a.Prior) > len(a.Hours) {
		return nil, fmt.Errorf("%d prior activities for %d hours", len(a.Prior), len(a.Hours))
	}
	date := dateString(p.CurrentTime())
	first := p.FirstName()

	format := make([]string, len(a.Hours))
	for i, h := range a.Hours {
		format[i] = fmt.Sprintf("[%s -- %s] Activity: [Fill in]", date, h)
	}

	var reqs []string
	for i, r := range p.DailyRequirements() {
		reqs = append(reqs, fmt.Sprintf("%d) %s", i+1, r))
	}
	intermission := fmt.Sprintf("Here the originally intended hourly breakdown of %s's schedule today: %s",
		first, strings.Join(reqs, ", "))

	var prior strings.Builder
	if len(a.Prior) > 0 {
		prior.WriteString("\n")
		for i, act := range a.Prior {
			fmt.Fprintf(&prior, "[(ID:%s) %s -- %s] Activity: %s is %s\n", shortID(), date, a.Hours[i], first, act)
		}
	}

	extra := ""
	if a.Intermission != "" {
		extra = "\n" + a.Intermission
	}

	ending := fmt.Sprintf("[(ID:%s) %s -- %s] Activity: %s is", shortID(), date, a.CurrentHour, first)

	return []any{
		strings.Join(format, "\n"),
		p.Identity(),
		prior.String() + "\n",
		intermission,
		extra,
		ending,
	}, nil
}

// RunHourlySchedule returns the activity for args.CurrentHour.
func RunHourlySchedule(ctx context.Context, rt *task.Runtime, args HourlyScheduleArgs, opts ...task.Option) (string, task.Result[string], error) {
	return HourlySchedule.Execute(ctx, rt, args, opts...)
}

// -----------------------------------------------------------------------------
// Task decomposition
// -----------------------------------------------------------------------------

// Subtask is one step of a decomposed activity.
type Subtask struct {
	Task    string
	Minutes int
}

// Activity is one block of the hourly schedule.
type Activity struct {
	Description string
	Minutes     int
}

// TaskDecompArgs are the arguments of TaskDecomp.
type TaskDecompArgs struct {
	Persona Persona

	// Schedule is today's hourly schedule and Index the block being
	// decomposed.
	Schedule []Activity
	Index    int

	// Task is the activity to break down and Duration its length in
	// minutes.
	Task     string
	Duration int
}

var subtaskList = schema.MustCompile(schema.Array("Subtasks",
	schema.Tuple("Subtask and its duration",
		schema.String("Subtask").MinLength(1),
		schema.Integer("Minutes").Min(0),
	),
).MinItems(1).Schema())

// TaskDecomp breaks an activity into five-minute-granular subtasks whose
// durations add up to the activity's duration.
var TaskDecomp = task.Task[TaskDecompArgs, []Subtask]{
	Name:               "task_decomp",
	TemplateID:         "v2/task_decomp_v3.txt",
	ExampleOutput:      [][]any{{"waking up and completing her morning routine", 60}},
	SpecialInstruction: "Output ONLY a JSON list of lists, no extra text. Format: [[\"Task Name\", duration_in_minutes], ...]",
	FallbackFor: func(TaskDecompArgs) []Subtask {
		return []Subtask{{Task: "waiting", Minutes: 5}}
	},
	BuildInputs: decompInputs,
	CleanUp: func(out safe.Output, _ string) ([]Subtask, error) {
		if subtasks, ok, err := decodeSubtasks(out); ok {
			return subtasks, err
		}
		return parseSubtaskLines(out.String())
	},
	PostProcess: func(a TaskDecompArgs, subtasks []Subtask, r *task.Result[[]Subtask]) []Subtask {
		if r.UsedFallback || a.Duration <= 0 {
			return subtasks
		}
		return fitDuration(subtasks, a.Duration)
	},
}

func decompInputs(a TaskDecompArgs) ([]any, error) {
	p := a.Persona
	if p == nil {
		return nil, errNoPersona
	}
	if a.Index < 0 || a.Index >= len(a.Schedule) {
		return nil, fmt.Errorf("schedule index %d out of range", a.Index)
	}

	midnight := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	start := 0
	for _, act := range a.Schedule[:a.Index] {
		start += act.Minutes
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "Today is %s. From ", p.CurrentTime().Format("January 02, 2006"))

	var spans []string
	timeRange := ""
	for i := a.Index; i < len(a.Schedule) && i <= a.Index+2; i++ {
		end := start + a.Schedule[i].Minutes
		from := midnight.Add(time.Duration(start) * time.Minute).Format("15:04PM")
		to := midnight.Add(time.Duration(end) * time.Minute).Format("15:04PM")
		spans = append(spans, fmt.Sprintf("%s ~ %s, %s is planning on %s", from, to, p.Name(), a.Schedule[i].Description))
		if i == a.Index+1 {
			timeRange = from + " ~ " + to
		}
		start = end
	}
	summary.WriteString(strings.Join(spans, ", "))
	summary.WriteString(".")

	first := p.FirstName()
	return []any{
		p.Identity(),
		summary.String(),
		first,
		first,
		a.Task,
		timeRange,
		a.Duration,
		first,
	}, nil
}

// decodeSubtasks reads a JSON list of [task, minutes] pairs. ok is false when
// the output is not JSON at all, so the caller can try the line format.
func decodeSubtasks(out safe.Output) (subtasks []Subtask, ok bool, err error) {
	raw := []byte(out.Raw())
	if out.IsString() {
		raw = []byte(strings.TrimSpace(out.String()))
	}
	if _, err := schema.Decode(raw); err != nil {
		return nil, false, nil
	}
	v, err := subtaskList.ValidateJSON(raw)
	if err != nil {
		return nil, true, err
	}

	for _, item := range v.([]any) {
		pair := item.([]any)
		minutes, convErr := strconv.Atoi(fmt.Sprint(pair[1]))
		if convErr != nil {
			return nil, true, convErr
		}
		subtasks = append(subtasks, Subtask{Task: pair[0].(string), Minutes: minutes})
	}
	return subtasks, true, nil
}

// parseSubtaskLines reads lines of the form
// "1) waking up (duration in minutes: 5, minutes left: 55)".
func parseSubtaskLines(text string) ([]Subtask, error) {
	var subtasks []Subtask
	for _, line := range strings.Split(strings.ReplaceAll(text, `\n`, "\n"), "\n") {
		name, rest, found := strings.Cut(strings.TrimSpace(line), "(duration in minutes:")
		if !found {
			continue
		}
		name = strings.TrimSuffix(strings.TrimSpace(numberedItem.ReplaceAllString(name, "")), ".")
		field, _, _ := strings.Cut(rest, ",")
		minutes, err := strconv.Atoi(strings.TrimSpace(strings.TrimRight(field, ") ")))
		if err != nil {
			minutes = 5
		}
		subtasks = append(subtasks, Subtask{Task: name, Minutes: max(1, minutes)})
	}
	if len(subtasks) == 0 {
		return nil, errors.New("no subtasks found")
	}
	return subtasks, nil
}

// fitDuration rounds every subtask down to five minutes, merges neighbours
// with the same name and stretches or trims the tail so the total equals
// total.
func fitDuration(subtasks []Subtask, total int) []Subtask {
	var out []Subtask
	for _, s := range subtasks {
		m := s.Minutes - s.Minutes%5
		if m <= 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Task == s.Task {
			out[n-1].Minutes += m
			continue
		}
		out = append(out, Subtask{Task: s.Task, Minutes: m})
	}
	if len(out) == 0 {
		return subtasks
	}

	sum := 0
	for _, s := range out {
		sum += s.Minutes
	}
	switch {
	case sum < total:
		out[len(out)-1].Minutes += total - sum
	case sum > total:
		excess := sum - total
		for excess > 0 && len(out) > 0 {
			last := &out[len(out)-1]
			if last.Minutes > excess {
				last.Minutes -= excess
				break
			}
			excess -= last.Minutes
			out = out[:len(out)-1]
		}
	}
	return out
}

// RunTaskDecomp breaks args.Task into subtasks.
func RunTaskDecomp(ctx context.Context, rt *task.Runtime, args TaskDecompArgs, opts ...task.Option) ([]Subtask, task.Result[[]Subtask], error) {
	return TaskDecomp.Execute(ctx, rt, args, opts...)
}
