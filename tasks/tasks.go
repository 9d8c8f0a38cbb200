// Package tasks holds the concrete prompt tasks of the simulation.
//
// Every task is a task.Task value plus a Run function with the caller
// contract used by the simulation layer:
//
//	hour, result, err := tasks.RunWakeUpHour(ctx, rt, persona)
//	hour, result, err := tasks.RunWakeUpHour(ctx, rt, nil, task.WithTestInput(iss, lifestyle, "Isabella"))
//
// Templates live under templates/ and are embedded as DefaultTemplates.
package tasks

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wafo210715/generative-agents/safe"
	"github.com/wafo210715/generative-agents/template"
)

//go:embed templates
var embedded embed.FS

// DefaultTemplates is the template tree every task's TemplateID resolves
// against.
var DefaultTemplates fs.FS = mustSub(embedded, "templates")

// NewTemplateEngine returns an engine over DefaultTemplates.
func NewTemplateEngine() *template.Engine {
	return template.New(DefaultTemplates)
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Persona is the read-only view of a simulated agent that tasks build their
// prompts from.
type Persona interface {
	// Name is the full name, e.g. "Isabella Rodriguez".
	Name() string
	FirstName() string
	LastName() string

	// Identity is the identity stable set: a paragraph summarizing who the
	// persona is.
	Identity() string
	Lifestyle() string

	// CurrentTime is the simulation clock as seen by the persona.
	CurrentTime() time.Time

	// DailyRequirements are the broad strokes of today's plan.
	DailyRequirements() []string

	// LivingArea is the "world:sector:arena" address of the persona's home.
	LivingArea() string

	// CurrentAction is the description of what the persona is doing.
	CurrentAction() string

	// OnTheWay reports whether the persona is still walking to the place
	// of its current action.
	OnTheWay() bool
}

// SpatialMemory is what a persona knows about the places it can reach.
type SpatialMemory interface {
	Sectors(world string) []string
	Arenas(world, sector string) []string
	Objects(address string) []string
}

var (
	errNoPersona = errors.New("persona is required")
	errNotText   = errors.New("output is not a string")
)

// text returns the trimmed string value of out. Numbers, lists and other
// non-string answers are rejected.
func text(out safe.Output) (string, error) {
	if !out.IsString() {
		return "", fmt.Errorf("%w: %s", errNotText, out.Raw())
	}
	return strings.TrimSpace(out.String()), nil
}

// dateString formats the simulation date the way prompts show it.
func dateString(t time.Time) string {
	return t.Format("Monday January 2")
}

// dailyPlanString renders the daily requirements as one sentence, or "" when
// there are none.
func dailyPlanString(p Persona) string {
	reqs := p.DailyRequirements()
	if len(reqs) == 0 {
		return ""
	}
	return "Today " + p.Name() + " is planning to " + strings.Join(reqs, ", ") + "."
}

// livingSector returns the sector part of the living area.
func livingSector(p Persona) string {
	parts := strings.Split(p.LivingArea(), ":")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// actionParts splits "sleeping (bed)" into "sleeping" and "bed". Descriptions
// without a parenthesized detail return the description twice.
func actionParts(desc string) (summary, detail string) {
	open := strings.LastIndex(desc, "(")
	if open < 0 {
		return desc, desc
	}
	summary = strings.TrimSpace(desc[:strings.Index(desc, "(")])
	detail = desc[open+1:]
	if i := strings.Index(detail, ")"); i >= 0 {
		detail = detail[:i]
	}
	return summary, detail
}

// ownedOnly drops places that belong to other families, e.g. other
// personas' houses.
func ownedOnly(places []string, marker, lastName string) []string {
	out := make([]string, 0, len(places))
	for _, p := range places {
		if strings.Contains(p, marker) && !strings.Contains(p, lastName) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// shortID is a throwaway identifier that keeps the model from copying
// earlier schedule lines verbatim.
func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
