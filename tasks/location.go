package tasks

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/wafo210715/generative-agents/safe"
	"github.com/wafo210715/generative-agents/task"
)

// -----------------------------------------------------------------------------
// Action sector
// -----------------------------------------------------------------------------

// ActionSectorArgs are the arguments of ActionSector.
type ActionSectorArgs struct {
	Persona Persona
	Spatial SpatialMemory

	// Action is the action description, e.g. "having lunch (eating a sandwich)".
	Action string

	// World and Sector locate the persona's current tile.
	World  string
	Sector string

	// Rand picks the fallback sector. Nil uses the first accessible sector.
	Rand *rand.Rand
}

// accessibleSectors lists the sectors of the world the persona may enter.
func (a ActionSectorArgs) accessibleSectors() []string {
	if a.Spatial == nil {
		return nil
	}
	last := ""
	if a.Persona != nil {
		last = a.Persona.LastName()
	}
	return ownedOnly(a.Spatial.Sectors(a.World), "'s house", last)
}

// ActionSector asks which sector of the world an action takes place in.
// Answers outside the accessible sectors are replaced by the persona's home
// sector.
var ActionSector = task.Task[ActionSectorArgs, string]{
	Name:               "action_sector",
	TemplateID:         "v1/action_location_sector_v1.txt",
	ExampleOutput:      "Johnson Park",
	SpecialInstruction: "The value for the output must contain one of the area options above verbatim (including lower/upper case).",
	Fallback:           "kitchen",
	BuildInputs:        sectorInputs,
	CleanUp:            cleanPlaceName,
	FallbackFor: func(a ActionSectorArgs) string {
		return pick(a.accessibleSectors(), a.Rand, "kitchen")
	},
	PostProcess: func(a ActionSectorArgs, sector string, _ *task.Result[string]) string {
		sectors := a.accessibleSectors()
		if len(sectors) == 0 || a.Persona == nil || slices.Contains(sectors, sector) {
			return sector
		}
		return livingSector(a.Persona)
	},
}

func sectorInputs(a ActionSectorArgs) ([]any, error) {
	p := a.Persona
	if p == nil {
		return nil, errNoPersona
	}
	if a.Spatial == nil {
		return nil, errors.New("spatial memory is required")
	}

	home := livingSector(p)
	plan := dailyPlanString(p)
	if plan != "" {
		plan = "\n" + plan
	}
	summary, detail := actionParts(a.Action)

	return []any{
		p.Name(),
		home,
		strings.Join(a.Spatial.Arenas(a.World, home), ", "),
		p.Name(),
		a.Sector,
		strings.Join(a.Spatial.Arenas(a.World, a.Sector), ", "),
		plan,
		strings.Join(a.accessibleSectors(), ", "),
		p.Name(),
		summary,
		detail,
		p.Name(),
	}, nil
}

// cleanPlaceName accepts a single place name. The model sometimes leaks the
// closing brace of its example or lists several places; both are rejected
// or trimmed here.
func cleanPlaceName(out safe.Output, _ string) (string, error) {
	s, err := text(out)
	if err != nil {
		return "", err
	}
	s, _, _ = strings.Cut(s, "}")
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return "", errors.New("empty place name")
	case strings.Contains(s, ","):
		return "", errors.New("more than one place named")
	}
	return s, nil
}

// RunActionSector returns the sector args.Action takes place in.
func RunActionSector(ctx context.Context, rt *task.Runtime, args ActionSectorArgs, opts ...task.Option) (string, task.Result[string], error) {
	return ActionSector.Execute(ctx, rt, args, opts...)
}

// -----------------------------------------------------------------------------
// Action arena
// -----------------------------------------------------------------------------

// ActionArenaArgs are the arguments of ActionArena.
type ActionArenaArgs struct {
	Persona Persona
	Spatial SpatialMemory

	// Action is the action description.
	Action string

	// World and Sector name the sector chosen by ActionSector.
	World  string
	Sector string

	// Rand picks a replacement arena. Nil uses the first accessible arena.
	Rand *rand.Rand
}

// accessibleArenas lists the arenas of the sector, minus other people's
// rooms.
func (a ActionArenaArgs) accessibleArenas() []string {
	if a.Spatial == nil {
		return nil
	}
	last := ""
	if a.Persona != nil {
		last = a.Persona.LastName()
	}
	return ownedOnly(a.Spatial.Arenas(a.World, a.Sector), "'s room", last)
}

// ActionArena asks which arena of the chosen sector an action takes place
// in. Answers outside the accessible arenas, the fallback included, are
// replaced by a random accessible arena.
var ActionArena = task.Task[ActionArenaArgs, string]{
	Name:               "action_arena",
	TemplateID:         "v1/action_location_arena_v1.txt",
	ExampleOutput:      "kitchen",
	SpecialInstruction: "The output must be exactly one of the area options above (case sensitive).",
	Fallback:           "kitchen",
	BuildInputs:        arenaInputs,
	CleanUp:            cleanPlaceName,
	PostProcess: func(a ActionArenaArgs, arena string, _ *task.Result[string]) string {
		arenas := a.accessibleArenas()
		if len(arenas) == 0 || slices.Contains(arenas, arena) {
			return arena
		}
		return pick(arenas, a.Rand, arena)
	},
}

func arenaInputs(a ActionArenaArgs) ([]any, error) {
	p := a.Persona
	if p == nil {
		return nil, errNoPersona
	}
	if a.Spatial == nil {
		return nil, errors.New("spatial memory is required")
	}

	arenas := strings.Join(a.accessibleArenas(), ", ")
	summary, detail := actionParts(a.Action)

	return []any{
		p.Name(),
		a.Sector,
		arenas,
		p.Name(),
		summary,
		detail,
		p.Name(),
		a.Sector,
		arenas,
	}, nil
}

// RunActionArena returns the arena of args.Sector that args.Action takes
// place in.
func RunActionArena(ctx context.Context, rt *task.Runtime, args ActionArenaArgs, opts ...task.Option) (string, task.Result[string], error) {
	return ActionArena.Execute(ctx, rt, args, opts...)
}

// -----------------------------------------------------------------------------
// Action game object
// -----------------------------------------------------------------------------

// ActionGameObjectArgs are the arguments of ActionGameObject.
type ActionGameObjectArgs struct {
	Spatial SpatialMemory

	// Action is the action description.
	Action string

	// Address is the "world:sector:arena" the action happens in.
	Address string

	// Rand picks a replacement object. Nil uses the first accessible object.
	Rand *rand.Rand
}

func (a ActionGameObjectArgs) objects() []string {
	if a.Spatial == nil {
		return nil
	}
	return a.Spatial.Objects(a.Address)
}

// ActionGameObject asks which object in an arena the action uses. Answers
// outside the arena's objects are replaced by a random object of the arena.
var ActionGameObject = task.Task[ActionGameObjectArgs, string]{
	Name:               "action_game_object",
	TemplateID:         "v1/action_object_v2.txt",
	ExampleOutput:      "bed",
	SpecialInstruction: "Output ONLY the selected game object name, no extra text.",
	Fallback:           "bed",
	BuildInputs: func(a ActionGameObjectArgs) ([]any, error) {
		if a.Spatial == nil {
			return nil, errors.New("spatial memory is required")
		}
		_, detail := actionParts(a.Action)
		return []any{detail, strings.Join(a.objects(), ", ")}, nil
	},
	CleanUp: func(out safe.Output, _ string) (string, error) {
		s, err := text(out)
		if err != nil {
			return "", err
		}
		if s == "" {
			return "", errors.New("empty object name")
		}
		return s, nil
	},
	PostProcess: func(a ActionGameObjectArgs, object string, _ *task.Result[string]) string {
		objects := a.objects()
		if len(objects) == 0 || slices.Contains(objects, object) {
			return object
		}
		return pick(objects, a.Rand, object)
	},
}

// RunActionGameObject returns the object args.Action uses.
func RunActionGameObject(ctx context.Context, rt *task.Runtime, args ActionGameObjectArgs, opts ...task.Option) (string, task.Result[string], error) {
	return ActionGameObject.Execute(ctx, rt, args, opts...)
}

// pick returns a random element of options, the first one when r is nil,
// or def when options is empty.
func pick(options []string, r *rand.Rand, def string) string {
	switch {
	case len(options) == 0:
		return def
	case r == nil:
		return options[0]
	default:
		return options[r.IntN(len(options))]
	}
}
