package tasks

import (
	"strings"
	"time"

	"github.com/wafo210715/generative-agents/internal/tt"
	"github.com/wafo210715/generative-agents/task"
)

type fakePersona struct {
	name      string
	iss       string
	lifestyle string
	living    string
	action    string
	walking   bool
	reqs      []string
	now       time.Time
}

func (p *fakePersona) Name() string      { return p.name }
func (p *fakePersona) FirstName() string { first, _, _ := strings.Cut(p.name, " "); return first }
func (p *fakePersona) LastName() string  { _, last, _ := strings.Cut(p.name, " "); return last }
func (p *fakePersona) Identity() string  { return p.iss }
func (p *fakePersona) Lifestyle() string { return p.lifestyle }

func (p *fakePersona) CurrentTime() time.Time      { return p.now }
func (p *fakePersona) DailyRequirements() []string { return p.reqs }
func (p *fakePersona) LivingArea() string          { return p.living }
func (p *fakePersona) CurrentAction() string       { return p.action }
func (p *fakePersona) OnTheWay() bool              { return p.walking }

func isabella() *fakePersona {
	return &fakePersona{
		name:      "Isabella Rodriguez",
		iss:       "Isabella Rodriguez is a cafe owner who loves to make people feel welcome.",
		lifestyle: "Isabella Rodriguez goes to bed around 11pm, awakes up around 6am.",
		living:    "the Ville:Isabella Rodriguez's apartment:main room",
		action:    "opening the cafe (unlocking the door)",
		reqs:      []string{"open Hobbs Cafe at 8am", "plan the Valentine's Day party"},
		now:       time.Date(2023, time.February, 13, 7, 30, 0, 0, time.UTC),
	}
}

func klaus() *fakePersona {
	return &fakePersona{
		name:    "Klaus Mueller",
		iss:     "Klaus Mueller is a student at Oak Hill College.",
		living:  "the Ville:Dorm for Oak Hill College:Klaus Mueller's room",
		action:  "walking to the cafe (buying coffee)",
		walking: true,
		now:     time.Date(2023, time.February, 13, 7, 30, 0, 0, time.UTC),
	}
}

type fakeSpatial struct {
	sectors map[string][]string
	arenas  map[string][]string
	objects map[string][]string
}

func (s *fakeSpatial) Sectors(world string) []string        { return s.sectors[world] }
func (s *fakeSpatial) Arenas(world, sector string) []string { return s.arenas[world+":"+sector] }
func (s *fakeSpatial) Objects(address string) []string      { return s.objects[address] }

func theVille() *fakeSpatial {
	return &fakeSpatial{
		sectors: map[string][]string{
			"the Ville": {"Isabella Rodriguez's apartment", "Hobbs Cafe", "Johnson Park", "Moreno family's house"},
		},
		arenas: map[string][]string{
			"the Ville:Isabella Rodriguez's apartment": {"main room", "bathroom"},
			"the Ville:Hobbs Cafe":                     {"cafe"},
			"the Ville:Dorm for Oak Hill College":      {"Klaus Mueller's room", "Maria Lopez's room", "common room", "kitchen"},
		},
		objects: map[string][]string{
			"the Ville:Hobbs Cafe:cafe": {"cafe customer seating", "cooking area", "piano"},
		},
	}
}

func newRuntime(responses ...string) (*task.Runtime, *tt.StubCompleter) {
	gw := tt.NewStubCompleter(responses...)
	return &task.Runtime{Templates: NewTemplateEngine(), Gateway: gw}, gw
}
