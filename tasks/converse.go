package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wafo210715/generative-agents/safe"
	"github.com/wafo210715/generative-agents/schema"
	"github.com/wafo210715/generative-agents/task"
)

// Utterance is one line of a conversation.
type Utterance struct {
	Speaker string
	Line    string
}

// Chat summarizes the last conversation between two personas.
type Chat struct {
	Created     time.Time
	Description string
}

// Retrieved holds memories recalled for a conversation decision.
type Retrieved struct {
	Events   []string
	Thoughts []string
}

// -----------------------------------------------------------------------------
// Create conversation
// -----------------------------------------------------------------------------

// ConversationArgs are the arguments of CreateConversation.
type ConversationArgs struct {
	Persona Persona
	Target  Persona

	// Location is where the conversation happens.
	Location string

	// Memories is a summary of what Persona recalls about Target.
	Memories string

	// LastChat is the previous conversation between them, if any.
	LastChat *Chat
}

var conversationSchema = schema.MustCompile(schema.Array("Conversation",
	schema.Tuple("Speaker and line", schema.String("Speaker"), schema.String("Line")),
).MinItems(1).Schema())

// CreateConversation writes a short conversation between two personas.
var CreateConversation = task.Task[ConversationArgs, []Utterance]{
	Name:       "create_conversation",
	TemplateID: "v2/create_conversation_v2.txt",
	ExampleOutput: [][]string{
		{"Jane Doe", "Hi!"},
		{"John Doe", "Hello there!"},
	},
	SpecialInstruction: `Output ONLY a JSON list of [speaker, line] pairs, e.g. [["Jane Doe", "Hi!"], ["John Doe", "Hello there!"]]`,
	Schema:             conversationSchema,
	FallbackFor: func(a ConversationArgs) []Utterance {
		speaker := ""
		if a.Persona != nil {
			speaker = a.Persona.Name()
		}
		return []Utterance{{Speaker: speaker, Line: "Hi"}}
	},
	BuildInputs: func(a ConversationArgs) ([]any, error) {
		if a.Persona == nil || a.Target == nil {
			return nil, errors.New("both personas are required")
		}
		previous := ""
		if a.LastChat != nil {
			previous = "[The previous conversation]"
		}
		return []any{
			"I'm " + a.Persona.Identity(),
			previous,
			dateString(a.Persona.CurrentTime()),
			a.Location,
			a.Persona.FirstName(),
			a.Target.FirstName(),
			a.Memories,
		}, nil
	},
	CleanUp: func(out safe.Output, _ string) ([]Utterance, error) {
		var pairs [][2]string
		if err := out.Decode(&pairs); err != nil {
			return nil, err
		}
		convo := make([]Utterance, 0, len(pairs))
		for _, p := range pairs {
			if strings.TrimSpace(p[1]) == "" {
				continue
			}
			convo = append(convo, Utterance{Speaker: strings.TrimSpace(p[0]), Line: strings.TrimSpace(p[1])})
		}
		if len(convo) == 0 {
			return nil, errors.New("empty conversation")
		}
		return convo, nil
	},
}

// RunCreateConversation returns a conversation between args.Persona and
// args.Target.
func RunCreateConversation(ctx context.Context, rt *task.Runtime, args ConversationArgs, opts ...task.Option) ([]Utterance, task.Result[[]Utterance], error) {
	return CreateConversation.Execute(ctx, rt, args, opts...)
}

// -----------------------------------------------------------------------------
// Decide to talk
// -----------------------------------------------------------------------------

// TalkArgs are the arguments of DecideToTalk.
type TalkArgs struct {
	Persona   Persona
	Target    Persona
	Retrieved Retrieved
	LastChat  *Chat
}

const talkAnswerPrefix = "Answer in yes or no:"

// DecideToTalk asks whether a persona starts a conversation with another.
var DecideToTalk = task.Task[TalkArgs, bool]{
	Name:               "decide_to_talk",
	TemplateID:         "v2/decide_to_talk_v2.txt",
	ExampleOutput:      talkAnswerPrefix + " yes",
	SpecialInstruction: "Output must start with '" + talkAnswerPrefix + " ' followed by yes or no.",
	Fallback:           true,
	BuildInputs:        talkInputs,
	CleanUp: func(out safe.Output, _ string) (bool, error) {
		s := out.String()
		if i := strings.LastIndex(s, talkAnswerPrefix); i >= 0 {
			s = s[i+len(talkAnswerPrefix):]
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes":
			return true, nil
		case "no":
			return false, nil
		}
		return false, fmt.Errorf("not a yes or no answer: %q", s)
	},
}

func talkInputs(a TalkArgs) ([]any, error) {
	if a.Persona == nil || a.Target == nil {
		return nil, errors.New("both personas are required")
	}

	var recalled strings.Builder
	for _, e := range a.Retrieved.Events {
		recalled.WriteString(pastTense(e))
		recalled.WriteString(". ")
	}
	recalled.WriteString("\n")
	for _, th := range a.Retrieved.Thoughts {
		recalled.WriteString(th)
		recalled.WriteString(". ")
	}

	lastTime, lastAbout := "", ""
	if a.LastChat != nil {
		lastTime = a.LastChat.Created.Format("January 02, 2006, 15:04:05")
		lastAbout = a.LastChat.Description
	}

	return []any{
		recalled.String(),
		a.Persona.CurrentTime().Format("January 02, 2006, 15:04:05 PM"),
		a.Persona.Name(),
		a.Target.Name(),
		lastTime,
		lastAbout,
		whereabouts(a.Persona),
		whereabouts(a.Target),
		a.Persona.Name(),
		a.Target.Name(),
	}, nil
}

// pastTense rewrites "Isabella Rodriguez is baking" as "Isabella Rodriguez
// was baking" by replacing the third word.
func pastTense(event string) string {
	words := strings.Split(event, " ")
	if len(words) > 2 {
		words[2] = "was"
	}
	return strings.Join(words, " ")
}

// whereabouts describes what p is doing relative to where it is.
func whereabouts(p Persona) string {
	_, act := actionParts(p.CurrentAction())
	switch {
	case strings.Contains(act, "waiting"):
		return p.Name() + " is " + act
	case p.OnTheWay():
		return p.Name() + " is on the way to " + act
	default:
		return p.Name() + " is already " + act
	}
}

// RunDecideToTalk reports whether args.Persona starts a conversation with
// args.Target.
func RunDecideToTalk(ctx context.Context, rt *task.Runtime, args TalkArgs, opts ...task.Option) (bool, task.Result[bool], error) {
	return DecideToTalk.Execute(ctx, rt, args, opts...)
}
