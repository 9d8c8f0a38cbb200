package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wafo210715/generative-agents/task"
)

func TestCreateConversation(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		want         []Utterance
		wantFallback bool
	}{
		{
			name:     "pairs",
			response: `{"output": [["Isabella Rodriguez", "Hi Klaus!"], ["Klaus Mueller", " Hello. "]]}`,
			want: []Utterance{
				{Speaker: "Isabella Rodriguez", Line: "Hi Klaus!"},
				{Speaker: "Klaus Mueller", Line: "Hello."},
			},
		},
		{
			name:         "flat list rejected by schema",
			response:     `{"output": ["Hi Klaus!", "Hello."]}`,
			want:         []Utterance{{Speaker: "Isabella Rodriguez", Line: "Hi"}},
			wantFallback: true,
		},
		{
			name:         "empty lines",
			response:     `{"output": [["Isabella Rodriguez", " "]]}`,
			want:         []Utterance{{Speaker: "Isabella Rodriguez", Line: "Hi"}},
			wantFallback: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rt, _ := newRuntime(tc.response)

			convo, result, err := RunCreateConversation(context.Background(), rt, ConversationArgs{
				Persona:  isabella(),
				Target:   klaus(),
				Location: "Hobbs Cafe",
				Memories: "Klaus is a regular at the cafe.",
			}, task.WithMaxAttempts(1))

			require.NoError(t, err)
			assert.Equal(t, tc.want, convo)
			assert.Equal(t, tc.wantFallback, result.UsedFallback)
		})
	}
}

func TestCreateConversation_Prompt(t *testing.T) {
	rt, _ := newRuntime(`{"output": [["Isabella Rodriguez", "Hi"]]}`)

	_, result, err := RunCreateConversation(context.Background(), rt, ConversationArgs{
		Persona:  isabella(),
		Target:   klaus(),
		Location: "Hobbs Cafe",
		LastChat: &Chat{Description: "coffee beans"},
	})
	require.NoError(t, err)

	assert.Contains(t, result.Prompt, "I'm Isabella Rodriguez is a cafe owner")
	assert.Contains(t, result.Prompt, "[The previous conversation]")
	assert.Contains(t, result.Prompt, "It is Monday February 13. Isabella and Klaus meet at Hobbs Cafe.")
}

func TestCreateConversation_MissingTarget(t *testing.T) {
	rt, gw := newRuntime()

	_, _, err := RunCreateConversation(context.Background(), rt, ConversationArgs{Persona: isabella()})

	require.Error(t, err)
	assert.Zero(t, gw.CallCount())
}

func TestDecideToTalk(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		want         bool
		wantFallback bool
	}{
		{name: "prefixed yes", response: `{"output": "Answer in yes or no: Yes"}`, want: true},
		{name: "bare no", response: `{"output": "no"}`, want: false},
		{name: "reasoning then answer", response: `{"output": "They are friends. Answer in yes or no: yes"}`, want: true},
		{name: "undecided", response: `{"output": "maybe"}`, want: true, wantFallback: true},
		{name: "not text", response: `{"output": null}`, want: true, wantFallback: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rt, _ := newRuntime(tc.response)

			talk, result, err := RunDecideToTalk(context.Background(), rt, TalkArgs{
				Persona: isabella(),
				Target:  klaus(),
			}, task.WithMaxAttempts(1))

			require.NoError(t, err)
			assert.Equal(t, tc.want, talk)
			assert.Equal(t, tc.wantFallback, result.UsedFallback)
		})
	}
}

func TestDecideToTalk_Prompt(t *testing.T) {
	rt, _ := newRuntime(`{"output": "Answer in yes or no: no"}`)

	_, result, err := RunDecideToTalk(context.Background(), rt, TalkArgs{
		Persona: isabella(),
		Target:  klaus(),
		Retrieved: Retrieved{
			Events:   []string{"Klaus Mueller is reading a book"},
			Thoughts: []string{"Klaus likes the cafe"},
		},
		LastChat: &Chat{
			Created:     time.Date(2023, time.February, 12, 15, 4, 5, 0, time.UTC),
			Description: "the party",
		},
	})
	require.NoError(t, err)

	assert.Contains(t, result.Prompt, "Context: Klaus Mueller was reading a book. \nKlaus likes the cafe.")
	assert.Contains(t, result.Prompt, "last chatted at February 12, 2023, 15:04:05 about the party.")
	assert.Contains(t, result.Prompt, "Isabella Rodriguez is already unlocking the door")
	assert.Contains(t, result.Prompt, "Klaus Mueller is on the way to buying coffee")
	assert.Contains(t, result.Prompt, "Question: Would Isabella Rodriguez initiate a conversation with Klaus Mueller?")
}

func TestPastTense(t *testing.T) {
	assert.Equal(t, "Klaus Mueller was reading", pastTense("Klaus Mueller is reading"))
	assert.Equal(t, "sleeping", pastTense("sleeping"))
}
