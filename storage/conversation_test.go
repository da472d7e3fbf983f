package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func testNormalizer() Normalizer {
	n := 0
	return Normalizer{
		DefaultModel: "gpt-4o",
		NewID: func() string {
			n++
			return fmt.Sprintf("gen-%d", n)
		},
		Now: func() time.Time { return fixedNow },
	}
}

func TestNormalizeChatDefaults(t *testing.T) {
	norm := testNormalizer()

	c := norm.NormalizeChat(json.RawMessage(`{}`))
	assert.Equal(t, "gen-1", c.ID)
	assert.Equal(t, PlaceholderTitle, c.Title)
	assert.Equal(t, "gpt-4o", c.Model)
	assert.Equal(t, fixedNow, c.CreatedAt)
	assert.Equal(t, fixedNow, c.UpdatedAt)
	assert.NotNil(t, c.Messages)
	assert.Empty(t, c.Messages)
}

func TestNormalizeChatMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, c Conversation)
	}{
		{
			name:  "messages not a list",
			input: `{"id":"a","messages":"oops"}`,
			check: func(t *testing.T, c Conversation) {
				assert.Equal(t, "a", c.ID)
				assert.Empty(t, c.Messages)
			},
		},
		{
			name:  "numeric id kept as string",
			input: `{"id":42}`,
			check: func(t *testing.T, c Conversation) {
				assert.Equal(t, "42", c.ID)
			},
		},
		{
			name:  "falsy id regenerated",
			input: `{"id":0,"title":""}`,
			check: func(t *testing.T, c Conversation) {
				assert.Equal(t, "gen-1", c.ID)
				assert.Equal(t, PlaceholderTitle, c.Title)
			},
		},
		{
			name:  "epoch millis timestamps",
			input: `{"createdAt":1700000000000,"updatedAt":"2023-11-14T22:13:20.000Z"}`,
			check: func(t *testing.T, c Conversation) {
				assert.Equal(t, time.UnixMilli(1700000000000).UTC(), c.CreatedAt)
				assert.Equal(t, c.CreatedAt, c.UpdatedAt)
			},
		},
		{
			name:  "updatedAt before createdAt is raised",
			input: `{"createdAt":"2024-05-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}`,
			check: func(t *testing.T, c Conversation) {
				assert.False(t, c.UpdatedAt.Before(c.CreatedAt))
			},
		},
		{
			name:  "unparseable timestamp uses now",
			input: `{"createdAt":"yesterday"}`,
			check: func(t *testing.T, c Conversation) {
				assert.Equal(t, fixedNow, c.CreatedAt)
			},
		},
		{
			name:  "message content coerced to string",
			input: `{"messages":[{"content":12.5},{"content":false},{"content":null},{},{"content":{"a":1}}]}`,
			check: func(t *testing.T, c Conversation) {
				require.Len(t, c.Messages, 5)
				assert.Equal(t, "12.5", c.Messages[0].Content)
				assert.Equal(t, "false", c.Messages[1].Content)
				assert.Equal(t, "", c.Messages[2].Content)
				assert.Equal(t, "", c.Messages[3].Content)
				assert.Equal(t, `{"a":1}`, c.Messages[4].Content)
			},
		},
		{
			name:  "message role and type defaults",
			input: `{"messages":[{"role":"","type":""},{"role":"wizard","type":"video"},{"role":"assistant","type":"image"}]}`,
			check: func(t *testing.T, c Conversation) {
				require.Len(t, c.Messages, 3)
				assert.Equal(t, RoleUser, c.Messages[0].Role)
				assert.Equal(t, TypeText, c.Messages[0].Type)
				assert.Equal(t, RoleUser, c.Messages[1].Role)
				assert.Equal(t, TypeText, c.Messages[1].Type)
				assert.Equal(t, RoleAssistant, c.Messages[2].Role)
				assert.Equal(t, TypeImage, c.Messages[2].Type)
			},
		},
		{
			name:  "scalar message element",
			input: `{"messages":["hello"]}`,
			check: func(t *testing.T, c Conversation) {
				require.Len(t, c.Messages, 1)
				assert.Equal(t, RoleUser, c.Messages[0].Role)
				assert.Equal(t, "", c.Messages[0].Content)
			},
		},
		{
			name:  "not an object",
			input: `"garbage"`,
			check: func(t *testing.T, c Conversation) {
				assert.Equal(t, "gen-1", c.ID)
				assert.Equal(t, PlaceholderTitle, c.Title)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, testNormalizer().NormalizeChat(json.RawMessage(tt.input)))
		})
	}
}

func TestNormalizeChatIdempotent(t *testing.T) {
	inputs := []string{
		`{}`,
		`{"id":"a","messages":[]}`,
		`{"id":"b","title":"Trip plan","model":"sonar","createdAt":"2024-01-02T03:04:05.678Z","updatedAt":1704164645678,"messages":[{"role":"assistant","content":7}]}`,
		`{"messages":[{"id":"m1","content":"hi","createdAt":"2024-01-01T00:00:00Z","type":"image"},{}]}`,
		`[1,2,3]`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			norm := testNormalizer()
			once := norm.NormalizeChat(json.RawMessage(input))

			encoded, err := json.Marshal(once)
			require.NoError(t, err)
			twice := norm.NormalizeChat(encoded)

			assert.Equal(t, once, twice, "normalizing stored output must not change it")
			assert.Equal(t, once, norm.NormalizeConversation(once))
		})
	}
}

func TestNormalizeConversationFillsTypedGaps(t *testing.T) {
	norm := testNormalizer()
	c := norm.NormalizeConversation(Conversation{
		Messages: []Message{{Content: "x"}},
	})

	assert.Equal(t, "gen-1", c.ID)
	assert.Equal(t, PlaceholderTitle, c.Title)
	assert.Equal(t, "gpt-4o", c.Model)
	require.Len(t, c.Messages, 1)
	assert.Equal(t, "gen-2", c.Messages[0].ID)
	assert.Equal(t, RoleUser, c.Messages[0].Role)
	assert.Equal(t, TypeText, c.Messages[0].Type)
	assert.Equal(t, fixedNow, c.Messages[0].CreatedAt)
}

func TestNormalizeConversationDoesNotAlias(t *testing.T) {
	in := Conversation{ID: "a", Messages: []Message{{ID: "m", Role: "bogus"}}}
	out := testNormalizer().NormalizeConversation(in)

	assert.Equal(t, RoleUser, out.Messages[0].Role)
	assert.Equal(t, Role("bogus"), in.Messages[0].Role, "input must not be mutated")
}

func TestNormalizeMessage(t *testing.T) {
	m := testNormalizer().NormalizeMessage(json.RawMessage(`{"role":"system","content":"boot"}`))
	assert.Equal(t, "gen-1", m.ID)
	assert.Equal(t, RoleSystem, m.Role)
	assert.Equal(t, "boot", m.Content)
	assert.Equal(t, TypeText, m.Type)
	assert.Equal(t, fixedNow, m.CreatedAt)
}

func TestTitleFromContent(t *testing.T) {
	long := strings.Repeat("a", 75)

	tests := []struct {
		in   string
		want string
	}{
		{"Hello", "Hello"},
		{"  Hello \n\t  world  ", "Hello world"},
		{"   \n\t ", ""},
		{long, strings.Repeat("a", 60)},
		{strings.Repeat("é", 61), strings.Repeat("é", 60)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TitleFromContent(tt.in), "input %q", tt.in)
	}
}

func TestIsPlaceholderTitle(t *testing.T) {
	assert.True(t, IsPlaceholderTitle(PlaceholderTitle))
	assert.True(t, IsPlaceholderTitle("Nova conversa"))
	assert.True(t, IsPlaceholderTitle(""))
	assert.False(t, IsPlaceholderTitle("Hello"))
}

func TestSearchMessages(t *testing.T) {
	convs := []Conversation{
		{ID: "a", Title: "Go", Messages: []Message{
			{Role: RoleUser, Content: "How do goroutines work?"},
			{Role: RoleSystem, Content: "Failed to get response: goroutines"},
			{Role: RoleAssistant, Content: "Goroutines are " + strings.Repeat("x", 200)},
		}},
		{ID: "b", Title: "Cooking", Messages: []Message{{Role: RoleUser, Content: "pasta"}}},
	}

	matches := SearchMessages(convs, "GOROUTINES")
	require.Len(t, matches, 2, "system messages are skipped")
	assert.Equal(t, "a", matches[0].ConversationID)
	assert.Equal(t, 0, matches[0].MessageIndex)
	assert.Equal(t, 2, matches[1].MessageIndex)
	assert.True(t, strings.HasSuffix(matches[1].Preview, "..."))
	assert.Len(t, []rune(matches[1].Preview), 103)

	assert.Empty(t, SearchMessages(convs, "  "))
}
