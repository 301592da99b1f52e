package mentions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
		{
			name: "no mentions",
			text: "schedule a meeting tomorrow",
			want: []string{},
		},
		{
			name: "single tagged reference",
			text: "<@U1> can you schedule a meeting?",
			want: []string{"U1"},
		},
		{
			name: "tagged reference with display name",
			text: "<@U02ABC|sam> please review this",
			want: []string{"U02ABC"},
		},
		{
			name: "plain fallback mention",
			text: "@sam please review this",
			want: []string{"sam"},
		},
		{
			name: "mixed encodings",
			text: "<@U1> and @bob schedule a sync",
			want: []string{"U1", "bob"},
		},
		{
			name: "duplicates keep insertion order",
			text: "<@U2> <@U1> <@U2> ping @U1",
			want: []string{"U2", "U1"},
		},
		{
			name: "mention mid-sentence",
			text: "please ask <@U9> to reply",
			want: []string{"U9"},
		},
		{
			name: "email address is not a mention",
			text: "send it to sam@example.com",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text))
		})
	}
}

func TestStripLeading(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"no mention", "schedule a meeting", "schedule a meeting"},
		{"tagged mention", "<@U1> schedule a meeting", "schedule a meeting"},
		{"plain mention", "@sam schedule a meeting", "schedule a meeting"},
		{"mention with comma", "<@U1>, schedule a meeting", "schedule a meeting"},
		{"multiple leading mentions", "<@U1> <@U2> schedule a sync", "schedule a sync"},
		{"only a mention", "<@U1>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripLeading(tt.text))
		})
	}
}

func TestTextAfterEach(t *testing.T) {
	tails := TextAfterEach("hey <@U1> schedule the sync with @bob tomorrow")
	assert.Len(t, tails, 2)
	assert.Equal(t, "schedule the sync with @bob tomorrow", tails[0])
	assert.Equal(t, "tomorrow", tails[1])
}
