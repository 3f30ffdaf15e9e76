package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcatenate_PreservesOrder(t *testing.T) {
	sentences := []Sentence{
		{Text: "Welcome to the show", StartTime: 0, SpeakerID: 0},
		{Text: "Thanks for having me", StartTime: 17.4, SpeakerID: 1},
		{Text: "Let's talk about sleep", StartTime: 42, SpeakerID: 0},
	}

	got := Concatenate(sentences)

	first := strings.Index(got, "Welcome to the show")
	second := strings.Index(got, "Thanks for having me")
	third := strings.Index(got, "Let's talk about sleep")
	assert.True(t, first < second && second < third, "sentence order not preserved: %s", got)
	assert.Contains(t, got, "(17.4 sec)")
	assert.Contains(t, got, "(42 sec)")
}

func TestConcatenate_Empty(t *testing.T) {
	assert.Equal(t, "", Concatenate(nil))
}

func TestStripAnnotations(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"integer timestamp", "Sleep is critical (42 sec)", "Sleep is critical"},
		{"fractional timestamp", "Sleep is critical (17.4 sec)", "Sleep is critical"},
		{"mid-sentence leak", "Sleep (42 sec) is critical", "Sleep is critical"},
		{"multiple leaks", "Sleep (42 sec) is critical (99 sec)", "Sleep is critical"},
		{"no annotation", "Sleep is critical", "Sleep is critical"},
		{"parenthetical kept", "Sleep (REM phase) is critical", "Sleep (REM phase) is critical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripAnnotations(tt.in))
		})
	}
}

func TestEpisode_Validate(t *testing.T) {
	ep := Episode{EpisodeName: "Ep 1", PodcastName: "Huberman Lab", PublicationDate: "2024-01-02"}
	assert.NoError(t, ep.Validate())

	ep.PublicationDate = ""
	assert.ErrorIs(t, ep.Validate(), ErrIncompleteIdentity)
}
