package postprocess

import (
	"testing"

	"github.com/skillsenselab/murmur/journal"
)

func TestNormalizeRepeats(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single repeat", "um hello hello world", "um hello world"},
		{"long run", "your your your your thing", "your thing"},
		{"case insensitive", "Hello hello HELLO world", "Hello world"},
		{"keeps first casing", "So so what", "So what"},
		{"no repeats", "the quick brown fox", "the quick brown fox"},
		{"non-adjacent kept", "really really good, really", "really good, really"},
		{"whitespace collapsed", "a  a\tb\n b", "a b"},
		{"empty", "", ""},
		{"single word", "word", "word"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeRepeats(tt.in); got != tt.want {
				t.Errorf("NormalizeRepeats(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSubstituteSpeakerNames(t *testing.T) {
	entry := &journal.Entry{SpeakerNames: map[int]string{0: "Alice", 2: ""}}
	text := "[Speaker 0] hi\n[Speaker 1] hello\n[Speaker 2] hey"

	got := SubstituteSpeakerNames(entry, text)
	want := "[Alice] hi\n[Speaker 1] hello\n[Speaker 2] hey"
	if got != want {
		t.Errorf("SubstituteSpeakerNames() = %q, want %q", got, want)
	}

	// No names: text passes through untouched.
	if got := SubstituteSpeakerNames(&journal.Entry{}, text); got != text {
		t.Errorf("SubstituteSpeakerNames(no names) = %q, want unchanged", got)
	}
}
