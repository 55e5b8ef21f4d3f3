package postprocess

import (
	"fmt"
	"strings"

	"github.com/skillsenselab/murmur/journal"
)

// NormalizeRepeats collapses immediately repeated word tokens,
// case-insensitively: "your Your your thing" becomes "your thing",
// keeping the first occurrence's casing. Speech-to-text occasionally
// emits long literal repetitions that completion backends degrade
// badly on, so this runs before every transform call, not just the
// first. Non-adjacent repetition is intentional and left alone.
func NormalizeRepeats(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	prev := ""
	first := true
	for _, word := range strings.Fields(text) {
		lower := strings.ToLower(word)
		if lower != prev || first {
			if !first {
				b.WriteByte(' ')
			}
			b.WriteString(word)
			first = false
		}
		prev = lower
	}
	return b.String()
}

// SubstituteSpeakerNames replaces "[Speaker N]" labels with the
// entry's assigned display names, so transforms see "[Alice]" instead
// of a bare id. Unnamed speakers keep their default label.
func SubstituteSpeakerNames(entry *journal.Entry, text string) string {
	if entry == nil || len(entry.SpeakerNames) == 0 {
		return text
	}
	for id, name := range entry.SpeakerNames {
		if name == "" {
			continue
		}
		text = strings.ReplaceAll(text,
			fmt.Sprintf("[Speaker %d]", id),
			fmt.Sprintf("[%s]", name),
		)
	}
	return text
}
