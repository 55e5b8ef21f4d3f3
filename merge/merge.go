package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skillsenselab/murmur/diarization"
	"github.com/skillsenselab/murmur/journal"
)

// Merge slices the flat transcript across the speaker segments in
// proportion to each segment's time range over totalMS. Overlapping
// segments are resolved first (longest segment wins the contested
// region). The result is a pure function of its inputs: merging the
// same segments against the same transcript twice yields identical
// output, including segment ids. Any text edits made to previously
// merged segments are therefore lost on re-merge.
func Merge(transcript string, totalMS int64, segs []diarization.SpeakerSegment) []journal.MergedSegment {
	resolved := resolveOverlaps(segs)
	if len(resolved) == 0 {
		return []journal.MergedSegment{}
	}

	if totalMS <= 0 {
		totalMS = resolved[len(resolved)-1].EndMS
	}

	words := strings.Fields(transcript)
	merged := make([]journal.MergedSegment, 0, len(resolved))
	for i, seg := range resolved {
		start := wordIndex(seg.StartMS, totalMS, len(words))
		end := wordIndex(seg.EndMS, totalMS, len(words))
		if i == len(resolved)-1 {
			// The last segment absorbs trailing words so rounding
			// never drops the end of the transcript.
			end = len(words)
		}
		if end < start {
			end = start
		}

		merged = append(merged, journal.MergedSegment{
			ID:      fmt.Sprintf("seg-%04d", i),
			Speaker: seg.Speaker,
			StartMS: seg.StartMS,
			EndMS:   seg.EndMS,
			Text:    strings.Join(words[start:end], " "),
		})
	}
	return merged
}

// wordIndex maps a timestamp to a word offset on the cumulative
// timeline.
func wordIndex(ms, totalMS int64, wordCount int) int {
	if totalMS <= 0 {
		return 0
	}
	idx := int(ms * int64(wordCount) / totalMS)
	if idx < 0 {
		idx = 0
	}
	if idx > wordCount {
		idx = wordCount
	}
	return idx
}

// resolveOverlaps returns time-ordered, non-overlapping segments.
// When two segments overlap, the longer one keeps the contested region
// and the shorter one is trimmed; segments trimmed to nothing are
// dropped.
func resolveOverlaps(segs []diarization.SpeakerSegment) []diarization.SpeakerSegment {
	if len(segs) == 0 {
		return nil
	}

	sorted := make([]diarization.SpeakerSegment, len(segs))
	copy(sorted, segs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartMS < sorted[j].StartMS
	})

	out := make([]diarization.SpeakerSegment, 0, len(sorted))
	for _, cur := range sorted {
		if len(out) == 0 {
			out = append(out, cur)
			continue
		}
		prev := &out[len(out)-1]
		if cur.StartMS >= prev.EndMS {
			out = append(out, cur)
			continue
		}

		// Overlap: the longer segment wins the contested region.
		if duration(*prev) >= duration(cur) {
			cur.StartMS = prev.EndMS
		} else {
			prev.EndMS = cur.StartMS
			if prev.EndMS <= prev.StartMS {
				out = out[:len(out)-1]
			}
		}
		if cur.EndMS > cur.StartMS {
			out = append(out, cur)
		}
	}
	return out
}

func duration(s diarization.SpeakerSegment) int64 {
	return s.EndMS - s.StartMS
}

// FlatTranscript renders merged segments as one "[Speaker N] text"
// line per segment, joined by newlines. Speaker ids are replaced with
// the entry's assigned names when present.
func FlatTranscript(entry *journal.Entry, segments []journal.MergedSegment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", entry.SpeakerLabel(seg.Speaker), text))
	}
	return strings.Join(lines, "\n")
}
