package postprocess

import (
	"strings"
	"testing"

	"github.com/skillsenselab/murmur/llm"
)

func TestStage_Order(t *testing.T) {
	order := []Stage{StageNone, StageClean, StageStructure, StageOrganise, StageReport}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Errorf("stage order broken: %s >= %s", order[i-1], order[i])
		}
		if order[i-1].Next() != order[i] {
			t.Errorf("%s.Next() = %s, want %s", order[i-1], order[i-1].Next(), order[i])
		}
	}
	if StageReport.Next() != StageReport {
		t.Errorf("StageReport.Next() = %s, want StageReport", StageReport.Next())
	}
}

func TestParseStage_RoundTrip(t *testing.T) {
	for _, stage := range []Stage{StageNone, StageClean, StageStructure, StageOrganise, StageReport} {
		got, err := ParseStage(stage.String())
		if err != nil {
			t.Errorf("ParseStage(%q) error = %v", stage.String(), err)
		}
		if got != stage {
			t.Errorf("ParseStage(%q) = %v, want %v", stage.String(), got, stage)
		}
	}

	if _, err := ParseStage("bogus"); err == nil {
		t.Error("ParseStage(bogus) error = nil, want error")
	}
}

func TestStage_Prompt(t *testing.T) {
	for _, stage := range []Stage{StageClean, StageStructure, StageOrganise, StageReport} {
		if !strings.Contains(stage.Prompt(), llm.OutputPlaceholder) {
			t.Errorf("%s prompt missing placeholder", stage)
		}
	}
	if StageNone.Prompt() != "" {
		t.Errorf("StageNone.Prompt() = %q, want empty", StageNone.Prompt())
	}
}
