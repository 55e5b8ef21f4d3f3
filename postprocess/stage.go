package postprocess

import (
	apperrors "github.com/skillsenselab/murmur/errors"
	"github.com/skillsenselab/murmur/llm"
)

// Stage is one step of the transcript transform pipeline. Stages form
// a total order; StageN is only applicable after StageN-1.
type Stage int

const (
	// StageNone means no transform has been applied.
	StageNone Stage = iota
	// StageClean removes filler words and transcription artifacts.
	StageClean
	// StageStructure splits the text into paragraphs with headings.
	StageStructure
	// StageOrganise groups the text by theme.
	StageOrganise
	// StageReport produces a summary report.
	StageReport
)

var stageNames = map[Stage]string{
	StageNone:      "",
	StageClean:     "clean",
	StageStructure: "structure",
	StageOrganise:  "organise",
	StageReport:    "report",
}

var stagePrompts = map[Stage]string{
	StageClean:     llm.PromptClean,
	StageStructure: llm.PromptStructure,
	StageOrganise:  llm.PromptOrganise,
	StageReport:    llm.PromptReport,
}

// String returns the stage's persisted name; StageNone is empty.
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Prompt returns the stage's transform prompt template.
func (s Stage) Prompt() string {
	return stagePrompts[s]
}

// Next returns the stage that follows s in the pipeline order.
func (s Stage) Next() Stage {
	if s >= StageReport {
		return StageReport
	}
	return s + 1
}

// ParseStage maps a persisted stage name back to a Stage. The empty
// string parses to StageNone.
func ParseStage(name string) (Stage, error) {
	for stage, n := range stageNames {
		if n == name {
			return stage, nil
		}
	}
	return StageNone, apperrors.InvalidInput("stage", "unknown stage name: "+name)
}
