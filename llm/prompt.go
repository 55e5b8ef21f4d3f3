package llm

import "strings"

// OutputPlaceholder is the token a prompt template must contain; it is
// replaced with the transcript text before the completion call.
const OutputPlaceholder = "${output}"

// RenderPrompt substitutes the transcript text into a prompt template.
func RenderPrompt(template, text string) string {
	return strings.ReplaceAll(template, OutputPlaceholder, text)
}

// Built-in prompt templates for the transcript transform stages.
const (
	// PromptClean removes filler and fixes transcription artifacts
	// without changing meaning.
	PromptClean = `You are a transcription editor. Clean up the following voice journal transcript: remove filler words (um, uh, like), fix obvious speech-to-text errors, and correct punctuation. Do not summarize, do not add content, and keep the speaker's wording wherever possible. Return only the cleaned transcript.

${output}`

	// PromptStructure breaks the cleaned text into paragraphs with headings.
	PromptStructure = `Restructure the following journal transcript into readable paragraphs. Add short section headings where the topics shift. Keep every point the author made; do not summarize or drop content. Return only the restructured text in markdown.

${output}`

	// PromptOrganise groups the structured text by theme with lists.
	PromptOrganise = `Organise the following journal text by theme. Group related points together under their headings and convert enumerations into bullet lists where that reads better. Preserve all content. Return only the organised text in markdown.

${output}`

	// PromptReport produces a meeting-minutes style report.
	PromptReport = `Write a concise report of the following journal text: a one-paragraph summary, key points as bullets, and any action items or decisions as a separate list. Return only the report in markdown.

${output}`
)
