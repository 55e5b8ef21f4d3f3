package transcription

// TranscriptSegment holds the transcription output for one audio chunk.
// Segments are ordered by chunk index.
type TranscriptSegment struct {
	// Text is the transcribed text for the chunk. Empty when the chunk
	// produced no speech or its transcription failed.
	Text string `json:"text"`
	// SourceChunk is the index of the chunk the text came from.
	SourceChunk int `json:"source_chunk"`
}

// Result is the outcome of a chunked transcription run.
type Result struct {
	// Text is the flat transcript: non-empty segment texts joined in
	// chunk order with a single space.
	Text string `json:"text"`
	// Segments holds one entry per chunk, including failed ones.
	Segments []TranscriptSegment `json:"segments"`
	// FailedChunks counts chunks whose transcription failed and were
	// substituted with empty text.
	FailedChunks int `json:"failed_chunks,omitempty"`
}
