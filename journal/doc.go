// Package journal persists voice journal entries: the entry record,
// its speaker-labeled transcript segments, and the snapshot stack that
// backs transform undo. The filesystem store writes each artifact as
// its own JSON file with atomic rename, so a crash mid-pipeline leaves
// the entry at the last fully completed stage.
package journal
