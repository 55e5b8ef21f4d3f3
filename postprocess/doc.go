// Package postprocess applies the ordered transcript transform stages
// (clean, structure, organise, report) to a journal entry. Stages
// unlock sequentially, every apply pushes an undo snapshot, and a
// manual transcript edit invalidates all downstream pipeline state.
// The transformation itself is delegated to an llm.Provider; this
// package owns only sequencing, snapshotting, and persistence.
package postprocess
