// Package jobs tracks long-running entry operations (download, import,
// transcribe, diarize) in memory. At most one job runs per entry at a
// time, cancellation is cooperative through the job's context, and a
// job is removed from the tracked set after its terminal event — so
// "is this entry processing" is always answerable from set membership
// alone. The set does not survive a restart; entries left in a
// non-terminal persisted state with no tracked job are stalled and
// must be retried by the caller.
package jobs
