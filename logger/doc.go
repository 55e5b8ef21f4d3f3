// Package logger provides structured logging for murmur built on zerolog.
//
// It exposes a small wrapper with service and component tagging, console and
// JSON output formats, and package-level convenience functions backed by a
// global logger. Pipeline stages tag their output with FieldEntry, FieldJob,
// and FieldStage so one entry's processing can be followed end to end.
package logger
