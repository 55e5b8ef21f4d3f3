// Package errors provides unified error handling for the murmur pipeline.
// It implements structured error types with machine-readable codes and
// retryable detection, plus sentinel errors for sequencing invariants that
// callers are expected to test with errors.Is.
package errors
