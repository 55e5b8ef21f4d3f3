// Package component defines the core interfaces for lifecycle-managed
// services in murmur.
//
// Components represent services that require startup, shutdown, and health
// monitoring: the journal store, the diarization model manager, the LLM
// backend, and the event hub all implement the Component interface and are
// driven through a Registry.
//
// # Interfaces
//
//   - Component: Core lifecycle interface (Start/Stop/Health)
//   - Describable: Startup summary descriptions
package component
