// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - RemoteStore: Lists, fetches and shares files in the user's drive
//   - RemoteStoreFactory: Opens a RemoteStore authenticated as one user
//   - TextExtractor: Turns downloaded content into plain text
//   - TextSplitter: Splits text into byte-bounded chunks
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Namespaced vector storage with metadata filters
//   - SyncLogStore: Sync run history
//   - SyncStateStore: Per-user watermark persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ChunkRegistry: Base document to chunk ID bookkeeping. Without it,
//     chunk lookups fall back to a metadata filter query on the VectorIndex.
//   - SyncMetrics: Run and file outcome counters
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
