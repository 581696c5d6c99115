// Package resource implements the memory controller shared by every arena of
// an ingestion process.
//
// The controller accounts the aggregate number of bytes outstanding across all
// mutable dictionaries and, when a hard limit is configured, applies
// backpressure to allocations:
//
//	┌──────────────────────────────────────────────┐
//	│               resource.Controller            │
//	├──────────────────────┬───────────────────────┤
//	│  Memory Limit        │  Usage Tracking       │
//	│  (weighted sem)      │  (atomic counter)     │
//	├──────────────────────┼───────────────────────┤
//	│  AcquireMemory(ctx)  │  MemoryUsage          │
//	│  TryAcquireMemory    │  MemoryLimit          │
//	│  ReleaseMemory       │  Available            │
//	└──────────────────────┴───────────────────────┘
//
// # Memory Management
//
// AcquireMemory blocks until the limit allows the request or ctx is done;
// arenas pass a short deadline so a saturated process fails fast with an
// allocation error instead of stalling the ingest path:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(ctx, 1<<20); err != nil {
//	    // limit reached for the lifetime of ctx
//	}
//	defer rc.ReleaseMemory(1 << 20)
//
// # Thread Safety
//
// All Controller methods are safe for concurrent use.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional accounting without nil checks everywhere.
package resource
