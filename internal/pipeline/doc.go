// Package pipeline turns a raw track pool into a solved mix.
//
// # Enrichment
//
// [Engine.Enrich] looks up features for each track strictly one after another, in input order.
// Tracks the feature service does not recognise are dropped. A failure on any lookup aborts the
// run and no partial result is returned.
//
// # Progress Reporting
//
// Before each lookup the engine reports an [Update] whose [models.ProgressState] is {i, N, name};
// after the last lookup it reports {N, N, ""}. Updates are delivered through a [ProgressFunc]
// on the calling goroutine, so they arrive in order and the reported percentage never decreases.
//
// # Pacing
//
// An optional token-bucket limiter spaces lookups out to respect the feature service's rate limit.
// Pacing never reorders or retries calls.
//
// # Solve
//
// [Engine.Run] enriches and then hands the enriched set, even when empty, to the solver.
package pipeline
