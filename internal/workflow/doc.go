// Package workflow owns the mix session and moves it through its stages.
//
// # Stages
//
// A session is always in exactly one [Stage]:
//
//	Auth ──► Source ──► Processing ──► Results
//	  ▲  │       ▲            │           │
//	  └──┘       └────────────┘◄──────────┘
//	(pending)      (fault)       (restart)
//
// [AuthStage] with a non-nil Pending is the suspension point of the user authorization flow: the
// machine waits for [Machine.CompleteAuth] with the redirected URL, or [Machine.CancelAuth].
//
// # Machine
//
// [Machine] is the only writer of the [Session]. Its operations block until the stage they start
// has settled and must not be called concurrently. After every change the machine hands an
// immutable [Snapshot] to the observer, which is how renderers learn about progress.
//
// # Errors
//
// An operation called in a stage where it is not allowed returns an error wrapping
// [shared.ErrInvalidTransition] and leaves the session unchanged. Gateway faults are stored on the
// session (one at a time, cleared by the next attempt) and also returned to the caller:
//   - auth faults keep the session in Auth
//   - source, enrichment and solve faults return it to Source
//   - save faults leave it in Results with the mix intact
package workflow
