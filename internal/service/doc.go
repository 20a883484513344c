// Package service implements the survey's business logic.
//
// The package owns the in-progress answers and everything that happens to
// them on the way to the spreadsheet:
//
//   - FormStore: the single answer set, write-through persisted to a
//     storage.Storage slot and reconciled after every mutation
//   - Section validators: pure completion checks per wizard page, grouped
//     into a SectionReport per flow
//   - Transformer: flattens a FormState into one spreadsheet row
//   - SheetsClient: best-effort delivery of a row to the remote receiver
//   - Archive and SubmissionService: the local-first submit flow
//   - SheetService: the receiver side, appending rows and widening headers
//
// # Service Pattern
//
// Constructors take a config struct and default what they can:
//
//	store := NewFormStore(FormStoreConfig{Storage: slots, Logger: logger})
//	state := store.Load(ctx)
//	state, err := store.ToggleBlockerTeammate(ctx, "suha-hussein")
//
// # Error Handling
//
// Errors are package-level sentinels from errors.go, wrapped with context
// and matched by handlers with errors.Is. Patch validation returns
// *model.ProblemDetails directly. Storage write failures on the form slot
// are logged and never returned; only a failed archive write fails a
// submission.
package service
