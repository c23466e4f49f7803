// Package organizer reconciles classification answers against the live
// favorites catalog by issuing move operations.
//
// Each (item, answer) pair resolves independently: answers outside the
// user's target set are skipped, answers whose folder no longer exists are
// surfaced as an internal-consistency condition, and everything else becomes
// a move recorded as an Outcome. One item's failure never aborts the rest of
// the run, and moves are paced sequentially to stay under the remote rate
// limits.
package organizer
