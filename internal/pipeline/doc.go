// Package pipeline drives a full classification run: it fetches the source
// folder's items, classifies them in batches, and reconciles the answers
// into move operations.
//
// The pipeline owns sequencing and progress reporting only. Remote access,
// classification, and reconciliation live behind small interfaces so the
// run can be tested without the network.
package pipeline
