// Command adjudicate runs the auto-adjudication guardrails against a claim
// snapshot file without touching the database.
//
// Usage:
//
//	# Evaluate a snapshot with the configured thresholds
//	adjudicate evaluate --input snapshot.json
//
//	# Override a threshold for a what-if run
//	adjudicate evaluate --input snapshot.json --max-fraud-score 25
//
//	# Read the snapshot from stdin
//	cat snapshot.json | adjudicate evaluate --input -
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
