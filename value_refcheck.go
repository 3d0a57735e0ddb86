//go:build ginja_refcheck

package ginja

// Debug-only reference-leak counter (SPEC_FULL.md "Reference-count
// auditing"), mirroring the C original's assert-style invariants that only
// run in a debug build. Built only with `-tags ginja_refcheck`; ordinary
// builds pay nothing for it (see value_norefcheck.go).

var liveValueCount int

func refcheckBorn() {
	liveValueCount++
}

func refcheckDied() {
	liveValueCount--
}

// LiveValueCount reports the number of constructed non-singleton Values
// that have not yet been released. Nothing checks it automatically; a caller
// can compare it to zero after Environment.Destroy.
func LiveValueCount() int {
	return liveValueCount
}
