package tablebase

// Report wraps an Outcome with a Processed flag. A slot starts out
// NeverVisitedReport (Outcome == Undefined): enumeration has not reached it
// yet. Once the generator's position handler looks at it, it becomes
// Unprocessed (Outcome == Unknown) if no exact outcome is knowable yet, and
// is flipped to Processed exactly once, the moment an exact outcome (by
// terminal classification, capture/promotion lookup, or the tagger's
// retrograde search) is assigned. Keeping Undefined and Unknown distinct
// lets the generator detect a genuine duplicate visit to the same index
// (Get returns something other than NeverVisitedReport) instead of
// confusing it with an ordinary, not-yet-resolved slot.
// Reports are only ever written into the in-memory working array; the
// on-disk block format stores bare Outcome bytes, and it is an
// InternalInvariant violation to persist a Report that is still
// Undefined or Unprocessed.
type Report struct {
	Outcome   Outcome
	Processed bool
}

// NeverVisitedReport is the sentinel every generated slot starts at, before
// enumeration has reached it for the first time.
var NeverVisitedReport = Report{Outcome: Undefined, Processed: false}

// UnprocessedReport is a slot enumeration has visited but could not yet
// resolve to an exact outcome (the Tagger's retrograde search will).
var UnprocessedReport = Report{Outcome: Unknown, Processed: false}

// NewProcessed returns a Report carrying a final outcome.
func NewProcessed(o Outcome) Report {
	return Report{Outcome: o, Processed: true}
}
