package workpool

// Work is a unit of blocking work executed on a background worker.
// The returned value and error are delivered through the Handle given
// out at submission time.
type Work func() (interface{}, error)

// Stats contains runtime statistics for a Pool.
type Stats struct {
	// Number of worker goroutines
	Workers int

	// Work items queued but not yet started
	Queued int

	// Total work items accepted by Submit
	Submitted uint64

	// Work items that finished without error
	Completed uint64

	// Work items that finished with an error (including panics)
	Failed uint64
}
