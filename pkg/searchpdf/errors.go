package searchpdf

import "fmt"

// PageError wraps any recognition or rendering failure scoped to one page.
// Per-page errors are recorded and processing continues; the recognition
// service has a nonzero per-call failure rate and one bad page must not
// invalidate the batch.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }
