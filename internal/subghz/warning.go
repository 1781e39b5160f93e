package subghz

import "fmt"

// Warning is a non-fatal diagnostic raised while decoding, encoding, parsing
// or assembling. Processing always continues after a warning.
type Warning struct {
	Stage   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Stage, w.Message)
}

// Warnings accumulates diagnostics in the order they were raised.
type Warnings []Warning

// Addf appends a formatted warning for the given stage.
func (ws *Warnings) Addf(stage, format string, args ...interface{}) {
	*ws = append(*ws, Warning{Stage: stage, Message: fmt.Sprintf(format, args...)})
}

// Merge appends other in order.
func (ws *Warnings) Merge(other Warnings) {
	*ws = append(*ws, other...)
}
