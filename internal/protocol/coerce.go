package protocol

import (
	"fmt"
	"math"

	"sandvox.gg/internal/sim/blocks"
)

// CoerceInt accepts the integer encodings JSON clients actually produce:
// float64 from encoding/json, plain ints from internal callers, and numeric
// strings are rejected rather than guessed.
func CoerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}

// Resolve settles an EditEntry's Block field to a palette id. Accepted forms
// are a numeric palette id or a block name string.
func (e EditEntry) Resolve() (blocks.ID, error) {
	switch b := e.Block.(type) {
	case string:
		id, ok := blocks.ByName(b)
		if !ok {
			return blocks.Air, fmt.Errorf("unknown block %q", b)
		}
		return id, nil
	default:
		n, ok := CoerceInt(e.Block)
		if !ok || n < 0 || n >= int(blocks.Count) {
			return blocks.Air, fmt.Errorf("bad block id %v", e.Block)
		}
		return blocks.ID(n), nil
	}
}
