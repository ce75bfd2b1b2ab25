package layer

import (
	"fmt"
	"sync"
)

// nameCounters hands out Keras-style names: dense, dense_1, dense_2, ...
var nameCounters = struct {
	sync.Mutex
	next map[Kind]int
}{next: make(map[Kind]int)}

func uniqueName(kind Kind) string {
	nameCounters.Lock()
	defer nameCounters.Unlock()

	n := nameCounters.next[kind]
	nameCounters.next[kind] = n + 1
	if n == 0 {
		return string(kind)
	}
	return fmt.Sprintf("%s_%d", kind, n)
}

// ResetNameCounters restarts auto-generated names from the bare kind name.
// Layers created earlier keep their names, so duplicates become possible.
func ResetNameCounters() {
	nameCounters.Lock()
	defer nameCounters.Unlock()
	nameCounters.next = make(map[Kind]int)
}
