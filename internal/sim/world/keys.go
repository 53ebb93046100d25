package world

import (
	"cmp"
	"slices"
)

// sortedKeys returns map keys in ascending order. Every per-tick map walk goes
// through this or LoadedChunkKeys so replays stay byte-identical.
func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func sortChunkKeys(keys []ChunkKey) {
	slices.SortFunc(keys, func(a, b ChunkKey) int {
		if a.CX != b.CX {
			return cmp.Compare(a.CX, b.CX)
		}
		return cmp.Compare(a.CZ, b.CZ)
	})
}

// sortedSet is sortedKeys for struct{}-valued sets.
func sortedSet[K cmp.Ordered](m map[K]struct{}) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
