// Package selector maps a calendar day and attempt ordinal to a catalog
// index. The day and ordinal are the whole seed: nothing about the chosen
// challenge needs to be persisted for a reload to show the same exercise.
package selector

import (
	"hash/fnv"
	"strconv"

	"github.com/julianstephens/dailyfix/internal/calendar"
	"github.com/julianstephens/dailyfix/internal/constants"
)

// Hash returns the 32-bit FNV-1a hash of s.
func Hash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// Seed builds the selection input for a day and attempt ordinal.
func Seed(day calendar.Day, ordinal int) string {
	return constants.SelectorNamespace + "|" + string(day) + "|" + strconv.Itoa(ordinal)
}

// Select returns an index in [0, size). size must be positive.
func Select(day calendar.Day, ordinal, size int) int {
	if size <= 0 {
		panic("selector: catalog must not be empty")
	}
	return int(Hash(Seed(day, ordinal)) % uint32(size))
}
