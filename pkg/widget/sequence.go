package widget

import (
	"fmt"
	"strings"
)

// SequenceError describes a list whose positions are not a contiguous
// permutation of 0..n-1.
type SequenceError struct {
	Duplicates []int
	Missing    []int
	OutOfRange []int
}

func (e *SequenceError) Error() string {
	var parts []string
	if len(e.Duplicates) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate positions %v", e.Duplicates))
	}
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing positions %v", e.Missing))
	}
	if len(e.OutOfRange) > 0 {
		parts = append(parts, fmt.Sprintf("positions out of range %v", e.OutOfRange))
	}
	return "widget: invalid sequence: " + strings.Join(parts, "; ")
}

// CheckSequence reports whether positions form 0..n-1 with no gaps or
// duplicates. It never reorders or repairs the input.
func CheckSequence(instances []Instance) error {
	n := len(instances)
	seen := make([]int, n)
	var errSeq SequenceError

	for _, inst := range instances {
		if inst.Position < 0 || inst.Position >= n {
			errSeq.OutOfRange = append(errSeq.OutOfRange, inst.Position)
			continue
		}
		seen[inst.Position]++
		if seen[inst.Position] == 2 {
			errSeq.Duplicates = append(errSeq.Duplicates, inst.Position)
		}
	}
	for pos, count := range seen {
		if count == 0 {
			errSeq.Missing = append(errSeq.Missing, pos)
		}
	}

	if len(errSeq.Duplicates) == 0 && len(errSeq.Missing) == 0 && len(errSeq.OutOfRange) == 0 {
		return nil
	}
	return &errSeq
}

// IndexOf returns the slice index of the instance with id, or -1.
func IndexOf(instances []Instance, id string) int {
	for i, inst := range instances {
		if inst.ID == id {
			return i
		}
	}
	return -1
}
