package instruction

import (
	"fmt"
	"time"
)

// Statistic carries the per-instruction counters the VM accumulates
// while running. It is parallel to a Program's instruction slice: index
// i holds the statistic for instruction i.
type Statistic struct {
	Index        int
	ItemCount    int64
	SuccessCount int64
	FailureCount int64
	RunTime      time.Duration
}

// HadException reports whether some run of this instruction entered it
// but never recorded a success or a failure, the signature of a body
// panic the VM recovered from.
func (s Statistic) HadException() bool {
	return s.ItemCount > s.SuccessCount+s.FailureCount
}

// MergeError is returned when two statistics that do not describe the
// same instruction are merged.
type MergeError struct {
	Index      int
	OtherIndex int
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("instruction: cannot merge statistic for index %d into index %d", e.OtherIndex, e.Index)
}

// Merge adds other's counters into s in place. Both statistics must
// describe the same instruction index. Merge is commutative and
// associative, so statistics collected by independent worker processes
// running the same compiled shape can be folded together in any order.
func (s *Statistic) Merge(other Statistic) error {
	if s.Index != other.Index {
		return &MergeError{Index: s.Index, OtherIndex: other.Index}
	}
	s.ItemCount += other.ItemCount
	s.SuccessCount += other.SuccessCount
	s.FailureCount += other.FailureCount
	s.RunTime += other.RunTime
	return nil
}
