package instruction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInstruction_RunRule(t *testing.T) {
	ins := &Instruction{
		Index:       0,
		Kind:        KindRule,
		Name:        "increment",
		Rule:        func(p any) any { return p.(int) + 1 },
		NextOnTrue:  1,
		NextOnFalse: 1,
	}

	next, flag, payload := ins.Run(true, 10)
	assert.Equal(t, 1, next)
	assert.True(t, flag, "a rule must not alter the flag")
	assert.Equal(t, 11, payload)
}

func TestInstruction_RunBranch(t *testing.T) {
	ins := &Instruction{
		Kind:        KindBranch,
		Branch:      func(p any) bool { return p.(int) > 0 },
		NextOnTrue:  5,
		NextOnFalse: 9,
	}

	next, flag, payload := ins.Run(false, 3)
	assert.Equal(t, 5, next)
	assert.True(t, flag)
	assert.Equal(t, 3, payload)

	next, flag, payload = ins.Run(true, -3)
	assert.Equal(t, 9, next)
	assert.False(t, flag)
	assert.Equal(t, -3, payload)
}

func TestInstruction_RunBranchRule(t *testing.T) {
	ins := &Instruction{
		Kind: KindBranchRule,
		BranchRule: func(p any) any {
			if p.(int) < 0 {
				return NoProgress
			}
			return p.(int) * 2
		},
		NextOnTrue:  1,
		NextOnFalse: 2,
	}

	next, flag, payload := ins.Run(true, 4)
	assert.Equal(t, 1, next)
	assert.True(t, flag)
	assert.Equal(t, 8, payload)

	// No-progress preserves payload identity.
	original := &struct{ n int }{n: -1}
	ins.BranchRule = func(p any) any {
		if p.(*struct{ n int }).n < 0 {
			return NoProgress
		}
		return p
	}
	next, flag, payload = ins.Run(true, original)
	assert.Equal(t, 2, next)
	assert.False(t, flag)
	assert.Same(t, original, payload)
}

func TestInstruction_RunReturn(t *testing.T) {
	carryFlag := &Instruction{Kind: KindReturn}
	next, flag, payload := carryFlag.Run(true, "x")
	assert.Equal(t, NoEdge, next)
	assert.True(t, flag)
	assert.Equal(t, "x", payload)

	forced := &Instruction{Kind: KindReturn, ReturnValue: false, ReturnValueSet: true}
	next, flag, _ = forced.Run(true, "x")
	assert.Equal(t, NoEdge, next)
	assert.False(t, flag)
}

func TestInstruction_Next(t *testing.T) {
	ins := &Instruction{NextOnTrue: 3, NextOnFalse: 7}
	assert.Equal(t, 3, ins.Next(true))
	assert.Equal(t, 7, ins.Next(false))
}

type recordingVisitor struct {
	visited []Kind
}

func (v *recordingVisitor) EnterSubProgram(string, bool) {}
func (v *recordingVisitor) LeaveSubProgram(string, bool) {}
func (v *recordingVisitor) VisitRule(ins *Instruction)       { v.visited = append(v.visited, ins.Kind) }
func (v *recordingVisitor) VisitBranch(ins *Instruction)     { v.visited = append(v.visited, ins.Kind) }
func (v *recordingVisitor) VisitBranchRule(ins *Instruction) { v.visited = append(v.visited, ins.Kind) }
func (v *recordingVisitor) VisitReturn(ins *Instruction)     { v.visited = append(v.visited, ins.Kind) }

func TestInstruction_Accept(t *testing.T) {
	v := &recordingVisitor{}
	kinds := []Kind{KindRule, KindBranch, KindBranchRule, KindReturn}
	for _, k := range kinds {
		(&Instruction{Kind: k}).Accept(v)
	}
	assert.Equal(t, kinds, v.visited)
}

func TestStatistic_HadException(t *testing.T) {
	s := Statistic{Index: 0, ItemCount: 3, SuccessCount: 1, FailureCount: 1}
	assert.True(t, s.HadException())

	s = Statistic{Index: 0, ItemCount: 2, SuccessCount: 1, FailureCount: 1}
	assert.False(t, s.HadException())
}

func TestStatistic_MergeLaws(t *testing.T) {
	s := Statistic{Index: 2, ItemCount: 1, SuccessCount: 1, RunTime: time.Millisecond}
	u := Statistic{Index: 2, ItemCount: 2, FailureCount: 2, RunTime: 2 * time.Millisecond}
	w := Statistic{Index: 2, ItemCount: 5, SuccessCount: 1, FailureCount: 4, RunTime: 3 * time.Millisecond}

	require := func(err error) {
		if err != nil {
			t.Fatalf("unexpected merge error: %v", err)
		}
	}

	// merge(s, u) == merge(u, s)
	a := s
	require(a.Merge(u))
	b := u
	require(b.Merge(s))
	assert.Equal(t, a, b)

	// merge(merge(s, u), w) == merge(s, merge(u, w))
	left := s
	require(left.Merge(u))
	require(left.Merge(w))

	right := u
	require(right.Merge(w))
	final := s
	require(final.Merge(right))

	assert.Equal(t, left, final)
}

func TestStatistic_MergeMismatch(t *testing.T) {
	s := Statistic{Index: 1}
	err := s.Merge(Statistic{Index: 2})
	assert.Error(t, err)
	var mergeErr *MergeError
	assert.ErrorAs(t, err, &mergeErr)
	assert.Equal(t, 1, mergeErr.Index)
	assert.Equal(t, 2, mergeErr.OtherIndex)
}
