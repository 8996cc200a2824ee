package vm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wudi/tarr/instruction"
)

func linearProgram(instructions ...instruction.Instruction) *Program {
	stats := make([]instruction.Statistic, len(instructions))
	for i := range stats {
		stats[i] = instruction.Statistic{Index: i}
	}
	return &Program{Instructions: instructions, Statistics: stats}
}

// A single rule followed by RETURN terminates with flag true and
// the transformed payload.
func TestProgram_Run_SingleRule(t *testing.T) {
	p := linearProgram(
		instruction.Instruction{Kind: instruction.KindRule, Name: "double", Rule: func(v any) any { return v.(int) * 2 }, NextOnTrue: 1, NextOnFalse: 1},
		instruction.Instruction{Kind: instruction.KindReturn},
	)

	item := NewItem(21)
	flag, err := p.Run(item)
	require.NoError(t, err)
	assert.True(t, flag)
	assert.Equal(t, 42, item.Payload())
	assert.Equal(t, int64(1), p.Statistics[0].ItemCount)
	assert.Equal(t, int64(1), p.Statistics[0].SuccessCount)
	assert.Equal(t, int64(0), p.Statistics[0].FailureCount)
}

// A branch taken routes to the true or false arm depending on the
// condition, each arm converging on the same RETURN.
func TestProgram_Run_BranchTaken(t *testing.T) {
	p := linearProgram(
		instruction.Instruction{Kind: instruction.KindBranch, Name: "positive?", Branch: func(v any) bool { return v.(int) > 0 }, NextOnTrue: 1, NextOnFalse: 2},
		instruction.Instruction{Kind: instruction.KindRule, Name: "double", Rule: func(v any) any { return v.(int) * 2 }, NextOnTrue: 3, NextOnFalse: 3},
		instruction.Instruction{Kind: instruction.KindRule, Name: "negate", Rule: func(v any) any { return -v.(int) }, NextOnTrue: 3, NextOnFalse: 3},
		instruction.Instruction{Kind: instruction.KindReturn},
	)

	item := NewItem(5)
	flag, err := p.Run(item)
	require.NoError(t, err)
	assert.True(t, flag)
	assert.Equal(t, 10, item.Payload())

	item = NewItem(-5)
	flag, err = p.Run(item)
	require.NoError(t, err)
	// the false branch cleared the flag and "negate" leaves it alone
	assert.False(t, flag)
	assert.Equal(t, 5, item.Payload())
}

// A branch_rule that makes no progress falls through to a fallback
// rule and is counted as a failure, not an exception.
func TestProgram_Run_BranchRuleNoProgress(t *testing.T) {
	p := linearProgram(
		instruction.Instruction{
			Kind: instruction.KindBranchRule, Name: "try-parse",
			BranchRule: func(v any) any {
				if v.(string) == "" {
					return instruction.NoProgress
				}
				return len(v.(string))
			},
			NextOnTrue: 1, NextOnFalse: 1,
		},
		instruction.Instruction{Kind: instruction.KindRule, Name: "fallback", Rule: func(any) any { return -1 }, NextOnTrue: 2, NextOnFalse: 2},
		instruction.Instruction{Kind: instruction.KindReturn},
	)

	item := NewItem("")
	flag, err := p.Run(item)
	require.NoError(t, err)
	assert.False(t, flag)
	assert.Equal(t, -1, item.Payload())
	assert.Equal(t, int64(1), p.Statistics[0].FailureCount)
	assert.Equal(t, int64(0), p.Statistics[0].SuccessCount)
	assert.False(t, p.Statistics[0].HadException())
}

// The visitor package's rendering tests also use a branch_rule named
// "try-parse", there followed directly by RETURN with no fallback rule.

// A panicking rule body is recovered into a *RuntimeError; item_count
// is counted but neither success nor failure is.
func TestProgram_Run_PanicRecovered(t *testing.T) {
	p := linearProgram(
		instruction.Instruction{Kind: instruction.KindRule, Name: "boom", Rule: func(any) any { panic(errors.New("kaboom")) }, NextOnTrue: 1, NextOnFalse: 1},
		instruction.Instruction{Kind: instruction.KindReturn},
	)

	item := NewItem(1)
	_, err := p.Run(item)
	require.Error(t, err)

	var runtimeErr *RuntimeError
	require.ErrorAs(t, err, &runtimeErr)
	assert.Equal(t, 0, runtimeErr.Index)
	assert.Equal(t, "boom", runtimeErr.InstructionName)

	stat := p.Statistics[0]
	assert.Equal(t, int64(1), stat.ItemCount)
	assert.Equal(t, int64(0), stat.SuccessCount)
	assert.Equal(t, int64(0), stat.FailureCount)
	assert.True(t, stat.HadException())
}

// RETURN_TRUE / RETURN_FALSE force the terminal flag regardless of
// whatever the last instruction left it at.
func TestProgram_Run_ForcedReturnValue(t *testing.T) {
	p := linearProgram(
		instruction.Instruction{Kind: instruction.KindBranch, Branch: func(any) bool { return false }, NextOnTrue: 1, NextOnFalse: 1},
		instruction.Instruction{Kind: instruction.KindReturn, ReturnValueSet: true, ReturnValue: true},
	)

	flag, err := p.Run(NewItem(nil))
	require.NoError(t, err)
	assert.True(t, flag)
}

func TestProgram_SubProgramEntry(t *testing.T) {
	p := &Program{SubPrograms: []SubProgram{{Label: "helper", Entry: 4, End: 6}}}
	entry, ok := p.SubProgramEntry("helper")
	assert.True(t, ok)
	assert.Equal(t, 4, entry)

	_, ok = p.SubProgramEntry("missing")
	assert.False(t, ok)
}
