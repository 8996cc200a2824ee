// Package vm holds the compiled Program artifact and the instruction-graph
// runner that walks it for a single data item.
package vm

import "github.com/wudi/tarr/instruction"

// SubProgram records where a named sub-program starts and ends within a
// Program's flat instruction slice. End is exclusive.
type SubProgram struct {
	Label string
	Entry int
	End   int
}

// Program is the compiled artifact: an ordered instruction list, a table
// of named sub-programs, and a statistics vector parallel to the
// instructions. It is built once by the compiler and is immutable apart
// from its statistics, which the VM mutates in place while running.
type Program struct {
	Instructions []instruction.Instruction
	SubPrograms  []SubProgram
	Statistics   []instruction.Statistic

	// EntryPoint is the index Run starts at. It is 0 unless the program
	// defines sub-programs ahead of its own main flow (sub-programs must
	// be compiled before any CALL can reference them), in which case it
	// points past them to main's actual first instruction.
	EntryPoint int
}

// SubProgramEntry looks up the entry index of a named sub-program.
func (p *Program) SubProgramEntry(label string) (int, bool) {
	for _, sp := range p.SubPrograms {
		if sp.Label == label {
			return sp.Entry, true
		}
	}
	return 0, false
}

// DataItem is the opaque record the caller supplies. The VM only needs a
// mutable payload slot; everything else about the record is the
// caller's business.
type DataItem interface {
	Payload() any
	SetPayload(any)
}

// Item is a minimal DataItem a caller can use directly instead of
// implementing the interface on a richer type.
type Item struct {
	payload any
}

// NewItem wraps a payload in the minimal DataItem implementation.
func NewItem(payload any) *Item {
	return &Item{payload: payload}
}

func (i *Item) Payload() any     { return i.payload }
func (i *Item) SetPayload(p any) { i.payload = p }
