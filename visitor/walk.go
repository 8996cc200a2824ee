// Package visitor renders a compiled vm.Program as a text listing or a
// Graphviz dot description, optionally annotated with its statistics.
// It depends on vm, not the other way around: Program gets no
// ToText/ToDot methods, only these free functions (see ToText/ToDot in
// render.go).
package visitor

import (
	"github.com/wudi/tarr/instruction"
	"github.com/wudi/tarr/vm"
)

// Walk traverses p in two levels, bracketing each sub-program with
// EnterSubProgram/LeaveSubProgram: main first (label absent), then
// every named sub-program in the table's order. Within a bracket,
// every instruction belonging to it is dispatched to the matching
// Visit* method in index order.
func Walk(p *vm.Program, v instruction.Visitor) {
	claimed := make([]bool, len(p.Instructions))
	for _, sp := range p.SubPrograms {
		for i := sp.Entry; i < sp.End; i++ {
			claimed[i] = true
		}
	}

	v.EnterSubProgram("", false)
	for i := range p.Instructions {
		if claimed[i] {
			continue
		}
		p.Instructions[i].Accept(v)
	}
	v.LeaveSubProgram("", false)

	for _, sp := range p.SubPrograms {
		v.EnterSubProgram(sp.Label, true)
		for i := sp.Entry; i < sp.End; i++ {
			p.Instructions[i].Accept(v)
		}
		v.LeaveSubProgram(sp.Label, true)
	}
}
