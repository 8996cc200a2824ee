package compiler

import (
	"fmt"

	"github.com/wudi/tarr/instruction"
	"github.com/wudi/tarr/vm"
)

type edgeField int

const (
	trueEdge edgeField = iota
	falseEdge
)

type fixup struct {
	index int
	field edgeField
}

// ifFrame tracks one open IF/ELIF/ELSE chain. conditionIndex is the
// instruction whose "live" edge (the one NOT auto-resolved by the
// generic fallthrough rule) still needs to be pointed at the next
// ELIF, the ELSE body, or the position after ENDIF. pendingEnds
// collects every arm-exit edge that must instead be redirected past
// the whole chain, resolved only once ENDIF hands them on (see endIf).
type ifFrame struct {
	conditionIndex  int
	liveIsTrueField bool
	pendingEnds     []fixup
}

// compileState is the single-pass compiler's mutable state: the
// instruction slice under construction, the sub-program table, and the
// pending-edge bookkeeping the fixup stack uses to resolve forward
// branches without a second pass.
type compileState struct {
	instructions []instruction.Instruction

	subEntry            map[string]int
	subReturnTrampoline map[string]int
	subOrder            []string

	// pending holds edges waiting for "whatever instruction is emitted
	// next". Every rule/branch/branch_rule/call leaf that falls
	// through, and every IF chain as a whole once it closes, adds its
	// exit edges here; they all resolve together the moment the next
	// real instruction appears.
	pending []fixup

	ifStack []*ifFrame

	inDef           bool
	currentDefLabel string

	// entryPoint is the index of the first instruction compiled outside
	// any DEF block. Sub-programs must be fully defined before any CALL
	// references them, which means DEF/END_DEF blocks needed by main
	// are written ahead of main's own flow and would otherwise occupy
	// index 0; entryPoint lets Run start past them instead.
	entryPoint int
	entrySet   bool
}

func newCompileState() *compileState {
	return &compileState{
		subEntry:            map[string]int{},
		subReturnTrampoline: map[string]int{},
	}
}

func (c *compileState) markPending(index int, field edgeField) {
	c.pending = append(c.pending, fixup{index, field})
}

// resolveOpen fixes every still-pending edge to nextIndex, the position
// the instruction about to be emitted will occupy.
func (c *compileState) resolveOpen(nextIndex int) {
	for _, fx := range c.pending {
		if fx.field == trueEdge {
			c.instructions[fx.index].NextOnTrue = nextIndex
		} else {
			c.instructions[fx.index].NextOnFalse = nextIndex
		}
	}
	c.pending = c.pending[:0]
}

// appendInstruction resolves whatever was pending, then appends ins
// with its index and edges set, returning the new index. Callers mark
// edges pending (or fix them immediately, for CALL) afterward according
// to the instruction kind.
func (c *compileState) appendInstruction(ins instruction.Instruction) int {
	idx := len(c.instructions)
	c.resolveOpen(idx)
	ins.Index = idx
	ins.NextOnTrue = instruction.NoEdge
	ins.NextOnFalse = instruction.NoEdge
	c.instructions = append(c.instructions, ins)
	if !c.inDef && !c.entrySet {
		c.entryPoint = idx
		c.entrySet = true
	}
	return idx
}

func (c *compileState) compileRule(name string, fn instruction.RuleFunc) {
	idx := c.appendInstruction(instruction.Instruction{Kind: instruction.KindRule, Name: name, Rule: fn})
	c.markPending(idx, trueEdge)
	c.markPending(idx, falseEdge)
}

func (c *compileState) compileBranch(name string, fn instruction.BranchFunc) {
	idx := c.appendInstruction(instruction.Instruction{Kind: instruction.KindBranch, Name: name, Branch: fn})
	c.markPending(idx, trueEdge)
	c.markPending(idx, falseEdge)
}

func (c *compileState) compileBranchRule(name string, fn instruction.BranchRuleFunc) {
	idx := c.appendInstruction(instruction.Instruction{Kind: instruction.KindBranchRule, Name: name, BranchRule: fn})
	c.markPending(idx, trueEdge)
	c.markPending(idx, falseEdge)
}

func (c *compileState) compileReturn(set, value bool) {
	c.appendInstruction(instruction.Instruction{Kind: instruction.KindReturn, Name: returnName(set, value), ReturnValueSet: set, ReturnValue: value})
}

func returnName(set, value bool) string {
	if !set {
		return "RETURN"
	}
	if value {
		return "RETURN True"
	}
	return "RETURN False"
}

// openIf emits cond as a branch instruction and pushes a new frame. The
// edge that enters the arm (true for IF, false for IF_NOT) is marked
// pending so the next-emitted instruction, the arm's first instruction,
// resolves it automatically; the other edge is the frame's "live"
// edge, tracked until ELIF/ELSE/ENDIF fixes it.
func (c *compileState) openIf(name string, cond instruction.BranchFunc, negate bool) error {
	idx := c.appendInstruction(instruction.Instruction{Kind: instruction.KindBranch, Name: name, Branch: cond})
	if negate {
		c.markPending(idx, falseEdge)
	} else {
		c.markPending(idx, trueEdge)
	}
	c.ifStack = append(c.ifStack, &ifFrame{conditionIndex: idx, liveIsTrueField: negate})
	return nil
}

// closeArm hands every edge still pending (the tail of the arm just
// finished) to frame's pending-end list, so it does not auto-resolve to
// the next arm's condition or body.
func (c *compileState) closeArm(frame *ifFrame) {
	frame.pendingEnds = append(frame.pendingEnds, c.pending...)
	c.pending = c.pending[:0]
}

// resolveLiveEdge points frame's still-pending condition edge directly
// at target. Valid only while still inside the same chain (ELIF/ELSE
// know exactly where the next arm starts); ENDIF instead defers (see
// endIf), since closing the whole chain may itself be nested inside an
// outer arm.
func (c *compileState) resolveLiveEdge(frame *ifFrame, target int) {
	if frame.conditionIndex == instruction.NoEdge {
		return
	}
	if frame.liveIsTrueField {
		c.instructions[frame.conditionIndex].NextOnTrue = target
	} else {
		c.instructions[frame.conditionIndex].NextOnFalse = target
	}
	frame.conditionIndex = instruction.NoEdge
}

func (c *compileState) currentIfFrame() (*ifFrame, bool) {
	if len(c.ifStack) == 0 {
		return nil, false
	}
	return c.ifStack[len(c.ifStack)-1], true
}

func (c *compileState) elif(name string, cond instruction.BranchFunc, negate bool) error {
	frame, ok := c.currentIfFrame()
	if !ok {
		return &CompileError{Kind: ErrUnmatchedElif, Message: "ELIF/ELIF_NOT with no matching IF"}
	}
	c.closeArm(frame)
	c.resolveLiveEdge(frame, len(c.instructions))

	idx := c.appendInstruction(instruction.Instruction{Kind: instruction.KindBranch, Name: name, Branch: cond})
	frame.conditionIndex = idx
	frame.liveIsTrueField = negate
	if negate {
		c.markPending(idx, falseEdge)
	} else {
		c.markPending(idx, trueEdge)
	}
	return nil
}

func (c *compileState) els() error {
	frame, ok := c.currentIfFrame()
	if !ok {
		return &CompileError{Kind: ErrUnmatchedElse, Message: "ELSE with no matching IF"}
	}
	c.closeArm(frame)
	c.resolveLiveEdge(frame, len(c.instructions))
	return nil
}

// endIf closes the current arm and, rather than resolving the chain's
// accumulated exit edges to a concrete position, folds them back into
// c.pending: whatever instruction is emitted next resolves them, same
// as any other fallthrough. This is what makes nested IFs work: an
// inner chain's arm exits must skip past the rest of the OUTER chain's
// arms, not just land on whatever happens to follow the inner ENDIF
// textually, so they stay pending until an enclosing closeArm (or, at
// top level, the next real instruction) claims them.
func (c *compileState) endIf() error {
	frame, ok := c.currentIfFrame()
	if !ok {
		return &CompileError{Kind: ErrUnmatchedEndIf, Message: "ENDIF with no matching IF"}
	}
	c.closeArm(frame)

	if frame.conditionIndex != instruction.NoEdge {
		field := falseEdge
		if frame.liveIsTrueField {
			field = trueEdge
		}
		frame.pendingEnds = append(frame.pendingEnds, fixup{frame.conditionIndex, field})
		frame.conditionIndex = instruction.NoEdge
	}

	c.pending = append(c.pending, frame.pendingEnds...)
	c.ifStack = c.ifStack[:len(c.ifStack)-1]
	return nil
}

func identity(payload any) any { return payload }

func (c *compileState) def(label string) error {
	if c.inDef {
		return &CompileError{Kind: ErrNestedSubProgram, Message: fmt.Sprintf("DEF %q opened while %q is still open", label, c.currentDefLabel)}
	}
	if _, exists := c.subEntry[label]; exists {
		return &CompileError{Kind: ErrDuplicateLabel, Message: fmt.Sprintf("duplicate sub-program label %q", label)}
	}
	if len(c.pending) > 0 {
		return &CompileError{Kind: ErrFallthroughIntoSubProgram, Message: fmt.Sprintf("DEF %q would be entered by fallthrough from the preceding instruction; terminate it with RETURN first", label)}
	}
	c.subEntry[label] = len(c.instructions)
	c.inDef = true
	c.currentDefLabel = label
	return nil
}

// endDef closes the open DEF, inserting a rule-kind trampoline named
// "RETURN" for its edges. Once a CALL binds it, its edges resolve to
// whatever is emitted right after that CALL, handing control back to
// the caller without a runtime call stack. If no CALL ever binds it,
// Compile turns it into a plain RETURN that carries the current flag.
func (c *compileState) endDef() error {
	if !c.inDef {
		return &CompileError{Kind: ErrUnmatchedEndDef, Message: "END_DEF with no open DEF"}
	}
	label := c.currentDefLabel
	idx := c.appendInstruction(instruction.Instruction{Kind: instruction.KindRule, Name: "RETURN", Rule: identity})
	c.subReturnTrampoline[label] = idx
	c.subOrder = append(c.subOrder, label)
	c.inDef = false
	c.currentDefLabel = ""
	return nil
}

// call emits the CALL trampoline (a rule-kind instruction whose edges
// jump straight into the sub-program) and marks the sub-program's
// return trampoline as pending, so the instruction emitted right after
// this CALL becomes its continuation.
func (c *compileState) call(label string) error {
	entry, ok := c.subEntry[label]
	if !ok {
		return &CompileError{Kind: ErrUndefinedCall, Message: fmt.Sprintf("CALL to undefined sub-program %q", label)}
	}
	trampolineIdx, closed := c.subReturnTrampoline[label]
	if !closed {
		return &CompileError{Kind: ErrUndefinedCall, Message: fmt.Sprintf("CALL to sub-program %q before its END_DEF", label)}
	}

	idx := c.appendInstruction(instruction.Instruction{Kind: instruction.KindRule, Name: "CALL " + label, Rule: identity})
	c.instructions[idx].NextOnTrue = entry
	c.instructions[idx].NextOnFalse = entry

	c.markPending(trampolineIdx, trueEdge)
	c.markPending(trampolineIdx, falseEdge)
	return nil
}

// validate checks that every non-return instruction's edges are valid
// indices into the finished instruction slice.
func (c *compileState) validate() error {
	n := len(c.instructions)
	for _, ins := range c.instructions {
		if ins.Kind == instruction.KindReturn {
			continue
		}
		if ins.NextOnTrue < 0 || ins.NextOnTrue >= n {
			return &CompileError{Kind: ErrDanglingEdge, Message: fmt.Sprintf("instruction %d (%s): next_on_true %d is not a valid instruction index", ins.Index, ins.Name, ins.NextOnTrue)}
		}
		if ins.NextOnFalse < 0 || ins.NextOnFalse >= n {
			return &CompileError{Kind: ErrDanglingEdge, Message: fmt.Sprintf("instruction %d (%s): next_on_false %d is not a valid instruction index", ins.Index, ins.Name, ins.NextOnFalse)}
		}
	}
	return nil
}

// Compile turns a program description into a runnable vm.Program,
// resolving every edge in a single left-to-right pass via a fixup
// stack. It returns a *CompileError for any malformed description;
// callers that need to branch on the failure kind should use errors.As.
func Compile(description []Node) (*vm.Program, error) {
	c := newCompileState()

	for _, node := range description {
		if err := node.compile(c); err != nil {
			return nil, err
		}
	}

	if len(c.ifStack) > 0 {
		return nil, &CompileError{Kind: ErrOpenIfAtEOF, Message: "description ended with an open IF frame"}
	}
	if c.inDef {
		return nil, &CompileError{Kind: ErrUnclosedSubProgram, Message: fmt.Sprintf("sub-program %q has no END_DEF", c.currentDefLabel)}
	}
	// A trampoline no CALL ever bound has nowhere to hand control back
	// to, so it ends the run like a plain RETURN.
	for _, idx := range c.subReturnTrampoline {
		bound := c.instructions[idx].NextOnTrue != instruction.NoEdge
		for _, fx := range c.pending {
			bound = bound || fx.index == idx
		}
		if !bound {
			c.instructions[idx].Kind = instruction.KindReturn
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	subPrograms := make([]vm.SubProgram, 0, len(c.subOrder))
	for _, label := range c.subOrder {
		subPrograms = append(subPrograms, vm.SubProgram{
			Label: label,
			Entry: c.subEntry[label],
			End:   c.subReturnTrampoline[label] + 1,
		})
	}

	statistics := make([]instruction.Statistic, len(c.instructions))
	for i := range statistics {
		statistics[i] = instruction.Statistic{Index: i}
	}

	return &vm.Program{
		Instructions: c.instructions,
		SubPrograms:  subPrograms,
		Statistics:   statistics,
		EntryPoint:   c.entryPoint,
	}, nil
}
