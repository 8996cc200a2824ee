// Package compiler turns a flat description of rules, branches and
// structured control-flow markers into a vm.Program: a single-pass
// compile that resolves every forward branch with a fixup stack rather
// than a second pass over the instruction list.
package compiler

import "github.com/wudi/tarr/instruction"

// Node is one element of a program description. Description is built
// by calling the construction primitives below in sequence and handing
// the result to Compile.
type Node interface {
	compile(c *compileState) error
}

type nodeFunc func(c *compileState) error

func (f nodeFunc) compile(c *compileState) error { return f(c) }

// Rule appends a plain rule instruction: runs fn against the payload
// and always falls through.
func Rule(name string, fn instruction.RuleFunc) Node {
	return nodeFunc(func(c *compileState) error {
		c.compileRule(name, fn)
		return nil
	})
}

// Branch appends a standalone branch instruction. Used outside IF/ELIF
// it is a leaf: both edges fall through to whatever is emitted next, so
// its only visible effect is on the flag, not on control flow.
func Branch(name string, fn instruction.BranchFunc) Node {
	return nodeFunc(func(c *compileState) error {
		c.compileBranch(name, fn)
		return nil
	})
}

// BranchRule appends a standalone branch_rule instruction: a rule that
// may decline to make progress. Placed directly in a description (the
// common "try, else fall back" idiom) both edges fall through to the
// instruction emitted right after it, typically a fallback rule, and
// only the flag distinguishes the two outcomes for whatever reads it
// downstream (an IF further on, or a closing RETURN).
func BranchRule(name string, fn instruction.BranchRuleFunc) Node {
	return nodeFunc(func(c *compileState) error {
		c.compileBranchRule(name, fn)
		return nil
	})
}

// Return terminates the program, carrying forward whatever the flag
// currently is.
func Return() Node {
	return nodeFunc(func(c *compileState) error {
		c.compileReturn(false, false)
		return nil
	})
}

// ReturnTrue terminates the program with the flag forced to true.
func ReturnTrue() Node {
	return nodeFunc(func(c *compileState) error {
		c.compileReturn(true, true)
		return nil
	})
}

// ReturnFalse terminates the program with the flag forced to false.
func ReturnFalse() Node {
	return nodeFunc(func(c *compileState) error {
		c.compileReturn(true, false)
		return nil
	})
}

// If opens an IF block: cond is compiled as a branch; true enters the
// arm that follows, false skips to the next ELIF/ELSE/ENDIF.
func If(name string, cond instruction.BranchFunc) Node {
	return nodeFunc(func(c *compileState) error {
		return c.openIf(name, cond, false)
	})
}

// IfNot is If with the polarity inverted at compile time: the
// underlying condition function is unchanged, only which edge enters
// the arm and which edge skips it are swapped.
func IfNot(name string, cond instruction.BranchFunc) Node {
	return nodeFunc(func(c *compileState) error {
		return c.openIf(name, cond, true)
	})
}

// Elif closes the current arm and opens a new conditional arm in its
// place, chained off the previous condition's skip edge.
func Elif(name string, cond instruction.BranchFunc) Node {
	return nodeFunc(func(c *compileState) error {
		return c.elif(name, cond, false)
	})
}

// ElifNot is Elif with inverted polarity, matching IfNot.
func ElifNot(name string, cond instruction.BranchFunc) Node {
	return nodeFunc(func(c *compileState) error {
		return c.elif(name, cond, true)
	})
}

// Else closes the current arm and opens the unconditional final arm.
func Else() Node {
	return nodeFunc(func(c *compileState) error {
		return c.els()
	})
}

// EndIf closes the IF/ELIF/ELSE chain, resolving every arm's exit and
// any still-live condition skip edge to the instruction emitted next.
func EndIf() Node {
	return nodeFunc(func(c *compileState) error {
		return c.endIf()
	})
}

// Def opens a named sub-program. Its instructions are appended to the
// same flat instruction slice as the rest of the program; only the
// label table distinguishes them. Because CALL requires its target to
// be fully defined beforehand, DEF/END_DEF blocks a program's main flow
// calls into are written ahead of that flow in the description; Def
// rejects being opened while an earlier instruction's edge is still
// waiting for fallthrough resolution, so the description must close
// whatever precedes it (typically with RETURN) first. Compile tracks
// the first instruction compiled outside any DEF block as the
// program's EntryPoint, so leading sub-programs never steal index 0.
func Def(label string) Node {
	return nodeFunc(func(c *compileState) error {
		return c.def(label)
	})
}

// EndDef closes the current sub-program, inserting the implicit
// terminal instruction that either ends the run (if the sub-program
// falls off its own end without ever having been reached by a CALL) or
// hands control back to the instruction following the call site (once
// a CALL binds it, see Call).
func EndDef() Node {
	return nodeFunc(func(c *compileState) error {
		return c.endDef()
	})
}

// Call invokes a sub-program previously closed with EndDef. The
// sub-program must be fully defined (DEF ... END_DEF) before the Call
// node that references it; this is the forward-declare-by-label-lookup
// discipline the source programs use.
func Call(label string) Node {
	return nodeFunc(func(c *compileState) error {
		return c.call(label)
	})
}
