package compiler

import "fmt"

// ErrorKind tags the family of a CompileError for callers that want to
// branch on it rather than parse Message.
type ErrorKind int

const (
	// ErrUnmatchedElse: ELSE with no matching IF/IF_NOT frame open.
	ErrUnmatchedElse ErrorKind = iota
	// ErrUnmatchedElif: ELIF/ELIF_NOT with no matching IF/IF_NOT frame open.
	ErrUnmatchedElif
	// ErrUnmatchedEndIf: ENDIF with no matching IF/IF_NOT frame open.
	ErrUnmatchedEndIf
	// ErrOpenIfAtEOF: the description ended with an IF frame still open.
	ErrOpenIfAtEOF
	// ErrDanglingEdge: post-compile validation found a non-return
	// instruction with an edge that is not a valid instruction index.
	ErrDanglingEdge
	// ErrDuplicateLabel: DEF named a sub-program label already defined.
	ErrDuplicateLabel
	// ErrUndefinedCall: CALL named a label with no matching DEF/END_DEF
	// compiled before it.
	ErrUndefinedCall
	// ErrUnmatchedEndDef: END_DEF with no open DEF.
	ErrUnmatchedEndDef
	// ErrNestedSubProgram: DEF encountered while another DEF is still open.
	ErrNestedSubProgram
	// ErrUnclosedSubProgram: the description ended with a DEF never closed
	// by END_DEF.
	ErrUnclosedSubProgram
	// ErrFallthroughIntoSubProgram: DEF opened while an earlier
	// instruction's edge was still pending fallthrough resolution, which
	// would wire that instruction straight into the sub-program's body
	// instead of leaving it reachable only via CALL.
	ErrFallthroughIntoSubProgram
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnmatchedElse:
		return "unmatched_else"
	case ErrUnmatchedElif:
		return "unmatched_elif"
	case ErrUnmatchedEndIf:
		return "unmatched_endif"
	case ErrOpenIfAtEOF:
		return "open_if_at_eof"
	case ErrDanglingEdge:
		return "dangling_edge"
	case ErrDuplicateLabel:
		return "duplicate_label"
	case ErrUndefinedCall:
		return "undefined_call"
	case ErrUnmatchedEndDef:
		return "unmatched_end_def"
	case ErrNestedSubProgram:
		return "nested_sub_program"
	case ErrUnclosedSubProgram:
		return "unclosed_sub_program"
	case ErrFallthroughIntoSubProgram:
		return "fallthrough_into_sub_program"
	default:
		return "unknown"
	}
}

// CompileError is returned by Compile when a description is malformed.
// It never reaches the VM: a Program only exists once a description has
// compiled cleanly.
type CompileError struct {
	Kind    ErrorKind
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiler: %s: %s", e.Kind, e.Message)
}
