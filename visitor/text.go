package visitor

import (
	"fmt"
	"strings"

	"github.com/wudi/tarr/instruction"
)

// TextVisitor renders the line-oriented listing: "NNNN NAME" lines,
// two comment lines per branch ("     # True  -> T" / "     # False
// -> F"), optional "   (*N)" statistics suffixes, and the END OF MAIN
// PROGRAM / DEF ("label") / END # label framing around sub-programs.
// A nil Stats renders the statistics-free variant.
type TextVisitor struct {
	Stats []instruction.Statistic

	lines []string
}

// NewTextVisitor returns a TextVisitor. Pass nil for the
// statistics-free rendering, or a Program's Statistics slice to
// annotate every line with its counters.
func NewTextVisitor(stats []instruction.Statistic) *TextVisitor {
	return &TextVisitor{Stats: stats}
}

func (t *TextVisitor) stat(ins *instruction.Instruction) (instruction.Statistic, bool) {
	if t.Stats == nil {
		return instruction.Statistic{}, false
	}
	return t.Stats[ins.Index], true
}

func (t *TextVisitor) addLine(ins *instruction.Instruction) {
	line := fmt.Sprintf("%4d %s", ins.Index, ins.Name)
	if st, ok := t.stat(ins); ok {
		line += fmt.Sprintf("   (*%d)", st.ItemCount)
	}
	t.lines = append(t.lines, line)
}

func (t *TextVisitor) addBranchComments(ins *instruction.Instruction) {
	trueLine := fmt.Sprintf("     # True  -> %d", ins.NextOnTrue)
	falseLine := fmt.Sprintf("     # False -> %d", ins.NextOnFalse)
	if st, ok := t.stat(ins); ok {
		trueLine += fmt.Sprintf("   (*%d)", st.SuccessCount)
		falseLine += fmt.Sprintf("   (*%d)", st.FailureCount)
	}
	t.lines = append(t.lines, trueLine, falseLine)
}

func (t *TextVisitor) EnterSubProgram(label string, hasLabel bool) {
	if hasLabel {
		t.lines = append(t.lines, fmt.Sprintf("DEF (%q)", label))
	}
}

func (t *TextVisitor) LeaveSubProgram(label string, hasLabel bool) {
	if hasLabel {
		t.lines = append(t.lines, fmt.Sprintf("END # %s", label))
		return
	}
	t.lines = append(t.lines, "END OF MAIN PROGRAM")
}

func (t *TextVisitor) VisitRule(ins *instruction.Instruction) { t.addLine(ins) }

func (t *TextVisitor) VisitBranch(ins *instruction.Instruction) {
	t.addLine(ins)
	t.addBranchComments(ins)
}

// VisitBranchRule renders exactly like VisitBranch: a branch_rule
// walks the graph with two edges the same way a branch does, and the
// listing format has no separate notation for it.
func (t *TextVisitor) VisitBranchRule(ins *instruction.Instruction) { t.VisitBranch(ins) }

func (t *TextVisitor) VisitReturn(ins *instruction.Instruction) { t.addLine(ins) }

// String joins the accumulated lines with "\n", no trailing newline.
func (t *TextVisitor) String() string {
	return strings.Join(t.lines, "\n")
}

var _ instruction.Visitor = (*TextVisitor)(nil)
