package visitor

import (
	"fmt"
	"strings"

	"github.com/wudi/tarr/instruction"
	"github.com/wudi/tarr/vm"
)

// DotVisitor renders a Program as a Graphviz dot description: one
// subgraph cluster per sub-program plus an unlabelled cluster for
// main, node_<index> nodes, and edges. A rule/branch_rule/return edge
// carries no label; a branch emits two edges labelled "True"/"False".
// Edges crossing a cluster boundary (a CALL trampoline into a
// sub-program's entry, a sub-program's RETURN trampoline back to the
// instruction after the CALL) are held back and emitted once after
// every cluster has closed, matching the compound=true convention.
type DotVisitor struct {
	Stats []instruction.Statistic

	clusterOf map[int]string
	subLabels []string

	clusters     map[string][]string
	interCluster []string
}

// NewDotVisitor returns a DotVisitor for p. Pass nil Stats for the
// statistics-free rendering.
func NewDotVisitor(p *vm.Program, stats []instruction.Statistic) *DotVisitor {
	clusterOf := make(map[int]string, len(p.Instructions))
	subLabels := make([]string, 0, len(p.SubPrograms))
	for _, sp := range p.SubPrograms {
		subLabels = append(subLabels, sp.Label)
		for i := sp.Entry; i < sp.End; i++ {
			clusterOf[i] = sp.Label
		}
	}
	return &DotVisitor{
		Stats:     stats,
		clusterOf: clusterOf,
		subLabels: subLabels,
		clusters:  map[string][]string{},
	}
}

func (d *DotVisitor) stat(ins *instruction.Instruction) (instruction.Statistic, bool) {
	if d.Stats == nil {
		return instruction.Statistic{}, false
	}
	return d.Stats[ins.Index], true
}

// cluster reports the label of the cluster instruction idx belongs
// to, "" meaning main.
func (d *DotVisitor) cluster(idx int) string {
	return d.clusterOf[idx]
}

func (d *DotVisitor) emitNode(ins *instruction.Instruction, label string) {
	cluster := d.cluster(ins.Index)
	d.clusters[cluster] = append(d.clusters[cluster], fmt.Sprintf("node_%d [label=%q];", ins.Index, label))
}

func (d *DotVisitor) emitEdge(from, to int, label string) {
	line := fmt.Sprintf("node_%d -> node_%d", from, to)
	if label != "" {
		line += fmt.Sprintf(" [label=%q]", label)
	}
	line += ";"

	fromCluster, toCluster := d.cluster(from), d.cluster(to)
	if fromCluster == toCluster {
		d.clusters[fromCluster] = append(d.clusters[fromCluster], line)
		return
	}
	d.interCluster = append(d.interCluster, line)
}

func (d *DotVisitor) EnterSubProgram(label string, hasLabel bool) {}
func (d *DotVisitor) LeaveSubProgram(label string, hasLabel bool) {}

func (d *DotVisitor) VisitRule(ins *instruction.Instruction) {
	d.emitNode(ins, ins.Name)
	d.emitEdge(ins.Index, ins.NextOnTrue, "")
}

func (d *DotVisitor) VisitBranch(ins *instruction.Instruction) {
	d.emitNode(ins, ins.Name)
	trueLabel, falseLabel := "True", "False"
	if st, ok := d.stat(ins); ok {
		trueLabel = fmt.Sprintf("True: %d", st.SuccessCount)
		falseLabel = fmt.Sprintf("False: %d", st.FailureCount)
	}
	d.emitEdge(ins.Index, ins.NextOnTrue, trueLabel)
	d.emitEdge(ins.Index, ins.NextOnFalse, falseLabel)
}

// VisitBranchRule renders like VisitRule: a branch_rule's two edges
// are always equal (the construction primitive marks both pending
// together), so a single unlabelled edge loses nothing, and the dot
// format groups branch_rule with rule/return rather than branch.
func (d *DotVisitor) VisitBranchRule(ins *instruction.Instruction) {
	d.emitNode(ins, ins.Name)
	d.emitEdge(ins.Index, ins.NextOnTrue, "")
}

func (d *DotVisitor) VisitReturn(ins *instruction.Instruction) {
	label := ins.Name
	if st, ok := d.stat(ins); ok {
		label = fmt.Sprintf("%s: %d", ins.Name, st.ItemCount)
	}
	d.emitNode(ins, label)
}

// Render assembles the final dot source: header, main's cluster, each
// named sub-program's cluster in table order, then the inter-cluster
// edge bucket, closed by the graph's own brace.
func (d *DotVisitor) Render() string {
	var b strings.Builder
	b.WriteString("digraph {\n")
	b.WriteString("compound = true;\n")

	b.WriteString("subgraph cluster_main {\n")
	for _, line := range d.clusters[""] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("}\n")

	for _, label := range d.subLabels {
		b.WriteString(fmt.Sprintf("subgraph cluster_%s {\n", label))
		for _, line := range d.clusters[label] {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("}\n")
	}

	for _, line := range d.interCluster {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("}")
	return b.String()
}

var _ instruction.Visitor = (*DotVisitor)(nil)
