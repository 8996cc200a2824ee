package visitor

import (
	"github.com/wudi/tarr/instruction"
	"github.com/wudi/tarr/vm"
)

// ToText renders p as the line-oriented listing format. withStatistics
// selects whether lines and branch comments carry "(*N)" counters.
func ToText(p *vm.Program, withStatistics bool) string {
	v := NewTextVisitor(statsOrNil(p, withStatistics))
	Walk(p, v)
	return v.String()
}

// ToDot renders p as a Graphviz dot description. withStatistics
// selects whether return node labels and branch edge labels carry
// their counters.
func ToDot(p *vm.Program, withStatistics bool) string {
	v := NewDotVisitor(p, statsOrNil(p, withStatistics))
	Walk(p, v)
	return v.Render()
}

func statsOrNil(p *vm.Program, withStatistics bool) []instruction.Statistic {
	if !withStatistics {
		return nil
	}
	return p.Statistics
}
