package vm

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/wudi/tarr/instruction"
)

// SummaryLine renders one instruction's statistic as a human-readable,
// comma-grouped one-liner, the kind of thing a demo binary or REPL
// prints after a batch finishes.
func SummaryLine(name string, stat instruction.Statistic) string {
	return fmt.Sprintf("%s: %s items, %s ok, %s failed, %s elapsed",
		name,
		humanize.Comma(stat.ItemCount),
		humanize.Comma(stat.SuccessCount),
		humanize.Comma(stat.FailureCount),
		stat.RunTime.String(),
	)
}
