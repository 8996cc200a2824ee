// Package demoprogram builds the sample rule program cmd/tarrdemo and
// cmd/tarrrepl both run against caller-supplied payloads. It exists so
// the two binaries share one compiled shape instead of each hand-rolling
// their own.
package demoprogram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wudi/tarr/compiler"
	"github.com/wudi/tarr/instruction"
	"github.com/wudi/tarr/vm"
)

// Source is a human-readable stand-in for the program description this
// package builds directly from Go construction primitives rather than
// parsing from a separate DSL file, so there is no literal source text
// to hash otherwise. Source exists so Fingerprint has something
// concrete to hash for the demo, and changes whenever Build's shape
// changes.
const Source = "trim -> empty?(RETURN_FALSE) -> try-int -> fallback-string -> " +
	"is-int?(CALL shout | label-word) -> RETURN"

// Build compiles the demo program: trim whitespace, short-circuit on
// an empty result, try to parse the rest as an integer, and either
// hand an integer off to the "shout" sub-program or tag a non-integer
// as a word. It exercises DEF/CALL, a nested IF inside an ELSE arm, a
// standalone BRANCH_RULE with its fallback rule, and both RETURN and
// RETURN_FALSE against one realistic shape.
func Build() (*vm.Program, error) {
	return compiler.Compile([]compiler.Node{
		compiler.Def("shout"),
		compiler.Rule("format-shout", func(v any) any {
			return fmt.Sprintf("%d!", v.(int))
		}),
		compiler.EndDef(),

		compiler.Rule("trim", func(v any) any {
			return strings.TrimSpace(v.(string))
		}),
		compiler.If("empty?", func(v any) bool {
			return v.(string) == ""
		}),
		compiler.ReturnFalse(),
		compiler.Else(),
		compiler.BranchRule("try-int", func(v any) any {
			n, err := strconv.Atoi(v.(string))
			if err != nil {
				return instruction.NoProgress
			}
			return n
		}),
		compiler.Rule("fallback-string", func(v any) any { return v }),
		compiler.If("is-int?", func(v any) bool {
			_, ok := v.(int)
			return ok
		}),
		compiler.Call("shout"),
		compiler.Else(),
		compiler.Rule("label-word", func(v any) any {
			return fmt.Sprintf("word:%s", v.(string))
		}),
		compiler.EndIf(),
		compiler.EndIf(),
		compiler.Return(),
	})
}
