// Command tarrrepl feeds payloads into the sample rule program one at a
// time. Attached to a terminal it runs as an interactive shell with
// line editing and history; piped, it reads one payload per line and
// prints results without any prompt decoration.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/wudi/tarr/internal/demoprogram"
	"github.com/wudi/tarr/vm"
)

func main() {
	p, err := demoprogram.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tarrrepl: building demo program: %v\n", err)
		os.Exit(1)
	}

	var runErr error
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		runErr = runInteractive(p)
	} else {
		runErr = runPiped(p)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "tarrrepl: %v\n", runErr)
		os.Exit(1)
	}

	fmt.Println()
	for i, stat := range p.Statistics {
		fmt.Println(vm.SummaryLine(p.Instructions[i].Name, stat))
	}
}

func runInteractive(p *vm.Program) error {
	rl, err := readline.New("tarr> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}
		evalLine(p, line)
	}
}

func runPiped(p *vm.Program) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		evalLine(p, line)
	}
	return scanner.Err()
}

func evalLine(p *vm.Program, line string) {
	item := vm.NewItem(line)
	flag, err := p.Run(item)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %q -> error: %v\n", line, err)
		return
	}
	fmt.Printf("  %q -> %v (flag=%v)\n", line, item.Payload(), flag)
}
