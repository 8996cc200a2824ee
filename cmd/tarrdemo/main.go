// Command tarrdemo compiles the sample rule program and runs it over a
// batch of payloads, printing per-item results plus a final summary.
// It doubles as a way to inspect a compiled program's shape with
// -text/-dot and to round-trip its accumulated statistics through a
// YAML snapshot with -stats-out/-stats-in.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"github.com/wudi/tarr/internal/demoprogram"
	"github.com/wudi/tarr/version"
	"github.com/wudi/tarr/visitor"
	"github.com/wudi/tarr/vm"
)

var defaultBatch = []string{" 42 ", "hello", "   ", "7", "world", "-3"}

func main() {
	app := &cli.Command{
		Name:  "tarrdemo",
		Usage: "Compile and run the sample rule program over a batch of payloads",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "text",
				Usage: "Print the compiled program's text listing instead of running it",
			},
			&cli.BoolFlag{
				Name:  "dot",
				Usage: "Print the compiled program's dot graph instead of running it",
			},
			&cli.BoolFlag{
				Name:  "version",
				Usage: "Show version",
			},
			&cli.StringFlag{
				Name:  "stats-out",
				Usage: "Write the run's accumulated statistics as YAML to <file>",
			},
			&cli.StringFlag{
				Name:  "stats-in",
				Usage: "Merge a previously written statistics YAML snapshot from <file> before running",
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tarrdemo: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("version") {
		fmt.Println(version.Version())
		return nil
	}

	p, err := demoprogram.Build()
	if err != nil {
		return fmt.Errorf("building demo program: %w", err)
	}

	if cmd.Bool("text") {
		fmt.Println(visitor.ToText(p, false))
		return nil
	}
	if cmd.Bool("dot") {
		fmt.Println(visitor.ToDot(p, false))
		return nil
	}

	if in := cmd.String("stats-in"); in != "" {
		if err := mergeStatsFile(p, in); err != nil {
			return fmt.Errorf("merging stats from %s: %w", in, err)
		}
	}

	batchID := uuid.New()
	fmt.Printf("batch %s (fingerprint %s)\n", batchID, vm.Fingerprint([]byte(demoprogram.Source)))

	args := cmd.Args().Slice()
	payloads := defaultBatch
	if len(args) > 0 {
		payloads = args
	}

	for _, payload := range payloads {
		item := vm.NewItem(payload)
		flag, err := p.Run(item)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %q -> error: %v\n", payload, err)
			continue
		}
		fmt.Printf("  %q -> %v (flag=%v)\n", payload, item.Payload(), flag)
	}

	fmt.Println()
	for i, stat := range p.Statistics {
		fmt.Println(vm.SummaryLine(p.Instructions[i].Name, stat))
	}

	if out := cmd.String("stats-out"); out != "" {
		if err := writeStatsFile(p, out); err != nil {
			return fmt.Errorf("writing stats to %s: %w", out, err)
		}
	}

	return nil
}

func mergeStatsFile(p *vm.Program, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := vm.UnmarshalStats(f)
	if err != nil {
		return err
	}
	return p.MergeStatistics(records)
}

func writeStatsFile(p *vm.Program, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return vm.MarshalStats(f, p.SnapshotStatistics())
}
