// Command gen_scenarios regenerates the golden scenario corpus as a Go
// scenarioGoldens map of each scenario's rendered final stack; no test reads
// it. It is a dev-only tool: output goes to stdout or the file named by its
// first argument, scenarios run concurrently, and the generated source is
// piped through gofmt, under a shared deadline, before it is written out.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"time"

	"github.com/cao-lang/cao"
	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

var out io.WriteCloser = os.Stdout

func parseFlags() {
	flag.Parse()
	if args := flag.Args(); len(args) > 0 {
		f, err := os.Create(args[0])
		if err != nil {
			log.Fatalf("failed to create %v: %v", args[0], err)
		}
		out = f
	}
}

func main() {
	parseFlags()
	defer out.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	golden := make([]string, len(cao.Scenarios))
	if err := runScenarios(ctx, golden); err != nil {
		log.Fatalln(err)
	}

	eg, ctx := errgroup.WithContext(ctx)

	gofmt := exec.CommandContext(ctx, "gofmt")
	fmtPipe, err := gofmt.StdinPipe()
	if err != nil {
		log.Fatalln(err)
	}
	gofmt.Stdout = out
	gofmt.Stderr = os.Stderr

	eg.Go(func() error {
		if err := renderInto(fmtPipe, golden); err != nil {
			fmtPipe.Close()
			return err
		}
		return fmtPipe.Close()
	})
	eg.Go(gofmt.Run)

	if err := eg.Wait(); err != nil {
		log.Fatalln(err)
	}
}

// runScenarios evaluates every scenario concurrently and fills golden with
// each one's rendered final stack. Scenario evaluation does not observe ctx.
func runScenarios(ctx context.Context, golden []string) error {
	eg, _ := errgroup.WithContext(ctx)
	for i, sc := range cao.Scenarios {
		i, sc := i, sc
		eg.Go(func() error {
			var pre []cao.Value
			if sc.Name == "pattern_matching" {
				pre = []cao.Value{cao.SomeValue(cao.NatValue(42))}
			}
			vm, err := sc.Run(pre...)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", sc.Name, err)
			}
			golden[i] = cao.RenderStack(vm.Stack)
			return nil
		})
	}
	return eg.Wait()
}

// renderInto writes the generated Go source once golden has been fully
// populated by runScenarios.
func renderInto(w io.Writer, golden []string) error {
	var buf bytes.Buffer
	buf.WriteString("package cao\n\n")
	buf.WriteString("// Code generated by tools/gen_scenarios. DO NOT EDIT.\n\n")
	buf.WriteString("var scenarioGoldens = map[string]string{\n")
	for i, sc := range cao.Scenarios {
		fmt.Fprintf(&buf, "\t%q: %q,\n", sc.Name, golden[i])
	}
	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}
