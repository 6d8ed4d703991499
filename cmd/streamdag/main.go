// Command streamdag is the CLI front-end for the streaming DAG execution
// engine: validate, run, and dry-run a graph document.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kataras/golog"

	"github.com/smallnest/streamdag/bus"
	"github.com/smallnest/streamdag/config"
	"github.com/smallnest/streamdag/dagmodel"
	"github.com/smallnest/streamdag/exec"
	"github.com/smallnest/streamdag/log"
	"github.com/smallnest/streamdag/metrics"
	"github.com/smallnest/streamdag/plugin"
	"github.com/smallnest/streamdag/plugins"
	"github.com/smallnest/streamdag/types"
)

// Exit codes: 0 clean stop, 1 configuration/validation error,
// 2 unhandled runtime error, 130 interrupted.
const (
	exitOK              = 0
	exitConfigError     = 1
	exitRuntimeError    = 2
	exitInterrupted     = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	log.SetDefaultLogger(log.NewGologLogger(golog.Default))

	if len(args) == 0 {
		printUsage()
		return exitConfigError
	}

	command, rest := args[0], args[1:]
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(rest); err != nil {
		return exitConfigError
	}
	if *verbose {
		log.SetDefaultLogger(func() log.Logger {
			l := log.NewGologLogger(golog.Default)
			l.SetLevel(log.LogLevelDebug)
			return l
		}())
	}
	if fs.NArg() != 1 {
		printUsage()
		return exitConfigError
	}
	path := fs.Arg(0)

	switch command {
	case "validate":
		return cmdValidate(path)
	case "dry-run":
		return cmdDryRun(path)
	case "run":
		return cmdRun(path)
	default:
		printUsage()
		return exitConfigError
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: streamdag <validate|run|dry-run> [-verbose] <graph.json>")
}

// buildGraph loads, registers plugins, and constructs+validates the graph
// named by path. On any failure it returns the ConfigError/
// GraphStructureError/TypeMismatchError (or other) error without printing
// it; the caller prints it to stderr as a human-readable message naming
// the offending node/port/edge and exits with code 1.
func buildGraph(path string) (*dagmodel.Graph, error) {
	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	typeReg := types.NewRegistry()
	pluginReg := plugin.NewRegistry(nil)
	plugins.RegisterAll(pluginReg)

	nodeSpecs := doc.NodeSpecs()
	edgeSpecs, err := doc.EdgeSpecs()
	if err != nil {
		return nil, err
	}

	g, err := dagmodel.Build(doc.Name, doc.Version, nodeSpecs, edgeSpecs, pluginReg, typeReg)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(typeReg); err != nil {
		return nil, err
	}
	return g, nil
}

func cmdValidate(path string) int {
	if _, err := buildGraph(path); err != nil {
		fmt.Fprintf(os.Stderr, "validation failed: %v\n", err)
		return exitConfigError
	}
	fmt.Println("graph is valid")
	return exitOK
}

func cmdDryRun(path string) int {
	g, err := buildGraph(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation failed: %v\n", err)
		return exitConfigError
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		fmt.Fprintf(os.Stderr, "topological sort failed: %v\n", err)
		return exitConfigError
	}
	fmt.Println("execution order:")
	for i, id := range order {
		fmt.Printf("  %d. %s\n", i+1, id)
	}
	return exitOK
}

func cmdRun(path string) int {
	g, err := buildGraph(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation failed: %v\n", err)
		return exitConfigError
	}

	eventBus := bus.New(bus.DefaultConfig())
	defer eventBus.Close()
	eventBus.Publish("sys.startup", map[string]any{"graph": g.Name}, "cli", bus.PriorityNormal)
	defer eventBus.Publish("sys.shutdown", map[string]any{"graph": g.Name}, "cli", bus.PriorityNormal)

	global := plugin.NewGlobalContext(map[string]any{})
	executor := exec.New(g, eventBus, global, exec.DefaultConfig())

	metricsCfg := metrics.DefaultConfig()
	metricsCfg.DiskGuard = metrics.NewDiskGuard(".")
	collector := metrics.New(eventBus, g.Name, metricsCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector.Start(ctx)
	defer collector.Stop()

	heartbeat := exec.NewHeartbeat(eventBus, g.Name, 0)
	heartbeat.Start(ctx)
	defer heartbeat.Stop()

	err = executor.Run(ctx)

	if ctx.Err() != nil {
		return exitInterrupted
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "execution failed: %v\n", err)
		return exitRuntimeError
	}
	return exitOK
}
