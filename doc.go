// Package streamdag implements a streaming DAG execution engine: a
// directed graph of typed processing nodes connected by bounded queues,
// with copy-on-branch packet semantics, a pluggable retry/error strategy,
// and an event bus carrying observability and metrics topics.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/smallnest/streamdag
//
// Basic example (building and running a graph programmatically):
//
//	package main
//
//	import (
//		"context"
//
//		"github.com/smallnest/streamdag/bus"
//		"github.com/smallnest/streamdag/config"
//		"github.com/smallnest/streamdag/dagmodel"
//		"github.com/smallnest/streamdag/exec"
//		"github.com/smallnest/streamdag/plugin"
//		"github.com/smallnest/streamdag/plugins"
//		"github.com/smallnest/streamdag/types"
//	)
//
//	func main() {
//		doc, _ := config.Load("graph.json")
//
//		typeReg := types.NewRegistry()
//		pluginReg := plugin.NewRegistry(nil)
//		plugins.RegisterAll(pluginReg)
//
//		edgeSpecs, _ := doc.EdgeSpecs()
//		g, _ := dagmodel.Build(doc.Name, doc.Version, doc.NodeSpecs(), edgeSpecs, pluginReg, typeReg)
//		_ = g.Validate(typeReg)
//
//		eventBus := bus.New(bus.DefaultConfig())
//		defer eventBus.Close()
//
//		executor := exec.New(g, eventBus, plugin.NewGlobalContext(nil), exec.DefaultConfig())
//		_ = executor.Run(context.Background())
//	}
//
// # Architecture
//
// The engine is layered:
//
//   - types: the Type Registry: port data type descriptors and
//     compatibility checks.
//   - bus: the Event Bus: async/sync pub-sub with wildcard topics and
//     per-topic throttling.
//   - plugin: the Plugin Registry and the INode contract third-party
//     processing nodes implement.
//   - dagmodel: the Graph Model: structural build, six-phase validation,
//     and topological ordering.
//   - packet: DataPacket and its copy-on-branch reference-counting
//     semantics.
//   - exec: the Streaming Executor: one task per node, bounded input
//     queues, fan-out routing, retry/error strategies, graceful shutdown.
//   - metrics: the Metrics Collector: per-node/per-graph counters,
//     rolling windows, periodic republish, optional SQLite history.
//   - config: the on-disk graph document format (load/save, round-trip
//     preserving).
//   - cmd/streamdag: the CLI (validate, run, dry-run).
//   - plugins: a handful of minimal example node implementations.
//
// # Writing a plugin
//
// Implement plugin.INode (GetMetadata, GetPorts, ValidateConfig,
// Initialize, Run, Cleanup, InputDataProcessedHook) and register a
// constructing Factory with a plugin.Registry before building any graph:
//
//	reg.MustRegister(plugin.Metadata{Type: "my_node", Name: "My Node"}, NewMyNode)
//
// # Configuration
//
// The canonical on-disk graph document is JSON (see config.Document);
// node and connection ordering is preserved across a load -> save cycle.
//
// # License
//
// This project is licensed under the MIT License - see the LICENSE file for details.
package streamdag // import "github.com/smallnest/streamdag"
