package plugins

import "github.com/smallnest/streamdag/plugin"

// RegisterAll registers every plugin in this package with reg. Callers
// (cmd/streamdag, tests) call this once before building any graph.
func RegisterAll(reg *plugin.Registry) {
	reg.MustRegister(plugin.Metadata{
		Type: "generator", Name: "Generator", Version: "1.0", Category: plugin.CategoryBasic,
	}, NewGenerator)
	reg.MustRegister(plugin.Metadata{
		Type: "passthrough", Name: "Passthrough", Version: "1.0", Category: plugin.CategoryBasic,
	}, NewPassthrough)
	reg.MustRegister(plugin.Metadata{
		Type: "counting_sink", Name: "CountingSink", Version: "1.0", Category: plugin.CategoryBasic,
	}, NewCountingSink)
}
