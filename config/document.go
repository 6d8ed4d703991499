// Package config loads and saves the canonical on-disk graph document:
// a JSON file listing nodes, connections, and free-form metadata.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/smallnest/streamdag/dagmodel"
)

// NodeDoc is one entry of the document's "nodes" array.
type NodeDoc struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Config   map[string]any `json:"config,omitempty"`
	Position *[2]float64    `json:"position,omitempty"`
	Enabled  *bool          `json:"enabled,omitempty"`
}

// ConnectionDoc is one entry of the document's "connections" array.
type ConnectionDoc struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// Document is the whole on-disk graph document. Nodes and Connections
// preserve the order they were parsed or constructed in, so load -> save
// round-trips the document structurally.
type Document struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Nodes       []NodeDoc         `json:"nodes"`
	Connections []ConnectionDoc   `json:"connections"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
}

// ConfigError wraps a failure to load or parse a graph document. It is
// fatal: both validate and run abort on it.
type ConfigError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error loading %q: %s: %v", e.Path, e.Reason, e.Cause)
	}
	return fmt.Sprintf("config error loading %q: %s", e.Path, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// Load reads and parses a graph document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: "read file", Cause: err}
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Path: path, Reason: "parse JSON", Cause: err}
	}
	return &doc, nil
}

// Save writes doc to path as indented JSON, preserving the node and
// connection ordering already present in doc.
func Save(doc *Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &ConfigError{Path: path, Reason: "marshal JSON", Cause: err}
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &ConfigError{Path: path, Reason: "write file", Cause: err}
	}
	return nil
}

func boolOrDefault(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// NodeSpecs converts the document's nodes into dagmodel.NodeSpec values,
// in document order.
func (d *Document) NodeSpecs() []dagmodel.NodeSpec {
	specs := make([]dagmodel.NodeSpec, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		spec := dagmodel.NodeSpec{
			ID:      n.ID,
			Type:    n.Type,
			Config:  n.Config,
			Enabled: boolOrDefault(n.Enabled, true),
		}
		if n.Position != nil {
			spec.Position = *n.Position
		}
		specs = append(specs, spec)
	}
	return specs
}

// EdgeSpecs converts the document's connections into dagmodel.EdgeSpec
// values, in document order. A malformed "from"/"to" reference (missing
// the "<node>.<port>" separator) surfaces as a ConfigError rather than a
// panic or a silently-dropped edge.
func (d *Document) EdgeSpecs() ([]dagmodel.EdgeSpec, error) {
	specs := make([]dagmodel.EdgeSpec, 0, len(d.Connections))
	for i, c := range d.Connections {
		fromNode, fromPort, err := splitRef(c.From)
		if err != nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("connection[%d].from: %v", i, err)}
		}
		toNode, toPort, err := splitRef(c.To)
		if err != nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("connection[%d].to: %v", i, err)}
		}
		specs = append(specs, dagmodel.EdgeSpec{
			FromNode: fromNode,
			FromPort: fromPort,
			ToNode:   toNode,
			ToPort:   toPort,
			Enabled:  boolOrDefault(c.Enabled, true),
		})
	}
	return specs, nil
}

func splitRef(ref string) (node, port string, err error) {
	idx := strings.LastIndex(ref, ".")
	if idx <= 0 || idx == len(ref)-1 {
		return "", "", fmt.Errorf("expected \"<node>.<port>\", got %q", ref)
	}
	return ref[:idx], ref[idx+1:], nil
}

// FromGraphSpecs builds a Document from already-built specs, in the order
// given. This is the inverse of NodeSpecs/EdgeSpecs and is how a dry-run
// or programmatically-constructed graph is written back to disk.
func FromGraphSpecs(name, version string, nodeSpecs []dagmodel.NodeSpec, edgeSpecs []dagmodel.EdgeSpec, metadata map[string]any) *Document {
	doc := &Document{Name: name, Version: version, Metadata: metadata}
	for _, n := range nodeSpecs {
		enabled := n.Enabled
		nd := NodeDoc{ID: n.ID, Type: n.Type, Config: n.Config, Enabled: &enabled}
		if n.Position != ([2]float64{}) {
			pos := n.Position
			nd.Position = &pos
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	for _, e := range edgeSpecs {
		enabled := e.Enabled
		doc.Connections = append(doc.Connections, ConnectionDoc{
			From:    e.FromNode + "." + e.FromPort,
			To:      e.ToNode + "." + e.ToPort,
			Enabled: &enabled,
		})
	}
	return doc
}
