// Package sqlitesink provides optional SQLite-backed history for the
// Metrics Collector: a file-backed, zero-configuration sink for the
// collector's periodic snapshots. Rows are append-only observability
// history; the engine never reads them back.
package sqlitesink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smallnest/streamdag/metrics"
)

// Sink persists node.performance and graph.throughput snapshots into a
// SQLite database for later inspection.
type Sink struct {
	db *sql.DB
}

// Options configures a Sink.
type Options struct {
	// Path is the database file path, or ":memory:" for a volatile store.
	Path string
}

// Open creates (or attaches to) the sink's database and ensures its
// schema exists.
func Open(opts Options) (*Sink, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlitesink: open: %w", err)
	}

	s := &Sink{db: db}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS node_performance (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			node_id TEXT NOT NULL,
			recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			payload TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_node_performance_node_id ON node_performance (node_id);

		CREATE TABLE IF NOT EXISTS graph_throughput (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			graph TEXT NOT NULL,
			recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			payload TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_graph_throughput_graph ON graph_throughput (graph);
	`)
	if err != nil {
		return fmt.Errorf("sqlitesink: init schema: %w", err)
	}
	return nil
}

// RecordNodePerformance appends one node.performance snapshot.
func (s *Sink) RecordNodePerformance(ctx context.Context, p metrics.NodePerformance) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("sqlitesink: marshal node performance: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO node_performance (node_id, payload) VALUES (?, ?)`,
		p.NodeID, string(payload))
	if err != nil {
		return fmt.Errorf("sqlitesink: insert node performance: %w", err)
	}
	return nil
}

// RecordGraphThroughput appends one graph.throughput snapshot.
func (s *Sink) RecordGraphThroughput(ctx context.Context, g metrics.GraphThroughput) error {
	payload, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("sqlitesink: marshal graph throughput: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO graph_throughput (graph, payload) VALUES (?, ?)`,
		g.Graph, string(payload))
	if err != nil {
		return fmt.Errorf("sqlitesink: insert graph throughput: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Sink) Close() error {
	return s.db.Close()
}
