package metrics

import (
	"syscall"

	"github.com/smallnest/streamdag/bus"
)

// DiskGuard polls free disk space on a path and folds the result into the
// Metrics Collector's periodic republish. DiskGuard does not own its own
// event loop: the Collector polls it once per tick and merges the reading
// into graph.metrics, so disk pressure shows up alongside node and graph
// counters. On a rising edge across a threshold it also publishes
// disk.low_space or disk.critical (see checkAndPublish).
type DiskGuard struct {
	Path               string
	WarningThreshold   float64
	CriticalThreshold  float64

	lastLevel diskLevel
}

type diskLevel int

const (
	diskLevelOK diskLevel = iota
	diskLevelWarning
	diskLevelCritical
)

// NewDiskGuard returns a DiskGuard watching path with the default
// thresholds (80% warning, 90% critical).
func NewDiskGuard(path string) *DiskGuard {
	return &DiskGuard{Path: path, WarningThreshold: 0.8, CriticalThreshold: 0.9}
}

// DiskStatus is one free-space sample.
type DiskStatus struct {
	TotalBytes   uint64
	UsedBytes    uint64
	FreeBytes    uint64
	UsedFraction float64
}

// Sample reads the current disk usage of g.Path via statfs.
func (g *DiskGuard) Sample() (DiskStatus, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(g.Path, &stat); err != nil {
		return DiskStatus{}, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	used := total - free
	var frac float64
	if total > 0 {
		frac = float64(used) / float64(total)
	}
	return DiskStatus{TotalBytes: total, UsedBytes: used, FreeBytes: free, UsedFraction: frac}, nil
}

// checkAndPublish samples the path and, on a rising edge across the
// warning or critical threshold, publishes disk.low_space or
// disk.critical. Alerting only on the edge keeps a sustained low-space
// condition from spamming the bus.
func (g *DiskGuard) checkAndPublish(b *bus.Bus, source string) DiskStatus {
	status, err := g.Sample()
	if err != nil {
		return DiskStatus{}
	}

	var level diskLevel
	switch {
	case status.UsedFraction >= g.CriticalThreshold:
		level = diskLevelCritical
	case status.UsedFraction >= g.WarningThreshold:
		level = diskLevelWarning
	default:
		level = diskLevelOK
	}

	if level > g.lastLevel {
		switch level {
		case diskLevelCritical:
			b.Publish("disk.critical", map[string]any{
				"percent": status.UsedFraction, "free_bytes": status.FreeBytes,
			}, source, bus.PriorityCritical)
		case diskLevelWarning:
			b.Publish("disk.low_space", map[string]any{
				"percent": status.UsedFraction, "free_bytes": status.FreeBytes,
			}, source, bus.PriorityHigh)
		}
	}
	g.lastLevel = level
	return status
}
