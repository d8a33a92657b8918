package canopy

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger creates the logger a chart uses when none is supplied.
// Timestamps are formatted as "HH:MM:SS.ms" and records carry the
// "canopy" prefix.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Prefix:          "canopy",
		Level:           level,
	})
}

// defaultLogger is shared by charts, scenes and animations created without
// an explicit logger.
var defaultLogger = NewLogger(os.Stderr, log.WarnLevel)

func loggerOr(l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	return defaultLogger
}

// guard runs fn, converting a panic into an error so a failing
// implementation cannot unwind past the lifecycle boundary.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("panic: %w", e)
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// debugStats holds per-frame timing and command metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	traverseTime time.Duration
	sortTime     time.Duration
	commandCount int
	nodeCount    int
}

// debugLog writes timing and command stats at debug level.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	s.log.Debug("frame",
		"traverse", stats.traverseTime,
		"sort", stats.sortTime,
		"total", stats.traverseTime+stats.sortTime,
		"commands", stats.commandCount,
		"nodes", stats.nodeCount)
}

// debugCheckDisposed panics with a descriptive message when a disposed node
// is used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("canopy debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugMaxTreeDepth is the depth past which a warning is logged.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		defaultLogger.Warn("tree depth exceeds threshold", "depth", depth, "max", debugMaxTreeDepth, "node", n.Name)
	}
}

// debugMaxChildCount is the child count past which a warning is logged.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		defaultLogger.Warn("node has too many children", "node", n.Name, "children", len(n.children), "max", debugMaxChildCount)
	}
}
