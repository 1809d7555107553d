package search

import "time"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, records int)
	IndexBuilt(titles, labels int)
	Finish(query string, hits int, elapsed time.Duration)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                   {}
func (n *noopMonitor) IndexBuilt(_, _ int)                     {}
func (n *noopMonitor) Finish(_ string, _ int, _ time.Duration) {}
