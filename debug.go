package trellis

import "time"

// debugStats holds per-frame timing and sync counters. Only logged when the
// editor's debug mode is on.
type debugStats struct {
	updateTime   time.Duration
	drawTime     time.Duration
	ticks        int
	fullSyncs    int
	partialSyncs int
	pickReads    int
}

// debugLog writes the current stats at debug level and resets the counters.
func (e *Editor) debugLog() {
	nodes, handles, edges := e.renderer.InstanceCounts()
	rs := e.renderer.stats
	e.logger.Debug("frame",
		"update", e.stats.updateTime,
		"draw", e.stats.drawTime,
		"full_syncs", e.stats.fullSyncs,
		"partial_syncs", e.stats.partialSyncs,
		"pick_reads", e.stats.pickReads,
		"nodes", nodes,
		"handles", handles,
		"edges", edges,
		"drawn_nodes", rs.drawnNodes,
		"drawn_edges", rs.drawnEdges,
		"culled_edges", rs.culledEdges,
		"tool", e.interactor.Tool().Kind().String(),
	)
	e.debugCheckGraph()
	e.stats.fullSyncs, e.stats.partialSyncs, e.stats.pickReads = 0, 0, 0
}

// debugCheckGraph logs a warning for every edge whose endpoints no longer
// resolve. It walks every edge, so it only runs with debug logging.
func (e *Editor) debugCheckGraph() int {
	stale := 0
	for _, edge := range e.graph.Edges() {
		if _, _, ok := e.graph.EdgeEndpoints(edge); !ok {
			stale++
		}
	}
	if stale > 0 {
		e.logger.Warn("graph has stale edges", "count", stale)
	}
	return stale
}
