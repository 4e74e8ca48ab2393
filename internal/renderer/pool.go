package renderer

import "sync"

const (
	// defaultLineCapacity covers most single-line banners without growth
	defaultLineCapacity = 1024

	// Buffers larger than these are released instead of pooled, to keep
	// occasional huge renders from bloating the pool
	maxRetainLine     = 64 * 1024
	maxRetainResolved = 1024
)

// renderState holds the per-call scratch buffers: the resolved glyph per
// input cluster and the row accumulator. States are pooled because callers
// that banner many strings would otherwise churn these allocations.
type renderState struct {
	resolved [][]string
	line     []byte
}

var renderStatePool = sync.Pool{
	New: func() interface{} {
		return &renderState{
			resolved: make([][]string, 0, 64),
			line:     make([]byte, 0, defaultLineCapacity),
		}
	},
}

func acquireRenderState() *renderState {
	state := renderStatePool.Get().(*renderState)
	state.resolved = state.resolved[:0]
	state.line = state.line[:0]
	return state
}

func releaseRenderState(state *renderState) {
	if state == nil {
		return
	}

	// Drop glyph references so pooled states don't pin font data
	for i := range state.resolved {
		state.resolved[i] = nil
	}

	if cap(state.resolved) > maxRetainResolved {
		state.resolved = nil
	}
	if cap(state.line) > maxRetainLine {
		state.line = nil
	}

	renderStatePool.Put(state)
}
