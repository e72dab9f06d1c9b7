package kzg

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ethereum/kzgwrap/engine"
)

// setupKey identifies the trusted setup in the load group.
const setupKey = "trusted-setup"

// entry is one loaded trusted setup. Entries are compared by pointer to tell
// whether the cache still holds the handle a caller saw failing.
type entry struct {
	ctx engine.Context
}

// contextManager owns the trusted setup context of one KZG instance. The
// context is loaded on first use and kept until the engine reports it
// invalid or a reset is forced.
type contextManager struct {
	backend engine.Backend
	path    string
	format  engine.Format

	current atomic.Pointer[entry]
	loads   singleflight.Group
}

func newContextManager(backend engine.Backend, path string, format engine.Format) *contextManager {
	return &contextManager{backend: backend, path: path, format: format}
}

// get returns the cached context, loading it first if there is none.
func (m *contextManager) get() (*entry, error) {
	if e := m.current.Load(); e != nil {
		return e, nil
	}
	return m.refresh(nil, "")
}

// refresh loads a new context unless the cache already holds one other than
// stale. A non-nil stale entry still in the cache is released first.
// Concurrent callers share a single load.
func (m *contextManager) refresh(stale *entry, reason string) (*entry, error) {
	return m.load(reason, func(cur *entry) bool { return cur == stale })
}

// reset discards whatever context is cached when the load starts and loads a
// new one.
func (m *contextManager) reset() (*entry, error) {
	return m.load("reset requested", func(*entry) bool { return true })
}

// load runs in the load group. discard decides, inside the group, whether
// the cached entry is replaced or returned as is.
func (m *contextManager) load(reason string, discard func(cur *entry) bool) (*entry, error) {
	v, err, _ := m.loads.Do(setupKey, func() (interface{}, error) {
		cur := m.current.Load()
		if cur != nil && !discard(cur) {
			return cur, nil
		}
		if cur != nil {
			log().Warn("Discarding trusted setup context",
				zap.String("backend", m.backend.Name()),
				zap.Uint64("generation", cur.ctx.Generation()),
				zap.String("reason", reason))
			m.current.CompareAndSwap(cur, nil)
			m.backend.Release(cur.ctx)
		}
		start := time.Now()
		ctx, err := m.backend.Load(m.path, m.format)
		if err != nil {
			log().Error("Failed to load trusted setup",
				zap.String("backend", m.backend.Name()),
				zap.Stringer("format", m.format),
				zap.String("path", m.path),
				zap.Error(err))
			return nil, &loadError{err: err}
		}
		e := &entry{ctx: ctx}
		m.current.Store(e)

		log().Info("Loaded trusted setup",
			zap.String("backend", m.backend.Name()),
			zap.Stringer("format", m.format),
			zap.String("path", m.path),
			zap.Uint64("generation", ctx.Generation()),
			zap.Duration("elapsed", time.Since(start)))
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry), nil
}

// close releases the cached context, if any.
func (m *contextManager) close() {
	if e := m.current.Swap(nil); e != nil {
		m.backend.Release(e.ctx)
	}
}
