package jit

import "github.com/vrlcore/vrlcore/pkg/memory"

// stringArena keeps the backing bytes of every Bytes value.Value handed
// across the JIT ABI alive, so the *byte stored in a hostResolved stays
// valid without needing a pinned cgo handle per string. One arena backs
// a JITContext from GetJITFunction until Dispose: the encoded constants
// and the strings the host dispatch writes during every run accumulate
// in it, and it is reset only when Dispose returns it to arenaPool.
type stringArena struct {
	bufs [][]byte
}

func newStringArena() *stringArena {
	return &stringArena{}
}

// arenaPool amortizes the backing-slice allocations of bufs across the
// JITContexts a Runtime promotes and disposes over its lifetime: a
// Program that gets JIT-promoted, runs for a while, and is then
// replaced (recompiled source, evicted cache entry) returns its arena
// here instead of letting the GC reclaim it outright.
var arenaPool = memory.NewPool(newStringArena, func(a **stringArena) { (*a).reset() })

func (a *stringArena) intern(s string) (*byte, int64) {
	buf := []byte(s)
	a.bufs = append(a.bufs, buf)
	if len(buf) == 0 {
		return nil, 0
	}
	return &buf[0], int64(len(buf))
}

func (a *stringArena) read(ptr *byte, n int64) string {
	if ptr == nil || n == 0 {
		return ""
	}
	for _, buf := range a.bufs {
		if len(buf) > 0 && ptr == &buf[0] {
			return string(buf[:n])
		}
	}
	return ""
}

func (a *stringArena) reset() {
	a.bufs = a.bufs[:0]
}
