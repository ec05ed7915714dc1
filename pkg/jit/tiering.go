package jit

import "time"

// DefaultHotPathThreshold is the number of VM runs a Program accumulates
// before Promoter recommends switching it over to the compiled JIT path.
// Unlike the teacher's HTTP-route JIT (which walked several optimization
// tiers - baseline, optimized, highly optimized - and could deoptimize
// back down), this execution core only ever has two engines, and a
// native compile never needs to be undone: once a Program's IR has been
// verified it stays valid for the Program's lifetime. Promoter keeps the
// teacher's hot-path bookkeeping (Profiler) but drops the tier ladder,
// inlining oracle, and deoptimization tracker that existed to manage
// tiers this domain doesn't have.
const DefaultHotPathThreshold = 64

// Promoter decides when a Program, so far only run through the VM, is
// hot enough to justify paying the one-time cost of Builder.Compile and
// GetJITFunction. pkg/runtime.Runtime owns one Promoter per Runtime and
// consults it before every RunVM call.
type Promoter struct {
	profiler  *Profiler
	threshold int
}

func NewPromoter() *Promoter {
	return &Promoter{profiler: NewProfiler(), threshold: DefaultHotPathThreshold}
}

func NewPromoterWithThreshold(threshold int) *Promoter {
	p := NewPromoter()
	p.threshold = threshold
	return p
}

// RecordRun records one execution of the named Program's VM path.
func (p *Promoter) RecordRun(name string, d time.Duration) {
	p.profiler.RecordExecution(name, d)
}

// ShouldPromote reports whether name has been run often enough to
// switch it to the compiled JIT path.
func (p *Promoter) ShouldPromote(name string) bool {
	profile := p.profiler.GetProfile(name)
	return profile != nil && profile.ExecutionCount >= int64(p.threshold)
}

// HotPrograms returns every Program name that has crossed the
// threshold, most-executed first.
func (p *Promoter) HotPrograms() []string {
	return p.profiler.GetHotPaths(p.threshold)
}

func (p *Promoter) Profiler() *Profiler { return p.profiler }
