package diagnostics

import (
	"fmt"
	"os"
	"path/filepath"
)

// DumpWriter writes the unoptimized and optimized LLVM IR for a compiled
// program to a configurable directory, the optimizer-dump side effect the
// JIT backend offers for inspecting what Builder.Compile/JITContext.Optimize
// produced. A zero-value DumpWriter (Dir == "") writes nothing.
type DumpWriter struct {
	Dir string
}

func NewDumpWriter(dir string) *DumpWriter {
	return &DumpWriter{Dir: dir}
}

func (w *DumpWriter) Enabled() bool { return w.Dir != "" }

// WriteIR writes one IR dump (stage is "unoptimized" or "optimized") for
// the named program under Dir, creating it if necessary.
func (w *DumpWriter) WriteIR(programName, stage, ir string) error {
	if !w.Enabled() {
		return nil
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("diagnostics: creating dump dir: %w", err)
	}
	suffix := "vrl.ll"
	if stage == "optimized" {
		suffix = "vrl.opt.ll"
	}
	path := filepath.Join(w.Dir, fmt.Sprintf("%s.%s", programName, suffix))
	if err := os.WriteFile(path, []byte(ir), 0o644); err != nil {
		return fmt.Errorf("diagnostics: writing %s: %w", path, err)
	}
	return nil
}
