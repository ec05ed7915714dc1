package compstate

import (
	"github.com/vrlcore/vrlcore/pkg/target"
	"github.com/vrlcore/vrlcore/pkg/value"
)

// ConstantPool deduplicates the value.Value and target.Path literals a
// Program references, handing out a stable index for each distinct
// constant. Both the VM (an index into its constants slice) and the JIT
// (an index into its out-of-band constant table, looked up through a
// runtime helper rather than embedded as raw bytes) share this pool, so a
// Program compiled once can be run through either backend without
// re-deduplicating constants.
type ConstantPool struct {
	values    []value.Value
	valueIdx  map[string]int
	paths     []target.Path
	pathIdx   map[string]int
}

func NewConstantPool() *ConstantPool {
	return &ConstantPool{
		valueIdx: make(map[string]int),
		pathIdx:  make(map[string]int),
	}
}

// AddValue returns the index for v, reusing an existing slot when an
// equal value.Value was already added.
func (p *ConstantPool) AddValue(v value.Value) int {
	key := v.String() + "|" + v.Kind().String()
	if idx, ok := p.valueIdx[key]; ok {
		return idx
	}
	idx := len(p.values)
	p.values = append(p.values, v)
	p.valueIdx[key] = idx
	return idx
}

func (p *ConstantPool) Value(idx int) value.Value { return p.values[idx] }
func (p *ConstantPool) Values() []value.Value      { return p.values }

// AddPath returns the index for a target.Path, deduplicated by its
// rendered form (paths carry no cyclic structure, so this is exact).
func (p *ConstantPool) AddPath(path target.Path) int {
	key := path.String()
	if idx, ok := p.pathIdx[key]; ok {
		return idx
	}
	idx := len(p.paths)
	p.paths = append(p.paths, path)
	p.pathIdx[key] = idx
	return idx
}

func (p *ConstantPool) Path(idx int) target.Path { return p.paths[idx] }
func (p *ConstantPool) Paths() []target.Path      { return p.paths }
