package vm

import (
	"encoding/binary"

	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/value"
)

// CallSite is one resolved function-call compiled into a Chunk: the
// function itself (resolved by name at compile time, so an unknown
// function is a compile diagnostic rather than a run-time surprise) and
// the fixed number of already-evaluated arguments the VM must pop for it.
type CallSite struct {
	Function *compstate.Function
	Arity    int
}

// Chunk accumulates bytecode for a single compiled Program. ast.Node's
// CompileToVM methods write to it through Emit/EmitJump/PatchJump; it
// never reads the AST back, keeping the dependency one-directional.
type Chunk struct {
	Code      []byte
	Constants *compstate.ConstantPool
	Calls     []CallSite
}

func NewChunk(constants *compstate.ConstantPool) *Chunk {
	return &Chunk{Constants: constants}
}

// EmitCall records a CallSite and emits OpCall referencing it.
func (c *Chunk) EmitCall(fn *compstate.Function, arity int) {
	idx := len(c.Calls)
	c.Calls = append(c.Calls, CallSite{Function: fn, Arity: arity})
	c.EmitOperand(OpCall, uint16(idx))
}

// Emit writes an opcode with no operand.
func (c *Chunk) Emit(op Opcode) {
	c.Code = append(c.Code, byte(op))
}

// EmitOperand writes an opcode followed by a 2-byte little-endian
// operand (a constant, local, target-path, or function index).
func (c *Chunk) EmitOperand(op Opcode, operand uint16) {
	c.Code = append(c.Code, byte(op))
	c.Code = binary.LittleEndian.AppendUint16(c.Code, operand)
}

// EmitConstant interns v in the constant pool and emits OpConstant for it.
func (c *Chunk) EmitConstant(v value.Value) {
	idx := c.Constants.AddValue(v)
	c.EmitOperand(OpConstant, uint16(idx))
}

// EmitJump writes op with a placeholder 0xFFFF operand and returns the
// offset of that operand, to be fixed up later by PatchJump. This is the
// same two-step emit/patch split the teacher's compiler and the original
// Rust compile_to_vm implementations use: a jump's target is not known
// until the code that follows it has been compiled.
func (c *Chunk) EmitJump(op Opcode) int {
	c.Code = append(c.Code, byte(op), 0xFF, 0xFF)
	return len(c.Code) - 2
}

// PatchJump overwrites the placeholder operand at offset (as returned by
// EmitJump) with the current end of the chunk, so the jump lands just
// past whatever was compiled since EmitJump was called.
func (c *Chunk) PatchJump(offset int) {
	target := len(c.Code)
	binary.LittleEndian.PutUint16(c.Code[offset:offset+2], uint16(target))
}

// Pos returns the current write position, used for backward jumps (loop
// heads) that don't need patching because the target is already known.
func (c *Chunk) Pos() int { return len(c.Code) }

// EmitLoop writes an unconditional jump back to a previously recorded
// Pos(), used by any node that compiles a loop construct.
func (c *Chunk) EmitLoop(loopStart int) {
	c.EmitOperand(OpJump, uint16(loopStart))
}
