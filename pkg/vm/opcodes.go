// Package vm implements the stack-based bytecode execution backend: a
// Chunk builder used by every ast.Node's CompileToVM method to emit
// instructions, and the VM itself that interprets a compiled Chunk.
package vm

// Opcode is a single bytecode instruction tag. The constants are grouped
// (constants/stack, locals, target, control flow, arithmetic/comparison,
// structural, termination) but numbered consecutively from 1, so
// inserting an opcode renumbers every opcode after it.
type Opcode byte

const (
	OpConstant Opcode = iota + 1
	OpPop
	OpDup

	OpGetLocal
	OpSetLocal

	OpGetTarget
	OpSetTarget

	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	OpJumpIfErr

	// OpErrIntoOk and OpUnwrapOk implement the runtime helper ABI's
	// err_into_ok and the matching "bind Null on error" unwrap,
	// respectively. Error-coalescing assignment is the only node that
	// emits either: it Dups the Resolved its Value compiles to so one
	// copy can be turned into the err binding and the other into the
	// primary binding, without re-evaluating Value and its side effects
	// twice.
	OpErrIntoOk
	OpUnwrapOk

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	OpNot
	OpNegate

	OpMakeArray
	OpMakeObject

	OpCall

	OpAbort
	OpReturn
)

var opcodeNames = map[Opcode]string{
	OpConstant:    "OP_CONSTANT",
	OpPop:         "OP_POP",
	OpDup:         "OP_DUP",
	OpGetLocal:    "OP_GET_LOCAL",
	OpSetLocal:    "OP_SET_LOCAL",
	OpGetTarget:   "OP_GET_TARGET",
	OpSetTarget:   "OP_SET_TARGET",
	OpJump:        "OP_JUMP",
	OpJumpIfFalse: "OP_JUMP_IF_FALSE",
	OpJumpIfTrue:  "OP_JUMP_IF_TRUE",
	OpJumpIfErr:   "OP_JUMP_IF_ERR",
	OpErrIntoOk:   "OP_ERR_INTO_OK",
	OpUnwrapOk:    "OP_UNWRAP_OK",
	OpAdd:         "OP_ADD",
	OpSub:         "OP_SUB",
	OpMul:         "OP_MUL",
	OpDiv:         "OP_DIV",
	OpMod:         "OP_MOD",
	OpEq:          "OP_EQ",
	OpNe:          "OP_NE",
	OpLt:          "OP_LT",
	OpLe:          "OP_LE",
	OpGt:          "OP_GT",
	OpGe:          "OP_GE",
	OpNot:         "OP_NOT",
	OpNegate:      "OP_NEGATE",
	OpMakeArray:   "OP_MAKE_ARRAY",
	OpMakeObject:  "OP_MAKE_OBJECT",
	OpCall:        "OP_CALL",
	OpAbort:       "OP_ABORT",
	OpReturn:      "OP_RETURN",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "OP_UNKNOWN"
}

// operandWidth reports how many bytes of operand follow each opcode.
// Every operand in this VM is a little-endian uint16, which caps jump
// targets and constant-pool/local/path indices at 65535 entries -
// generous for any program this execution core expects to run.
func (op Opcode) operandWidth() int {
	switch op {
	case OpConstant, OpGetLocal, OpSetLocal, OpGetTarget, OpSetTarget,
		OpJump, OpJumpIfFalse, OpJumpIfTrue, OpJumpIfErr,
		OpMakeArray, OpMakeObject, OpCall, OpAbort:
		return 2
	default:
		return 0
	}
}
