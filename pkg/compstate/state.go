package compstate

// CompileError is a single diagnostic raised while lowering a Program.
// pkg/diagnostics formats these for the optimizer-dump side effect; this
// package only needs to collect them.
type CompileError struct {
	Message string
	Line    int
	Column  int
}

func (e *CompileError) Error() string { return e.Message }

// State is threaded through every Node.CompileToVM/EmitLLVM call. It is
// always passed by reference (never copied), matching the design note
// that the AST never holds a back-pointer to it: ownership flows one
// direction, from caller down into each node's lowering method.
type State struct {
	Symbols   *SymbolTable
	Constants *ConstantPool
	Functions *FunctionRegistry
	errors    []*CompileError
}

func NewState(functions *FunctionRegistry) *State {
	return &State{
		Symbols:   NewGlobalSymbolTable(),
		Constants: NewConstantPool(),
		Functions: functions,
	}
}

func (s *State) AddError(err *CompileError) {
	s.errors = append(s.errors, err)
}

func (s *State) Errors() []*CompileError { return s.errors }

func (s *State) HasErrors() bool { return len(s.errors) > 0 }
