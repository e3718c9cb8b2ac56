package vm

import (
	"fmt"

	"go.n2tcore.dev/toolchain/pkg/asm"
)

// segmentBase maps the indirectly-addressed segments to the Asm built-in register
// that holds their base address (constant/pointer/temp/static are handled separately
// below, they don't go through a base+offset indirection).
var segmentBase = map[SegmentType]string{
	Local:    "LCL",
	Argument: "ARG",
	This:     "THIS",
	That:     "THAT",
}

// ----------------------------------------------------------------------------
// Vm Lowerer

// The Lowerer takes a 'vm.Program' (one or more translation units) and produces a
// single, concatenated 'asm.Program' implementing the VM's stack machine semantics
// and calling convention on top of the Hack architecture.
//
// Modules are lowered in the order they appear in the Program; within each module the
// Lowerer tracks the enclosing function (to name unique call-site return labels) and
// the module's own name (to namespace that file's Static segment symbols), matching
// the nand2tetris convention of one Static segment per source file.
//
// Per the Vm spec, label declarations and goto/if-goto targets are lowered verbatim,
// without namespacing them to the enclosing function — this mirrors a real Hack VM
// Translator quirk (two functions reusing the same label name collide) that we inherit
// rather than silently fix, since fixing it would change observable .asm output for
// otherwise-valid VM programs that rely on implicit global label resolution.
type Lowerer struct {
	program Program

	currentModule   string
	currentFunction string

	cmpSeq    int            // Monotonic counter for eq/gt/lt comparison labels
	returnSeq map[string]int // Per-caller monotonic counter for call return-site labels
}

// Initializes and returns to the caller a brand new 'Lowerer' struct.
// Requires the argument Program 'p' to be non-nil.
func NewLowerer(p Program) Lowerer {
	return Lowerer{program: p, returnSeq: map[string]int{}}
}

// Triggers the lowering process over every module in the Program, in order, and
// concatenates their resulting Asm statements into a single 'asm.Program'.
func (l *Lowerer) Lowerer() (asm.Program, error) {
	if len(l.program) == 0 {
		return nil, fmt.Errorf("the given 'program' is empty")
	}

	out := asm.Program{}

	for _, file := range l.program {
		l.currentModule, l.currentFunction = file.Name, ""

		for _, operation := range file.Module {
			var lowered []asm.Statement
			var err error

			switch op := operation.(type) {
			case MemoryOp:
				lowered, err = l.lowerMemoryOp(op)
			case ArithmeticOp:
				lowered, err = l.lowerArithmeticOp(op)
			case LabelDeclaration:
				lowered, err = l.lowerLabelDecl(op)
			case GotoOp:
				lowered, err = l.lowerGotoOp(op)
			case FuncDecl:
				lowered, err = l.lowerFuncDecl(op)
			case FuncCallOp:
				lowered, err = l.lowerFuncCall(op)
			case ReturnOp:
				lowered, err = l.lowerReturnOp(op)
			default:
				err = fmt.Errorf("unrecognized operation '%T' in module '%s'", operation, file.Name)
			}

			if err != nil {
				return nil, err
			}
			out = append(out, lowered...)
		}
	}

	return out, nil
}

// ----------------------------------------------------------------------------
// Stack helpers

// pushD appends the statements that push the current value of the D register onto
// the stack, advancing the Stack Pointer by one.
func pushD() []asm.Statement {
	return []asm.Statement{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "M+1"},
	}
}

// popD appends the statements that pop the stack's top into the D register, receding
// the Stack Pointer by one. The popped address is left in A.
func popD() []asm.Statement {
	return []asm.Statement{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
	}
}

// ----------------------------------------------------------------------------
// Memory Op

// Specialized function to convert a 'vm.MemoryOp' to its Asm statement(s).
func (l *Lowerer) lowerMemoryOp(op MemoryOp) ([]asm.Statement, error) {
	switch op.Operation {
	case Push:
		return l.lowerPush(op.Segment, op.Offset)
	case Pop:
		return l.lowerPop(op.Segment, op.Offset)
	default:
		return nil, fmt.Errorf("unrecognized memory operation '%s'", op.Operation)
	}
}

func (l *Lowerer) lowerPush(segment SegmentType, offset uint16) ([]asm.Statement, error) {
	switch segment {
	case Constant:
		return append([]asm.Statement{
			asm.AInstruction{Location: fmt.Sprint(offset)},
			asm.CInstruction{Dest: "D", Comp: "A"},
		}, pushD()...), nil

	case Local, Argument, This, That:
		return append([]asm.Statement{
			asm.AInstruction{Location: segmentBase[segment]},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.AInstruction{Location: fmt.Sprint(offset)},
			asm.CInstruction{Dest: "A", Comp: "D+A"},
			asm.CInstruction{Dest: "D", Comp: "M"},
		}, pushD()...), nil

	case Pointer:
		loc, err := pointerLocation(offset)
		if err != nil {
			return nil, err
		}
		return append([]asm.Statement{
			asm.AInstruction{Location: loc},
			asm.CInstruction{Dest: "D", Comp: "M"},
		}, pushD()...), nil

	case Temp:
		addr, err := tempAddress(offset)
		if err != nil {
			return nil, err
		}
		return append([]asm.Statement{
			asm.AInstruction{Location: fmt.Sprint(addr)},
			asm.CInstruction{Dest: "D", Comp: "M"},
		}, pushD()...), nil

	case Static:
		return append([]asm.Statement{
			asm.AInstruction{Location: l.staticSymbol(offset)},
			asm.CInstruction{Dest: "D", Comp: "M"},
		}, pushD()...), nil

	default:
		return nil, fmt.Errorf("unrecognized segment '%s'", segment)
	}
}

func (l *Lowerer) lowerPop(segment SegmentType, offset uint16) ([]asm.Statement, error) {
	switch segment {
	case Constant:
		return nil, fmt.Errorf("cannot pop into the 'constant' segment")

	case Local, Argument, This, That:
		out := []asm.Statement{
			asm.AInstruction{Location: segmentBase[segment]},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.AInstruction{Location: fmt.Sprint(offset)},
			asm.CInstruction{Dest: "D", Comp: "D+A"},
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "M", Comp: "D"},
		}
		out = append(out, popD()...)
		out = append(out,
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "A", Comp: "M"},
			asm.CInstruction{Dest: "M", Comp: "D"},
		)
		return out, nil

	case Pointer:
		loc, err := pointerLocation(offset)
		if err != nil {
			return nil, err
		}
		out := popD()
		return append(out, asm.AInstruction{Location: loc}, asm.CInstruction{Dest: "M", Comp: "D"}), nil

	case Temp:
		addr, err := tempAddress(offset)
		if err != nil {
			return nil, err
		}
		out := popD()
		return append(out, asm.AInstruction{Location: fmt.Sprint(addr)}, asm.CInstruction{Dest: "M", Comp: "D"}), nil

	case Static:
		out := popD()
		return append(out, asm.AInstruction{Location: l.staticSymbol(offset)}, asm.CInstruction{Dest: "M", Comp: "D"}), nil

	default:
		return nil, fmt.Errorf("unrecognized segment '%s'", segment)
	}
}

func (l *Lowerer) staticSymbol(offset uint16) string {
	return fmt.Sprintf("%s.%d", l.currentModule, offset)
}

func pointerLocation(offset uint16) (string, error) {
	switch offset {
	case 0:
		return "THIS", nil
	case 1:
		return "THAT", nil
	default:
		return "", fmt.Errorf("invalid 'pointer' offset, got %d", offset)
	}
}

func tempAddress(offset uint16) (uint16, error) {
	if offset > 7 {
		return 0, fmt.Errorf("invalid 'temp' offset, got %d", offset)
	}
	return 5 + offset, nil
}

// ----------------------------------------------------------------------------
// Arithmetic Op

// Specialized function to convert a 'vm.ArithmeticOp' to its Asm statement(s).
func (l *Lowerer) lowerArithmeticOp(op ArithmeticOp) ([]asm.Statement, error) {
	switch op.Operation {
	case Add, Sub, And, Or:
		return l.lowerBinaryOp(op.Operation), nil
	case Neg, Not:
		return l.lowerUnaryOp(op.Operation), nil
	case Eq, Gt, Lt:
		return l.lowerComparisonOp(op.Operation), nil
	default:
		return nil, fmt.Errorf("unrecognized arithmetic operation '%s'", op.Operation)
	}
}

func (l *Lowerer) lowerBinaryOp(op ArithOpType) []asm.Statement {
	comp := map[ArithOpType]string{Add: "D+M", Sub: "M-D", And: "D&M", Or: "D|M"}[op]
	return []asm.Statement{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.CInstruction{Dest: "A", Comp: "A-1"},
		asm.CInstruction{Dest: "M", Comp: comp},
	}
}

func (l *Lowerer) lowerUnaryOp(op ArithOpType) []asm.Statement {
	comp := map[ArithOpType]string{Neg: "-M", Not: "!M"}[op]
	return []asm.Statement{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "A", Comp: "M-1"},
		asm.CInstruction{Dest: "M", Comp: comp},
	}
}

func (l *Lowerer) lowerComparisonOp(op ArithOpType) []asm.Statement {
	jump := map[ArithOpType]string{Eq: "JEQ", Gt: "JGT", Lt: "JLT"}[op]
	end := fmt.Sprintf("VM.CMP.END.%d", l.cmpSeq)
	l.cmpSeq++

	return []asm.Statement{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.CInstruction{Dest: "A", Comp: "A-1"},
		asm.CInstruction{Dest: "D", Comp: "M-D"},
		asm.CInstruction{Dest: "M", Comp: "-1"},
		asm.AInstruction{Location: end},
		asm.CInstruction{Comp: "D", Jump: jump},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "A", Comp: "M-1"},
		asm.CInstruction{Dest: "M", Comp: "0"},
		asm.LabelDecl{Name: end},
	}
}

// ----------------------------------------------------------------------------
// Branching Op

// Specialized function to convert a 'vm.LabelDeclaration' to its Asm statement.
func (l *Lowerer) lowerLabelDecl(op LabelDeclaration) ([]asm.Statement, error) {
	if op.Name == "" {
		return nil, fmt.Errorf("label declaration is missing its identifier")
	}
	return []asm.Statement{asm.LabelDecl{Name: op.Name}}, nil
}

// Specialized function to convert a 'vm.GotoOp' to its Asm statement(s).
func (l *Lowerer) lowerGotoOp(op GotoOp) ([]asm.Statement, error) {
	if op.Label == "" {
		return nil, fmt.Errorf("goto operation is missing its target label")
	}

	switch op.Jump {
	case Goto:
		return []asm.Statement{
			asm.AInstruction{Location: op.Label},
			asm.CInstruction{Comp: "0", Jump: "JMP"},
		}, nil
	case IfGoto:
		out := popD()
		return append(out,
			asm.AInstruction{Location: op.Label},
			asm.CInstruction{Comp: "D", Jump: "JNE"},
		), nil
	default:
		return nil, fmt.Errorf("unrecognized jump type '%s'", op.Jump)
	}
}

// ----------------------------------------------------------------------------
// Function Op

// Specialized function to convert a 'vm.FuncDecl' to its Asm statement(s).
//
// Besides declaring the function's entrypoint label, the calling convention requires
// the callee to zero-initialize its 'ArgsNum' local variables before executing its body.
func (l *Lowerer) lowerFuncDecl(op FuncDecl) ([]asm.Statement, error) {
	if op.Name == "" {
		return nil, fmt.Errorf("function declaration is missing its name")
	}
	l.currentFunction = op.Name

	out := []asm.Statement{asm.LabelDecl{Name: op.Name}}
	for i := uint8(0); i < op.ArgsNum; i++ {
		out = append(out, asm.AInstruction{Location: "0"}, asm.CInstruction{Dest: "D", Comp: "A"})
		out = append(out, pushD()...)
	}
	return out, nil
}

// Specialized function to convert a 'vm.FuncCallOp' to its Asm statement(s).
//
// Saves a fresh return address and the caller's frame (LCL/ARG/THIS/THAT), then
// repositions ARG/LCL for the callee before jumping to it; execution resumes at the
// freshly-declared return label once the callee's ReturnOp runs.
func (l *Lowerer) lowerFuncCall(op FuncCallOp) ([]asm.Statement, error) {
	if op.Name == "" {
		return nil, fmt.Errorf("function call is missing its target name")
	}

	caller := l.currentFunction
	if caller == "" {
		caller = l.currentModule
	}
	returnLabel := fmt.Sprintf("%s$ret.%d", caller, l.returnSeq[caller])
	l.returnSeq[caller]++

	out := []asm.Statement{
		asm.AInstruction{Location: returnLabel},
		asm.CInstruction{Dest: "D", Comp: "A"},
	}
	out = append(out, pushD()...)
	for _, saved := range []string{"LCL", "ARG", "THIS", "THAT"} {
		out = append(out, asm.AInstruction{Location: saved}, asm.CInstruction{Dest: "D", Comp: "M"})
		out = append(out, pushD()...)
	}

	out = append(out,
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: fmt.Sprint(5 + op.ArgsNum)},
		asm.CInstruction{Dest: "D", Comp: "D-A"},
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "M", Comp: "D"},

		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Dest: "M", Comp: "D"},

		asm.AInstruction{Location: op.Name},
		asm.CInstruction{Comp: "0", Jump: "JMP"},

		asm.LabelDecl{Name: returnLabel},
	)
	return out, nil
}

// Specialized function to convert a 'vm.ReturnOp' to its Asm statement(s).
//
// Restores the caller's frame from the saved values below the callee's locals, moves
// the return value to where the caller expects its single argument to have been, resets
// the Stack Pointer and jumps back to the return address saved by the matching call.
func (l *Lowerer) lowerReturnOp(ReturnOp) ([]asm.Statement, error) {
	out := []asm.Statement{
		// R13 = frame = LCL
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "R13"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		// R14 = retAddr = *(frame-5)
		asm.AInstruction{Location: "5"},
		asm.CInstruction{Dest: "A", Comp: "D-A"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Dest: "M", Comp: "D"},
	}
	// *ARG = pop()
	out = append(out, popD()...)
	out = append(out,
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		// SP = ARG+1
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "D", Comp: "M+1"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "D"},
	)
	// THAT = *(frame-1), THIS = *(frame-2), ARG = *(frame-3), LCL = *(frame-4)
	for _, dest := range []string{"THAT", "THIS", "ARG", "LCL"} {
		out = append(out,
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "AM", Comp: "M-1"},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.AInstruction{Location: dest},
			asm.CInstruction{Dest: "M", Comp: "D"},
		)
	}
	// goto retAddr
	out = append(out,
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Comp: "0", Jump: "JMP"},
	)
	return out, nil
}
