package vm

// ----------------------------------------------------------------------------
// General information

// This section contains some general information about the VM intermediate language.
//
// We declare a shared 'Operation' interface for every macro operation available for the
// language and we define some other useful top-level struct such as Program and Module.
// Is important to note that a VM program can be composed of multiple translation units
// that can be also referenced as file or modules or also classes.

// A VM Program is the ordered sequence of translation units (one per .vm file) handed
// to the VM Translator. Order matters: without an explicit bootstrap sequence jumping
// to Sys.init, Hack execution falls through from ROM address 0 in concatenation order.
type Program []ModuleFile

// A ModuleFile pairs a single translation unit's name (its file stem, used by the
// Lowerer to namespace that module's Static segment symbols, e.g. "Foo.3") with its
// parsed sequence of operations.
type ModuleFile struct {
	Name   string
	Module Module
}

// A VM Module is just a linear list of VM operations/instructions
type Module []Operation

// Used to put together all operation in the VM language (Memory, Arithmetic, ... ops).
type Operation interface{}

// ----------------------------------------------------------------------------
// Memory Op

// In memory representation of a Memory operation for the VM language.
//
// In the VM intermediate language there are only two possible memory operation on the stack.
// We could either push a new value taken from the specified segment location on the stack's
// top or take the stack's top and saves its value at the specified segment location.
type MemoryOp struct {
	Operation OperationType // The type of operation, either 'push' or 'pop'
	Segment   SegmentType   // The named memory segment to use (this, that, temp, ...)
	Offset    uint16        // The specific location/offset inside of the memory segment
}

type OperationType string // Enum to manage the operation allowed for a MemoryOp

const (
	Push OperationType = "push"
	Pop  OperationType = "pop"
)

type SegmentType string // Enum to manage the segment accessible for a MemoryOp

const (
	Temp     SegmentType = "temp"     // Real segment used to store intermediate computations
	Constant SegmentType = "constant" // Virtual segment used to access numeric constant

	Local    SegmentType = "local"    // Real segment used to store local function variables
	Static   SegmentType = "static"   // Real segment used to store shared/static variables
	Argument SegmentType = "argument" // Real segment used to store function's argument

	This    SegmentType = "this"    // Virtual segment used to point to a specific memory location
	That    SegmentType = "that"    // Virtual segment used to point to a specific memory location
	Pointer SegmentType = "pointer" // Real segment w/ 2 location used to set the 'this' and 'that' pointers
)

// ----------------------------------------------------------------------------
// Arithmetic Op

// In memory representation of a Arithmetic operation for the VM language.
//
// In the VM intermediate language there are just a handful of operation available.
// In particular each operation acts directly on the top of the stack, of course we have both unary
// and binary operation, the specific management of each op will be handled in the codegen phase.
type ArithmeticOp struct{ Operation ArithOpType }

type ArithOpType string // Enum to manage the operation allowed for an ArithmeticOp

const (
	Eq ArithOpType = "eq" // Comparison operations
	Gt ArithOpType = "gt"
	Lt ArithOpType = "lt"

	Add ArithOpType = "add" // Arithmetic operations
	Sub ArithOpType = "sub"
	Neg ArithOpType = "neg"

	Not ArithOpType = "not" // Bitwise operations
	And ArithOpType = "and"
	Or  ArithOpType = "or"
)

// ----------------------------------------------------------------------------
// Branching Op

// In memory representation of a label declaration for the VM language.
//
// The VM spec scopes a label to the function it's declared in, so two different functions
// may reuse the same label name. The Lowerer does not namespace these by enclosing function
// when targeting Asm: it lowers the name verbatim, a long-standing quirk of this toolchain
// that callers relying on cross-function goto/label collisions should be aware of.
type LabelDeclaration struct{ Name string }

// In memory representation of a goto/if-goto statement for the VM language.
//
// 'Goto' unconditionally jumps to the named label; 'IfGoto' pops the stack's top and
// jumps only if that value is non-zero (i.e 'true', following the VM's boolean convention).
type GotoOp struct {
	Jump  JumpType
	Label string
}

type JumpType string // Enum to manage whether a GotoOp is conditional or not

const (
	Goto   JumpType = "goto"
	IfGoto JumpType = "if-goto"
)

// ----------------------------------------------------------------------------
// Function Op

// In memory representation of a function declaration for the VM language.
//
// Declares the entrypoint of a function along with the number of local variables it
// needs; per the calling convention those locals must be zero-initialized by the callee.
type FuncDecl struct {
	Name    string
	ArgsNum uint8 // Number of local variables to zero-initialize, despite the name
}

// In memory representation of a function call for the VM language.
//
// A call pushes a fresh return address and the caller's frame (LCL/ARG/THIS/THAT) before
// repositioning ARG and LCL for the callee and transferring control to it.
type FuncCallOp struct {
	Name    string
	ArgsNum uint8 // Number of arguments already pushed on the stack by the caller
}

// In memory representation of a return statement for the VM language.
//
// Restores the caller's frame, repositions the stack and return value, and jumps back
// to the return address saved by the corresponding FuncCallOp.
type ReturnOp struct{}
