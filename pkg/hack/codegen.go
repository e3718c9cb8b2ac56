package hack

import (
	"fmt"
	"strconv"
)

// ----------------------------------------------------------------------------
// Translation tables

// This section contains the translation tables cornerstone of the codegen phase.
//
// This table provides a simple yet effective way to resolve everything built-in
// in the Hack specification. Notably we have the following tables defined:
//   - 'BuiltInTable': Specifies how to translate BuiltIn labels in A instructions to their address
//   - 'CompTable': Specifies how to translate the 'Comp' opcode in C instructions
//   - 'DestTable': Specifies how to translate the 'Dest' opcode in C instructions
//   - 'JumpTable': Specifies how to translate the 'Jump' opcode in C instructions

var (
	BuiltInTable = map[string]uint16{
		// Virtual Machine specific aliases (see project 7)
		"SP": 0, "LCL": 1, "ARG": 2, "THIS": 3, "THAT": 4,
		// Named general purpose registers
		"R0": 0, "R1": 1, "R2": 2, "R3": 3, "R4": 4, "R5": 5,
		"R6": 6, "R7": 7, "R8": 8, "R9": 9, "R10": 10, "R11": 11,
		"R12": 12, "R13": 13, "R14": 14, "R15": 15,
		// Memory mapped I/O locations
		"SCREEN": 16384, "KBD": 24576,
	}

	CompTable = map[string]uint16{
		// - Constants and identities
		"0": 0b0101010, "1": 0b0111111, "-1": 0b0111010,
		"D": 0b0001100, "A": 0b0110000, "M": 0b1110000,
		// - Binary and numerical negations
		"!D": 0b0001101, "!A": 0b0110001, "!M": 0b1110001,
		"-D": 0b0001111, "-A": 0b0110011, "-M": 0b1110011,
		// - Increment and decrement operations
		"D+1": 0b0011111, "A+1": 0b0110111, "M+1": 0b1110111,
		"D-1": 0b0001110, "A-1": 0b0110010, "M-1": 0b1110010,
		// - Register with register operations
		"D+A": 0b0000010, "D+M": 0b1000010,
		"D-A": 0b0010011, "D-M": 0b1010011,
		"A-D": 0b0000111, "M-D": 0b1000111,
		// - Bitwise register with register operations
		"D&A": 0b0000000, "D&M": 0b1000000,
		"D|A": 0b0010101, "D|M": 0b1010101,
	}

	DestTable = map[string]uint16{
		"": 0b000, "M": 0b001, "D": 0b010, "A": 0b100,
		"MD": 0b011, "AM": 0b101, "AD": 0b110, "AMD": 0b111,
	}

	JumpTable = map[string]uint16{
		"": 0b000, "JGT": 0b001, "JEQ": 0b010, "JGE": 0b011,
		"JLT": 0b100, "JNE": 0b101, "JLE": 0b110, "JMP": 0b111,
	}
)

// NewSymbolTable returns a SymbolTable pre-seeded with the architecture constants:
// SP/LCL/ARG/THIS/THAT, the R0-R15 register aliases and SCREEN/KBD. The rest of the
// table (user-defined labels and variables) is populated by the Lowerer (pass 1,
// labels, see 'pkg/asm.Lowerer') and by the CodeGenerator itself (pass 2, variables).
func NewSymbolTable() SymbolTable {
	table := make(SymbolTable, len(BuiltInTable))
	for name, addr := range BuiltInTable {
		table[name] = addr
	}
	return table
}

// ----------------------------------------------------------------------------
// Code Generator

// Takes a set of 'hack.Instruction' and spits out their binary counterparts.
//
// This is pass 2 of the Assembler: by the time Generate runs, the SymbolTable has
// already been populated with every label declaration (pass 1, done by the Lowerer
// while building the Program); here we only resolve references and allocate RAM
// for never-before-seen variables.
type CodeGenerator struct {
	Program     Program     // The set of instructions to convert in Hack binary format
	SymbolTable SymbolTable // Mapping to resolve user-defined labels to their underlying address
	nextVarAddr uint16      // Next free RAM address to hand out to an unseen variable, starts at 16
}

// Initializes and returns to the caller a brand new 'CodeGenerator' struct.
// Requires both a non-nil Program 'p' (what we want to translate) as well as
// a SymbolTable 'st' (pre-seeded with built-ins and any pass 1 label bindings).
func NewCodeGenerator(p Program, st SymbolTable) *CodeGenerator {
	return &CodeGenerator{Program: p, SymbolTable: st, nextVarAddr: 16}
}

// Translates each instruction in the 'Program' to the Hack binary format.
//
// Each instruction passes through evaluation and conversion to its 16 character binary
// representation (a string of '0'/'1') so it can be further elaborated by the caller
// (e.g. dumping .hack code to a file). There is no partial-output contract: the first
// error encountered aborts translation and the caller must discard any output so far.
func (cg *CodeGenerator) Generate() ([]string, error) {
	compiled := make([]string, 0, len(cg.Program))

	for _, instruction := range cg.Program {
		var generated string
		var err error

		switch inst := instruction.(type) {
		case AInstruction:
			generated, err = cg.TranslateAInst(inst)
		case CInstruction:
			generated, err = cg.TranslateCInst(inst)
		default:
			err = fmt.Errorf("unrecognized instruction type '%T'", instruction)
		}

		if err != nil {
			return nil, err
		}
		compiled = append(compiled, generated)
	}

	return compiled, nil
}

// TranslateAInst converts an A Instruction to its 16 bit binary representation.
//
// As part of the conversion (for both built-in and user-defined labels) there's a lookup
// in the SymbolTable to determine the 'real' location address; a label seen for the first
// time is treated as a new variable and allocated the next free RAM address (starting at
// 16), per the two-pass allocation scheme described by the Assembler spec.
func (cg *CodeGenerator) TranslateAInst(inst AInstruction) (string, error) {
	var address uint16

	switch inst.LocType {
	case Raw:
		num, err := strconv.ParseUint(inst.LocName, 10, 16)
		if err != nil {
			return "", fmt.Errorf("unable to parse raw address '%s': %s", inst.LocName, err)
		}
		address = uint16(num)

	case BuiltIn:
		addr, found := BuiltInTable[inst.LocName]
		if !found {
			return "", fmt.Errorf("unrecognized built-in location '%s'", inst.LocName)
		}
		address = addr

	case Label:
		if addr, found := cg.SymbolTable[inst.LocName]; found {
			address = addr
			break
		}
		// First reference to this symbol: bind it to the next free variable slot.
		address = cg.nextVarAddr
		cg.SymbolTable[inst.LocName] = address
		cg.nextVarAddr++

	default:
		return "", fmt.Errorf("unrecognized location type '%v' for '%s'", inst.LocType, inst.LocName)
	}

	// An A instruction always has the first bit set to zero (the opcode bit), this also means
	// that, since each instruction is 16 bit, there are only 15 bits to address the Hack
	// computer's memory — an address at or above 2^15 is invalid and out of bound.
	if address >= MaxAddressableMemory {
		return "", fmt.Errorf("location '%s' resolved to an out-of-bound address %d", inst.LocName, address)
	}
	return fmt.Sprintf("%016b", address), nil
}

// TranslateCInst converts a C Instruction to its 16 bit binary representation.
//
// A C-instruction always encodes as "111" followed by the comp/dest/jump bit-codes. Per
// the Assembler spec, an unrecognized dest or jump mnemonic silently falls back to all-zero
// bits (equivalent to omitting it), while an unrecognized comp mnemonic encodes as all-ones
// — this sentinel behavior is intentionally inherited rather than treated as a hard error.
func (cg *CodeGenerator) TranslateCInst(inst CInstruction) (string, error) {
	if inst.Comp == "" {
		return "", fmt.Errorf("C instruction is missing mandatory 'comp' field")
	}

	command := uint16(0b111) << 13

	if opcode, found := CompTable[inst.Comp]; found {
		command |= opcode << 6
	} else {
		command |= 0b1111111 << 6 // Unknown comp mnemonic: all-ones sentinel (see spec.md §4.1).
	}
	if opcode, found := DestTable[inst.Dest]; found {
		command |= opcode << 3
	} // Unknown dest mnemonic: zero bits (equivalent to DestTable[""]).
	if opcode, found := JumpTable[inst.Jump]; found {
		command |= opcode
	} // Unknown jump mnemonic: zero bits (equivalent to JumpTable[""]).

	return fmt.Sprintf("%016b", command), nil
}
