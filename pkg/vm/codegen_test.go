package vm_test

import (
	"testing"

	"go.n2tcore.dev/toolchain/pkg/vm"
)

func TestMemoryOp(t *testing.T) {
	codegen := vm.NewCodeGenerator(vm.Program{})

	test := func(inst vm.MemoryOp, expected string, fail bool) {
		res, err := codegen.GenerateMemoryOp(inst)
		if fail {
			if err == nil {
				t.Fatalf("expected an error for %+v, got none (result %q)", inst, res)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error for %+v: %s", inst, err)
		}
		if res != expected {
			t.Fatalf("expected %q, got %q", expected, res)
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		test(vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 5}, "push constant 5", false)
		test(vm.MemoryOp{Operation: vm.Pop, Segment: vm.Local, Offset: 3}, "pop local 3", false)
		test(vm.MemoryOp{Operation: vm.Push, Segment: vm.Argument, Offset: 2}, "push argument 2", false)
		test(vm.MemoryOp{Operation: vm.Pop, Segment: vm.Static, Offset: 1}, "pop static 1", false)
		test(vm.MemoryOp{Operation: vm.Push, Segment: vm.Pointer, Offset: 0}, "push pointer 0", false)
		test(vm.MemoryOp{Operation: vm.Push, Segment: vm.Temp, Offset: 7}, "push temp 7", false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		// Offset 8 for temp segment is out of range (valid: 0-7)
		test(vm.MemoryOp{Operation: vm.Push, Segment: vm.Temp, Offset: 8}, "", true)
		// Offset 2 for pointer segment is out of range (valid: 0-1)
		test(vm.MemoryOp{Operation: vm.Pop, Segment: vm.Pointer, Offset: 2}, "", true)
	})
}

func TestArithmeticOp(t *testing.T) {
	codegen := vm.NewCodeGenerator(vm.Program{})

	test := func(inst vm.ArithmeticOp, expected string) {
		res, err := codegen.GenerateArithmeticOp(inst)
		if err != nil {
			t.Fatalf("unexpected error for %+v: %s", inst, err)
		}
		if res != expected {
			t.Fatalf("expected %q, got %q", expected, res)
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		test(vm.ArithmeticOp{Operation: vm.Add}, "add")
		test(vm.ArithmeticOp{Operation: vm.Sub}, "sub")
		test(vm.ArithmeticOp{Operation: vm.Neg}, "neg")
		test(vm.ArithmeticOp{Operation: vm.Eq}, "eq")
		test(vm.ArithmeticOp{Operation: vm.Gt}, "gt")
		test(vm.ArithmeticOp{Operation: vm.Lt}, "lt")
		test(vm.ArithmeticOp{Operation: vm.And}, "and")
		test(vm.ArithmeticOp{Operation: vm.Or}, "or")
		test(vm.ArithmeticOp{Operation: vm.Not}, "not")
	})
}

func TestLabelDecl(t *testing.T) {
	codegen := vm.NewCodeGenerator(vm.Program{})

	test := func(inst vm.LabelDeclaration, expected string, fail bool) {
		res, err := codegen.GenerateLabelDecl(inst)
		if fail {
			if err == nil {
				t.Fatalf("expected an error for %+v, got none", inst)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error for %+v: %s", inst, err)
		}
		if res != expected {
			t.Fatalf("expected %q, got %q", expected, res)
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		test(vm.LabelDeclaration{Name: "END"}, "label END", false)
		test(vm.LabelDeclaration{Name: "LOOP_START"}, "label LOOP_START", false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test(vm.LabelDeclaration{Name: ""}, "", true)
	})
}

func TestGotoOp(t *testing.T) {
	codegen := vm.NewCodeGenerator(vm.Program{})

	test := func(inst vm.GotoOp, expected string, fail bool) {
		res, err := codegen.GenerateGotoOp(inst)
		if fail {
			if err == nil {
				t.Fatalf("expected an error for %+v, got none", inst)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error for %+v: %s", inst, err)
		}
		if res != expected {
			t.Fatalf("expected %q, got %q", expected, res)
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		test(vm.GotoOp{Jump: vm.Goto, Label: "END"}, "goto END", false)
		test(vm.GotoOp{Jump: vm.IfGoto, Label: "CHECK"}, "if-goto CHECK", false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test(vm.GotoOp{Jump: vm.Goto, Label: ""}, "", true)
		test(vm.GotoOp{Jump: vm.IfGoto, Label: ""}, "", true)
	})
}

func TestFuncDecl(t *testing.T) {
	codegen := vm.NewCodeGenerator(vm.Program{})

	test := func(inst vm.FuncDecl, expected string, fail bool) {
		res, err := codegen.GenerateFuncDecl(inst)
		if fail {
			if err == nil {
				t.Fatalf("expected an error for %+v, got none", inst)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error for %+v: %s", inst, err)
		}
		if res != expected {
			t.Fatalf("expected %q, got %q", expected, res)
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		test(vm.FuncDecl{Name: "Main", ArgsNum: 0}, "function Main 0", false)
		test(vm.FuncDecl{Name: "ComputeSum", ArgsNum: 2}, "function ComputeSum 2", false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test(vm.FuncDecl{Name: "", ArgsNum: 2}, "", true)
	})
}

func TestReturnOp(t *testing.T) {
	codegen := vm.NewCodeGenerator(vm.Program{})

	t.Run("Valid data", func(t *testing.T) {
		res, err := codegen.GenerateReturnOp(vm.ReturnOp{})
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if res != "return" {
			t.Fatalf("expected %q, got %q", "return", res)
		}
	})
}

func TestFuncCallOp(t *testing.T) {
	codegen := vm.NewCodeGenerator(vm.Program{})

	test := func(inst vm.FuncCallOp, expected string, fail bool) {
		res, err := codegen.GenerateFuncCallOp(inst)
		if fail {
			if err == nil {
				t.Fatalf("expected an error for %+v, got none", inst)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error for %+v: %s", inst, err)
		}
		if res != expected {
			t.Fatalf("expected %q, got %q", expected, res)
		}
	}

	t.Run("Valid data", func(t *testing.T) {
		test(vm.FuncCallOp{Name: "Main", ArgsNum: 0}, "call Main 0", false)
		test(vm.FuncCallOp{Name: "ComputeSum", ArgsNum: 2}, "call ComputeSum 2", false)
	})

	t.Run("Invalid data", func(t *testing.T) {
		test(vm.FuncCallOp{Name: "", ArgsNum: 2}, "", true)
	})
}
