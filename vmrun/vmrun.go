// Package vmrun wires a VMU, its three contexts, a managed stack, and
// a CPU into a runnable machine, running the fetch/decode/execute
// loop against a loaded binary.
package vmrun

import (
	"fmt"
	"io"

	"pendragon/config"
	"pendragon/cpu"
	"pendragon/loader"
	"pendragon/memory"
	"pendragon/registers"
	"pendragon/stack"
)

// Result reports the machine's final register file and instruction
// pointer, useful for the register/flag dump a runtime error prints.
type Result struct {
	Regs *registers.File
	IR   uint32
}

// Run loads bin's code and data segments, data at loadAddress within
// the data context's first page, and executes until HALT or a
// runtime error.
func Run(bin *loader.Binary, loadAddress uint16, stdin io.Reader, stdout io.Writer, cfg *config.Config) (*Result, error) {
	v := memory.NewVMU()

	codeSize := uint32(len(bin.Code))
	if codeSize == 0 {
		codeSize = 1
	}
	codeCtx, err := v.CreateContext(codeSize)
	if err != nil {
		return nil, fmt.Errorf("create code context: %w", err)
	}

	dataSize := uint32(loadAddress) + uint32(len(bin.Data))
	if dataSize == 0 {
		dataSize = 1
	}
	dataCtx, err := v.CreateContext(dataSize)
	if err != nil {
		return nil, fmt.Errorf("create data context: %w", err)
	}

	stackSize := cfg.Execution.StackContextSize
	if stackSize == 0 {
		stackSize = 64 * 1024
	}
	stackCtx, err := v.CreateContext(stackSize)
	if err != nil {
		return nil, fmt.Errorf("create stack context: %w", err)
	}

	v.SetMode(memory.Protected)

	codeAcc, err := v.NewPagedAccessor(codeCtx, memory.ReadWrite)
	if err != nil {
		return nil, fmt.Errorf("create code accessor: %w", err)
	}
	dataAcc, err := v.NewPagedAccessor(dataCtx, memory.ReadWrite)
	if err != nil {
		return nil, fmt.Errorf("create data accessor: %w", err)
	}
	stackAcc, err := v.NewStackAccessor(stackCtx, memory.ReadWrite)
	if err != nil {
		return nil, fmt.Errorf("create stack accessor: %w", err)
	}

	if err := dataAcc.SetPage(0); err != nil {
		return nil, fmt.Errorf("select data page 0: %w", err)
	}
	if err := dataAcc.BulkWrite(loadAddress, bin.Data); err != nil {
		return nil, fmt.Errorf("write data segment: %w", err)
	}

	c := cpu.New(codeAcc, dataAcc, stack.New(stackAcc), stdin, stdout)
	c.MaxSteps = cfg.Execution.MaxSteps

	if err := c.LoadProgram(bin.Code); err != nil {
		return nil, fmt.Errorf("load code segment: %w", err)
	}

	runErr := c.Run()
	result := &Result{Regs: c.Regs, IR: c.IR()}
	if runErr != nil {
		return result, runErr
	}
	return result, nil
}
