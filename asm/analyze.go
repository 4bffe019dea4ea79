package asm

// analyze is the pipeline's fourth pass: define every label and data
// symbol, record every reference, and validate register names.
// Expression operators are not checked here; the parser accepts only
// + and - between terms. It does not assign addresses — that's the
// resolve pass.
func analyze(prog *Program, errs *ErrorList) *SymbolTable {
	table := NewSymbolTable()

	for _, sec := range prog.Sections {
		isData := sec.Kind == SectionData
		for _, item := range sec.Items {
			switch n := item.(type) {
			case *DataDef:
				if n.Label != "" {
					if err := table.Define(n.Label, isData, n.Pos); err != nil {
						errs.Add(err)
					}
				}
				if n.Kind == DataAddrs {
					for _, name := range n.Labels {
						table.Reference(name, n.Pos)
					}
				}
			case *Label:
				if err := table.Define(n.Name, isData, n.Pos); err != nil {
					errs.Add(err)
				}
			case *Instruction:
				for _, op := range n.Operands {
					analyzeOperand(op, table, errs)
				}
			}
		}
	}

	for _, err := range table.CheckUndefined() {
		errs.Add(err)
	}
	return table
}

func analyzeOperand(op Operand, table *SymbolTable, errs *ErrorList) {
	switch op.Kind {
	case OperandRegister:
		if !registerNames[op.Register] {
			errs.Add(NewError(op.Pos, ErrorInvalidOperand, "unknown register: "+op.Register))
		}
	case OperandMemory:
		if op.Mem.HasLabel {
			table.Reference(op.Mem.Label, op.Pos)
		}
		if op.Mem.HasReg && !registerNames[op.Mem.Register] {
			errs.Add(NewError(op.Pos, ErrorInvalidOperand, "unknown register in expression: "+op.Mem.Register))
		}
	}
}
