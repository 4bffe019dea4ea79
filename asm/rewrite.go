package asm

import "strings"

// rewriteSugar is the pipeline's third pass: `LD reg, [label + expr]`
// is sugar for an address load. An 8-bit destination rewrites to
// LDAB; anything else rewrites to LDA. The rewritten instruction's
// memory operand keeps its Expr but is marked non-bracketed, so pass
// 4/5 treat it identically to a source-written `LDA reg, (expr)`.
func rewriteSugar(prog *Program) {
	for _, sec := range prog.Sections {
		if sec.Kind != SectionCode {
			continue
		}
		for _, item := range sec.Items {
			inst, ok := item.(*Instruction)
			if !ok || inst.Mnemonic != "LD" || len(inst.Operands) != 2 {
				continue
			}
			dst, mem := inst.Operands[0], inst.Operands[1]
			if dst.Kind != OperandRegister || mem.Kind != OperandMemory || !mem.Bracketed {
				continue
			}
			if isByteRegister(dst.Register) {
				inst.Mnemonic = "LDAB"
			} else {
				inst.Mnemonic = "LDA"
			}
			inst.Operands[1].Bracketed = false
		}
	}
}

func isByteRegister(reg string) bool {
	if len(reg) != 2 {
		return false
	}
	suffix := strings.ToUpper(reg)[1]
	return suffix == 'H' || suffix == 'L'
}
