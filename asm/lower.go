package asm

import (
	"fmt"
	"sort"

	"pendragon/isa"
)

// DataBlock is one lowered DATA-segment entry: either a literal byte
// payload (DB/DW) or a list of label references awaiting resolution
// (DA). Bytes always holds the payload that would be written today;
// Refs overwrites specific offsets once addresses are known.
type DataBlock struct {
	Label string
	Bytes []byte
	Refs  []DataRef
}

// DataRef is one not-yet-resolved word slot inside a DataBlock's
// payload, referencing another label's eventual data address.
type DataRef struct {
	Offset int
	Label  string
}

// CodeReloc is one not-yet-resolved operand slot inside a CodeNode's
// byte buffer: an ADDRESS operand referencing a code or data label,
// plus the constant offset an expression like `label + 4` carries.
type CodeReloc struct {
	Offset int
	Label  string
	Const  int64
}

// CodeNode is one lowered CODE-segment entry: either a zero-size
// label marker or an encoded instruction with its relocations.
type CodeNode struct {
	IsLabel   bool
	LabelName string
	Mnemonic  string
	Bytes     []byte
	Relocs    []CodeReloc
	Pos       Position
}

// CodeGraph is the lowered program, ready for the resolve pass to
// assign addresses and back-patch relocations.
type CodeGraph struct {
	DataBlocks []*DataBlock
	CodeNodes  []*CodeNode
}

// lower is the pipeline's fifth pass: build the code graph.
func lower(prog *Program, errs *ErrorList) *CodeGraph {
	g := &CodeGraph{}
	anonCount := 0

	for _, sec := range prog.Sections {
		for _, item := range sec.Items {
			switch n := item.(type) {
			case *DataDef:
				label := n.Label
				if label == "" {
					label = fmt.Sprintf("__anon_%d", anonCount)
					anonCount++
				}
				g.DataBlocks = append(g.DataBlocks, lowerDataDef(n, label))
			case *Label:
				if sec.Kind == SectionCode {
					g.CodeNodes = append(g.CodeNodes, &CodeNode{IsLabel: true, LabelName: n.Name, Pos: n.Pos})
				}
			case *Instruction:
				node, err := lowerInstruction(n)
				if err != nil {
					errs.Add(err)
					continue
				}
				g.CodeNodes = append(g.CodeNodes, node)
			}
		}
	}
	return g
}

func lowerDataDef(n *DataDef, label string) *DataBlock {
	b := &DataBlock{Label: label}
	switch n.Kind {
	case DataBytes:
		b.Bytes = append([]byte(nil), n.Bytes...)
	case DataWords:
		for _, w := range n.Words {
			b.Bytes = append(b.Bytes, byte(w), byte(w>>8))
		}
	case DataAddrs:
		b.Bytes = make([]byte, 2*len(n.Labels))
		for i, name := range n.Labels {
			b.Refs = append(b.Refs, DataRef{Offset: 2 * i, Label: name})
		}
	}
	return b
}

func lowerInstruction(inst *Instruction) (*CodeNode, error) {
	info, ok := selectCandidate(inst.Mnemonic, inst.Operands)
	if !ok {
		return nil, NewError(inst.Pos, ErrorInvalidOperand, "no encoding of "+inst.Mnemonic+" matches the given operands")
	}

	node := &CodeNode{Mnemonic: inst.Mnemonic, Pos: inst.Pos}
	node.Bytes = append(node.Bytes, byte(info.Opcode))

	for i, kind := range info.Operands {
		op := inst.Operands[i]
		switch kind {
		case isa.KindReg:
			code, ok := isa.RegisterCode(op.Register)
			if !ok {
				return nil, NewError(op.Pos, ErrorInvalidOperand, "unknown register: "+op.Register)
			}
			node.Bytes = append(node.Bytes, code)
		case isa.KindImm8:
			node.Bytes = append(node.Bytes, byte(op.Imm))
		case isa.KindImm16:
			v := uint16(op.Imm)
			node.Bytes = append(node.Bytes, byte(v), byte(v>>8))
		case isa.KindAddr:
			if op.Kind == OperandImmediate {
				v := uint32(op.Imm)
				node.Bytes = append(node.Bytes, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
				continue
			}
			if op.Mem.HasReg {
				return nil, NewError(op.Pos, ErrorInvalidOperand,
					"register-indexed memory expressions are not supported by this instruction set")
			}
			if !op.Mem.HasLabel {
				return nil, NewError(op.Pos, ErrorInvalidOperand, "memory operand has no label to resolve")
			}
			node.Relocs = append(node.Relocs, CodeReloc{Offset: len(node.Bytes), Label: op.Mem.Label, Const: op.Mem.Const})
			node.Bytes = append(node.Bytes, 0, 0, 0, 0)
		}
	}
	return node, nil
}

// selectCandidate picks the isa.Info whose operand shape matches the
// parsed operands, disambiguating word/byte width by value magnitude
// when the mnemonic doesn't already pin the width.
func selectCandidate(mnemonic string, operands []Operand) (isa.Info, bool) {
	var matches []isa.Info
	for _, c := range isa.Candidates(mnemonic) {
		if len(c.Operands) != len(operands) {
			continue
		}
		ok := true
		for i, k := range c.Operands {
			if !operandMatchesKind(operands[i], k) {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return isa.Info{}, false
	}
	if len(matches) == 1 {
		return matches[0], true
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].AdditionalBytes() < matches[j].AdditionalBytes()
	})
	for _, m := range matches {
		if fitsWidth(m, operands) {
			return m, true
		}
	}
	return matches[len(matches)-1], true
}

func fitsWidth(info isa.Info, operands []Operand) bool {
	for i, k := range info.Operands {
		if operands[i].Kind != OperandImmediate {
			continue
		}
		v := operands[i].Imm
		if k == isa.KindImm8 && (v < 0 || v > 0xFF) {
			return false
		}
	}
	return true
}

func operandMatchesKind(op Operand, kind isa.OperandKind) bool {
	switch op.Kind {
	case OperandRegister:
		return kind == isa.KindReg
	case OperandImmediate:
		return kind == isa.KindImm8 || kind == isa.KindImm16 || kind == isa.KindAddr
	case OperandMemory:
		return kind == isa.KindAddr
	}
	return false
}
