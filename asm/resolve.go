package asm

import "fmt"

// Output is a fully resolved, encoded program: a data segment and a
// code segment, each laid out per the binary format's header layout.
type Output struct {
	Data []byte
	Code []byte
}

// resolve is the pipeline's final pass: assign addresses in each
// segment's own address space, then back-patch every relocation with
// the now-known address.
func resolve(g *CodeGraph) (*Output, error) {
	dataAddr := make(map[string]uint32, len(g.DataBlocks))
	offset := uint32(0)
	for _, b := range g.DataBlocks {
		dataAddr[b.Label] = offset
		offset += uint32(2 + len(b.Bytes))
	}

	codeAddr := make(map[string]uint32, len(g.CodeNodes))
	offset = 0
	for _, n := range g.CodeNodes {
		if n.IsLabel {
			codeAddr[n.LabelName] = offset
			continue
		}
		offset += uint32(len(n.Bytes))
	}

	resolveLabel := func(name string) (uint32, bool) {
		if a, ok := dataAddr[name]; ok {
			return a, true
		}
		a, ok := codeAddr[name]
		return a, ok
	}

	for _, b := range g.DataBlocks {
		for _, ref := range b.Refs {
			addr, ok := resolveLabel(ref.Label)
			if !ok {
				return nil, fmt.Errorf("internal error: unresolved label %q survived analysis", ref.Label)
			}
			v := uint16(addr)
			b.Bytes[ref.Offset] = byte(v)
			b.Bytes[ref.Offset+1] = byte(v >> 8)
		}
	}

	for _, n := range g.CodeNodes {
		for _, reloc := range n.Relocs {
			addr, ok := resolveLabel(reloc.Label)
			if !ok {
				return nil, fmt.Errorf("internal error: unresolved label %q survived analysis", reloc.Label)
			}
			final := uint32(int64(addr) + reloc.Const)
			n.Bytes[reloc.Offset] = byte(final)
			n.Bytes[reloc.Offset+1] = byte(final >> 8)
			n.Bytes[reloc.Offset+2] = byte(final >> 16)
			n.Bytes[reloc.Offset+3] = byte(final >> 24)
		}
	}

	var data []byte
	for _, b := range g.DataBlocks {
		size := uint16(len(b.Bytes))
		data = append(data, byte(size), byte(size>>8))
		data = append(data, b.Bytes...)
	}

	var code []byte
	for _, n := range g.CodeNodes {
		if n.IsLabel {
			continue
		}
		code = append(code, n.Bytes...)
	}

	return &Output{Data: data, Code: code}, nil
}
