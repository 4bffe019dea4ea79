package asm

import "sort"

// Symbol is one label or data definition name tracked by pass 4.
// Address and Resolved are not filled in by any pass: the resolve pass
// computes addresses in its own label maps. Defined only means
// "appeared as a definition", not "has an address yet".
type Symbol struct {
	Name     string
	Defined  bool
	DefPos   Position
	IsData   bool // data-segment label vs. code-segment label
	Address  uint32
	Resolved bool
}

// SymbolTable tracks every label/data-definition name seen across the
// program, plus every position that referenced one, so pass 4 can
// report DuplicateSymbol and UndefinedSymbol without a second walk.
type SymbolTable struct {
	symbols    map[string]*Symbol
	references map[string][]Position
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbols:    make(map[string]*Symbol),
		references: make(map[string][]Position),
	}
}

// Define records a label or data definition. A second Define of the
// same name is a duplicate.
func (t *SymbolTable) Define(name string, isData bool, pos Position) *Error {
	if sym, ok := t.symbols[name]; ok && sym.Defined {
		return NewError(pos, ErrorDuplicateSymbol, "symbol "+name+" already defined at "+sym.DefPos.String())
	}
	t.symbols[name] = &Symbol{Name: name, Defined: true, DefPos: pos, IsData: isData}
	return nil
}

// Reference records a use of name at pos, for later undefined-symbol
// reporting.
func (t *SymbolTable) Reference(name string, pos Position) {
	t.references[name] = append(t.references[name], pos)
}

// CheckUndefined returns one error per referenced-but-never-defined
// symbol, in first-reference order.
func (t *SymbolTable) CheckUndefined() []*Error {
	var errs []*Error
	for name, positions := range t.references {
		if sym, ok := t.symbols[name]; ok && sym.Defined {
			continue
		}
		errs = append(errs, NewError(positions[0], ErrorUndefinedSymbol, "undefined symbol: "+name))
	}
	sort.Slice(errs, func(i, j int) bool {
		a, b := errs[i].Pos, errs[j].Pos
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return errs
}

func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	s, ok := t.symbols[name]
	return s, ok
}
