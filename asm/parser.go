package asm

import (
	"strconv"
	"strings"
)

// Parser builds a Program AST from a token stream by recursive
// descent. On a syntax error it records the diagnostic and
// resynchronises to the next line, so one bad line doesn't abort the
// whole file.
type Parser struct {
	lex    *Lexer
	cur    Token
	peek   Token
	errors *ErrorList
}

func NewParser(source, filename string) *Parser {
	p := &Parser{lex: NewLexer(source, filename), errors: &ErrorList{}}
	p.next()
	p.next()
	return p
}

func (p *Parser) Errors() *ErrorList { return p.errors }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) addError(kind ErrorKind, msg string) {
	p.errors.Add(NewError(p.cur.Pos, kind, msg))
}

func (p *Parser) skipNewlines() {
	for p.cur.Type == TokenNewline {
		p.next()
	}
}

// resync advances to the next newline or EOF, discarding the rest of
// a malformed line.
func (p *Parser) resync() {
	for p.cur.Type != TokenNewline && p.cur.Type != TokenEOF {
		p.next()
	}
	p.skipNewlines()
}

// Parse consumes the whole token stream and returns the resulting
// Program. Lexer errors surface first since a broken token stream
// makes the parse itself unreliable.
func (p *Parser) Parse() (*Program, error) {
	prog := &Program{}
	p.skipNewlines()
	for p.cur.Type != TokenEOF {
		if p.cur.Type != TokenKeyword || (p.cur.Literal != "DATA" && p.cur.Literal != "CODE") {
			p.addError(ErrorSyntax, "expected DATA or CODE section header, got "+p.cur.String())
			p.resync()
			continue
		}
		sec := p.parseSection()
		prog.Sections = append(prog.Sections, sec)
	}
	if lexErrs := p.lex.Errors().Errors; len(lexErrs) > 0 {
		p.errors.Errors = append(append([]*Error(nil), lexErrs...), p.errors.Errors...)
	}
	return prog, nil
}

func (p *Parser) parseSection() *Section {
	kind := SectionData
	if p.cur.Literal == "CODE" {
		kind = SectionCode
	}
	sec := &Section{Kind: kind, Pos: p.cur.Pos}
	p.next()
	p.skipNewlines()

	for p.cur.Type != TokenEOF && !(p.cur.Type == TokenKeyword && (p.cur.Literal == "DATA" || p.cur.Literal == "CODE")) {
		item := p.parseItem(kind)
		if item != nil {
			sec.Items = append(sec.Items, item)
		}
		p.skipNewlines()
	}
	return sec
}

func (p *Parser) parseItem(kind SectionKind) Node {
	// LABEL: ...
	if p.cur.Type == TokenIdentifier && p.peek.Type == TokenColon {
		name := p.cur.Literal
		pos := p.cur.Pos
		p.next() // consume identifier
		p.next() // consume ':'
		if p.cur.Type == TokenKeyword && (p.cur.Literal == "DB" || p.cur.Literal == "DW" || p.cur.Literal == "DA") {
			return p.parseDataDef(name)
		}
		if p.cur.Type == TokenNewline || p.cur.Type == TokenEOF {
			return &Label{Name: name, Pos: pos}
		}
		// LABEL: INSTRUCTION on one line — emit the label and let the
		// instruction parse as the next item by not consuming a newline.
		// We return the label now; the instruction is parsed on the
		// caller's next loop iteration since p.cur is already positioned
		// at the mnemonic.
		return &Label{Name: name, Pos: pos}
	}

	if p.cur.Type == TokenKeyword && (p.cur.Literal == "DB" || p.cur.Literal == "DW" || p.cur.Literal == "DA") {
		return p.parseDataDef("")
	}

	if p.cur.Type == TokenIdentifier || (p.cur.Type == TokenKeyword && p.cur.Literal == "PAGE") {
		return p.parseInstruction()
	}

	p.addError(ErrorSyntax, "unexpected token in "+sectionName(kind)+" section: "+p.cur.String())
	p.resync()
	return nil
}

func sectionName(k SectionKind) string {
	if k == SectionCode {
		return "CODE"
	}
	return "DATA"
}

func (p *Parser) parseDataDef(label string) *DataDef {
	pos := p.cur.Pos
	kindTok := p.cur.Literal
	p.next() // consume DB/DW/DA

	def := &DataDef{Label: label, Pos: pos}
	switch kindTok {
	case "DB":
		def.Kind = DataBytes
		if p.cur.Type == TokenString {
			def.Bytes = []byte(p.cur.Literal)
			p.next()
		} else if p.cur.Type == TokenLBracket {
			nums := p.parseNumberList()
			for _, n := range nums {
				def.Bytes = append(def.Bytes, byte(n))
			}
		} else {
			p.addError(ErrorInvalidDirective, "DB expects a string or a bracketed byte list")
			p.resync()
			return def
		}
	case "DW":
		def.Kind = DataWords
		if p.cur.Type != TokenLBracket {
			p.addError(ErrorInvalidDirective, "DW expects a bracketed word list")
			p.resync()
			return def
		}
		for _, n := range p.parseNumberList() {
			def.Words = append(def.Words, uint16(n))
		}
	case "DA":
		def.Kind = DataAddrs
		if p.cur.Type != TokenLBracket {
			p.addError(ErrorInvalidDirective, "DA expects a bracketed label list")
			p.resync()
			return def
		}
		def.Labels = p.parseIdentList()
	}
	if p.cur.Type != TokenNewline && p.cur.Type != TokenEOF {
		p.addError(ErrorSyntax, "unexpected trailing token after data definition: "+p.cur.String())
		p.resync()
	}
	return def
}

func (p *Parser) parseNumberList() []int64 {
	var nums []int64
	p.next() // consume '['
	for p.cur.Type != TokenRBracket && p.cur.Type != TokenEOF {
		if p.cur.Type != TokenNumber {
			p.addError(ErrorSyntax, "expected number in list, got "+p.cur.String())
			p.resync()
			return nums
		}
		nums = append(nums, parseNumberLiteral(p.cur.Literal))
		p.next()
		if p.cur.Type == TokenComma {
			p.next()
		}
	}
	if p.cur.Type == TokenRBracket {
		p.next()
	}
	return nums
}

func (p *Parser) parseIdentList() []string {
	var names []string
	p.next() // consume '['
	for p.cur.Type != TokenRBracket && p.cur.Type != TokenEOF {
		if p.cur.Type != TokenIdentifier {
			p.addError(ErrorSyntax, "expected label in list, got "+p.cur.String())
			p.resync()
			return names
		}
		names = append(names, p.cur.Literal)
		p.next()
		if p.cur.Type == TokenComma {
			p.next()
		}
	}
	if p.cur.Type == TokenRBracket {
		p.next()
	}
	return names
}

func (p *Parser) parseInstruction() *Instruction {
	inst := &Instruction{Mnemonic: strings.ToUpper(p.cur.Literal), Pos: p.cur.Pos}
	p.next()

	if p.cur.Type == TokenNewline || p.cur.Type == TokenEOF {
		return inst
	}
	for {
		op, ok := p.parseOperand()
		if !ok {
			p.resync()
			return inst
		}
		inst.Operands = append(inst.Operands, op)
		if p.cur.Type == TokenComma {
			p.next()
			continue
		}
		break
	}
	if p.cur.Type != TokenNewline && p.cur.Type != TokenEOF {
		p.addError(ErrorSyntax, "unexpected trailing token after instruction: "+p.cur.String())
		p.resync()
	}
	return inst
}

func (p *Parser) parseOperand() (Operand, bool) {
	pos := p.cur.Pos
	switch p.cur.Type {
	case TokenRegister:
		reg := p.cur.Literal
		p.next()
		return Operand{Kind: OperandRegister, Register: reg, Pos: pos}, true
	case TokenNumber:
		v := parseNumberLiteral(p.cur.Literal)
		p.next()
		return Operand{Kind: OperandImmediate, Imm: v, Pos: pos}, true
	case TokenLBracket, TokenLParen:
		bracketed := p.cur.Type == TokenLBracket
		closing := TokenRBracket
		if p.cur.Type == TokenLParen {
			closing = TokenRParen
		}
		p.next()
		expr, ok := p.parseExpr()
		if !ok {
			return Operand{}, false
		}
		if p.cur.Type != closing {
			p.addError(ErrorSyntax, "unterminated memory operand")
			return Operand{}, false
		}
		p.next()
		return Operand{Kind: OperandMemory, Mem: expr, Bracketed: bracketed, Pos: pos}, true
	case TokenIdentifier:
		label := p.cur.Literal
		p.next()
		return Operand{Kind: OperandMemory, Mem: Expr{Label: label, HasLabel: true}, Pos: pos}, true
	default:
		p.addError(ErrorInvalidOperand, "expected an operand, got "+p.cur.String())
		return Operand{}, false
	}
}

// parseExpr parses the label/register/constant terms inside a memory
// operand, combined with binary +/-.
func (p *Parser) parseExpr() (Expr, bool) {
	var e Expr
	sign := int64(1)
	for {
		switch p.cur.Type {
		case TokenIdentifier:
			if e.HasLabel {
				p.addError(ErrorInvalidOperand, "memory expression carries more than one label")
				return e, false
			}
			e.Label = p.cur.Literal
			e.HasLabel = true
			p.next()
		case TokenRegister:
			if e.HasReg {
				p.addError(ErrorInvalidOperand, "memory expression carries more than one register")
				return e, false
			}
			e.Register = p.cur.Literal
			e.HasReg = true
			p.next()
		case TokenNumber:
			e.Const += sign * parseNumberLiteral(p.cur.Literal)
			p.next()
		default:
			p.addError(ErrorInvalidOperand, "expected identifier, register, or number in memory expression")
			return e, false
		}
		switch p.cur.Type {
		case TokenPlus:
			sign = 1
			p.next()
		case TokenMinus:
			sign = -1
			p.next()
		default:
			return e, true
		}
	}
}

func parseNumberLiteral(lit string) int64 {
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		v, _ := strconv.ParseInt(lit[2:], 16, 64)
		return v
	}
	v, _ := strconv.ParseInt(lit, 10, 64)
	return v
}
