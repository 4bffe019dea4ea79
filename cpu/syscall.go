package cpu

import (
	"bufio"
	"strings"
)

// Syscall ids. The table is small enough that, unlike the opcode
// table, it lives beside its one caller rather than in package isa.
const (
	sysPrintString uint16 = 0x0010
	sysPrintLine   uint16 = 0x0011
	sysReadLine    uint16 = 0x0012
)

func (c *CPU) execSyscall(p []byte) error {
	id := le16(p, 0)
	switch id {
	case sysPrintString:
		return c.sysPrint(false)
	case sysPrintLine:
		return c.sysPrint(true)
	case sysReadLine:
		return c.sysReadLine()
	default:
		return &UnknownSyscallError{ID: id}
	}
}

// sysPrint pops a 16-bit count N then N bytes, in the order the
// reference's PUSHB-reversed convention leaves them (the first
// character on top), and writes the resulting string, optionally
// followed by a newline.
func (c *CPU) sysPrint(newline bool) error {
	n, err := c.st.PopWord()
	if err != nil {
		return err
	}
	buf := make([]byte, n)
	for i := 0; i < int(n); i++ {
		b, err := c.st.PopByte()
		if err != nil {
			return err
		}
		buf[i] = b
	}
	if _, err := c.stdout.Write(buf); err != nil {
		return err
	}
	if newline {
		_, err = c.stdout.Write([]byte{'\n'})
	}
	return err
}

// sysReadLine pops a 16-bit max length M, reads one line from stdin,
// truncates to M, pushes the characters in reverse (so the first
// character ends up on top), then pushes the actual length.
func (c *CPU) sysReadLine() error {
	maxLen, err := c.st.PopWord()
	if err != nil {
		return err
	}
	line, err := readLine(c.stdin)
	if err != nil {
		return err
	}
	if len(line) > int(maxLen) {
		line = line[:maxLen]
	}
	for i := len(line) - 1; i >= 0; i-- {
		if err := c.st.PushByte(line[i]); err != nil {
			return err
		}
	}
	return c.st.PushWord(uint16(len(line)))
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
