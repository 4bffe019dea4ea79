// Package loader parses the Pendragon binary format: a small header
// identifying the machine and program, followed by a data segment and
// a code segment, turning an assembled artifact into the bytes a VM
// can run.
package loader

import "encoding/binary"

const (
	machineName          = "Pendragon"
	expectedVersionMajor = 1
	expectedVersionMinor = 0
	expectedVersionRev   = 0
)

// Header is the decoded fixed-format header preceding the two
// segments.
type Header struct {
	HeaderSize   uint16
	VersionMajor byte
	VersionMinor byte
	VersionRev   uint16
	MachineName  string
	MachineMajor byte
	MachineMinor byte
	MachineRev   uint16
	ProgramName  string
}

// Binary is the fully decoded artifact: header plus the two segments
// ready to be handed to the data context and the instruction unit.
type Binary struct {
	Header Header
	Data   []byte
	Code   []byte
}

// Load parses a byte slice into a Binary and validates machine
// identity and format version. It never mutates b.
func Load(b []byte) (*Binary, error) {
	r := &reader{buf: b}

	headerSize, err := r.u16()
	if err != nil {
		return nil, &InvalidBinaryError{Reason: "truncated header_size"}
	}
	versionMajor, err := r.u8()
	if err != nil {
		return nil, &InvalidBinaryError{Reason: "truncated header version"}
	}
	versionMinor, err := r.u8()
	if err != nil {
		return nil, &InvalidBinaryError{Reason: "truncated header version"}
	}
	versionRev, err := r.u16be()
	if err != nil {
		return nil, &InvalidBinaryError{Reason: "truncated header version"}
	}
	if versionMajor != expectedVersionMajor || versionMinor != expectedVersionMinor || versionRev != expectedVersionRev {
		return nil, &MachineMismatchError{
			Field:    "header format version",
			Expected: "1.0.0",
			Got:      versionString(versionMajor, versionMinor, versionRev),
		}
	}

	nameLen, err := r.u8()
	if err != nil {
		return nil, &InvalidBinaryError{Reason: "truncated machine_name_len"}
	}
	name, err := r.bytes(int(nameLen))
	if err != nil {
		return nil, &InvalidBinaryError{Reason: "truncated machine_name"}
	}
	if string(name) != machineName {
		return nil, &MachineMismatchError{Field: "machine name", Expected: machineName, Got: string(name)}
	}

	machMajor, err := r.u8()
	if err != nil {
		return nil, &InvalidBinaryError{Reason: "truncated machine version"}
	}
	machMinor, err := r.u8()
	if err != nil {
		return nil, &InvalidBinaryError{Reason: "truncated machine version"}
	}
	machRev, err := r.u16be()
	if err != nil {
		return nil, &InvalidBinaryError{Reason: "truncated machine version"}
	}
	if machMajor != expectedVersionMajor || machMinor != expectedVersionMinor || machRev != expectedVersionRev {
		return nil, &MachineMismatchError{
			Field:    "machine version",
			Expected: "1.0.0",
			Got:      versionString(machMajor, machMinor, machRev),
		}
	}

	progNameLen, err := r.u16()
	if err != nil {
		return nil, &InvalidBinaryError{Reason: "truncated program_name_len"}
	}
	progName, err := r.bytes(int(progNameLen))
	if err != nil {
		return nil, &InvalidBinaryError{Reason: "truncated program_name"}
	}

	header := Header{
		HeaderSize:   headerSize,
		VersionMajor: versionMajor,
		VersionMinor: versionMinor,
		VersionRev:   versionRev,
		MachineName:  machineName,
		MachineMajor: machMajor,
		MachineMinor: machMinor,
		MachineRev:   machRev,
		ProgramName:  string(progName),
	}

	dataSize, err := r.u32()
	if err != nil {
		return nil, &InvalidBinaryError{Reason: "truncated data_segment_size"}
	}
	data, err := r.bytes(int(dataSize))
	if err != nil {
		return nil, &InvalidBinaryError{Reason: "data segment shorter than declared size"}
	}

	codeSize, err := r.u32()
	if err != nil {
		return nil, &InvalidBinaryError{Reason: "truncated code_segment_size"}
	}
	code, err := r.bytes(int(codeSize))
	if err != nil {
		return nil, &InvalidBinaryError{Reason: "code segment shorter than declared size"}
	}

	return &Binary{Header: header, Data: data, Code: code}, nil
}

func versionString(major, minor byte, rev uint16) string {
	return itoa(int(major)) + "." + itoa(int(minor)) + "." + itoa(int(rev))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [8]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}

// reader is a minimal cursor over a binary blob, used only during
// parsing; every field access fails closed with errShort rather than
// panicking on a short buffer.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) u8() (byte, error) {
	if r.pos+1 > len(r.buf) {
		return 0, errShort
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if r.pos+2 > len(r.buf) {
		return 0, errShort
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// u16be reads the header's revision fields, which the writer emits as
// (rev_hi, rev_lo) rather than the little-endian order every other
// multi-byte field uses — a deliberate byte-order quirk in the format.
func (r *reader) u16be() (uint16, error) {
	if r.pos+2 > len(r.buf) {
		return 0, errShort
	}
	v := uint16(r.buf[r.pos])<<8 | uint16(r.buf[r.pos+1])
	r.pos += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, errShort
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, errShort
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}
