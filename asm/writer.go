package asm

// writeBinary serialises an Output into the Pendragon binary format,
// including the header's big-endian-appearing revision fields — the
// mirror image of loader.reader.u16be.
func writeBinary(out *Output, programName string) []byte {
	const machineName = "Pendragon"
	if len(programName) > 32 {
		programName = programName[:32]
	}

	var b []byte
	headerSizePos := len(b)
	b = append(b, 0, 0) // header_size, patched below

	b = append(b, 1, 0) // header_version_major, minor
	b = append(b, 0, 0) // header_version_rev, big-endian (0, 0)

	b = append(b, byte(len(machineName)))
	b = append(b, machineName...)

	b = append(b, 1, 0) // machine_version_major, minor
	b = append(b, 0, 0) // machine_version_rev, big-endian (0, 0)

	nameLen := uint16(len(programName))
	b = append(b, byte(nameLen), byte(nameLen>>8))
	b = append(b, programName...)

	headerSize := uint16(len(b))
	b[headerSizePos] = byte(headerSize)
	b[headerSizePos+1] = byte(headerSize >> 8)

	dataSize := uint32(len(out.Data))
	b = append(b, byte(dataSize), byte(dataSize>>8), byte(dataSize>>16), byte(dataSize>>24))
	b = append(b, out.Data...)

	codeSize := uint32(len(out.Code))
	b = append(b, byte(codeSize), byte(codeSize>>8), byte(codeSize>>16), byte(codeSize>>24))
	b = append(b, out.Code...)

	return b
}
