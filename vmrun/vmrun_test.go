package vmrun

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pendragon/asm"
	"pendragon/config"
	"pendragon/loader"
	"pendragon/registers"
)

func TestRunIntegerAddHalts(t *testing.T) {
	src := "CODE\n" +
		"LD AX, 7\n" +
		"LD BX, 5\n" +
		"ADD BX\n" +
		"HALT\n"
	bin, errs := asm.Assemble(src, "add.asm")
	require.Nil(t, errs)

	out, err := loader.Load(bin)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	var stdout bytes.Buffer
	res, err := Run(out, 0, strings.NewReader(""), &stdout, cfg)
	require.NoError(t, err)
	assert.Equal(t, uint16(12), res.Regs.Get(registers.AX))
}

func TestRunDataSegmentLoadsAtAddress(t *testing.T) {
	src := "DATA\n" +
		"MSG: DB \"hi\"\n" +
		"CODE\n" +
		"LDA AX, (MSG)\n" +
		"HALT\n"
	bin, errs := asm.Assemble(src, "data.asm")
	require.Nil(t, errs)

	out, err := loader.Load(bin)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	var stdout bytes.Buffer
	_, err = Run(out, 0x100, strings.NewReader(""), &stdout, cfg)
	require.NoError(t, err)
}

func TestRunStepLimitExceeded(t *testing.T) {
	src := "CODE\n" +
		"LOOP:\n" +
		"JMP LOOP\n"
	bin, errs := asm.Assemble(src, "spin.asm")
	require.Nil(t, errs)

	out, err := loader.Load(bin)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Execution.MaxSteps = 10
	var stdout bytes.Buffer
	_, err = Run(out, 0, strings.NewReader(""), &stdout, cfg)
	require.Error(t, err)
}
