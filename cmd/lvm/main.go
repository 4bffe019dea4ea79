// Command lvm loads a Pendragon binary and runs it to completion.
package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/urfave/cli.v2"

	"pendragon/config"
	"pendragon/internal/logging"
	"pendragon/loader"
	"pendragon/registers"
	"pendragon/vmrun"
)

func main() {
	app := &cli.App{
		Name:      "lvm",
		Usage:     "run a Pendragon binary",
		UsageText: "lvm <binary_path> <load_address>",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowAppHelp(c)
		return cli.Exit("", 1)
	}

	binaryPath := c.Args().Get(0)
	loadAddress, err := parseLoadAddress(c.Args().Get(1))
	if err != nil {
		return cli.Exit(fmt.Sprintf("lvm: %v", err), 1)
	}

	cfg, err := config.Load()
	if err != nil {
		return cli.Exit(fmt.Sprintf("lvm: %v", err), 1)
	}
	log := logging.New("lvm", logging.ParseLevel(cfg.Logging.Level))

	raw, err := os.ReadFile(binaryPath) // #nosec G304 -- user-supplied path is the program's whole purpose
	if err != nil {
		return cli.Exit(fmt.Sprintf("lvm: %v", err), 1)
	}

	bin, err := loader.Load(raw)
	if err != nil {
		return cli.Exit(fmt.Sprintf("lvm: %v", err), 1)
	}
	log.Infof("loaded %s (%s) data=%d bytes code=%d bytes", bin.Header.ProgramName, bin.Header.MachineName, len(bin.Data), len(bin.Code))

	result, runErr := vmrun.Run(bin, loadAddress, os.Stdin, os.Stdout, cfg)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", runErr)
		if result != nil {
			dumpRegisters(result)
		}
		return cli.Exit("", 1)
	}
	return nil
}

func parseLoadAddress(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid load address %q: %w", s, err)
	}
	return uint16(v), nil
}

func dumpRegisters(r *vmrun.Result) {
	fmt.Fprintf(os.Stderr, "IR=0x%08X AX=0x%04X BX=0x%04X CX=0x%04X DX=0x%04X EX=0x%04X\n",
		r.IR,
		r.Regs.Get(registers.AX), r.Regs.Get(registers.BX), r.Regs.Get(registers.CX),
		r.Regs.Get(registers.DX), r.Regs.Get(registers.EX))
}
