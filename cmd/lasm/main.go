// Command lasm assembles a Pendragon source file into a binary.
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v2"

	"pendragon/asm"
	"pendragon/config"
	"pendragon/internal/logging"
)

func main() {
	app := &cli.App{
		Name:      "lasm",
		Usage:     "assemble a Pendragon source file",
		UsageText: "lasm <source.asm> [-o <out.bin>] [-v]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "o", Usage: "output path"},
			&cli.BoolFlag{Name: "v", Usage: "print per-pass progress"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowAppHelp(c)
		return cli.Exit("", 1)
	}
	sourcePath := c.Args().Get(0)

	cfg, err := config.Load()
	if err != nil {
		return cli.Exit(fmt.Sprintf("lasm: %v", err), 1)
	}

	outPath := c.String("o")
	if outPath == "" {
		outPath = cfg.Assembler.DefaultOutputPath
	}
	verbose := c.Bool("v") || cfg.Assembler.VerboseByDefault

	level := logging.ParseLevel(cfg.Logging.Level)
	if verbose && level < logging.LevelTrace {
		level = logging.LevelTrace
	}
	log := logging.New("lasm", level)

	src, err := os.ReadFile(sourcePath) // #nosec G304 -- user-supplied path is the program's whole purpose
	if err != nil {
		return cli.Exit(fmt.Sprintf("lasm: %v", err), 1)
	}

	var progress asm.ProgressFunc
	if verbose {
		progress = func(msg string) { log.Tracef("%s", msg) }
	}

	out, bin, errs := asm.AssembleVerbose(string(src), sourcePath, progress)
	if errs != nil && errs.HasErrors() {
		for _, e := range errs.Errors {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return cli.Exit("", 1)
	}

	if err := os.WriteFile(outPath, bin, 0644); err != nil { // #nosec G306 -- assembled binaries are not secrets
		return cli.Exit(fmt.Sprintf("lasm: %v", err), 1)
	}

	if verbose {
		log.Infof("wrote %s: data=%d bytes code=%d bytes", outPath, len(out.Data), len(out.Code))
	}
	return nil
}
