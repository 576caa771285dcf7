package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	dotmatrix "github.com/teodor/go-dotmatrix"
	"github.com/teodor/go-dotmatrix/dotmatrix/debug"
)

// cyclesPerFrame is one LCD frame worth of M-cycles (154 lines x 114).
const cyclesPerFrame = 17556

func main() {
	app := cli.NewApp()
	app.Name = "dotmatrix"
	app.Description = "A headless DMG emulator core driver"
	app.Usage = "dotmatrix [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run",
			Value: 60,
		},
		cli.BoolFlag{
			Name:  "serial-stdout",
			Usage: "Forward link port output to stdout",
		},
		cli.StringFlag{
			Name:  "boot-rom",
			Usage: "Path to a 256-byte DMG boot image (default: embedded stub)",
		},
		cli.StringFlag{
			Name:  "snapshot",
			Usage: "Write the final frame as a grayscale PNG to this path",
		},
		cli.BoolFlag{
			Name:  "text-frame",
			Usage: "Print the final frame to stdout using block characters",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return err
	}

	var opts []dotmatrix.Option
	if c.Bool("serial-stdout") {
		opts = append(opts, dotmatrix.WithSerialWriter(os.Stdout))
	}
	if bootPath := c.String("boot-rom"); bootPath != "" {
		boot, err := os.ReadFile(bootPath)
		if err != nil {
			return err
		}
		opts = append(opts, dotmatrix.WithBootROM(boot))
	}

	gb, err := dotmatrix.New(rom, opts...)
	if err != nil {
		return err
	}

	frames := c.Int("frames")
	slog.Info("Running headless", "rom", romPath, "frames", frames)

	consumed := gb.Run(uint64(frames) * cyclesPerFrame)
	slog.Info("Run complete", "cycles", consumed, "pc", fmt.Sprintf("0x%04X", gb.CPUSnapshot().PC))

	if path := c.String("snapshot"); path != "" {
		if err := debug.SaveFrameGrayPNG(gb.Framebuffer(), path); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		slog.Info("Snapshot saved", "path", path)
	}

	if c.Bool("text-frame") {
		for _, line := range debug.RenderFrameText(gb.Framebuffer()) {
			fmt.Println(line)
		}
	}

	return nil
}
