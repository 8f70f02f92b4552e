package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"hueloop/core"
	"hueloop/firmware"
	"hueloop/host/probe"
	"hueloop/host/serial"
	"hueloop/host/sim"
	"hueloop/usb"
)

var (
	device    = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud      = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	count     = flag.Int("count", 100, "Number of packets to send")
	size      = flag.Int("size", usb.MaxPacketSize, "Largest packet payload in bytes")
	seed      = flag.Int64("seed", 1, "Seed for packet sizes and contents")
	timeout   = flag.Duration("timeout", time.Second, "Per-packet echo timeout")
	simulated = flag.Bool("sim", false, "Probe an in-process simulated device instead of -device")
	verbose   = flag.Bool("verbose", false, "Enable verbose output")
)

var errEchoFailed = errors.New("echo check failed")

func main() {
	flag.Parse()

	level := new(slog.LevelVar)
	if *verbose {
		level.Set(slog.LevelDebug)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run probes the port and closes it on every path
func run(log *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	port, err := openPort(ctx, log)
	if err != nil {
		return err
	}
	defer port.Close()

	cfg := probe.Config{Count: *count, Size: *size, Seed: *seed, Timeout: *timeout}
	p, err := probe.New(port, cfg, log)
	if err != nil {
		return err
	}

	report, err := p.Run(ctx)
	fmt.Println(report)
	if err != nil {
		return err
	}
	if !report.OK() {
		return errEchoFailed
	}
	return nil
}

// openPort opens the device named by -device, or starts a simulated one
func openPort(ctx context.Context, log *slog.Logger) (serial.Port, error) {
	if *simulated {
		fmt.Println("Probing simulated device")
		fw := firmware.DefaultConfig(firmware.ModeCooperative)
		if *verbose {
			// Firmware logs carry their component attribute
			core.SetLogOutput(os.Stderr)
			fw.LogLevel = slog.LevelDebug
		}
		dev, err := sim.Start(ctx, sim.Config{
			Firmware:    fw,
			ReadTimeout: 100 * time.Millisecond,
			Log:         log,
		})
		if err != nil {
			return nil, err
		}
		return dev, nil
	}

	fmt.Printf("Probing %s...\n", *device)
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := port.Flush(); err != nil {
		log.Warn("flush", "err", err)
	}
	return port, nil
}
