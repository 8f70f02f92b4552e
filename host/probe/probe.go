// Package probe checks a USB serial echo device: it writes packets of
// pseudo-random size and content and verifies each comes back unchanged.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"hueloop/usb"
)

// ErrNoEcho is returned when a packet is not echoed before the timeout.
var ErrNoEcho = errors.New("probe: no echo")

// Config controls a probe run.
type Config struct {
	Count   int           // Packets to send
	Size    int           // Largest payload; sizes are drawn from 1..Size
	Seed    int64         // Seed for sizes and payloads
	Timeout time.Duration // Per-packet echo timeout
}

// DefaultConfig returns a short probe of full-size packets
func DefaultConfig() Config {
	return Config{
		Count:   100,
		Size:    usb.MaxPacketSize,
		Seed:    1,
		Timeout: time.Second,
	}
}

// applyDefaults fills in missing configuration values
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Count <= 0 {
		c.Count = def.Count
	}
	if c.Size <= 0 {
		c.Size = def.Size
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
}

// Report summarizes a probe run.
type Report struct {
	Sent       int // Packets written
	Echoed     int // Packets read back in full
	Mismatches int // Echoes that differed from what was sent
	Bytes      int // Payload bytes echoed
	Elapsed    time.Duration
}

// OK reports whether every packet came back intact
func (r Report) OK() bool {
	return r.Sent > 0 && r.Echoed == r.Sent && r.Mismatches == 0
}

func (r Report) String() string {
	return fmt.Sprintf("sent=%d echoed=%d mismatches=%d bytes=%d elapsed=%v",
		r.Sent, r.Echoed, r.Mismatches, r.Bytes, r.Elapsed.Round(time.Millisecond))
}

// Prober runs echo checks over a port.
type Prober struct {
	port io.ReadWriter
	cfg  Config
	rng  *rand.Rand
	log  *slog.Logger

	out [usb.MaxPacketSize]byte
	in  [usb.MaxPacketSize]byte
}

// New creates a prober. log may be nil.
func New(port io.ReadWriter, cfg Config, log *slog.Logger) (*Prober, error) {
	cfg.applyDefaults()
	if cfg.Size > usb.MaxPacketSize {
		return nil, fmt.Errorf("probe: size %d exceeds max packet size %d", cfg.Size, usb.MaxPacketSize)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Prober{
		port: port,
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
		log:  log,
	}, nil
}

// Run sends Count packets, one at a time, waiting for each echo. It stops
// early on a write error, a missing echo or cancellation of ctx; the report
// covers the packets sent so far.
func (p *Prober) Run(ctx context.Context) (Report, error) {
	var r Report
	start := time.Now()

	for i := 0; i < p.cfg.Count; i++ {
		if err := ctx.Err(); err != nil {
			r.Elapsed = time.Since(start)
			return r, err
		}

		packet := p.next()
		if _, err := p.port.Write(packet); err != nil {
			r.Elapsed = time.Since(start)
			return r, fmt.Errorf("packet %d: write: %w", i, err)
		}
		r.Sent++

		echo, err := p.readEcho(len(packet))
		if err != nil {
			r.Elapsed = time.Since(start)
			return r, fmt.Errorf("packet %d (%d bytes): %w", i, len(packet), err)
		}
		r.Echoed++
		r.Bytes += len(echo)

		if !bytes.Equal(echo, packet) {
			r.Mismatches++
			p.log.Warn("echo mismatch", "packet", i, "sent", fmt.Sprintf("%x", packet), "got", fmt.Sprintf("%x", echo))
			continue
		}
		p.log.Debug("echo ok", "packet", i, "len", len(packet))
	}
	r.Elapsed = time.Since(start)
	return r, nil
}

// next fills the output buffer with a packet of random size and content
func (p *Prober) next() []byte {
	n := 1 + p.rng.Intn(p.cfg.Size)
	packet := p.out[:n]
	p.rng.Read(packet)
	return packet
}

// readEcho reads n bytes, tolerating read timeouts until the probe timeout
func (p *Prober) readEcho(n int) ([]byte, error) {
	deadline := time.Now().Add(p.cfg.Timeout)
	got := 0
	for got < n {
		m, err := p.port.Read(p.in[got:n])
		got += m
		switch {
		case err == nil || errors.Is(err, io.EOF):
			if m == 0 && time.Now().After(deadline) {
				return p.in[:got], fmt.Errorf("%w after %d of %d bytes", ErrNoEcho, got, n)
			}
		default:
			return p.in[:got], err
		}
	}
	return p.in[:n], nil
}
