package usb

import (
	"errors"
	"log/slog"

	"hueloop/core"
)

// SessionState is the connection state of an echo session.
type SessionState uint8

const (
	WaitingForConnection SessionState = iota
	Connected
)

func (s SessionState) String() string {
	switch s {
	case WaitingForConnection:
		return "waiting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Stats counts echo activity across sessions.
type Stats struct {
	Sessions uint32 // Connections seen
	Packets  uint32 // Packets echoed
	Bytes    uint32 // Payload bytes echoed
}

// Echo writes every packet received on a Class back to the host, one
// packet at a time, for as long as the firmware runs. A disconnect ends the
// session and the task waits for the next connection.
type Echo struct {
	class Class
	state SessionState
	buf   [MaxPacketSize]byte
	n     int
	held  bool // buf[:n] was read and is not yet written back
	stats Stats
	log   *slog.Logger
}

// NewEcho creates an echo task on c, waiting for a connection.
func NewEcho(c Class) *Echo {
	return &Echo{
		class: c,
		log:   core.Logger(core.ComponentUSB),
	}
}

// State returns the session state
func (e *Echo) State() SessionState {
	return e.state
}

// Stats returns the echo counters
func (e *Echo) Stats() Stats {
	return e.stats
}

// Poll implements core.Task. It never finishes.
func (e *Echo) Poll(now uint64) core.Wake {
	if e.state == WaitingForConnection {
		if !e.class.Connected() {
			return core.OnSignal(e.class.Events())
		}
		e.state = Connected
		e.stats.Sessions++
		e.log.Info("host connected", "session", e.stats.Sessions)
	}

	wake, err := e.echo()
	if err != nil {
		e.log.Info("host disconnected", "err", err)
		e.state = WaitingForConnection
		e.held = false
		return core.Yield()
	}
	return wake
}

// echo moves at most one packet from the OUT endpoint to the IN endpoint.
func (e *Echo) echo() (core.Wake, error) {
	if !e.held {
		size := e.class.MaxPacketSize()
		if size <= 0 || size > len(e.buf) {
			size = len(e.buf)
		}
		n, err := e.class.ReadPacket(e.buf[:size])
		if errors.Is(err, ErrWouldBlock) {
			return core.OnSignal(e.class.Events()), nil
		}
		if err != nil {
			return core.Wake{}, disconnect(err)
		}
		e.n = n
		e.held = true
		core.Trace(e.log, "rx", slog.Int("len", n))
	}

	err := e.class.WritePacket(e.buf[:e.n])
	if errors.Is(err, ErrWouldBlock) {
		return core.OnSignal(e.class.Events()), nil
	}
	if err != nil {
		return core.Wake{}, disconnect(err)
	}
	e.held = false
	e.stats.Packets++
	e.stats.Bytes += uint32(e.n)
	core.Trace(e.log, "tx", slog.Int("len", e.n))
	return core.Yield(), nil
}
