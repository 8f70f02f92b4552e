package usb

import "hueloop/core"

// PollInterval is how often, in microseconds, the pump services a
// transport that has no interrupt hook.
const PollInterval = 1000

// Class is the device side of a CDC-ACM function as the echo session sees
// it: packet-granular, non-blocking transfers on the bulk endpoints.
type Class interface {
	// Connected reports whether the host has the port open.
	Connected() bool

	// MaxPacketSize returns the bulk endpoint packet size.
	MaxPacketSize() int

	// ReadPacket copies the next received packet into buf. It returns
	// ErrWouldBlock when nothing has arrived, ErrEndpointDisabled when the
	// port is closed and ErrBufferOverflow when buf is too small.
	ReadPacket(buf []byte) (int, error)

	// WritePacket queues p as one packet. A zero-length p sends a
	// zero-length packet.
	WritePacket(p []byte) error

	// Events is raised whenever a transfer completes or the connection
	// state changes.
	Events() *core.Signal
}

// Transport is the bus-level half of the USB stack: control requests,
// enumeration and moving packets in and out of the endpoint buffers.
type Transport interface {
	// Service handles whatever the controller has pending. It must not block.
	Service()

	// Events is raised by the controller interrupt. A nil signal means the
	// transport has no interrupt hook and must be polled.
	Events() *core.Signal
}
