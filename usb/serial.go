package usb

import (
	"fmt"
	"io"

	"hueloop/core"
)

// ByteSerial is a byte-stream CDC-ACM port, which is what TinyGo's
// machine.Serial is on boards with native USB. The runtime owns the USB
// controller and services it from its own interrupt handler.
type ByteSerial interface {
	Buffered() int
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
	DTR() bool
}

// SerialClass adapts a ByteSerial to Class. The port keeps no packet
// boundaries, so a read returns whatever is buffered up to one packet and
// never overflows. Zero-length writes are accepted and send nothing.
type SerialClass struct {
	port      ByteSerial
	maxPacket int
	open      bool // DTR as last observed
	events    core.Signal
}

// NewSerialClass wraps port
func NewSerialClass(port ByteSerial) *SerialClass {
	return &SerialClass{port: port, maxPacket: MaxPacketSize}
}

// Connected implements Class
func (s *SerialClass) Connected() bool {
	return s.open
}

// MaxPacketSize implements Class
func (s *SerialClass) MaxPacketSize() int {
	return s.maxPacket
}

// ReadPacket implements Class
func (s *SerialClass) ReadPacket(buf []byte) (int, error) {
	if s.hostClosed() {
		return 0, ErrEndpointDisabled
	}
	n := s.port.Buffered()
	if n == 0 {
		return 0, ErrWouldBlock
	}
	n = min(n, s.maxPacket, len(buf))
	for i := 0; i < n; i++ {
		b, err := s.port.ReadByte()
		if err != nil {
			return i, err
		}
		buf[i] = b
	}
	return n, nil
}

// WritePacket implements Class
func (s *SerialClass) WritePacket(p []byte) error {
	if s.hostClosed() {
		return ErrEndpointDisabled
	}
	if len(p) > s.maxPacket {
		return ErrBufferOverflow
	}
	if len(p) == 0 {
		return nil
	}
	n, err := s.port.Write(p)
	if err != nil {
		return err
	}
	if n < len(p) {
		return fmt.Errorf("wrote %d of %d bytes: %w", n, len(p), io.ErrShortWrite)
	}
	return nil
}

// Events implements Class
func (s *SerialClass) Events() *core.Signal {
	return &s.events
}

// hostClosed reports DTR low. A drop seen here is latched at once so
// Connected agrees with the failed transfer before the next Service.
func (s *SerialClass) hostClosed() bool {
	if s.port.DTR() {
		return false
	}
	if s.open {
		s.open = false
		s.events.Raise()
	}
	return true
}

// Service latches the DTR state and raises the class signal when it changed
// or received data is waiting.
func (s *SerialClass) Service() {
	open := s.port.DTR()
	if open != s.open {
		s.open = open
		s.events.Raise()
	}
	if open && s.port.Buffered() > 0 {
		s.events.Raise()
	}
}

// Transport returns the polled transport view of the port. The runtime's
// USB interrupt is not exposed, so its Events is nil.
func (s *SerialClass) Transport() Transport {
	return serialTransport{s}
}

type serialTransport struct {
	s *SerialClass
}

func (t serialTransport) Service() {
	t.s.Service()
}

func (t serialTransport) Events() *core.Signal {
	return nil
}
