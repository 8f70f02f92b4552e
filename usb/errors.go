package usb

import (
	"errors"
	"fmt"
)

// Transport errors reported by a Class.
var (
	// ErrEndpointDisabled indicates the host closed the port or the device
	// was deconfigured; the session is over.
	ErrEndpointDisabled = errors.New("endpoint disabled")

	// ErrBufferOverflow indicates a packet larger than the buffer offered.
	// Buffers are sized to the negotiated packet size, so this is a
	// protocol violation.
	ErrBufferOverflow = errors.New("buffer overflow")

	// ErrWouldBlock indicates the transfer cannot complete yet; retry
	// after the class event signal is raised.
	ErrWouldBlock = errors.New("transfer pending")
)

// Disconnected ends an echo session. It wraps the transport error that
// revealed the host had gone.
type Disconnected struct {
	Err error
}

func (d *Disconnected) Error() string {
	return fmt.Sprintf("disconnected: %v", d.Err)
}

func (d *Disconnected) Unwrap() error {
	return d.Err
}

// disconnect maps a transport error to a Disconnected. A buffer overflow
// cannot be recovered from and panics.
func disconnect(err error) *Disconnected {
	if errors.Is(err, ErrBufferOverflow) {
		panic("usb: " + err.Error())
	}
	return &Disconnected{Err: err}
}
