package usb

import (
	"sync"

	"hueloop/core"
)

// Loopback is an in-memory USB link: a device end implementing Class and
// Transport, and a host end with Open, Close, Send and Recv. Each bulk
// endpoint buffers a single packet; Service moves packets between the
// endpoints and the host queues the way a controller interrupt would.
// Both ends may be used from different goroutines.
type Loopback struct {
	mu        sync.Mutex
	maxPacket int

	open      bool // Host side has the port open
	connected bool // State the device has observed

	toDevice packetRing // Sent by the host, not yet on the bus
	toHost   packetRing // Delivered to the host, not yet received

	rx     [MaxPacketSize]byte // OUT endpoint buffer
	rxLen  int
	rxFull bool
	tx     [MaxPacketSize]byte // IN endpoint buffer
	txLen  int
	txFull bool

	events core.Signal // Class events
	irq    core.Signal // Controller interrupt
}

// NewLoopback creates a closed link whose device end announces maxPacket
// as its packet size. Zero selects MaxPacketSize.
func NewLoopback(maxPacket int) *Loopback {
	if maxPacket <= 0 || maxPacket > MaxPacketSize {
		maxPacket = MaxPacketSize
	}
	return &Loopback{maxPacket: maxPacket}
}

// Device end.

// Connected implements Class
func (l *Loopback) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

// MaxPacketSize implements Class
func (l *Loopback) MaxPacketSize() int {
	return l.maxPacket
}

// ReadPacket implements Class
func (l *Loopback) ReadPacket(buf []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.connected {
		return 0, ErrEndpointDisabled
	}
	if !l.rxFull {
		return 0, ErrWouldBlock
	}
	if l.rxLen > len(buf) {
		return 0, ErrBufferOverflow
	}
	n := copy(buf, l.rx[:l.rxLen])
	l.rxFull = false
	l.irq.Raise()
	return n, nil
}

// WritePacket implements Class
func (l *Loopback) WritePacket(p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.connected {
		return ErrEndpointDisabled
	}
	if len(p) > l.maxPacket {
		return ErrBufferOverflow
	}
	if l.txFull {
		return ErrWouldBlock
	}
	l.txLen = copy(l.tx[:], p)
	l.txFull = true
	l.irq.Raise()
	return nil
}

// Events implements Class
func (l *Loopback) Events() *core.Signal {
	return &l.events
}

// Service implements Transport
func (l *Loopback) Service() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.open != l.connected {
		l.connected = l.open
		if !l.connected {
			l.rxFull = false
			l.txFull = false
		}
		l.events.Raise()
	}
	if !l.connected {
		return
	}

	if !l.rxFull {
		if p, ok := l.toDevice.Peek(); ok {
			l.rxLen = copy(l.rx[:], p)
			l.rxFull = true
			l.toDevice.Pop()
			l.events.Raise()
		}
	}
	if l.txFull && l.toHost.Push(l.tx[:l.txLen]) {
		l.txFull = false
		l.events.Raise()
	}
}

// Transport returns the bus-level view of the device end. It is a separate
// value because Class and Transport both declare Events.
func (l *Loopback) Transport() Transport {
	return loopbackTransport{l}
}

type loopbackTransport struct {
	l *Loopback
}

func (t loopbackTransport) Service() {
	t.l.Service()
}

func (t loopbackTransport) Events() *core.Signal {
	return &t.l.irq
}

// Host end.

// Open connects the host. Packets queued before a previous Close are gone.
func (l *Loopback) Open() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.open {
		return
	}
	l.open = true
	l.toDevice.Reset()
	l.toHost.Reset()
	l.irq.Raise()
}

// Close disconnects the host.
func (l *Loopback) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.open = false
	l.irq.Raise()
}

// Send queues p for the device. It returns ErrEndpointDisabled when the
// port is closed and ErrWouldBlock when the queue is full.
func (l *Loopback) Send(p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return ErrEndpointDisabled
	}
	if len(p) > MaxPacketSize {
		return ErrBufferOverflow
	}
	if !l.toDevice.Push(p) {
		return ErrWouldBlock
	}
	l.irq.Raise()
	return nil
}

// Recv copies the next packet from the device into buf. It returns
// ErrWouldBlock when nothing has arrived yet.
func (l *Loopback) Recv(buf []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return 0, ErrEndpointDisabled
	}
	p, ok := l.toHost.Peek()
	if !ok {
		return 0, ErrWouldBlock
	}
	if len(p) > len(buf) {
		return 0, ErrBufferOverflow
	}
	n := copy(buf, p)
	l.toHost.Pop()
	l.irq.Raise()
	return n, nil
}
