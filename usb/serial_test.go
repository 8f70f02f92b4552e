package usb

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"hueloop/core"
)

// fakeSerial is an in-memory byte-stream port
type fakeSerial struct {
	dtr      bool
	rx       []byte
	tx       bytes.Buffer
	writeMax int // Bytes accepted per Write; 0 is unlimited
}

func (f *fakeSerial) Buffered() int { return len(f.rx) }
func (f *fakeSerial) DTR() bool     { return f.dtr }

func (f *fakeSerial) ReadByte() (byte, error) {
	if len(f.rx) == 0 {
		return 0, io.EOF
	}
	b := f.rx[0]
	f.rx = f.rx[1:]
	return b, nil
}

func (f *fakeSerial) Write(p []byte) (int, error) {
	if f.writeMax > 0 && len(p) > f.writeMax {
		p = p[:f.writeMax]
	}
	return f.tx.Write(p)
}

func TestSerialClassConnection(t *testing.T) {
	port := &fakeSerial{}
	c := NewSerialClass(port)

	c.Service()
	if c.Connected() || c.Events().Pending() {
		t.Fatal("Expected no connection and no event with DTR low")
	}

	port.dtr = true
	c.Service()
	if !c.Connected() {
		t.Error("Expected connection after DTR rises")
	}
	if !c.Events().Pending() {
		t.Error("Expected event on connect")
	}

	c.Events().Clear()
	port.rx = []byte("abc")
	c.Service()
	if !c.Events().Pending() {
		t.Error("Expected event while data is buffered")
	}
}

func TestSerialClassReadBoundedByPacket(t *testing.T) {
	port := &fakeSerial{dtr: true, rx: bytes.Repeat([]byte{7}, MaxPacketSize+10)}
	c := NewSerialClass(port)
	buf := make([]byte, MaxPacketSize)

	n, err := c.ReadPacket(buf)
	if err != nil || n != MaxPacketSize {
		t.Fatalf("ReadPacket = %d, %v; want %d bytes", n, err, MaxPacketSize)
	}
	n, err = c.ReadPacket(buf)
	if err != nil || n != 10 {
		t.Errorf("second ReadPacket = %d, %v; want 10 bytes", n, err)
	}
	if _, err := c.ReadPacket(buf); !errors.Is(err, ErrWouldBlock) {
		t.Errorf("Expected ErrWouldBlock on empty port, got %v", err)
	}

	port.dtr = false
	if _, err := c.ReadPacket(buf); !errors.Is(err, ErrEndpointDisabled) {
		t.Errorf("Expected ErrEndpointDisabled with DTR low, got %v", err)
	}
}

func TestSerialClassWrite(t *testing.T) {
	port := &fakeSerial{dtr: true}
	c := NewSerialClass(port)

	if err := c.WritePacket([]byte("hello")); err != nil {
		t.Fatalf("WritePacket failed: %v", err)
	}
	if err := c.WritePacket(nil); err != nil {
		t.Errorf("zero-length WritePacket failed: %v", err)
	}
	if port.tx.String() != "hello" {
		t.Errorf("Expected hello written, got %q", port.tx.String())
	}
	if err := c.WritePacket(make([]byte, MaxPacketSize+1)); !errors.Is(err, ErrBufferOverflow) {
		t.Errorf("Expected ErrBufferOverflow, got %v", err)
	}

	port.writeMax = 2
	if err := c.WritePacket([]byte("abc")); !errors.Is(err, io.ErrShortWrite) {
		t.Errorf("Expected short write error, got %v", err)
	}
}

func TestSerialClassEchoes(t *testing.T) {
	port := &fakeSerial{}
	c := NewSerialClass(port)
	clock := &core.FakeClock{}
	d := core.NewDispatcher(clock, clock)
	d.Spawn("usb", NewPump(c.Transport()))
	e := NewEcho(c)
	d.Spawn("echo", e)

	port.dtr = true
	port.rx = []byte("over the wire")
	for i := 0; i < 20; i++ {
		if d.RunOnce() == 0 {
			clock.Idle(d.NextDeadline())
		}
	}

	if port.tx.String() != "over the wire" {
		t.Errorf("Expected echo, got %q", port.tx.String())
	}
	if e.State() != Connected {
		t.Errorf("Expected %v, got %v", Connected, e.State())
	}

	port.dtr = false
	for i := 0; i < 20; i++ {
		if d.RunOnce() == 0 {
			clock.Idle(d.NextDeadline())
		}
	}
	if e.State() != WaitingForConnection {
		t.Errorf("Expected %v after DTR drops, got %v", WaitingForConnection, e.State())
	}
}

func TestSerialClassDropSeenByTransfer(t *testing.T) {
	port := &fakeSerial{dtr: true}
	c := NewSerialClass(port)
	c.Service()

	port.dtr = false
	if _, err := c.ReadPacket(make([]byte, MaxPacketSize)); !errors.Is(err, ErrEndpointDisabled) {
		t.Fatalf("Expected ErrEndpointDisabled, got %v", err)
	}
	if c.Connected() {
		t.Error("Expected Connected false once a read saw DTR low")
	}

	port.dtr = true
	c.Service()
	port.dtr = false
	if err := c.WritePacket([]byte("x")); !errors.Is(err, ErrEndpointDisabled) {
		t.Fatalf("Expected ErrEndpointDisabled, got %v", err)
	}
	if c.Connected() {
		t.Error("Expected Connected false once a write saw DTR low")
	}
}

func TestSerialClassCloseBetweenPolls(t *testing.T) {
	port := &fakeSerial{}
	c := NewSerialClass(port)
	clock := &core.FakeClock{}
	d := core.NewDispatcher(clock, clock)
	d.Spawn("usb", NewPump(c.Transport()))
	e := NewEcho(c)
	d.Spawn("echo", e)

	port.dtr = true
	port.rx = []byte("x")
	for i := 0; i < 10; i++ {
		if d.RunOnce() == 0 {
			clock.Idle(d.NextDeadline())
		}
	}
	if e.Stats().Sessions != 1 || port.tx.String() != "x" {
		t.Fatalf("Expected one session echoing x, got %+v tx=%q", e.Stats(), port.tx.String())
	}

	// Data arrives and is signalled, then the host closes the port before
	// the pump's next poll. The clock does not advance, so only the echo
	// task runs.
	port.rx = []byte("y")
	c.Service()
	port.dtr = false
	for i := 0; i < 50; i++ {
		d.RunOnce()
	}

	if got := e.Stats().Sessions; got != 1 {
		t.Errorf("Expected 1 session with DTR low, got %d", got)
	}
	if e.State() != WaitingForConnection {
		t.Errorf("Expected %v, got %v", WaitingForConnection, e.State())
	}
}
