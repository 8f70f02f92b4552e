package usb

import (
	"bytes"
	"testing"
)

func TestPacketRingFull(t *testing.T) {
	var r packetRing
	for i := 0; i < ringSlots-1; i++ {
		if !r.Push([]byte{byte(i)}) {
			t.Fatalf("Push %d failed on a non-full ring", i)
		}
	}
	if r.Push([]byte{0xFF}) {
		t.Error("Expected Push to fail on a full ring")
	}
	if r.Len() != ringSlots-1 || r.Free() != 0 {
		t.Errorf("Expected Len=%d Free=0, got Len=%d Free=%d", ringSlots-1, r.Len(), r.Free())
	}
}

func TestPacketRingKeepsBoundaries(t *testing.T) {
	var r packetRing
	packets := [][]byte{
		{1, 2, 3},
		{},
		bytes.Repeat([]byte{0xAA}, MaxPacketSize),
		{4},
	}
	for _, p := range packets {
		if !r.Push(p) {
			t.Fatalf("Push(%d bytes) failed", len(p))
		}
	}
	for i, want := range packets {
		got, ok := r.Peek()
		if !ok {
			t.Fatalf("packet %d missing", i)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("packet %d: got %x, want %x", i, got, want)
		}
		r.Pop()
	}
	if _, ok := r.Peek(); ok {
		t.Error("Expected empty ring")
	}
}

func TestPacketRingWraps(t *testing.T) {
	var r packetRing
	for i := 0; i < 3*ringSlots; i++ {
		if !r.Push([]byte{byte(i)}) {
			t.Fatalf("Push %d failed", i)
		}
		got, _ := r.Peek()
		if len(got) != 1 || got[0] != byte(i) {
			t.Fatalf("iteration %d: got %x", i, got)
		}
		r.Pop()
	}
	if r.Len() != 0 {
		t.Errorf("Expected empty ring, got Len=%d", r.Len())
	}
}

func TestPacketRingRejectsOversize(t *testing.T) {
	var r packetRing
	if r.Push(make([]byte, MaxPacketSize+1)) {
		t.Error("Expected oversize packet to be rejected")
	}
	if r.Len() != 0 {
		t.Errorf("Expected nothing queued, got %d", r.Len())
	}
}
