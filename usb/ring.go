package usb

// ringSlots is the number of packets a ring holds. One slot is kept free to
// tell a full ring from an empty one.
const ringSlots = 8

// packetRing is a circular buffer of whole packets. Unlike a byte FIFO it
// keeps packet boundaries, so a zero-length packet is a real entry.
type packetRing struct {
	buf   [ringSlots][MaxPacketSize]byte
	lens  [ringSlots]int
	read  int
	write int
}

// Push appends p. It reports false when the ring is full or p is larger
// than a packet.
func (r *packetRing) Push(p []byte) bool {
	if len(p) > MaxPacketSize {
		return false
	}
	next := (r.write + 1) % ringSlots
	if next == r.read {
		return false
	}
	r.lens[r.write] = copy(r.buf[r.write][:], p)
	r.write = next
	return true
}

// Peek returns the oldest packet without removing it.
func (r *packetRing) Peek() ([]byte, bool) {
	if r.read == r.write {
		return nil, false
	}
	return r.buf[r.read][:r.lens[r.read]], true
}

// Pop removes the oldest packet.
func (r *packetRing) Pop() {
	if r.read != r.write {
		r.read = (r.read + 1) % ringSlots
	}
}

// Len returns the number of packets queued
func (r *packetRing) Len() int {
	if r.write >= r.read {
		return r.write - r.read
	}
	return ringSlots - r.read + r.write
}

// Free returns the number of packets that can still be pushed
func (r *packetRing) Free() int {
	return ringSlots - r.Len() - 1
}

// Reset drops every queued packet
func (r *packetRing) Reset() {
	r.read = 0
	r.write = 0
}
