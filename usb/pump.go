package usb

import "hueloop/core"

// Pump services a Transport from the dispatcher. With an interrupt hook it
// sleeps until the controller raises its signal; without one it polls every
// PollInterval.
type Pump struct {
	t Transport
}

// NewPump creates a pump for t
func NewPump(t Transport) *Pump {
	return &Pump{t: t}
}

// Poll implements core.Task. It never finishes.
func (p *Pump) Poll(now uint64) core.Wake {
	p.t.Service()
	if s := p.t.Events(); s != nil {
		return core.OnSignal(s)
	}
	return core.Until(now + PollInterval)
}
