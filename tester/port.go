package tester

// I2CPort is a mock register-less device such as a quasi-bidirectional GPIO
// expander: writes latch the output byte, reads return the pin levels.
type I2CPort struct {
	addr uint8

	// Output is the last byte written to the device.
	Output uint8

	// Sink holds lines pulled low by the outside world. A line reads high
	// only if its output latch is high and it is not sunk.
	Sink uint8

	// Writes counts write transfers.
	Writes int
}

// NewI2CPort returns a port device with all latches high, as after power-up.
func NewI2CPort(addr uint8) *I2CPort {
	return &I2CPort{addr: addr, Output: 0xFF}
}

// Addr returns the device address.
func (p *I2CPort) Addr() uint8 {
	return p.addr
}

// Tx implements I2CDevice.
func (p *I2CPort) Tx(w, r []byte) error {
	if len(w) > 0 {
		p.Output = w[len(w)-1]
		p.Writes++
	}
	for i := range r {
		r[i] = p.Output &^ p.Sink
	}
	return nil
}
