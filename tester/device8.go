package tester

// I2CDevice8 represents a mock I2C device with 8-bit registers behind an
// auto-incrementing register pointer. A one byte write sets the pointer, a
// longer write sets the pointer and stores the remaining bytes, a read
// returns bytes starting at the pointer.
type I2CDevice8 struct {
	c    Failer
	addr uint8
	ptr  uint8

	// Registers holds the device's registers. It can be modified by the test.
	Registers [256]uint8

	// OnWrite, when set, decides what a register write actually stores.
	OnWrite func(reg, val uint8) uint8

	// Writes logs every register write in order.
	Writes []Write

	// Reads counts read transfers.
	Reads int

	// Transfers logs every Tx call in order.
	Transfers []Transfer

	// Err, when set, is returned from every transfer.
	Err error
}

// NewI2CDevice8 returns a new mock I2C device.
func NewI2CDevice8(c Failer, addr uint8) *I2CDevice8 {
	return &I2CDevice8{
		c:    c,
		addr: addr,
	}
}

// Addr returns the device address.
func (d *I2CDevice8) Addr() uint8 {
	return d.addr
}

// Tx implements I2CDevice.
func (d *I2CDevice8) Tx(w, r []byte) error {
	if d.Err != nil {
		return d.Err
	}
	d.Transfers = append(d.Transfers, Transfer{W: append([]byte(nil), w...), R: len(r)})
	if len(w) > 0 {
		d.ptr = w[0]
		for _, b := range w[1:] {
			if d.OnWrite != nil {
				b = d.OnWrite(d.ptr, b)
			}
			d.Registers[d.ptr] = b
			d.Writes = append(d.Writes, Write{Reg: d.ptr, Val: b})
			d.ptr++
		}
	}
	if len(r) > 0 {
		d.Reads++
		for i := range r {
			r[i] = d.Registers[d.ptr]
			d.ptr++
		}
	}
	return nil
}
