package es100

import "github.com/ajanata/drivers"

// readRegister writes the register address and reads one byte back in a
// separate transfer; the ES100 wants a stop between the two.
func (d *Device) readRegister(reg uint8) (val uint8, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	err = d.withClock(func() error {
		d.buf[0] = reg
		if err := d.bus.Tx(uint16(d.Address), d.buf[:1], nil); err != nil {
			return err
		}
		return d.bus.Tx(uint16(d.Address), nil, d.buf[1:2])
	})
	if err != nil {
		d.logf("read 0x%02X: %v", reg, err)
		return 0, err
	}
	d.logf("read 0x%02X = 0x%02X", reg, d.buf[1])
	return d.buf[1], nil
}

func (d *Device) writeRegister(reg, val uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.logf("write 0x%02X <- 0x%02X", reg, val)
	return d.withClock(func() error {
		d.buf[0] = reg
		d.buf[1] = val
		return d.bus.Tx(uint16(d.Address), d.buf[:2], nil)
	})
}

// withClock runs fn with the bus at the chip's clock frequency and puts the
// bus frequency back afterwards.
func (d *Device) withClock(fn func() error) (err error) {
	br, ok := d.bus.(drivers.BaudRater)
	if !ok || d.fixedClock || d.clockFreq == 0 {
		return fn()
	}
	if err := br.SetBaudRate(d.clockFreq); err != nil {
		return err
	}
	defer func() {
		if rerr := br.SetBaudRate(d.busFreq); err == nil {
			err = rerr
		}
	}()
	return fn()
}

func (d *Device) logf(format string, v ...interface{}) {
	if d.log != nil {
		d.log.Printf("es100: "+format, v...)
	}
}
