// Package pcf8523 implements a driver for the PCF8523 Real-Time Clock (RTC),
// providing read-write of the current time and drift-limited syncing from an
// external time source such as a WWVB receiver. Alarms, clock drift
// compensation, and timer interrupts remain unimplemented.
//
// Datasheet: https://www.nxp.com/docs/en/data-sheet/PCF8523.pdf
package pcf8523

import (
	"time"

	"github.com/ajanata/drivers"
	"github.com/ajanata/drivers/internal/bcd"
)

type Device struct {
	bus     drivers.I2C
	Address uint8
}

func New(i2c drivers.I2C) Device {
	return Device{
		bus:     i2c,
		Address: Address,
	}
}

// LostPower reports whether the oscillator stopped since the time was last
// set, in which case Now can't be trusted.
func (d *Device) LostPower() (bool, error) {
	buf := [1]byte{}
	err := d.bus.ReadRegister(d.Address, Status, buf[:])
	if err != nil {
		return false, err
	}
	return buf[0]&oscillatorStopped != 0, nil
}

// Initialized reports whether battery switchover has been configured, which
// Set does.
func (d *Device) Initialized() (bool, error) {
	buf := [1]byte{}
	err := d.bus.ReadRegister(d.Address, Control3, buf[:])
	if err != nil {
		return false, err
	}
	return buf[0]&powerManagementMask != powerManagementMask, nil
}

// Set writes t, which must fall in the years 2000-2099, and starts the clock.
func (d *Device) Set(t time.Time) error {
	rbuf := [1]byte{}
	err := d.bus.ReadRegister(d.Address, Control1, rbuf[:])
	if err != nil {
		return err
	}
	// do not change cap_sel or second/alarm/correction interrupts
	// ensure RTC is running and 24-hour mode is selected
	rbuf[0] &= 0b1000_0111
	err = d.bus.WriteRegister(d.Address, Control1, rbuf[:])
	if err != nil {
		return err
	}

	buf := []byte{
		bcd.FromDec(t.Second()),
		bcd.FromDec(t.Minute()),
		bcd.FromDec(t.Hour()),
		bcd.FromDec(t.Day()),
		bcd.FromDec(int(t.Weekday())),
		bcd.FromDec(int(t.Month())),
		bcd.FromDec(t.Year() - 2000),
	}
	err = d.bus.WriteRegister(d.Address, Time, buf)
	if err != nil {
		return err
	}
	// turn on battery switchover mode, turn off battery-related interrupts
	return d.bus.WriteRegister(d.Address, Control3, []byte{0})
}

// Now reads the current time, in UTC.
func (d *Device) Now() (time.Time, error) {
	buf := [7]byte{}
	err := d.bus.ReadRegister(d.Address, Time, buf[:])
	if err != nil {
		return time.Time{}, err
	}

	seconds := bcd.ToDec(buf[0] & 0x7F)
	minute := bcd.ToDec(buf[1] & 0x7F)
	hour := bcd.ToDec(buf[2] & 0x3F)
	day := bcd.ToDec(buf[3] & 0x3F)
	// we don't need to read the weekday
	month := time.Month(bcd.ToDec(buf[5] & 0x1F))
	year := bcd.ToDec(buf[6]) + 2000

	return time.Date(year, month, day, hour, minute, seconds, 0, time.UTC), nil
}

// Sync sets the clock to t if it lost power or is off by more than maxDrift,
// and reports whether it did. Use it to discipline the RTC from a radio time
// source without rewriting the clock on every reception.
func (d *Device) Sync(t time.Time, maxDrift time.Duration) (bool, error) {
	lost, err := d.LostPower()
	if err != nil {
		return false, err
	}
	if !lost {
		now, err := d.Now()
		if err != nil {
			return false, err
		}
		drift := now.Sub(t)
		if drift < 0 {
			drift = -drift
		}
		if drift <= maxDrift {
			return false, nil
		}
	}
	return true, d.Set(t.UTC())
}
