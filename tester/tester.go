// Package tester contains mock structs to make it easier to test I2C devices
// and the pins wired next to them.
package tester

import (
	"errors"
	"fmt"
)

// Failer is used by the mocks to abort when they're used in unexpected ways,
// such as addressing a device that isn't on the bus. *testing.T and
// *quicktest.C both satisfy it.
type Failer interface {
	Fatalf(format string, args ...interface{})
	Helper()
}

// ErrNack is returned by the bus when a device is told to refuse transfers.
var ErrNack = errors.New("tester: device did not acknowledge")

// I2CDevice is a device that can sit on an I2CBus.
type I2CDevice interface {
	Addr() uint8
	Tx(w, r []byte) error
}

// I2CBus implements drivers.I2C and drivers.BaudRater by dispatching
// transfers to the mock devices added to it.
type I2CBus struct {
	c       Failer
	devices []I2CDevice

	// Baud is the current bus frequency, BaudChanges every value set.
	Baud        uint32
	BaudChanges []uint32
}

// NewI2CBus returns an empty bus.
func NewI2CBus(c Failer) *I2CBus {
	return &I2CBus{c: c}
}

// AddDevice attaches dev to the bus.
func (bus *I2CBus) AddDevice(dev I2CDevice) {
	bus.devices = append(bus.devices, dev)
}

// NewDevice creates an I2CDevice8 at addr and attaches it to the bus.
func (bus *I2CBus) NewDevice(addr uint8) *I2CDevice8 {
	dev := NewI2CDevice8(bus.c, addr)
	bus.AddDevice(dev)
	return dev
}

// ReadRegister implements drivers.I2C.
func (bus *I2CBus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return bus.Tx(uint16(addr), []byte{r}, buf)
}

// WriteRegister implements drivers.I2C.
func (bus *I2CBus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	w := make([]byte, 1+len(buf))
	w[0] = r
	copy(w[1:], buf)
	return bus.Tx(uint16(addr), w, nil)
}

// Tx implements drivers.I2C.
func (bus *I2CBus) Tx(addr uint16, w, r []byte) error {
	return bus.FindDevice(uint8(addr)).Tx(w, r)
}

// SetBaudRate implements drivers.BaudRater.
func (bus *I2CBus) SetBaudRate(br uint32) error {
	bus.Baud = br
	bus.BaudChanges = append(bus.BaudChanges, br)
	return nil
}

// FindDevice returns the device at addr, failing the test if there is none.
func (bus *I2CBus) FindDevice(addr uint8) I2CDevice {
	for _, dev := range bus.devices {
		if dev.Addr() == addr {
			return dev
		}
	}
	bus.c.Helper()
	bus.c.Fatalf("invalid device addr %#x passed to i2c bus", addr)
	panic("unreachable")
}

// Transfer records one Tx call: the bytes written and the number of bytes
// read. W is nil for a read-only transfer.
type Transfer struct {
	W []byte
	R int
}

// Write records a single register write seen by an I2CDevice8.
type Write struct {
	Reg, Val uint8
}

func (w Write) String() string {
	return fmt.Sprintf("0x%02X<-0x%02X", w.Reg, w.Val)
}
