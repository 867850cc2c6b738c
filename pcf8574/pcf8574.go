// Package pcf8574 is a driver for the PCF8574 I2C GPIO expander.
//
// Each line is quasi-bidirectional: set high it is weakly pulled up and can
// be read, set low it sinks current. A line reads high only if it is set high
// and nothing outside pulls it down.
//
// Individual lines are available as drivers.Pin through Pin, so devices that
// need a couple of control lines, like the ES100 enable and IRQ lines, can be
// wired to an expander instead of the microcontroller.
//
// Datasheet: https://cdn-learn.adafruit.com/assets/assets/000/113/910/original/pcf8574.pdf
package pcf8574

import (
	"sync"

	"github.com/ajanata/drivers"
)

const DefaultAddress = 0x20

type Device struct {
	bus  drivers.I2C
	addr uint16

	mu sync.Mutex
	// output latches as we've defined them
	state uint8
	// error from the last transfer made through a Pin
	err error
}

type Config struct {
	Address uint8
}

// Report is a snapshot of every line's level.
type Report uint8

// New creates a new driver on the specified preconfigured I2C bus. The
// datasheet claims a maximum speed of 100 kHz.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:   bus,
		addr:  DefaultAddress,
		state: 0xFF,
	}
}

func (d *Device) Configure(c Config) {
	if c.Address == 0 {
		c.Address = DefaultAddress
	}
	d.addr = uint16(c.Address)
}

// SetPin sets a single line: true for the weak pullup, false to sink current.
func (d *Device) SetPin(pin uint8, val bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if val {
		d.state |= 1 << pin
	} else {
		d.state &^= 1 << pin
	}
	return d.send()
}

// SetAll sets every line at once from its bit in state.
func (d *Device) SetAll(state uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = state
	return d.send()
}

func (d *Device) send() error {
	buf := [1]byte{d.state}
	return d.bus.Tx(d.addr, buf[:], nil)
}

// Read reads the level of every line.
func (d *Device) Read() (Report, error) {
	var buf [1]byte
	// the chip doesn't have any registers and just returns the data directly when read
	err := d.bus.Tx(d.addr, nil, buf[:])
	return Report(buf[0]), err
}

// Pin reports whether line p is high.
func (r Report) Pin(p uint8) bool {
	return r&(1<<p) != 0
}

// Pin returns line n as a drivers.Pin. drivers.Pin cannot report errors, so a
// failed transfer reads as low and is kept for Err.
func (d *Device) Pin(n uint8) *Pin {
	return &Pin{dev: d, n: n}
}

// InputPin returns line n as a drivers.Pin that is only ever released. A
// line set low can't be read, so Set on an input line always releases it.
func (d *Device) InputPin(n uint8) *Pin {
	return &Pin{dev: d, n: n, input: true}
}

// Err returns and clears the error of the last failed Pin transfer.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.err
	d.err = nil
	return err
}

func (d *Device) keep(err error) {
	if err != nil {
		d.mu.Lock()
		d.err = err
		d.mu.Unlock()
	}
}

// Pin is a single expander line.
type Pin struct {
	dev   *Device
	n     uint8
	input bool
}

// Get reads the line. For a line set low this is always false.
func (p *Pin) Get() bool {
	r, err := p.dev.Read()
	p.dev.keep(err)
	return err == nil && r.Pin(p.n)
}

// Set drives the line: high releases it to the weak pullup, low sinks it.
func (p *Pin) Set(high bool) {
	p.dev.keep(p.dev.SetPin(p.n, high || p.input))
}

// High releases the line.
func (p *Pin) High() {
	p.Set(true)
}

// Low sinks the line.
func (p *Pin) Low() {
	p.Set(false)
}
