// Package es100 implements a driver for the Everset ES100 WWVB receiver. The
// chip demodulates the 60 kHz BPSK time code itself; the driver powers it up,
// starts and stops receptions, and decodes the status, date/time and next
// DST transition registers.
//
// Enable blocks until the chip raises its IRQ line. By default it waits
// forever, matching the chip's documented power-up handshake: a chip that
// never answers hangs the caller. Set Config.MaxReadyPolls to bound the wait.
package es100

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ajanata/drivers"
	"github.com/ajanata/drivers/internal/bcd"
)

// Errors returned by the driver.
var (
	ErrVerify         = errors.New("es100: control register read-back mismatch")
	ErrTimeout        = errors.New("es100: timed out waiting for ready")
	ErrNotConfigured  = errors.New("es100: not configured")
	ErrInvalidAntenna = errors.New("es100: invalid antenna")
)

// State is the power state of the chip as driven through the enable line.
type State uint8

const (
	Disabled State = iota
	AwaitingReady
	Enabled
)

func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case AwaitingReady:
		return "awaiting ready"
	case Enabled:
		return "enabled"
	}
	return "unknown"
}

// Logger receives debug traces of register traffic. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...interface{})
}

type Config struct {
	// Address defaults to 0x32.
	Address uint8
	// InterruptPin is the chip's IRQ output, EnablePin its EN input. Both are
	// required.
	InterruptPin drivers.Pin
	EnablePin    drivers.Pin

	// ClockFrequency is used for every transfer when the bus implements
	// drivers.BaudRater, BusFrequency is restored afterwards. Defaults are
	// 100 kHz and 400 kHz. FixedClock leaves the bus frequency alone.
	ClockFrequency uint32
	BusFrequency   uint32
	FixedClock     bool

	// TimezoneOffset in hours is added to the received UTC time by
	// LocalDateTime. With DST set, one more hour is added while daylight
	// saving time is in effect. Unlike the Arduino ES100 library, the offset
	// applies whether or not DST is set; that library shifted nothing at all
	// unless DST was enabled.
	TimezoneOffset int
	DST            bool

	// MaxReadyPolls bounds the number of IRQ line reads in Enable. Zero waits
	// forever.
	MaxReadyPolls int

	// Ticks is sampled by IRQ. Defaults to milliseconds since Configure.
	Ticks func() uint32

	Logger Logger
}

// Device wraps an I2C connection to an ES100 device.
type Device struct {
	bus     drivers.I2C
	Address uint8

	// serializes register transfers, a register read is two bus transactions
	mu  sync.Mutex
	buf [2]byte

	intPin drivers.Pin
	enPin  drivers.Pin
	state  State

	clockFreq  uint32
	busFreq    uint32
	fixedClock bool

	tzOffset int
	dst      bool
	maxPolls int

	ticks func() uint32
	stamp uint32 // written by IRQ, accessed atomically

	log   Logger
	sleep func(time.Duration)
}

// New creates a new ES100 driver on the provided I2C bus. The bus does not
// need to run at 100 kHz, the driver slows it down for its own transfers.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:     bus,
		Address: Address,
		sleep:   time.Sleep,
	}
}

// Configure applies c and drives the enable line low, leaving the chip
// disabled.
func (d *Device) Configure(c Config) error {
	if c.InterruptPin == nil || c.EnablePin == nil {
		return fmt.Errorf("%w: interrupt and enable pins are required", ErrNotConfigured)
	}
	if c.Address == 0 {
		c.Address = Address
	}
	if c.ClockFrequency == 0 {
		c.ClockFrequency = ClockFrequency
	}
	if c.BusFrequency == 0 {
		c.BusFrequency = BusFrequency
	}
	if c.Ticks == nil {
		start := time.Now()
		c.Ticks = func() uint32 {
			return uint32(time.Since(start).Milliseconds())
		}
	}

	d.Address = c.Address
	d.intPin = c.InterruptPin
	d.enPin = c.EnablePin
	d.clockFreq = c.ClockFrequency
	d.busFreq = c.BusFrequency
	d.fixedClock = c.FixedClock
	d.tzOffset = c.TimezoneOffset
	d.dst = c.DST
	d.maxPolls = c.MaxReadyPolls
	d.ticks = c.Ticks
	d.log = c.Logger

	d.enPin.Set(false)
	d.state = Disabled
	return nil
}

// SetTimezone changes the offset applied by LocalDateTime.
func (d *Device) SetTimezone(offset int, dst bool) {
	d.tzOffset = offset
	d.dst = dst
}

// State returns the power state.
func (d *Device) State() State {
	return d.state
}

// Enable powers the chip up and blocks until it signals ready on the IRQ
// line, then waits SettleDelay. Without Config.MaxReadyPolls it never gives
// up. When the poll budget runs out ErrTimeout is returned and the enable
// line is left high.
func (d *Device) Enable() error {
	if d.enPin == nil {
		return ErrNotConfigured
	}
	// clear any stale ready level before powering up
	d.intPin.Set(false)
	d.enPin.Set(true)
	d.state = AwaitingReady
	d.logf("enable: waiting for ready")

	for polls := 1; !d.intPin.Get(); polls++ {
		if d.maxPolls > 0 && polls >= d.maxPolls {
			return fmt.Errorf("%w after %d polls", ErrTimeout, polls)
		}
	}

	d.sleep(SettleDelay)
	d.state = Enabled
	d.logf("enable: done")
	return nil
}

// Disable powers the chip down.
func (d *Device) Disable() {
	if d.enPin == nil {
		return
	}
	d.enPin.Set(false)
	d.state = Disabled
	d.logf("disable")
}

// StartReception starts a one minute frame reception beginning on antenna.
// With singleAntenna set the other antenna is disabled for this reception.
// The command is read back and ErrVerify returned if it didn't stick.
func (d *Device) StartReception(antenna Antenna, singleAntenna bool) error {
	var cmd uint8
	switch {
	case antenna == Antenna1 && !singleAntenna:
		cmd = rxAntenna1
	case antenna == Antenna2 && !singleAntenna:
		cmd = rxAntenna2
	case antenna == Antenna1:
		cmd = rxAntenna1Only
	case antenna == Antenna2:
		cmd = rxAntenna2Only
	default:
		return fmt.Errorf("%w: %d", ErrInvalidAntenna, antenna)
	}
	return d.writeControl0(cmd)
}

// StartTrackingReception starts a tracking reception on antenna with the
// other antenna disabled. The command is verified like StartReception.
func (d *Device) StartTrackingReception(antenna Antenna) error {
	switch antenna {
	case Antenna1:
		return d.writeControl0(trackAntenna1)
	case Antenna2:
		return d.writeControl0(trackAntenna2)
	}
	return fmt.Errorf("%w: %d", ErrInvalidAntenna, antenna)
}

// StartRx starts a reception with the original single-call command set:
// a one minute frame on either antenna, or tracking on antenna 2. It is
// verified like every other control write.
func (d *Device) StartRx(tracking bool) error {
	if tracking {
		return d.writeControl0(trackAntenna2)
	}
	return d.writeControl0(rxAntenna1)
}

// StopReception stops any reception in progress.
func (d *Device) StopReception() error {
	return d.writeControl0(rxStop)
}

func (d *Device) writeControl0(cmd uint8) error {
	if d.enPin == nil {
		return ErrNotConfigured
	}
	if err := d.writeRegister(Control0, cmd); err != nil {
		return err
	}
	got, err := d.readRegister(Control0)
	if err != nil {
		return err
	}
	if got != cmd {
		return fmt.Errorf("%w: wrote 0x%02X, read 0x%02X", ErrVerify, cmd, got)
	}
	return nil
}

// Control0 reads and decodes the Control0 register.
func (d *Device) Control0() (Control0State, error) {
	b, err := d.readRegister(Control0)
	return DecodeControl0(b), err
}

// IRQStatus reads and decodes the IRQ status register. Reading it clears
// the IRQ line.
func (d *Device) IRQStatus() (IRQStatus, error) {
	b, err := d.readRegister(IRQStatusReg)
	return DecodeIRQStatus(b), err
}

// Status0 reads and decodes the Status0 register. Check ReceptionOK before
// trusting the other fields.
func (d *Device) Status0() (Status0, error) {
	b, err := d.readRegister(Status0Reg)
	return DecodeStatus0(b), err
}

// DeviceID reads the device ID register.
func (d *Device) DeviceID() (uint8, error) {
	return d.readRegister(DeviceID)
}

// DateTime reads the UTC date and time of the last successful reception.
func (d *Device) DateTime() (DateTime, error) {
	var v [6]int
	for i, reg := range [6]uint8{Year, Month, Day, Hour, Minute, Second} {
		b, err := d.readRegister(reg)
		if err != nil {
			return DateTime{}, err
		}
		v[i] = bcd.ToDec(b)
	}
	return DateTime{
		Year:   v[0],
		Month:  v[1],
		Day:    v[2],
		Hour:   v[3],
		Minute: v[4],
		Second: v[5],
	}, nil
}

// LocalDateTime reads the date and time of the last successful reception
// and shifts it by the configured timezone and DST setting.
func (d *Device) LocalDateTime() (DateTime, error) {
	dt, err := d.DateTime()
	if err != nil {
		return DateTime{}, err
	}
	st, err := d.Status0()
	if err != nil {
		return DateTime{}, err
	}
	return d.local(dt, st), nil
}

func (d *Device) local(dt DateTime, st Status0) DateTime {
	shift := d.tzOffset
	if d.dst && st.DST.InEffect() {
		shift++
	}
	return Normalize(dt, shift)
}

// NextDST reads the next daylight saving time transition.
func (d *Device) NextDST() (NextDST, error) {
	var v [3]int
	for i, reg := range [3]uint8{NextDSTMonth, NextDSTDay, NextDSTHour} {
		b, err := d.readRegister(reg)
		if err != nil {
			return NextDST{}, err
		}
		v[i] = bcd.ToDec(b)
	}
	return NextDST{Month: v[0], Day: v[1], Hour: v[2]}, nil
}

// IRQ latches the current tick count. Call it from the IRQ pin's interrupt
// handler; the value shows up in the next Reading and marks the second
// boundary the reception refers to.
func (d *Device) IRQ() {
	if d.ticks != nil {
		atomic.StoreUint32(&d.stamp, d.ticks())
	}
}

// Timestamp returns the tick count latched by the last IRQ.
func (d *Device) Timestamp() uint32 {
	return atomic.LoadUint32(&d.stamp)
}

// Reading is everything known after a reception cycle.
type Reading struct {
	IRQ    IRQStatus
	Status Status0
	// UTC is the received time, Local the same shifted by the timezone
	// configuration.
	UTC       DateTime
	Local     DateTime
	NextDST   NextDST
	Timestamp uint32
}

// Reading reads the IRQ status and, if a reception completed, the time
// registers, next DST transition and Status0. Otherwise only IRQ and
// Timestamp are filled and Status.ReceptionOK is false.
func (d *Device) Reading() (Reading, error) {
	r := Reading{Timestamp: d.Timestamp()}

	var err error
	r.IRQ, err = d.IRQStatus()
	if err != nil {
		return r, err
	}
	if !r.IRQ.ReceptionComplete {
		return r, nil
	}

	r.UTC, err = d.DateTime()
	if err != nil {
		return r, err
	}
	r.NextDST, err = d.NextDST()
	if err != nil {
		return r, err
	}
	r.Status, err = d.Status0()
	if err != nil {
		return r, err
	}
	r.Local = d.local(r.UTC, r.Status)
	return r, nil
}
