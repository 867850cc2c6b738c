package es100

import (
	"errors"
	"fmt"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"

	"github.com/ajanata/drivers/tester"
)

type fixture struct {
	bus    *tester.I2CBus
	chip   *tester.I2CDevice8
	intPin *tester.Pin
	enPin  *tester.Pin
	dev    *Device
	sleeps []time.Duration
}

func newFixture(c *qt.C, cfg Config) *fixture {
	f := &fixture{
		bus:   tester.NewI2CBus(c),
		enPin: tester.NewPin(),
	}
	f.chip = f.bus.NewDevice(Address)
	f.chip.Registers[DeviceID] = 0x10
	if cfg.InterruptPin == nil {
		f.intPin = tester.HighAfter(1)
		cfg.InterruptPin = f.intPin
	}
	cfg.EnablePin = f.enPin
	f.dev = New(f.bus)
	f.dev.sleep = func(d time.Duration) {
		f.sleeps = append(f.sleeps, d)
	}
	c.Assert(f.dev.Configure(cfg), qt.IsNil)
	return f
}

// receive loads the registers as the chip leaves them after a reception.
func (f *fixture) receive(status uint8, regs ...uint8) {
	f.chip.Registers[IRQStatusReg] = irqRxComplete
	f.chip.Registers[Status0Reg] = status
	copy(f.chip.Registers[Year:], regs)
}

func TestConfigure(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, Config{})
	c.Assert(f.dev.Address, qt.Equals, uint8(Address))
	c.Assert(f.enPin.Sets, qt.DeepEquals, []bool{false})
	c.Assert(f.dev.State(), qt.Equals, Disabled)

	err := New(f.bus).Configure(Config{})
	c.Assert(err, qt.ErrorIs, ErrNotConfigured)
}

func TestNotConfigured(t *testing.T) {
	c := qt.New(t)
	bus := tester.NewI2CBus(c)
	chip := bus.NewDevice(Address)
	dev := New(bus)
	c.Assert(dev.Enable(), qt.ErrorIs, ErrNotConfigured)
	dev.Disable()
	c.Assert(dev.State(), qt.Equals, Disabled)

	c.Assert(dev.StartReception(Antenna1, false), qt.ErrorIs, ErrNotConfigured)
	c.Assert(dev.StartTrackingReception(Antenna2), qt.ErrorIs, ErrNotConfigured)
	c.Assert(dev.StartRx(true), qt.ErrorIs, ErrNotConfigured)
	c.Assert(dev.StopReception(), qt.ErrorIs, ErrNotConfigured)
	c.Assert(chip.Transfers, qt.HasLen, 0)
}

func TestEnableWaitsForReady(t *testing.T) {
	c := qt.New(t)
	intPin := tester.HighAfter(5)
	f := newFixture(c, Config{InterruptPin: intPin})

	var readsAtSettle int
	f.dev.sleep = func(d time.Duration) {
		readsAtSettle = intPin.Reads
		f.sleeps = append(f.sleeps, d)
	}

	c.Assert(f.dev.Enable(), qt.IsNil)
	c.Assert(intPin.Sets, qt.DeepEquals, []bool{false})
	c.Assert(f.enPin.Sets, qt.DeepEquals, []bool{false, true})
	c.Assert(intPin.Reads, qt.Equals, 5)
	c.Assert(readsAtSettle, qt.Equals, 5)
	c.Assert(f.sleeps, qt.DeepEquals, []time.Duration{SettleDelay})
	c.Assert(f.dev.State(), qt.Equals, Enabled)

	f.dev.Disable()
	c.Assert(f.enPin.Level(), qt.IsFalse)
	c.Assert(f.dev.State(), qt.Equals, Disabled)
}

func TestEnableBounded(t *testing.T) {
	c := qt.New(t)
	intPin := tester.NewPin()
	f := newFixture(c, Config{InterruptPin: intPin, MaxReadyPolls: 10})

	err := f.dev.Enable()
	c.Assert(err, qt.ErrorIs, ErrTimeout)
	c.Assert(intPin.Reads, qt.Equals, 10)
	c.Assert(f.sleeps, qt.HasLen, 0)
	c.Assert(f.dev.State(), qt.Equals, AwaitingReady)
	c.Assert(f.enPin.Level(), qt.IsTrue)

	// ready on the last allowed poll still counts
	f.intPin = tester.HighAfter(10)
	f.dev.intPin = f.intPin
	c.Assert(f.dev.Enable(), qt.IsNil)
	c.Assert(f.dev.State(), qt.Equals, Enabled)
}

func TestStartReception(t *testing.T) {
	for _, tc := range []struct {
		antenna Antenna
		single  bool
		want    uint8
	}{
		{Antenna1, false, 0x01},
		{Antenna2, false, 0x09},
		{Antenna1, true, 0x05},
		{Antenna2, true, 0x03},
	} {
		t.Run(fmt.Sprintf("%v single=%v", tc.antenna, tc.single), func(t *testing.T) {
			c := qt.New(t)
			f := newFixture(c, Config{})
			c.Assert(f.dev.StartReception(tc.antenna, tc.single), qt.IsNil)
			c.Assert(f.chip.Writes, qt.DeepEquals, []tester.Write{{Reg: Control0, Val: tc.want}})
			c.Assert(f.chip.Reads, qt.Equals, 1)

			st, err := f.dev.Control0()
			c.Assert(err, qt.IsNil)
			c.Assert(st.Start, qt.IsTrue)
			c.Assert(st.Encode(), qt.Equals, tc.want)
		})
	}
}

func TestStartReceptionVerifyFails(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, Config{})
	// chip ignores the antenna disable bits
	f.chip.OnWrite = func(reg, val uint8) uint8 {
		return val &^ control0AntennaMask
	}
	err := f.dev.StartReception(Antenna1, true)
	c.Assert(err, qt.ErrorIs, ErrVerify)
	c.Assert(err, qt.ErrorMatches, `.*wrote 0x05, read 0x01`)
	// no retry
	c.Assert(f.chip.Writes, qt.HasLen, 1)

	c.Assert(f.dev.StartReception(Antenna1, false), qt.IsNil)
}

func TestStartReceptionInvalidAntenna(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, Config{})
	c.Assert(f.dev.StartReception(3, false), qt.ErrorIs, ErrInvalidAntenna)
	c.Assert(f.dev.StartTrackingReception(0), qt.ErrorIs, ErrInvalidAntenna)
	c.Assert(f.chip.Writes, qt.HasLen, 0)
}

func TestTrackingAndStop(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, Config{})
	c.Assert(f.dev.StartTrackingReception(Antenna1), qt.IsNil)
	c.Assert(f.dev.StartTrackingReception(Antenna2), qt.IsNil)
	c.Assert(f.dev.StartRx(false), qt.IsNil)
	c.Assert(f.dev.StartRx(true), qt.IsNil)
	c.Assert(f.dev.StopReception(), qt.IsNil)
	c.Assert(f.chip.Writes, qt.DeepEquals, []tester.Write{
		{Reg: Control0, Val: 0x15},
		{Reg: Control0, Val: 0x13},
		{Reg: Control0, Val: 0x01},
		{Reg: Control0, Val: 0x13},
		{Reg: Control0, Val: 0x00},
	})

	st, err := f.dev.Control0()
	c.Assert(err, qt.IsNil)
	c.Assert(st, qt.Equals, Control0State{StartAntenna: Antenna1})

	f.chip.OnWrite = func(reg, val uint8) uint8 { return 0x01 }
	c.Assert(f.dev.StopReception(), qt.ErrorIs, ErrVerify)
}

func TestRegisterReadTransfers(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, Config{})
	_, err := f.dev.DeviceID()
	c.Assert(err, qt.IsNil)
	// address write and data read are separate transfers, with a stop between
	c.Assert(f.chip.Transfers, qt.DeepEquals, []tester.Transfer{
		{W: []byte{DeviceID}, R: 0},
		{W: nil, R: 1},
	})
}

func TestRegisterWriteTransfers(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, Config{})
	c.Assert(f.dev.StopReception(), qt.IsNil)
	c.Assert(f.chip.Transfers, qt.DeepEquals, []tester.Transfer{
		{W: []byte{Control0, 0x00}, R: 0},
		{W: []byte{Control0}, R: 0},
		{W: nil, R: 1},
	})
}

func TestClockSwitching(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, Config{})
	id, err := f.dev.DeviceID()
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.Equals, uint8(0x10))
	c.Assert(f.bus.BaudChanges, qt.DeepEquals, []uint32{ClockFrequency, BusFrequency})
	c.Assert(f.bus.Baud, qt.Equals, uint32(BusFrequency))

	f = newFixture(c, Config{FixedClock: true})
	_, err = f.dev.DeviceID()
	c.Assert(err, qt.IsNil)
	c.Assert(f.bus.BaudChanges, qt.HasLen, 0)
}

func TestClockRestoredOnError(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, Config{ClockFrequency: 50_000, BusFrequency: 1_000_000})
	f.chip.Err = tester.ErrNack
	_, err := f.dev.Status0()
	c.Assert(err, qt.ErrorIs, tester.ErrNack)
	c.Assert(f.bus.Baud, qt.Equals, uint32(1_000_000))
	c.Assert(f.dev.StopReception(), qt.ErrorIs, tester.ErrNack)
}

func TestDateTime(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, Config{})
	f.receive(0x01, 0x23, 0x12, 0x31, 0x23, 0x59, 0x58, 0x03, 0x10, 0x02)

	dt, err := f.dev.DateTime()
	c.Assert(err, qt.IsNil)
	c.Assert(dt, qt.Equals, DateTime{Year: 23, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 58})

	next, err := f.dev.NextDST()
	c.Assert(err, qt.IsNil)
	c.Assert(next, qt.Equals, NextDST{Month: 3, Day: 10, Hour: 2})
}

func TestLocalDateTime(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, Config{TimezoneOffset: -5, DST: true})
	// DST active
	f.receive(0b0110_0001, 0x24, 0x07, 0x01, 0x02, 0x30, 0x00)

	dt, err := f.dev.LocalDateTime()
	c.Assert(err, qt.IsNil)
	c.Assert(dt, qt.Equals, DateTime{Year: 24, Month: 6, Day: 30, Hour: 22, Minute: 30})

	f.dev.SetTimezone(-5, false)
	dt, err = f.dev.LocalDateTime()
	c.Assert(err, qt.IsNil)
	c.Assert(dt.Hour, qt.Equals, 21)
}

func TestReading(t *testing.T) {
	c := qt.New(t)
	ticks := uint32(0)
	f := newFixture(c, Config{
		TimezoneOffset: 1,
		Ticks:          func() uint32 { return ticks },
	})
	f.receive(0b1000_0011, 0x24, 0x01, 0x01, 0x00, 0x00, 0x07, 0x03, 0x31, 0x01)

	ticks = 123_456
	f.dev.IRQ()
	ticks = 999

	r, err := f.dev.Reading()
	c.Assert(err, qt.IsNil)
	want := Reading{
		IRQ: IRQStatus{ReceptionComplete: true},
		Status: Status0{
			ReceptionOK: true,
			Antenna:     Antenna2,
			LeapSecond:  LeapSecondNone,
			DST:         DSTInactive,
			Tracking:    true,
		},
		UTC:       DateTime{Year: 24, Month: 1, Day: 1, Second: 7},
		Local:     DateTime{Year: 24, Month: 1, Day: 1, Hour: 1, Second: 7},
		NextDST:   NextDST{Month: 3, Day: 31, Hour: 1},
		Timestamp: 123_456,
	}
	if diff := cmp.Diff(want, r); diff != "" {
		c.Fatalf("reading mismatch (-want +got):\n%s", diff)
	}
}

func TestReadingNoReception(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, Config{})
	f.chip.Registers[IRQStatusReg] = irqCycleComplete
	f.chip.Registers[Status0Reg] = 0xFF

	r, err := f.dev.Reading()
	c.Assert(err, qt.IsNil)
	c.Assert(r.IRQ, qt.Equals, IRQStatus{CycleComplete: true})
	c.Assert(r.Status.ReceptionOK, qt.IsFalse)
	c.Assert(r.UTC, qt.Equals, DateTime{})
	c.Assert(f.chip.Reads, qt.Equals, 1)
}

func TestReadingBusError(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, Config{})
	boom := errors.New("boom")
	f.chip.Err = boom
	_, err := f.dev.Reading()
	c.Assert(err, qt.ErrorIs, boom)
}

type recordLogger []string

func (l *recordLogger) Printf(format string, v ...interface{}) {
	*l = append(*l, fmt.Sprintf(format, v...))
}

func TestLogger(t *testing.T) {
	c := qt.New(t)
	var log recordLogger
	f := newFixture(c, Config{Logger: &log})
	_, err := f.dev.DeviceID()
	c.Assert(err, qt.IsNil)
	c.Assert(log, qt.DeepEquals, recordLogger{"es100: read 0x0D = 0x10"})
}
