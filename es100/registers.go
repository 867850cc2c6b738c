package es100

import "time"

const (
	Address = 0x32 // I2C address for ES100

	Control0     = 0x00 // Reception control
	Control1     = 0x01 // Reception control, extended
	IRQStatusReg = 0x02 // Interrupt status, cleared on read
	Status0Reg   = 0x03 // Status of the last reception
	Year         = 0x04 // BCD, 00-99
	Month        = 0x05 // BCD, 01-12
	Day          = 0x06 // BCD, 01-31
	Hour         = 0x07 // BCD, 00-23
	Minute       = 0x08 // BCD, 00-59
	Second       = 0x09 // BCD, 00-59
	NextDSTMonth = 0x0A // BCD month of the next DST transition
	NextDSTDay   = 0x0B // BCD day of the next DST transition
	NextDSTHour  = 0x0C // BCD hour of the next DST transition
	DeviceID     = 0x0D // Device ID, reads 0x10 on ES100
)

// Control0 bits
const (
	control0Start       = 1 << 0
	control0Ant1Off     = 1 << 1
	control0Ant2Off     = 1 << 2
	control0StartAnt2   = 1 << 3
	control0TrackingOn  = 1 << 4
	control0AntennaMask = control0Ant1Off | control0Ant2Off
)

// Control0 command patterns. When the other antenna is disabled the start
// antenna is implied, so the start antenna bit is only used when both
// antennas are allowed.
const (
	rxAntenna1     = control0Start                                        // 0x01
	rxAntenna2     = control0Start | control0StartAnt2                    // 0x09
	rxAntenna1Only = control0Start | control0Ant2Off                      // 0x05
	rxAntenna2Only = control0Start | control0Ant1Off                      // 0x03
	trackAntenna1  = control0Start | control0Ant2Off | control0TrackingOn // 0x15
	trackAntenna2  = control0Start | control0Ant1Off | control0TrackingOn // 0x13
	rxStop         = 0x00
)

// IRQ status bits
const (
	irqRxComplete    = 1 << 0
	irqCycleComplete = 1 << 2
)

// Status0 bits
const (
	status0RxOK       = 1 << 0
	status0Antenna    = 1 << 1
	status0LeapMask   = 0b0001_1000
	status0LeapShift  = 3
	status0DSTMask    = 0b0110_0000
	status0DSTShift   = 5
	status0TrackingOn = 1 << 7
)

const (
	// ClockFrequency is the bus speed used for ES100 transfers; the chip
	// tops out at 100 kHz.
	ClockFrequency = 100_000
	// BusFrequency is the speed the bus is put back to after a transfer.
	BusFrequency = 400_000

	// SettleDelay is how long the chip needs after signalling ready before
	// it accepts commands.
	SettleDelay = 40 * time.Millisecond
)
