package es100

import "strconv"

// Antenna identifies one of the two ferrite antenna inputs.
type Antenna uint8

const (
	Antenna1 Antenna = 1
	Antenna2 Antenna = 2
)

func (a Antenna) valid() bool {
	return a == Antenna1 || a == Antenna2
}

func (a Antenna) String() string {
	return "antenna " + strconv.Itoa(int(a))
}

func antennaFromBit(set bool) Antenna {
	if set {
		return Antenna2
	}
	return Antenna1
}

// LeapSecond announces a leap second at the end of the current month.
type LeapSecond uint8

const (
	LeapSecondNone LeapSecond = iota
	LeapSecondNegative
	LeapSecondPositive
)

func (l LeapSecond) String() string {
	switch l {
	case LeapSecondNone:
		return "none"
	case LeapSecondNegative:
		return "negative"
	case LeapSecondPositive:
		return "positive"
	}
	return "LeapSecond(" + strconv.Itoa(int(l)) + ")"
}

// DSTState is the daylight saving time state broadcast with the time code.
type DSTState uint8

const (
	DSTInactive DSTState = iota
	DSTEndsToday
	DSTBeginsToday
	DSTActive
)

func (s DSTState) String() string {
	switch s {
	case DSTInactive:
		return "inactive"
	case DSTEndsToday:
		return "ends today"
	case DSTBeginsToday:
		return "begins today"
	case DSTActive:
		return "active"
	}
	return "DSTState(" + strconv.Itoa(int(s)) + ")"
}

// InEffect reports whether local time is an hour ahead of standard time at
// the moment of reception.
func (s DSTState) InEffect() bool {
	return s == DSTBeginsToday || s == DSTActive
}

// Control0State is the decoded Control0 register.
type Control0State struct {
	Start            bool
	Antenna1Disabled bool
	Antenna2Disabled bool
	StartAntenna     Antenna
	Tracking         bool
}

// DecodeControl0 decodes a raw Control0 byte. Reserved bits are ignored.
func DecodeControl0(b uint8) Control0State {
	return Control0State{
		Start:            b&control0Start != 0,
		Antenna1Disabled: b&control0Ant1Off != 0,
		Antenna2Disabled: b&control0Ant2Off != 0,
		StartAntenna:     antennaFromBit(b&control0StartAnt2 != 0),
		Tracking:         b&control0TrackingOn != 0,
	}
}

// Encode returns the Control0 byte for s.
func (s Control0State) Encode() uint8 {
	var b uint8
	if s.Start {
		b |= control0Start
	}
	if s.Antenna1Disabled {
		b |= control0Ant1Off
	}
	if s.Antenna2Disabled {
		b |= control0Ant2Off
	}
	if s.StartAntenna == Antenna2 {
		b |= control0StartAnt2
	}
	if s.Tracking {
		b |= control0TrackingOn
	}
	return b
}

// IRQStatus is the decoded IRQ status register.
type IRQStatus struct {
	// ReceptionComplete is set after a successful reception.
	ReceptionComplete bool
	// CycleComplete is set when a reception cycle ended without a result.
	CycleComplete bool
}

// DecodeIRQStatus decodes a raw IRQ status byte.
func DecodeIRQStatus(b uint8) IRQStatus {
	return IRQStatus{
		ReceptionComplete: b&irqRxComplete != 0,
		CycleComplete:     b&irqCycleComplete != 0,
	}
}

// Status0 is the decoded Status0 register. Every field other than
// ReceptionOK is only meaningful when ReceptionOK is true.
type Status0 struct {
	ReceptionOK bool
	Antenna     Antenna
	LeapSecond  LeapSecond
	DST         DSTState
	// Tracking is set when the reception was a tracking operation rather
	// than a one minute frame.
	Tracking bool
}

// DecodeStatus0 decodes a raw Status0 byte. Leap second bits 00 and 01 both
// mean no leap second, 10 a negative and 11 a positive one.
func DecodeStatus0(b uint8) Status0 {
	leap := LeapSecondNone
	switch (b & status0LeapMask) >> status0LeapShift {
	case 0b10:
		leap = LeapSecondNegative
	case 0b11:
		leap = LeapSecondPositive
	}
	return Status0{
		ReceptionOK: b&status0RxOK != 0,
		Antenna:     antennaFromBit(b&status0Antenna != 0),
		LeapSecond:  leap,
		DST:         DSTState((b & status0DSTMask) >> status0DSTShift),
		Tracking:    b&status0TrackingOn != 0,
	}
}
