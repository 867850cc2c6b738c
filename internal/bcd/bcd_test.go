package bcd

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestToDec(t *testing.T) {
	c := qt.New(t)
	c.Assert(ToDec(0x00), qt.Equals, 0)
	c.Assert(ToDec(0x59), qt.Equals, 59)
	c.Assert(ToDec(0x99), qt.Equals, 99)
	c.Assert(ToDec(0x10), qt.Equals, 10)
}

func TestToDecAllDigits(t *testing.T) {
	c := qt.New(t)
	for hi := 0; hi <= 9; hi++ {
		for lo := 0; lo <= 9; lo++ {
			b := uint8(hi<<4 | lo)
			c.Assert(ToDec(b), qt.Equals, 10*int(b>>4)+int(b&0xF), qt.Commentf("byte 0x%02X", b))
			c.Assert(FromDec(ToDec(b)), qt.Equals, b)
		}
	}
}

func TestToDecIllegalNibbles(t *testing.T) {
	c := qt.New(t)
	// not detected, just arithmetic
	c.Assert(ToDec(0xA0), qt.Equals, 100)
	c.Assert(ToDec(0xFF), qt.Equals, 165)
	c.Assert(ToDec(0x0A), qt.Equals, 10)
}
