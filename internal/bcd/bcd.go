// Package bcd converts between packed binary-coded decimal bytes, as used by
// clock and time-code chips, and plain integers.
package bcd

// ToDec converts a packed BCD byte to its decimal value. The high nibble is
// the tens digit and the low nibble the ones digit. Nibbles above 9 are not
// rejected and yield meaningless results.
func ToDec(b uint8) int {
	return int(b>>4)*10 + int(b&0x0F)
}

// FromDec converts a value in the range 0-99 to packed BCD.
func FromDec(dec int) uint8 {
	return uint8(dec + 6*(dec/10))
}
