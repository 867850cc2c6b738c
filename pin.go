package drivers

// Pin is a single digital line. It is notably implemented by the machine.Pin
// type once configured, and by pcf8574 expander lines.
type Pin interface {
	Get() bool
	Set(high bool)
}
