package tester

// Pin is a mock drivers.Pin. Output levels are recorded; input levels come
// from Input when set, otherwise from the last level written.
type Pin struct {
	level bool

	// Sets records every level written with Set.
	Sets []bool

	// Reads counts Get calls.
	Reads int

	// Input, when set, returns the level seen by the n-th Get call
	// (starting at 1).
	Input func(n int) bool
}

// NewPin returns a low pin.
func NewPin() *Pin {
	return &Pin{}
}

// HighAfter returns a pin whose Get reports high from the n-th read on.
func HighAfter(n int) *Pin {
	return &Pin{Input: func(i int) bool { return i >= n }}
}

// Get implements drivers.Pin.
func (p *Pin) Get() bool {
	p.Reads++
	if p.Input != nil {
		return p.Input(p.Reads)
	}
	return p.level
}

// Set implements drivers.Pin.
func (p *Pin) Set(high bool) {
	p.level = high
	p.Sets = append(p.Sets, high)
}

// Level returns the last level written.
func (p *Pin) Level() bool {
	return p.level
}
