package core

import "fmt"

// SignalFrame holds the buy and sell flags produced by one strategy,
// aligned index by index with the price series it was evaluated on.
type SignalFrame struct {
	Buy  []bool
	Sell []bool
}

// NewSignalFrame returns a frame of the given length with every flag false
func NewSignalFrame(length int) SignalFrame {
	return SignalFrame{
		Buy:  make([]bool, length),
		Sell: make([]bool, length),
	}
}

// Len returns the number of indexes covered by the frame
func (f SignalFrame) Len() int { return len(f.Buy) }

// Count returns the number of buy and sell signals
func (f SignalFrame) Count() (buys, sells int) {
	for i := range f.Buy {
		if f.Buy[i] {
			buys++
		}
		if f.Sell[i] {
			sells++
		}
	}
	return buys, sells
}

// Validate checks alignment and that no index carries both a buy and a sell
func (f SignalFrame) Validate(length int) error {
	if len(f.Buy) != length || len(f.Sell) != length {
		return NewInvalidParameter("signals", fmt.Sprintf("%d/%d", len(f.Buy), len(f.Sell)),
			fmt.Sprintf("length must match series length %d", length))
	}

	for i := range f.Buy {
		if f.Buy[i] && f.Sell[i] {
			return NewInvalidParameter("signals", i, "buy and sell on the same index")
		}
	}

	return nil
}
