package domain

// Money is a monetary amount in minor currency units (cents, pence, yen).
// Integer arithmetic avoids floating-point drift across fee stages.
type Money int64

// ApplyBps applies a basis-point rate (1 bps = 0.01%) with round-half-up at
// the minor-unit boundary. Rounding happens exactly once per call; callers
// must not compound rounded intermediates.
func (m Money) ApplyBps(bps int64) Money {
	if m <= 0 || bps <= 0 {
		return 0
	}
	return Money((int64(m)*bps + 5000) / 10000)
}

// Range is an inclusive low/high money interval. Lows and highs aggregate
// independently; nothing is averaged, so the range stays honest.
type Range struct {
	Low  Money `json:"low"`
	High Money `json:"high"`
}

// Add returns the component-wise sum of two ranges.
func (r Range) Add(o Range) Range {
	return Range{Low: r.Low + o.Low, High: r.High + o.High}
}

// Shift returns the range with both bounds moved by m.
func (r Range) Shift(m Money) Range {
	return Range{Low: r.Low + m, High: r.High + m}
}

// Mid is the midpoint of the range, rounded half up.
func (r Range) Mid() Money {
	return (r.Low + r.High + 1) / 2
}

// IsZero reports whether both bounds are zero.
func (r Range) IsZero() bool { return r.Low == 0 && r.High == 0 }
