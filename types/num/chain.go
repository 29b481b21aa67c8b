package num

// DChain offers a chainable interface for decimals. Every Mul and Div truncates the
// intermediate result toward zero at Precision fractional digits, the same way the
// contract's fixed point arithmetic does.
type DChain struct {
	d Decimal
}

// DecChain starts a chain from d.
func DecChain(d Decimal) *DChain {
	return &DChain{
		d: d,
	}
}

// Get returns the final value.
func (d *DChain) Get() Decimal {
	return d.d
}

// Add adds any number of decimals together.
func (d *DChain) Add(vals ...Decimal) *DChain {
	for _, v := range vals {
		d.d = d.d.Add(v)
	}
	return d
}

// Sub subtracts any number of decimals from the chainable value.
func (d *DChain) Sub(vals ...Decimal) *DChain {
	for _, v := range vals {
		d.d = d.d.Sub(v)
	}
	return d
}

// Mul multiplies, obviously.
func (d *DChain) Mul(x Decimal) *DChain {
	d.d = d.d.Mul(x).Truncate(Precision)
	return d
}

// Div divides, truncating toward zero. Callers must not pass a zero divisor.
func (d *DChain) Div(x Decimal) *DChain {
	d.d = DivDown(d.d, x)
	return d
}

// DivDown returns a / b truncated toward zero at Precision digits.
func DivDown(a, b Decimal) Decimal {
	q, _ := a.QuoRem(b, Precision)
	return q
}
