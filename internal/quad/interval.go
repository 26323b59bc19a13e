package quad

// Interval is one closed sub-interval of the integration domain,
// carrying its quadrature estimates and error indicators for every
// integrand in the batch. An Interval is immutable once pushed to the
// queue; subdivision replaces it wholesale with its two children.
type Interval struct {
	// Low and High are the interval bounds, Low < High
	Low  float64
	High float64

	// Estimates holds the Kronrod estimate per integrand
	Estimates []float64

	// Errors holds the embedded-rule error indicator per integrand
	Errors []float64

	// Rounds holds the round-off error floor per integrand
	Rounds []float64

	// ErrEstimate is the subdivision priority: the worst per-integrand
	// error on this interval. Always >= 0.
	ErrEstimate float64
}

// Mid returns the interval midpoint, the bisection point
func (iv *Interval) Mid() float64 {
	return 0.5 * (iv.Low + iv.High)
}

// Width returns the interval length
func (iv *Interval) Width() float64 {
	return iv.High - iv.Low
}
