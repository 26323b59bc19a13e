package quad

import (
	"math"

	"github.com/AleCandido/quad/internal/rule"
	"github.com/AleCandido/quad/pkg/utils"
)

const (
	// epmach is the largest relative spacing of float64
	epmach = 2.220446049250313e-16

	// uflow is the smallest positive normal float64 magnitude
	uflow = 2.2250738585072014e-308
)

// applyRule computes the embedded-rule estimates for one interval from
// the batch values sampled at r.Abscissas(low, high). For every
// integrand it forms the Kronrod estimate (the reported value), the
// lower-order Gauss estimate, and the standard error indicator
// |kronrod - gauss| sharpened by the QUADPACK resasc damping and
// floored at the round-off level of the function values.
//
// values is indexed [node][integrand] in the canonical node order of
// rule.Abscissas: center first, then (left, right) per table entry.
func applyRule(r *rule.Rule, low, high float64, values [][]float64) *Interval {
	n := len(values[0])
	m := r.GaussOrder()

	hlgth := 0.5 * (high - low)
	dhlgth := math.Abs(hlgth)

	iv := &Interval{
		Low:       low,
		High:      high,
		Estimates: make([]float64, n),
		Errors:    make([]float64, n),
		Rounds:    make([]float64, n),
	}

	for k := 0; k < n; k++ {
		fc := values[0][k]

		resk := r.WGK[m] * fc
		resabs := math.Abs(resk)
		resg := 0.0
		if r.GaussIncludesCenter() {
			resg = r.WG[len(r.WG)-1] * fc
		}

		for j := 0; j < m; j++ {
			fv1 := values[1+2*j][k]
			fv2 := values[2+2*j][k]
			fsum := fv1 + fv2

			resk += r.WGK[j] * fsum
			resabs += r.WGK[j] * (math.Abs(fv1) + math.Abs(fv2))
			if j%2 == 1 {
				resg += r.WG[j/2] * fsum
			}
		}

		reskh := 0.5 * resk
		resasc := r.WGK[m] * math.Abs(fc-reskh)
		for j := 0; j < m; j++ {
			fv1 := values[1+2*j][k]
			fv2 := values[2+2*j][k]
			resasc += r.WGK[j] * (math.Abs(fv1-reskh) + math.Abs(fv2-reskh))
		}

		resabs *= dhlgth
		resasc *= dhlgth

		abserr := math.Abs((resk - resg) * hlgth)
		if resasc != 0 && abserr != 0 {
			abserr = resasc * math.Min(1, math.Pow(200*abserr/resasc, 1.5))
		}

		rounderr := 50 * epmach * resabs
		if rounderr > uflow {
			abserr = math.Max(abserr, rounderr)
		}

		iv.Estimates[k] = resk * hlgth
		iv.Errors[k] = abserr
		iv.Rounds[k] = rounderr
	}

	iv.ErrEstimate = utils.MaxVec(iv.Errors)
	return iv
}
