package canopy

import "math"

// extendToZero stretches a single-signed domain so it includes zero,
// keeping its orientation. Mixed-sign domains are returned unchanged.
func extendToZero(d [2]float64) [2]float64 {
	lo, hi := minmax(d)
	switch {
	case lo >= 0:
		lo = 0
	case hi <= 0:
		hi = 0
	default:
		return d
	}
	return orient(d, lo, hi)
}

// niceDomain rounds a domain outward to multiples of half a power-of-ten
// magnitude chosen from span/count. The result covers the input and
// overshoots each side by at most half a magnitude.
func niceDomain(d [2]float64, count int) [2]float64 {
	lo, hi := minmax(d)
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return d
	}
	if lo == hi {
		raw := math.Abs(lo) / float64(count)
		if raw == 0 {
			raw = 1
		}
		return orient(d, lo-raw, hi+raw)
	}

	raw := (hi - lo) / float64(count)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	half := mag / 2

	nlo := math.Floor(lo/half) * half
	if nlo > lo {
		nlo -= half
	}
	nhi := math.Ceil(hi/half) * half
	if nhi < hi {
		nhi += half
	}
	return orient(d, nlo, nhi)
}

// snapDomain rounds a domain outward to multiples of step.
func snapDomain(d [2]float64, step float64) [2]float64 {
	lo, hi := minmax(d)
	nlo := math.Floor(lo/step) * step
	if nlo > lo {
		nlo -= step
	}
	nhi := math.Ceil(hi/step) * step
	if nhi < hi {
		nhi += step
	}
	if nlo == nhi {
		nhi += step
	}
	return orient(d, nlo, nhi)
}

// orient returns [lo, hi] in the direction of d.
func orient(d [2]float64, lo, hi float64) [2]float64 {
	if d[1] < d[0] {
		return [2]float64{hi, lo}
	}
	return [2]float64{lo, hi}
}

// tickStep picks a 1, 2 or 5 times power-of-ten step giving roughly count
// ticks over [lo, hi].
func tickStep(lo, hi float64, count int) float64 {
	span := hi - lo
	if span <= 0 || count <= 0 {
		return 0
	}
	raw := span / float64(count)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch err := raw / mag; {
	case err >= 7.07:
		return mag * 10
	case err >= 3.16:
		return mag * 5
	case err >= 1.41:
		return mag * 2
	}
	return mag
}

// stepTicks lists the multiples of step inside [lo, hi].
func stepTicks(lo, hi, step float64) []float64 {
	if step <= 0 || math.IsNaN(step) {
		if lo == hi {
			return []float64{lo}
		}
		return nil
	}
	first := math.Ceil(lo/step - 1e-9)
	last := math.Floor(hi/step + 1e-9)
	if last < first {
		return nil
	}
	// Round away float noise such as 0.30000000000000004.
	prec := math.Pow(10, math.Max(0, -math.Floor(math.Log10(step)))+1)
	ticks := make([]float64, 0, int(last-first)+1)
	for i := first; i <= last; i++ {
		ticks = append(ticks, math.Round(i*step*prec)/prec)
	}
	return ticks
}
