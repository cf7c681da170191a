package features

import "math"

// eps guards denominators so flat or zero-volume series never divide by
// zero; matches are close enough to exact ratios for feature purposes.
const eps = 1e-9

var nan = math.NaN()

// nanSlice returns a length-n slice filled with NaN. NaN marks rows where
// the indicator's lookback is not yet satisfied.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = nan
	}
	return out
}

// SMA is the simple moving average over window w, defined from index w-1.
func SMA(values []float64, w int) []float64 {
	out := nanSlice(len(values))
	if w <= 0 || len(values) < w {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= w {
			sum -= values[i-w]
		}
		if i >= w-1 {
			out[i] = sum / float64(w)
		}
	}
	return out
}

// EMA is the exponential moving average with alpha 2/(w+1), seeded with
// the first observation and therefore defined from index 0.
func EMA(values []float64, w int) []float64 {
	out := nanSlice(len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(w) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RollingStd is the sample standard deviation over window w, defined from
// index w-1.
func RollingStd(values []float64, w int) []float64 {
	out := nanSlice(len(values))
	if w <= 1 || len(values) < w {
		return out
	}
	for i := w - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - w + 1; j <= i; j++ {
			sum += values[j]
		}
		mean := sum / float64(w)
		ss := 0.0
		for j := i - w + 1; j <= i; j++ {
			d := values[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(w-1))
	}
	return out
}

// RSI is Wilder's relative strength index: the first average gain/loss is
// a simple mean over the first w moves, subsequent ones use Wilder
// smoothing. Defined from index w.
func RSI(closes []float64, w int) []float64 {
	out := nanSlice(len(closes))
	if w <= 0 || len(closes) <= w {
		return out
	}
	var avgGain, avgLoss float64
	for i := 1; i <= w; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(w)
	avgLoss /= float64(w)
	out[w] = 100 - 100/(1+avgGain/(avgLoss+eps))
	for i := w + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(w-1) + gain) / float64(w)
		avgLoss = (avgLoss*float64(w-1) + loss) / float64(w)
		out[i] = 100 - 100/(1+avgGain/(avgLoss+eps))
	}
	return out
}

// MACD returns the MACD line (EMA fast - EMA slow) and its signal line
// (EMA of the MACD line). All defined from index 0 because the EMAs are
// seeded.
func MACD(closes []float64, fast, slow, signal int) (line, sig []float64) {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig = EMA(line, signal)
	return line, sig
}

// Stochastic returns %K over window w (defined from w-1) and %D as the
// d-period simple average of %K (defined from w-2+d).
func Stochastic(highs, lows, closes []float64, w, d int) (k, dline []float64) {
	n := len(closes)
	k = nanSlice(n)
	for i := w - 1; i < n; i++ {
		hh, ll := highs[i], lows[i]
		for j := i - w + 1; j <= i; j++ {
			if highs[j] > hh {
				hh = highs[j]
			}
			if lows[j] < ll {
				ll = lows[j]
			}
		}
		k[i] = 100 * (closes[i] - ll) / (hh - ll + eps)
	}
	dline = nanSlice(n)
	for i := w - 2 + d; i < n; i++ {
		sum := 0.0
		for j := i - d + 1; j <= i; j++ {
			sum += k[j]
		}
		dline[i] = sum / float64(d)
	}
	return k, dline
}

// ATR is the simple w-bar rolling mean of the true range, defined from
// index w-1. The first bar's true range is its high-low span.
func ATR(highs, lows, closes []float64, w int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if w <= 0 || n < w {
		return out
	}
	tr := make([]float64, n)
	tr[0] = highs[0] - lows[0]
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return SMA(tr, w)
}
