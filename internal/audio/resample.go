package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// antiAliasTaps is the length of the low-pass applied before
	// downsampling. Odd, so the filter delay is a whole number of samples.
	antiAliasTaps = 255

	// antiAliasPassband places the cutoff just below the output Nyquist
	// frequency, leaving room for the Blackman transition band.
	antiAliasPassband = 0.9

	// antiAliasFFTSize is the transform length used for block convolution
	antiAliasFFTSize = 8192
)

// Resample converts mono samples from inputRate to outputRate using linear
// interpolation. The result has floor(len(input) * outputRate / inputRate)
// samples. When the rates match a copy of the input is returned.
//
// When downsampling, the input is first low-pass filtered below the output
// Nyquist frequency so content the output cannot represent is removed rather
// than folded back into the audible band.
func Resample(input []float64, inputRate, outputRate int) []float64 {
	if inputRate == outputRate || len(input) == 0 {
		out := make([]float64, len(input))
		copy(out, input)
		return out
	}

	if outputRate < inputRate {
		cutoff := 0.5 * float64(outputRate) / float64(inputRate) * antiAliasPassband
		input = lowPass(input, cutoff)
	}

	n := int(int64(len(input)) * int64(outputRate) / int64(inputRate))
	out := make([]float64, n)
	ratio := float64(inputRate) / float64(outputRate)
	last := len(input) - 1

	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= last {
			out[i] = input[last]
			continue
		}

		// Linear interpolation between neighbouring input samples
		frac := pos - float64(idx)
		out[i] = input[idx]*(1.0-frac) + input[idx+1]*frac
	}

	return out
}

// lowPassTaps designs a Blackman-windowed sinc filter with unity DC gain.
// cutoff is in cycles per sample, (0, 0.5).
func lowPassTaps(cutoff float64, taps int) []float64 {
	h := make([]float64, taps)
	mid := float64(taps-1) / 2
	var sum float64

	for i := range h {
		t := float64(i) - mid
		sinc := 2 * cutoff
		if t != 0 {
			sinc = math.Sin(2*math.Pi*cutoff*t) / (math.Pi * t)
		}
		x := 2 * math.Pi * float64(i) / float64(taps-1)
		window := 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
		h[i] = sinc * window
		sum += h[i]
	}

	for i := range h {
		h[i] /= sum
	}
	return h
}

// lowPass filters input with a linear-phase FIR by FFT overlap-add. The
// filter delay is removed, so the output lines up with the input and has
// the same length.
func lowPass(input []float64, cutoff float64) []float64 {
	taps := lowPassTaps(cutoff, antiAliasTaps)
	block := antiAliasFFTSize - len(taps) + 1

	fft := fourier.NewFFT(antiAliasFFTSize)
	kernel := make([]float64, antiAliasFFTSize)
	copy(kernel, taps)
	response := fft.Coefficients(nil, kernel)

	full := make([]float64, len(input)+len(taps)-1)
	frame := make([]float64, antiAliasFFTSize)
	spectrum := make([]complex128, len(response))
	filtered := make([]float64, antiAliasFFTSize)
	scale := 1.0 / float64(antiAliasFFTSize)

	for start := 0; start < len(input); start += block {
		end := min(start+block, len(input))
		clear(frame)
		copy(frame, input[start:end])

		fft.Coefficients(spectrum, frame)
		for i := range spectrum {
			spectrum[i] *= response[i]
		}
		// Sequence is unnormalised
		fft.Sequence(filtered, spectrum)

		for i := 0; i < end-start+len(taps)-1; i++ {
			full[start+i] += filtered[i] * scale
		}
	}

	delay := (len(taps) - 1) / 2
	return full[delay : delay+len(input)]
}
