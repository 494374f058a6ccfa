package audio

import (
	"math"
	"testing"
)

func TestResample(t *testing.T) {
	tests := []struct {
		name    string
		input   []float64
		inRate  int
		outRate int
		want    []float64
	}{
		{"same_rate", []float64{0.1, 0.2, 0.3}, 48000, 48000, []float64{0.1, 0.2, 0.3}},
		{"empty", nil, 44100, 48000, []float64{}},
		{"upsample_by_two", []float64{0, 1, 2}, 1, 2, []float64{0, 0.5, 1, 1.5, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resample(tt.input, tt.inRate, tt.outRate)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("got[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResampleDoesNotAliasInput(t *testing.T) {
	input := []float64{0.5, 0.25}
	out := Resample(input, 48000, 48000)
	out[0] = 0
	if input[0] != 0.5 {
		t.Error("Resample returned a slice sharing storage with its input")
	}
}

func TestResampleLength(t *testing.T) {
	tests := []struct {
		inRate, outRate, want int
	}{
		{44100, 48000, 48000},
		{48000, 16000, 16000},
		{96000, 48000, 48000},
	}

	for _, tt := range tests {
		got := Resample(make([]float64, tt.inRate), tt.inRate, tt.outRate)
		if len(got) != tt.want {
			t.Errorf("%d -> %d Hz: len = %d, want %d", tt.inRate, tt.outRate, len(got), tt.want)
		}
	}
}

func sine(freq, amplitude float64, rate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func TestResampleDownsampleFiltersAliases(t *testing.T) {
	// 30 kHz cannot exist at 48 kHz; unfiltered it would fold to 18 kHz
	out := Resample(sine(30000, 0.5, 96000, 96000), 96000, 48000)

	// Skip the filter's edge transients
	edge := antiAliasTaps
	var sum float64
	for _, v := range out[edge : len(out)-edge] {
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(out)-2*edge))
	if rms > 1e-3 {
		t.Errorf("aliased RMS = %v, want below 1e-3", rms)
	}
}

func TestResampleDownsampleKeepsPassband(t *testing.T) {
	out := Resample(sine(1000, 0.5, 96000, 96000), 96000, 48000)
	want := sine(1000, 0.5, 48000, 48000)

	edge := antiAliasTaps
	for i := edge; i < len(out)-edge; i++ {
		if math.Abs(out[i]-want[i]) > 1e-3 {
			t.Fatalf("sample %d = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestLowPassTaps(t *testing.T) {
	h := lowPassTaps(0.2, antiAliasTaps)

	var sum float64
	for i, v := range h {
		sum += v
		if math.Abs(v-h[len(h)-1-i]) > 1e-15 {
			t.Fatalf("tap %d not symmetric", i)
		}
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("DC gain = %v, want 1", sum)
	}
}
