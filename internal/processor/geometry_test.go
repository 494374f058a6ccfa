package processor

import (
	"errors"
	"testing"
)

func TestNewFrameGeometryFrameCount(t *testing.T) {
	cfg := DefaultConfig() // frameSize 19200, hopSize 4800

	tests := []struct {
		name      string
		bufferLen int
		want      int
	}{
		{"exactly one frame", 19200, 1},
		{"one sample over", 19201, 2},
		{"whole hops", 10*4800 + 19200, 11},
		{"partial hop", 10*4800 + 19200 + 1, 12},
		{"five seconds", 5 * 48000, 47},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewFrameGeometry(cfg, tt.bufferLen)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g.FrameCount != tt.want {
				t.Errorf("FrameCount = %d, want %d", g.FrameCount, tt.want)
			}

			// Every start is inside the buffer and the last frame covers the end
			last := g.FrameCount - 1
			if g.Start(last) >= tt.bufferLen {
				t.Errorf("last frame starts at %d, beyond buffer of %d", g.Start(last), tt.bufferLen)
			}
			if g.Start(last)+g.FrameSize < tt.bufferLen {
				t.Errorf("last frame ends at %d, before buffer end %d", g.Start(last)+g.FrameSize, tt.bufferLen)
			}
			if overrun := g.Start(last) + g.FrameSize - tt.bufferLen; overrun >= g.HopSize {
				t.Errorf("last frame overruns by %d samples, want < hop %d", overrun, g.HopSize)
			}
		})
	}
}

func TestFrameGeometrySpan(t *testing.T) {
	g, err := NewFrameGeometry(DefaultConfig(), 19201)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if start, end := g.Span(0); start != 0 || end != 19200 {
		t.Errorf("Span(0) = [%d, %d), want [0, 19200)", start, end)
	}
	if start, end := g.Span(1); start != 4800 || end != 19201 {
		t.Errorf("Span(1) = [%d, %d), want [4800, 19201)", start, end)
	}
	if got := g.StartSeconds(1); got != 0.1 {
		t.Errorf("StartSeconds(1) = %v, want 0.1", got)
	}
	if got := g.FrameSeconds(); got != 0.4 {
		t.Errorf("FrameSeconds() = %v, want 0.4", got)
	}
	if got := g.BinFrequency(400); got != 1000 {
		t.Errorf("BinFrequency(400) = %v, want 1000", got)
	}
}

func TestNewFrameGeometryRejects(t *testing.T) {
	t.Run("buffer shorter than frame", func(t *testing.T) {
		_, err := NewFrameGeometry(DefaultConfig(), 19199)
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("err = %v, want ErrConfiguration", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.OverlapRatio = 1
		_, err := NewFrameGeometry(cfg, 48000)
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("err = %v, want ErrConfiguration", err)
		}
	})
}
