package processor

// AssembleSegments copies the raw samples of each selected frame, in
// selection order, into one contiguous buffer of FrameSize × len(sel)
// samples. A frame running past the end of the source is zero-padded to
// FrameSize. samples is only read.
func AssembleSegments(samples []float64, g FrameGeometry, sel Selection) []float64 {
	out := make([]float64, len(sel)*g.FrameSize)

	for j, idx := range sel {
		start, end := g.Span(idx)
		// Remaining tail of the segment is already zero
		copy(out[j*g.FrameSize:(j+1)*g.FrameSize], samples[start:end])
	}

	return out
}
