package apu

// mix applies the 2A03's nonlinear pulse/TND mixer, producing a
// sample in [-1, 1].
func mix(pulse1, pulse2, triangle, noise, dmc uint8) float32 {
	var pulseOut float64
	if pulseSum := float64(pulse1) + float64(pulse2); pulseSum != 0 {
		pulseOut = 95.88 / (8128.0/pulseSum + 100.0)
	}

	var tndOut float64
	if tnd := float64(triangle)/8227.0 + float64(noise)/12241.0 + float64(dmc)/22638.0; tnd != 0 {
		tndOut = 159.79 / (1.0/tnd + 100.0)
	}

	sample := pulseOut + tndOut
	if sample > 1 {
		sample = 1
	}
	if sample < -1 {
		sample = -1
	}
	return float32(sample)
}
