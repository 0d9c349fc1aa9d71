package vad

import "math"

// RMSProber is a lightweight, no-dependency SpeechProber: it maps a frame's
// RMS energy into a pseudo-probability via a soft knee, so it can stand in
// for the black-box DNN model without requiring ONNX/Silero weights at
// hand. Adapted from the simple energy-threshold detector this module's
// reference carried as its default VAD.
type RMSProber struct {
	// Knee is the RMS level mapped to probability 0.5. Zero energy maps to
	// about 0.12 and energy at 2x Knee to about 0.88.
	Knee float64
}

// NewRMSProber returns an RMSProber with a reasonable default knee for
// normalized [-1,1] float32 PCM.
func NewRMSProber() *RMSProber {
	return &RMSProber{Knee: 0.02}
}

func (p *RMSProber) Probability(samples []float32) (float64, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	var sumSq float64
	for _, s := range samples {
		v := float64(s)
		sumSq += v * v
	}
	rms := math.Sqrt(sumSq / float64(len(samples)))

	knee := p.Knee
	if knee <= 0 {
		knee = 0.02
	}
	// Logistic curve centered on knee; steepness chosen so +/-knee/2 moves
	// probability from ~0.27 to ~0.73.
	x := (rms - knee) / (knee / 2)
	return 1.0 / (1.0 + math.Exp(-x)), nil
}
