//go:build silero

// Package sileromodel implements vad.SpeechProber by running Silero VAD v5
// inference through ONNX Runtime, grounded on
// nupi-ai-plugin-vad-local-silero's internal/engine/silero.go. Built only
// with the "silero" build tag, since it requires a model file and the
// platform ONNX Runtime shared library at runtime; without the tag, Model
// is unavailable and callers should fall back to vad.RMSProber.
package sileromodel

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	// windowSize is the number of float32 samples Silero VAD v5 expects per
	// inference call (32ms at 16kHz).
	windowSize = 512
	stateSize  = 128
	sampleRate = 16000
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// Model wraps a loaded Silero VAD v5 ONNX session. Calls are serialized by
// an internal mutex, but the recurrent state assumes one ordered frame
// stream, so a Model should serve a single Stream.
type Model struct {
	mu sync.Mutex

	session *ort.AdvancedSession

	inputTensor *ort.Tensor[float32]
	stateTensor *ort.Tensor[float32]
	srTensor    *ort.Tensor[int64]

	outputTensor *ort.Tensor[float32]
	stateNTensor *ort.Tensor[float32]

	pcmBuf []float32
}

// New loads modelPath (a Silero VAD v5 ONNX file) and initializes ONNX
// Runtime from libPath (the platform onnxruntime shared library), or from
// LINGUA_ORT_LIB_PATH / a conventional lib/<os>-<arch>/ layout next to the
// binary when libPath is empty.
func New(modelPath, libPath string) (*Model, error) {
	ortInitOnce.Do(func() {
		resolved := libPath
		if resolved == "" {
			resolved, ortInitErr = resolveORTLibPath()
			if ortInitErr != nil {
				return
			}
		}
		ort.SetSharedLibraryPath(resolved)
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("sileromodel: %w", ortInitErr)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, windowSize))
	if err != nil {
		return nil, fmt.Errorf("sileromodel: create input tensor: %w", err)
	}
	stateTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, stateSize))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("sileromodel: create state tensor: %w", err)
	}
	srTensor, err := ort.NewTensor(ort.NewShape(1), []int64{int64(sampleRate)})
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		return nil, fmt.Errorf("sileromodel: create sr tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		return nil, fmt.Errorf("sileromodel: create output tensor: %w", err)
	}
	stateNTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, stateSize))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("sileromodel: create stateN tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input", "state", "sr"},
		[]string{"output", "stateN"},
		[]ort.Value{inputTensor, stateTensor, srTensor},
		[]ort.Value{outputTensor, stateNTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		stateNTensor.Destroy()
		return nil, fmt.Errorf("sileromodel: create session: %w", err)
	}

	return &Model{
		session:      session,
		inputTensor:  inputTensor,
		stateTensor:  stateTensor,
		srTensor:     srTensor,
		outputTensor: outputTensor,
		stateNTensor: stateNTensor,
		pcmBuf:       make([]float32, 0, windowSize*2),
	}, nil
}

// Probability implements vad.SpeechProber. Frames shorter than windowSize
// accumulate across calls; a frame returns the most recent complete
// window's probability, or 0 while still buffering.
func (m *Model) Probability(samples []float32) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pcmBuf = append(m.pcmBuf, samples...)

	var last float64
	for len(m.pcmBuf) >= windowSize {
		prob, err := m.infer(m.pcmBuf[:windowSize])
		if err != nil {
			return 0, err
		}
		m.pcmBuf = m.pcmBuf[windowSize:]
		last = float64(prob)
	}
	return last, nil
}

func (m *Model) infer(window []float32) (float32, error) {
	copy(m.inputTensor.GetData(), window)

	if err := m.session.Run(); err != nil {
		return 0, fmt.Errorf("sileromodel: inference: %w", err)
	}

	prob := m.outputTensor.GetData()[0]
	copy(m.stateTensor.GetData(), m.stateNTensor.GetData())

	return prob, nil
}

// Reset clears the recurrent hidden state and partial-window buffer.
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.stateTensor.GetData() {
		m.stateTensor.GetData()[i] = 0
	}
	m.pcmBuf = m.pcmBuf[:0]
}

// Close releases the ONNX Runtime session and tensors. Safe to call
// multiple times.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	if m.inputTensor != nil {
		m.inputTensor.Destroy()
		m.inputTensor = nil
	}
	if m.stateTensor != nil {
		m.stateTensor.Destroy()
		m.stateTensor = nil
	}
	if m.srTensor != nil {
		m.srTensor.Destroy()
		m.srTensor = nil
	}
	if m.outputTensor != nil {
		m.outputTensor.Destroy()
		m.outputTensor = nil
	}
	if m.stateNTensor != nil {
		m.stateNTensor.Destroy()
		m.stateNTensor = nil
	}
	return nil
}
