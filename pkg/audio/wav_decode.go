package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Decoded holds the PCM samples and format parameters recovered from a WAV
// byte stream by DecodeWav.
type Decoded struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// DecodeWav parses a RIFF/WAVE PCM byte stream, the counterpart to
// NewWavBuffer, needed by audio enhancement to apply fades/padding in the
// sample domain before re-encoding.
func DecodeWav(data []byte) (*Decoded, error) {
	if len(data) < 44 {
		return nil, fmt.Errorf("audio: wav too short (%d bytes)", len(data))
	}
	if string(data[0:4]) != "RIFF" {
		return nil, fmt.Errorf("audio: missing RIFF header")
	}
	if string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("audio: missing WAVE identifier")
	}

	offset := 12
	sampleRate := 22050
	channels := 1
	bitsPerSample := 16
	dataOffset := -1
	dataSize := 0

	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))

		switch chunkID {
		case "fmt ":
			if offset+24 > len(data) {
				return nil, fmt.Errorf("audio: truncated fmt chunk")
			}
			audioFormat := binary.LittleEndian.Uint16(data[offset+8 : offset+10])
			if audioFormat != 1 {
				return nil, fmt.Errorf("audio: unsupported audio format %d", audioFormat)
			}
			channels = int(binary.LittleEndian.Uint16(data[offset+10 : offset+12]))
			sampleRate = int(binary.LittleEndian.Uint32(data[offset+12 : offset+16]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[offset+22 : offset+24]))
		case "data":
			dataOffset = offset + 8
			dataSize = chunkSize
		}

		if chunkID == "data" {
			break
		}
		offset += 8 + chunkSize
	}

	if dataOffset < 0 {
		return nil, fmt.Errorf("audio: missing data chunk")
	}
	if bitsPerSample != 16 {
		return nil, fmt.Errorf("audio: unsupported bits per sample %d", bitsPerSample)
	}

	end := dataOffset + dataSize
	if end > len(data) {
		end = len(data)
	}
	pcm := data[dataOffset:end]

	numSamples := len(pcm) / 2
	samples := make([]int16, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
	}

	return &Decoded{Samples: samples, SampleRate: sampleRate, Channels: channels}, nil
}

// EncodeWav is the int16-sample, multi-channel counterpart to NewWavBuffer
// (which hardcodes mono), used by callers operating in the sample domain
// rather than on raw PCM bytes.
func EncodeWav(samples []int16, sampleRate, channels int) []byte {
	buf := new(bytes.Buffer)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+len(samples)*2))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*2))
	binary.Write(buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(samples)*2))
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes()
}
