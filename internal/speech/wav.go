package speech

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// PCM is interleaved signed 16-bit audio.
type PCM struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

// Duration in seconds.
func (p *PCM) Duration() float64 {
	if p.SampleRate == 0 || p.Channels == 0 {
		return 0
	}
	return float64(len(p.Samples)/p.Channels) / float64(p.SampleRate)
}

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

var ErrNotWAV = errors.New("not a RIFF/WAVE payload")

// DecodeWAV parses a 16-bit PCM WAV file. A data chunk whose declared
// size runs past the end of the payload is truncated to what is present,
// as streaming TTS servers write a placeholder size.
func DecodeWAV(data []byte) (*PCM, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	var (
		pcm       PCM
		haveFmt   bool
		bitsPer   uint16
		audioData []byte
	)

	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		end := body + size
		if size < 0 || end > len(data) || end < body {
			end = len(data)
		}

		switch id {
		case "fmt ":
			if end-body < 16 {
				return nil, fmt.Errorf("wav fmt chunk too short: %d bytes", end-body)
			}
			format := binary.LittleEndian.Uint16(data[body:])
			if format != wavFormatPCM && format != wavFormatExtensible {
				return nil, fmt.Errorf("unsupported wav format %d", format)
			}
			pcm.Channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			pcm.SampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			bitsPer = binary.LittleEndian.Uint16(data[body+14:])
			haveFmt = true
		case "data":
			audioData = data[body:end]
		}

		if audioData != nil && haveFmt {
			break
		}
		// chunks are word aligned
		pos = end + (size & 1)
	}

	if !haveFmt {
		return nil, errors.New("wav has no fmt chunk")
	}
	if audioData == nil {
		return nil, errors.New("wav has no data chunk")
	}
	if bitsPer != 16 {
		return nil, fmt.Errorf("unsupported wav bit depth %d", bitsPer)
	}
	if pcm.Channels < 1 || pcm.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid wav header: %d channels at %d Hz", pcm.Channels, pcm.SampleRate)
	}

	pcm.Samples = samplesLE(audioData)
	return &pcm, nil
}

// int16LE serialises samples as little-endian bytes.
func int16LE(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// samplesLE reads little-endian 16-bit samples; a trailing odd byte is dropped.
func samplesLE(data []byte) []int16 {
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}

// downmix folds interleaved multi-channel audio into stereo by keeping
// the first two channels.
func downmix(samples []int16, channels int) []int16 {
	frames := len(samples) / channels
	out := make([]int16, frames*2)
	for i := 0; i < frames; i++ {
		out[i*2] = samples[i*channels]
		out[i*2+1] = samples[i*channels+1]
	}
	return out
}
