package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// bytesPerSample for 16-bit mono.
const bytesPerSample = 2

// Duration returns the play time of n bytes of 16-bit mono PCM.
func Duration(n, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	samples := n / bytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

// Validate checks that pcm is non-empty and sample aligned.
func Validate(pcm []byte) error {
	if len(pcm) == 0 {
		return errors.New("empty PCM data")
	}
	if len(pcm)%bytesPerSample != 0 {
		return fmt.Errorf("PCM data length %d is not aligned to %d-byte samples", len(pcm), bytesPerSample)
	}
	return nil
}

// Resample converts 16-bit mono little-endian PCM between rates with
// linear interpolation.
func Resample(pcm []byte, from, to int) ([]byte, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("invalid sample rates %d -> %d", from, to)
	}
	if err := Validate(pcm); err != nil {
		return nil, err
	}
	if from == to {
		return pcm, nil
	}

	in := make([]int16, len(pcm)/bytesPerSample)
	for i := range in {
		in[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	ratio := float64(to) / float64(from)
	outSamples := int(float64(len(in)) * ratio)
	out := make([]byte, outSamples*bytesPerSample)

	for i := 0; i < outSamples; i++ {
		pos := float64(i) / ratio
		idx := int(pos)
		var v int16
		if idx >= len(in)-1 {
			v = in[len(in)-1]
		} else {
			frac := pos - float64(idx)
			v = int16(float64(in[idx])*(1-frac) + float64(in[idx+1])*frac)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out, nil
}

// Silence returns d of silent PCM at sampleRate.
func Silence(d time.Duration, sampleRate int) []byte {
	samples := int(d.Seconds() * float64(sampleRate))
	return make([]byte, samples*bytesPerSample)
}
