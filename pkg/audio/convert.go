// Package audio captures microphone input and converts it to the mono
// 16 kHz float32 stream the transcription model expects.
package audio

// ModelSampleRate is the sample rate required by the transcription model.
const ModelSampleRate = 16000

// StereoToMono averages interleaved L+R float32 frames into mono.
func StereoToMono(samples []float32) []float32 {
	frames := len(samples) / 2
	out := make([]float32, frames)
	for i := range frames {
		out[i] = (samples[i*2] + samples[i*2+1]) / 2
	}
	return out
}

// Resample converts mono float32 samples from srcRate to dstRate using
// linear interpolation. If the rates match, the input is returned
// unchanged.
func Resample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate <= 0 || dstRate <= 0 || srcRate == dstRate || len(samples) < 2 {
		return samples
	}
	dstLen := int(int64(len(samples)) * int64(dstRate) / int64(srcRate))
	if dstLen == 0 {
		return nil
	}

	out := make([]float32, dstLen)
	ratio := float64(srcRate) / float64(dstRate)

	for i := range dstLen {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := float32(srcPos - float64(srcIdx))

		s0 := samples[srcIdx]
		s1 := s0
		if srcIdx+1 < len(samples) {
			s1 = samples[srcIdx+1]
		}
		out[i] = s0*(1-frac) + s1*frac
	}
	return out
}

// ToModelFormat downmixes and resamples captured audio to the model's mono
// 16 kHz format. Channel counts above 2 are not supported by the capture
// configuration and are returned unchanged.
func ToModelFormat(samples []float32, srcRate, channels int) []float32 {
	if channels == 2 {
		samples = StereoToMono(samples)
	}
	return Resample(samples, srcRate, ModelSampleRate)
}
