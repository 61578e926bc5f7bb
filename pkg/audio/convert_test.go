package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestStereoToMono(t *testing.T) {
	t.Parallel()

	got := StereoToMono([]float32{1, 0, 0.5, 0.5, -1, 1})
	want := []float32{0.5, 0.5, 0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestResample_SameRateIsIdentity(t *testing.T) {
	t.Parallel()

	in := []float32{0.1, 0.2, 0.3}
	got := Resample(in, 16000, 16000)
	if &got[0] != &in[0] {
		t.Error("same-rate resample should return the input slice")
	}
}

func TestResample_Halving(t *testing.T) {
	t.Parallel()

	in := make([]float32, 480)
	for i := range in {
		in[i] = float32(i)
	}
	got := Resample(in, 48000, 16000)
	if len(got) != 160 {
		t.Fatalf("len = %d, want 160", len(got))
	}
	// A linear ramp must survive linear interpolation exactly.
	for i, s := range got {
		want := float32(i * 3)
		if diff := float64(s - want); math.Abs(diff) > 1e-3 {
			t.Fatalf("sample %d = %f, want %f", i, s, want)
		}
	}
}

func TestResample_Upsampling(t *testing.T) {
	t.Parallel()

	in := []float32{0, 1}
	got := Resample(in, 8000, 16000)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[1] != 0.5 {
		t.Errorf("interpolated sample = %f, want 0.5", got[1])
	}
}

func TestToModelFormat(t *testing.T) {
	t.Parallel()

	// Stereo at 32 kHz: downmix halves the sample count, resample halves
	// it again.
	in := make([]float32, 640)
	got := ToModelFormat(in, 32000, 2)
	if len(got) != 160 {
		t.Errorf("len = %d, want 160", len(got))
	}
}

func TestBytesToFloat32(t *testing.T) {
	t.Parallel()

	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:], math.Float32bits(0.25))
	binary.LittleEndian.PutUint32(data[4:], math.Float32bits(-1))

	got := bytesToFloat32(data, 2)
	if len(got) != 2 || got[0] != 0.25 || got[1] != -1 {
		t.Errorf("bytesToFloat32 = %v, want [0.25 -1]", got)
	}

	// Truncated trailing bytes are dropped, not misread.
	if got := bytesToFloat32(data[:6], 2); len(got) != 1 {
		t.Errorf("truncated input produced %d samples, want 1", len(got))
	}
}
