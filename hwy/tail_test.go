package hwy

import "testing"

func TestTailMask(t *testing.T) {
	tests := []struct {
		count int
		want  uint16
	}{
		{-3, 0},
		{0, 0},
		{1, 0x0001},
		{5, 0x001F},
		{15, 0x7FFF},
		{16, 0xFFFF},
		{40, 0xFFFF},
	}
	for _, tt := range tests {
		if got := TailMask[float32](tt.count).Bits(); got != tt.want {
			t.Errorf("TailMask(%d) = %#x, want %#x", tt.count, got, tt.want)
		}
	}
}

func TestMaskLoadStore(t *testing.T) {
	for count := 0; count < LanesPerVec; count++ {
		src := make([]float32, count)
		for i := range src {
			src[i] = float32(i + 1)
		}
		mask := TailMask[float32](count)

		// src is exactly count long: a full Load would read past it.
		v := MaskLoad(mask, src)
		for i := 0; i < LanesPerVec; i++ {
			want := float32(0)
			if i < count {
				want = float32(i + 1)
			}
			if v.Lane(i) != want {
				t.Fatalf("count=%d: lane %d = %v, want %v", count, i, v.Lane(i), want)
			}
		}

		dst := make([]float32, count+2)
		dst[count], dst[count+1] = -1, -1
		MaskStore(mask, Add(v, Set[float32](10)), dst)
		for i := 0; i < count; i++ {
			if dst[i] != float32(i+11) {
				t.Errorf("count=%d: dst[%d] = %v, want %v", count, i, dst[i], float32(i+11))
			}
		}
		if dst[count] != -1 || dst[count+1] != -1 {
			t.Errorf("count=%d: MaskStore wrote past the mask: %v", count, dst[count:])
		}
	}
}

func TestAlignedSize(t *testing.T) {
	for _, tt := range []struct{ in, want int }{{0, 0}, {1, 16}, {16, 16}, {17, 32}} {
		if got := AlignedSize(tt.in); got != tt.want {
			t.Errorf("AlignedSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if !IsAligned(32) || IsAligned(33) {
		t.Error("IsAligned wrong")
	}
}
