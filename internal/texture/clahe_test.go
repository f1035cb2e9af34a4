package texture

import "testing"

func TestEnhance_UniformTile(t *testing.T) {
	tests := []struct {
		value uint8
		want  uint8
	}{
		{0, 3},
		{64, 66},
		{128, 129},
		{200, 201},
		{255, 255},
	}

	e := NewEnhancer(8, 2.0)
	for _, tt := range tests {
		src := constantFrame(16, 16, tt.value)
		dst := NewFrame(16, 16)
		e.Enhance(dst, src)
		for i, v := range dst.Pix {
			if v != tt.want {
				t.Fatalf("value %d: pixel %d got %d, want %d", tt.value, i, v, tt.want)
			}
		}
	}
}

func TestEnhance_MonotonicPerTile(t *testing.T) {
	e := NewEnhancer(8, 2.0)
	src := noiseFrame(32, 24, 7)
	once := NewFrame(32, 24)
	twice := NewFrame(32, 24)
	e.Enhance(once, src)
	e.Enhance(twice, once)

	checkOrder := func(name string, in, out *Frame) {
		t.Helper()
		for ty := 0; ty < in.Height; ty += 8 {
			for tx := 0; tx < in.Width; tx += 8 {
				for i := 0; i < 64; i++ {
					for j := 0; j < 64; j++ {
						ax, ay := tx+i%8, ty+i/8
						bx, by := tx+j%8, ty+j/8
						if in.At(ax, ay) < in.At(bx, by) && out.At(ax, ay) > out.At(bx, by) {
							t.Fatalf("%s: tile (%d,%d) ordering broken: %d<%d mapped to %d>%d",
								name, tx, ty, in.At(ax, ay), in.At(bx, by), out.At(ax, ay), out.At(bx, by))
						}
					}
				}
			}
		}
	}
	checkOrder("first pass", src, once)
	checkOrder("second pass", once, twice)
}

func TestEnhance_PartialTilesUnchanged(t *testing.T) {
	e := NewEnhancer(8, 2.0)
	src := noiseFrame(20, 12, 3)
	dst := NewFrame(20, 12)
	e.Enhance(dst, src)

	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			if x < 16 && y < 8 {
				continue
			}
			if dst.At(x, y) != src.At(x, y) {
				t.Errorf("pixel (%d,%d) outside full tiles changed: %d -> %d", x, y, src.At(x, y), dst.At(x, y))
			}
		}
	}
}

func TestEnhance_TilesIndependent(t *testing.T) {
	e := NewEnhancer(8, 2.0)
	src := NewFrame(16, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			if x < 8 {
				src.Set(x, y, 40)
			} else {
				src.Set(x, y, 220)
			}
		}
	}
	left := constantFrame(8, 8, 40)
	right := constantFrame(8, 8, 220)

	dst := NewFrame(16, 8)
	leftOut := NewFrame(8, 8)
	rightOut := NewFrame(8, 8)
	e.Enhance(dst, src)
	e.Enhance(leftOut, left)
	e.Enhance(rightOut, right)

	if dst.At(0, 0) != leftOut.At(0, 0) {
		t.Errorf("left tile: got %d, want %d", dst.At(0, 0), leftOut.At(0, 0))
	}
	if dst.At(15, 7) != rightOut.At(0, 0) {
		t.Errorf("right tile: got %d, want %d", dst.At(15, 7), rightOut.At(0, 0))
	}
}

func TestEnhance_ShapeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on shape mismatch")
		}
	}()
	NewEnhancer(8, 2.0).Enhance(NewFrame(16, 16), NewFrame(16, 8))
}
