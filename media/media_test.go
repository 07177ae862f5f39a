package media

import "testing"

func TestScaledWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info VideoInfo
		want int
	}{
		{"square pixels", VideoInfo{Width: 1920, Height: 1080, ParN: 1, ParD: 1}, 1920},
		{"par unset", VideoInfo{Width: 1280, Height: 720}, 1280},
		{"anamorphic wide", VideoInfo{Width: 720, Height: 576, ParN: 16, ParD: 11}, 1047},
		{"narrowing", VideoInfo{Width: 720, Height: 480, ParN: 8, ParD: 9}, 640},
		{"rounds to nearest", VideoInfo{Width: 100, Height: 100, ParN: 1, ParD: 3}, 33},
		{"rounds half up", VideoInfo{Width: 101, Height: 100, ParN: 1, ParD: 2}, 51},
		{"invalid par ignored", VideoInfo{Width: 640, Height: 480, ParN: -1, ParD: 1}, 640},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.info.ScaledWidth(); got != tt.want {
				t.Errorf("ScaledWidth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPixelFormatProperties(t *testing.T) {
	t.Parallel()

	if PixelFormatBGRx.HasAlpha() {
		t.Error("BGRx must not report alpha")
	}
	if !PixelFormatBGRA.HasAlpha() {
		t.Error("BGRA must report alpha")
	}
	if got := PixelFormatBGRA.BytesPerPixel(); got != 4 {
		t.Errorf("BGRA BytesPerPixel() = %d, want 4", got)
	}
	if got := PixelFormatNV12.BytesPerPixel(); got != 0 {
		t.Errorf("NV12 BytesPerPixel() = %d, want 0 (planar)", got)
	}
}

func TestRectEmpty(t *testing.T) {
	t.Parallel()

	if (Rect{W: 10, H: 10}).Empty() {
		t.Error("10x10 reported empty")
	}
	if !(Rect{W: 0, H: 10}).Empty() {
		t.Error("zero width not reported empty")
	}
	if !(Rect{W: 10, H: -1}).Empty() {
		t.Error("negative height not reported empty")
	}
}

func TestFrameRefCounting(t *testing.T) {
	t.Parallel()

	released := 0
	f := NewPooledFrame(make([]byte, 16), VideoInfo{Width: 2, Height: 2}, func(*Frame) {
		released++
	})

	f.Ref()
	f.Ref()
	if got := f.RefCount(); got != 3 {
		t.Fatalf("RefCount() = %d, want 3", got)
	}

	f.Unref()
	f.Unref()
	if released != 0 {
		t.Fatal("release hook ran before the last reference was dropped")
	}

	f.Unref()
	if released != 1 {
		t.Fatalf("release hook ran %d times, want 1", released)
	}
}

func TestFrameRefAfterReleasePanics(t *testing.T) {
	t.Parallel()

	f := NewFrame(nil, VideoInfo{})
	f.Unref()

	defer func() {
		if recover() == nil {
			t.Error("Ref on a released frame did not panic")
		}
	}()
	f.Ref()
}

func TestFrameUnrefUnderflowPanics(t *testing.T) {
	t.Parallel()

	f := NewFrame(nil, VideoInfo{})
	f.Unref()

	defer func() {
		if recover() == nil {
			t.Error("Unref past zero did not panic")
		}
	}()
	f.Unref()
}
