package geometry

import (
	"testing"

	"github.com/ovlab/waysink/compositor"
	"github.com/ovlab/waysink/media"
)

func TestCenterRectScaling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  media.Rect
		dst  media.Rect
		want media.Rect
	}{
		{
			name: "wide video letterboxed",
			src:  media.Rect{W: 1920, H: 1080},
			dst:  media.Rect{W: 640, H: 480},
			want: media.Rect{X: 0, Y: 60, W: 640, H: 360},
		},
		{
			name: "tall video pillarboxed",
			src:  media.Rect{W: 1080, H: 1920},
			dst:  media.Rect{W: 640, H: 480},
			want: media.Rect{X: 185, Y: 0, W: 270, H: 480},
		},
		{
			name: "matching aspect fills",
			src:  media.Rect{W: 1280, H: 720},
			dst:  media.Rect{W: 640, H: 360},
			want: media.Rect{X: 0, Y: 0, W: 640, H: 360},
		},
		{
			name: "upscale",
			src:  media.Rect{W: 320, H: 240},
			dst:  media.Rect{W: 1280, H: 960},
			want: media.Rect{X: 0, Y: 0, W: 1280, H: 960},
		},
		{
			name: "dst offset preserved",
			src:  media.Rect{W: 1920, H: 1080},
			dst:  media.Rect{X: 100, Y: 50, W: 640, H: 480},
			want: media.Rect{X: 100, Y: 110, W: 640, H: 360},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CenterRect(tt.src, tt.dst, true); got != tt.want {
				t.Errorf("CenterRect(%v, %v, scaling) = %v, want %v", tt.src, tt.dst, got, tt.want)
			}
		})
	}
}

func TestCenterRectNoScaling(t *testing.T) {
	t.Parallel()

	// Without a viewport the video keeps its native size, clamped to the
	// destination, and only the offset centers it.
	got := CenterRect(media.Rect{W: 320, H: 240}, media.Rect{W: 640, H: 480}, false)
	want := media.Rect{X: 160, Y: 120, W: 320, H: 240}
	if got != want {
		t.Errorf("CenterRect small-in-large = %v, want %v", got, want)
	}

	got = CenterRect(media.Rect{W: 1920, H: 1080}, media.Rect{W: 640, H: 480}, false)
	want = media.Rect{X: 0, Y: 0, W: 640, H: 480}
	if got != want {
		t.Errorf("CenterRect large-in-small = %v, want %v", got, want)
	}
}

func TestComputeRejectsEmptyDestination(t *testing.T) {
	t.Parallel()

	_, ok := Compute(Input{
		Info: media.VideoInfo{Width: 1920, Height: 1080},
		Crop: media.Rect{W: -1},
		Dst:  media.Rect{},
	})
	if ok {
		t.Error("Compute accepted a zero-area destination")
	}
}

func TestComputeAppliesPixelAspect(t *testing.T) {
	t.Parallel()

	res, ok := Compute(Input{
		Info:        media.VideoInfo{Width: 720, Height: 480, ParN: 8, ParD: 9},
		Crop:        media.Rect{W: -1},
		Scale:       1,
		Dst:         media.Rect{W: 640, H: 480},
		HasViewport: true,
	})
	if !ok {
		t.Fatal("Compute rejected valid input")
	}
	// 720x480 at 8:9 par displays as 640x480, exactly filling.
	want := media.Rect{X: 0, Y: 0, W: 640, H: 480}
	if res.Dest != want {
		t.Errorf("Dest = %v, want %v", res.Dest, want)
	}
	if res.HasSource {
		t.Error("source rectangle emitted without a crop")
	}
}

func TestComputeTransformSwapsDimensions(t *testing.T) {
	t.Parallel()

	res, ok := Compute(Input{
		Info:        media.VideoInfo{Width: 1920, Height: 1080},
		Crop:        media.Rect{W: -1},
		Transform:   compositor.Transform90,
		Scale:       1,
		Dst:         media.Rect{W: 640, H: 480},
		HasViewport: true,
	})
	if !ok {
		t.Fatal("Compute rejected valid input")
	}
	// Rotated 90° the video is 1080x1920: pillarboxed in 640x480.
	want := media.Rect{X: 185, Y: 0, W: 270, H: 480}
	if res.Dest != want {
		t.Errorf("Dest = %v, want %v", res.Dest, want)
	}
}

func TestComputeCropEmitsSource(t *testing.T) {
	t.Parallel()

	res, ok := Compute(Input{
		Info:        media.VideoInfo{Width: 1920, Height: 1080},
		Crop:        media.Rect{X: 100, Y: 50, W: 800, H: 600},
		Scale:       1,
		Dst:         media.Rect{W: 640, H: 480},
		HasViewport: true,
	})
	if !ok {
		t.Fatal("Compute rejected valid input")
	}
	if !res.HasSource {
		t.Fatal("crop with viewport did not emit a source rectangle")
	}
	want := FRect{X: 100, Y: 50, W: 800, H: 600}
	if res.Source != want {
		t.Errorf("Source = %v, want %v", res.Source, want)
	}
}

func TestComputeCropScaleDivision(t *testing.T) {
	t.Parallel()

	res, ok := Compute(Input{
		Info:        media.VideoInfo{Width: 1920, Height: 1080},
		Crop:        media.Rect{X: 100, Y: 50, W: 800, H: 600},
		Scale:       2,
		Dst:         media.Rect{W: 640, H: 480},
		HasViewport: true,
	})
	if !ok {
		t.Fatal("Compute rejected valid input")
	}
	want := FRect{X: 50, Y: 25, W: 400, H: 300}
	if res.Source != want {
		t.Errorf("Source = %v, want %v", res.Source, want)
	}
}

func TestComputeCropSwappedByTransform(t *testing.T) {
	t.Parallel()

	res, ok := Compute(Input{
		Info:        media.VideoInfo{Width: 1920, Height: 1080},
		Crop:        media.Rect{X: 0, Y: 0, W: 800, H: 600},
		Transform:   compositor.Transform270,
		Scale:       1,
		Dst:         media.Rect{W: 640, H: 480},
		HasViewport: true,
	})
	if !ok {
		t.Fatal("Compute rejected valid input")
	}
	// A 90°-class transform swaps the crop's width and height.
	if res.Source.W != 600 || res.Source.H != 800 {
		t.Errorf("Source = %v, want W=600 H=800", res.Source)
	}
}

func TestComputeNoViewportNoSource(t *testing.T) {
	t.Parallel()

	res, ok := Compute(Input{
		Info:        media.VideoInfo{Width: 320, Height: 240},
		Crop:        media.Rect{X: 0, Y: 0, W: 100, H: 100},
		Scale:       1,
		Dst:         media.Rect{W: 640, H: 480},
		HasViewport: false,
	})
	if !ok {
		t.Fatal("Compute rejected valid input")
	}
	if res.HasSource {
		t.Error("source rectangle emitted without a viewport")
	}
	// No scaling available: native size, centered.
	want := media.Rect{X: 160, Y: 120, W: 320, H: 240}
	if res.Dest != want {
		t.Errorf("Dest = %v, want %v", res.Dest, want)
	}
}
