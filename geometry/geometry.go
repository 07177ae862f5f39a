// Package geometry computes the source and destination rectangles that
// place a video inside a render area: pixel-aspect scaling, rotation,
// crop, high-DPI scale correction, and aspect-preserving centering. All
// functions are pure.
package geometry

import (
	"github.com/ovlab/waysink/compositor"
	"github.com/ovlab/waysink/media"
)

// Input collects everything the placement computation needs.
type Input struct {
	// Info carries the intrinsic decoded size and pixel aspect ratio.
	Info media.VideoInfo
	// Crop is the source crop in buffer coordinates. A negative Crop.W
	// means no crop: the full source is used.
	Crop media.Rect
	// Transform is the buffer orientation applied by the compositor.
	Transform compositor.Transform
	// Scale is the integer buffer-scale divisor for high-DPI outputs;
	// values below 1 are treated as 1.
	Scale int
	// Dst is the render rectangle the video must fit inside.
	Dst media.Rect
	// HasViewport selects true scaling: when false only the centering
	// offset is computed and no source rectangle is emitted.
	HasViewport bool
}

// FRect is a rectangle in buffer-fractional coordinates, as consumed by a
// compositor viewport source.
type FRect struct {
	X, Y, W, H float64
}

// Result is the computed placement.
type Result struct {
	// Dest is where the video goes, relative to the render rectangle's
	// origin, sized for the video subsurface.
	Dest media.Rect
	// Source is the buffer-fractional crop to program into the viewport.
	// Only meaningful when HasSource is true (viewport available and a
	// crop was requested).
	Source    FRect
	HasSource bool
}

// Compute derives the video placement for in. It returns false when the
// destination rectangle has zero area; callers must then skip the commit
// entirely rather than divide by zero downstream.
func Compute(in Input) (Result, bool) {
	if in.Dst.Empty() {
		return Result{}, false
	}

	scale := in.Scale
	if scale < 1 {
		scale = 1
	}

	// The displayed size starts from the par-scaled width; a 90°-class
	// transform swaps it because the buffer's stored orientation differs
	// from the displayed one.
	src := media.Rect{W: in.Info.ScaledWidth(), H: in.Info.Height}
	hasCrop := in.Crop.W >= 0
	srcX := float64(in.Crop.X / scale)
	srcY := float64(in.Crop.Y / scale)
	srcW := float64(-1)
	srcH := float64(-1)
	if in.Transform.SwapsDimensions() {
		src.W, src.H = src.H, src.W
		if hasCrop {
			srcW = float64(in.Crop.H / scale)
			srcH = float64(in.Crop.W / scale)
		}
	} else if hasCrop {
		srcW = float64(in.Crop.W / scale)
		srcH = float64(in.Crop.H / scale)
	}

	dst := media.Rect{W: in.Dst.W, H: in.Dst.H}

	var res Result
	res.Dest = CenterRect(src, dst, in.HasViewport)
	if in.HasViewport && hasCrop && srcW >= 0 && srcH >= 0 {
		res.Source = FRect{X: srcX, Y: srcY, W: srcW, H: srcH}
		res.HasSource = true
	}
	return res, true
}

// CenterRect centers src inside dst. With scaling, src is scaled to the
// largest size that fits dst while preserving its aspect ratio; without,
// src keeps its size (clamped to dst) and only the offset is computed.
func CenterRect(src, dst media.Rect, scaling bool) media.Rect {
	var result media.Rect

	if !scaling {
		result.W = min(src.W, dst.W)
		result.H = min(src.H, dst.H)
		result.X = dst.X + (dst.W-result.W)/2
		result.Y = dst.Y + (dst.H-result.H)/2
		return result
	}

	if src.W <= 0 || src.H <= 0 {
		return media.Rect{X: dst.X, Y: dst.Y}
	}

	// Compare aspect ratios without floating point: src wider than dst
	// means width-limited, letterbox top/bottom.
	if src.W*dst.H > dst.W*src.H {
		result.W = dst.W
		result.H = src.H * dst.W / src.W
	} else {
		result.W = src.W * dst.H / src.H
		result.H = dst.H
	}
	result.X = dst.X + (dst.W-result.W)/2
	result.Y = dst.Y + (dst.H-result.H)/2
	return result
}
