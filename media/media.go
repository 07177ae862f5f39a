// Package media defines the core value types shared by the presentation
// engine: rectangles, pixel formats, video geometry, and refcounted frames.
package media

// Rect is an integer rectangle in surface coordinates.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle has zero area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// PixelFormat identifies the memory layout of a video frame. The set is
// limited to what the shared-memory transport accepts.
type PixelFormat int

const (
	PixelFormatUnknown PixelFormat = iota
	PixelFormatBGRx                // packed 32-bit, alpha byte ignored
	PixelFormatBGRA                // packed 32-bit with alpha
	PixelFormatNV12                // YUV 4:2:0 semi-planar
	PixelFormatI420                // YUV 4:2:0 planar
)

func (p PixelFormat) String() string {
	switch p {
	case PixelFormatBGRx:
		return "BGRx"
	case PixelFormatBGRA:
		return "BGRA"
	case PixelFormatNV12:
		return "NV12"
	case PixelFormatI420:
		return "I420"
	default:
		return "Unknown"
	}
}

// HasAlpha reports whether the format carries an alpha channel. Formats
// without alpha allow the video surface to be marked fully opaque.
func (p PixelFormat) HasAlpha() bool {
	return p == PixelFormatBGRA
}

// BytesPerPixel returns the packed pixel size, or 0 for planar formats.
func (p PixelFormat) BytesPerPixel() int {
	switch p {
	case PixelFormatBGRx, PixelFormatBGRA:
		return 4
	default:
		return 0
	}
}

// VideoInfo describes the intrinsic geometry of decoded frames: storage
// dimensions, pixel aspect ratio, and pixel format.
type VideoInfo struct {
	Width  int
	Height int
	ParN   int // pixel aspect ratio numerator; 0 means 1
	ParD   int // pixel aspect ratio denominator; 0 means 1
	Format PixelFormat
}

// ScaledWidth returns the display width after pixel-aspect-ratio scaling,
// rounded to the nearest integer.
func (i VideoInfo) ScaledWidth() int {
	n, d := i.ParN, i.ParD
	if n <= 0 || d <= 0 {
		return i.Width
	}
	return int((int64(i.Width)*int64(n) + int64(d)/2) / int64(d))
}

// Orientation is the consumer-facing rotation/flip request, matching the
// orientation tags found in stream metadata.
type Orientation int

const (
	OrientationIdentity Orientation = iota
	Orientation90R                  // rotate 90° clockwise
	Orientation180
	Orientation90L // rotate 90° counter-clockwise
	OrientationHorizontalFlip
	OrientationVerticalFlip
	OrientationULLR // flip across upper-left/lower-right diagonal
	OrientationURLL // flip across upper-right/lower-left diagonal
)

func (o Orientation) String() string {
	switch o {
	case OrientationIdentity:
		return "identity"
	case Orientation90R:
		return "90r"
	case Orientation180:
		return "180"
	case Orientation90L:
		return "90l"
	case OrientationHorizontalFlip:
		return "horizontal-flip"
	case OrientationVerticalFlip:
		return "vertical-flip"
	case OrientationULLR:
		return "ul-lr"
	case OrientationURLL:
		return "ur-ll"
	default:
		return "unknown"
	}
}
