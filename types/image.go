package types

import "fmt"

// PixelFormat names the layout of an Image's raw buffer.
type PixelFormat string

const (
	PixelFormatUnconstrained PixelFormat = ""
	PixelFormatRGB8          PixelFormat = "rgb8"
	PixelFormatBGR8          PixelFormat = "bgr8"
	PixelFormatGray8         PixelFormat = "gray8"
	PixelFormatRGBA8         PixelFormat = "rgba8"
)

// ImageValue is the runtime value carried on a port declared as Image.
// The pixel buffer is the unit of copy-on-branch accounting: Pixels is
// owned by exactly one packet at a time, and deep-copy allocates a fresh
// slice.
type ImageValue struct {
	Width, Height, Channels int
	Format                  PixelFormat
	Pixels                  []byte
	FrameID                 uint64
	TimestampUnixNano       int64
	Metadata                map[string]any
}

// SizeHint implements packet.Payload: the byte size of the pixel buffer,
// used by the branch router's copy-size threshold.
func (v ImageValue) SizeHint() int { return len(v.Pixels) }

// CloneForBranch implements packet.Payload.
func (v ImageValue) CloneForBranch() any { return v.DeepClone() }

// DeepClone returns a copy of v whose Pixels slice does not alias v's.
func (v ImageValue) DeepClone() ImageValue {
	clone := v
	clone.Pixels = append([]byte(nil), v.Pixels...)
	if v.Metadata != nil {
		clone.Metadata = make(map[string]any, len(v.Metadata))
		for k, mv := range v.Metadata {
			clone.Metadata[k] = mv
		}
	}
	return clone
}

// ImageType is the DataType descriptor for Image values. Format, when
// non-empty, constrains Validate and CompatibleWith to frames declared in
// that exact pixel format; an empty Format leaves the format
// unconstrained, so two Image descriptors are compatible when either side
// is unconstrained or both formats match.
type ImageType struct {
	Format PixelFormat
}

var _ DataType = ImageType{}

func (t ImageType) Name() string { return "Image" }

func (t ImageType) Validate(value any) bool {
	v, ok := value.(ImageValue)
	if !ok {
		return false
	}
	if v.Width <= 0 || v.Height <= 0 || v.Channels <= 0 {
		return false
	}
	if t.Format != PixelFormatUnconstrained && v.Format != PixelFormatUnconstrained && v.Format != t.Format {
		return false
	}
	return true
}

func (t ImageType) Convert(value any) (any, error) {
	v, ok := value.(ImageValue)
	if !ok {
		return nil, &ConversionError{TargetType: t.Name(), SourceType: typeNameOf(value), Reason: "not an ImageValue"}
	}
	if !t.Validate(v) {
		return nil, &ConversionError{TargetType: t.Name(), SourceType: typeNameOf(value), Reason: fmt.Sprintf("format %q incompatible with %q", v.Format, t.Format)}
	}
	return v, nil
}

func (t ImageType) CompatibleWith(other DataType) bool {
	o, ok := other.(ImageType)
	if !ok {
		return false
	}
	if t.Format == PixelFormatUnconstrained || o.Format == PixelFormatUnconstrained {
		return true
	}
	return t.Format == o.Format
}
