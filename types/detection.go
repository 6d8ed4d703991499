package types

import "fmt"

// BoundingBoxValue is the runtime value for a BoundingBox port:
// x, y, w, h are non-negative, confidence is in [0,1], and the detected
// class carries both a numeric id and a human-readable name.
type BoundingBoxValue struct {
	X, Y, W, H float64
	Confidence float64
	ClassID    int
	ClassName  string
}

func (v BoundingBoxValue) valid() bool {
	if v.X < 0 || v.Y < 0 || v.W < 0 || v.H < 0 {
		return false
	}
	return v.Confidence >= 0 && v.Confidence <= 1
}

// BoundingBoxType is the DataType descriptor for single bounding boxes.
type BoundingBoxType struct{}

var _ DataType = BoundingBoxType{}

func (BoundingBoxType) Name() string { return "BoundingBox" }

func (BoundingBoxType) Validate(value any) bool {
	v, ok := value.(BoundingBoxValue)
	return ok && v.valid()
}

func (t BoundingBoxType) Convert(value any) (any, error) {
	v, ok := value.(BoundingBoxValue)
	if !ok || !v.valid() {
		return nil, &ConversionError{TargetType: t.Name(), SourceType: typeNameOf(value), Reason: "invalid bounding box"}
	}
	return v, nil
}

func (BoundingBoxType) CompatibleWith(other DataType) bool {
	_, ok := other.(BoundingBoxType)
	return ok
}

// DetectionListValue is an ordered sequence of bounding boxes with an
// optional minimum-confidence floor applied by Filtered.
type DetectionListValue struct {
	Boxes         []BoundingBoxValue
	MinConfidence float64
}

// SizeHint implements packet.Payload, used by the COW router.
func (v DetectionListValue) SizeHint() int {
	// A BoundingBoxValue packs to roughly 64 bytes on a 64-bit platform
	// (four float64 coordinates, a float64 confidence, an int class id,
	// and a string header); this is an estimate for the branch router,
	// not an exact accounting.
	return len(v.Boxes) * 64
}

// CloneForBranch implements packet.Payload.
func (v DetectionListValue) CloneForBranch() any { return v.DeepClone() }

// DeepClone returns a copy of v whose Boxes slice does not alias v's.
func (v DetectionListValue) DeepClone() DetectionListValue {
	clone := v
	clone.Boxes = append([]BoundingBoxValue(nil), v.Boxes...)
	return clone
}

// Filtered returns the subset of Boxes at or above MinConfidence.
func (v DetectionListValue) Filtered() []BoundingBoxValue {
	if v.MinConfidence <= 0 {
		return v.Boxes
	}
	out := make([]BoundingBoxValue, 0, len(v.Boxes))
	for _, b := range v.Boxes {
		if b.Confidence >= v.MinConfidence {
			out = append(out, b)
		}
	}
	return out
}

// DetectionListType is the DataType descriptor for DetectionListValue.
type DetectionListType struct{}

var _ DataType = DetectionListType{}

func (DetectionListType) Name() string { return "DetectionList" }

func (DetectionListType) Validate(value any) bool {
	v, ok := value.(DetectionListValue)
	if !ok {
		return false
	}
	for _, b := range v.Boxes {
		if !b.valid() {
			return false
		}
	}
	return v.MinConfidence >= 0 && v.MinConfidence <= 1
}

func (t DetectionListType) Convert(value any) (any, error) {
	v, ok := value.(DetectionListValue)
	if !ok {
		return nil, &ConversionError{TargetType: t.Name(), SourceType: typeNameOf(value), Reason: "not a DetectionListValue"}
	}
	if !t.Validate(v) {
		return nil, &ConversionError{TargetType: t.Name(), SourceType: typeNameOf(value), Reason: fmt.Sprintf("invalid detection list (%d boxes)", len(v.Boxes))}
	}
	return v, nil
}

func (DetectionListType) CompatibleWith(other DataType) bool {
	_, ok := other.(DetectionListType)
	return ok
}
