package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryAutoRegistersBuiltins(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, name := range []string{"Image", "BoundingBox", "DetectionList", "Metadata", "String", "Number", "Boolean"} {
		_, err := r.Get(name)
		assert.NoErrorf(t, err, "expected built-in %q to be registered", name)
	}
}

func TestRegisterIdempotentBySameDescriptor(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	err := r.Register(StringType{})
	assert.NoError(t, err, "re-registering the identical built-in descriptor must be a no-op")
}

func TestRegisterDuplicateNameIsConfigError(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	err := r.Register(StringType{MaxLength: 10})
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "String", dup.TypeName)
}

func TestGetUnknownNameIsNotFound(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.Get("DoesNotExist")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestCheckCompatibilityUnknownNamesAreFalse(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	assert.False(t, r.CheckCompatibility("Nope", "Number"))
	assert.False(t, r.CheckCompatibility("Number", "Nope"))
}

func TestCheckCompatibilitySymmetric(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	a := r.CheckCompatibility("Number", "Number")
	b := r.CheckCompatibility("Number", "Number")
	assert.Equal(t, a, b)
	assert.True(t, a)

	assert.False(t, r.CheckCompatibility("Number", "String"))
	assert.False(t, r.CheckCompatibility("String", "Number"))
}

func TestImageCompatibilityFormatRules(t *testing.T) {
	t.Parallel()

	unconstrained := ImageType{}
	rgb := ImageType{Format: PixelFormatRGB8}
	bgr := ImageType{Format: PixelFormatBGR8}

	assert.True(t, unconstrained.CompatibleWith(rgb))
	assert.True(t, rgb.CompatibleWith(unconstrained))
	assert.True(t, rgb.CompatibleWith(rgb))
	assert.False(t, rgb.CompatibleWith(bgr))
}

func TestNumberValidateBoundsAndIntegerOnly(t *testing.T) {
	t.Parallel()

	nt := NumberType{HasMin: true, Min: 0, HasMax: true, Max: 10, IntegerOnly: true}
	assert.True(t, nt.Validate(5))
	assert.False(t, nt.Validate(-1))
	assert.False(t, nt.Validate(11))
	assert.False(t, nt.Validate(5.5))
}

func TestStringValidateLengthAndPattern(t *testing.T) {
	t.Parallel()

	st := StringType{MaxLength: 5, Pattern: `^[a-z]+$`}
	assert.True(t, st.Validate("abc"))
	assert.False(t, st.Validate("abcdef"))
	assert.False(t, st.Validate("ABC"))
}

func TestMetadataRequiredKeys(t *testing.T) {
	t.Parallel()

	mt := MetadataType{RequiredKeys: []string{"frame_id"}}
	assert.True(t, mt.Validate(MetadataValue{"frame_id": 1}))
	assert.False(t, mt.Validate(MetadataValue{"other": 1}))
}

func TestBoundingBoxValidateRanges(t *testing.T) {
	t.Parallel()

	bt := BoundingBoxType{}
	assert.True(t, bt.Validate(BoundingBoxValue{X: 1, Y: 1, W: 2, H: 2, Confidence: 0.5}))
	assert.False(t, bt.Validate(BoundingBoxValue{X: -1, Y: 1, W: 2, H: 2, Confidence: 0.5}))
	assert.False(t, bt.Validate(BoundingBoxValue{X: 1, Y: 1, W: 2, H: 2, Confidence: 1.5}))
}

func TestDetectionListFiltered(t *testing.T) {
	t.Parallel()

	dl := DetectionListValue{
		Boxes: []BoundingBoxValue{
			{Confidence: 0.9},
			{Confidence: 0.2},
		},
		MinConfidence: 0.5,
	}
	assert.Len(t, dl.Filtered(), 1)
}

func TestDetectionListDeepCloneIsolatesBoxes(t *testing.T) {
	t.Parallel()

	dl := DetectionListValue{Boxes: []BoundingBoxValue{{ClassName: "cat"}}}
	clone := dl.DeepClone()
	clone.Boxes[0].ClassName = "dog"
	assert.Equal(t, "cat", dl.Boxes[0].ClassName)
}

func TestImageDeepCloneIsolatesPixels(t *testing.T) {
	t.Parallel()

	v := ImageValue{Width: 2, Height: 2, Channels: 1, Pixels: []byte{1, 2, 3}}
	clone := v.DeepClone()
	clone.Pixels[0] = 0xFF
	assert.Equal(t, byte(1), v.Pixels[0])
}

func TestConvertValueDelegatesToDescriptor(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	v, err := r.ConvertValue("Boolean", true)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = r.ConvertValue("Boolean", "nope")
	var conv *ConversionError
	require.ErrorAs(t, err, &conv)
	assert.Equal(t, "Boolean", conv.TargetType)
}
