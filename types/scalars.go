package types

import (
	"fmt"
	"regexp"
)

// MetadataValue is a free-form key->value mapping, optionally constrained
// to carry a set of required keys.
type MetadataValue map[string]any

// MetadataType is the DataType descriptor for MetadataValue.
type MetadataType struct {
	RequiredKeys []string
}

var _ DataType = MetadataType{}

func (MetadataType) Name() string { return "Metadata" }

func (t MetadataType) Validate(value any) bool {
	v, ok := value.(MetadataValue)
	if !ok {
		return false
	}
	for _, k := range t.RequiredKeys {
		if _, present := v[k]; !present {
			return false
		}
	}
	return true
}

func (t MetadataType) Convert(value any) (any, error) {
	v, ok := value.(MetadataValue)
	if !ok {
		if m, ok := value.(map[string]any); ok {
			v = MetadataValue(m)
		} else {
			return nil, &ConversionError{TargetType: t.Name(), SourceType: typeNameOf(value), Reason: "not a mapping"}
		}
	}
	if !t.Validate(v) {
		return nil, &ConversionError{TargetType: t.Name(), SourceType: typeNameOf(value), Reason: "missing required key"}
	}
	return v, nil
}

func (MetadataType) CompatibleWith(other DataType) bool {
	_, ok := other.(MetadataType)
	return ok
}

// StringType is the DataType descriptor for string values, optionally
// bounded by MaxLength and/or constrained by a Pattern regexp.
type StringType struct {
	MaxLength int // 0 means unbounded
	Pattern   string
}

var _ DataType = StringType{}

func (StringType) Name() string { return "String" }

func (t StringType) Validate(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	if t.MaxLength > 0 && len(s) > t.MaxLength {
		return false
	}
	if t.Pattern != "" {
		re, err := regexp.Compile(t.Pattern)
		if err != nil {
			return false
		}
		if !re.MatchString(s) {
			return false
		}
	}
	return true
}

func (t StringType) Convert(value any) (any, error) {
	s := fmt.Sprintf("%v", value)
	if !t.Validate(s) {
		return nil, &ConversionError{TargetType: t.Name(), SourceType: typeNameOf(value), Reason: "string fails length/pattern constraint"}
	}
	return s, nil
}

func (t StringType) CompatibleWith(other DataType) bool {
	_, ok := other.(StringType)
	return ok
}

// NumberType is the DataType descriptor for numeric values, optionally
// bounded by Min/Max and/or restricted to integers.
type NumberType struct {
	Min, Max     float64
	HasMin       bool
	HasMax       bool
	IntegerOnly  bool
}

var _ DataType = NumberType{}

func (NumberType) Name() string { return "Number" }

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func isIntegral(value any) bool {
	switch value.(type) {
	case int, int32, int64:
		return true
	case float64:
		f := value.(float64)
		return f == float64(int64(f))
	case float32:
		f := value.(float32)
		return f == float32(int64(f))
	default:
		return false
	}
}

func (t NumberType) Validate(value any) bool {
	f, ok := asFloat(value)
	if !ok {
		return false
	}
	if t.IntegerOnly && !isIntegral(value) {
		return false
	}
	if t.HasMin && f < t.Min {
		return false
	}
	if t.HasMax && f > t.Max {
		return false
	}
	return true
}

func (t NumberType) Convert(value any) (any, error) {
	f, ok := asFloat(value)
	if !ok {
		return nil, &ConversionError{TargetType: t.Name(), SourceType: typeNameOf(value), Reason: "not numeric"}
	}
	if t.IntegerOnly {
		f = float64(int64(f))
	}
	if !t.Validate(f) {
		return nil, &ConversionError{TargetType: t.Name(), SourceType: typeNameOf(value), Reason: "out of bounds"}
	}
	return f, nil
}

func (t NumberType) CompatibleWith(other DataType) bool {
	_, ok := other.(NumberType)
	return ok
}

// BooleanType is the DataType descriptor for boolean values.
type BooleanType struct{}

var _ DataType = BooleanType{}

func (BooleanType) Name() string { return "Boolean" }

func (BooleanType) Validate(value any) bool {
	_, ok := value.(bool)
	return ok
}

func (t BooleanType) Convert(value any) (any, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, &ConversionError{TargetType: t.Name(), SourceType: typeNameOf(value), Reason: "not a bool"}
	}
	return b, nil
}

func (BooleanType) CompatibleWith(other DataType) bool {
	_, ok := other.(BooleanType)
	return ok
}

// builtinDescriptors returns the descriptors auto-registered by NewRegistry.
func builtinDescriptors() []DataType {
	return []DataType{
		ImageType{},
		BoundingBoxType{},
		DetectionListType{},
		MetadataType{},
		StringType{},
		NumberType{},
		BooleanType{},
	}
}
