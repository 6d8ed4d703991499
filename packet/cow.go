package packet

// CopyPolicy decides, for a value flowing out of a branching output port,
// whether a given destination gets the original value (zero-copy) or a
// deep copy.
const (
	// DeepCopySizeThresholdBytes is the byte-size estimate above which the
	// policy prefers a deep copy even for payloads that don't mandate one.
	DeepCopySizeThresholdBytes = 1 << 20 // ~1 MB

	// DeepCopyBranchCountThreshold is the number of destinations above
	// which the policy prefers a deep copy regardless of size, to bound
	// the number of destinations that could race on a shared buffer.
	DeepCopyBranchCountThreshold = 4
)

// AlwaysDeepCopyTypes lists the port type names that always require
// isolation on branch, regardless of measured size: images and detection
// lists. The mandate holds even for tiny payloads.
var AlwaysDeepCopyTypes = map[string]bool{
	"Image":         true,
	"DetectionList": true,
}

// CopyPolicy implements the router's per-destination copy decision.
type CopyPolicy struct {
	SizeThresholdBytes   int
	BranchCountThreshold int
}

// DefaultCopyPolicy returns the policy using the default constants above.
func DefaultCopyPolicy() CopyPolicy {
	return CopyPolicy{
		SizeThresholdBytes:   DeepCopySizeThresholdBytes,
		BranchCountThreshold: DeepCopyBranchCountThreshold,
	}
}

// ShouldDeepCopy decides whether the given value, flowing to one of
// branchCount destinations via a port declared as typeName, should be deep
// copied for a particular non-primary destination.
func (p CopyPolicy) ShouldDeepCopy(typeName string, value any, branchCount int) bool {
	if AlwaysDeepCopyTypes[typeName] {
		return true
	}

	sizeHint := 0
	if payload, ok := value.(Payload); ok {
		sizeHint = payload.SizeHint()
	}
	if sizeHint >= p.SizeThresholdBytes {
		return true
	}
	if branchCount > p.BranchCountThreshold {
		return true
	}
	return false
}

// Clone returns an isolated copy of value: Payload implementations use
// their own DeepClone, everything else falls back to a shallow Go copy
// (value semantics already isolate plain structs and primitives; maps and
// slices without a Payload implementation are the caller's responsibility
// to avoid mutating post-branch).
func Clone(value any) any {
	if payload, ok := value.(Payload); ok {
		return payload.CloneForBranch()
	}
	return value
}
