package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePayload struct {
	size  int
	clone int
}

func (f fakePayload) SizeHint() int { return f.size }
func (f fakePayload) CloneForBranch() any {
	f.clone++
	return f
}

func TestPacketReleaseReachesZeroOnce(t *testing.T) {
	t.Parallel()

	p := New(1, map[string]any{"in": 1})
	p.SetRefCount(2)

	assert.False(t, p.Release())
	assert.True(t, p.Release())
}

func TestIDGeneratorMonotonic(t *testing.T) {
	t.Parallel()

	var gen IDGenerator
	a := gen.Next()
	b := gen.Next()
	assert.Equal(t, uint64(1), a)
	assert.Equal(t, uint64(2), b)
}

func TestCopyPolicyAlwaysDeepCopyTypesAboveThreshold(t *testing.T) {
	t.Parallel()

	p := DefaultCopyPolicy()
	big := fakePayload{size: p.SizeThresholdBytes}
	assert.True(t, p.ShouldDeepCopy("Image", big, 2))
}

func TestCopyPolicyAlwaysDeepCopyTypesIgnoresSize(t *testing.T) {
	t.Parallel()

	p := DefaultCopyPolicy()
	tiny := fakePayload{size: 3}
	assert.True(t, p.ShouldDeepCopy("Image", tiny, 2))
	assert.True(t, p.ShouldDeepCopy("DetectionList", tiny, 2))
}

func TestCopyPolicyBranchCountThreshold(t *testing.T) {
	t.Parallel()

	p := DefaultCopyPolicy()
	small := fakePayload{size: 10}
	assert.False(t, p.ShouldDeepCopy("String", small, 2))
	assert.True(t, p.ShouldDeepCopy("String", small, p.BranchCountThreshold+1))
}

func TestCloneUsesPayloadWhenAvailable(t *testing.T) {
	t.Parallel()

	v := fakePayload{size: 1}
	cloned := Clone(v)
	_, ok := cloned.(fakePayload)
	assert.True(t, ok)
}

func TestCloneFallsBackToValueForNonPayload(t *testing.T) {
	t.Parallel()

	cloned := Clone(42)
	assert.Equal(t, 42, cloned)
}
