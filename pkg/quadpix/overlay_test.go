package quadpix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPair(t *testing.T, a, b *PixelBuffer, threshold int) (*Tree, *Tree) {
	t.Helper()
	ta, err := Build(a, threshold)
	require.NoError(t, err)
	tb, err := Build(b, threshold)
	require.NoError(t, err)
	return ta, tb
}

func TestOverlay_BlendAlphaEndpoints(t *testing.T) {
	bufA := noiseBuffer(16, 16, 3, 1)
	bufB := noiseBuffer(16, 16, 3, 2)
	ta, tb := buildPair(t, bufA, bufB, 8)

	wantA, err := Reconstruct(ta)
	require.NoError(t, err)
	wantB, err := Reconstruct(tb)
	require.NoError(t, err)

	full, err := Overlay(ta, tb, OpBlend, 1.0)
	require.NoError(t, err)
	got, err := Reconstruct(full)
	require.NoError(t, err)
	assert.Equal(t, wantA.Samples, got.Samples, "alpha 1.0 keeps side A")

	none, err := Overlay(ta, tb, OpBlend, 0.0)
	require.NoError(t, err)
	got, err = Reconstruct(none)
	require.NoError(t, err)
	assert.Equal(t, wantB.Samples, got.Samples, "alpha 0.0 keeps side B")
}

func TestOverlay_FlippedInputKeepsDetail(t *testing.T) {
	// a mirrored odd-width tree carries splits that no longer line up
	// with the canonical quadrants; overlay must still resolve every
	// pixel instead of flattening the misaligned strips
	bufA := noiseBuffer(5, 5, 3, 21)
	bufB := noiseBuffer(5, 5, 3, 22)
	ta, tb := buildPair(t, bufA, bufB, 0)
	flipped, err := Flip(ta, Horizontal)
	require.NoError(t, err)

	wantA, err := Reconstruct(flipped)
	require.NoError(t, err)
	wantB, err := Reconstruct(tb)
	require.NoError(t, err)

	full, err := Overlay(flipped, tb, OpBlend, 1.0)
	require.NoError(t, err)
	got, err := Reconstruct(full)
	require.NoError(t, err)
	assert.Equal(t, wantA.Samples, got.Samples, "alpha 1.0 keeps the mirrored side")

	none, err := Overlay(flipped, tb, OpBlend, 0.0)
	require.NoError(t, err)
	got, err = Reconstruct(none)
	require.NoError(t, err)
	assert.Equal(t, wantB.Samples, got.Samples, "alpha 0.0 keeps side B")
}

func TestOverlay_MultiplyUniformGray(t *testing.T) {
	gray := []uint8{128, 128, 128}
	ta, tb := buildPair(t, uniformBuffer(4, 4, gray), uniformBuffer(4, 4, gray), 10)

	result, err := Overlay(ta, tb, OpMultiply, 0.5)
	require.NoError(t, err)

	// 128*128/255 = 64 per channel
	buf, err := Reconstruct(result)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, []uint8{64, 64, 64}, buf.Pixel(x, y))
		}
	}
}

func TestOverlay_BlendRules(t *testing.T) {
	tests := []struct {
		name  string
		op    Operation
		alpha float64
		a, b  uint8
		want  uint8
	}{
		{name: "blend midpoint", op: OpBlend, alpha: 0.5, a: 100, b: 200, want: 150},
		{name: "blend weighted", op: OpBlend, alpha: 0.25, a: 100, b: 200, want: 175},
		{name: "add", op: OpAdd, a: 100, b: 50, want: 150},
		{name: "add clips", op: OpAdd, a: 200, b: 200, want: 255},
		{name: "multiply", op: OpMultiply, a: 255, b: 100, want: 100},
		{name: "multiply zero", op: OpMultiply, a: 0, b: 200, want: 0},
		{name: "screen", op: OpScreen, a: 255, b: 17, want: 255},
		{name: "screen zero", op: OpScreen, a: 0, b: 0, want: 0},
		{name: "screen mid", op: OpScreen, a: 128, b: 128, want: 192},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := combine([]uint8{tt.a}, []uint8{tt.b}, tt.op, tt.alpha)
			assert.Equal(t, []uint8{tt.want}, got)
		})
	}
}

func TestOverlay_MismatchedGranularityKeepsDetail(t *testing.T) {
	// side A is a single uniform leaf, side B carries fine structure
	flat := uniformBuffer(8, 8, []uint8{255, 255, 255})
	detail := noiseBuffer(8, 8, 3, 3)
	ta, err := Build(flat, 10)
	require.NoError(t, err)
	require.True(t, ta.Root.Leaf)
	tb, err := Build(detail, 2)
	require.NoError(t, err)
	require.False(t, tb.Root.Leaf)

	result, err := Overlay(ta, tb, OpMultiply, 0.5)
	require.NoError(t, err)

	// white multiplied by B is B: the leaf side must not flatten B
	got, err := Reconstruct(result)
	require.NoError(t, err)
	want, err := Reconstruct(tb)
	require.NoError(t, err)
	assert.Equal(t, want.Samples, got.Samples)

	statsB, err := Analyze(tb)
	require.NoError(t, err)
	statsOut, err := Analyze(result)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, statsOut.NodeCount, statsB.NodeCount)
}

func TestOverlay_DimensionMismatch(t *testing.T) {
	ta, err := Build(uniformBuffer(4, 4, []uint8{1, 1, 1}), 5)
	require.NoError(t, err)
	tb, err := Build(uniformBuffer(4, 8, []uint8{1, 1, 1}), 5)
	require.NoError(t, err)

	_, err = Overlay(ta, tb, OpBlend, 0.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "4x4")
	assert.Contains(t, err.Error(), "4x8")
}

func TestOverlay_ChannelMismatch(t *testing.T) {
	ta, err := Build(uniformBuffer(4, 4, []uint8{1, 1, 1}), 5)
	require.NoError(t, err)
	tb, err := Build(uniformBuffer(4, 4, []uint8{1, 1, 1, 255}), 5)
	require.NoError(t, err)

	_, err = Overlay(ta, tb, OpBlend, 0.5)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestOverlay_InvalidArguments(t *testing.T) {
	ta, tb := buildPair(t, uniformBuffer(2, 2, []uint8{1, 1, 1}), uniformBuffer(2, 2, []uint8{2, 2, 2}), 5)

	_, err := Overlay(ta, tb, Operation("dissolve"), 0.5)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Overlay(ta, tb, OpBlend, -0.1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Overlay(ta, tb, OpBlend, 1.1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Overlay(nil, tb, OpBlend, 0.5)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOverlay_DoesNotRemerge(t *testing.T) {
	// both sides subdivide; identical structure combines node by node
	// and stays at combination granularity even when colors converge
	bufA := gradientBuffer(8, 8)
	bufB := mirrorBuffer(bufA, Horizontal)
	ta, tb := buildPair(t, bufA, bufB, 2)

	result, err := Overlay(ta, tb, OpBlend, 0.5)
	require.NoError(t, err)
	statsA, err := Analyze(ta)
	require.NoError(t, err)
	statsOut, err := Analyze(result)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, statsOut.NodeCount, statsA.NodeCount)
}

func TestCompact_MergesUniformResult(t *testing.T) {
	detail := noiseBuffer(8, 8, 3, 11)
	tb, err := Build(detail, 0)
	require.NoError(t, err)

	// multiply by zero flattens every region to black, but Overlay
	// keeps the combination granularity until Compact runs
	zero, err := Build(uniformBuffer(8, 8, []uint8{0, 0, 0}), 0)
	require.NoError(t, err)
	result, err := Overlay(tb, zero, OpMultiply, 0.5)
	require.NoError(t, err)

	before, err := Analyze(result)
	require.NoError(t, err)
	require.Greater(t, before.NodeCount, 1)

	compacted := Compact(result)
	after, err := Analyze(compacted)
	require.NoError(t, err)
	assert.Equal(t, 1, after.NodeCount, "uniform black result collapses to a single leaf")

	buf, err := Reconstruct(compacted)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0}, buf.Pixel(3, 3))
}

func TestCompact_RespectsThreshold(t *testing.T) {
	buf := noiseBuffer(8, 8, 3, 21)
	tree, err := Build(buf, 0)
	require.NoError(t, err)

	// threshold 0 re-merge only collapses exactly-uniform siblings, so
	// a noisy tree survives untouched
	compacted := Compact(tree)
	assert.Equal(t, tree, compacted)
}

func TestOverlay_InputsUntouched(t *testing.T) {
	bufA := noiseBuffer(8, 8, 3, 31)
	bufB := noiseBuffer(8, 8, 3, 32)
	ta, tb := buildPair(t, bufA, bufB, 4)
	snapA := ta.Root.clone()
	snapB := tb.Root.clone()

	_, err := Overlay(ta, tb, OpScreen, 0.5)
	require.NoError(t, err)
	assert.Equal(t, snapA, ta.Root)
	assert.Equal(t, snapB, tb.Root)
}
