package quadpix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_CountsAndRatio(t *testing.T) {
	// 4x4 with four uniform 2x2 quadrants of distinct colors:
	// root splits once, every quadrant merges
	buf := NewPixelBuffer(4, 4, 3)
	colors := [][]uint8{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}, {255, 255, 0}}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			q := 0
			if x >= 2 {
				q = 1
			}
			if y >= 2 {
				q += 2
			}
			buf.SetPixel(x, y, colors[q])
		}
	}

	tree, err := Build(buf, 5)
	require.NoError(t, err)

	stats, err := Analyze(tree)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.NodeCount)
	assert.Equal(t, 4, stats.LeafCount)
	assert.Equal(t, 1, stats.MaxDepth)
	assert.Equal(t, 5, stats.Threshold)
	assert.InDelta(t, 1-5.0/16.0, stats.CompressionRatio, 1e-9)
}

func TestAnalyze_RatioBounds(t *testing.T) {
	// uniform image approaches 1, full noise at threshold 0 stays low
	uniform, err := Build(uniformBuffer(32, 32, []uint8{7, 7, 7}), 1)
	require.NoError(t, err)
	su, err := Analyze(uniform)
	require.NoError(t, err)
	assert.InDelta(t, 1-1.0/1024.0, su.CompressionRatio, 1e-9)

	noisy, err := Build(noiseBuffer(32, 32, 3, 77), 0)
	require.NoError(t, err)
	sn, err := Analyze(noisy)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sn.CompressionRatio, 0.0)
	assert.Less(t, sn.CompressionRatio, su.CompressionRatio)
}

func TestAnalyze_MaxDepth(t *testing.T) {
	// 1x1 leaves on a 16-wide noise image force full subdivision:
	// depth log2(16) = 4
	tree, err := Build(noiseBuffer(16, 16, 3, 123), 0)
	require.NoError(t, err)
	stats, err := Analyze(tree)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.MaxDepth)
}

func TestAnalyze_NilTree(t *testing.T) {
	_, err := Analyze(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Analyze(&Tree{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  error
	}{
		{name: "flip ok", settings: Settings{Threshold: 10, Operation: OpFlipHorizontal}},
		{name: "analyze ok", settings: Settings{Threshold: 1, Operation: OpAnalyze}},
		{name: "blend ok", settings: Settings{Threshold: 50, Operation: OpOverlayBlend, Alpha: 0.5}},
		{name: "threshold low", settings: Settings{Threshold: -1, Operation: OpAnalyze}, wantErr: ErrInvalidInput},
		{name: "threshold high", settings: Settings{Threshold: 51, Operation: OpAnalyze}, wantErr: ErrInvalidInput},
		{name: "bad operation", settings: Settings{Threshold: 10, Operation: "rotate"}, wantErr: ErrInvalidArgument},
		{name: "bad alpha", settings: Settings{Threshold: 10, Operation: OpOverlayBlend, Alpha: 2}, wantErr: ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSettings_OverlayOp(t *testing.T) {
	op, err := Settings{Operation: OpOverlayScreen}.OverlayOp()
	require.NoError(t, err)
	assert.Equal(t, OpScreen, op)

	_, err = Settings{Operation: OpFlipVertical}.OverlayOp()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
