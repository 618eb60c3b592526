package quadpix

import "fmt"

// Named pipeline operations as they appear at the service boundary.
const (
	OpFlipHorizontal  = "flip-horizontal"
	OpFlipVertical    = "flip-vertical"
	OpOverlayBlend    = "overlay-blend"
	OpOverlayAdd      = "overlay-add"
	OpOverlayMultiply = "overlay-multiply"
	OpOverlayScreen   = "overlay-screen"
	OpAnalyze         = "analyze"
)

// Settings carries the user-tunable knobs of one pipeline run. Alpha
// is only meaningful for overlay-blend.
type Settings struct {
	Threshold int     `json:"threshold" yaml:"threshold"`
	Operation string  `json:"operation" yaml:"operation"`
	Alpha     float64 `json:"alpha" yaml:"alpha"`
}

// Validate checks the settings before any tree is built.
func (s Settings) Validate() error {
	if s.Threshold < MinThreshold || s.Threshold > MaxThreshold {
		return fmt.Errorf("%w: threshold %d outside [%d, %d]",
			ErrInvalidInput, s.Threshold, MinThreshold, MaxThreshold)
	}
	switch s.Operation {
	case OpFlipHorizontal, OpFlipVertical, OpAnalyze:
	case OpOverlayBlend, OpOverlayAdd, OpOverlayMultiply, OpOverlayScreen:
		if s.Alpha < 0 || s.Alpha > 1 {
			return fmt.Errorf("%w: alpha %g outside [0, 1]", ErrInvalidArgument, s.Alpha)
		}
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidArgument, s.Operation)
	}
	return nil
}

// OverlayOp maps an overlay-* operation name to its blend rule.
func (s Settings) OverlayOp() (Operation, error) {
	switch s.Operation {
	case OpOverlayBlend:
		return OpBlend, nil
	case OpOverlayAdd:
		return OpAdd, nil
	case OpOverlayMultiply:
		return OpMultiply, nil
	case OpOverlayScreen:
		return OpScreen, nil
	}
	return "", fmt.Errorf("%w: %q is not an overlay operation", ErrInvalidArgument, s.Operation)
}
