package swarm

import (
	"errors"
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// ErrInvalidParams is wrapped by every parameter validation failure.
var ErrInvalidParams = errors.New("invalid swarm parameters")

// InitParams controls swarm initialization.
type InitParams struct {
	NParticles int
	Dim        int
	XMin, XMax float64
	Alpha      float64
	DeltaT     float64
	// Seed is the initial global best. A zero-dimensional Seed selects the
	// corner (XMax, ..., XMax).
	Seed vector.Vector
}

// Validate checks the parameters before any particle is created.
func (p InitParams) Validate() error {
	switch {
	case p.NParticles <= 0:
		return invalid("n_particles must be positive, got %d", p.NParticles)
	case p.Dim <= 0:
		return invalid("dimensions must be positive, got %d", p.Dim)
	case !finite(p.XMin) || !finite(p.XMax):
		return invalid("x_min and x_max must be finite")
	case p.XMax <= p.XMin:
		return invalid("x_max (%g) must be greater than x_min (%g)", p.XMax, p.XMin)
	case !(p.DeltaT > 0) || !finite(p.DeltaT):
		return invalid("delta_t must be positive, got %g", p.DeltaT)
	case !finite(p.Alpha):
		return invalid("alpha must be finite")
	case p.Seed.Dim() != 0 && p.Seed.Dim() != p.Dim:
		return invalid("seed point has %d coordinates, want %d", p.Seed.Dim(), p.Dim)
	}
	return nil
}

// VelocityBound is the largest initial velocity magnitude per coordinate:
// |alpha/delta_t| * (x_max - x_min) / 2.
func (p InitParams) VelocityBound() float64 {
	return math.Abs(p.Alpha/p.DeltaT) * (p.XMax - p.XMin) / 2
}

// ClampPolicy decides what a velocity coordinate at or beyond v_max becomes.
type ClampPolicy string

const (
	// ClampPositive replaces any |v| >= v_max with +v_max regardless of the
	// sign of v. This is the canonical behavior.
	ClampPositive ClampPolicy = "positive"
	// ClampSymmetric replaces any |v| >= v_max with sign(v) * v_max.
	ClampSymmetric ClampPolicy = "symmetric"
)

// ParseClampPolicy validates a policy name; empty selects ClampPositive.
func ParseClampPolicy(s string) (ClampPolicy, error) {
	switch ClampPolicy(s) {
	case "", ClampPositive:
		return ClampPositive, nil
	case ClampSymmetric:
		return ClampSymmetric, nil
	default:
		return "", invalid("unknown clamp policy %q (must be %s or %s)", s, ClampPositive, ClampSymmetric)
	}
}

// StepParams controls the velocity/position update and the inertia schedule.
type StepParams struct {
	C1, C2      float64
	VMax        float64
	DeltaT      float64
	Beta        float64
	WLowerBound float64
	Clamp       ClampPolicy
}

// Validate checks the update parameters.
func (p StepParams) Validate() error {
	switch {
	case !finite(p.C1) || !finite(p.C2):
		return invalid("c1 and c2 must be finite")
	case p.VMax < 0 || !finite(p.VMax):
		return invalid("v_max must be non-negative, got %g", p.VMax)
	case !(p.DeltaT > 0) || !finite(p.DeltaT):
		return invalid("delta_t must be positive, got %g", p.DeltaT)
	case !(p.Beta > 0) || p.Beta > 1:
		return invalid("beta must be in (0, 1], got %g", p.Beta)
	case p.WLowerBound < 0 || !finite(p.WLowerBound):
		return invalid("w_lower_bound must be non-negative, got %g", p.WLowerBound)
	}
	if _, err := ParseClampPolicy(string(p.Clamp)); err != nil {
		return err
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
