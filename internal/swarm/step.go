package swarm

import "math"

// Step moves every particle once and returns the decayed inertia weight,
// which the caller passes to the next Step.
//
// For each particle two draws q and r are shared by all coordinates:
//
//	v = w*v + c1*q*(pb-x)/dt + c2*r*(gb-x)/dt
//	v = clamp(v)
//	x = x + v*dt
//
// The global best is read as it stood when Step began.
func (s *Swarm) Step(p StepParams, w float64, src Source) float64 {
	gb := s.globalBest
	invDT := 1 / p.DeltaT
	clamp := func(v float64) float64 { return Clamp(p.Clamp, v, p.VMax) }
	for i := range s.particles {
		part := &s.particles[i]
		q := src.Float64()
		r := src.Float64()

		cognitive := part.PersonalBest.Sub(part.Position).Scale(p.C1 * q).Scale(invDT)
		social := gb.Sub(part.Position).Scale(p.C2 * r).Scale(invDT)
		part.Velocity = part.Velocity.Scale(w).Add(cognitive).Add(social).Apply(clamp)
		part.Position = part.Position.Add(part.Velocity.Scale(p.DeltaT))
	}
	return DecayInertia(w, p.Beta, p.WLowerBound)
}

// Clamp bounds one velocity coordinate. Any v with |v| not strictly below
// vMax (NaN included) becomes vMax under ClampPositive, or vMax carrying the
// sign of v under ClampSymmetric.
func Clamp(policy ClampPolicy, v, vMax float64) float64 {
	if math.Abs(v) < vMax {
		return v
	}
	if policy == ClampSymmetric && math.Signbit(v) {
		return -vMax
	}
	return vMax
}

// DecayInertia returns max(w*beta, floor).
func DecayInertia(w, beta, floor float64) float64 {
	next := w * beta
	if next < floor {
		return floor
	}
	return next
}
