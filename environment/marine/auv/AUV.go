// Package auv implements an autonomous underwater vehicle simulated in
// the horizontal plane with a 3-DOF (surge, sway, yaw) nonlinear model
package auv

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"sfneuman.com/goauv/utils/floatutils"
	"sfneuman.com/goauv/utils/geomutils"
)

// Number of applied rudder angles averaged by RudderChange
const rudderWindow int = 10

// AUV is an autonomous underwater vehicle moving in the horizontal
// plane. Its state is [x, y, ψ, u, v, r]: world-frame position, heading
// (always in the principal range (-π, π]), surge velocity, sway
// velocity, and yaw rate.
//
// The vehicle never rejects an action: actuator commands outside their
// declared ranges are silently clamped. State is mutated only by Step.
type AUV struct {
	state  *mat.VecDense
	tStep  float64
	radius float64
	input  [2]float64 // applied physical [thrust, rudder angle]

	// Append-only track of past positions, for external visualization
	track [][2]float64

	// Ring buffer of the most recent applied rudder angles
	rudderRing [rudderWindow]float64
	rudderLen  int
	rudderPos  int

	prevHeading float64
	steps       int
}

// New returns an AUV at position (x, y) with the given heading, at
// rest, simulated with fixed timestep tStep
func New(tStep, x, y, heading float64) *AUV {
	heading = geomutils.Princip(heading)
	a := &AUV{
		state:  mat.NewVecDense(6, []float64{x, y, heading, 0, 0, 0}),
		tStep:  tStep,
		radius: DefaultRadius,
	}
	a.track = append(a.track, [2]float64{x, y})
	a.rudderLen = 1 // the initial zero command participates in smoothing
	a.rudderPos = 1 % rudderWindow
	a.steps = 1
	return a
}

// Step advances the vehicle tStep seconds given a raw action
// [propeller input, rudder position]. The propeller input is clamped to
// [0, 1] and mapped linearly into [ThrustMin, ThrustMax]; the rudder
// position is clamped to [-1, 1] and mapped linearly into ±RudderMax.
// The mapped physical command is what enters the dynamics and the
// command history.
func (a *AUV) Step(action *mat.VecDense) {
	thrust := surgeForce(action.AtVec(0))
	rudder := steerAngle(action.AtVec(1))

	prevHeading := a.state.AtVec(2)
	a.input = [2]float64{thrust, rudder}
	a.sim()

	a.prevHeading = prevHeading
	a.steps++
	a.track = append(a.track, [2]float64{a.state.AtVec(0), a.state.AtVec(1)})

	a.rudderRing[a.rudderPos] = rudder
	a.rudderPos = (a.rudderPos + 1) % rudderWindow
	if a.rudderLen < rudderWindow {
		a.rudderLen++
	}
}

// sim integrates pose and velocity one timestep forward with explicit
// Euler, evaluating all state-dependent matrices at the pre-step
// velocities
func (a *AUV) sim() {
	heading := a.state.AtVec(2)
	u := a.state.AtVec(3)
	v := a.state.AtVec(4)
	r := a.state.AtVec(5)

	nu := mat.NewVecDense(3, []float64{u, v, r})
	input := mat.NewVecDense(2, []float64{a.input[0], a.input[1]})

	var etaDot mat.VecDense
	etaDot.MulVec(geomutils.Rotz(geomutils.Princip(heading)), nu)

	var force, damping, coriolis, lift, rhs, nuDot mat.VecDense
	force.MulVec(inputMatrix(u), input)
	damping.MulVec(dampingMatrix(u, v, r), nu)
	coriolis.MulVec(coriolisMatrix(u, v, r), nu)
	lift.MulVec(liftMatrix(u), nu)

	rhs.SubVec(&force, &damping)
	rhs.SubVec(&rhs, &coriolis)
	rhs.SubVec(&rhs, &lift)
	nuDot.MulVec(invMassMatrix, &rhs)

	for i := 0; i < 3; i++ {
		a.state.SetVec(i, a.state.AtVec(i)+etaDot.AtVec(i)*a.tStep)
		a.state.SetVec(i+3, a.state.AtVec(i+3)+nuDot.AtVec(i)*a.tStep)
	}
	a.state.SetVec(2, geomutils.Princip(a.state.AtVec(2)))
}

// Position returns the world-frame position of the vehicle
func (a *AUV) Position() (x, y float64) {
	return a.state.AtVec(0), a.state.AtVec(1)
}

// State returns a copy of the full state vector [x, y, ψ, u, v, r]
func (a *AUV) State() *mat.VecDense {
	return mat.VecDenseCopyOf(a.state)
}

// Heading returns the heading of the vehicle in (-π, π]
func (a *AUV) Heading() float64 {
	return a.state.AtVec(2)
}

// HeadingChange returns the wrapped difference between the two most
// recent headings, or the current heading if fewer than two states have
// been recorded
func (a *AUV) HeadingChange() float64 {
	if a.steps < 2 {
		return a.Heading()
	}
	return geomutils.Princip(a.Heading() - a.prevHeading)
}

// RudderChange returns the mean of the most recent applied rudder
// angles, a smoothed measure of how hard the vehicle is steering
func (a *AUV) RudderChange() float64 {
	sum := 0.0
	for i := 0; i < a.rudderLen; i++ {
		sum += a.rudderRing[i]
	}
	return sum / float64(a.rudderLen)
}

// Velocity returns the surge and sway velocity of the vehicle
func (a *AUV) Velocity() (surge, sway float64) {
	return a.state.AtVec(3), a.state.AtVec(4)
}

// Speed returns the Euclidean norm of the body-frame velocity
func (a *AUV) Speed() float64 {
	surge, sway := a.Velocity()
	return floats.Norm([]float64{surge, sway}, 2)
}

// YawRate returns the rate of rotation about the vertical axis
func (a *AUV) YawRate() float64 {
	return a.state.AtVec(5)
}

// MaxSpeed returns the maximum speed of the vehicle
func (a *AUV) MaxSpeed() float64 {
	return MaxSpeed
}

// CrabAngle returns the angle between the vehicle's heading and its
// velocity
func (a *AUV) CrabAngle() float64 {
	surge, sway := a.Velocity()
	return math.Atan2(sway, surge)
}

// Course returns the direction the vehicle is actually moving in
func (a *AUV) Course() float64 {
	return a.Heading() + a.CrabAngle()
}

// Radius returns the maximum distance from the vehicle center to its
// edge
func (a *AUV) Radius() float64 {
	return a.radius
}

// Input returns the applied physical command [thrust, rudder angle] of
// the most recent step
func (a *AUV) Input() (thrust, rudder float64) {
	return a.input[0], a.input[1]
}

// PathTaken returns the positions the vehicle has visited, in order.
// The returned slice is shared and must not be mutated.
func (a *AUV) PathTaken() [][2]float64 {
	return a.track
}

// surgeForce clamps a propeller input to [0, 1] and maps it linearly
// into the physical thrust range
func surgeForce(propeller float64) float64 {
	propeller = floatutils.Clip(propeller, 0, 1)
	return propeller*(ThrustMax-ThrustMin) + ThrustMin
}

// steerAngle clamps a rudder position to [-1, 1] and maps it linearly
// into the physical rudder range
func steerAngle(rudder float64) float64 {
	rudder = floatutils.Clip(rudder, -1, 1)
	return rudder * RudderMax
}
