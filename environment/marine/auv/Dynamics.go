package auv

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Actuator and performance bounds
const (
	// Physical thrust range the propeller input [0, 1] is mapped into,
	// in Newtons
	ThrustMin float64 = 0.0
	ThrustMax float64 = 14.0

	// Maximum rudder deflection the rudder position [-1, 1] is mapped
	// into, in radians
	RudderMax float64 = math.Pi / 6

	// Steady-state surge speed at maximum thrust, in m/s. The surge
	// damping derivatives below balance ThrustMax exactly at this
	// speed.
	MaxSpeed float64 = 2.0

	// Maximum distance from the vehicle center to its edge, in meters
	DefaultRadius float64 = 4.0
)

// Rigid-body parameters
const (
	massKg   float64 = 18.0  // dry mass
	centerX  float64 = 0.046 // longitudinal center of gravity offset
	inertiaZ float64 = 1.77  // moment of inertia about the vertical axis
)

// Hydrodynamic derivatives, SNAME sign convention (added mass and
// damping derivatives are negative)
const (
	xUDot float64 = -1.0  // added mass in surge
	yVDot float64 = -16.0 // added mass in sway
	nRDot float64 = -2.8  // added inertia in yaw

	xU  float64 = -2.4  // linear surge damping
	xUU float64 = -2.3  // quadratic surge damping
	yV  float64 = -23.0 // linear sway damping
	yVV float64 = -80.0 // quadratic sway damping
	yR  float64 = -1.9  // sway damping from yaw rate
	nV  float64 = -4.75 // yaw damping from sway
	nR  float64 = -9.7  // linear yaw damping
	nRR float64 = -13.0 // quadratic yaw damping
)

// Rudder force and lift coefficients
const (
	yDelta float64 = 7.0  // rudder-induced sway force per rad at 1 m/s
	nDelta float64 = -3.5 // rudder-induced yaw moment per rad at 1 m/s

	yUV float64 = 10.0 // hull lift: sway force per sway speed
	yUR float64 = 1.0  // hull lift: sway force per yaw rate
	nUV float64 = 1.0  // hull lift: yaw moment per sway speed
	nUR float64 = 0.5  // hull lift: yaw moment per yaw rate
)

// massMatrix is the constant rigid-body plus added mass/inertia matrix
// M in M·ν̇ = B(ν)·τ − D(ν)·ν − C(ν)·ν − L(ν)·ν
var massMatrix = mat.NewDense(3, 3, []float64{
	massKg - xUDot, 0, 0,
	0, massKg - yVDot, massKg * centerX,
	0, massKg * centerX, inertiaZ - nRDot,
})

// invMassMatrix is M⁻¹, computed once
var invMassMatrix = func() *mat.Dense {
	var inv mat.Dense
	if err := inv.Inverse(massMatrix); err != nil {
		panic("auv: mass matrix is singular: " + err.Error())
	}
	return &inv
}()

// inputMatrix returns B(ν), mapping the physical actuator command
// [thrust, rudder angle] into body-frame forces and a yaw moment.
// Rudder effectiveness scales with the square of the flow speed over
// the rudder.
func inputMatrix(u float64) *mat.Dense {
	flow := u * math.Abs(u)
	return mat.NewDense(3, 2, []float64{
		1, 0,
		0, yDelta * flow,
		0, nDelta * flow,
	})
}

// dampingMatrix returns D(ν), the hydrodynamic damping matrix with
// quadratic terms evaluated at the current velocities
func dampingMatrix(u, v, r float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		-(xU + xUU*math.Abs(u)), 0, 0,
		0, -(yV + yVV*math.Abs(v)), -yR,
		0, -nV, -(nR + nRR*math.Abs(r)),
	})
}

// coriolisMatrix returns C(ν), the rigid-body and added-mass Coriolis/
// centripetal coupling matrix
func coriolisMatrix(u, v, r float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, 0, -massKg*(centerX*r+v) + yVDot*v,
		0, 0, massKg*u - xUDot*u,
		massKg*(centerX*r+v) - yVDot*v, -massKg*u + xUDot*u, 0,
	})
}

// liftMatrix returns L(ν), a linear lift correction scaling with
// forward speed
func liftMatrix(u float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, 0, 0,
		0, yUV * u, yUR * u,
		0, nUV * u, nUR * u,
	})
}
