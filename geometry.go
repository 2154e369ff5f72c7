package smatch

import "math"

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Point is a unit vector on the celestial sphere carrying a per-point
// matching radius. Radius and CosRadius are in radians; CosRadius is
// cached since every candidate test needs it.
type Point struct {
	X, Y, Z   float64
	Radius    float64
	CosRadius float64
}

// eq2xyz converts (ra, dec) in degrees to a unit vector using the standard
// astronomy convention: ra measured around z, dec measured from the
// equator. Fails if dec is outside [-90, 90].
func eq2xyz(raDeg, decDeg float64) (x, y, z float64, err error) {
	if decDeg < -90.0 || decDeg > 90.0 {
		return 0, 0, 0, NewInvalidCoordinateError(decDeg, "declination out of [-90, 90]")
	}

	ra := DegToRad(raDeg)
	dec := DegToRad(decDeg)

	cosDec := math.Cos(dec)
	x = cosDec * math.Cos(ra)
	y = cosDec * math.Sin(ra)
	z = math.Sin(dec)
	return x, y, z, nil
}

// NewPoint builds a Point from (ra, dec, radius) all in degrees.
func NewPoint(raDeg, decDeg, radiusDeg float64) (Point, error) {
	x, y, z, err := eq2xyz(raDeg, decDeg)
	if err != nil {
		return Point{}, err
	}
	radius := DegToRad(radiusDeg)
	return Point{
		X: x, Y: y, Z: z,
		Radius:    radius,
		CosRadius: math.Cos(radius),
	}, nil
}

// cosSep is the cosine of the angular separation between two unit vectors,
// clamped to [-1, 1] so that rounding in the dot product never yields a
// value above 1 for identical points.
func cosSep(px, py, pz, qx, qy, qz float64) float64 {
	return clampUnit(px*qx + py*qy + pz*qz)
}

// within reports whether a unit vector at (qx, qy, qz) lies within p's
// matching radius. Strict inequality, matching the original C source.
func (p Point) within(qx, qy, qz float64) bool {
	return cosSep(p.X, p.Y, p.Z, qx, qy, qz) > p.CosRadius
}
