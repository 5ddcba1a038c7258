// Package orbit implements the visibility-prediction core: SGP4 propagation
// of the tracked satellite, TEME→ECEF→topocentric coordinate transforms, and
// pass-window prediction for a ground location.
//
// Frame handling follows the simplified Vallado rotation: TEME positions are
// rotated by GMST only (TEME → PEF ≈ ECEF). Polar motion and the equation of
// the equinoxes are ignored, which costs tens of meters — irrelevant against
// the kilometre-scale error of day-old TLEs.
package orbit

import (
	"math"
	"time"

	"iss-aprs-tracker/internal/domain/model"
)

const (
	// j2000 is the Julian Date of the J2000.0 epoch.
	j2000 = 2451545.0

	// omegaEarth is Earth's rotation rate in rad/s (IAU value).
	omegaEarth = 7.292115146706979e-5

	// WGS-84 ellipsoid.
	wgs84A  = 6378137.0             // semi-major axis (meters)
	wgs84F  = 1.0 / 298.257223563   // flattening
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared

	deg2rad = math.Pi / 180.0
	rad2deg = 180.0 / math.Pi
)

// julianDate converts a UTC time to Julian Date using the standard
// astronomical algorithm.
func julianDate(t time.Time) float64 {
	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())
	h := float64(t.Hour())
	min := float64(t.Minute())
	s := float64(t.Second()) + float64(t.Nanosecond())/1e9

	// Jan/Feb count as months 13/14 of the previous year.
	if m <= 2 {
		y -= 1
		m += 12
	}

	a := math.Floor(y / 100)
	b := 2 - a + math.Floor(a/4)

	jd := math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + d + b - 1524.5
	jd += (h + min/60.0 + s/3600.0) / 24.0
	return jd
}

// gmst returns Greenwich Mean Sidereal Time in radians for a UTC time,
// using the IAU-82 model (Vallado Eq 3-47).
func gmst(t time.Time) float64 {
	tUT1 := (julianDate(t.UTC()) - j2000) / 36525.0

	// Seconds of time; 876600h = 3155760000s.
	sec := 67310.54841 +
		(3155760000.0+8640184.812866)*tUT1 +
		0.093104*tUT1*tUT1 -
		6.2e-6*tUT1*tUT1*tUT1

	sec = math.Mod(sec, 86400.0)
	if sec < 0 {
		sec += 86400.0
	}
	return sec / 86400.0 * 2.0 * math.Pi
}

// positionECEF is a satellite position in the Earth-fixed frame, meters.
type positionECEF struct {
	X, Y, Z float64
}

// temeToECEF rotates a TEME position (km) into ECEF (meters) at time t.
// r_ECEF = R3(GMST) * r_TEME.
func temeToECEF(x, y, z float64, t time.Time) positionECEF {
	theta := gmst(t)
	cosG := math.Cos(theta)
	sinG := math.Sin(theta)
	return positionECEF{
		X: (x*cosG + y*sinG) * 1000.0,
		Y: (-x*sinG + y*cosG) * 1000.0,
		Z: z * 1000.0,
	}
}

// observer is a ground location with its ECEF coordinates precomputed so the
// predictor can reuse them across thousands of elevation samples.
type observer struct {
	latRad, lonRad      float64
	ecefX, ecefY, ecefZ float64
}

// newObserver converts a geodetic ground location to an observer with
// WGS-84 ECEF coordinates.
func newObserver(loc model.GroundLocation) observer {
	lat := loc.LatDeg * deg2rad
	lon := loc.LonDeg * deg2rad

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)

	// Radius of curvature in the prime vertical.
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	return observer{
		latRad: lat,
		lonRad: lon,
		ecefX:  (n + loc.AltM) * cosLat * math.Cos(lon),
		ecefY:  (n + loc.AltM) * cosLat * math.Sin(lon),
		ecefZ:  (n*(1-wgs84E2) + loc.AltM) * sinLat,
	}
}

// elevationDeg computes the elevation angle (degrees above the local
// horizon) from the observer to a satellite at ECEF position sat.
//
// The ECEF range vector is rotated into the SEZ (South-East-Zenith)
// topocentric frame per Vallado Section 4.4; elevation is the angle between
// the range vector and the horizon plane.
func (o observer) elevationDeg(sat positionECEF) float64 {
	rx := sat.X - o.ecefX
	ry := sat.Y - o.ecefY
	rz := sat.Z - o.ecefZ

	sinLat := math.Sin(o.latRad)
	cosLat := math.Cos(o.latRad)
	sinLon := math.Sin(o.lonRad)
	cosLon := math.Cos(o.lonRad)

	south := sinLat*cosLon*rx + sinLat*sinLon*ry - cosLat*rz
	east := -sinLon*rx + cosLon*ry
	zenith := cosLat*cosLon*rx + cosLat*sinLon*ry + sinLat*rz

	rng := math.Sqrt(south*south + east*east + zenith*zenith)
	return math.Asin(zenith/rng) * rad2deg
}
