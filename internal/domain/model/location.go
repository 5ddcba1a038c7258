package model

import "iss-aprs-tracker/internal/domain"

// GroundLocation is a subscriber's observing site in geodetic coordinates.
// Altitude is meters above the WGS-84 ellipsoid.
type GroundLocation struct {
	LatDeg float64
	LonDeg float64
	AltM   float64
}

func NewGroundLocation(latDeg, lonDeg, altM float64) (*GroundLocation, error) {
	if latDeg < -90 || latDeg > 90 {
		return nil, domain.ErrInvalidArgument
	}
	if lonDeg < -180 || lonDeg > 180 {
		return nil, domain.ErrInvalidArgument
	}
	if altM < -500 || altM > 9000 {
		return nil, domain.ErrInvalidArgument
	}
	return &GroundLocation{LatDeg: latDeg, LonDeg: lonDeg, AltM: altM}, nil
}
