package orbit

import (
	"fmt"
	"math"
	"strings"
	"time"

	"iss-aprs-tracker/internal/domain"
	"iss-aprs-tracker/internal/domain/model"

	satellite "github.com/joshuaferrara/go-satellite"
)

// SGP4 library: github.com/joshuaferrara/go-satellite. Pure Go, TEME output.
// Propagate() takes the Satellite by value, so SGP4 error codes never reach
// the caller; failures are detected by NaN/Inf and magnitude checks instead.

// Propagator computes the tracked satellite's position over time from one
// immutable OrbitalState. It is a pure function of its inputs: no side
// effects, safe for concurrent use.
type Propagator struct {
	state  *model.OrbitalState
	sat    satellite.Satellite
	maxAge time.Duration
}

// NewPropagator initializes an SGP4 propagator from orbital elements.
// maxAge bounds how far past the element epoch propagation is allowed;
// zero disables the limit.
//
// TLE lines are pre-validated because go-satellite calls log.Fatal on
// malformed input, which would take the whole process down.
func NewPropagator(st *model.OrbitalState, maxAge time.Duration) (*Propagator, error) {
	if st.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	if err := validateTLELines(st.Line1, st.Line2); err != nil {
		return nil, fmt.Errorf("invalid TLE for NORAD %d: %w", st.NoradID, err)
	}

	sat := satellite.TLEToSat(st.Line1, st.Line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", st.NoradID, sat.Error, sat.ErrorStr)
	}
	return &Propagator{state: st, sat: sat, maxAge: maxAge}, nil
}

func validateTLELines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got %q", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got %q", line2[0])
	}
	return nil
}

// State returns the orbital state this propagator was built from.
func (p *Propagator) State() *model.OrbitalState { return p.state }

// PositionECEF propagates the satellite to time t and returns its position
// in the Earth-fixed frame (meters). Returns domain.ErrStaleElements when t
// is beyond the element max age.
func (p *Propagator) PositionECEF(t time.Time) (positionECEF, error) {
	if err := p.state.CheckFresh(t, p.maxAge); err != nil {
		return positionECEF{}, fmt.Errorf("elements epoch %s, age %s: %w",
			p.state.Epoch.UTC().Format(time.RFC3339), p.state.Age(t).Round(time.Minute), err)
	}

	t = t.UTC()
	pos, _ := satellite.Propagate(p.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) ||
		math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) || math.IsInf(pos.Z, 0) {
		return positionECEF{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: output is NaN/Inf", p.state.NoradID)
	}

	// Magnitude sanity check: Earth orbits live between ~6200km and ~50000km.
	mag := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	if mag < 6200.0 || mag > 50000.0 {
		return positionECEF{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: unreasonable position magnitude %.1f km", p.state.NoradID, mag)
	}

	return temeToECEF(pos.X, pos.Y, pos.Z, t), nil
}

// ElevationAt returns the elevation of the satellite above obs's horizon at
// time t, in degrees.
func (p *Propagator) ElevationAt(obs observer, t time.Time) (float64, error) {
	ecef, err := p.PositionECEF(t)
	if err != nil {
		return 0, err
	}
	return obs.elevationDeg(ecef), nil
}
