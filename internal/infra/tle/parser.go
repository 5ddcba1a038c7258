package tle

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"iss-aprs-tracker/internal/domain"
	"iss-aprs-tracker/internal/domain/model"
)

// ParseSatellite reads 3-line NORAD TLE format from r and returns the entry
// for the requested NORAD id. Malformed triplets are skipped; a group file
// that does not contain the satellite yields domain.ErrNotFound.
func ParseSatellite(r io.Reader, noradID int, fetchedAt time.Time, source string) (*model.OrbitalState, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading TLE data: %w", err)
	}

	for i := 0; i+2 < len(lines); {
		name := lines[i]
		line1 := lines[i+1]
		line2 := lines[i+2]

		if !strings.HasPrefix(line1, "1 ") || !strings.HasPrefix(line2, "2 ") {
			i++
			continue
		}

		// Guard before any column slicing: a truncated upstream response
		// must parse as a malformed triplet, not crash the refresh loop.
		if len(line1) < 32 || len(line2) < 7 {
			i++
			continue
		}

		// NORAD id lives in line1 cols 3-7 (0-indexed 2..7).
		id, err := strconv.Atoi(strings.TrimSpace(line1[2:7]))
		if err != nil || id != noradID {
			i += 3
			continue
		}

		epoch, err := parseEpoch(strings.TrimSpace(line1[18:32]))
		if err != nil {
			return nil, fmt.Errorf("TLE epoch for %q: %w", name, err)
		}

		return &model.OrbitalState{
			NoradID:   noradID,
			Name:      strings.TrimSpace(name),
			Line1:     line1,
			Line2:     line2,
			Epoch:     epoch,
			FetchedAt: fetchedAt,
			Source:    source,
		}, nil
	}

	return nil, fmt.Errorf("NORAD %d: %w", noradID, domain.ErrNotFound)
}

// parseEpoch converts a TLE epoch string in YYDDD.DDDDDDDD format.
// Year 00-56 → 2000s, 57-99 → 1900s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", s[:2], err)
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", s[2:], err)
	}

	// dayOfYear is 1-based: day 1 = Jan 1.
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return t.Add(time.Duration((dayOfYear - 1) * float64(24*time.Hour))), nil
}
