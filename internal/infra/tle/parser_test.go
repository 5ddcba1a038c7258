// File: internal/infra/tle/parser_test.go
package tle

import (
	"errors"
	"strings"
	"testing"
	"time"

	"iss-aprs-tracker/internal/domain"
)

const stationsFixture = `CSS (TIANHE)
1 48274U 21035A   25045.53808262  .00023539  00000+0  27133-3 0  9995
2 48274  41.4690 124.3849 0005431 313.1783 134.3289 15.61586711214812
ISS (ZARYA)
1 25544U 98067A   25045.18032407  .00016717  00000+0  30099-3 0  9993
2 25544  51.6412 193.5765 0003457 126.2851 233.8519 15.49874301495058
FREGAT DEB
1 44222U 11037PF  25044.85565157  .00021467  00000+0  20793-1 0  9991
2 44222  51.6163 238.6279 0675619 102.9242 264.8337 12.99241862276158
`

func TestParseSatellite(t *testing.T) {
	fetchedAt := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)

	t.Run("finds the requested satellite in a group file", func(t *testing.T) {
		st, err := ParseSatellite(strings.NewReader(stationsFixture), 25544, fetchedAt, "celestrak")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if st.Name != "ISS (ZARYA)" {
			t.Errorf("expected ISS (ZARYA), got %q", st.Name)
		}
		if st.NoradID != 25544 {
			t.Errorf("expected NORAD 25544, got %d", st.NoradID)
		}
		if !strings.HasPrefix(st.Line1, "1 25544U") || !strings.HasPrefix(st.Line2, "2 25544") {
			t.Errorf("wrong lines captured: %q / %q", st.Line1, st.Line2)
		}
		if st.Source != "celestrak" || !st.FetchedAt.Equal(fetchedAt) {
			t.Errorf("provenance not recorded: %q %v", st.Source, st.FetchedAt)
		}
	})

	t.Run("decodes the element epoch", func(t *testing.T) {
		st, err := ParseSatellite(strings.NewReader(stationsFixture), 25544, fetchedAt, "celestrak")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		// 25045.18032407 = 2025, day 45.18032407 -> Feb 14 ~04:19:40 UTC.
		want := time.Date(2025, 2, 14, 4, 19, 40, 0, time.UTC)
		if d := st.Epoch.Sub(want); d < -time.Second || d > time.Second {
			t.Errorf("epoch %v, want %v (+-1s)", st.Epoch, want)
		}
	})

	t.Run("missing satellite yields ErrNotFound", func(t *testing.T) {
		_, err := ParseSatellite(strings.NewReader(stationsFixture), 99999, fetchedAt, "celestrak")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("handles CRLF and blank lines", func(t *testing.T) {
		messy := strings.ReplaceAll(stationsFixture, "\n", "\r\n\r\n")
		st, err := ParseSatellite(strings.NewReader(messy), 25544, fetchedAt, "celestrak")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if st.NoradID != 25544 {
			t.Errorf("expected NORAD 25544, got %d", st.NoradID)
		}
	})

	t.Run("truncated lines are skipped without panicking", func(t *testing.T) {
		// A cut-off download can leave a line that carries the "1 " prefix
		// but not the NORAD id columns.
		truncated := "ISS (ZARYA)\n1 25\n2 25544  51.6412 193.5765\n"
		_, err := ParseSatellite(strings.NewReader(truncated), 25544, fetchedAt, "celestrak")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("truncated garbage before a valid entry is ignored", func(t *testing.T) {
		_, err := ParseSatellite(strings.NewReader("NOISE\n1 4\n2 4\n"+stationsFixture), 25544, fetchedAt, "celestrak")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
	})

	t.Run("empty input yields ErrNotFound", func(t *testing.T) {
		_, err := ParseSatellite(strings.NewReader(""), 25544, fetchedAt, "celestrak")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})
}

func TestParseEpoch(t *testing.T) {
	t.Run("pre-2000 years use the 1957 pivot", func(t *testing.T) {
		got, err := parseEpoch("98001.00000000")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if got.Year() != 1998 {
			t.Errorf("expected 1998, got %d", got.Year())
		}
	})

	t.Run("day one is January first", func(t *testing.T) {
		got, err := parseEpoch("25001.50000000")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		want := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		for _, s := range []string{"", "25", "yyddd.ddd", "25xyz.0"} {
			if _, err := parseEpoch(s); err == nil {
				t.Errorf("expected error for %q", s)
			}
		}
	})
}
