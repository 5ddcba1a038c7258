// File: internal/infra/tle/cache_test.go
package tle

import (
	"bytes"
	"fmt"
	"os"
	"testing"
	"time"

	"iss-aprs-tracker/internal/domain/model"
)

func TestCache(t *testing.T) {
	t.Run("write then load round-trips", func(t *testing.T) {
		c := NewCache(t.TempDir(), 3)
		ts := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
		payload := []byte(stationsFixture)

		if err := c.Write(payload, ts); err != nil {
			t.Fatalf("write: %v", err)
		}
		data, gotTS, err := c.LoadLatest()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !bytes.Equal(data, payload) {
			t.Error("payload mismatch")
		}
		if !gotTS.Equal(ts) {
			t.Errorf("expected timestamp %v, got %v", ts, gotTS)
		}
	})

	t.Run("newest file wins", func(t *testing.T) {
		c := NewCache(t.TempDir(), 5)
		base := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			data := []byte(fmt.Sprintf("fetch-%d", i))
			if err := c.Write(data, base.Add(time.Duration(i)*time.Hour)); err != nil {
				t.Fatalf("write %d: %v", i, err)
			}
		}
		data, ts, err := c.LoadLatest()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if string(data) != "fetch-2" {
			t.Errorf("expected newest payload, got %q", data)
		}
		if !ts.Equal(base.Add(2 * time.Hour)) {
			t.Errorf("expected newest timestamp, got %v", ts)
		}
	})

	t.Run("prunes beyond max files", func(t *testing.T) {
		dir := t.TempDir()
		c := NewCache(dir, 2)
		base := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
		for i := 0; i < 5; i++ {
			if err := c.Write([]byte("x"), base.Add(time.Duration(i)*time.Hour)); err != nil {
				t.Fatalf("write %d: %v", i, err)
			}
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("readdir: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("expected 2 files after pruning, got %d", len(entries))
		}
	})

	t.Run("empty cache reports an error", func(t *testing.T) {
		c := NewCache(t.TempDir(), 3)
		if _, _, err := c.LoadLatest(); err == nil {
			t.Error("expected an error from an empty cache")
		}
	})

	t.Run("ignores unrelated files", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(dir+"/notes.txt", []byte("x"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := os.WriteFile(dir+"/tle_garbage.txt", []byte("x"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		c := NewCache(dir, 3)
		if _, _, err := c.LoadLatest(); err == nil {
			t.Error("expected an error when only unrelated files exist")
		}
	})
}

func TestStore(t *testing.T) {
	s := NewStore()

	if s.Get() != nil {
		t.Error("expected nil before the first load")
	}
	if s.EpochAge(time.Now()) != -1 {
		t.Error("expected -1 age before the first load")
	}

	epoch := time.Date(2025, 2, 14, 4, 19, 40, 0, time.UTC)
	s.Set(&model.OrbitalState{NoradID: 25544, Line1: "1 ...", Epoch: epoch})
	if got := s.Get(); got == nil || got.NoradID != 25544 {
		t.Fatalf("expected the stored snapshot, got %+v", got)
	}
	if age := s.EpochAge(epoch.Add(6 * time.Hour)); age != 6*time.Hour {
		t.Errorf("expected 6h age, got %v", age)
	}
}
