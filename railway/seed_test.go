package railway

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestLoadSeed(t *testing.T) {
	path := writeSeedFile(t, `
trains:
  - number: 11111
    name: Test Express
    source: Here
    destination: There
    fare: 250.50
    total_seats: 40
users:
  - username: root
    password: secret
    admin: true
  - username: guest
    password: guest
`)
	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(seed.Trains) != 1 || len(seed.Users) != 2 {
		t.Fatalf("want 1 train and 2 users, got %d/%d", len(seed.Trains), len(seed.Users))
	}
	if seed.Trains[0].Fare != 250.50 || seed.Trains[0].TotalSeats != 40 {
		t.Fatalf("train fields lost: %+v", seed.Trains[0])
	}
	if !seed.Users[0].IsAdmin || seed.Users[1].IsAdmin {
		t.Fatalf("admin flags wrong: %+v", seed.Users)
	}

	rm, err := NewReservationManager(seed, nil)
	if err != nil {
		t.Fatalf("manager from seed: %v", err)
	}
	train, err := rm.FindTrain(11111)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if train.AvailableSeats != 40 {
		t.Fatalf("seeded train must start with all seats available, got %d", train.AvailableSeats)
	}
	if _, err := rm.Login("root", "secret"); err != nil {
		t.Fatalf("seeded admin login: %v", err)
	}
}

func TestLoadSeedRejectsBadData(t *testing.T) {
	cases := map[string]string{
		"negative seats": "trains:\n  - number: 1\n    name: X\n    source: A\n    destination: B\n    fare: 10\n    total_seats: -1\n",
		"negative fare":  "trains:\n  - number: 1\n    name: X\n    source: A\n    destination: B\n    fare: -10\n    total_seats: 5\n",
		"empty username": "users:\n  - username: \"\"\n    password: pw\n",
		"not yaml":       "{{{{",
	}
	for name, content := range cases {
		if _, err := LoadSeed(writeSeedFile(t, content)); err == nil {
			t.Fatalf("%s: want error", name)
		}
	}
}

func TestDefaultSeed(t *testing.T) {
	seed := DefaultSeed()
	if len(seed.Trains) != 5 {
		t.Fatalf("want 5 trains, got %d", len(seed.Trains))
	}
	if len(seed.Users) != 2 {
		t.Fatalf("want 2 users, got %d", len(seed.Users))
	}
	var admins int
	for _, u := range seed.Users {
		if u.IsAdmin {
			admins++
		}
	}
	if admins != 1 {
		t.Fatalf("want exactly one admin, got %d", admins)
	}
}
