package railway

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the configuration-time initialization data: the starting
// catalog and the pre-created accounts.
type Seed struct {
	Trains []Train `yaml:"trains"`
	Users  []User  `yaml:"users"`
}

// DefaultSeed returns the built-in catalog (five trains) and the two
// stock accounts, admin/admin123 and user/user123.
func DefaultSeed() Seed {
	return Seed{
		Trains: []Train{
			{Number: 12049, Name: "Shatabdi Express", Source: "New Delhi", Destination: "Kanpur", Fare: 1500.00, TotalSeats: 100},
			{Number: 12951, Name: "Rajdhani Express", Source: "Mumbai", Destination: "New Delhi", Fare: 2870.00, TotalSeats: 72},
			{Number: 22439, Name: "Vande Bharat", Source: "New Delhi", Destination: "Katra", Fare: 1800.50, TotalSeats: 80},
			{Number: 12301, Name: "Howrah Rajdhani", Source: "Kolkata", Destination: "New Delhi", Fare: 2950.00, TotalSeats: 72},
			{Number: 15027, Name: "Maurya Express", Source: "Gorakhpur", Destination: "Hatia", Fare: 750.00, TotalSeats: 200},
		},
		Users: []User{
			{Username: "admin", Password: "admin123", IsAdmin: true},
			{Username: "user", Password: "user123"},
		},
	}
}

// LoadSeed parses a YAML seed file. Trains start with all seats
// available; counts and fares must be non-negative.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed file: %w", err)
	}
	for _, t := range seed.Trains {
		if t.TotalSeats < 0 {
			return Seed{}, fmt.Errorf("train %d: negative seat count", t.Number)
		}
		if t.Fare < 0 {
			return Seed{}, fmt.Errorf("train %d: negative fare", t.Number)
		}
	}
	for _, u := range seed.Users {
		if u.Username == "" {
			return Seed{}, fmt.Errorf("seed user with empty username")
		}
	}
	return seed, nil
}
