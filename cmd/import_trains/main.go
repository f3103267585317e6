package main

import (
	"fmt"
	"os"
	"strings"

	"railway-reservation/railway"
)

// Builds a fresh SQLite database from a YAML seed file, for use with
// the shell's --db flag. Usage: import_trains [seed.yaml] [railway.db]

const defaultDBFile = "railway.db"

func main() {
	seedFile := ""
	dbFile := defaultDBFile
	if len(os.Args) > 1 {
		seedFile = os.Args[1]
	}
	if len(os.Args) > 2 {
		dbFile = os.Args[2]
	}

	// Clean up any existing database files
	fmt.Println("Cleaning up existing database files...")
	for _, file := range []string{dbFile, dbFile + "-shm", dbFile + "-wal"} {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
		}
	}
	fmt.Println("Database cleanup complete.")

	seed := railway.DefaultSeed()
	if seedFile != "" {
		var err error
		if seed, err = railway.LoadSeed(seedFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading seed file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded seed data from %s.\n", seedFile)
	} else {
		fmt.Println("Using built-in seed data.")
	}

	db, err := railway.NewDatabase(dbFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}

	// The manager writes the seed through to the store on construction.
	mgr, err := railway.NewReservationManager(seed, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding database: %v\n", err)
		os.Exit(1)
	}
	defer mgr.Close()

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Trains: %d\n", len(seed.Trains))
	fmt.Printf("Users:  %d\n", len(seed.Users))

	trains := mgr.Trains(railway.SortByNumber)
	if len(trains) > 0 {
		fmt.Println("\nImported trains:")
		fmt.Printf("%-10s %-25s %-20s %-20s %-12s %s\n", "Train No.", "Name", "Source", "Destination", "Fare", "Seats")
		fmt.Println(strings.Repeat("-", 100))
		for _, t := range trains {
			fmt.Printf("%-10d %-25s %-20s %-20s Rs. %-8.2f %d\n",
				t.Number, t.Name, t.Source, t.Destination, t.Fare, t.TotalSeats)
		}
	}
}
