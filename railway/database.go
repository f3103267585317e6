package railway

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Database is the SQLite-backed Store. Passwords are persisted verbatim,
// matching the in-memory comparison semantics.
type Database struct {
	db *sql.DB

	addUserStmt      *sql.Stmt
	addPassengerStmt *sql.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, applies
// schema migrations, and prepares common statements.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	// Enable busy_timeout and foreign keys.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db}
	if err := database.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	if d.addUserStmt != nil {
		d.addUserStmt.Close()
	}
	if d.addPassengerStmt != nil {
		d.addPassengerStmt.Close()
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	// WAL improves write concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		// position carries the catalog's insertion order; number is NOT
		// unique (duplicate catalog entries are legal).
		`CREATE TABLE IF NOT EXISTS trains (
            position INTEGER PRIMARY KEY,
            number INTEGER NOT NULL,
            name TEXT NOT NULL,
            source TEXT NOT NULL,
            destination TEXT NOT NULL,
            fare REAL NOT NULL,
            total_seats INTEGER NOT NULL,
            available_seats INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS users (
            username TEXT PRIMARY KEY,
            password TEXT NOT NULL,
            is_admin BOOLEAN NOT NULL DEFAULT 0
        );`,
		// Ticket rows carry the train snapshot taken at booking time,
		// independent of later edits to the trains table.
		`CREATE TABLE IF NOT EXISTS tickets (
            pnr INTEGER PRIMARY KEY,
            train_number INTEGER NOT NULL,
            train_name TEXT NOT NULL,
            source TEXT NOT NULL,
            destination TEXT NOT NULL,
            fare REAL NOT NULL,
            total_seats INTEGER NOT NULL,
            available_seats INTEGER NOT NULL,
            booked_by TEXT NOT NULL REFERENCES users(username)
        );`,
		`CREATE TABLE IF NOT EXISTS passengers (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            pnr INTEGER NOT NULL REFERENCES tickets(pnr) ON DELETE CASCADE,
            name TEXT NOT NULL,
            age INTEGER NOT NULL,
            gender TEXT NOT NULL
        );`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.addUserStmt, err = d.db.Prepare(`INSERT INTO users(username,password,is_admin) VALUES(?,?,?)
        ON CONFLICT(username) DO UPDATE SET password=excluded.password, is_admin=excluded.is_admin`); err != nil {
		return err
	}
	if d.addPassengerStmt, err = d.db.Prepare(`INSERT INTO passengers(pnr,name,age,gender) VALUES(?,?,?,?)`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Store implementation
// ---------------------------------------------------------------------------

// Load reads the full persisted state: catalog in insertion order,
// tickets with their passengers, and accounts.
func (d *Database) Load() ([]*Train, []*Ticket, []*User, error) {
	trains, err := d.loadTrains()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load trains: %w", err)
	}
	tickets, err := d.loadTickets()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load tickets: %w", err)
	}
	users, err := d.loadUsers()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load users: %w", err)
	}
	return trains, tickets, users, nil
}

func (d *Database) loadTrains() ([]*Train, error) {
	rows, err := d.db.Query(`SELECT number,name,source,destination,fare,total_seats,available_seats FROM trains ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trains []*Train
	for rows.Next() {
		var t Train
		if err := rows.Scan(&t.Number, &t.Name, &t.Source, &t.Destination, &t.Fare, &t.TotalSeats, &t.AvailableSeats); err != nil {
			return nil, err
		}
		trains = append(trains, &t)
	}
	return trains, rows.Err()
}

func (d *Database) loadUsers() ([]*User, error) {
	rows, err := d.db.Query(`SELECT username,password,is_admin FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Username, &u.Password, &u.IsAdmin); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (d *Database) loadTickets() ([]*Ticket, error) {
	rows, err := d.db.Query(`SELECT pnr,train_number,train_name,source,destination,fare,total_seats,available_seats,booked_by FROM tickets ORDER BY pnr`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*Ticket
	for rows.Next() {
		var tk Ticket
		if err := rows.Scan(&tk.PNR, &tk.Train.Number, &tk.Train.Name, &tk.Train.Source, &tk.Train.Destination,
			&tk.Train.Fare, &tk.Train.TotalSeats, &tk.Train.AvailableSeats, &tk.BookedBy); err != nil {
			return nil, err
		}
		tickets = append(tickets, &tk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, tk := range tickets {
		if err := d.loadPassengers(tk); err != nil {
			return nil, err
		}
	}
	return tickets, nil
}

func (d *Database) loadPassengers(tk *Ticket) error {
	rows, err := d.db.Query(`SELECT name,age,gender FROM passengers WHERE pnr=? ORDER BY id`, tk.PNR)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p Passenger
		var gender string
		if err := rows.Scan(&p.Name, &p.Age, &gender); err != nil {
			return err
		}
		if gender != "" {
			p.Gender = gender[0]
		}
		tk.Passengers = append(tk.Passengers, p)
	}
	return rows.Err()
}

// SaveCatalog rewrites the trains table from the slice in one
// transaction, keeping the slice order as the position key.
func (d *Database) SaveCatalog(trains []*Train) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM trains`); err != nil {
		return err
	}
	for i, t := range trains {
		if _, err := tx.Exec(`INSERT INTO trains(position,number,name,source,destination,fare,total_seats,available_seats) VALUES(?,?,?,?,?,?,?,?)`,
			i, t.Number, t.Name, t.Source, t.Destination, t.Fare, t.TotalSeats, t.AvailableSeats); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveUser upserts one account.
func (d *Database) SaveUser(u *User) error {
	_, err := d.addUserStmt.Exec(u.Username, u.Password, u.IsAdmin)
	return err
}

// SaveTicket inserts the ticket and its passengers in one transaction.
func (d *Database) SaveTicket(tk *Ticket) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO tickets(pnr,train_number,train_name,source,destination,fare,total_seats,available_seats,booked_by) VALUES(?,?,?,?,?,?,?,?,?)`,
		tk.PNR, tk.Train.Number, tk.Train.Name, tk.Train.Source, tk.Train.Destination,
		tk.Train.Fare, tk.Train.TotalSeats, tk.Train.AvailableSeats, tk.BookedBy); err != nil {
		return err
	}
	for _, p := range tk.Passengers {
		if _, err := tx.Stmt(d.addPassengerStmt).Exec(tk.PNR, p.Name, p.Age, string(p.Gender)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteTicket removes the ticket row; passengers cascade.
func (d *Database) DeleteTicket(pnr int) error {
	res, err := d.db.Exec(`DELETE FROM tickets WHERE pnr=?`, pnr)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("delete ticket %d: %w", pnr, ErrTicketNotFound)
	}
	return nil
}
