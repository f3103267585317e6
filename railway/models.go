package railway

// Train represents a single catalog entry: identity, route, fare, and
// the seat counters the manager mutates on booking and cancellation.
type Train struct {
	Number         int     `yaml:"number"`
	Name           string  `yaml:"name"`
	Source         string  `yaml:"source"`
	Destination    string  `yaml:"destination"`
	Fare           float64 `yaml:"fare"`
	TotalSeats     int     `yaml:"total_seats"`
	AvailableSeats int     `yaml:"-"`
}

// BookSeats reserves n seats. It fails with ErrInsufficientSeats when
// fewer than n seats remain (or n < 1), leaving the counter untouched.
func (t *Train) BookSeats(n int) error {
	if n < 1 || t.AvailableSeats < n {
		return ErrInsufficientSeats
	}
	t.AvailableSeats -= n
	return nil
}

// CancelSeats returns n seats to the pool, clamped at TotalSeats.
// Over-cancellation is absorbed silently as a failsafe against drift
// between the ledger and the inventory.
func (t *Train) CancelSeats(n int) {
	t.AvailableSeats += n
	if t.AvailableSeats > t.TotalSeats {
		t.AvailableSeats = t.TotalSeats
	}
}

// SetFare replaces the per-passenger fare. Already-issued tickets keep
// the fare captured in their snapshot.
func (t *Train) SetFare(fare float64) {
	t.Fare = fare
}

// SetCapacity replaces the seat capacity and resets AvailableSeats to
// the new total. Seats sold on outstanding tickets are NOT reconciled
// against the new capacity; this is a known inconsistency kept from
// the original design.
func (t *Train) SetCapacity(total int) {
	t.TotalSeats = total
	t.AvailableSeats = total
}

// Passenger holds one traveler's details, captured at booking time and
// owned by the ticket it belongs to.
type Passenger struct {
	Name   string
	Age    int
	Gender byte // 'M', 'F' or 'O'
}

// Ticket is one ledger entry: a PNR, the train as it was at booking
// time, the passengers traveling on it, and the account that booked it.
type Ticket struct {
	PNR        int
	Train      Train // snapshot, not a live reference
	Passengers []Passenger
	BookedBy   string
}

// TotalFare is the snapshot fare times the passenger count. Later fare
// edits to the live train do not change it.
func (tk *Ticket) TotalFare() float64 {
	return tk.Train.Fare * float64(len(tk.Passengers))
}

// User is one account. Passwords are stored and compared in plaintext;
// a documented limitation of this system, not to be fixed quietly.
type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	IsAdmin  bool   `yaml:"admin"`
}
