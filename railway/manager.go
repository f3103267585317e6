package railway

import (
	"fmt"
	"math/rand/v2"
	"sort"
)

// SortOrder selects the catalog listing order.
type SortOrder int

const (
	SortByNumber SortOrder = iota // default
	SortByFare
	SortByName
)

// ReservationManager owns the train catalog, the PNR ticket ledger, the
// user accounts, and the single authenticated session. All operations
// run to completion before the next begins; nothing here is safe for
// concurrent use.
type ReservationManager struct {
	trains  []*Train
	tickets map[int]*Ticket
	users   map[string]*User
	session *User

	// PNRs handed to in-flight booking drafts, reserved until the
	// draft is committed or abandoned.
	pending map[int]bool

	store Store
}

// NewReservationManager builds a manager from seed data. When store is
// non-nil, previously persisted state is loaded instead; a fresh store
// is initialized from the seed and written through. A nil store keeps
// everything in process memory for the lifetime of the run.
func NewReservationManager(seed Seed, store Store) (*ReservationManager, error) {
	rm := &ReservationManager{
		tickets: make(map[int]*Ticket),
		users:   make(map[string]*User),
		pending: make(map[int]bool),
		store:   store,
	}

	if store != nil {
		trains, tickets, users, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("load store: %w", err)
		}
		if len(trains) > 0 || len(users) > 0 {
			rm.trains = trains
			for _, tk := range tickets {
				rm.tickets[tk.PNR] = tk
			}
			for _, u := range users {
				rm.users[u.Username] = u
			}
			return rm, nil
		}
	}

	if err := rm.applySeed(seed); err != nil {
		return nil, err
	}
	return rm, nil
}

func (rm *ReservationManager) applySeed(seed Seed) error {
	for _, t := range seed.Trains {
		train := t
		train.AvailableSeats = train.TotalSeats
		rm.trains = append(rm.trains, &train)
	}
	if err := rm.saveCatalog(); err != nil {
		return err
	}
	for _, u := range seed.Users {
		user := u
		rm.users[user.Username] = &user
		if err := rm.saveUser(&user); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the backing store, if any.
func (rm *ReservationManager) Close() error {
	if rm.store != nil {
		return rm.store.Close()
	}
	return nil
}

// Write-through helpers; no-ops without a store.

func (rm *ReservationManager) saveCatalog() error {
	if rm.store == nil {
		return nil
	}
	return rm.store.SaveCatalog(rm.trains)
}

func (rm *ReservationManager) saveUser(u *User) error {
	if rm.store == nil {
		return nil
	}
	return rm.store.SaveUser(u)
}

func (rm *ReservationManager) saveTicket(tk *Ticket) error {
	if rm.store == nil {
		return nil
	}
	return rm.store.SaveTicket(tk)
}

func (rm *ReservationManager) deleteTicket(pnr int) error {
	if rm.store == nil {
		return nil
	}
	return rm.store.DeleteTicket(pnr)
}

// ------------------ Authentication ------------------

// Login establishes the session. The failure is deliberately generic:
// an unknown username and a wrong password report the same error.
func (rm *ReservationManager) Login(username, password string) (*User, error) {
	u, ok := rm.users[username]
	if !ok || u.Password != password {
		return nil, ErrInvalidCredentials
	}
	rm.session = u
	return u, nil
}

// Logout clears the session.
func (rm *ReservationManager) Logout() {
	rm.session = nil
}

// CurrentUser returns the authenticated user, or nil.
func (rm *ReservationManager) CurrentUser() *User {
	return rm.session
}

// Register creates a new non-admin account. Registration never grants
// the admin role.
func (rm *ReservationManager) Register(username, password string) error {
	if _, ok := rm.users[username]; ok {
		return ErrUsernameTaken
	}
	u := &User{Username: username, Password: password}
	rm.users[username] = u
	return rm.saveUser(u)
}

func (rm *ReservationManager) requireUser() error {
	if rm.session == nil {
		return ErrNotLoggedIn
	}
	return nil
}

func (rm *ReservationManager) requireAdmin() error {
	if rm.session == nil {
		return ErrNotLoggedIn
	}
	if !rm.session.IsAdmin {
		return ErrNotAuthorized
	}
	return nil
}

// ------------------ Catalog ------------------

// Trains returns the catalog in the requested order. The sort is
// stable over a copy, so ties keep their original relative order and
// the canonical catalog order is never disturbed.
func (rm *ReservationManager) Trains(order SortOrder) []*Train {
	list := make([]*Train, len(rm.trains))
	copy(list, rm.trains)
	sort.SliceStable(list, func(i, j int) bool {
		switch order {
		case SortByFare:
			return list[i].Fare < list[j].Fare
		case SortByName:
			return list[i].Name < list[j].Name
		default:
			return list[i].Number < list[j].Number
		}
	})
	return list
}

// FindTrain returns the first catalog entry with the given number.
// Duplicate numbers are not rejected at AddTrain time, so "first wins"
// here, matching the original lookup.
func (rm *ReservationManager) FindTrain(number int) (*Train, error) {
	for _, t := range rm.trains {
		if t.Number == number {
			return t, nil
		}
	}
	return nil, ErrTrainNotFound
}

// ------------------ Booking ------------------

// Booking is an in-flight booking draft: seats already reserved, PNR
// already assigned, passengers still being collected.
type Booking struct {
	pnr      int
	train    *Train // live catalog entry, for seat release on abandon
	snapshot Train
	owner    string
	seats    int

	passengers []Passenger
}

// PNR returns the draft's assigned PNR.
func (b *Booking) PNR() int { return b.pnr }

// Seats returns the number of passenger slots reserved.
func (b *Booking) Seats() int { return b.seats }

// Train returns the snapshot taken when seats were reserved.
func (b *Booking) Train() Train { return b.snapshot }

// AddPassenger records one passenger. Adding more passengers than
// reserved seats fails.
func (b *Booking) AddPassenger(p Passenger) error {
	if len(b.passengers) >= b.seats {
		return fmt.Errorf("booking has only %d passenger slots", b.seats)
	}
	b.passengers = append(b.passengers, p)
	return nil
}

// BeginBooking reserves numPassengers seats on the train and assigns a
// unique PNR, before any passenger details exist. Seat decrement is
// atomic with the availability check, so interactive data entry can
// never oversell the train. On failure no seats are held and no PNR is
// consumed.
func (rm *ReservationManager) BeginBooking(trainNumber, numPassengers int) (*Booking, error) {
	if err := rm.requireUser(); err != nil {
		return nil, err
	}
	train, err := rm.FindTrain(trainNumber)
	if err != nil {
		return nil, err
	}
	if err := train.BookSeats(numPassengers); err != nil {
		return nil, err
	}
	if err := rm.saveCatalog(); err != nil {
		train.CancelSeats(numPassengers)
		return nil, err
	}

	pnr := rm.generatePNR()
	rm.pending[pnr] = true
	return &Booking{
		pnr:      pnr,
		train:    train,
		snapshot: *train,
		owner:    rm.session.Username,
		seats:    numPassengers,
	}, nil
}

// ConfirmBooking commits a fully populated draft to the ledger and
// returns the issued ticket.
func (rm *ReservationManager) ConfirmBooking(b *Booking) (*Ticket, error) {
	if len(b.passengers) != b.seats {
		return nil, fmt.Errorf("booking needs %d passengers, have %d", b.seats, len(b.passengers))
	}
	tk := &Ticket{
		PNR:        b.pnr,
		Train:      b.snapshot,
		Passengers: b.passengers,
		BookedBy:   b.owner,
	}
	// Persist first: on store failure the draft stays intact and the
	// caller can abandon it to release the seats.
	if err := rm.saveTicket(tk); err != nil {
		return nil, err
	}
	rm.tickets[tk.PNR] = tk
	delete(rm.pending, b.pnr)
	return tk, nil
}

// AbandonBooking releases a draft's reserved seats and PNR, for when
// interactive passenger entry is cut short.
func (rm *ReservationManager) AbandonBooking(b *Booking) error {
	b.train.CancelSeats(b.seats)
	delete(rm.pending, b.pnr)
	return rm.saveCatalog()
}

// BookTicket runs the whole booking flow in one call when all
// passenger details are already known.
func (rm *ReservationManager) BookTicket(trainNumber int, passengers []Passenger) (*Ticket, error) {
	b, err := rm.BeginBooking(trainNumber, len(passengers))
	if err != nil {
		return nil, err
	}
	for _, p := range passengers {
		if err := b.AddPassenger(p); err != nil {
			rm.AbandonBooking(b)
			return nil, err
		}
	}
	tk, err := rm.ConfirmBooking(b)
	if err != nil {
		// A rejected booking must not hold seats or a pending PNR.
		rm.AbandonBooking(b)
		return nil, err
	}
	return tk, nil
}

// generatePNR draws 6-digit values until one is free. Randomness alone
// is never trusted for uniqueness; every candidate is checked against
// the ledger and the in-flight drafts.
func (rm *ReservationManager) generatePNR() int {
	for {
		pnr := 100000 + rand.IntN(900000)
		if _, booked := rm.tickets[pnr]; booked {
			continue
		}
		if rm.pending[pnr] {
			continue
		}
		return pnr
	}
}

// ------------------ Tickets ------------------

// FindTicket looks up a ledger entry by PNR.
func (rm *ReservationManager) FindTicket(pnr int) (*Ticket, error) {
	tk, ok := rm.tickets[pnr]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return tk, nil
}

// MyTickets returns the session user's tickets in ascending PNR order.
func (rm *ReservationManager) MyTickets() ([]*Ticket, error) {
	if err := rm.requireUser(); err != nil {
		return nil, err
	}
	var out []*Ticket
	for _, tk := range rm.sortedTickets() {
		if tk.BookedBy == rm.session.Username {
			out = append(out, tk)
		}
	}
	return out, nil
}

// AllTickets returns every ledger entry in ascending PNR order.
// Admin only.
func (rm *ReservationManager) AllTickets() ([]*Ticket, error) {
	if err := rm.requireAdmin(); err != nil {
		return nil, err
	}
	return rm.sortedTickets(), nil
}

func (rm *ReservationManager) sortedTickets() []*Ticket {
	pnrs := make([]int, 0, len(rm.tickets))
	for pnr := range rm.tickets {
		pnrs = append(pnrs, pnr)
	}
	sort.Ints(pnrs)
	out := make([]*Ticket, 0, len(pnrs))
	for _, pnr := range pnrs {
		out = append(out, rm.tickets[pnr])
	}
	return out
}

// CancelTicket removes a ticket from the ledger and returns its seats
// to the live train. Only the booking owner may cancel; admins get no
// override. If the train number in the snapshot no longer resolves the
// seat restoration is skipped (trains are never deleted, so in
// practice it always does).
func (rm *ReservationManager) CancelTicket(pnr int) error {
	if err := rm.requireUser(); err != nil {
		return err
	}
	tk, ok := rm.tickets[pnr]
	if !ok {
		return ErrTicketNotFound
	}
	if tk.BookedBy != rm.session.Username {
		return ErrNotAuthorized
	}

	// Store delete first: if it fails the ledger and the seat counters
	// are untouched and the cancel reports failure truthfully.
	if err := rm.deleteTicket(pnr); err != nil {
		return err
	}
	delete(rm.tickets, pnr)

	if train, err := rm.FindTrain(tk.Train.Number); err == nil {
		train.CancelSeats(len(tk.Passengers))
		return rm.saveCatalog()
	}
	return nil
}

// ------------------ Admin catalog edits ------------------

// AddTrain appends a new catalog entry with all seats available.
// Duplicate train numbers are accepted, as in the original; the number
// is treated as an arbitrary catalog key.
func (rm *ReservationManager) AddTrain(number int, name, source, destination string, fare float64, totalSeats int) (*Train, error) {
	if err := rm.requireAdmin(); err != nil {
		return nil, err
	}
	if totalSeats < 0 {
		return nil, fmt.Errorf("train %d: negative seat count", number)
	}
	if fare < 0 {
		return nil, fmt.Errorf("train %d: negative fare", number)
	}
	t := &Train{
		Number:         number,
		Name:           name,
		Source:         source,
		Destination:    destination,
		Fare:           fare,
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
	}
	rm.trains = append(rm.trains, t)
	return t, rm.saveCatalog()
}

// ModifyTrain updates the fare and/or capacity of an existing train.
// A nil field means "keep current". Updating the capacity resets the
// available count to the new total (see Train.SetCapacity).
func (rm *ReservationManager) ModifyTrain(number int, newFare *float64, newTotalSeats *int) (*Train, error) {
	if err := rm.requireAdmin(); err != nil {
		return nil, err
	}
	train, err := rm.FindTrain(number)
	if err != nil {
		return nil, err
	}
	if newFare != nil && *newFare < 0 {
		return nil, fmt.Errorf("train %d: negative fare", number)
	}
	if newTotalSeats != nil && *newTotalSeats < 0 {
		return nil, fmt.Errorf("train %d: negative seat count", number)
	}
	if newFare != nil {
		train.SetFare(*newFare)
	}
	if newTotalSeats != nil {
		train.SetCapacity(*newTotalSeats)
	}
	return train, rm.saveCatalog()
}
