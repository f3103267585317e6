package railway

// Store persists the reservation state. The manager loads everything
// once at construction and writes each mutation through as it happens;
// the in-memory structures stay authoritative, so swapping or removing
// the store never changes booking or cancellation behavior.
type Store interface {
	// Load returns the persisted catalog (in insertion order), the
	// ticket ledger, and the user accounts. All empty on a fresh store.
	Load() (trains []*Train, tickets []*Ticket, users []*User, err error)

	// SaveCatalog rewrites the persisted catalog from the given slice,
	// preserving its order. Train numbers are not unique keys (duplicates
	// are legal in the catalog), so the catalog round-trips as a whole.
	SaveCatalog(trains []*Train) error

	// SaveUser inserts or updates one account, keyed by username.
	SaveUser(u *User) error

	// SaveTicket inserts one ledger entry with its passengers.
	SaveTicket(tk *Ticket) error

	// DeleteTicket removes one ledger entry and its passengers.
	DeleteTicket(pnr int) error

	Close() error
}
