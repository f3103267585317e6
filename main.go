package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"railway-reservation/railway"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	dbPath   string
	seedPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "railway-reservation",
		Short:        "Interactive railway ticket reservation system",
		Long:         "A console ticket-reservation manager: train catalog, user accounts, and a PNR-keyed booking ledger.",
		SilenceUsage: true,
		RunE:         runShell,
	}
	rootCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (empty keeps all state in memory)")
	rootCmd.Flags().StringVar(&seedPath, "seed", "", "YAML seed file (empty uses the built-in catalog and accounts)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runShell(cmd *cobra.Command, args []string) error {
	seed := railway.DefaultSeed()
	if seedPath != "" {
		var err error
		if seed, err = railway.LoadSeed(seedPath); err != nil {
			return err
		}
	}

	var store railway.Store
	if dbPath != "" {
		db, err := railway.NewDatabase(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		store = db
	}

	mgr, err := railway.NewReservationManager(seed, store)
	if err != nil {
		return err
	}
	defer mgr.Close()

	runMainMenu(bufio.NewScanner(os.Stdin), mgr)
	return nil
}

// runMainMenu is the top-level loop: login, register, or exit. Every
// error stays inside its handler; control always comes back here.
func runMainMenu(sc *bufio.Scanner, mgr *railway.ReservationManager) {
	for {
		clearScreen()
		printHeader("RAILWAY RESERVATION SYSTEM")
		fmt.Println("1. Login")
		fmt.Println("2. Register")
		fmt.Println("3. Exit")

		choice, ok := readMenuChoice(sc)
		if !ok {
			return // stdin closed
		}

		switch choice {
		case 1:
			if handleLogin(sc, mgr) {
				pressEnterToContinue(sc)
				if mgr.CurrentUser().IsAdmin {
					runAdminMenu(sc, mgr)
				} else {
					runUserMenu(sc, mgr)
				}
			}
			pressEnterToContinue(sc)
		case 2:
			handleRegister(sc, mgr)
			pressEnterToContinue(sc)
		case 3:
			fmt.Println("\nThank you for using the system. Goodbye!")
			return
		default:
			fmt.Println("\nInvalid choice. Please try again.")
			pressEnterToContinue(sc)
		}
	}
}

func runAdminMenu(sc *bufio.Scanner, mgr *railway.ReservationManager) {
	for {
		clearScreen()
		printHeader("ADMIN DASHBOARD")
		fmt.Println("1. Add New Train")
		fmt.Println("2. Modify Existing Train")
		fmt.Println("3. View All Booked Tickets")
		fmt.Println("4. Logout")

		choice, ok := readMenuChoice(sc)
		if !ok {
			mgr.Logout()
			return
		}

		switch choice {
		case 1:
			handleAddTrain(sc, mgr)
		case 2:
			handleModifyTrain(sc, mgr)
		case 3:
			handleViewAllTickets(mgr)
		case 4:
			mgr.Logout()
			fmt.Println("\nLogging out...")
			return
		default:
			fmt.Println("\nInvalid choice.")
		}
		pressEnterToContinue(sc)
	}
}

func runUserMenu(sc *bufio.Scanner, mgr *railway.ReservationManager) {
	for {
		clearScreen()
		printHeader("USER DASHBOARD")
		fmt.Printf("Welcome, %s!\n\n", mgr.CurrentUser().Username)
		fmt.Println("1. View and Sort Available Trains")
		fmt.Println("2. Book a Ticket")
		fmt.Println("3. View My Tickets")
		fmt.Println("4. Cancel a Ticket")
		fmt.Println("5. Logout")

		choice, ok := readMenuChoice(sc)
		if !ok {
			mgr.Logout()
			return
		}

		switch choice {
		case 1:
			handleViewTrains(sc, mgr)
		case 2:
			handleBookTicket(sc, mgr)
		case 3:
			handleViewMyTickets(mgr)
		case 4:
			handleCancelTicket(sc, mgr)
		case 5:
			mgr.Logout()
			fmt.Println("\nLogging out...")
			return
		default:
			fmt.Println("\nInvalid choice.")
		}
		pressEnterToContinue(sc)
	}
}

// ------------------ Login and registration ------------------

func handleLogin(sc *bufio.Scanner, mgr *railway.ReservationManager) bool {
	printHeader("LOGIN")
	username, ok := promptLine(sc, "Enter username: ")
	if !ok {
		return false
	}
	password, err := readPassword("Enter password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return false
	}

	user, err := mgr.Login(username, password)
	if err != nil {
		fmt.Printf("\nLogin failed: %v\n", err)
		return false
	}
	fmt.Printf("\nLogin successful! Welcome, %s.\n", user.Username)
	return true
}

func handleRegister(sc *bufio.Scanner, mgr *railway.ReservationManager) {
	printHeader("REGISTER NEW USER")
	username, ok := promptLine(sc, "Enter new username: ")
	if !ok {
		return
	}
	if username == "" {
		fmt.Println("Error: Username cannot be empty")
		return
	}
	password, err := readPassword("Enter new password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	if password == "" {
		fmt.Println("Error: Password cannot be empty")
		return
	}

	if err := mgr.Register(username, password); err != nil {
		fmt.Printf("\nRegistration failed: %v\n", err)
		return
	}
	fmt.Printf("\nUser '%s' registered successfully. Please login.\n", username)
}

// ------------------ User operations ------------------

func handleViewTrains(sc *bufio.Scanner, mgr *railway.ReservationManager) {
	printHeader("AVAILABLE TRAINS")
	fmt.Println("Sort by: 1. Train Number (default) 2. Fare 3. Train Name")
	choice, ok := readMenuChoice(sc)
	if !ok {
		return
	}

	order := railway.SortByNumber
	switch choice {
	case 2:
		order = railway.SortByFare
	case 3:
		order = railway.SortByName
	}
	printTrainTable(mgr.Trains(order))
}

func handleBookTicket(sc *bufio.Scanner, mgr *railway.ReservationManager) {
	printHeader("BOOK TICKET")
	trainNum, ok := promptInt(sc, "Enter Train Number to book: ")
	if !ok {
		return
	}
	numPassengers, ok := promptInt(sc, "Enter number of passengers: ")
	if !ok {
		return
	}

	booking, err := mgr.BeginBooking(trainNum, numPassengers)
	if err != nil {
		switch {
		case errors.Is(err, railway.ErrTrainNotFound):
			fmt.Println("\nInvalid Train Number.")
		case errors.Is(err, railway.ErrInsufficientSeats):
			if t, lookupErr := mgr.FindTrain(trainNum); lookupErr == nil {
				fmt.Printf("\nNot enough seats available. Only %d left.\n", t.AvailableSeats)
			} else {
				fmt.Println("\nNot enough seats available.")
			}
		default:
			fmt.Printf("\nError: %v\n", err)
		}
		return
	}

	for i := 1; i <= booking.Seats(); i++ {
		fmt.Printf("\nEnter details for Passenger %d:\n", i)
		p, ok := promptPassenger(sc)
		if !ok {
			// Input ended mid-entry; give the seats back.
			mgr.AbandonBooking(booking)
			fmt.Println("\nBooking abandoned; reserved seats released.")
			return
		}
		if err := booking.AddPassenger(p); err != nil {
			mgr.AbandonBooking(booking)
			fmt.Printf("\nError: %v\n", err)
			return
		}
	}

	ticket, err := mgr.ConfirmBooking(booking)
	if err != nil {
		mgr.AbandonBooking(booking)
		fmt.Printf("\nError booking ticket: %v\n", err)
		return
	}
	fmt.Println("\nTicket booked successfully!")
	printTicket(ticket)
}

func handleViewMyTickets(mgr *railway.ReservationManager) {
	printHeader("MY BOOKED TICKETS")
	tickets, err := mgr.MyTickets()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(tickets) == 0 {
		fmt.Println("You have not booked any tickets yet.")
		return
	}
	for _, tk := range tickets {
		printTicket(tk)
	}
}

func handleCancelTicket(sc *bufio.Scanner, mgr *railway.ReservationManager) {
	printHeader("CANCEL TICKET")
	pnr, ok := promptInt(sc, "Enter PNR Number to cancel: ")
	if !ok {
		return
	}

	if err := mgr.CancelTicket(pnr); err != nil {
		switch {
		case errors.Is(err, railway.ErrTicketNotFound):
			fmt.Printf("\nNo ticket found with PNR %d.\n", pnr)
		case errors.Is(err, railway.ErrNotAuthorized):
			fmt.Println("\nYou are not authorized to cancel this ticket.")
		default:
			fmt.Printf("\nError cancelling ticket: %v\n", err)
		}
		return
	}
	fmt.Printf("\nTicket with PNR %d has been successfully cancelled.\n", pnr)
}

// ------------------ Admin operations ------------------

func handleAddTrain(sc *bufio.Scanner, mgr *railway.ReservationManager) {
	printHeader("ADD NEW TRAIN")
	num, ok := promptInt(sc, "Enter Train Number: ")
	if !ok {
		return
	}
	name, ok := promptLine(sc, "Enter Train Name: ")
	if !ok {
		return
	}
	src, ok := promptLine(sc, "Enter Source: ")
	if !ok {
		return
	}
	dest, ok := promptLine(sc, "Enter Destination: ")
	if !ok {
		return
	}
	fare, ok := promptFloat(sc, "Enter Fare: ")
	if !ok {
		return
	}
	seats, ok := promptInt(sc, "Enter Total Seats: ")
	if !ok {
		return
	}

	train, err := mgr.AddTrain(num, name, src, dest, fare, seats)
	if err != nil {
		fmt.Printf("\nError adding train: %v\n", err)
		return
	}
	fmt.Printf("\nTrain '%s' added successfully.\n", train.Name)
}

func handleModifyTrain(sc *bufio.Scanner, mgr *railway.ReservationManager) {
	printHeader("MODIFY TRAIN DETAILS")
	trainNum, ok := promptInt(sc, "Enter Train Number to modify: ")
	if !ok {
		return
	}

	train, err := mgr.FindTrain(trainNum)
	if err != nil {
		fmt.Println("\nTrain not found.")
		return
	}
	fmt.Println("\nFound Train:")
	printTrainTable([]*railway.Train{train})

	var newFare *float64
	var newSeats *int

	fare, ok := promptFloat(sc, "\nEnter new fare (or -1 to keep current): ")
	if !ok {
		return
	}
	if fare != -1 {
		newFare = &fare
	}

	seats, ok := promptInt(sc, "Enter new total seats (or -1 to keep current): ")
	if !ok {
		return
	}
	if seats != -1 {
		newSeats = &seats
	}

	if _, err := mgr.ModifyTrain(trainNum, newFare, newSeats); err != nil {
		fmt.Printf("\nError modifying train: %v\n", err)
		return
	}
	fmt.Println("\nTrain details modified.")
}

func handleViewAllTickets(mgr *railway.ReservationManager) {
	printHeader("ALL BOOKED TICKETS")
	tickets, err := mgr.AllTickets()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(tickets) == 0 {
		fmt.Println("No tickets have been booked in the system yet.")
		return
	}
	for _, tk := range tickets {
		printTicket(tk)
	}
}

// ------------------ Prompt helpers ------------------

// readPassword securely reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // newline after masked input
	return strings.TrimSpace(string(bytePassword)), nil
}

// promptLine prints a prompt and reads one trimmed line. The second
// return is false when stdin is exhausted.
func promptLine(sc *bufio.Scanner, prompt string) (string, bool) {
	fmt.Print(prompt)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

// promptInt keeps asking until the input parses as an integer.
func promptInt(sc *bufio.Scanner, prompt string) (int, bool) {
	for {
		line, ok := promptLine(sc, prompt)
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			fmt.Println("Invalid input. Please enter a number.")
			continue
		}
		return n, true
	}
}

// promptFloat keeps asking until the input parses as a number.
func promptFloat(sc *bufio.Scanner, prompt string) (float64, bool) {
	for {
		line, ok := promptLine(sc, prompt)
		if !ok {
			return 0, false
		}
		f, err := strconv.ParseFloat(line, 64)
		if err != nil {
			fmt.Println("Invalid input. Please enter a number.")
			continue
		}
		return f, true
	}
}

// promptPassenger collects one passenger's details. Age re-prompts on
// non-numeric or negative input.
func promptPassenger(sc *bufio.Scanner) (railway.Passenger, bool) {
	var p railway.Passenger

	name, ok := promptLine(sc, "      Enter Passenger Name: ")
	if !ok {
		return p, false
	}
	p.Name = name

	for {
		age, ok := promptInt(sc, "      Enter Age: ")
		if !ok {
			return p, false
		}
		if age < 0 {
			fmt.Println("Invalid input. Age cannot be negative.")
			continue
		}
		p.Age = age
		break
	}

	for {
		g, ok := promptLine(sc, "      Enter Gender (M/F/O): ")
		if !ok {
			return p, false
		}
		g = strings.ToUpper(g)
		if g == "M" || g == "F" || g == "O" {
			p.Gender = g[0]
			break
		}
		fmt.Println("Invalid input. Please enter M, F or O.")
	}

	return p, true
}

// readMenuChoice reads a menu selection. Non-numeric input maps to 0,
// which no menu handles, so it falls through to "invalid choice".
func readMenuChoice(sc *bufio.Scanner) (int, bool) {
	line, ok := promptLine(sc, "Enter your choice: ")
	if !ok {
		return 0, false
	}
	choice, err := strconv.Atoi(line)
	if err != nil {
		return 0, true
	}
	return choice, true
}

// ------------------ Display helpers ------------------

func clearScreen() {
	fmt.Print("\033[2J\033[H")
}

func pressEnterToContinue(sc *bufio.Scanner) {
	fmt.Print("\nPress Enter to continue...")
	sc.Scan()
}

func printHeader(title string) {
	line := strings.Repeat("=", 80)
	fmt.Println(line)
	fmt.Printf("%*s\n", (80+len(title))/2, title)
	fmt.Println(line)
}

func printTrainTable(trains []*railway.Train) {
	fmt.Printf("\n%-10s %-25s %-20s %-20s %-15s %s\n",
		"Train No.", "Train Name", "Source", "Destination", "Fare", "Seats Available")
	fmt.Println(strings.Repeat("-", 110))
	for _, t := range trains {
		fmt.Printf("%-10d %-25s %-20s %-20s Rs. %-11.2f %d/%d\n",
			t.Number, t.Name, t.Source, t.Destination, t.Fare, t.AvailableSeats, t.TotalSeats)
	}
}

func printTicket(tk *railway.Ticket) {
	printHeader("TICKET DETAILS")
	fmt.Printf("  PNR Number: %d\n", tk.PNR)
	fmt.Printf("  Booked By:  %s\n", tk.BookedBy)
	fmt.Printf("  Train No:   %d (%s)\n", tk.Train.Number, tk.Train.Name)
	fmt.Printf("  Route:      %s -> %s\n", tk.Train.Source, tk.Train.Destination)
	fmt.Printf("  Total Fare: Rs. %.2f\n", tk.TotalFare())
	fmt.Printf("\n--- Passengers (%d) ---\n", len(tk.Passengers))
	for _, p := range tk.Passengers {
		fmt.Printf("      Name: %-20s Age: %-5d Gender: %c\n", p.Name, p.Age, p.Gender)
	}
	fmt.Println(strings.Repeat("-", 80))
}
