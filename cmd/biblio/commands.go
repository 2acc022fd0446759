package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	biblio "github.com/jandresbramirez/go-biblio"
	"github.com/jandresbramirez/go-biblio/gateway"
)

var (
	styleActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	styleOverdue  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleReturned = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleHeading  = lipgloss.NewStyle().Bold(true)
	styleMuted    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func statusBadge(status biblio.LoanStatus) string {
	switch status {
	case biblio.StatusOverdue:
		return styleOverdue.Render(status)
	case biblio.StatusReturned:
		return styleReturned.Render(status)
	default:
		return styleActive.Render(status)
	}
}

// promptLine reads one line from stdin after printing the label. Used for
// credentials not supplied as flags.
func promptLine(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the library API and persist the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email == "" {
			if email, err = promptLine("Email: "); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = promptLine("Password: "); err != nil {
				return err
			}
		}

		result, err := client.Auth().Login(cmd.Context(), gateway.LoginPayload{
			Email:    email,
			Password: password,
		})
		if err != nil {
			return err
		}

		name := result.Subject
		if result.User != nil && result.User.Name != "" {
			name = result.User.Name
		}
		fmt.Printf("Logged in as %s (%s)\n", styleHeading.Render(name), result.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and clear the persisted credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		// The local session is cleared even when the server call fails.
		if err := client.Auth().Logout(cmd.Context()); err != nil {
			fmt.Println(styleMuted.Render("server logout failed; local session cleared anyway"))
			return nil
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		sessions := client.Sessions()
		if !sessions.IsAuthenticated() {
			fmt.Println("Not logged in.")
			return nil
		}

		fmt.Printf("Subject: %s\n", sessions.Subject())
		fmt.Printf("Role:    %s\n", sessions.Role())
		if name := sessions.DisplayName(); name != "" {
			fmt.Printf("Name:    %s\n", name)
		}
		if email := sessions.Email(); email != "" {
			fmt.Printf("Email:   %s\n", email)
		}
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new member account",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		user, err := client.Auth().Register(cmd.Context(), biblio.RegisterPayload{
			Name:     name,
			Email:    email,
			Password: password,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Registered %s (id %d). Log in with 'biblio login'.\n", user.Email, user.ID)
		return nil
	},
}

var authorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "Manage the author catalog",
}

var authorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every author",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		authors, err := client.Authors().List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, styleHeading.Render("ID\tNAME"))
		for _, author := range authors {
			fmt.Fprintf(w, "%d\t%s\n", author.ID, author.Name)
		}
		return w.Flush()
	},
}

var authorsAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add an author (admin or editor)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		author, err := client.Authors().Create(cmd.Context(), biblio.AuthorPayload{Name: args[0]})
		if err != nil {
			return err
		}
		fmt.Printf("Added author %q (id %d)\n", author.Name, author.ID)
		return nil
	},
}

var authorsRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove an author (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid author id %q", args[0])
		}

		if err := client.Authors().Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Removed author %d\n", id)
		return nil
	},
}

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Manage the book catalog",
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every book with its author",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		books, err := client.Books().List(cmd.Context())
		if err != nil {
			return err
		}

		printBooks(books)
		return nil
	},
}

var booksSearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search books by title or author name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		books, err := client.Books().Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if len(books) == 0 {
			fmt.Printf("No books match %q\n", args[0])
			return nil
		}
		printBooks(books)
		return nil
	},
}

var booksAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Add a book (admin or editor)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		authorID, _ := cmd.Flags().GetInt("author")
		book, err := client.Books().Create(cmd.Context(), biblio.BookPayload{
			Title:    args[0],
			AuthorID: authorID,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added %q by %s (id %d)\n", book.Title, book.AuthorName, book.ID)
		return nil
	},
}

var booksRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a book (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid book id %q", args[0])
		}

		if err := client.Books().Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Removed book %d\n", id)
		return nil
	},
}

func printBooks(books []biblio.EnrichedBook) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, styleHeading.Render("ID\tTITLE\tAUTHOR"))
	for _, book := range books {
		fmt.Fprintf(w, "%d\t%s\t%s\n", book.ID, book.Title, book.AuthorName)
	}
	w.Flush()
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage member accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every member account (admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		users, err := client.Users().List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, styleHeading.Render("ID\tNAME\tEMAIL\tROLE"))
		for _, user := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", user.ID, user.Name, user.Email, user.Role)
		}
		return w.Flush()
	},
}

var usersSearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search members by name or email (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		users, err := client.Users().Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, styleHeading.Render("ID\tNAME\tEMAIL\tROLE"))
		for _, user := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", user.ID, user.Name, user.Email, user.Role)
		}
		return w.Flush()
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show catalog and loan counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		books, err := client.Books().List(cmd.Context())
		if err != nil {
			return err
		}
		authors, err := client.Authors().List(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%s %d\n", styleHeading.Render("Books:"), len(books))
		fmt.Printf("%s %d\n", styleHeading.Render("Authors:"), len(authors))

		// Loan and member counts need staff rights; skip them quietly for
		// everyone else.
		if client.Policy().HasAnyRole(biblio.RoleAdmin, biblio.RoleEditor) {
			loans, err := client.Loans().List(cmd.Context())
			if err != nil {
				return err
			}
			var open, overdue int
			for _, loan := range loans {
				if loan.ReturnDate == nil {
					open++
				}
				if loan.IsOverdue {
					overdue++
				}
			}
			fmt.Printf("%s %d open, %s\n", styleHeading.Render("Loans:"), open,
				statusBadge(biblio.StatusOverdue)+fmt.Sprintf(" %d", overdue))
		}
		if client.Policy().IsAdmin() {
			users, err := client.Users().List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s %d\n", styleHeading.Render("Members:"), len(users))
		}
		return nil
	},
}

var loansCmd = &cobra.Command{
	Use:   "loans",
	Short: "Manage loans",
}

var loansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loans with member, book, and status (admin or editor)",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		active, _ := cmd.Flags().GetBool("active")
		overdue, _ := cmd.Flags().GetBool("overdue")
		userID, _ := cmd.Flags().GetInt("user")

		var loans []biblio.EnrichedLoan
		switch {
		case overdue:
			loans, err = client.Loans().Overdue(cmd.Context())
		case active:
			loans, err = client.Loans().Active(cmd.Context())
		case userID != 0:
			loans, err = client.Loans().ForUser(cmd.Context(), userID)
		default:
			loans, err = client.Loans().List(cmd.Context())
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, styleHeading.Render("ID\tMEMBER\tBOOK\tLOANED\tDUE\tSTATUS"))
		for _, loan := range loans {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				loan.ID, loan.UserName, loan.BookTitle,
				loan.LoanDate, loan.DueDate, statusBadge(loan.Status))
		}
		return w.Flush()
	},
}

var loansCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open a loan",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		userID, _ := cmd.Flags().GetInt("user")
		bookID, _ := cmd.Flags().GetInt("book")
		if userID == 0 {
			// Default to the current session's subject.
			userID, err = strconv.Atoi(client.Sessions().Subject())
			if err != nil {
				return biblio.ErrNotAuthenticated
			}
		}

		loan, err := client.Loans().Create(cmd.Context(), biblio.LoanPayload{
			UserID: userID,
			BookID: bookID,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Loan %d opened; due %s\n", loan.ID, loan.DueDate)
		return nil
	},
}

var loansReturnCmd = &cobra.Command{
	Use:   "return ID",
	Short: "Close a loan by recording its return (admin or editor)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid loan id %q", args[0])
		}

		date := biblio.Today()
		if raw, _ := cmd.Flags().GetString("date"); raw != "" {
			if date, err = biblio.ParseDate(raw); err != nil {
				return err
			}
		}

		loan, err := client.Loans().Return(cmd.Context(), id, date)
		if err != nil {
			return err
		}

		fmt.Printf("Loan %d returned on %s\n", loan.ID, loan.ReturnDate)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (prompted when omitted)")

	registerCmd.Flags().String("name", "", "display name")
	registerCmd.Flags().String("email", "", "account email")
	registerCmd.Flags().String("password", "", "account password")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("password")

	authorsCmd.AddCommand(authorsListCmd)
	authorsCmd.AddCommand(authorsAddCmd)
	authorsCmd.AddCommand(authorsRemoveCmd)

	booksAddCmd.Flags().Int("author", 0, "author id")
	booksAddCmd.MarkFlagRequired("author")
	booksCmd.AddCommand(booksListCmd)
	booksCmd.AddCommand(booksSearchCmd)
	booksCmd.AddCommand(booksAddCmd)
	booksCmd.AddCommand(booksRemoveCmd)

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersSearchCmd)

	loansListCmd.Flags().Bool("active", false, "only open loans")
	loansListCmd.Flags().Bool("overdue", false, "only overdue loans")
	loansListCmd.Flags().Int("user", 0, "only loans for this member id")
	loansCreateCmd.Flags().Int("user", 0, "member id (defaults to the current session)")
	loansCreateCmd.Flags().Int("book", 0, "book id")
	loansCreateCmd.MarkFlagRequired("book")
	loansCmd.AddCommand(loansListCmd)
	loansCmd.AddCommand(loansCreateCmd)
	loansReturnCmd.Flags().String("date", "", "return date (YYYY-MM-DD, defaults to today)")
	loansCmd.AddCommand(loansReturnCmd)
}
