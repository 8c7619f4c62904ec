package shell

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nimasrn/banking-ledger/internal/model"
	"github.com/nimasrn/banking-ledger/internal/services"
	"github.com/nimasrn/banking-ledger/pkg/logger"
)

// Shell is the interactive terminal front end. It owns no business rules:
// every operation is delegated to the account and session services.
type Shell struct {
	accounts *services.AccountService
	sessions *services.SessionService
	prompt   *prompter
	out      io.Writer
}

func NewShell(accounts *services.AccountService, sessions *services.SessionService, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		accounts: accounts,
		sessions: sessions,
		prompt:   newPrompter(in, out),
		out:      out,
	}
}

// Run drives the top-level menu until the operator exits or input ends.
// Exit is always clean.
func (s *Shell) Run(ctx context.Context) error {
	for {
		fmt.Fprintln(s.out, "\n1. Add User\n2. Show Users\n3. Login\n4. Exit")
		choice, err := s.prompt.line("Enter choice: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out, "Goodbye!")
				return nil
			}
			return err
		}

		switch parseCommand(choice) {
		case CommandAddUser:
			s.addUser(ctx)
		case CommandShowUsers:
			s.showUsers(ctx)
		case CommandLogin:
			s.login(ctx)
		case CommandExit:
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice.")
		}
	}
}

func (s *Shell) addUser(ctx context.Context) {
	name, err := s.prompt.line("Enter name: ")
	if err != nil {
		return
	}
	dob, err := s.prompt.line("Enter date of birth (YYYY-MM-DD): ")
	if err != nil {
		return
	}
	city, err := s.prompt.line("Enter city: ")
	if err != nil {
		return
	}
	email, err := s.prompt.validated("Enter email: ", model.IsValidEmail, "Invalid email address.")
	if err != nil {
		return
	}
	contact, err := s.prompt.validated("Enter contact number: ", model.IsValidContactNumber, "Invalid contact number.")
	if err != nil {
		return
	}
	password, err := s.promptValidPassword()
	if err != nil {
		return
	}
	address, err := s.prompt.line("Enter address: ")
	if err != nil {
		return
	}
	openingBalance, err := s.prompt.amount("Enter initial balance (minimum 2000): ")
	if err != nil {
		return
	}

	account, err := s.accounts.Register(ctx, model.AccountCreateRequest{
		Name:           name,
		DateOfBirth:    dob,
		City:           city,
		Address:        address,
		Email:          email,
		ContactNumber:  contact,
		Password:       password,
		OpeningBalance: openingBalance,
	})
	if err != nil {
		logger.Error("registration failed", "error", err)
		fmt.Fprintf(s.out, "Could not create account: %v\n", err)
		return
	}

	fmt.Fprintf(s.out, "User added successfully. Account Number: %s\n", account.AccountNumber)
}

func (s *Shell) showUsers(ctx context.Context) {
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		logger.Error("listing accounts failed", "error", err)
		fmt.Fprintf(s.out, "Could not list users: %v\n", err)
		return
	}
	for _, a := range accounts {
		fmt.Fprintf(s.out, "Name: %s, Account Number: %s, Balance: %.2f\n", a.Name, a.AccountNumber, a.Balance)
	}
}

func (s *Shell) login(ctx context.Context) {
	accountNumber, err := s.prompt.line("Enter account number: ")
	if err != nil {
		return
	}
	password, err := s.prompt.password("Enter password: ")
	if err != nil {
		return
	}

	session, err := s.sessions.Login(ctx, accountNumber, password)
	if err != nil {
		// Deliberately the same message for unknown accounts and wrong
		// passwords.
		fmt.Fprintln(s.out, "Invalid account number or password.")
		return
	}

	logger.Info("session opened", "session_id", session.ID, "account_number", session.AccountNumber)
	fmt.Fprintf(s.out, "Welcome %s!\n", session.Name)
	s.dashboard(ctx, session)
	logger.Info("session closed", "session_id", session.ID)
}

func (s *Shell) dashboard(ctx context.Context, session *services.Session) {
	for {
		fmt.Fprintln(s.out, "\n1. Show Balance\n2. Credit Amount\n3. Debit Amount\n4. Exit\n5. Statement")
		choice, err := s.prompt.line("Enter choice: ")
		if err != nil {
			return
		}

		switch parseDashboardCommand(choice) {
		case DashboardShowBalance:
			balance, err := s.sessions.ShowBalance(ctx, session)
			if err != nil {
				fmt.Fprintf(s.out, "Could not read balance: %v\n", err)
				continue
			}
			fmt.Fprintf(s.out, "Your balance is: %.2f\n", balance)
		case DashboardCredit:
			amount, err := s.prompt.amount("Enter amount to credit: ")
			if err != nil {
				return
			}
			newBalance, err := s.sessions.Credit(ctx, session, amount)
			if err != nil {
				fmt.Fprintf(s.out, "Credit failed: %v\n", err)
				continue
			}
			fmt.Fprintf(s.out, "Amount credited successfully. New balance: %.2f\n", newBalance)
		case DashboardDebit:
			amount, err := s.prompt.amount("Enter amount to debit: ")
			if err != nil {
				return
			}
			newBalance, err := s.sessions.Debit(ctx, session, amount)
			if err != nil {
				if errors.Is(err, services.ErrInsufficientBalance) {
					fmt.Fprintln(s.out, "Insufficient balance.")
				} else {
					fmt.Fprintf(s.out, "Debit failed: %v\n", err)
				}
				continue
			}
			fmt.Fprintf(s.out, "Amount debited successfully. New balance: %.2f\n", newBalance)
		case DashboardStatement:
			rows, err := s.sessions.Statement(ctx, session, 0)
			if err != nil {
				fmt.Fprintf(s.out, "Could not read statement: %v\n", err)
				continue
			}
			for _, t := range rows {
				fmt.Fprintf(s.out, "%s  %-6s  %.2f\n", t.CreatedAt.Format("2006-01-02 15:04:05"), t.Type, t.Amount)
			}
		case DashboardExit:
			return
		default:
			fmt.Fprintln(s.out, "Invalid choice.")
		}
	}
}

func (s *Shell) promptValidPassword() (string, error) {
	for {
		password, err := s.prompt.password("Enter password: ")
		if err != nil {
			return "", err
		}
		if model.IsValidPassword(password) {
			return password, nil
		}
		fmt.Fprintln(s.out, "Password must contain at least 8 characters, including letters and numbers.")
	}
}
