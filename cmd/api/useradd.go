package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"example.com/notes-api/internal/auth"
	"example.com/notes-api/internal/config"
	"example.com/notes-api/internal/db"
	"example.com/notes-api/internal/notes"
)

var (
	userEmail     string
	userFullName  string
	passwordStdin bool
)

var userAddCmd = &cobra.Command{
	Use:   "user-add",
	Short: "Create an account in the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}

		pass, err := readPassword()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		conn, err := db.Open(ctx, cfg.DatabaseURL, db.Options{MaxOpen: 1, MaxIdle: 1})
		if err != nil {
			return err
		}
		defer conn.Close()

		repo := notes.NewAccountRepository(conn.SQL)
		u, err := auth.New(repo, repo, cfg.SessionTTL).Register(ctx, auth.RegisterInput{
			Email:           userEmail,
			Password:        pass,
			ConfirmPassword: pass,
			FullName:        userFullName,
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		slog.Info("user created", "id", u.ID, "email", u.Email)
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "Account email")
	userAddCmd.Flags().StringVar(&userFullName, "name", "", "Full name")
	userAddCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	_ = userAddCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(userAddCmd)
}

func readPassword() (string, error) {
	if passwordStdin {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(line), nil
	}
	pass, err := promptPassword("Password: ")
	if err != nil {
		return "", err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", auth.ErrPasswordMismatch
	}
	return pass, nil
}

func promptPassword(prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("stdin is not a terminal, use --password-stdin")
	}
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(pass)), nil
}
