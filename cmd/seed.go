/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sweetshop/apiserver/config"
	"github.com/sweetshop/apiserver/internal/db"
	"github.com/sweetshop/apiserver/internal/store"
	"github.com/sweetshop/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// seedCmd wipes the database and loads the demo accounts and catalog.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the database with demo accounts and sweets",
	Long: `Clears all users and sweets, then loads an admin account
(admin@sweetshop.com / admin123), a customer account
(customer@sweetshop.com / user123), and a small demo catalog.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		ctx := cmd.Context()

		dbConn, err := db.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = dbConn.Close()
		}()

		if err := db.RunMigrations(dbConn, cfg.StoreDriver); err != nil {
			return err
		}

		if _, err := dbConn.ExecContext(ctx, "DELETE FROM sweets"); err != nil {
			return fmt.Errorf("clear sweets: %w", err)
		}
		if _, err := dbConn.ExecContext(ctx, "DELETE FROM users"); err != nil {
			return fmt.Errorf("clear users: %w", err)
		}

		if err := seedUsers(ctx, store.NewUserRepository(dbConn)); err != nil {
			return err
		}
		if err := seedSweets(ctx, store.NewSweetRepository(dbConn)); err != nil {
			return err
		}

		fmt.Println("seeding complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func seedUsers(ctx context.Context, repo *store.UserRepository) error {
	accounts := []struct {
		email    string
		password string
		role     string
	}{
		{"admin@sweetshop.com", "admin123", types.RoleAdmin},
		{"customer@sweetshop.com", "user123", types.RoleCustomer},
	}

	for _, account := range accounts {
		hashed, err := bcrypt.GenerateFromPassword([]byte(account.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", account.email, err)
		}
		if _, err := repo.Create(ctx, types.User{
			Email:        account.email,
			Role:         account.role,
			PasswordHash: string(hashed),
		}); err != nil {
			return fmt.Errorf("create user %s: %w", account.email, err)
		}
	}
	return nil
}

func seedSweets(ctx context.Context, repo *store.SweetRepository) error {
	sweets := []types.Sweet{
		{Name: "Dark Chocolate Truffle", Category: "Chocolate", Price: 2.50, Quantity: 50},
		{Name: "Rainbow Gummy Bears", Category: "Gummies", Price: 1.20, Quantity: 100},
		{Name: "Sour Worms", Category: "Gummies", Price: 1.50, Quantity: 0},
		{Name: "Peanut Butter Cup", Category: "Chocolate", Price: 3.00, Quantity: 30},
		{Name: "Vanilla Bean Fudge", Category: "Fudge", Price: 4.00, Quantity: 15},
	}

	for _, sweet := range sweets {
		if _, err := repo.Create(ctx, sweet); err != nil {
			return fmt.Errorf("create sweet %q: %w", sweet.Name, err)
		}
	}
	return nil
}
