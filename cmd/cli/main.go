// Admin CLI for operating a Quill deployment.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/quillhq/quill/backend/internal/auth"
	"github.com/quillhq/quill/backend/internal/database"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quill",
		Short: "Admin tooling for a Quill deployment",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Println("Warning: .env file not found, using system environment variables")
			}
			return database.Initialize()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			database.Close()
		},
	}

	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(statsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var email, username, password, displayName string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			service := auth.NewService([]byte(os.Getenv("JWT_SECRET")))
			user, err := service.Register(auth.RegisterRequest{
				Email:       email,
				Username:    username,
				Password:    password,
				DisplayName: displayName,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created user %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&email, "email", "", "account email")
	createCmd.Flags().StringVar(&username, "username", "", "account username")
	createCmd.Flags().StringVar(&password, "password", "", "account password")
	createCmd.Flags().StringVar(&displayName, "display-name", "", "display name")
	createCmd.MarkFlagRequired("email")
	createCmd.MarkFlagRequired("username")
	createCmd.MarkFlagRequired("password")

	cmd.AddCommand(createCmd)
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print row counts for the main tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, table := range []string{"users", "groups", "posts", "comments", "follows"} {
				var count int64
				if err := database.DB.Table(table).Count(&count).Error; err != nil {
					return err
				}
				fmt.Printf("%-10s %d\n", table, count)
			}
			return nil
		},
	}
}
