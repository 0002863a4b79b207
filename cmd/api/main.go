package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/arakoo/atm/cmd/api/commands"
)

// @title ATM API
// @version 1.0
// @description Task manager with due-date status derivation and windowed notifications

// @contact.name ATM Support
// @contact.url https://github.com/arakoo/atm

// @license.name MIT
// @license.url https://github.com/arakoo/atm/blob/main/LICENSE

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "atm",
		Short: "ATM API Server",
		Long:  `ATM is a task manager that derives task status from due dates and schedules de-duplicated 24-hour and 1-hour due-date notifications.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
