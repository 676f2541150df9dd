package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gates-backend/internal/infrastructure/awsclient"
	"gates-backend/internal/infrastructure/persistence/dynamodb"
)

var createTableWait time.Duration

var createTableCmd = &cobra.Command{
	Use:   "create-table",
	Short: "Create the gates table if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		clients, err := awsclient.New(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		created, err := dynamodb.EnsureTable(cmd.Context(), clients.DynamoDB, cfg.Database.TableName, createTableWait, logger)
		if err != nil {
			return err
		}

		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "Created table %s\n", cfg.Database.TableName)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Table %s already exists\n", cfg.Database.TableName)
		}
		return nil
	},
}

func init() {
	createTableCmd.Flags().DurationVar(&createTableWait, "wait", 2*time.Minute, "how long to wait for the table to become active")
}
