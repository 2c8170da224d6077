// Package cmd wires the service's entry points.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "orders-service",
	Short: "Order processing backend",
	Long:  `Order placement, inventory reservation, and subscription recurrence with a transactional outbox`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
