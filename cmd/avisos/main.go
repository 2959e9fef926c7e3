package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title Avisos Gateway API
// @version 1.0
// @description Backend gateway that sends Teams notices on behalf of the signed-in user.
// @BasePath /
func main() {
	rootCmd := &cobra.Command{
		Use:   "avisos",
		Short: "Avisos gateway for Microsoft Teams notifications",
	}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
