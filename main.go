package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ambulink",
		Short: "Ambulance booking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account and load the default hospital directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("admin-name")
			email, _ := cmd.Flags().GetString("admin-email")
			password, _ := cmd.Flags().GetString("admin-password")
			return runSeed(cmd.Context(), name, email, password)
		},
	}
	cmd.Flags().String("admin-name", "Dispatch Admin", "display name of the admin account")
	cmd.Flags().String("admin-email", "admin@ambulink.local", "email of the admin account")
	cmd.Flags().String("admin-password", os.Getenv("ADMIN_PASSWORD"), "password of the admin account (defaults to $ADMIN_PASSWORD)")
	return cmd
}
