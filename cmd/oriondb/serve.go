package main

import (
	"github.com/oriondb/oriondb/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAdminCmd = &cobra.Command{
	Use:   "serve-admin",
	Short: "Serve the admin HTTP/WebSocket surface (catalog introspection, COPY job progress)",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := app.NewServer()
		if err := srv.Run(); err != nil {
			log.Error("server exited", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveAdminCmd)
}
