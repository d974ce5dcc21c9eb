package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/franz/showcat/internal/server"
	"github.com/franz/showcat/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve materialized views over HTTP",
	Long: `Serve the catalog read path over HTTP.

Endpoints:
  GET /api/series          all series views, in insertion order
  GET /api/series/{alias}  one series view (404 if missing)
  GET /healthz             liveness

The database is opened read-only; run imports from another process.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", "127.0.0.1:8080", "Address to listen on")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	setupLogging()

	db, dbPath, err := openStore(true)
	if err != nil {
		return err
	}
	defer db.Close()

	events, err := openEventLogger()
	if err != nil {
		return err
	}
	defer events.Close()

	addr := GetConfigString("listen", "127.0.0.1:8080")
	srv := server.New(newMaterializer(db, events), events)

	util.InfoLog("Serving %s on http://%s", dbPath, addr)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return err
	}
	util.InfoLog("Server stopped")
	return nil
}
