package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nathoo/arenacore/stream"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the arena over websockets",
	Long: `Runs the engine on a wall-clock ticker and pushes snapshots and tick
output to websocket clients at /ws. Clients send {"type":"unlock"} and
{"type":"visit"} to activate the arena.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(os.Stderr)
		eng, err := newEngine(logger)
		if err != nil {
			return err
		}

		srv := stream.NewServer(eng, logger)
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", srv.Handle)
		httpSrv := &http.Server{Addr: viper.GetString("listen"), Handler: mux}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go srv.Run(ctx, 0)

		errc := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", httpSrv.Addr)
			errc <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("listen", ":8080", "address to listen on")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	rootCmd.AddCommand(serveCmd)
}
