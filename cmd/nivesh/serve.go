package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/nivesh/api"
)

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		st, err := a.openStore()
		if err != nil {
			return err
		}
		opts := api.Options{
			Config:    cfg,
			Toolkit:   a.toolkit,
			Analyzer:  a.analyzer,
			Assistant: a.assistant(),
			LLM:       a.provider,
			Logger:    a.log,
			Version:   version,
		}
		if st != nil {
			defer st.Close()
			opts.Store = st
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return api.NewServer(opts).ListenAndServe(ctx, cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
}
