package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joestump/joe-reader/internal/config"
	"github.com/joestump/joe-reader/internal/readerclient"
	"github.com/joestump/joe-reader/internal/tui"
	"github.com/joestump/joe-reader/internal/ui/localstore"
)

func newBrowseCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "browse [url]",
		Short: "Read a joe-reader server in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				v.Set("browse.url", args[0])
			}
			cfg, err := config.LoadWith(v)
			if err != nil {
				return err
			}

			// stdout belongs to the UI; diagnostics go to a file or nowhere.
			var logOut io.Writer = io.Discard
			if cfg.Browse.LogFile != "" {
				f, err := os.OpenFile(cfg.Browse.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer func() { _ = f.Close() }()
				logOut = f
			}
			logger, err := setupLogger(logOut, cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}

			client, err := readerclient.New(cfg.Browse.URL, &http.Client{Timeout: cfg.Browse.Timeout})
			if err != nil {
				return err
			}

			local, err := localstore.Open(cfg.Browse.LocalStore)
			if err != nil {
				return err
			}
			defer func() { _ = local.Close() }()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			m := tui.New(ctx, client, tui.Options{
				StartURL:          client.Base(),
				Storage:           local,
				SidebarBreakpoint: cfg.Browse.SidebarBreakpoint,
				SystemDark:        lipgloss.HasDarkBackground(),
				Logger:            logger,
			})
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
	cmd.Flags().String("local-store", "", "path of the local preference store")
	cmd.Flags().String("log-file", "", "write diagnostics to this file")
	_ = v.BindPFlag("browse.local_store", cmd.Flags().Lookup("local-store"))
	_ = v.BindPFlag("browse.log_file", cmd.Flags().Lookup("log-file"))
	return cmd
}
