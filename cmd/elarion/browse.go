package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/elarion-web/internal/i18n"
	"finitefield.org/elarion-web/internal/observability"
	"finitefield.org/elarion-web/internal/storefront"
	"finitefield.org/elarion-web/internal/tui"
)

func newBrowseCmd(root *rootOptions) *cobra.Command {
	var (
		logFile string
		lang    string
	)
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive storefront",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cat, err := root.load(cmd)
			if err != nil {
				return err
			}
			if logFile == "" {
				logFile = cfg.Log.File
			}
			// The terminal belongs to the program, so logs only go to a file.
			logger := zap.NewNop()
			if logFile != "" {
				if logger, err = observability.NewFileLogger(cfg.Log.Level, logFile); err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
			}
			defer func() { _ = logger.Sync() }()

			bundle, err := i18n.Load(localesDir(cfg), cfg.Storefront.DefaultLocale, []string{"en", "fr"})
			if err != nil {
				return err
			}
			if lang == "" {
				lang = cfg.Storefront.DefaultLocale
			}
			inst, err := observability.NewInstruments()
			if err != nil {
				return fmt.Errorf("init metrics: %w", err)
			}

			sess := storefront.NewSession(ulid.Make().String(), cat, storefront.OptionsFrom(cfg.Storefront, logger, inst))
			defer sess.Close()
			logger.Info("terminal session started", zap.String("session_id", sess.ID()), zap.String("lang", lang))

			m, err := tui.New(sess, tui.Options{Bundle: bundle, Lang: lang})
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
				tea.WithContext(cmd.Context()),
			).Run()
			if err != nil {
				return fmt.Errorf("run program: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (overrides ELARION_LOG_FILE)")
	cmd.Flags().StringVar(&lang, "lang", "", "interface language (en or fr)")
	return cmd
}
