package main

import (
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kirillkom/kiriman-ayam/internal/adapters/tui"
	"github.com/kirillkom/kiriman-ayam/internal/entry"
	"github.com/kirillkom/kiriman-ayam/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/kiriman-ayam/internal/infrastructure/storage/localfs"
)

func newInputCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "input",
		Short: "Enter weights for a shipment in the terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := c.newSession()
			if err != nil {
				return err
			}
			model, err := tui.New(cmd.Context(), session)
			if err != nil {
				return err
			}

			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			if session.HasUnsaved() {
				slog.Warn("entry_left_unexported", "readings", len(session.Readings()))
			}
			return nil
		},
	}
}

func (c *cli) newSession() (*entry.Session, error) {
	local, err := localfs.New(c.cfg.ClientDataDir)
	if err != nil {
		return nil, err
	}
	exports, err := localfs.New(c.cfg.ClientExportDir)
	if err != nil {
		return nil, err
	}
	return entry.NewSession(c.api, xlsx.New(nil), exports, entry.NewRecoveryStore(local)), nil
}
