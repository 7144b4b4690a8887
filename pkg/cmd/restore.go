package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/smy-101/vibe-sync/internal/backup"
)

const (
	backupDateFormat = "2006-01-02 15:04:05"
	backupListLimit  = 10
	colBackup        = "Backup"
	colCreated       = "Created (UTC)"
)

var errNoBackups = errors.New("No backups found")

func init() {
	rootCmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore [timestamp]",
	Short: "List backups or restore one of them",
	Long: `Without an argument restore lists the newest backups taken before each
import. With a timestamp it copies that backup back over the local
configuration.`,
	Example: `  vibe-sync restore
  vibe-sync restore 20250102T150405`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if len(args) == 0 {
			return executeRestoreList(a)
		}
		return executeRestore(a, args[0])
	},
}

func backupStore(a *app) *backup.Store {
	return backup.NewStore(a.fs, a.paths, a.files, a.log)
}

// executeRestoreList prints the newest backups in a table.
func executeRestoreList(a *app) error {
	names, err := backupStore(a).List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errNoBackups
	}

	cnf := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
	}

	table := tablewriter.NewTable(a.out, tablewriter.WithConfig(cnf))
	table.Header(colBackup, colCreated)

	shown := names
	if len(shown) > backupListLimit {
		shown = shown[:backupListLimit]
	}
	for _, name := range shown {
		created := "-"
		if t, err := time.Parse(backup.TimestampFormat, name); err == nil {
			created = t.Format(backupDateFormat)
		}
		table.Append(name, created)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if rest := len(names) - len(shown); rest > 0 {
		fmt.Fprintf(a.out, "... and %d more\n", rest)
	}
	fmt.Fprintln(a.out, "\nUse 'vibe-sync restore <timestamp>' to restore a backup.")
	return nil
}

func executeRestore(a *app, name string) error {
	return backupStore(a).Restore(name)
}
