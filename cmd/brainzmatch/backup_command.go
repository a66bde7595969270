package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sydlexius/brainzmatch/internal/backup"
)

func newBackupCommand(app *appContext) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the catalog cache, or list existing snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := app.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			svc := app.backups(db)
			if !list {
				info, err := svc.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Snapshot written to %s\n", info.Path)
				return nil
			}

			infos, err := svc.List()
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No snapshots yet.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderBackups(infos))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List snapshots instead of taking one")
	return cmd
}

func renderBackups(infos []backup.Info) string {
	headers := []string{"Snapshot", "Created", "Size"}
	rows := make([][]string, 0, len(infos))
	for _, i := range infos {
		rows = append(rows, []string{
			i.Filename,
			i.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			strconv.FormatInt(i.Size, 10),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignRight})
}
