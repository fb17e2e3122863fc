package main

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smykla-skalski/cursor-updater/internal/installer"
)

const ageUnits = 2

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List backup generations of the installation",
	Long: `List backup generations kept next to the installation, newest first.

The newest backup is the one 'cursor-updater rollback' restores.`,
	Args: cobra.NoArgs,
	RunE: runBackups,
}

func init() {
	rootCmd.AddCommand(backupsCmd)
}

func runBackups(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	installPath := a.cfg.GetInstall().GetPath()

	backups, err := installer.ListBackups(installPath)
	if err != nil {
		return err
	}

	if len(backups) == 0 {
		a.printf("No backups of %s\n", installPath)

		return nil
	}

	sizes := backupSizes(cmd, backups)
	now := time.Now()
	rows := make([][]string, 0, len(backups))

	for i, b := range backups {
		size := "?"
		if sizes[i] >= 0 {
			size = humanize.Bytes(uint64(sizes[i]))
		}

		rows = append(rows, []string{
			b.Name,
			b.Created.Format(time.DateTime),
			durafmt.Parse(now.Sub(b.Created)).LimitFirstN(ageUnits).String(),
			size,
		})
	}

	a.printf("%s\n", renderTable([]string{"Backup", "Created", "Age", "Size"}, rows))
	a.printf("%s\n", a.theme.Muted.Render(installPath+" has "+humanize.Comma(int64(len(backups)))+" backup(s)"))

	return nil
}

// backupSizes measures every backup concurrently. Unreadable ones are -1.
func backupSizes(cmd *cobra.Command, backups []installer.Backup) []int64 {
	sizes := make([]int64, len(backups))
	g, gctx := errgroup.WithContext(cmd.Context())

	for i := range backups {
		g.Go(func() error {
			sizes[i] = -1

			if gctx.Err() != nil {
				return nil
			}

			if n, err := installer.DirSize(backups[i].Path); err == nil {
				sizes[i] = n
			}

			return nil
		})
	}

	_ = g.Wait()

	return sizes
}
