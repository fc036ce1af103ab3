package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/flowpace/flowpace/datarecording"
	"github.com/flowpace/flowpace/recording"
)

var showCmd = &cobra.Command{
	Use:   "show <run.sqlite3> [series]",
	Short: "Print a series recorded with run --sqlite.",
	Long: "`show` lists the tables of a database written by `run --sqlite`. " +
		"Given a series name such as bytes, dropped or cwnd, it prints the " +
		"series in the same format as the text traces.",
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			log.Print(err)
			atexit.Exit(1)
		}
		defer reader.Close()

		if len(args) == 1 {
			tables, err := reader.Tables(ctx)
			if err != nil {
				log.Print(err)
				atexit.Exit(1)
			}

			for _, t := range tables {
				fmt.Println(t)
			}

			return
		}

		limit, _ := cmd.Flags().GetInt("limit")
		if err := printSeries(ctx, reader, args[1], limit); err != nil {
			log.Print(err)
			atexit.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().Int("limit", 0, "print at most this many rows; all if 0")
}

func printSeries(
	ctx context.Context,
	reader datarecording.DataReader,
	series string,
	limit int,
) error {
	reader.MapTable(series, recording.Row{})

	rows, _, err := reader.Query(ctx, series, datarecording.QueryParams{
		OrderBy: "rowid",
		Limit:   limit,
	})
	if err != nil {
		return err
	}

	for _, r := range rows {
		row := r.(*recording.Row)
		fmt.Printf("%s\t%s\n",
			recording.FormatValue(row.Time), recording.FormatValue(row.Value))
	}

	return nil
}
