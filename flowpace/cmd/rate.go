package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/flowpace/flowpace/trafficgen"
)

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Print the time between two packets.",
	Long: "`rate --size 1040 --rate 250kbps` prints how far apart a " +
		"generator sends packets of the given size at the given rate.",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		size, _ := cmd.Flags().GetInt("size")
		rateStr, _ := cmd.Flags().GetString("rate")

		rate, err := trafficgen.ParseDataRate(rateStr)
		if err != nil {
			log.Print(err)
			atexit.Exit(1)
		}

		if size <= 0 {
			log.Printf("packet size must be positive, got %d", size)
			atexit.Exit(1)
		}

		interval := trafficgen.Interval(size, rate)
		fmt.Printf("%d bytes at %g bps: one packet every %gs (%.2f packets/s)\n",
			size, rate, interval, 1/interval)
	},
}

func init() {
	rootCmd.AddCommand(rateCmd)

	rateCmd.Flags().Int("size", 512, "packet size in bytes")
	rateCmd.Flags().String("rate", "500kbps", "data rate, e.g. 250kbps or 1Mbps")
}
