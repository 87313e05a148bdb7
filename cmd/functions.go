package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/cwbudde/acor/bench"
	"github.com/spf13/cobra"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List built-in benchmark functions",
	Long:  `Display all benchmark functions with their domain and known best value.`,
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDIMS\tDOMAIN\tBEST")
		fmt.Fprintln(w, "----\t----\t------\t----")

		for _, fn := range bench.All() {
			dims := "any"
			if fn.Dims != 0 {
				dims = strconv.Itoa(fn.Dims)
			}
			fmt.Fprintf(w, "%s\t%s\t[%g, %g]\t%g\n", fn.Name, dims, fn.Lower, fn.Upper, fn.Best)
		}

		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(functionsCmd)
}
