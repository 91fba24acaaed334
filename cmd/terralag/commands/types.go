package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terralag/terralag/pkg/hclscan"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the resource/data types the project references",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, fileErrs, err := hclscan.ScanTypes(config.Dir)
		if err != nil {
			return err
		}
		for _, fe := range fileErrs {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", fe.Path, fe.Err)
		}
		for _, name := range set.Sorted() {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
