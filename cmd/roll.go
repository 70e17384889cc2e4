package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lepied/DiceSoul-sub001/internal/dice"
)

var rollCmd = &cobra.Command{
	Use:   "roll <expr>...",
	Short: "Roll dice expressions outside a run",
	Long: `Rolls one or more expressions of the form NdS[+/-M] and prints the
individual results, e.g.

	dicesoul roll 3d6 d20+2`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := settings()
		if err != nil {
			return err
		}
		roller := cfg.Roller()
		out := cmd.OutOrStdout()
		for _, expr := range args {
			res, err := dice.RollExpr(expr, roller)
			if err != nil {
				return err
			}
			rolls := make([]string, len(res.RawRolls))
			for i, r := range res.RawRolls {
				rolls[i] = fmt.Sprint(r)
			}
			line := fmt.Sprintf("%s: [%s]", expr, strings.Join(rolls, " "))
			if res.Modifier != 0 {
				line += fmt.Sprintf(" %+d", res.Modifier)
			}
			fmt.Fprintf(out, "%s = %d\n", line, res.Total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rollCmd)
}
