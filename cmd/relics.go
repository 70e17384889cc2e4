package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lepied/DiceSoul-sub001/internal/relic"
)

var relicsCmd = &cobra.Command{
	Use:   "relics",
	Short: "List the relics visible through relic_dirs",
	Long: `Reads every <dir>/relics/<id>.yaml under the configured relic_dirs,
compiles its effects and prints the catalog. A relic that fails to
compile is reported and makes the command fail.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := settings()
		if err != nil {
			return err
		}
		ev, err := relic.NewEvaluator(cfg.Roller())
		if err != nil {
			return err
		}
		catalog := relic.NewCatalog(cfg.RelicDirs, ev)
		defs, err := catalog.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(defs) == 0 {
			fmt.Fprintf(out, "No relics found in %s\n", strings.Join(cfg.RelicDirs, ", "))
			return nil
		}

		var failed int
		for _, def := range defs {
			name := def.Name
			if name == "" {
				name = def.ID
			}
			fmt.Fprintf(out, "%s %s\n", titleStyle.MarginBottom(0).Render(def.ID), name)
			if def.Description != "" {
				fmt.Fprintf(out, "  %s\n", def.Description)
			}
			fmt.Fprintf(out, "  %s\n", infoStyle.Render(traits(def)))
			if _, err := relic.NewScripted(def, ev); err != nil {
				failed++
				fmt.Fprintf(out, "  %s\n", errorStyle.Render(err.Error()))
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d relics failed to compile", failed)
		}
		return nil
	},
}

func traits(def relic.Definition) string {
	var parts []string
	if def.RollBonus != 0 {
		parts = append(parts, fmt.Sprintf("rolls %+d", def.RollBonus))
	}
	if def.PreserveCharges > 0 {
		parts = append(parts, fmt.Sprintf("preserve %d/turn", def.PreserveCharges))
	}
	if def.BonusRolls > 0 {
		parts = append(parts, fmt.Sprintf("bonus rolls %d/turn", def.BonusRolls))
	}
	for _, e := range def.Effects {
		parts = append(parts, "on "+e.On)
	}
	if len(parts) == 0 {
		return "no effects"
	}
	return strings.Join(parts, ", ")
}

func init() {
	rootCmd.AddCommand(relicsCmd)
}
