package parser

import (
	"fmt"
	"strings"
)

// Usage lists the syntax of every command, keyed by its keyword.
var Usage = map[string]string{
	"deal":     "deal <dice> [, <dice>]*   e.g. deal 5d6",
	"roll":     "roll",
	"keep":     "keep <index> [<index>]*",
	"lock":     "lock <index> [for: <turns>]",
	"unlock":   "unlock <index> [<index>]*",
	"preserve": "preserve <index>",
	"restore":  "restore <index>",
	"remove":   "remove <index> [<index>]*",
	"end":      "end",
	"attack":   "attack [base_damage]",
	"damage":   "damage <amount> [from: <source>]",
	"heal":     "heal <amount>",
	"gold":     "gold <amount>",
	"buy":      "buy <item> <price>",
	"relic":    "relic <id>",
	"wave":     "wave <enemy_health> [reward: <gold>]",
	"zone":     "zone <number> [heal: <amount>]",
	"shield":   "shield",
	"status":   "status",
	"help":     "help",
	"quit":     "quit",
}

// MapError takes a raw input and a participle error, and returns a
// human-friendly guidance message.
func MapError(input string, err error) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("I wasn't able to understand your command")
	}

	cmd := strings.ToLower(strings.Fields(input)[0])
	if cmd == "exit" {
		cmd = "quit"
	}
	if usage, ok := Usage[cmd]; ok {
		return fmt.Errorf("The command %s must be: %s", cmd, usage)
	}
	return fmt.Errorf("I wasn't able to understand your command")
}
