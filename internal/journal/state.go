package journal

// RunState is the projection of a run log.
type RunState struct {
	RunID      string         `json:"run_id"`
	Seed       uint64         `json:"seed"`
	Turn       int            `json:"turn"`
	RollCount  int            `json:"roll_count"`
	MaxRolls   int            `json:"max_rolls"`
	TotalRolls int            `json:"total_rolls"`
	HandsDealt int            `json:"hands_dealt"`
	Dice       []string       `json:"dice"`
	Hand       []int          `json:"hand"`
	Health     int            `json:"health"`
	MaxHealth  int            `json:"max_health"`
	Gold       int            `json:"gold"`
	Relics     map[string]int `json:"relics"`
	// RelicOrder lists relic IDs in the order they were first acquired.
	RelicOrder []string `json:"relic_order"`
}

// NewRunState creates an empty run.
func NewRunState() *RunState {
	return &RunState{
		Dice:       make([]string, 0),
		Hand:       make([]int, 0),
		Relics:     make(map[string]int),
		RelicOrder: make([]string, 0),
	}
}
