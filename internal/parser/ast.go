package parser

// Command is one line typed at the play prompt.
type Command struct {
	Deal     *DealCmd     `parser:"( @@"`
	Roll     *RollCmd     `parser:"| @@"`
	Keep     *KeepCmd     `parser:"| @@"`
	Unlock   *UnlockCmd   `parser:"| @@"`
	Lock     *LockCmd     `parser:"| @@"`
	Preserve *PreserveCmd `parser:"| @@"`
	Restore  *RestoreCmd  `parser:"| @@"`
	Remove   *RemoveCmd   `parser:"| @@"`
	End      *EndCmd      `parser:"| @@"`
	Attack   *AttackCmd   `parser:"| @@"`
	Damage   *DamageCmd   `parser:"| @@"`
	Heal     *HealCmd     `parser:"| @@"`
	Gold     *GoldCmd     `parser:"| @@"`
	Buy      *BuyCmd      `parser:"| @@"`
	Relic    *RelicCmd    `parser:"| @@"`
	Wave     *WaveCmd     `parser:"| @@"`
	Zone     *ZoneCmd     `parser:"| @@"`
	Shield   *ShieldCmd   `parser:"| @@"`
	Status   *StatusCmd   `parser:"| @@"`
	Help     *HelpCmd     `parser:"| @@"`
	Quit     *QuitCmd     `parser:"| @@ )"`
}

// DealCmd replaces the hand, e.g. "deal 5d6" or "deal 3d6, d20".
type DealCmd struct {
	Deck []string `parser:"\"deal\" @Dice ( \",\"? @Dice )*"`
}

// RollCmd requests a roll.
type RollCmd struct {
	Keyword string `parser:"@\"roll\""`
}

// KeepCmd toggles the lock on the listed dice.
type KeepCmd struct {
	Indices []int `parser:"\"keep\" @Int ( \",\"? @Int )*"`
}

// LockCmd locks one die, optionally for a number of turns: "lock 1 for: 2".
type LockCmd struct {
	Index int `parser:"\"lock\" @Int"`
	Turns int `parser:"( \"for\" \":\" @Int )?"`
}

type UnlockCmd struct {
	Indices []int `parser:"\"unlock\" @Int ( \",\"? @Int )*"`
}

type PreserveCmd struct {
	Index int `parser:"\"preserve\" @Int"`
}

type RestoreCmd struct {
	Index int `parser:"\"restore\" @Int"`
}

// RemoveCmd consumes dice from the hand.
type RemoveCmd struct {
	Indices []int `parser:"\"remove\" @Int ( \",\"? @Int )*"`
}

// EndCmd ends the turn.
type EndCmd struct {
	Keyword string `parser:"@\"end\""`
}

// AttackCmd scores the hand and attacks. Base overrides the scored damage.
type AttackCmd struct {
	Keyword string `parser:"@\"attack\""`
	Base    *int   `parser:"@Int?"`
}

// DamageCmd hits the player: "damage 4 from: ogre".
type DamageCmd struct {
	Amount int    `parser:"\"damage\" @Int"`
	Source string `parser:"( \"from\" \":\" @Ident )?"`
}

type HealCmd struct {
	Amount int `parser:"\"heal\" @Int"`
}

type GoldCmd struct {
	Amount int `parser:"\"gold\" @Int"`
}

// BuyCmd purchases an item at a base price: "buy potion 20".
type BuyCmd struct {
	Item  string `parser:"\"buy\" @Ident"`
	Price int    `parser:"@Int"`
}

// RelicCmd acquires a relic from the catalog.
type RelicCmd struct {
	ID string `parser:"\"relic\" @Ident"`
}

// WaveCmd starts a wave against an enemy: "wave 40 reward: 12".
type WaveCmd struct {
	EnemyHealth int `parser:"\"wave\" @Int"`
	Reward      int `parser:"( \"reward\" \":\" @Int )?"`
}

// ZoneCmd enters a zone: "zone 2 heal: 10".
type ZoneCmd struct {
	Zone int `parser:"\"zone\" @Int"`
	Heal int `parser:"( \"heal\" \":\" @Int )?"`
}

// ShieldCmd raises the player's shield until the next roll.
type ShieldCmd struct {
	Keyword string `parser:"@\"shield\""`
}

type StatusCmd struct {
	Keyword string `parser:"@\"status\""`
}

type HelpCmd struct {
	Keyword string `parser:"@\"help\""`
}

type QuitCmd struct {
	Keyword string `parser:"@( \"quit\" | \"exit\" )"`
}
