// Package game holds the minimal run bookkeeping the CLI needs: the
// player's ledger and a hand scorer.
package game

import "sync"

// Player is the in-memory ledger of a run.
type Player struct {
	mu          sync.Mutex
	health      int
	maxHealth   int
	gold        int
	shield      bool
	enemyHealth int
}

// NewPlayer creates a player at full health facing an enemy.
func NewPlayer(maxHealth, gold, enemyHealth int) *Player {
	return &Player{health: maxHealth, maxHealth: maxHealth, gold: gold, enemyHealth: enemyHealth}
}

// Status is a copy of the ledger.
type Status struct {
	Health      int
	MaxHealth   int
	Gold        int
	Shield      bool
	EnemyHealth int
}

func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		Health:      p.health,
		MaxHealth:   p.maxHealth,
		Gold:        p.gold,
		Shield:      p.shield,
		EnemyHealth: p.enemyHealth,
	}
}

// RaiseShield sets the defensive flag until the next roll.
func (p *Player) RaiseShield() {
	p.mu.Lock()
	p.shield = true
	p.mu.Unlock()
}

func (p *Player) ClearShield() {
	p.mu.Lock()
	p.shield = false
	p.mu.Unlock()
}

// SetEnemy replaces the enemy's health, e.g. when a wave starts.
func (p *Player) SetEnemy(health int) {
	p.mu.Lock()
	p.enemyHealth = health
	p.mu.Unlock()
}

func (p *Player) DamageEnemy(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enemyHealth -= n
	if p.enemyHealth < 0 {
		p.enemyHealth = 0
	}
}

// TakeDamage lowers health. A raised shield halves the hit, rounding down.
func (p *Player) TakeDamage(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shield {
		n /= 2
	}
	p.health -= n
	if p.health < 0 {
		p.health = 0
	}
}

func (p *Player) Heal(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.health += n
	if p.health > p.maxHealth {
		p.health = p.maxHealth
	}
}

func (p *Player) AddGold(n int) {
	p.mu.Lock()
	p.gold += n
	p.mu.Unlock()
}

// SpendGold deducts n when the player can afford it.
func (p *Player) SpendGold(n int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n > p.gold {
		return false
	}
	p.gold -= n
	return true
}

// Dead reports whether the player has no health left.
func (p *Player) Dead() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.health == 0
}
