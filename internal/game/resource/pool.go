// Package resource implements the player's action-point economy: continuous
// drain while moving or dashing, regeneration while charging, and atomic
// spend-or-refuse gating for AP-costed actions.
package resource

import (
	"fmt"
	"time"
)

// Config holds the tuning for one action-point pool.
type Config struct {
	// Max is the pool capacity.
	Max float64
	// MoveDrainPerSec is drained each second while moving (not dashing).
	MoveDrainPerSec float64
	// DashDrainPerSec is drained each second while dashing. Must exceed
	// MoveDrainPerSec.
	DashDrainPerSec float64
	// RegenPerSec is restored each second while charging.
	RegenPerSec float64
}

// Validate checks the pool tuning invariants.
//
// Postcondition: nil return guarantees Max > 0, all rates >= 0, and
// DashDrainPerSec > MoveDrainPerSec.
func (c Config) Validate() error {
	if c.Max <= 0 {
		return fmt.Errorf("resource: max must be > 0, got %v", c.Max)
	}
	if c.MoveDrainPerSec < 0 {
		return fmt.Errorf("resource: move drain must be >= 0, got %v", c.MoveDrainPerSec)
	}
	if c.DashDrainPerSec <= c.MoveDrainPerSec {
		return fmt.Errorf("resource: dash drain (%v) must exceed move drain (%v)", c.DashDrainPerSec, c.MoveDrainPerSec)
	}
	if c.RegenPerSec < 0 {
		return fmt.Errorf("resource: regen must be >= 0, got %v", c.RegenPerSec)
	}
	return nil
}

// Activity describes what the player is doing during one tick. The flags feed
// both AP accounting and the opponent vulnerability predicate.
type Activity struct {
	Moving   bool
	Dashing  bool
	Charging bool
}

// Draining reports whether this activity drains AP.
func (a Activity) Draining() bool { return a.Moving || a.Dashing }

// Pool is one player's action-point pool.
//
// Invariant: 0 <= current <= max before and after every method call.
//
// Concurrency: Pool is not safe for concurrent use. The owning encounter
// serializes all access on its tick goroutine.
type Pool struct {
	cfg     Config
	current float64
}

// NewPool creates a full Pool from cfg.
//
// Precondition: cfg must satisfy cfg.Validate().
// Postcondition: Current() == cfg.Max.
func NewPool(cfg Config) *Pool {
	return &Pool{cfg: cfg, current: cfg.Max}
}

// Current returns the available AP.
func (p *Pool) Current() float64 { return p.current }

// Max returns the pool capacity.
func (p *Pool) Max() float64 { return p.cfg.Max }

// Fraction returns Current/Max in [0, 1].
func (p *Pool) Fraction() float64 { return p.current / p.cfg.Max }

// Tick advances the pool by delta under the given activity. Dashing drains at
// the dash rate, otherwise moving drains at the move rate; charging restores
// at the regen rate. Drain takes precedence over regen when both would apply
// in the same tick. The result is clamped to [0, max].
//
// Precondition: delta >= 0.
// Postcondition: 0 <= Current() <= Max().
func (p *Pool) Tick(delta time.Duration, act Activity) {
	dt := delta.Seconds()
	switch {
	case act.Dashing:
		p.current -= p.cfg.DashDrainPerSec * dt
	case act.Moving:
		p.current -= p.cfg.MoveDrainPerSec * dt
	case act.Charging:
		p.current += p.cfg.RegenPerSec * dt
	}
	p.clamp()
}

// Consume atomically spends amount AP. When the pool holds less than amount
// nothing changes and Consume reports false; the caller must abort the gated
// action entirely.
//
// Precondition: amount >= 0.
// Postcondition: on true, Current() decreased by exactly amount; on false,
// state is unchanged.
func (p *Pool) Consume(amount float64) bool {
	if amount < 0 {
		panic("resource: Consume called with negative amount")
	}
	if p.current < amount {
		return false
	}
	p.current -= amount
	return true
}

// Grant restores amount AP, clamped at max. This is the comeback mechanic:
// the player is granted AP when an opponent lands a hit on them.
//
// Precondition: amount >= 0.
// Postcondition: Current() <= Max().
func (p *Pool) Grant(amount float64) {
	if amount < 0 {
		panic("resource: Grant called with negative amount")
	}
	p.current += amount
	p.clamp()
}

// Empty reports whether the pool is fully drained.
func (p *Pool) Empty() bool { return p.current <= 0 }

func (p *Pool) clamp() {
	if p.current < 0 {
		p.current = 0
	}
	if p.current > p.cfg.Max {
		p.current = p.cfg.Max
	}
}
