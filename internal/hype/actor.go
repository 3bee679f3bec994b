// Package hype provides the companion actor: a periodic crowd-work
// ability that siphons attention into a shared bank, a momentum tracker
// fed by wave outcomes, and the stadium-wide ultimate gated by a hybrid
// of cooldown, momentum, and bank threshold.
package hype

import (
	"math/rand"

	"github.com/talgya/crowdwave/internal/spectator"
	"github.com/talgya/crowdwave/internal/stadium"
	"github.com/talgya/crowdwave/internal/tuning"
)

// State is the actor's behavioral state.
type State uint8

const (
	StateEntrance State = iota
	StatePatrolling
	StateHyping
	StateExecutingAbility
	StateUltimate
	StateExit
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateEntrance:
		return "entrance"
	case StatePatrolling:
		return "patrolling"
	case StateHyping:
		return "hyping"
	case StateExecutingAbility:
		return "executingAbility"
	case StateUltimate:
		return "ultimate"
	default:
		return "exit"
	}
}

// Phase is the rotating targeting mode shared by the periodic ability
// and the ultimate.
type Phase uint8

const (
	PhaseSection Phase = iota
	PhaseStadium
	PhaseCluster
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseSection:
		return "section"
	case PhaseStadium:
		return "stadium"
	default:
		return "cluster"
	}
}

// PositionProvider is the narrow interface to the external movement/
// pathfinding collaborator: the core only ever asks where the actor is.
type PositionProvider interface {
	Position() (section string, row, col int)
}

// ResultKind tags what happened during a tick.
type ResultKind uint8

const (
	ResultAbility ResultKind = iota
	ResultUltimate
)

// Result reports an ability or ultimate execution so the simulation can
// fan out follow-on effects (reward ripple, events) without the actor
// knowing about them.
type Result struct {
	Kind    ResultKind
	Phase   Phase
	Targets int
	Catcher *spectator.Spectator // Reward catcher; ability results only
}

// Effectiveness bounds for the momentum multiplier.
const (
	minEffectiveness = 0.25
	maxEffectiveness = 1.0
)

// Actor is the hype companion and its attention-economy state.
type Actor struct {
	cfg *tuning.Hype
	st  *stadium.Stadium
	pos PositionProvider
	rng *rand.Rand

	State State
	Phase Phase

	Streak        int     // Consecutive wave successes
	Effectiveness float64 // Momentum multiplier, [0.25, 1.0]
	Bank          float64 // Attention bank, [0, cap]
	UltimateReady bool    // Bank has reached the threshold

	waveActive bool

	enteredAt      float64
	exitedAt       float64
	lastAbilityAt  float64
	lastUltimateAt float64
}

// NewActor creates the actor at baseline, in the entrance state.
func NewActor(cfg *tuning.Hype, st *stadium.Stadium, pos PositionProvider, rng *rand.Rand) *Actor {
	return &Actor{
		cfg:           cfg,
		st:            st,
		pos:           pos,
		rng:           rng,
		State:         StateEntrance,
		Effectiveness: maxEffectiveness,
	}
}

// EffectiveCooldown is the ultimate cooldown after momentum reduction:
// up to 40% off at 10% per consecutive success, scaled by the
// effectiveness multiplier, never under the floor.
func (a *Actor) EffectiveCooldown() float64 {
	reduction := 0.10 * float64(a.Streak)
	if reduction > 0.40 {
		reduction = 0.40
	}
	cd := a.cfg.BaseCooldownSec * (1 - reduction*a.Effectiveness)
	if cd < a.cfg.MinCooldownSec {
		cd = a.cfg.MinCooldownSec
	}
	return cd
}

// OnWaveResult feeds a finished wave into the momentum tracker.
func (a *Actor) OnWaveResult(success bool) {
	if !success {
		a.Streak = 0
		return
	}
	a.Streak++
	a.Effectiveness += 0.05
	if a.Effectiveness > maxEffectiveness {
		a.Effectiveness = maxEffectiveness
	}
}

// OnField reports whether the actor is currently working the crowd.
func (a *Actor) OnField() bool {
	return a.State != StateEntrance && a.State != StateExit
}

// SetWaveActive toggles the patrol/hype posture as waves start and end.
func (a *Actor) SetWaveActive(active bool) {
	a.waveActive = active
}

// Tick advances the actor by one frame at the given session clock.
func (a *Actor) Tick(now float64) []Result {
	switch a.State {
	case StateEntrance:
		if now-a.enteredAt >= a.cfg.EntranceDurationSec {
			a.State = StatePatrolling
		}
		return nil

	case StateExit:
		if now-a.exitedAt >= a.cfg.ReentryCooldownSec {
			a.State = StateEntrance
			a.enteredAt = now
			a.lastAbilityAt = now
			a.lastUltimateAt = now
		}
		return nil
	}

	// On the field: patrol, hype, work the crowd.
	if now-a.enteredAt >= a.cfg.ActiveDurationSec {
		a.State = StateExit
		a.exitedAt = now
		return nil
	}

	if a.waveActive {
		a.State = StateHyping
	} else {
		a.State = StatePatrolling
	}

	// Ultimate first: bank threshold, momentum-reduced cooldown, or the
	// hard interval ceiling — whichever is satisfied first.
	sinceUlt := now - a.lastUltimateAt
	if a.UltimateReady || sinceUlt >= a.EffectiveCooldown() || sinceUlt >= a.cfg.MaxIntervalSec {
		return []Result{a.fireUltimate(now)}
	}

	if now-a.lastAbilityAt >= a.cfg.AbilityIntervalSec {
		return []Result{a.fireAbility(now)}
	}
	return nil
}

// fireAbility runs the periodic crowd-work: drain a fixed sliver of
// attention from each target into the bank, cheer them up a little, and
// toss a reward to one of them. The targeting phase rotates every
// execution.
func (a *Actor) fireAbility(now float64) Result {
	a.State = StateExecutingAbility
	a.lastAbilityAt = now

	targets := a.selectTargets(a.Phase)
	drained := 0.0
	for _, sp := range targets {
		before := sp.Stats.Attention
		sp.Stats.AddAttention(-a.cfg.AbilityDrainPerTarget)
		drained += before - sp.Stats.Attention
		sp.Stats.AddHappiness(a.cfg.AbilityHappinessBoost)
	}

	a.Bank += drained
	if a.Bank > a.cfg.BankCap {
		a.Bank = a.cfg.BankCap
	}
	if a.Bank >= a.cfg.UltimateBankThreshold {
		a.UltimateReady = true
	}

	res := Result{Kind: ResultAbility, Phase: a.Phase, Targets: len(targets)}
	if len(targets) > 0 {
		res.Catcher = targets[a.rng.Intn(len(targets))]
	}

	a.Phase = (a.Phase + 1) % 3
	a.restoreFieldState()
	return res
}

// fireUltimate drains the bank and applies the amplified version of the
// periodic ability's current targeting-phase effect.
func (a *Actor) fireUltimate(now float64) Result {
	a.State = StateUltimate
	a.lastUltimateAt = now

	targets := a.selectTargets(a.Phase)
	boost := a.cfg.AbilityHappinessBoost * a.cfg.UltimateAmplifier
	for _, sp := range targets {
		sp.Stats.AddHappiness(boost)
		sp.Stats.AddAttention(a.cfg.UltimateAttentionBoost)
	}

	a.Bank = 0
	a.UltimateReady = false
	a.Streak = 0
	a.Effectiveness *= 0.75
	if a.Effectiveness < minEffectiveness {
		a.Effectiveness = minEffectiveness
	}

	res := Result{Kind: ResultUltimate, Phase: a.Phase, Targets: len(targets)}
	a.restoreFieldState()
	return res
}

func (a *Actor) restoreFieldState() {
	if a.waveActive {
		a.State = StateHyping
	} else {
		a.State = StatePatrolling
	}
}
