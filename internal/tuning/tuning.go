// Package tuning loads the balance configuration for the crowd simulation.
// Every threshold, rate, and duration used by the core loop lives here;
// the struct is read-only after startup and passed in explicitly.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the full balance configuration.
type Tuning struct {
	Session       Session       `yaml:"session"`
	Stadium       Stadium       `yaml:"stadium"`
	Engagement    Engagement    `yaml:"engagement"`
	Wave          Wave          `yaml:"wave"`
	Participation Participation `yaml:"participation"`
	ClusterDecay  ClusterDecay  `yaml:"cluster_decay"`
	Ripple        Ripple        `yaml:"ripple"`
	Hype          Hype          `yaml:"hype"`
}

// Session controls the simulation clock.
type Session struct {
	TickMs        int     `yaml:"tick_ms"`        // Logic tick interval
	LengthSec     float64 `yaml:"length_sec"`     // Total session length
	SnapshotTicks uint64  `yaml:"snapshot_ticks"` // Persistence snapshot cadence
}

// Stadium controls seating layout and population.
type Stadium struct {
	Sections      int     `yaml:"sections"`
	Rows          int     `yaml:"rows"`
	Cols          int     `yaml:"cols"`
	OccupancyRate float64 `yaml:"occupancy_rate"` // Chance a seat is filled
}

// Engagement controls per-spectator stat decay and derived state.
type Engagement struct {
	ThirstRateSlow      float64 `yaml:"thirst_rate_slow"`      // Points/sec below the fast threshold
	ThirstRateFast      float64 `yaml:"thirst_rate_fast"`      // Points/sec at or above it
	ThirstFastThreshold float64 `yaml:"thirst_fast_threshold"` // Two-phase breakpoint

	HappinessDecayRate     float64 `yaml:"happiness_decay_rate"`
	HappinessThirstTrigger float64 `yaml:"happiness_thirst_trigger"` // Thirst level that starts happiness decay

	AttentionDecayRate float64 `yaml:"attention_decay_rate"`
	AttentionFloor     float64 `yaml:"attention_floor"` // Continuous decay never goes below this

	StagnationThreshold   float64 `yaml:"stagnation_threshold"` // Attention below this starts the stagnation clock
	StagnationDurationSec float64 `yaml:"stagnation_duration_sec"`
	StagnationThirstMult  float64 `yaml:"stagnation_thirst_mult"` // Extra thirst growth once stagnant

	FreezeDurationSec float64 `yaml:"freeze_duration_sec"` // How long a service event suppresses decay
	ServiceDelaySec   float64 `yaml:"service_delay_sec"`   // Vendor travel time from request to delivery

	DisinterestedAttention float64 `yaml:"disinterested_attention"`
	DisinterestedHappiness float64 `yaml:"disinterested_happiness"`

	InitialHappinessMin float64 `yaml:"initial_happiness_min"`
	InitialHappinessMax float64 `yaml:"initial_happiness_max"`
	InitialThirstMin    float64 `yaml:"initial_thirst_min"`
	InitialThirstMax    float64 `yaml:"initial_thirst_max"`
	InitialAttentionMin float64 `yaml:"initial_attention_min"`
	InitialAttentionMax float64 `yaml:"initial_attention_max"`
}

// Wave controls wave lifecycle, scoring, and the autonomous trigger.
type Wave struct {
	BasePointsPerSection int `yaml:"base_points_per_section"`

	StartStrength         float64 `yaml:"start_strength"`
	StrengthGainOnSuccess float64 `yaml:"strength_gain_on_success"`
	StrengthLossOnReduced float64 `yaml:"strength_loss_on_reduced"`
	SectionTickStride     uint64  `yaml:"section_tick_stride"` // Ticks between section resolutions

	TriggerIntervalSec float64 `yaml:"trigger_interval_sec"`
	TriggerEngagement  float64 `yaml:"trigger_engagement"` // Min section avg engagement to start
	CooldownSec        float64 `yaml:"cooldown_sec"`       // Between wave end and next trigger

	SuccessHappinessBoost   float64 `yaml:"success_happiness_boost"`
	FailureHappinessPenalty float64 `yaml:"failure_happiness_penalty"`
}

// Participation controls the per-column Bernoulli rolls.
type Participation struct {
	HappinessWeight  float64 `yaml:"happiness_weight"`
	AttentionWeight  float64 `yaml:"attention_weight"`
	ThirstPenalty    float64 `yaml:"thirst_penalty"`
	BaseChance       float64 `yaml:"base_chance"`
	StrengthModifier float64 `yaml:"strength_modifier"`

	PeerPressureThreshold float64 `yaml:"peer_pressure_threshold"`
	ReducedIntensity      float64 `yaml:"reduced_intensity"`

	ColumnSuccessThreshold float64 `yaml:"column_success_threshold"`
	ColumnReducedThreshold float64 `yaml:"column_reduced_threshold"`

	SectionSuccessThreshold float64 `yaml:"section_success_threshold"`
	SectionReducedThreshold float64 `yaml:"section_reduced_threshold"`
}

// ClusterDecay controls the periodic localized disengagement process.
type ClusterDecay struct {
	BaseIntervalSec float64 `yaml:"base_interval_sec"`
	MidPhaseMult    float64 `yaml:"mid_phase_mult"`  // Interval multiplier past 30% of the session
	LatePhaseMult   float64 `yaml:"late_phase_mult"` // Interval multiplier past 70%

	Radius     int `yaml:"radius"` // Manhattan radius around the seed
	ClusterMin int `yaml:"cluster_min"`
	ClusterMax int `yaml:"cluster_max"`

	RateEarly float64 `yaml:"rate_early"` // Happiness points/sec by session band
	RateMid   float64 `yaml:"rate_mid"`
	RateLate  float64 `yaml:"rate_late"`

	AttentionFactor float64 `yaml:"attention_factor"` // Attention decays at this multiple
	AttentionCap    float64 `yaml:"attention_cap"`    // Max attention loss per event

	VarianceMin float64 `yaml:"variance_min"`
	VarianceMax float64 `yaml:"variance_max"`
}

// Ripple controls the re-engagement stimulus propagation.
type Ripple struct {
	BaseEffect         float64 `yaml:"base_effect"`
	MaxRadius          int     `yaml:"max_radius"`
	DisinterestedBonus float64 `yaml:"disinterested_bonus"`
	DecayType          string  `yaml:"decay_type"` // "linear"; "exponential" is declared but unimplemented
}

// Hype controls the companion actor and the attention economy.
type Hype struct {
	EntranceDurationSec float64 `yaml:"entrance_duration_sec"`
	ActiveDurationSec   float64 `yaml:"active_duration_sec"` // Time on the field before exiting
	ReentryCooldownSec  float64 `yaml:"reentry_cooldown_sec"`

	AbilityIntervalSec    float64 `yaml:"ability_interval_sec"`
	AbilityDrainPerTarget float64 `yaml:"ability_drain_per_target"` // Attention siphoned into the bank
	AbilityHappinessBoost float64 `yaml:"ability_happiness_boost"`

	BankCap               float64 `yaml:"bank_cap"`
	UltimateBankThreshold float64 `yaml:"ultimate_bank_threshold"`

	BaseCooldownSec float64 `yaml:"base_cooldown_sec"`
	MinCooldownSec  float64 `yaml:"min_cooldown_sec"`
	MaxIntervalSec  float64 `yaml:"max_interval_sec"` // Hard ceiling: forces an ultimate

	UltimateAmplifier      float64 `yaml:"ultimate_amplifier"` // Multiplier on the periodic ability's effect
	UltimateAttentionBoost float64 `yaml:"ultimate_attention_boost"`

	ClusterAttentionThreshold float64 `yaml:"cluster_attention_threshold"`
	ClusterRadius             int     `yaml:"cluster_radius"`
	ClusterMinSize            int     `yaml:"cluster_min_size"`
}

// Load reads a tuning file from disk.
func Load(path string) (*Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tuning: %w", err)
	}
	t := Default()
	if err := yaml.Unmarshal(raw, t); err != nil {
		return nil, fmt.Errorf("parse tuning: %w", err)
	}
	return t, nil
}

// Default returns the shipped balance values.
func Default() *Tuning {
	return &Tuning{
		Session: Session{
			TickMs:        100,
			LengthSec:     1200, // 20 minute session
			SnapshotTicks: 600,
		},
		Stadium: Stadium{
			Sections:      6,
			Rows:          8,
			Cols:          12,
			OccupancyRate: 0.85,
		},
		Engagement: Engagement{
			ThirstRateSlow:      0.08,
			ThirstRateFast:      0.20,
			ThirstFastThreshold: 60,

			HappinessDecayRate:     0.10,
			HappinessThirstTrigger: 70,

			AttentionDecayRate: 0.12,
			AttentionFloor:     10,

			StagnationThreshold:   25,
			StagnationDurationSec: 20,
			StagnationThirstMult:  1.5,

			FreezeDurationSec: 10,
			ServiceDelaySec:   6,

			DisinterestedAttention: 30,
			DisinterestedHappiness: 30,

			InitialHappinessMin: 45,
			InitialHappinessMax: 85,
			InitialThirstMin:    10,
			InitialThirstMax:    40,
			InitialAttentionMin: 50,
			InitialAttentionMax: 90,
		},
		Wave: Wave{
			BasePointsPerSection: 100,

			StartStrength:         60,
			StrengthGainOnSuccess: 5,
			StrengthLossOnReduced: 8,
			SectionTickStride:     8,

			TriggerIntervalSec: 5,
			TriggerEngagement:  55,
			CooldownSec:        25,

			SuccessHappinessBoost:   5,
			FailureHappinessPenalty: 3,
		},
		Participation: Participation{
			HappinessWeight:  0.5,
			AttentionWeight:  0.3,
			ThirstPenalty:    0.2,
			BaseChance:       10,
			StrengthModifier: 0.4,

			PeerPressureThreshold: 0.6,
			ReducedIntensity:      0.5,

			ColumnSuccessThreshold: 0.60,
			ColumnReducedThreshold: 0.40,

			SectionSuccessThreshold: 0.60,
			SectionReducedThreshold: 0.40,
		},
		ClusterDecay: ClusterDecay{
			BaseIntervalSec: 20,
			MidPhaseMult:    0.7,
			LatePhaseMult:   0.45,

			Radius:     4,
			ClusterMin: 8,
			ClusterMax: 16,

			RateEarly: 0.4,
			RateMid:   0.7,
			RateLate:  1.1,

			AttentionFactor: 2.5,
			AttentionCap:    25,

			VarianceMin: 0.8,
			VarianceMax: 1.2,
		},
		Ripple: Ripple{
			BaseEffect:         40,
			MaxRadius:          4,
			DisinterestedBonus: 5,
			DecayType:          "linear",
		},
		Hype: Hype{
			EntranceDurationSec: 5,
			ActiveDurationSec:   180,
			ReentryCooldownSec:  60,

			AbilityIntervalSec:    15,
			AbilityDrainPerTarget: 2,
			AbilityHappinessBoost: 4,

			BankCap:               100,
			UltimateBankThreshold: 30,

			BaseCooldownSec: 90,
			MinCooldownSec:  30,
			MaxIntervalSec:  240,

			UltimateAmplifier:      2.0,
			UltimateAttentionBoost: 20,

			ClusterAttentionThreshold: 35,
			ClusterRadius:             5,
			ClusterMinSize:            6,
		},
	}
}
