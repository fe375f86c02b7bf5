package groove

// #region control-groups

// TempoControl directs how the accompaniment clock behaves.
type TempoControl struct {
	Policy            TempoPolicy `json:"policy"`
	NudgeStrength     float64     `json:"nudge_strength"`
	MaxDeltaPctPerMin int         `json:"max_delta_pct_per_min"`
}

// ArrangementControl directs layer density and dynamics tracking.
type ArrangementControl struct {
	DensityTarget         DensityTarget `json:"density_target"`
	InstrumentationPolicy string        `json:"instrumentation_policy"`
	DynamicsFollow        string        `json:"dynamics_follow"`
}

// LoopControl directs the stabilizing loop.
type LoopControl struct {
	Policy        LoopPolicy `json:"policy"`
	LengthBars    int        `json:"length_bars"`
	ExitCondition string     `json:"exit_condition"`
}

// FeelControl directs grid/feel claims and the click.
type FeelControl struct {
	FeelPolicy  string `json:"feel_policy"`
	Grid        string `json:"grid"`
	ClickPolicy string `json:"click_policy"`
}

// AssistControl directs scaffolding level.
type AssistControl struct {
	AssistPolicy AssistPolicy `json:"assist_policy"`
	GhostDrums   string       `json:"ghost_drums"`
	CountInBars  int          `json:"count_in_bars"`
}

// ChangePolicy gates further adaptation. Three independent permissions.
type ChangePolicy struct {
	AllowModulation        bool `json:"allow_modulation"`
	AllowTempoChangeEvents bool `json:"allow_tempo_change_events"`
	AllowDensityProbes     bool `json:"allow_density_probes"`
}

// #endregion

// #region control-set

// ControlSet is the fixed-shape directive record emitted once per window.
// Field names and enum string values are wire contract; downstream consumers
// match on them exactly.
type ControlSet struct {
	Tempo        TempoControl       `json:"tempo"`
	Arrangement  ArrangementControl `json:"arrangement"`
	Loop         LoopControl        `json:"loop"`
	Feel         FeelControl        `json:"feel"`
	Assist       AssistControl      `json:"assist"`
	ChangePolicy ChangePolicy       `json:"change_policy"`
}

// Rationale explains a directive set. Carried alongside the controls, never
// inside them.
type Rationale struct {
	Trigger string `json:"trigger"`
	Notes   string `json:"notes"`
}

// #endregion

// #region frozen-controls

// frozenControls is the missing-context regime: freeze corrective behavior
// rather than act on claims the host did not make.
func frozenControls() (ControlSet, Rationale) {
	return ControlSet{
			Tempo: TempoControl{
				Policy:            TempoSteadyClock,
				NudgeStrength:     0.0,
				MaxDeltaPctPerMin: 0,
			},
			Arrangement: ArrangementControl{
				DensityTarget:         DensityMedium,
				InstrumentationPolicy: "keep_layers",
				DynamicsFollow:        "fixed",
			},
			Loop: LoopControl{
				Policy:        LoopNone,
				LengthBars:    4,
				ExitCondition: "manual",
			},
			Feel: FeelControl{
				FeelPolicy:  "straight",
				Grid:        "quarter", // conservative, no grid claims
				ClickPolicy: "off",
			},
			Assist: AssistControl{
				AssistPolicy: AssistMinimal,
				GhostDrums:   "off",
				CountInBars:  0,
			},
			ChangePolicy: ChangePolicy{
				AllowModulation:        false,
				AllowTempoChangeEvents: false,
				AllowDensityProbes:     false,
			},
		}, Rationale{
			Trigger: "missing_context",
			Notes:   "No engine context; freezing corrective behavior to avoid wrong claims.",
		}
}

// #endregion

// #region unstable-controls

// unstableControls is the degradation regime: support and simplify.
func unstableControls() (ControlSet, Rationale) {
	return ControlSet{
			Tempo: TempoControl{
				Policy:            TempoSteadyClock,
				NudgeStrength:     0.4,
				MaxDeltaPctPerMin: 3,
			},
			Arrangement: ArrangementControl{
				DensityTarget:         DensitySparse,
				InstrumentationPolicy: "reduce_layers",
				DynamicsFollow:        "fixed",
			},
			Loop: LoopControl{
				Policy:        LoopMicro,
				LengthBars:    4,
				ExitCondition: "stability_recovered",
			},
			Feel: FeelControl{
				FeelPolicy:  "straight",
				Grid:        "eighth",
				ClickPolicy: "prominent",
			},
			Assist: AssistControl{
				AssistPolicy: AssistSupportive,
				GhostDrums:   "light",
				CountInBars:  2,
			},
			ChangePolicy: ChangePolicy{
				AllowModulation:        false,
				AllowTempoChangeEvents: false,
				AllowDensityProbes:     false,
			},
		}, Rationale{
			Trigger: "low_tempo_stability",
			Notes:   "Detected instability; simplifying and gating changes until stable.",
		}
}

// #endregion

// #region recovery-controls

// recoveryControls is the partial de-escalation regime: stability has
// returned but has not yet been confirmed across enough windows.
func recoveryControls(ec *EngineContext) (ControlSet, Rationale) {
	return ControlSet{
			Tempo: TempoControl{
				Policy:            TempoFollowPlayer,
				NudgeStrength:     0.25,
				MaxDeltaPctPerMin: 5,
			},
			Arrangement: ArrangementControl{
				DensityTarget:         DensityMedium,
				InstrumentationPolicy: "keep_layers",
				DynamicsFollow:        "soft_follow",
			},
			Loop: LoopControl{
				Policy:        LoopSection,
				LengthBars:    4,
				ExitCondition: "stability_recovered",
			},
			Feel: FeelControl{
				FeelPolicy:  ec.Feel,
				Grid:        ec.Grid,
				ClickPolicy: "subtle",
			},
			Assist: AssistControl{
				AssistPolicy: AssistStandard,
				GhostDrums:   "off",
				CountInBars:  0,
			},
			ChangePolicy: ChangePolicy{
				AllowModulation:        false,
				AllowTempoChangeEvents: true,
				AllowDensityProbes:     true,
			},
		}, Rationale{
			Trigger: "stability_recovering",
			Notes:   "Stability recovered; relaxing assist and restoring density.",
		}
}

// #endregion

// #region stable-controls

// stableControls is the baseline regime: follow the player, allow probing.
func stableControls(ec *EngineContext) (ControlSet, Rationale) {
	return ControlSet{
			Tempo: TempoControl{
				Policy:            TempoFollowPlayer,
				NudgeStrength:     0.2,
				MaxDeltaPctPerMin: 5,
			},
			Arrangement: ArrangementControl{
				DensityTarget:         DensityMedium,
				InstrumentationPolicy: "keep_layers",
				DynamicsFollow:        "soft_follow",
			},
			Loop: LoopControl{
				Policy:        LoopNone,
				LengthBars:    4,
				ExitCondition: "manual",
			},
			Feel: FeelControl{
				FeelPolicy:  ec.Feel,
				Grid:        ec.Grid,
				ClickPolicy: "subtle",
			},
			Assist: AssistControl{
				AssistPolicy: AssistStandard,
				GhostDrums:   "off",
				CountInBars:  1,
			},
			ChangePolicy: ChangePolicy{
				AllowModulation:        false,
				AllowTempoChangeEvents: true,
				AllowDensityProbes:     true,
			},
		}, Rationale{
			Trigger: "stable_baseline",
			Notes:   "Baseline stable play; no corrective action required.",
		}
}

// #endregion
