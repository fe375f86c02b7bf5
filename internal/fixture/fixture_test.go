package fixture

import (
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/stringcoach/internal/groove"
)

func loadVector(t *testing.T, name string) *Fixture {
	t.Helper()
	f, err := Load(filepath.Join("testdata", name+".json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return f
}

func processVector(t *testing.T, name string) groove.Envelope {
	t.Helper()
	env, err := Process(loadVector(t, name), groove.DefaultConfig())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	return env
}

func TestVector01StableFollowPlayer(t *testing.T) {
	env := processVector(t, "01_stable_follow_player")

	if env.Controls.Tempo.Policy != groove.TempoFollowPlayer {
		t.Fatalf("expected follow_player, got %s", env.Controls.Tempo.Policy)
	}
	if env.Controls.Loop.Policy != groove.LoopNone {
		t.Fatalf("expected no loop, got %s", env.Controls.Loop.Policy)
	}
	if env.Controls.Arrangement.DensityTarget != groove.DensityMedium {
		t.Fatalf("expected medium density, got %s", env.Controls.Arrangement.DensityTarget)
	}
	if !env.Controls.ChangePolicy.AllowDensityProbes {
		t.Fatal("stable vector should allow probes")
	}
}

func TestVector02UnstableMicroLoop(t *testing.T) {
	env := processVector(t, "02_unstable_reduce_density_micro_loop")

	if env.Controls.Arrangement.DensityTarget != groove.DensitySparse {
		t.Fatalf("expected sparse density, got %s", env.Controls.Arrangement.DensityTarget)
	}
	if env.Controls.Loop.Policy != groove.LoopMicro {
		t.Fatalf("expected micro_loop, got %s", env.Controls.Loop.Policy)
	}
	if env.Controls.Tempo.Policy != groove.TempoSteadyClock {
		t.Fatalf("expected steady_clock, got %s", env.Controls.Tempo.Policy)
	}
	if env.Controls.ChangePolicy.AllowDensityProbes {
		t.Fatal("unstable vector must disable probes")
	}
}

func TestVector03Recovery(t *testing.T) {
	env := processVector(t, "03_recovery_exit_loop")

	if env.Controls.Loop.Policy != groove.LoopSection {
		t.Fatalf("expected loop_section, got %s", env.Controls.Loop.Policy)
	}
	if env.Controls.Arrangement.DensityTarget != groove.DensityMedium {
		t.Fatalf("expected medium density, got %s", env.Controls.Arrangement.DensityTarget)
	}
	if env.Controls.Assist.AssistPolicy != groove.AssistStandard {
		t.Fatalf("expected standard assist, got %s", env.Controls.Assist.AssistPolicy)
	}
	if !env.Controls.ChangePolicy.AllowDensityProbes {
		t.Fatal("recovery vector should allow probes")
	}
}

func TestVector04MissingContextFreeze(t *testing.T) {
	env := processVector(t, "04_missing_tempo_freeze_conservative")

	if env.Controls.Tempo.Policy != groove.TempoSteadyClock {
		t.Fatalf("expected steady_clock, got %s", env.Controls.Tempo.Policy)
	}
	if env.Controls.Tempo.NudgeStrength != 0 || env.Controls.Tempo.MaxDeltaPctPerMin != 0 {
		t.Fatalf("tempo not frozen: %+v", env.Controls.Tempo)
	}
	cp := env.Controls.ChangePolicy
	if cp.AllowModulation || cp.AllowTempoChangeEvents || cp.AllowDensityProbes {
		t.Fatalf("all change permissions must be false: %+v", cp)
	}
}

func TestVector05ProbeAB(t *testing.T) {
	results, err := ProcessMultiWindow(loadVector(t, "05_probe_density_ab"), groove.DefaultConfig())
	if err != nil {
		t.Fatalf("ProcessMultiWindow: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(results))
	}

	windowA := results[0]
	if windowA.Label != "window_a" {
		t.Fatalf("unexpected label %s", windowA.Label)
	}
	if !windowA.Envelope.Controls.ChangePolicy.AllowDensityProbes {
		t.Fatal("window A should allow probes")
	}

	windowB := results[1]
	if windowB.Envelope.Controls.Arrangement.DensityTarget != groove.DensitySparse {
		t.Fatalf("window B: expected sparse, got %s", windowB.Envelope.Controls.Arrangement.DensityTarget)
	}
	if windowB.Envelope.Controls.ChangePolicy.AllowDensityProbes {
		t.Fatal("window B must disable probes after degradation")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join("testdata", "does_not_exist.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func TestProcessRejectsInvalidHint(t *testing.T) {
	f := loadVector(t, "03_recovery_exit_loop")
	f.PriorStateHint.LastLoopPolicy = "mega_loop"
	if _, err := Process(f, groove.DefaultConfig()); err == nil {
		t.Fatal("expected error for unknown loop policy")
	}
}

func TestProcessRejectsInvalidEvent(t *testing.T) {
	f := loadVector(t, "01_stable_follow_player")
	f.Events[3].EventType = "laser_onset"
	if _, err := Process(f, groove.DefaultConfig()); err == nil {
		t.Fatal("expected error for unknown event type")
	}
}
