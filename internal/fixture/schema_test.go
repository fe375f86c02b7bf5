package fixture

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/danielpatrickdp/stringcoach/internal/groove"
)

func compiledSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	path := filepath.Join("..", "..", "schemas", "groove_layer_control.v0.schema.json")
	schema, err := jsonschema.Compile(path)
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}
	return schema
}

func validateEnvelope(t *testing.T, schema *jsonschema.Schema, env groove.Envelope) {
	t.Helper()
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if err := schema.Validate(doc); err != nil {
		t.Fatalf("envelope violates wire contract: %v\n%s", err, raw)
	}
}

// Every vector's output must satisfy the published wire contract, whatever
// regime it exercises.
func TestAllVectorsEmitContractValidEnvelopes(t *testing.T) {
	schema := compiledSchema(t)
	singles := []string{
		"01_stable_follow_player",
		"02_unstable_reduce_density_micro_loop",
		"03_recovery_exit_loop",
		"04_missing_tempo_freeze_conservative",
	}
	for _, name := range singles {
		env, err := Process(loadVector(t, name), groove.DefaultConfig())
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		validateEnvelope(t, schema, env)
	}

	results, err := ProcessMultiWindow(loadVector(t, "05_probe_density_ab"), groove.DefaultConfig())
	if err != nil {
		t.Fatalf("05_probe_density_ab: %v", err)
	}
	for _, r := range results {
		validateEnvelope(t, schema, r.Envelope)
	}
}

func TestZeroEventEnvelopeIsContractValid(t *testing.T) {
	schema := compiledSchema(t)
	layer := groove.NewLayer("dev_contract", "ses_contract", groove.DefaultConfig())
	validateEnvelope(t, schema, layer.UpdateWindow(nil, nil))
}

func TestSchemaRejectsUnknownEnumValue(t *testing.T) {
	schema := compiledSchema(t)
	env, err := Process(loadVector(t, "01_stable_follow_player"), groove.DefaultConfig())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	raw, _ := json.Marshal(env)
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	controls := doc["controls"].(map[string]any)
	tempo := controls["tempo"].(map[string]any)
	tempo["policy"] = "warp_speed"

	if err := schema.Validate(doc); err == nil {
		t.Fatal("schema accepted an unknown tempo policy")
	}
}
