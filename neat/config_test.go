package neat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigINI = `
[DefaultGenome]
num_inputs = 2
num_outputs = 1
feed_forward = false
initial_connection = full
compatibility_weight_coefficient = 0.8
conn_add_prob = 0.3
single_structural_mutation = false
hidden_activation_options = tanh relu
output_activation_options = identity

[WeightAttribute]
min_value = -5
max_value = 5

[EnabledAttribute]
default = true
mutate_rate = 0.05

[DefaultNetwork]
state_init = random
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(testConfigINI))
	require.NoError(t, err, "failed to parse config")

	gc := cfg.Genome
	assert.Equal(t, 2, gc.NumInputs)
	assert.Equal(t, 1, gc.NumOutputs)
	assert.False(t, gc.FeedForward)
	assert.Equal(t, ConnectionFull, gc.InitialConnection)
	assert.Equal(t, 0.8, gc.CompatibilityWeightCoefficient)
	assert.Equal(t, 1.0, gc.CompatibilityExcessCoefficient, "absent keys keep defaults")
	assert.Equal(t, 0.3, gc.ConnAddProb)
	assert.False(t, gc.SingleStructuralMutation)
	assert.Equal(t, []Activation{Tanh, ReLU}, gc.HiddenActivations)
	assert.Equal(t, []Activation{Linear}, gc.OutputActivations)

	assert.Equal(t, -5.0, gc.Weight.MinValue)
	assert.Equal(t, 5.0, gc.Weight.MaxValue)
	assert.Equal(t, 0.5, gc.Weight.MutatePower)
	assert.Equal(t, DefaultAttributeConfig(), gc.Bias)
	assert.True(t, gc.Enabled.Default)
	assert.Equal(t, 0.05, gc.Enabled.MutateRate)

	assert.Equal(t, StateRandom, cfg.Network.StateInit)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(testConfigINI), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Genome.NumInputs)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}

func TestParseConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"zero inputs": "[DefaultGenome]\nnum_inputs = 0\nnum_outputs = 1\n",
		"no outputs":  "[DefaultGenome]\nnum_inputs = 1\nnum_outputs = 0\n",
		"empty pool":  "[DefaultGenome]\nnum_inputs = 1\nnum_outputs = 1\nhidden_activation_options = # none\n",
		"bad pool":    "[DefaultGenome]\nnum_inputs = 1\nnum_outputs = 1\noutput_activation_options = softmax\n",
		"bad scheme":  "[DefaultGenome]\nnum_inputs = 1\nnum_outputs = 1\ninitial_connection = partial\n",
		"bad prob":    "[DefaultGenome]\nnum_inputs = 1\nnum_outputs = 1\nnode_add_prob = 1.5\n",
		"bad range":   "[DefaultGenome]\nnum_inputs = 1\nnum_outputs = 1\n[BiasAttribute]\nmin_value = 1\nmax_value = -1\n",
		"bad state":   "[DefaultGenome]\nnum_inputs = 1\nnum_outputs = 1\n[DefaultNetwork]\nstate_init = ones\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig), "expected a config error, got %v", err)

			var cfgErr *ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestDefaultGenomeConfig(t *testing.T) {
	gc := DefaultGenomeConfig(3, 2)
	assert.Equal(t, []Activation{Sigmoid}, gc.OutputActivations, "pools are resolved without Validate")
	require.NoError(t, gc.Validate())
	assert.True(t, gc.FeedForward)
	assert.True(t, gc.SingleStructuralMutation)
	assert.Equal(t, ConnectionUnconnected, gc.InitialConnection)
	assert.Equal(t, []Activation{Sigmoid}, gc.HiddenActivations)
	assert.Equal(t, -30.0, gc.Weight.MinValue)
	assert.Equal(t, 30.0, gc.Weight.MaxValue)

	err := DefaultGenomeConfig(0, 0).Validate()
	assert.True(t, errors.Is(err, ErrConfig), "defaults do not supply I/O counts")
}

func TestParseActivation(t *testing.T) {
	for i, name := range activationNames {
		a, err := ParseActivation(name)
		require.NoError(t, err)
		assert.Equal(t, Activation(i), a)
		assert.Equal(t, name, a.String())
	}

	a, err := ParseActivation(" Identity ")
	require.NoError(t, err)
	assert.Equal(t, Linear, a)

	_, err = ParseActivation("softmax")
	assert.Error(t, err)
}

func TestActivationApply(t *testing.T) {
	assert.Equal(t, 0.5, Sigmoid.Apply(0))
	assert.InDelta(t, 1/(1+0.006737946999085467), Sigmoid.Apply(1), 1e-12)
	assert.Equal(t, 1.0, Clamped.Apply(3))
	assert.Equal(t, 0.0, ReLU.Apply(-2))
	assert.Equal(t, 0.0, Inv.Apply(0))
	assert.Equal(t, 8.0, Cube.Apply(2))
	assert.Equal(t, 0.25, Hat.Apply(-0.75))
	assert.Panics(t, func() { Activation(200).Apply(1) })
}
