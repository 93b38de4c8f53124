package neat

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// Config stores the configuration parameters for genomes and compiled networks.
// It is built once per run and treated as immutable afterwards.
type Config struct {
	Genome  GenomeConfig
	Network NetworkConfig
}

// AttributeConfig holds the init and mutation parameters of a numeric attribute.
type AttributeConfig struct {
	InitMean    float64 `ini:"init_mean"`
	InitStdev   float64 `ini:"init_stdev"`
	MinValue    float64 `ini:"min_value"`
	MaxValue    float64 `ini:"max_value"`
	ReplaceRate float64 `ini:"replace_rate"`
	MutateRate  float64 `ini:"mutate_rate"`  // Probability of an offset perturbation
	MutatePower float64 `ini:"mutate_power"` // Scale of the uniform offset
}

// BoolAttributeConfig holds the init and mutation parameters of a boolean attribute.
type BoolAttributeConfig struct {
	Default    bool    `ini:"default"`
	MutateRate float64 `ini:"mutate_rate"` // Flip probability
}

// GenomeConfig holds parameters specific to the structure and mutation of genomes.
type GenomeConfig struct {
	// --- Top-level Genome parameters ---
	NumInputs                        int     `ini:"num_inputs"`
	NumOutputs                       int     `ini:"num_outputs"`
	FeedForward                      bool    `ini:"feed_forward"` // If true, recurrent connections are disallowed
	InitialConnection                string  `ini:"initial_connection"`
	CompatibilityExcessCoefficient   float64 `ini:"compatibility_excess_coefficient"`
	CompatibilityDisjointCoefficient float64 `ini:"compatibility_disjoint_coefficient"`
	CompatibilityWeightCoefficient   float64 `ini:"compatibility_weight_coefficient"`
	ConnAddProb                      float64 `ini:"conn_add_prob"`
	ConnDeleteProb                   float64 `ini:"conn_delete_prob"`
	NodeAddProb                      float64 `ini:"node_add_prob"`
	NodeDeleteProb                   float64 `ini:"node_delete_prob"`
	SingleStructuralMutation         bool    `ini:"single_structural_mutation"`

	HiddenActivationOptions []string `ini:"hidden_activation_options" delim:" "`
	OutputActivationOptions []string `ini:"output_activation_options" delim:" "`

	// --- Gene attributes (own sections) ---
	Bias    AttributeConfig     `ini:"-"`
	Mult    AttributeConfig     `ini:"-"`
	Weight  AttributeConfig     `ini:"-"`
	Enabled BoolAttributeConfig `ini:"-"`

	// --- Derived by Validate ---
	HiddenActivations []Activation `ini:"-"`
	OutputActivations []Activation `ini:"-"`
}

// NetworkConfig holds parameters of compiled networks.
type NetworkConfig struct {
	StateInit string `ini:"state_init"` // "zero" or "random"
}

// Initial connection schemes.
const (
	ConnectionUnconnected = "unconnected"
	ConnectionFull        = "full"
)

// Network state initialization modes.
const (
	StateZero   = "zero"
	StateRandom = "random"
)

// DefaultAttributeConfig returns the attribute defaults: values in [-30, 30],
// seeded from N(0, 1), offset by at most 0.5.
func DefaultAttributeConfig() AttributeConfig {
	return AttributeConfig{
		InitMean:    0,
		InitStdev:   1,
		MinValue:    -30,
		MaxValue:    30,
		ReplaceRate: 0.1,
		MutateRate:  0.6,
		MutatePower: 0.5,
	}
}

// DefaultGenomeConfig returns a GenomeConfig with library defaults and its
// activation pools resolved. The input and output counts are not checked.
func DefaultGenomeConfig(inputs, outputs int) *GenomeConfig {
	return &GenomeConfig{
		NumInputs:                        inputs,
		NumOutputs:                       outputs,
		FeedForward:                      true,
		InitialConnection:                ConnectionUnconnected,
		CompatibilityExcessCoefficient:   1.0,
		CompatibilityDisjointCoefficient: 1.0,
		CompatibilityWeightCoefficient:   0.5,
		ConnAddProb:                      0.5,
		ConnDeleteProb:                   0.5,
		NodeAddProb:                      0.2,
		NodeDeleteProb:                   0.2,
		SingleStructuralMutation:         true,
		HiddenActivationOptions:          []string{"sigmoid"},
		OutputActivationOptions:          []string{"sigmoid"},
		Bias:                             DefaultAttributeConfig(),
		Mult:                             DefaultAttributeConfig(),
		Weight:                           DefaultAttributeConfig(),
		Enabled:                          BoolAttributeConfig{Default: true, MutateRate: 0.01},
		HiddenActivations:                []Activation{Sigmoid},
		OutputActivations:                []Activation{Sigmoid},
	}
}

// DefaultConfig returns the library defaults for both sections.
func DefaultConfig(inputs, outputs int) *Config {
	return &Config{
		Genome:  *DefaultGenomeConfig(inputs, outputs),
		Network: NetworkConfig{StateInit: StateZero},
	}
}

// LoadConfig loads configuration parameters from an INI file. Keys absent
// from the file keep their DefaultConfig values.
func LoadConfig(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config file '%s'", filePath)
	}
	return parseConfig(cfg)
}

// ParseConfig loads configuration parameters from raw INI data.
func ParseConfig(data []byte) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	return parseConfig(cfg)
}

func parseConfig(cfg *ini.File) (*Config, error) {
	config := DefaultConfig(0, 0)

	sections := []struct {
		name   string
		target interface{}
	}{
		{"DefaultGenome", &config.Genome},
		{"BiasAttribute", &config.Genome.Bias},
		{"MultAttribute", &config.Genome.Mult},
		{"WeightAttribute", &config.Genome.Weight},
		{"EnabledAttribute", &config.Genome.Enabled},
		{"DefaultNetwork", &config.Network},
	}
	for _, s := range sections {
		if !cfg.HasSection(s.name) {
			continue
		}
		if err := cfg.Section(s.name).MapTo(s.target); err != nil {
			return nil, errors.Wrapf(err, "failed to map [%s] section", s.name)
		}
	}

	config.Genome.InitialConnection = cleanIniString(config.Genome.InitialConnection)
	config.Network.StateInit = cleanIniString(config.Network.StateInit)
	config.Genome.HiddenActivationOptions = cleanIniList(config.Genome.HiddenActivationOptions)
	config.Genome.OutputActivationOptions = cleanIniList(config.Genome.OutputActivationOptions)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks both sections.
func (c *Config) Validate() error {
	if err := c.Genome.Validate(); err != nil {
		return err
	}
	return c.Network.Validate()
}

// Validate fills in defaults, resolves the activation pools and checks the
// genome parameters. It writes to gc, so call it once before genomes are
// created; NewGenome and FromSnapshot only check.
func (gc *GenomeConfig) Validate() error {
	if gc.InitialConnection == "" {
		gc.InitialConnection = ConnectionUnconnected
	}
	var err error
	if gc.HiddenActivations, err = parseActivations("hidden_activation_options", gc.HiddenActivationOptions); err != nil {
		return err
	}
	if gc.OutputActivations, err = parseActivations("output_activation_options", gc.OutputActivationOptions); err != nil {
		return err
	}
	return gc.check()
}

// check reports the first invalid genome parameter without modifying gc.
func (gc *GenomeConfig) check() error {
	if gc.NumInputs <= 0 {
		return configErrorf("num_inputs", "must be positive")
	}
	if gc.NumOutputs <= 0 {
		return configErrorf("num_outputs", "must be positive")
	}
	if gc.InitialConnection != ConnectionUnconnected && gc.InitialConnection != ConnectionFull {
		return configErrorf("initial_connection", "invalid type '%s'", gc.InitialConnection)
	}

	probs := map[string]float64{
		"conn_add_prob":    gc.ConnAddProb,
		"conn_delete_prob": gc.ConnDeleteProb,
		"node_add_prob":    gc.NodeAddProb,
		"node_delete_prob": gc.NodeDeleteProb,
	}
	for name, p := range probs {
		if p < 0 || p > 1 {
			return configErrorf(name, "must be between 0 and 1")
		}
	}
	coeffs := map[string]float64{
		"compatibility_excess_coefficient":   gc.CompatibilityExcessCoefficient,
		"compatibility_disjoint_coefficient": gc.CompatibilityDisjointCoefficient,
		"compatibility_weight_coefficient":   gc.CompatibilityWeightCoefficient,
	}
	for name, c := range coeffs {
		if c < 0 {
			return configErrorf(name, "cannot be negative")
		}
	}

	attrs := map[string]*AttributeConfig{"bias": &gc.Bias, "mult": &gc.Mult, "weight": &gc.Weight}
	for name, a := range attrs {
		if err := a.validate(name); err != nil {
			return err
		}
	}
	if gc.Enabled.MutateRate < 0 || gc.Enabled.MutateRate > 1 {
		return configErrorf("enabled.mutate_rate", "must be between 0 and 1")
	}

	if len(gc.HiddenActivations) == 0 {
		return configErrorf("hidden_activation_options", "activation pool is not resolved, call Validate")
	}
	if len(gc.OutputActivations) == 0 {
		return configErrorf("output_activation_options", "activation pool is not resolved, call Validate")
	}
	return nil
}

func (a *AttributeConfig) validate(name string) error {
	if a.MaxValue < a.MinValue {
		return configErrorf(name+".max_value", "cannot be less than min_value")
	}
	if a.InitStdev < 0 {
		return configErrorf(name+".init_stdev", "cannot be negative")
	}
	if a.ReplaceRate < 0 || a.MutateRate < 0 || a.ReplaceRate+a.MutateRate > 1 {
		return configErrorf(name, "replace_rate + mutate_rate must lie in [0, 1]")
	}
	return nil
}

// Validate checks the network parameters.
func (nc *NetworkConfig) Validate() error {
	if nc.StateInit == "" {
		nc.StateInit = StateZero
	}
	if nc.StateInit != StateZero && nc.StateInit != StateRandom {
		return configErrorf("state_init", "must be '%s' or '%s'", StateZero, StateRandom)
	}
	return nil
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// cleanIniList trims list elements and drops everything from an inline comment on.
func cleanIniList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		cut := strings.IndexAny(v, "#;") != -1
		if v = cleanIniString(v); v != "" {
			out = append(out, v)
		}
		if cut {
			break
		}
	}
	return out
}
