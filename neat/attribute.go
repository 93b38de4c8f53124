package neat

import "math/rand"

// NumericAttribute is a mutable scalar gene parameter bounded by its config's
// [MinValue, MaxValue]. Copying the struct copies the value and shares the config.
type NumericAttribute struct {
	Value  float64
	config *AttributeConfig
}

// NewNumericAttribute samples an initial value from N(InitMean, InitStdev), clamped.
func NewNumericAttribute(config *AttributeConfig) NumericAttribute {
	a := NumericAttribute{config: config}
	a.Value = a.sample()
	return a
}

func (a *NumericAttribute) sample() float64 {
	return clamp(gaussian(a.config.InitMean, a.config.InitStdev), a.config.MinValue, a.config.MaxValue)
}

// Mutate either replaces the value with a fresh sample (ReplaceRate), offsets it by
// a uniform perturbation scaled by MutatePower (MutateRate), or leaves it unchanged.
func (a *NumericAttribute) Mutate() {
	if a.config == nil {
		return
	}
	r := rand.Float64()
	if r < a.config.ReplaceRate {
		a.Value = a.sample()
		return
	}
	if r < a.config.ReplaceRate+a.config.MutateRate {
		a.Value = clamp(a.Value+uniform()*a.config.MutatePower, a.config.MinValue, a.config.MaxValue)
	}
}

// Config returns the shared attribute configuration.
func (a NumericAttribute) Config() *AttributeConfig { return a.config }

// BoolAttribute is a flag gene parameter flipped with a fixed probability.
type BoolAttribute struct {
	Value  bool
	config *BoolAttributeConfig
}

// NewBoolAttribute initializes the flag to the configured default.
func NewBoolAttribute(config *BoolAttributeConfig) BoolAttribute {
	return BoolAttribute{Value: config.Default, config: config}
}

// Mutate flips the flag with probability MutateRate.
func (a *BoolAttribute) Mutate() {
	if a.config == nil {
		return
	}
	if rand.Float64() < a.config.MutateRate {
		a.Value = !a.Value
	}
}
