package neat

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Activation identifies one of the closed set of node activation functions.
// It is a plain value so compiled networks can store and serialize it directly.
type Activation uint8

const (
	Linear Activation = iota
	Clamped
	Sigmoid
	Tanh
	ReLU
	Gaussian
	Absolute
	Sine
	Cosine
	Inv
	Log
	Exp
	Hat
	Square
	Cube
)

var activationNames = [...]string{
	Linear:   "linear",
	Clamped:  "clamped",
	Sigmoid:  "sigmoid",
	Tanh:     "tanh",
	ReLU:     "relu",
	Gaussian: "gaussian",
	Absolute: "absolute",
	Sine:     "sine",
	Cosine:   "cosine",
	Inv:      "inv",
	Log:      "log",
	Exp:      "exp",
	Hat:      "hat",
	Square:   "square",
	Cube:     "cube",
}

// activationAliases maps alternative config spellings onto canonical names.
var activationAliases = map[string]Activation{
	"identity": Linear,
	"abs":      Absolute,
}

// String returns the config name of the activation.
func (a Activation) String() string {
	if int(a) < len(activationNames) {
		return activationNames[a]
	}
	return "unknown"
}

// ParseActivation resolves a config name (case-insensitive) to an Activation.
func ParseActivation(name string) (Activation, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range activationNames {
		if n == name {
			return Activation(i), nil
		}
	}
	if a, ok := activationAliases[name]; ok {
		return a, nil
	}
	return 0, errors.Errorf("unknown activation function: %s", name)
}

// Apply evaluates the activation function at x.
func (a Activation) Apply(x float64) float64 {
	switch a {
	case Linear:
		return x
	case Clamped:
		return clamp(x, -1.0, 1.0)
	case Sigmoid:
		return 1.0 / (1.0 + math.Exp(-5.0*x))
	case Tanh:
		return math.Tanh(x)
	case ReLU:
		return math.Max(0, x)
	case Gaussian:
		return math.Exp(-x * x / 2.0)
	case Absolute:
		return math.Abs(x)
	case Sine:
		return math.Sin(x)
	case Cosine:
		return math.Cos(x)
	case Inv:
		if x == 0.0 {
			return 0.0
		}
		return 1.0 / x
	case Log:
		// log(max(eps, x)) keeps the output finite for non-positive input
		return math.Log(math.Max(1e-9, x))
	case Exp:
		return math.Exp(clamp(x, -60.0, 60.0))
	case Hat:
		return math.Max(0.0, 1.0-math.Abs(x))
	case Square:
		return x * x
	case Cube:
		return x * x * x
	}
	panic("neat: unknown activation " + a.String())
}

// parseActivations resolves a list of names, rejecting empty pools.
func parseActivations(field string, names []string) ([]Activation, error) {
	if len(names) == 0 {
		return nil, configErrorf(field, "must list at least one activation function")
	}
	pool := make([]Activation, 0, len(names))
	for _, name := range names {
		a, err := ParseActivation(name)
		if err != nil {
			return nil, configErrorf(field, "%v", err)
		}
		pool = append(pool, a)
	}
	return pool, nil
}
