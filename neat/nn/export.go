package nn

import (
	"bytes"
	"go/format"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/baldhumanity/neatc/neat"
)

// activationSource holds the Go expression of each activation in terms of x.
// It must stay in line with neat.Activation.Apply.
var activationSource = map[neat.Activation]string{
	neat.Linear:   "x",
	neat.Clamped:  "math.Max(-1, math.Min(x, 1))",
	neat.Sigmoid:  "1 / (1 + math.Exp(-5*x))",
	neat.Tanh:     "math.Tanh(x)",
	neat.ReLU:     "math.Max(0, x)",
	neat.Gaussian: "math.Exp(-x * x / 2)",
	neat.Absolute: "math.Abs(x)",
	neat.Sine:     "math.Sin(x)",
	neat.Cosine:   "math.Cos(x)",
	neat.Inv:      "inv(x)",
	neat.Log:      "math.Log(math.Max(1e-9, x))",
	neat.Exp:      "math.Exp(math.Max(-60, math.Min(x, 60)))",
	neat.Hat:      "math.Max(0, 1-math.Abs(x))",
	neat.Square:   "x * x",
	neat.Cube:     "x * x * x",
}

var sourceTemplate = template.Must(template.New("network").Parse(`// Code generated by neatc from genome {{.GenomeID}}. DO NOT EDIT.

package {{.Package}}

import "math"

var _ = math.Abs

type {{.Name}}Input struct {
	slot   int
	weight float64
}

type {{.Name}}Step struct {
	inputs []{{.Name}}Input
	mult   float64
	bias   float64
	target int
}

var {{.Name}}Activations = [...]uint8{ {{range .Activations}}{{.}}, {{end}} }

var {{.Name}}Steps = []{{.Name}}Step{
{{- range .Steps}}
	{inputs: []{{$.Name}}Input{ {{range .Inputs}}{ {{.Slot}}, {{printf "%v" .Weight}} }, {{end}} }, mult: {{printf "%v" .Mult}}, bias: {{printf "%v" .Bias}}, target: {{.Target}}},
{{- end}}
}

var {{.Name}}Values [{{.Slots}}]float64

func {{.Name}}Activate(a uint8, x float64) float64 {
	switch a {
{{- range $id, $expr := .Table}}
	case {{$id}}:
		return {{$expr}}
{{- end}}
	}
	return x
}

{{if .UsesInv}}func {{.Name}}Inv(x float64) float64 {
	if x == 0 {
		return 0
	}
	return 1 / x
}

{{end -}}
// {{.Name}}Run evaluates the network of genome {{.GenomeID}}. State persists between calls.
func {{.Name}}Run(input [{{.Inputs}}]float64) [{{.Outputs}}]float64 {
	copy({{.Name}}Values[:], input[:])
	for _, s := range {{.Name}}Steps {
		sum := 0.0
		for _, in := range s.inputs {
			sum += {{.Name}}Values[in.slot] * in.weight
		}
		{{.Name}}Values[s.target] = {{.Name}}Activate({{.Name}}Activations[s.target], sum*s.mult+s.bias)
	}
	var out [{{.Outputs}}]float64
	copy(out[:], {{.Name}}Values[{{.OutputStart}}:])
	return out
}
`))

type sourceData struct {
	Package     string
	GenomeID    string
	Name        string
	Activations []uint8
	Steps       []Step
	Slots       int
	Inputs      int
	Outputs     int
	OutputStart int
	Table       map[uint8]string
	UsesInv     bool
}

// WriteSource renders net as a self-contained Go file named after its genome
// id in dir, using the directory name as package name. It returns the path
// of the written file.
func WriteSource(dir string, net *Network) (string, error) {
	path := filepath.Join(dir, net.GenomeID+".go")
	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "create source file '%s'", path)
	}
	defer file.Close()

	if err := Source(file, packageName(dir), net); err != nil {
		return "", err
	}
	neat.Logger().Debug("network source written", "genome", net.GenomeID, "path", path)
	return path, file.Close()
}

// Source writes the gofmt-ed Go source of net in package pkg to w. The
// generated identifiers are prefixed with a name derived from the genome id
// so several networks can share a package.
func Source(w io.Writer, pkg string, net *Network) error {
	data := sourceData{
		Package:     pkg,
		GenomeID:    net.GenomeID,
		Name:        identifier(net.GenomeID),
		Activations: make([]uint8, len(net.activations)),
		Steps:       net.steps,
		Slots:       len(net.values),
		Inputs:      net.numInputs,
		Outputs:     net.numOutputs,
		OutputStart: len(net.values) - net.numOutputs,
		Table:       make(map[uint8]string),
	}
	for i, a := range net.activations {
		data.Activations[i] = uint8(a)
		expr, ok := activationSource[a]
		if !ok {
			return errors.Errorf("no source for activation %s", a)
		}
		data.Table[uint8(a)] = strings.ReplaceAll(expr, "inv(", data.Name+"Inv(")
		data.UsesInv = data.UsesInv || a == neat.Inv
	}

	var buf bytes.Buffer
	if err := sourceTemplate.Execute(&buf, data); err != nil {
		return errors.Wrap(err, "render network source")
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return errors.Wrap(err, "format network source")
	}
	_, err = w.Write(src)
	return err
}

// identifier maps a genome id onto an exported Go identifier.
func identifier(id string) string {
	var b strings.Builder
	b.WriteString("Genome")
	for _, r := range id {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func packageName(dir string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(filepath.Base(dir)) {
		if r >= 'a' && r <= 'z' || b.Len() > 0 && r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "networks"
	}
	return b.String()
}
