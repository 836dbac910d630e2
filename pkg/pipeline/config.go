package pipeline

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/sankeyflow/pkg/errors"
)

// LoadOptionsFile reads layout options from a TOML file. Keys the file does
// not set keep their zero value so defaults still apply.
//
//	width = 1200
//	height = 600
//	align = "left"
//	start = "start"
//	end = "end"
//	spacing_targets = ["Dropped"]
//
//	[fixed_values]
//	start = 100.0
func LoadOptionsFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Options{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return Options{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return ParseOptions(data)
}

// ParseOptions decodes TOML layout options.
func ParseOptions(data []byte) (Options, error) {
	var opts Options
	md, err := toml.Decode(string(data), &opts)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Options{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	return opts, nil
}

// Merge overlays the non-zero fields of override onto o and returns the
// result. Command-line flags use it to take precedence over a config file.
func (o Options) Merge(override Options) Options {
	if override.Width != 0 {
		o.Width = override.Width
	}
	if override.Height != 0 {
		o.Height = override.Height
	}
	if override.NodeWidth != 0 {
		o.NodeWidth = override.NodeWidth
	}
	if override.NodePadding != 0 {
		o.NodePadding = override.NodePadding
	}
	if override.Iterations != 0 {
		o.Iterations = override.Iterations
	}
	if override.Decay != 0 {
		o.Decay = override.Decay
	}
	if override.MinValue != 0 {
		o.MinValue = override.MinValue
	}
	if override.Align != "" {
		o.Align = override.Align
	}
	if override.NodeOrder != "" {
		o.NodeOrder = override.NodeOrder
	}
	if override.LinkOrder != "" {
		o.LinkOrder = override.LinkOrder
	}
	if override.Start != "" {
		o.Start = override.Start
	}
	if override.End != "" {
		o.End = override.End
	}
	if override.TerminalColumnFraction != 0 {
		o.TerminalColumnFraction = override.TerminalColumnFraction
	}
	if override.TerminalOffset != 0 {
		o.TerminalOffset = override.TerminalOffset
	}
	if len(override.SpacingTargets) > 0 {
		o.SpacingTargets = override.SpacingTargets
	}
	if len(override.FixedValues) > 0 {
		merged := make(map[string]float64, len(o.FixedValues)+len(override.FixedValues))
		for id, v := range o.FixedValues {
			merged[id] = v
		}
		for id, v := range override.FixedValues {
			merged[id] = v
		}
		o.FixedValues = merged
	}
	if override.Tolerance != 0 {
		o.Tolerance = override.Tolerance
	}
	o.Strict = o.Strict || override.Strict
	o.Refresh = o.Refresh || override.Refresh
	if override.Logger != nil {
		o.Logger = override.Logger
	}
	return o
}
