// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sweep

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/huandu/go-clone"

	"github.com/daviszhen/flashsize/pkg/layout"
	"github.com/daviszhen/flashsize/pkg/util"
)

// Value is one parameter value of a sweep file. TOML strings, integers
// and floats are all accepted.
type Value string

func (v *Value) UnmarshalTOML(data any) error {
	switch x := data.(type) {
	case string:
		*v = Value(x)
	case int64:
		*v = Value(strconv.FormatInt(x, 10))
	case float64:
		*v = Value(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		return fmt.Errorf("unsupported sweep value %v (%T)", data, data)
	}
	return nil
}

// Definition describes a sweep: a base parameter set plus the axes whose
// cartesian product is evaluated.
type Definition struct {
	Name    string             `toml:"name"`
	Workers int                `toml:"workers"`
	Base    map[string]Value   `toml:"base"`
	Axes    map[string][]Value `toml:"axes"`
}

type setter func(raw *layout.RawParams, v string)

var fieldSetters = map[string]setter{
	"prototype":         func(raw *layout.RawParams, v string) { raw.Prototype = v },
	"memmap_start":      func(raw *layout.RawParams, v string) { raw.MemmapStart = v },
	"flash_type":        func(raw *layout.RawParams, v string) { raw.FlashType = v },
	"interface":         func(raw *layout.RawParams, v string) { raw.Interface = v },
	"block_size":        func(raw *layout.RawParams, v string) { raw.BlockSize = v },
	"dies":              func(raw *layout.RawParams, v string) { raw.Dies = v },
	"pslc_super_blocks": func(raw *layout.RawParams, v string) { raw.PSLCSuperBlocks = v },
	"data_size":         func(raw *layout.RawParams, v string) { raw.DataSize = v },
	"meta_size":         func(raw *layout.RawParams, v string) { raw.MetaSize = v },
	"op_ratio":          func(raw *layout.RawParams, v string) { raw.MetaOP = v },
}

// Fields lists the sweepable fields in expansion order.
var Fields = []string{
	"prototype",
	"memmap_start",
	"flash_type",
	"interface",
	"block_size",
	"dies",
	"pslc_super_blocks",
	"data_size",
	"meta_size",
	"op_ratio",
}

func LoadDefinition(path string) (*Definition, error) {
	def := &Definition{}
	md, err := toml.DecodeFile(path, def)
	if err != nil {
		return nil, fmt.Errorf("sweep file %s: %w", path, err)
	}
	if err = checkUndecoded(md); err != nil {
		return nil, fmt.Errorf("sweep file %s: %w", path, err)
	}
	return def, def.Validate()
}

func DecodeDefinition(data string) (*Definition, error) {
	def := &Definition{}
	md, err := toml.Decode(data, def)
	if err != nil {
		return nil, err
	}
	if err = checkUndecoded(md); err != nil {
		return nil, err
	}
	return def, def.Validate()
}

func checkUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, key := range undecoded {
		keys[i] = key.String()
	}
	return fmt.Errorf("unknown keys %s", strings.Join(keys, ", "))
}

func (def *Definition) Validate() error {
	if def.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	for key := range def.Base {
		if _, ok := fieldSetters[key]; !ok {
			return fmt.Errorf("unknown base field %q", key)
		}
	}
	for key, values := range def.Axes {
		if _, ok := fieldSetters[key]; !ok {
			return fmt.Errorf("unknown axis %q", key)
		}
		if len(values) == 0 {
			return fmt.Errorf("axis %q has no values", key)
		}
	}
	return nil
}

// Point is one parameter set of a sweep.
type Point struct {
	Index  int
	Params *layout.RawParams
	// Labels holds the axis values that produced this point.
	Labels []util.Pair[string, string]
}

func (pt *Point) Label() string {
	if len(pt.Labels) == 0 {
		return "base"
	}
	parts := make([]string, len(pt.Labels))
	for i, l := range pt.Labels {
		parts[i] = l.First + "=" + l.Second
	}
	return strings.Join(parts, " ")
}

// Expand returns the cartesian product of the axes applied to the base.
// Axes vary in Fields order, the last field fastest.
func (def *Definition) Expand() ([]*Point, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	base := &layout.RawParams{}
	for _, field := range Fields {
		if v, ok := def.Base[field]; ok {
			fieldSetters[field](base, string(v))
		}
	}

	points := []*Point{{Params: base}}
	for _, field := range Fields {
		values, ok := def.Axes[field]
		if !ok {
			continue
		}
		next := make([]*Point, 0, len(points)*len(values))
		for _, pt := range points {
			for _, v := range values {
				// params and labels of sibling points never share memory
				np := clone.Clone(pt).(*Point)
				fieldSetters[field](np.Params, string(v))
				np.Labels = append(np.Labels, util.Pair[string, string]{First: field, Second: string(v)})
				next = append(next, np)
			}
		}
		points = next
	}
	for i, pt := range points {
		pt.Index = i
	}
	return points, nil
}
