package domain

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// ShapePatch is a partial update of the scene sent by host-side tooling
// (HTTP, MCP). Nil fields are left untouched.
type ShapePatch struct {
	Position   *Vec2    `json:"position,omitempty" mapstructure:"position"`
	Size       *float64 `json:"size,omitempty" mapstructure:"size"`
	Color      *Color   `json:"color,omitempty" mapstructure:"color"`
	Background *Color   `json:"background,omitempty" mapstructure:"background"`
}

// DecodeShapePatch decodes a loosely typed payload into a ShapePatch.
// Colours and positions may be objects ({"x":1,"y":2}) or arrays ([1,2],
// [r,g,b] or [r,g,b,a]); unknown keys are rejected.
func DecodeShapePatch(input map[string]any) (ShapePatch, error) {
	var p ShapePatch
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       DecodeHook,
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(input); err != nil {
		return p, fmt.Errorf("invalid shape patch: %w", err)
	}
	return p, nil
}

var (
	colorType = reflect.TypeOf(Color{})
	vec2Type  = reflect.TypeOf(Vec2{})
)

// DecodeHook is a mapstructure hook that accepts arrays for Color and Vec2.
func DecodeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Slice || (to != colorType && to != vec2Type) {
		return data, nil
	}
	nums, err := toFloats(data)
	if err != nil {
		return nil, err
	}
	if to == colorType {
		return ColorFromSlice(nums)
	}
	if len(nums) != 2 {
		return nil, fmt.Errorf("position needs 2 components, got %d", len(nums))
	}
	return Vec2{X: nums[0], Y: nums[1]}, nil
}

func toFloats(data any) ([]float64, error) {
	v := reflect.ValueOf(data)
	out := make([]float64, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		switch n := v.Index(i).Interface().(type) {
		case float64:
			out = append(out, n)
		case float32:
			out = append(out, float64(n))
		case int:
			out = append(out, float64(n))
		case int64:
			out = append(out, float64(n))
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		default:
			return nil, fmt.Errorf("component %d is %T, want number", i+1, n)
		}
	}
	return out, nil
}

// Apply writes the patch into the scene.
func (p ShapePatch) Apply(s *Scene) {
	if p.Background != nil {
		s.SetBackgroundColor(*p.Background)
	}
	shape := s.Shape()
	if shape == nil {
		return
	}
	if p.Position != nil {
		shape.SetPosition(p.Position.X, p.Position.Y)
	}
	if p.Size != nil {
		shape.SetSize(*p.Size)
	}
	if p.Color != nil {
		shape.SetColor(*p.Color)
	}
}
