package headless

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/previewbridge/internal/bridge/protocol"
)

// Box is a layout entry: origin and size in CSS pixels
type Box struct {
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Rect converts the box into a DOMRect
func (b Box) Rect() protocol.Rect {
	return protocol.NewRect(b.X, b.Y, b.Width, b.Height)
}

// Layout maps identity attribute values to boxes. There is no layout engine,
// so this is where headless pages get their geometry from.
type Layout map[string]Box

// ParseLayout decodes a YAML layout document:
//
//	hero:
//	  x: 0
//	  y: 0
//	  width: 1280
//	  height: 480
func ParseLayout(data []byte) (Layout, error) {
	layout := Layout{}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	for id, box := range layout {
		if box.Width < 0 || box.Height < 0 {
			return nil, fmt.Errorf("parse layout: %q has negative size", id)
		}
	}
	return layout, nil
}

// LoadLayout reads a YAML layout file
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	return ParseLayout(data)
}
