package capture

import (
	"fmt"
	"sort"
)

// Preset names for common camera modes.
const (
	PresetDriver = "driver" // Whatever the driver opens with
	PresetVGA    = "vga"
	Preset720p   = "720p"
	Preset1080p  = "1080p"
	PresetMock   = "mock"
)

// preset is the part of Config a preset overrides.
type preset struct {
	Backend Backend
	Width   int
	Height  int
	FPS     float64
}

var presets = map[string]preset{
	PresetDriver: {},
	PresetVGA:    {Width: 640, Height: 480, FPS: 30},
	Preset720p:   {Width: 1280, Height: 720, FPS: 30},
	// Higher resolutions slow MOG2 down more than they help measuring
	Preset1080p: {Width: 1920, Height: 1080, FPS: 15},
	PresetMock:  {Backend: BackendMock, Width: MockWidth, Height: MockHeight},
}

// PresetNames returns the available preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset returns cfg with the named preset's geometry applied.
// The device is kept.
func (c Config) ApplyPreset(name string) (Config, error) {
	p, ok := presets[name]
	if !ok {
		return c, fmt.Errorf("unknown preset %q (have %v)", name, PresetNames())
	}
	if p.Backend != "" {
		c.Backend = p.Backend
	}
	c.Width = p.Width
	c.Height = p.Height
	c.FPS = p.FPS
	return c, nil
}
