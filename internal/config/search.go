package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/tracksearch/internal/prune"
)

// DefaultConfigPath is the path to the canonical search defaults file.
const DefaultConfigPath = "config/search.defaults.json"

// MaxExtent is the largest width or height accepted for a search region.
const MaxExtent = math.MaxInt32

// Fallback values used when a field is omitted from the JSON document.
const (
	defaultWidth       = 2048.0
	defaultHeight      = 4096.0
	defaultMaxTileSize = 64
)

// SearchConfig holds the pruning parameters for a search run. Pointer
// fields distinguish "unset" from zero so partial documents fall back to
// the Get* defaults.
type SearchConfig struct {
	// Search region, in pixels
	Width   *float64 `json:"width,omitempty"`
	Height  *float64 `json:"height,omitempty"`
	BufferX *float64 `json:"buffer_x,omitempty"`
	BufferY *float64 `json:"buffer_y,omitempty"`

	// Pyramid
	MaxTileSize *int `json:"max_tile_size,omitempty"` // power of two

	// Filtering
	Shards *int `json:"shards,omitempty"` // 0 = GOMAXPROCS

	// Output
	PlotEnabled *bool `json:"plot_enabled,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrBool(v bool) *bool          { return &v }

// EmptySearchConfig returns a SearchConfig with all fields unset.
func EmptySearchConfig() *SearchConfig {
	return &SearchConfig{}
}

// LoadSearchConfig loads a SearchConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadSearchConfig(path string) (*SearchConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySearchConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *SearchConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,    // from cmd/
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadSearchConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *SearchConfig) Validate() error {
	if c.MaxTileSize != nil {
		if n := *c.MaxTileSize; n <= 0 || n&(n-1) != 0 {
			return fmt.Errorf("max_tile_size must be a positive power of two, got %d", n)
		}
	}
	if c.Shards != nil && *c.Shards < 0 {
		return fmt.Errorf("shards must be non-negative, got %d", *c.Shards)
	}
	if err := c.Region().Validate(); err != nil {
		return fmt.Errorf("invalid search region: %w", err)
	}
	if w, h := c.GetWidth(), c.GetHeight(); w > MaxExtent || h > MaxExtent {
		return fmt.Errorf("search region %vx%v exceeds %d pixels per side", w, h, MaxExtent)
	}
	return nil
}

// GetWidth returns the width value or the default.
func (c *SearchConfig) GetWidth() float64 {
	if c.Width == nil {
		return defaultWidth
	}
	return *c.Width
}

// GetHeight returns the height value or the default.
func (c *SearchConfig) GetHeight() float64 {
	if c.Height == nil {
		return defaultHeight
	}
	return *c.Height
}

// GetBufferX returns the buffer_x value or the default.
func (c *SearchConfig) GetBufferX() float64 {
	if c.BufferX == nil {
		return 0
	}
	return *c.BufferX
}

// GetBufferY returns the buffer_y value or the default.
func (c *SearchConfig) GetBufferY() float64 {
	if c.BufferY == nil {
		return 0
	}
	return *c.BufferY
}

// GetMaxTileSize returns the max_tile_size value or the default.
func (c *SearchConfig) GetMaxTileSize() int {
	if c.MaxTileSize == nil {
		return defaultMaxTileSize
	}
	return *c.MaxTileSize
}

// GetShards returns the shards value or the default.
func (c *SearchConfig) GetShards() int {
	if c.Shards == nil {
		return 0
	}
	return *c.Shards
}

// GetPlotEnabled returns the plot_enabled value or the default.
func (c *SearchConfig) GetPlotEnabled() bool {
	if c.PlotEnabled == nil {
		return false
	}
	return *c.PlotEnabled
}

// Region builds the search region from the configured values.
func (c *SearchConfig) Region() prune.Region {
	return prune.Region{
		Width:   c.GetWidth(),
		Height:  c.GetHeight(),
		BufferX: c.GetBufferX(),
		BufferY: c.GetBufferY(),
	}
}

// Override copies every set field of o onto c. Used to layer command-line
// flags over a loaded file.
func (c *SearchConfig) Override(o *SearchConfig) {
	if o == nil {
		return
	}
	if o.Width != nil {
		c.Width = ptrFloat64(*o.Width)
	}
	if o.Height != nil {
		c.Height = ptrFloat64(*o.Height)
	}
	if o.BufferX != nil {
		c.BufferX = ptrFloat64(*o.BufferX)
	}
	if o.BufferY != nil {
		c.BufferY = ptrFloat64(*o.BufferY)
	}
	if o.MaxTileSize != nil {
		c.MaxTileSize = ptrInt(*o.MaxTileSize)
	}
	if o.Shards != nil {
		c.Shards = ptrInt(*o.Shards)
	}
	if o.PlotEnabled != nil {
		c.PlotEnabled = ptrBool(*o.PlotEnabled)
	}
}
