package benchmark

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvr-ai/go-trackbench/envconfig"
	"github.com/nvr-ai/go-trackbench/tracker"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Defaults used when a config leaves a field empty.
const (
	DefaultFrames    = 300
	DefaultCooldown  = 3 * time.Second
	DefaultOutputDir = "../results"
	DefaultVideo     = "../test_videos/test.mp4"
)

// Duration is a time.Duration that reads and writes as "3s" in JSON and YAML.
// Bare numbers are taken as seconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte("\"" + d.Duration.String() + "\""), nil
}

func (d *Duration) UnmarshalJSON(b []byte) (err error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case float64:
		d.Duration = time.Duration(t * float64(time.Second))
	case string:
		d.Duration, err = time.ParseDuration(t)
		if err != nil {
			return errors.Wrapf(err, "invalid duration %q", t)
		}
	default:
		return errors.Errorf("unsupported duration type %T", v)
	}

	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	switch node.ShortTag() {
	case "!!int", "!!float":
		var secs float64
		if err := node.Decode(&secs); err != nil {
			return err
		}
		d.Duration = time.Duration(secs * float64(time.Second))
		return nil
	}

	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", s)
	}
	d.Duration = parsed
	return nil
}

// TrackerConfig selects one tracker to benchmark.
type TrackerConfig struct {
	// Name is one of tracker.Names(); matching ignores case.
	Name string `json:"name" yaml:"name"`
	// Video overrides Config.Video for this tracker.
	Video string `json:"video,omitempty" yaml:"video,omitempty"`
	// Model is an optional checkpoint probed by simulated trackers.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// Seed fixes the random walk of simulated trackers; 0 seeds from the clock.
	Seed uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Config represents the overall benchmark configuration.
type Config struct {
	Video       string          `json:"video"                  yaml:"video"`
	Frames      int             `json:"frames"                 yaml:"frames"`
	OutputDir   string          `json:"output_dir"             yaml:"output_dir"`
	Cooldown    Duration        `json:"cooldown"               yaml:"cooldown"`
	CPUInterval Duration        `json:"cpu_interval,omitempty" yaml:"cpu_interval,omitempty"`
	DisableGPU  bool            `json:"disable_gpu,omitempty"  yaml:"disable_gpu,omitempty"`
	Trackers    []TrackerConfig `json:"trackers"               yaml:"trackers"`
}

// DefaultConfig returns a configuration that benchmarks every tracker on the
// synthetic test video. The cool-down honors TRACKBENCH_COOLDOWN, so a config
// file or flag applied on top still wins over the environment.
func DefaultConfig() *Config {
	trackers := make([]TrackerConfig, 0, len(tracker.Names()))
	for _, name := range tracker.Names() {
		trackers = append(trackers, TrackerConfig{Name: name})
	}

	return &Config{
		Video:     DefaultVideo,
		Frames:    DefaultFrames,
		OutputDir: DefaultOutputDir,
		Cooldown:  Duration{envconfig.Cooldown(DefaultCooldown)},
		Trackers:  trackers,
	}
}

// VideoFor returns the video path used for tc.
func (c *Config) VideoFor(tc TrackerConfig) string {
	if tc.Video != "" {
		return tc.Video
	}
	return c.Video
}

// SelectTrackers keeps only the named trackers, in the order given.
//
// Arguments:
// - names: Tracker names; matching ignores case and a trailing "++".
//
// Returns:
// - An error naming the first unknown tracker.
func (c *Config) SelectTrackers(names []string) error {
	configured := make(map[string]TrackerConfig, len(c.Trackers))
	for _, tc := range c.Trackers {
		configured[tracker.Canonical(tc.Name)] = tc
	}

	selected := make([]TrackerConfig, 0, len(names))
	for _, name := range names {
		canonical := tracker.Canonical(name)
		if canonical == "" {
			return errors.Errorf("unknown tracker %q", name)
		}
		tc, ok := configured[canonical]
		if !ok {
			tc = TrackerConfig{Name: canonical}
		}
		selected = append(selected, tc)
	}

	c.Trackers = selected
	return nil
}

// Validate checks the configuration and normalizes tracker names.
func (c *Config) Validate() error {
	if c.Frames <= 0 {
		return errors.Errorf("frames must be positive, got %d", c.Frames)
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if c.Cooldown.Duration < 0 {
		return errors.Errorf("cooldown must not be negative, got %s", c.Cooldown)
	}
	if len(c.Trackers) == 0 {
		return errors.New("no trackers configured")
	}

	seen := make(map[string]bool, len(c.Trackers))
	for i, tc := range c.Trackers {
		name := tracker.Canonical(tc.Name)
		if name == "" {
			return errors.Errorf("unknown tracker %q (want one of %s)", tc.Name, strings.Join(tracker.Names(), ", "))
		}
		if seen[name] {
			return errors.Errorf("tracker %s configured twice", name)
		}
		seen[name] = true
		c.Trackers[i].Name = name

		if c.VideoFor(c.Trackers[i]) == "" {
			return errors.Errorf("tracker %s has no video", name)
		}
	}

	return nil
}

func isYAML(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// SaveConfig saves the benchmark configuration as YAML (.yaml, .yml) or JSON.
func (c *Config) SaveConfig(filename string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(filename) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// LoadConfig loads a benchmark configuration from a YAML or JSON file.
//
// Fields missing from the file keep their DefaultConfig values.
//
// Arguments:
// - filename: Path to a .yaml, .yml or .json file.
//
// Returns:
// - *Config: The loaded configuration.
// - error: Error if the file cannot be read or parsed.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	config := DefaultConfig()
	if isYAML(filename) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", filename)
	}

	return config, nil
}
