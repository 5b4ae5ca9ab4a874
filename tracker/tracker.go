// Package tracker adapts single-object trackers to one Init/Update contract.
//
// CSRT runs the real OpenCV tracker. OSTrack, SiamRPN++ and DiMP are
// simulations: they build placeholder tensors of the size the real networks
// would produce and move the box by a Gaussian random walk. They never look at
// pixel content to pick the drift.
package tracker

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/nvr-ai/go-trackbench/common"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Tracker names, in benchmark order.
const (
	CSRTName    = "CSRT"
	OSTrackName = "OSTrack"
	SiamRPNName = "SiamRPN++"
	DiMPName    = "DiMP"
)

// Tracker follows one object across frames.
type Tracker interface {
	// Init starts tracking box on frame and reports whether it succeeded.
	Init(frame gocv.Mat, box common.BoundingBox) bool
	// Update locates the object on frame. Before a successful Init it returns
	// false and the last known (possibly zero) box.
	Update(frame gocv.Mat) (bool, common.BoundingBox)
	// Name returns the display name used in result files.
	Name() string
	// Close releases native resources.
	Close() error
}

// Names returns every supported tracker in benchmark order.
func Names() []string {
	return []string{CSRTName, OSTrackName, SiamRPNName, DiMPName}
}

type options struct {
	rng       *rand.Rand
	modelPath string
}

// Option configures a tracker.
type Option func(*options)

// WithRand sets the random source of simulated trackers.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithSeed seeds the random source of simulated trackers.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed)))
}

// WithModel points a simulated tracker at a model checkpoint to probe.
func WithModel(path string) Option {
	return func(o *options) {
		o.modelPath = path
	}
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		seed := uint64(time.Now().UnixNano())
		o.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return o
}

// New creates a tracker by name. Matching ignores case and a trailing "++".
//
// Arguments:
// - name: One of Names().
// - opts: Options applied to simulated trackers; CSRT ignores them.
//
// Returns:
// - The tracker, or an error for an unknown name.
func New(name string, opts ...Option) (Tracker, error) {
	switch canonical(name) {
	case canonical(CSRTName):
		return NewCSRT(), nil
	case canonical(OSTrackName):
		return NewOSTrack(opts...), nil
	case canonical(SiamRPNName):
		return NewSiamRPN(opts...), nil
	case canonical(DiMPName):
		return NewDiMP(opts...), nil
	}
	return nil, errors.Errorf("unknown tracker %q (want one of %s)", name, strings.Join(Names(), ", "))
}

// Canonical returns the registered name for name, or "" when unknown.
func Canonical(name string) string {
	for _, n := range Names() {
		if canonical(n) == canonical(name) {
			return n
		}
	}
	return ""
}

func canonical(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), "++")
}
