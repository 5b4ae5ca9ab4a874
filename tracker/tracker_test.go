package tracker

import (
	"image"
	"testing"

	"github.com/nvr-ai/go-trackbench/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

const (
	frameWidth  = 640
	frameHeight = 480
)

func newFrame(t *testing.T) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSize(frameHeight, frameWidth, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })
	return frame
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"CSRT", "OSTrack", "SiamRPN++", "DiMP"}, Names())
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		trk, err := New(name, WithSeed(1))
		require.NoError(t, err, name)
		assert.Equal(t, name, trk.Name())
		require.NoError(t, trk.Close())
	}

	trk, err := New("siamrpn", WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, SiamRPNName, trk.Name())

	_, err = New("mosse")
	assert.Error(t, err)

	assert.Equal(t, DiMPName, Canonical(" dimp "))
	assert.Equal(t, "", Canonical("kcf"))
}

func TestUpdateBeforeInit(t *testing.T) {
	frame := newFrame(t)

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			trk, err := New(name, WithSeed(7))
			require.NoError(t, err)
			defer trk.Close()

			var (
				ok  bool
				box common.BoundingBox
			)
			assert.NotPanics(t, func() {
				ok, box = trk.Update(frame)
			})
			assert.False(t, ok)
			assert.True(t, box.IsZero())
		})
	}
}

func simulated(seed uint64) []Tracker {
	return []Tracker{
		NewOSTrack(WithSeed(seed)),
		NewSiamRPN(WithSeed(seed)),
		NewDiMP(WithSeed(seed)),
	}
}

func TestSimulatedStaysInsideFrame(t *testing.T) {
	frame := newFrame(t)

	boxes := []common.BoundingBox{
		common.CenterBox(frameWidth, frameHeight),
		common.NewBoundingBox(0, 0, 40, 30),
		common.NewBoundingBox(frameWidth-40, frameHeight-30, 40, 30),
		common.NewBoundingBox(0, 0, frameWidth, frameHeight),
	}

	for _, start := range boxes {
		for _, trk := range simulated(42) {
			t.Run(trk.Name()+start.String(), func(t *testing.T) {
				require.True(t, trk.Init(frame, start))

				for i := 0; i < 300; i++ {
					ok, box := trk.Update(frame)
					require.True(t, ok)
					assert.Equal(t, start.Width, box.Width)
					assert.Equal(t, start.Height, box.Height)
					assert.GreaterOrEqual(t, box.X, float32(0))
					assert.GreaterOrEqual(t, box.Y, float32(0))
					assert.LessOrEqual(t, box.X, float32(frameWidth)-box.Width)
					assert.LessOrEqual(t, box.Y, float32(frameHeight)-box.Height)
				}
			})
		}
	}
}

func TestSimulatedIsDeterministicForSeed(t *testing.T) {
	frame := newFrame(t)
	start := common.CenterBox(frameWidth, frameHeight)

	a, b := simulated(99), simulated(99)
	for i := range a {
		a[i].Init(frame, start)
		b[i].Init(frame, start)
		for step := 0; step < 20; step++ {
			_, boxA := a[i].Update(frame)
			_, boxB := b[i].Update(frame)
			require.Equal(t, boxA, boxB, "%s step %d", a[i].Name(), step)
		}
	}
}

func TestSimulatedDrifts(t *testing.T) {
	frame := newFrame(t)
	start := common.CenterBox(frameWidth, frameHeight)

	trk := NewSiamRPN(WithSeed(3))
	trk.Init(frame, start)

	moved := false
	for i := 0; i < 10; i++ {
		_, box := trk.Update(frame)
		if box != start {
			moved = true
		}
	}
	assert.True(t, moved)
}

func TestSimulatedInitArtifacts(t *testing.T) {
	frame := newFrame(t)
	start := common.CenterBox(frameWidth, frameHeight)

	ost := NewOSTrack(WithSeed(1))
	ost.Init(frame, start)
	assert.Equal(t, image.Pt(320, 240), ost.TemplateSize())
	assert.Nil(t, ost.Model())

	siam := NewSiamRPN(WithSeed(1))
	siam.Init(frame, start)
	require.NotNil(t, siam.Exemplar())
	assert.Equal(t, image.Rect(0, 0, 127, 127), siam.Exemplar().Bounds())

	dimp := NewDiMP(WithSeed(1))
	dimp.Init(frame, start)
	require.NotNil(t, dimp.Features())
	assert.Equal(t, []int{256, 18, 18}, []int(dimp.Features().Shape()))
}

func TestSimulatedRejectsEmptyFrame(t *testing.T) {
	frame := newFrame(t)
	empty := gocv.NewMat()
	defer empty.Close()

	trk := NewDiMP(WithSeed(1))
	start := common.CenterBox(frameWidth, frameHeight)
	trk.Init(frame, start)

	ok, box := trk.Update(empty)
	assert.False(t, ok)
	assert.Equal(t, start, box)
}

func TestMissingCheckpointFallsBackToSimulation(t *testing.T) {
	trk := NewOSTrack(WithSeed(1), WithModel("testdata/does-not-exist.onnx"))
	assert.Nil(t, trk.Model())

	frame := newFrame(t)
	trk.Init(frame, common.CenterBox(frameWidth, frameHeight))
	ok, _ := trk.Update(frame)
	assert.True(t, ok)
}

func TestSearchRegion(t *testing.T) {
	frame := newFrame(t)

	rect := searchRegion(frame, common.NewBoundingBox(300, 220, 40, 40), 4)
	assert.Equal(t, image.Rect(240, 160, 400, 320), rect)

	// Clipped at the frame corner.
	rect = searchRegion(frame, common.NewBoundingBox(0, 0, 40, 20), 4)
	assert.Equal(t, image.Rect(0, 0, 100, 90), rect)
}
