package tracker

import (
	"log/slog"
	"os"

	"github.com/nvr-ai/go-trackbench/envconfig"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// TensorInfo describes one model input or output.
type TensorInfo struct {
	Name  string
	Shape []int64
}

// ModelInfo is what a checkpoint probe learned about an ONNX model.
type ModelInfo struct {
	Path    string
	Inputs  []TensorInfo
	Outputs []TensorInfo
}

// InitRuntime loads ONNX Runtime once for the process.
//
// ONNXRUNTIME_SHARED_LIBRARY_PATH selects the shared library; otherwise the
// platform default is used.
func InitRuntime() error {
	if ort.IsInitialized() {
		return nil
	}
	if lib := envconfig.ONNXRuntimeLibrary(); lib != "" {
		ort.SetSharedLibraryPath(lib)
	}
	return errors.Wrap(ort.InitializeEnvironment(), "failed to initialize onnxruntime")
}

// RuntimeVersion returns the loaded ONNX Runtime version.
func RuntimeVersion() (string, error) {
	if err := InitRuntime(); err != nil {
		return "", err
	}
	return ort.GetVersion(), nil
}

// ProbeModel reads the input and output signature of an ONNX checkpoint.
//
// Arguments:
// - path: Path to the .onnx file.
//
// Returns:
// - The model signature, or an error if the file or runtime is unavailable.
func ProbeModel(path string) (*ModelInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "model checkpoint")
	}
	if err := InitRuntime(); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read model signature %s", path)
	}

	return &ModelInfo{
		Path:    path,
		Inputs:  tensorInfos(inputs),
		Outputs: tensorInfos(outputs),
	}, nil
}

func tensorInfos(infos []ort.InputOutputInfo) []TensorInfo {
	out := make([]TensorInfo, 0, len(infos))
	for _, info := range infos {
		out = append(out, TensorInfo{Name: info.Name, Shape: []int64(info.Dimensions)})
	}
	return out
}

// loadCheckpoint probes a simulated tracker's checkpoint when one is configured.
// Simulation stays in use either way; a failed probe only logs a warning.
func loadCheckpoint(name, path string) *ModelInfo {
	if path == "" {
		return nil
	}

	info, err := ProbeModel(path)
	if err != nil {
		slog.Warn("could not load model, using simulated tracking", "tracker", name, "error", err)
		return nil
	}

	slog.Info("model checkpoint probed, tracking remains simulated",
		"tracker", name, "path", path, "inputs", len(info.Inputs), "outputs", len(info.Outputs))
	return info
}
