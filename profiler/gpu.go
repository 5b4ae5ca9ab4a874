package profiler

import (
	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/pkg/errors"
)

// GPUReader reads the current state of one GPU.
type GPUReader interface {
	Read() (GPUStats, error)
	Close() error
}

type noGPU struct{}

// NoGPU returns a reader that always reports zero usage.
func NoGPU() GPUReader {
	return noGPU{}
}

func (noGPU) Read() (GPUStats, error) { return GPUStats{}, nil }

func (noGPU) Close() error { return nil }

// nvmlReader reads the first NVIDIA device through NVML.
type nvmlReader struct {
	device nvml.Device
}

// OpenNVML initializes NVML and binds the first device.
//
// Returns an error when the NVML library is missing, fails to initialize, or
// reports no devices. The caller owns the reader and must Close it.
func OpenNVML() (GPUReader, error) {
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return nil, errors.Errorf("nvml init: %s", nvml.ErrorString(ret))
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		nvml.Shutdown()
		return nil, errors.Errorf("nvml device count: %s", nvml.ErrorString(ret))
	}
	if count == 0 {
		nvml.Shutdown()
		return nil, errors.New("nvml: no GPU devices found")
	}

	device, ret := nvml.DeviceGetHandleByIndex(0)
	if ret != nvml.SUCCESS {
		nvml.Shutdown()
		return nil, errors.Errorf("nvml device handle: %s", nvml.ErrorString(ret))
	}

	return &nvmlReader{device: device}, nil
}

func (r *nvmlReader) Read() (GPUStats, error) {
	util, ret := r.device.GetUtilizationRates()
	if ret != nvml.SUCCESS {
		return GPUStats{}, errors.Errorf("nvml utilization: %s", nvml.ErrorString(ret))
	}

	mem, ret := r.device.GetMemoryInfo()
	if ret != nvml.SUCCESS {
		return GPUStats{}, errors.Errorf("nvml memory: %s", nvml.ErrorString(ret))
	}

	temp, ret := r.device.GetTemperature(nvml.TEMPERATURE_GPU)
	if ret != nvml.SUCCESS {
		return GPUStats{}, errors.Errorf("nvml temperature: %s", nvml.ErrorString(ret))
	}

	return GPUStats{
		Util:          float64(util.Gpu),
		MemoryUsedMB:  float64(mem.Used) / bytesPerMB,
		MemoryTotalMB: float64(mem.Total) / bytesPerMB,
		TempC:         float64(temp),
	}, nil
}

func (r *nvmlReader) Close() error {
	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		return errors.Errorf("nvml shutdown: %s", nvml.ErrorString(ret))
	}
	return nil
}
