package gpu

import (
	"sync"

	"codeberg.org/mutker/periphcheck/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const milliWattsToWatts = 1000

// NVML returns the Library backed by the system NVML.
func NVML() Library {
	return &nvmlWrapper{}
}

type nvmlWrapper struct {
	mu   sync.Mutex
	refs int
}

func (w *nvmlWrapper) Init() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.refs > 0 {
		w.refs++
		return nil
	}

	if ret := nvml.Init(); !IsNVMLSuccess(ret) {
		return errors.New().Wrap(ErrInitFailed, newNVMLError(ret))
	}
	w.refs = 1

	return nil
}

func (w *nvmlWrapper) Shutdown() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.refs == 0 {
		return nil
	}

	w.refs--
	if w.refs > 0 {
		return nil
	}

	if ret := nvml.Shutdown(); !IsNVMLSuccess(ret) {
		return errors.New().Wrap(ErrShutdownFailed, newNVMLError(ret))
	}

	return nil
}

func (w *nvmlWrapper) initialized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refs > 0
}

func (w *nvmlWrapper) DeviceCount() (int, error) {
	errFactory := errors.New()
	if !w.initialized() {
		return 0, errFactory.New(ErrNotInitialized)
	}

	count, ret := nvml.DeviceGetCount()
	if !IsNVMLSuccess(ret) {
		return 0, errFactory.Wrap(ErrDeviceCountFailed, newNVMLError(ret))
	}

	return count, nil
}

func (w *nvmlWrapper) DeviceByIndex(index int) (Device, error) {
	errFactory := errors.New()
	if !w.initialized() {
		return nil, errFactory.New(ErrNotInitialized)
	}

	device, ret := nvml.DeviceGetHandleByIndex(index)
	if !IsNVMLSuccess(ret) {
		return nil, errFactory.Wrap(ErrDeviceNotFound, newNVMLError(ret))
	}

	return nvmlDevice{device: device}, nil
}

func (w *nvmlWrapper) DeviceByUUID(uuid string) (Device, error) {
	errFactory := errors.New()
	if !w.initialized() {
		return nil, errFactory.New(ErrNotInitialized)
	}

	device, ret := nvml.DeviceGetHandleByUUID(uuid)
	if !IsNVMLSuccess(ret) {
		return nil, errFactory.Wrap(ErrDeviceNotFound, newNVMLError(ret)).WithData(uuid)
	}

	return nvmlDevice{device: device}, nil
}

type nvmlDevice struct {
	device nvml.Device
}

func (d nvmlDevice) UUID() (string, error) {
	uuid, ret := d.device.GetUUID()
	if !IsNVMLSuccess(ret) {
		return "", errors.New().Wrap(ErrDeviceUUIDFailed, newNVMLError(ret))
	}

	return uuid, nil
}

func (d nvmlDevice) Name() (string, error) {
	name, ret := d.device.GetName()
	if !IsNVMLSuccess(ret) {
		return "", errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	return name, nil
}

func (d nvmlDevice) Temperature() (Temperature, error) {
	temp, ret := d.device.GetTemperature(nvml.TEMPERATURE_GPU)
	if !IsNVMLSuccess(ret) {
		return 0, errors.New().Wrap(ErrTemperatureReadFailed, newNVMLError(ret))
	}

	return Temperature(temp), nil
}

func (d nvmlDevice) Utilization() (Utilization, error) {
	rates, ret := d.device.GetUtilizationRates()
	if !IsNVMLSuccess(ret) {
		return Utilization{}, errors.New().Wrap(ErrUtilizationFailed, newNVMLError(ret))
	}

	return Utilization{GPU: int(rates.Gpu), Memory: int(rates.Memory)}, nil
}

func (d nvmlDevice) PowerUsage() (PowerUsage, error) {
	usage, ret := d.device.GetPowerUsage()
	if !IsNVMLSuccess(ret) {
		return 0, errors.New().Wrap(ErrPowerUsageFailed, newNVMLError(ret))
	}

	return PowerUsage(usage / milliWattsToWatts), nil
}
