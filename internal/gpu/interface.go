package gpu

// Library is the slice of NVML the provider needs. Init and Shutdown are
// reference counted by implementations.
type Library interface {
	Init() error
	Shutdown() error
	DeviceCount() (int, error)
	DeviceByIndex(index int) (Device, error)
	DeviceByUUID(uuid string) (Device, error)
}

// Device is one NVML device handle.
type Device interface {
	UUID() (string, error)
	Name() (string, error)
	Temperature() (Temperature, error)
	Utilization() (Utilization, error)
	PowerUsage() (PowerUsage, error)
}

type (
	// Temperature is the core temperature in degrees Celsius.
	Temperature int
	// PowerUsage is the board power draw in watts.
	PowerUsage int

	Utilization struct {
		GPU, Memory int
	}
)
