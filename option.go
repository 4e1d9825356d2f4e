package gap

import (
	"time"
)

// AdapterOption is implemented by the adapter to accept configuration options.
type AdapterOption interface {
	SetLogger(Logger) error
	SetIOCapability(IOCapability) error
	SetLEConnectionTimeout(time.Duration) error
	SetLocalName(string) error
	SetDeviceClass(uint32) error
	SetScanParams(interval, window time.Duration, active bool) error
	SetBondStore(interface{}) error
	SetGATT(interface{}) error
	SetErrorHandler(func(error)) error
}

// An Option is a configuration function, which configures the adapter.
type Option func(AdapterOption) error

// OptLogger replaces the adapter logger.
func OptLogger(l Logger) Option {
	return func(opt AdapterOption) error {
		return opt.SetLogger(l)
	}
}

// OptIOCapability sets the local input/output capability advertised during pairing.
func OptIOCapability(c IOCapability) Option {
	return func(opt AdapterOption) error {
		return opt.SetIOCapability(c)
	}
}

// OptLEConnectionTimeout sets how long an LE Create Connection may stay outstanding.
func OptLEConnectionTimeout(d time.Duration) Option {
	return func(opt AdapterOption) error {
		return opt.SetLEConnectionTimeout(d)
	}
}

// OptLocalName sets the name written to the controller.
func OptLocalName(name string) Option {
	return func(opt AdapterOption) error {
		return opt.SetLocalName(name)
	}
}

// OptDeviceClass sets the BR/EDR class of device.
func OptDeviceClass(cod uint32) Option {
	return func(opt AdapterOption) error {
		return opt.SetDeviceClass(cod)
	}
}

// OptScanParams overrides the LE scan interval and window.
func OptScanParams(interval, window time.Duration, active bool) Option {
	return func(opt AdapterOption) error {
		return opt.SetScanParams(interval, window, active)
	}
}

// OptBondStore enables bond persistence.
func OptBondStore(s interface{}) Option {
	return func(opt AdapterOption) error {
		return opt.SetBondStore(s)
	}
}

// OptGATT supplies the GATT layer that receives ATT channels.
func OptGATT(g interface{}) Option {
	return func(opt AdapterOption) error {
		return opt.SetGATT(g)
	}
}

// OptErrorHandler sets the handler for asynchronous transport errors.
func OptErrorHandler(handler func(error)) Option {
	return func(opt AdapterOption) error {
		return opt.SetErrorHandler(handler)
	}
}
