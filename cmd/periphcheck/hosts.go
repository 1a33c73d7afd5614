package main

import (
	"os"

	"codeberg.org/mutker/periphcheck/internal/catalog"
	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/gpu"
	"codeberg.org/mutker/periphcheck/internal/host"
	"codeberg.org/mutker/periphcheck/internal/lease"
	"codeberg.org/mutker/periphcheck/internal/logger"
	"codeberg.org/mutker/periphcheck/internal/sampling"
)

// binding is a diagnostic wired to the capability and clock that drive it
// on this host.
type binding struct {
	provider lease.Provider
	clock    sampling.Clock
	close    func()
}

func bind(name string, onInterrupt func(), log logger.Logger) (binding, error) {
	switch name {
	case "cpu":
		ticker := sampling.NewFrameTicker()
		return binding{provider: lease.Exclusive(host.NewCompute("")), clock: ticker, close: ticker.Close}, nil
	case "gpu":
		ticker, err := sampling.NewTicker(cfg.Interval)
		if err != nil {
			return binding{}, err
		}
		provider := gpu.NewProvider(gpu.NVML(), gpu.WithLogger(log))
		return binding{provider: lease.Exclusive(provider), clock: ticker, close: ticker.Close}, nil
	case "keyboard":
		terminal := host.NewTerminal(os.Stdin, host.OnInterrupt(onInterrupt), host.WithTerminalLogger(log))
		return binding{provider: lease.Exclusive(terminal), clock: terminal, close: func() {}}, nil
	}

	if _, err := catalog.Lookup(name); err != nil {
		return binding{}, err
	}
	return binding{}, errors.New().WithData(errors.ErrNotImplemented, struct {
		Diagnostic string
		Reason     string
	}{
		Diagnostic: name,
		Reason:     "no host capability for this diagnostic",
	})
}

// providers lists every capability source the list command enumerates.
func providers(log logger.Logger) []lease.Provider {
	return []lease.Provider{
		host.NewCompute(""),
		gpu.NewProvider(gpu.NVML(), gpu.WithLogger(log)),
		host.NewTerminal(os.Stdin, host.WithTerminalLogger(log)),
	}
}
