// Package hardware implements the ports.TransportOpener used to reach
// hardware wallets. Device drivers register themselves per profile.
package hardware

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/idwallet/lwsd/internal/core/ports"
)

// Driver opens a transport to a device of a given kind.
type Driver func(ctx context.Context) (ports.HardwareTransport, error)

// Opener dispatches Open calls to the driver registered for the profile.
// Opening a transport is serialized since devices accept only one client at
// a time.
type Opener struct {
	drivers map[string]Driver

	lock *sync.RWMutex
	open *sync.Mutex
}

func NewOpener() *Opener {
	return &Opener{
		drivers: make(map[string]Driver),
		lock:    &sync.RWMutex{},
		open:    &sync.Mutex{},
	}
}

// Register adds or replaces the driver for the given profile.
func (o *Opener) Register(profile string, driver Driver) error {
	if driver == nil {
		return ErrNilDriver
	}

	o.lock.Lock()
	defer o.lock.Unlock()

	o.drivers[profile] = driver
	return nil
}

func (o *Opener) Open(
	ctx context.Context, profile string,
) (ports.HardwareTransport, error) {
	o.lock.RLock()
	driver, ok := o.drivers[profile]
	o.lock.RUnlock()

	if !ok {
		log.Debugf("no hardware driver registered for profile %s", profile)
		return nil, ErrTransportUnavailable
	}

	o.open.Lock()
	defer o.open.Unlock()

	return driver(ctx)
}
