package bookings

import (
	"sync"

	domainvehicle "autofleet/internal/domain/vehicle"
)

// vehicleLocks serializes the availability check and the subsequent write
// per vehicle. Without it two concurrent creations for the same vehicle and
// overlapping dates can both pass the check and both persist.
type vehicleLocks struct {
	mu    sync.Mutex
	locks map[domainvehicle.VehicleID]*sync.Mutex
}

// acquire locks the vehicle's mutex and returns the matching unlock.
func (l *vehicleLocks) acquire(id domainvehicle.VehicleID) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[domainvehicle.VehicleID]*sync.Mutex)
	}
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
