package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainbooking "autofleet/internal/domain/booking"
	domainlocation "autofleet/internal/domain/location"
	domainuser "autofleet/internal/domain/user"
	domainvehicle "autofleet/internal/domain/vehicle"
)

// BookingRepository is an in-memory implementation used by tests and for
// running without a database.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items: make(map[domainbooking.BookingID]*domainbooking.Booking),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return booking, nil
}

func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.Version++
	r.items[booking.ID] = booking
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainbooking.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *BookingRepository) List(ctx context.Context, params domainbooking.ListParams) ([]*domainbooking.Booking, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]*domainbooking.Booking, 0, len(r.items))
	for _, booking := range r.items {
		if params.UserID != "" && booking.UserID != params.UserID {
			continue
		}
		if params.Status != "" && booking.Status != params.Status {
			continue
		}
		matches = append(matches, booking)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	total := len(matches)
	return paginate(matches, params.Offset, params.Limit), total, nil
}

func (r *BookingRepository) FindHolds(ctx context.Context, vehicleID domainvehicle.VehicleID, statuses []domainbooking.Status, exclude domainbooking.BookingID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var holds []*domainbooking.Booking
	for _, booking := range r.items {
		if booking.VehicleID != vehicleID || booking.ID == exclude {
			continue
		}
		if !statusIncluded(booking.Status, statuses) {
			continue
		}
		holds = append(holds, booking)
	}
	return holds, nil
}

func statusIncluded(status domainbooking.Status, set []domainbooking.Status) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

// VehicleRepository keeps the fleet in a map guarded by a RWMutex.
type VehicleRepository struct {
	mu    sync.RWMutex
	items map[domainvehicle.VehicleID]*domainvehicle.Vehicle
}

func NewVehicleRepository() *VehicleRepository {
	return &VehicleRepository{
		items: make(map[domainvehicle.VehicleID]*domainvehicle.Vehicle),
	}
}

func (r *VehicleRepository) ByID(ctx context.Context, id domainvehicle.VehicleID) (*domainvehicle.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	vehicle, ok := r.items[id]
	if !ok {
		return nil, domainvehicle.ErrNotFound
	}
	return vehicle, nil
}

func (r *VehicleRepository) Save(ctx context.Context, vehicle *domainvehicle.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[vehicle.ID] = vehicle
	return nil
}

func (r *VehicleRepository) Delete(ctx context.Context, id domainvehicle.VehicleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainvehicle.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *VehicleRepository) List(ctx context.Context, params domainvehicle.ListParams) ([]*domainvehicle.Vehicle, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]*domainvehicle.Vehicle, 0, len(r.items))
	for _, vehicle := range r.items {
		if params.Category != "" && !strings.EqualFold(vehicle.Category, params.Category) {
			continue
		}
		if params.Label != "" && vehicle.Label != params.Label {
			continue
		}
		if params.Query != "" && !vehicleMatches(vehicle, params.Query) {
			continue
		}
		matches = append(matches, vehicle)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Make == matches[j].Make {
			return matches[i].Model < matches[j].Model
		}
		return matches[i].Make < matches[j].Make
	})
	total := len(matches)
	return paginate(matches, params.Offset, params.Limit), total, nil
}

func vehicleMatches(vehicle *domainvehicle.Vehicle, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(vehicle.Make), q) ||
		strings.Contains(strings.ToLower(vehicle.Model), q) ||
		strings.Contains(strings.ToLower(vehicle.Plate), q)
}

// LocationRepository stores rental branches in memory.
type LocationRepository struct {
	mu    sync.RWMutex
	items map[domainlocation.LocationID]*domainlocation.Location
}

func NewLocationRepository() *LocationRepository {
	return &LocationRepository{
		items: make(map[domainlocation.LocationID]*domainlocation.Location),
	}
}

func (r *LocationRepository) ByID(ctx context.Context, id domainlocation.LocationID) (*domainlocation.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loc, ok := r.items[id]
	if !ok {
		return nil, domainlocation.ErrNotFound
	}
	return loc, nil
}

func (r *LocationRepository) Save(ctx context.Context, loc *domainlocation.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[loc.ID] = loc
	return nil
}

func (r *LocationRepository) Delete(ctx context.Context, id domainlocation.LocationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainlocation.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *LocationRepository) List(ctx context.Context) ([]*domainlocation.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainlocation.Location, 0, len(r.items))
	for _, loc := range r.items {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UserRepository keeps accounts in memory with the same email uniqueness
// rule the mongo implementation enforces through an index.
type UserRepository struct {
	mu    sync.RWMutex
	items map[domainuser.ID]*domainuser.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		items: make(map[domainuser.ID]*domainuser.User),
	}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.items[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return account, nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, account := range r.items {
		if strings.EqualFold(account.Email, email) {
			return account, nil
		}
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) Save(ctx context.Context, account *domainuser.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.ID != account.ID && strings.EqualFold(existing.Email, account.Email) {
			return domainuser.ErrEmailAlreadyUsed
		}
	}
	r.items[account.ID] = account
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id domainuser.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainuser.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *UserRepository) List(ctx context.Context, params domainuser.ListParams) ([]*domainuser.User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]*domainuser.User, 0, len(r.items))
	for _, account := range r.items {
		if params.Query != "" {
			q := strings.ToLower(params.Query)
			if !strings.Contains(strings.ToLower(account.Email), q) &&
				!strings.Contains(strings.ToLower(account.Name), q) {
				continue
			}
		}
		matches = append(matches, account)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Email < matches[j].Email })
	total := len(matches)
	return paginate(matches, params.Offset, params.Limit), total, nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var (
	_ domainbooking.Repository  = (*BookingRepository)(nil)
	_ domainvehicle.Repository  = (*VehicleRepository)(nil)
	_ domainlocation.Repository = (*LocationRepository)(nil)
	_ domainuser.Repository     = (*UserRepository)(nil)
)
