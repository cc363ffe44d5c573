package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// memBookingStore is an in-memory booking repository whose resource locks behave like
// the advisory locks: one holder per key, keys taken in sorted order.
type memBookingStore struct {
	mu       sync.RWMutex
	items    map[string]models.Booking
	seq      int
	locks    sync.Map
	findErr  error
	writeErr error
	lockKeys [][]string
	// beforeCreate runs ahead of a failing Create, standing in for a writer that
	// committed between the scan and the insert.
	beforeCreate func(m *memBookingStore)
}

func newMemBookingStore() *memBookingStore {
	return &memBookingStore{items: make(map[string]models.Booking)}
}

func (m *memBookingStore) put(b models.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[b.ID] = b
}

func (m *memBookingStore) get(id string) (models.Booking, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.items[id]
	return b, ok
}

func (m *memBookingStore) WithResourceLocks(ctx context.Context, keys []string, fn func(ctx context.Context, exec sqlx.ExtContext) error) error {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	m.mu.Lock()
	m.lockKeys = append(m.lockKeys, sorted)
	m.mu.Unlock()
	for _, key := range sorted {
		lock, _ := m.locks.LoadOrStore(key, &sync.Mutex{})
		lock.(*sync.Mutex).Lock()
		defer lock.(*sync.Mutex).Unlock()
	}
	return fn(ctx, nil)
}

func (m *memBookingStore) FindByID(ctx context.Context, exec sqlx.ExtContext, tenantID, id string) (*models.Booking, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	b, ok := m.get(id)
	if !ok || b.TenantID != tenantID {
		return nil, sql.ErrNoRows
	}
	return &b, nil
}

func (m *memBookingStore) ListActiveOnAxis(ctx context.Context, exec sqlx.ExtContext, tenantID string, resource models.ResourceKey, recurrenceKey, excludeID string) ([]models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Booking
	for _, b := range m.items {
		if b.TenantID != tenantID || b.Status != models.BookingStatusActive || b.RecurrenceKey != recurrenceKey || b.ID == excludeID {
			continue
		}
		var owner *string
		switch resource.Kind {
		case models.ResourceClass:
			owner = &b.ClassID
		case models.ResourceTeacher:
			owner = b.TeacherID
		case models.ResourceRoom:
			owner = b.RoomID
		}
		if owner != nil && *owner == resource.ID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMinute < out[j].StartMinute })
	return out, nil
}

func (m *memBookingStore) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Booking
	for _, b := range m.items {
		if b.TenantID != filter.TenantID {
			continue
		}
		if filter.ClassID != "" && b.ClassID != filter.ClassID {
			continue
		}
		if filter.DayOfWeek != "" && (b.DayOfWeek == nil || *b.DayOfWeek != filter.DayOfWeek) {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

func (m *memBookingStore) ListActiveByClass(ctx context.Context, tenantID, classID string) ([]models.Booking, error) {
	out, _, err := m.List(ctx, models.BookingFilter{TenantID: tenantID, ClassID: classID, Status: models.BookingStatusActive})
	sort.Slice(out, func(i, j int) bool {
		if out[i].RecurrenceKey != out[j].RecurrenceKey {
			return out[i].RecurrenceKey < out[j].RecurrenceKey
		}
		return out[i].StartMinute < out[j].StartMinute
	})
	return out, err
}

func (m *memBookingStore) Create(ctx context.Context, exec sqlx.ExtContext, booking *models.Booking) error {
	if m.writeErr != nil {
		if m.beforeCreate != nil {
			m.beforeCreate(m)
		}
		return m.writeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	booking.ID = fmt.Sprintf("booking-%d", m.seq)
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	m.items[booking.ID] = *booking
	return nil
}

func (m *memBookingStore) Update(ctx context.Context, exec sqlx.ExtContext, booking *models.Booking) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[booking.ID]; !ok {
		return sql.ErrNoRows
	}
	m.items[booking.ID] = *booking
	return nil
}

func (m *memBookingStore) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, tenantID, id string, status models.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok || b.TenantID != tenantID {
		return sql.ErrNoRows
	}
	b.Status = status
	m.items[id] = b
	return nil
}

func (m *memBookingStore) UpdateExceptions(ctx context.Context, exec sqlx.ExtContext, tenantID, id string, exceptions models.BookingExceptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok || b.TenantID != tenantID {
		return sql.ErrNoRows
	}
	b.Exceptions = exceptions
	m.items[id] = b
	return nil
}

func (m *memBookingStore) Delete(ctx context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.items[id]; ok && b.TenantID == tenantID {
		delete(m.items, id)
	}
	return nil
}

// memYearStore serves both the calendar service and the booking engine.
type memYearStore struct {
	mu        sync.Mutex
	items     map[string]*models.AcademicYear
	seq       int
	refs      map[string]int
	createErr error
	deleteErr error
}

func newMemYearStore(years ...models.AcademicYear) *memYearStore {
	store := &memYearStore{items: make(map[string]*models.AcademicYear), refs: make(map[string]int)}
	for i := range years {
		y := years[i]
		store.items[y.ID] = &y
	}
	return store
}

func (m *memYearStore) List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AcademicYear
	for _, y := range m.items {
		if y.TenantID == filter.TenantID {
			out = append(out, *y)
		}
	}
	return out, len(out), nil
}

func (m *memYearStore) FindByID(ctx context.Context, tenantID, id string) (*models.AcademicYear, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	y, ok := m.items[id]
	if !ok || y.TenantID != tenantID {
		return nil, sql.ErrNoRows
	}
	cp := *y
	return &cp, nil
}

func (m *memYearStore) FindActive(ctx context.Context, tenantID string) (*models.AcademicYear, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, y := range m.items {
		if y.TenantID == tenantID && y.IsActive {
			cp := *y
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memYearStore) ExistsByName(ctx context.Context, tenantID, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, y := range m.items {
		if y.TenantID == tenantID && y.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memYearStore) Create(ctx context.Context, year *models.AcademicYear, activate bool) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	year.ID = fmt.Sprintf("year-%d", m.seq)
	if activate {
		m.deactivateOthers(year.TenantID, year.ID)
	}
	year.IsActive = activate
	cp := *year
	m.items[year.ID] = &cp
	return nil
}

func (m *memYearStore) SetActive(ctx context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	y, ok := m.items[id]
	if !ok || y.TenantID != tenantID {
		return sql.ErrNoRows
	}
	m.deactivateOthers(tenantID, id)
	y.IsActive = true
	return nil
}

func (m *memYearStore) deactivateOthers(tenantID, keepID string) {
	for id, y := range m.items {
		if y.TenantID == tenantID && id != keepID {
			y.IsActive = false
		}
	}
}

func (m *memYearStore) Archive(ctx context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	y, ok := m.items[id]
	if !ok || y.TenantID != tenantID {
		return sql.ErrNoRows
	}
	y.Status = models.AcademicYearStatusArchived
	y.IsActive = false
	return nil
}

func (m *memYearStore) CountReferences(ctx context.Context, tenantID, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refs[id], nil
}

func (m *memYearStore) Delete(ctx context.Context, tenantID, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *memYearStore) activeCount(tenantID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, y := range m.items {
		if y.TenantID == tenantID && y.IsActive {
			count++
		}
	}
	return count
}

// memReferenceStore backs the registry: Lookup for teachers/subjects/rooms and
// FindByID for classes.
type memReferenceStore struct {
	mu       sync.Mutex
	entities map[string]models.ReferenceEntity
	classes  map[string]models.Class
	lookups  int
	err      error
}

func newMemReferenceStore() *memReferenceStore {
	return &memReferenceStore{entities: make(map[string]models.ReferenceEntity), classes: make(map[string]models.Class)}
}

func (m *memReferenceStore) addEntity(e models.ReferenceEntity) {
	m.entities[string(e.Kind)+"|"+e.ID] = e
}

func (m *memReferenceStore) addClass(c models.Class) {
	m.classes[c.ID] = c
}

func (m *memReferenceStore) Lookup(ctx context.Context, kind models.ReferenceKind, tenantID, id string) (*models.ReferenceEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.entities[string(kind)+"|"+id]
	if !ok || e.TenantID != tenantID {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (m *memReferenceStore) FindByID(ctx context.Context, tenantID, id string) (*models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.classes[id]
	if !ok || c.TenantID != tenantID {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

// memCache is a CacheRepository kept in a map, serialising through the same JSON path
// the Redis repository uses.
type memCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{items: make(map[string][]byte)}
}

func (m *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	raw, ok := m.items[key]
	m.mu.Unlock()
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	return nil
}

func (m *memCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.items, key)
	}
	return nil
}

func (m *memCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
		}
	}
	return nil
}

func (m *memCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

func mustDate(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func strPtr(value string) *string {
	return &value
}
