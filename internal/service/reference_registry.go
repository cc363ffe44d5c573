package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/tenant"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type referenceLookup interface {
	Lookup(ctx context.Context, kind models.ReferenceKind, tenantID, id string) (*models.ReferenceEntity, error)
}

type classFinder interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.Class, error)
}

// ReferenceRegistry resolves classes, teachers, subjects and rooms inside one tenant.
// It is read-only; hits are cached per tenant.
type ReferenceRegistry struct {
	refs    referenceLookup
	classes classFinder
	cache   *CacheService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewReferenceRegistry builds a registry. cache may be nil.
func NewReferenceRegistry(refs referenceLookup, classes classFinder, cache *CacheService, ttl time.Duration, logger *zap.Logger) *ReferenceRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceRegistry{refs: refs, classes: classes, cache: cache, ttl: ttl, logger: logger}
}

func referenceCacheKey(tenantID string, kind models.ReferenceKind, id string) string {
	return fmt.Sprintf("ref:%s:%s:%s", tenantID, kind, id)
}

// Resolve returns the entity of the given kind or NOT_FOUND. An entity owned by
// another tenant is reported exactly like a missing one.
func (r *ReferenceRegistry) Resolve(ctx context.Context, tenantID string, kind models.ReferenceKind, id string) (*models.ReferenceEntity, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	notFound := fmt.Sprintf("%s not found", strings.ReplaceAll(string(kind), "_", " "))
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, notFound)
	}

	key := referenceCacheKey(tenantID, kind, id)
	var cached models.ReferenceEntity
	if hit, _ := r.cache.Get(ctx, key, &cached); hit && cached.TenantID == tenantID {
		return &cached, nil
	}

	entity, err := r.refs.Lookup(ctx, kind, tenantID, id)
	if err != nil {
		return nil, notFoundOr(err, notFound, fmt.Sprintf("failed to resolve %s", kind))
	}
	_ = r.cache.Set(ctx, key, entity, r.ttl)
	return entity, nil
}

// Class returns the full class record, which carries the academic year it belongs to.
func (r *ReferenceRegistry) Class(ctx context.Context, tenantID, id string) (*models.Class, error) {
	if err := tenant.Validate(tenantID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	key := referenceCacheKey(tenantID, models.ReferenceClass, id) + ":full"
	var cached models.Class
	if hit, _ := r.cache.Get(ctx, key, &cached); hit && cached.TenantID == tenantID {
		return &cached, nil
	}

	class, err := r.classes.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundOr(err, "class not found", "failed to resolve class")
	}
	_ = r.cache.Set(ctx, key, class, r.ttl)
	return class, nil
}

// Teacher resolves a teacher reference.
func (r *ReferenceRegistry) Teacher(ctx context.Context, tenantID, id string) (*models.ReferenceEntity, error) {
	return r.Resolve(ctx, tenantID, models.ReferenceTeacher, id)
}

// Subject resolves a subject reference.
func (r *ReferenceRegistry) Subject(ctx context.Context, tenantID, id string) (*models.ReferenceEntity, error) {
	return r.Resolve(ctx, tenantID, models.ReferenceSubject, id)
}

// Room resolves a room reference.
func (r *ReferenceRegistry) Room(ctx context.Context, tenantID, id string) (*models.ReferenceEntity, error) {
	return r.Resolve(ctx, tenantID, models.ReferenceRoom, id)
}

// Forget drops cached entries for an entity after it changes.
func (r *ReferenceRegistry) Forget(ctx context.Context, tenantID string, kind models.ReferenceKind, id string) {
	key := referenceCacheKey(tenantID, kind, id)
	if err := r.cache.Forget(ctx, key, key+":full"); err != nil {
		r.logger.Warn("reference cache eviction failed", zap.String("key", key), zap.Error(err))
	}
}
