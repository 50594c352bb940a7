package repos

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yungbote/worklet-invoker/internal/domain"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
)

var ErrModelNotFound = errors.New("model not found")

type ModelRepo interface {
	Create(ctx context.Context, name string) *domain.Model
	GetByID(ctx context.Context, id int64) (*domain.Model, error)
	GetAll(ctx context.Context) []*domain.Model
	Update(ctx context.Context, id int64, name string) (*domain.Model, error)
	Delete(ctx context.Context, id int64) error
}

// ModelUpdateHook runs after a successful Update, outside the repo lock.
type ModelUpdateHook func(ctx context.Context, m domain.Model)

type modelRepo struct {
	mu       sync.RWMutex
	models   map[int64]*domain.Model
	order    []int64
	nextID   int64
	onUpdate []ModelUpdateHook
	log      *logger.Logger
}

func NewModelRepo(baseLog *logger.Logger, onUpdate ...ModelUpdateHook) ModelRepo {
	repoLog := baseLog.With("repo", "ModelRepo")
	return &modelRepo{
		models:   make(map[int64]*domain.Model),
		nextID:   1,
		onUpdate: onUpdate,
		log:      repoLog,
	}
}

func (r *modelRepo) Create(ctx context.Context, name string) *domain.Model {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := &domain.Model{ID: r.nextID, Name: name}
	r.models[m.ID] = m
	r.order = append(r.order, m.ID)
	r.nextID++

	r.log.Debug("model created", "model_id", m.ID, "name", name)
	cp := *m
	return &cp
}

func (r *modelRepo) GetByID(ctx context.Context, id int64) (*domain.Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[id]
	if !ok {
		return nil, fmt.Errorf("model %d: %w", id, ErrModelNotFound)
	}
	cp := *m
	return &cp, nil
}

func (r *modelRepo) GetAll(ctx context.Context) []*domain.Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Model, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.models[id]
		out = append(out, &cp)
	}
	return out
}

func (r *modelRepo) Update(ctx context.Context, id int64, name string) (*domain.Model, error) {
	r.mu.Lock()
	m, ok := r.models[id]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("model %d: %w", id, ErrModelNotFound)
	}
	m.Name = name
	cp := *m
	r.mu.Unlock()

	for _, hook := range r.onUpdate {
		hook(ctx, cp)
	}
	return &cp, nil
}

func (r *modelRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.models[id]; !ok {
		return fmt.Errorf("model %d: %w", id, ErrModelNotFound)
	}
	delete(r.models, id)
	r.order = removeID(r.order, id)
	return nil
}

func removeID[T comparable](ids []T, id T) []T {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// RefreshOrganizations keeps the model copies held by orgs in step with
// renames.
func RefreshOrganizations(orgs OrganizationRepo) ModelUpdateHook {
	return func(ctx context.Context, m domain.Model) {
		orgs.RefreshModel(ctx, m)
	}
}
