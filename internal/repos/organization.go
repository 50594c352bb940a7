package repos

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/yungbote/worklet-invoker/internal/domain"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
)

var ErrOrganizationNotFound = errors.New("organization not found")

type OrganizationRepo interface {
	Create(ctx context.Context, name string) *domain.Organization
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	GetAll(ctx context.Context) []*domain.Organization
	Update(ctx context.Context, id string, name string) (*domain.Organization, error)
	Delete(ctx context.Context, id string) error
	AddModelToOrganization(ctx context.Context, orgID string, model domain.Model) error
	RemoveModelFromOrganization(ctx context.Context, orgID string, modelID int64) (bool, error)
	// RefreshModel rewrites every attached copy of model and returns how many
	// organizations held it.
	RefreshModel(ctx context.Context, model domain.Model) int
}

type organizationRepo struct {
	mu     sync.RWMutex
	orgs   map[string]*domain.Organization
	order  []string
	nextID int64
	log    *logger.Logger
}

func NewOrganizationRepo(baseLog *logger.Logger) OrganizationRepo {
	repoLog := baseLog.With("repo", "OrganizationRepo")
	return &organizationRepo{
		orgs:   make(map[string]*domain.Organization),
		nextID: 1,
		log:    repoLog,
	}
}

func (r *organizationRepo) Create(ctx context.Context, name string) *domain.Organization {
	r.mu.Lock()
	defer r.mu.Unlock()

	org := &domain.Organization{
		ID:     strconv.FormatInt(r.nextID, 10),
		Name:   name,
		Models: []domain.Model{},
	}
	r.orgs[org.ID] = org
	r.order = append(r.order, org.ID)
	r.nextID++

	r.log.Debug("organization created", "organization_id", org.ID, "name", name)
	return org.Clone()
}

func (r *organizationRepo) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, ok := r.orgs[id]
	if !ok {
		return nil, fmt.Errorf("organization %q: %w", id, ErrOrganizationNotFound)
	}
	return org.Clone(), nil
}

func (r *organizationRepo) GetAll(ctx context.Context) []*domain.Organization {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Organization, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.orgs[id].Clone())
	}
	return out
}

func (r *organizationRepo) Update(ctx context.Context, id string, name string) (*domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	org, ok := r.orgs[id]
	if !ok {
		return nil, fmt.Errorf("organization %q: %w", id, ErrOrganizationNotFound)
	}
	org.Name = name
	return org.Clone(), nil
}

func (r *organizationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orgs[id]; !ok {
		return fmt.Errorf("organization %q: %w", id, ErrOrganizationNotFound)
	}
	delete(r.orgs, id)
	r.order = removeID(r.order, id)
	return nil
}

func (r *organizationRepo) AddModelToOrganization(ctx context.Context, orgID string, model domain.Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	org, ok := r.orgs[orgID]
	if !ok {
		return fmt.Errorf("organization %q: %w", orgID, ErrOrganizationNotFound)
	}
	org.AddModel(model)
	return nil
}

func (r *organizationRepo) RemoveModelFromOrganization(ctx context.Context, orgID string, modelID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	org, ok := r.orgs[orgID]
	if !ok {
		return false, fmt.Errorf("organization %q: %w", orgID, ErrOrganizationNotFound)
	}
	return org.RemoveModel(modelID), nil
}

func (r *organizationRepo) RefreshModel(ctx context.Context, model domain.Model) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, id := range r.order {
		if r.orgs[id].RefreshModel(model) {
			n++
		}
	}
	if n > 0 {
		r.log.Debug("refreshed attached model", "model_id", model.ID, "organizations", n)
	}
	return n
}
