package graph

import (
	"context"
	"errors"

	"github.com/yungbote/worklet-invoker/internal/domain"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
	"github.com/yungbote/worklet-invoker/internal/repos"
)

// Resolver is the root for both Query and Mutation.
type Resolver struct {
	log    *logger.Logger
	orgs   repos.OrganizationRepo
	models repos.ModelRepo
}

type modelResolver struct {
	m domain.Model
}

func (r *modelResolver) ID() int32    { return int32(r.m.ID) }
func (r *modelResolver) Name() string { return r.m.Name }

type organizationResolver struct {
	o *domain.Organization
}

func (r *organizationResolver) ID() string   { return r.o.ID }
func (r *organizationResolver) Name() string { return r.o.Name }

func (r *organizationResolver) Models() []*modelResolver {
	out := make([]*modelResolver, 0, len(r.o.Models))
	for _, m := range r.o.Models {
		out = append(out, &modelResolver{m: m})
	}
	return out
}

func (r *Resolver) Organizations(ctx context.Context) []*organizationResolver {
	orgs := r.orgs.GetAll(ctx)
	out := make([]*organizationResolver, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, &organizationResolver{o: o})
	}
	return out
}

func (r *Resolver) Organization(ctx context.Context, args struct{ ID string }) (*organizationResolver, error) {
	o, err := r.orgs.GetByID(ctx, args.ID)
	if errors.Is(err, repos.ErrOrganizationNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &organizationResolver{o: o}, nil
}

func (r *Resolver) Models(ctx context.Context) []*modelResolver {
	models := r.models.GetAll(ctx)
	out := make([]*modelResolver, 0, len(models))
	for _, m := range models {
		out = append(out, &modelResolver{m: *m})
	}
	return out
}

func (r *Resolver) Model(ctx context.Context, args struct{ ID int32 }) (*modelResolver, error) {
	m, err := r.models.GetByID(ctx, int64(args.ID))
	if errors.Is(err, repos.ErrModelNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &modelResolver{m: *m}, nil
}

func (r *Resolver) CreateOrganization(ctx context.Context, args struct{ Name string }) *organizationResolver {
	return &organizationResolver{o: r.orgs.Create(ctx, args.Name)}
}

func (r *Resolver) CreateModel(ctx context.Context, args struct{ Name string }) *modelResolver {
	return &modelResolver{m: *r.models.Create(ctx, args.Name)}
}

type membershipArgs struct {
	OrganizationID string
	ModelID        int32
}

// AddModelToOrganization reports false when either side does not exist.
func (r *Resolver) AddModelToOrganization(ctx context.Context, args membershipArgs) (bool, error) {
	m, err := r.models.GetByID(ctx, int64(args.ModelID))
	if errors.Is(err, repos.ErrModelNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = r.orgs.AddModelToOrganization(ctx, args.OrganizationID, *m)
	if errors.Is(err, repos.ErrOrganizationNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Resolver) RemoveModelFromOrganization(ctx context.Context, args membershipArgs) (bool, error) {
	removed, err := r.orgs.RemoveModelFromOrganization(ctx, args.OrganizationID, int64(args.ModelID))
	if errors.Is(err, repos.ErrOrganizationNotFound) {
		return false, nil
	}
	if err != nil {
		r.log.Warn("remove model from organization failed",
			"organization_id", args.OrganizationID,
			"model_id", args.ModelID,
			"error", err,
		)
		return false, err
	}
	return removed, nil
}
