package app

import (
	"context"
	"fmt"

	"github.com/yungbote/worklet-invoker/internal/config"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
	"github.com/yungbote/worklet-invoker/internal/repos"
)

type Repos struct {
	Organization repos.OrganizationRepo
	Model        repos.ModelRepo
	Invocation   repos.InvocationRepo
}

func wireRepos(log *logger.Logger, cfg *config.Config) (Repos, error) {
	log.Info("Wiring repos...")
	orgs := repos.NewOrganizationRepo(log)
	r := Repos{
		Organization: orgs,
		Model:        repos.NewModelRepo(log, repos.RefreshOrganizations(orgs)),
		Invocation:   repos.NewInvocationRepo(log),
	}
	if cfg.SeedSampleData {
		if err := repos.SeedSampleData(context.Background(), r.Organization, r.Model); err != nil {
			return Repos{}, fmt.Errorf("seed sample data: %w", err)
		}
		log.Info("sample data seeded")
	}
	return r, nil
}
