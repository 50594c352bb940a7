package repos

import (
	"context"
	"fmt"
)

// SeedSampleData loads the demo catalog: two organizations and three models.
func SeedSampleData(ctx context.Context, orgs OrganizationRepo, models ModelRepo) error {
	baseten := orgs.Create(ctx, "Baseten")
	strawberry := orgs.Create(ctx, "Strawberry")

	gpt := models.Create(ctx, "GPT-3.5")
	bert := models.Create(ctx, "BERT")
	resnet := models.Create(ctx, "ResNet")

	links := []struct {
		orgID string
		model string
		id    int64
	}{
		{baseten.ID, gpt.Name, gpt.ID},
		{baseten.ID, bert.Name, bert.ID},
		{strawberry.ID, resnet.Name, resnet.ID},
	}
	for _, l := range links {
		m, err := models.GetByID(ctx, l.id)
		if err != nil {
			return fmt.Errorf("seed model %s: %w", l.model, err)
		}
		if err := orgs.AddModelToOrganization(ctx, l.orgID, *m); err != nil {
			return fmt.Errorf("seed link %s -> %s: %w", l.orgID, l.model, err)
		}
	}
	return nil
}
