package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-tracker/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ActivityPort reads an owner's activity feed.
type ActivityPort interface {
	Recent(ctx context.Context, owner user.Identity, limit int) ([]Entry, error)
}

type activityAdapter struct {
	container mono.ServiceContainer
}

// NewActivityAdapter creates an ActivityPort over the activity module's container.
func NewActivityAdapter(container mono.ServiceContainer) ActivityPort {
	return &activityAdapter{container: container}
}

func (a *activityAdapter) Recent(ctx context.Context, owner user.Identity, limit int) ([]Entry, error) {
	req := RecentActivityRequest{UserID: owner.UserID, Limit: limit}
	var resp RecentActivityResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceRecentActivity,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", ServiceRecentActivity, err)
	}
	return resp.Entries, nil
}
