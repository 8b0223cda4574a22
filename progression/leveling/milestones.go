package leveling

import (
	"context"
	"errors"
	"fmt"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
)

// MilestoneClaim describes one claim attempt. Current is the user's level or
// rebirth count, read inside the same transaction.
type MilestoneClaim struct {
	UserID     string
	Kind       string
	Threshold  int
	Milestones []config.Milestone
	NotReached outcome.Reason
}

// ClaimMilestone checks, records and credits a milestone inside q. An
// unreached threshold reports NotReached before the milestone table is
// consulted. Validation failures come back as *outcome.Error so the transaction rolls back cleanly.
func ClaimMilestone(ctx context.Context, q store.Queries, claim MilestoneClaim, current int) (config.Reward, error) {
	if current < claim.Threshold {
		return config.Reward{}, outcome.Errorf(claim.NotReached,
			fmt.Sprintf("%s %d required, currently %d", claim.Kind, claim.Threshold, current))
	}
	milestone, ok := config.FindMilestone(claim.Milestones, claim.Threshold)
	if !ok {
		return config.Reward{}, outcome.Errorf(outcome.ReasonInvalidMilestone,
			fmt.Sprintf("no %s milestone at %d", claim.Kind, claim.Threshold))
	}

	claimed, err := q.HasMilestoneClaim(ctx, claim.UserID, claim.Kind, claim.Threshold)
	if err != nil {
		return config.Reward{}, fmt.Errorf("failed to check milestone claim: %w", err)
	}
	if claimed {
		return config.Reward{}, outcome.Errorf(outcome.ReasonAlreadyClaimed,
			fmt.Sprintf("%s milestone %d already claimed", claim.Kind, claim.Threshold))
	}

	err = q.InsertMilestoneClaim(ctx, &models.MilestoneClaim{
		UserID:    claim.UserID,
		Kind:      claim.Kind,
		Threshold: claim.Threshold,
	})
	if errors.Is(err, store.ErrConflict) {
		return config.Reward{}, outcome.Errorf(outcome.ReasonAlreadyClaimed,
			fmt.Sprintf("%s milestone %d already claimed", claim.Kind, claim.Threshold))
	}
	if err != nil {
		return config.Reward{}, fmt.Errorf("failed to record milestone claim: %w", err)
	}

	if err := q.CreditWallet(ctx, claim.UserID, milestone.Reward); err != nil {
		return config.Reward{}, fmt.Errorf("failed to credit milestone reward: %w", err)
	}
	return milestone.Reward, nil
}

// UnclaimedMilestones returns reached thresholds without a claim, ascending.
func UnclaimedMilestones(milestones []config.Milestone, claimed []int, current int) []int {
	done := make(map[int]bool, len(claimed))
	for _, t := range claimed {
		done[t] = true
	}
	var out []int
	for _, m := range milestones {
		if m.Threshold <= current && !done[m.Threshold] {
			out = append(out, m.Threshold)
		}
	}
	return out
}

// ListMilestoneStatus pairs every defined milestone with reached/claimed flags.
func ListMilestoneStatus(milestones []config.Milestone, claimed []int, current int) []MilestoneStatus {
	done := make(map[int]bool, len(claimed))
	for _, t := range claimed {
		done[t] = true
	}
	out := make([]MilestoneStatus, 0, len(milestones))
	for _, m := range milestones {
		out = append(out, MilestoneStatus{
			Threshold: m.Threshold,
			Reward:    m.Reward,
			Reached:   current >= m.Threshold,
			Claimed:   done[m.Threshold],
		})
	}
	return out
}
