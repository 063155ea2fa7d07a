package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"flms/internal/domain/notifications"
)

// CreatePolicy stores the policy and opens a prorated account for every
// employee whose role the policy covers. Account inserts are independent:
// a failed insert is logged and skipped, the policy itself stands.
func (s *Service) CreatePolicy(ctx context.Context, p LeavePolicy) (LeavePolicy, error) {
	if p.Name == "" || len(p.Roles) == 0 {
		return LeavePolicy{}, fmt.Errorf("%w: name and roles are required", ErrValidation)
	}
	if p.LeaveEffect != EffectDeduct && p.LeaveEffect != EffectAdd {
		return LeavePolicy{}, fmt.Errorf("%w: leave effect must be %q or %q", ErrValidation, EffectDeduct, EffectAdd)
	}
	if p.AllowedLeaves < 0 {
		return LeavePolicy{}, fmt.Errorf("%w: allowed leaves must not be negative", ErrValidation)
	}
	if p.EndDate.Before(p.StartDate) {
		return LeavePolicy{}, fmt.Errorf("%w: end date before start date", ErrValidation)
	}

	id, err := s.store.CreatePolicy(ctx, p)
	if err != nil {
		return LeavePolicy{}, fmt.Errorf("create policy: %w", err)
	}
	p.ID = id

	joined, err := s.directory.JoiningDates(ctx, p.Roles)
	if err != nil {
		return LeavePolicy{}, fmt.Errorf("list employees for policy %s: %w", id, err)
	}

	for employeeID, joiningDate := range joined {
		prorated, ok := ProratedAllocation(p.AllowedLeaves, p.StartDate, p.EndDate, joiningDate)
		if !ok {
			continue
		}

		account := LeaveAccount{EmployeeID: employeeID, PolicyID: id}
		if p.LeaveEffect == EffectAdd {
			account.CreditedLeaves = prorated
		} else {
			account.TotalLeaves = prorated
		}
		if err := s.store.InsertAccount(ctx, account); err != nil {
			slog.Warn("leave account insert failed", "policyId", id, "employeeId", employeeID, "err", err)
			continue
		}
		s.notifier.Notify(ctx, employeeID, "", notifications.TypePolicyAllocated,
			"Leave policy allocated",
			fmt.Sprintf("You have been allocated %.1f days under %s.", prorated, p.Name))
	}
	return p, nil
}

func (s *Service) PolicyByID(ctx context.Context, id string) (LeavePolicy, error) {
	return s.store.PolicyByID(ctx, id)
}

func (s *Service) ListPolicies(ctx context.Context) ([]LeavePolicy, error) {
	return s.store.ListPolicies(ctx)
}

func (s *Service) UpdatePolicy(ctx context.Context, p LeavePolicy) error {
	if p.ID == "" {
		return fmt.Errorf("%w: policy id is required", ErrValidation)
	}
	if p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrValidation)
	}
	return s.store.UpdatePolicy(ctx, p)
}

func (s *Service) DeletePolicy(ctx context.Context, id string) error {
	return s.store.DeletePolicy(ctx, id)
}

// YearlyReset performs the cycle rollover for one policy: every account is
// reset to the full allowance, with unspent balance banked as carry-forward
// on forwarding policies, and the policy's validity window advances a year.
// The reset is blind to joining dates; proration applies only to the first
// cycle.
func (s *Service) YearlyReset(ctx context.Context, policyID string) error {
	policy, err := s.store.PolicyByID(ctx, policyID)
	if err != nil {
		return err
	}

	accounts, err := s.store.AccountsForPolicy(ctx, policyID)
	if err != nil {
		return fmt.Errorf("list accounts for policy %s: %w", policyID, err)
	}
	for _, account := range accounts {
		total, carryForward := ResetCycle(policy, account)
		if err := s.store.ResetAccount(ctx, account.ID, total, carryForward); err != nil {
			return fmt.Errorf("reset account %s: %w", account.ID, err)
		}
	}
	return s.store.AdvancePolicyCycle(ctx, policyID)
}

// ResetDuePolicies runs YearlyReset for every policy whose cycle has ended.
// Called by the scheduler; also reachable through the admin run-now
// endpoint.
func (s *Service) ResetDuePolicies(ctx context.Context, now time.Time) error {
	policies, err := s.store.ListPolicies(ctx)
	if err != nil {
		return err
	}
	for _, policy := range policies {
		if !policy.EndDate.Before(now) {
			continue
		}
		if err := s.YearlyReset(ctx, policy.ID); err != nil {
			slog.Warn("yearly reset failed", "policyId", policy.ID, "err", err)
		}
	}
	return nil
}
