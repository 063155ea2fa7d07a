package leave

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"flms/internal/domain/directory"
	"flms/internal/domain/timetable"
)

// memStore is an in-memory StoreAPI for workflow tests.
type memStore struct {
	policies map[string]LeavePolicy
	accounts map[string]*LeaveAccount
	requests map[string]*LeaveRequest
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{
		policies: map[string]LeavePolicy{},
		accounts: map[string]*LeaveAccount{},
		requests: map[string]*LeaveRequest{},
	}
}

func (m *memStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *memStore) CreatePolicy(_ context.Context, p LeavePolicy) (string, error) {
	p.ID = m.id("pol")
	m.policies[p.ID] = p
	return p.ID, nil
}

func (m *memStore) PolicyByID(_ context.Context, id string) (LeavePolicy, error) {
	p, ok := m.policies[id]
	if !ok {
		return LeavePolicy{}, ErrNotFound
	}
	return p, nil
}

func (m *memStore) ListPolicies(_ context.Context) ([]LeavePolicy, error) {
	var out []LeavePolicy
	for _, p := range m.policies {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) UpdatePolicy(_ context.Context, p LeavePolicy) error {
	m.policies[p.ID] = p
	return nil
}

func (m *memStore) DeletePolicy(_ context.Context, id string) error {
	delete(m.policies, id)
	for accID, a := range m.accounts {
		if a.PolicyID == id {
			delete(m.accounts, accID)
		}
	}
	return nil
}

func (m *memStore) AdvancePolicyCycle(_ context.Context, id string) error {
	p := m.policies[id]
	p.StartDate = p.StartDate.AddDate(1, 0, 0)
	p.EndDate = p.EndDate.AddDate(1, 0, 0)
	m.policies[id] = p
	return nil
}

func (m *memStore) InsertAccount(_ context.Context, a LeaveAccount) error {
	a.ID = m.id("acc")
	m.accounts[a.ID] = &a
	return nil
}

func (m *memStore) AccountFor(_ context.Context, employeeID, policyID string) (LeaveAccount, error) {
	for _, a := range m.accounts {
		if a.EmployeeID == employeeID && a.PolicyID == policyID {
			return *a, nil
		}
	}
	return LeaveAccount{}, ErrNotFound
}

func (m *memStore) AccountsForPolicy(_ context.Context, policyID string) ([]LeaveAccount, error) {
	var out []LeaveAccount
	for _, a := range m.accounts {
		if a.PolicyID == policyID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) ResetAccount(_ context.Context, accountID string, total, carryForward float64) error {
	a, ok := m.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	a.TotalLeaves = total
	a.CarryForwardLeaves = carryForward
	a.UsedLeaves = 0
	return nil
}

func (m *memStore) ConsumeLeave(_ context.Context, employeeID, policyID, effect string, days float64) (bool, error) {
	for _, a := range m.accounts {
		if a.EmployeeID != employeeID || a.PolicyID != policyID {
			continue
		}
		if Available(*a, effect) < days {
			return false, nil
		}
		a.UsedLeaves += days
		return true, nil
	}
	return false, nil
}

func (m *memStore) AccountSummaries(_ context.Context, employeeID string) ([]AccountSummary, error) {
	var out []AccountSummary
	for _, a := range m.accounts {
		if a.EmployeeID != employeeID {
			continue
		}
		p := m.policies[a.PolicyID]
		out = append(out, AccountSummary{
			PolicyID:           p.ID,
			PolicyName:         p.Name,
			LeaveEffect:        p.LeaveEffect,
			AllowedLeaves:      p.AllowedLeaves,
			IsHalfDayAllowed:   p.IsHalfDayAllowed,
			TotalLeaves:        a.TotalLeaves,
			UsedLeaves:         a.UsedLeaves,
			CarryForwardLeaves: a.CarryForwardLeaves,
			CreditedLeaves:     a.CreditedLeaves,
		})
	}
	return out, nil
}

func (m *memStore) CreateRequest(_ context.Context, req LeaveRequest) (string, error) {
	req.ID = m.id("req")
	req.CreatedAt = time.Now()
	for i := range req.Adjustments {
		req.Adjustments[i].ID = m.id("adj")
	}
	m.requests[req.ID] = &req
	return req.ID, nil
}

func (m *memStore) RequestByID(_ context.Context, id string) (LeaveRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return LeaveRequest{}, ErrNotFound
	}
	return *req, nil
}

func (m *memStore) ListRequests(_ context.Context, employeeID, status string) ([]LeaveRequest, error) {
	var out []LeaveRequest
	for _, req := range m.requests {
		if employeeID != "" && req.EmployeeID != employeeID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (m *memStore) SetDecision(_ context.Context, requestID, status string, hod bool, approvedBy, comments string) error {
	req, ok := m.requests[requestID]
	if !ok {
		return ErrNotFound
	}
	req.Status = status
	approval := &Approval{ApprovedBy: approvedBy, ApprovedAt: time.Now(), Comments: comments}
	if hod {
		req.HODApproval = approval
	} else {
		req.DirectorApproval = approval
	}
	return nil
}

func (m *memStore) MarkAdjustmentNotified(_ context.Context, adjustmentID string) error {
	for _, req := range m.requests {
		for i := range req.Adjustments {
			if req.Adjustments[i].ID == adjustmentID {
				req.Adjustments[i].NotificationStatus = "sent"
				return nil
			}
		}
	}
	return ErrNotFound
}

func (m *memStore) HasApprovedLeave(_ context.Context, facultyID string, date time.Time) (bool, error) {
	for _, req := range m.requests {
		if req.EmployeeID != facultyID || req.Status != StatusApproved {
			continue
		}
		if !date.Before(req.StartDate) && !date.After(req.EndDate) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ApprovedRequestsForDepartment(_ context.Context, _ string, from, to time.Time) ([]LeaveRequest, error) {
	var out []LeaveRequest
	for _, req := range m.requests {
		if req.Status != StatusApproved {
			continue
		}
		if req.StartDate.After(to) || req.EndDate.Before(from) {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

type fakeDirectory struct {
	employees map[string]directory.Employee
	hodByDept map[string]string
}

// EmployeeByID mirrors the real store's contract: a missing row comes
// back wrapping directory.ErrNotFound, not this package's sentinel.
func (f *fakeDirectory) EmployeeByID(_ context.Context, id string) (directory.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return directory.Employee{}, fmt.Errorf("%w: employee %s", directory.ErrNotFound, id)
	}
	return e, nil
}

func (f *fakeDirectory) ListEmployees(_ context.Context, role, departmentID string) ([]directory.Employee, error) {
	var out []directory.Employee
	for _, e := range f.employees {
		if role != "" && e.Role != role {
			continue
		}
		if departmentID != "" && e.DepartmentID != departmentID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeDirectory) JoiningDates(_ context.Context, roles []string) (map[string]time.Time, error) {
	out := map[string]time.Time{}
	for _, e := range f.employees {
		for _, role := range roles {
			if e.Role == role {
				out[e.ID] = e.JoiningDate
			}
		}
	}
	return out, nil
}

func (f *fakeDirectory) HODOfDepartment(_ context.Context, departmentID string) (string, error) {
	return f.hodByDept[departmentID], nil
}

func (f *fakeDirectory) DirectorIDs(_ context.Context) ([]string, error) {
	var ids []string
	for _, e := range f.employees {
		if e.Role == "director" {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}

type fakePeriods struct {
	occurrences []timetable.Occurrence
}

func (f *fakePeriods) ResolvePeriods(_ context.Context, _ string, _, _ time.Time) ([]timetable.Occurrence, error) {
	return f.occurrences, nil
}

type substitution struct {
	departmentID, className, day string
	period                       int
	substituteID                 string
}

type fakeTimetable struct {
	assigned []substitution
	failAll  bool
}

func (f *fakeTimetable) AssignSubstitute(_ context.Context, departmentID, className, day string, period int, substituteID string) error {
	if f.failAll {
		return fmt.Errorf("no matching cell")
	}
	f.assigned = append(f.assigned, substitution{departmentID, className, day, period, substituteID})
	return nil
}

type sentNotification struct {
	userID string
	ntype  string
}

type fakeNotifier struct {
	sent []sentNotification
}

func (f *fakeNotifier) Notify(_ context.Context, userID, _, ntype, _, _ string) {
	f.sent = append(f.sent, sentNotification{userID: userID, ntype: ntype})
}

func (f *fakeNotifier) recipientsOf(ntype string) []string {
	var out []string
	for _, n := range f.sent {
		if n.ntype == ntype {
			out = append(out, n.userID)
		}
	}
	return out
}

type fixture struct {
	svc      *Service
	store    *memStore
	dir      *fakeDirectory
	periods  *fakePeriods
	tt       *fakeTimetable
	notifier *fakeNotifier
}

func newFixture() *fixture {
	store := newMemStore()
	dir := &fakeDirectory{
		employees: map[string]directory.Employee{
			"emp-1": {ID: "emp-1", Name: "Asha Verma", Role: "teaching", DepartmentID: "dept-1", JoiningDate: date(2024, 1, 1)},
			"emp-2": {ID: "emp-2", Name: "Ravi Nair", Role: "teaching", DepartmentID: "dept-1", JoiningDate: date(2024, 1, 1)},
			"hod-1": {ID: "hod-1", Name: "Meera Iyer", Role: "hod", DepartmentID: "dept-1", JoiningDate: date(2023, 1, 1)},
			"hod-2": {ID: "hod-2", Name: "Vikram Rao", Role: "hod", DepartmentID: "dept-2", JoiningDate: date(2023, 1, 1)},
			"dir-1": {ID: "dir-1", Name: "Sunita Desai", Role: "director", JoiningDate: date(2020, 1, 1)},
			"clerk": {ID: "clerk", Name: "Arjun Pillai", Role: "nonteaching", DepartmentID: "dept-1", JoiningDate: date(2024, 1, 1)},
		},
		hodByDept: map[string]string{"dept-1": "hod-1", "dept-2": "hod-2"},
	}
	periods := &fakePeriods{}
	tt := &fakeTimetable{}
	notifier := &fakeNotifier{}

	svc := NewService(store, dir, periods, tt, notifier)
	svc.Now = func() time.Time { return date(2026, 4, 1) }
	return &fixture{svc: svc, store: store, dir: dir, periods: periods, tt: tt, notifier: notifier}
}

func (f *fixture) seedPolicy(t *testing.T, effect string, allowed float64) string {
	t.Helper()
	id, err := f.store.CreatePolicy(context.Background(), LeavePolicy{
		Name:          "Casual Leave",
		AllowedLeaves: allowed,
		Roles:         []string{"teaching", "hod", "nonteaching"},
		LeaveEffect:   effect,
		StartDate:     date(2026, 1, 1),
		EndDate:       date(2026, 12, 31),
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) seedAccount(t *testing.T, employeeID, policyID string, total, used float64) {
	t.Helper()
	require.NoError(t, f.store.InsertAccount(context.Background(), LeaveAccount{
		EmployeeID:  employeeID,
		PolicyID:    policyID,
		TotalLeaves: total,
		UsedLeaves:  used,
	}))
}

func TestSubmitAndHodApproveRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	policyID := f.seedPolicy(t, EffectDeduct, 10)
	f.seedAccount(t, "emp-1", policyID, 10, 0)

	req, err := f.svc.Submit(ctx, SubmitInput{
		EmployeeID:  "emp-1",
		PolicyID:    policyID,
		StartDate:   date(2026, 4, 13),
		EndDate:     date(2026, 4, 15),
		Description: "family function",
		Adjustments: []PeriodAdjustment{
			{Date: date(2026, 4, 13), Day: "Monday", Period: 1, ClassName: "CS-A", DepartmentID: "dept-1", SubjectID: "sub-1", SubstituteFacultyID: "emp-2"},
			{Date: date(2026, 4, 14), Day: "Tuesday", Period: 3, ClassName: "CS-A", DepartmentID: "dept-1", SubjectID: "sub-1", SubstituteFacultyID: "emp-2"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPendingHOD, req.Status)
	require.Equal(t, float64(3), req.TotalDays)
	for _, adj := range req.Adjustments {
		require.Equal(t, AdjustmentAdjusted, adj.Status)
	}
	require.Contains(t, f.notifier.recipientsOf("leave_submitted"), "hod-1")
	require.Contains(t, f.notifier.recipientsOf("leave_submitted"), "emp-1")

	approved, err := f.svc.HodAction(ctx, req.ID, ActionApprove, "ok", "hod-1")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, approved.Status)
	require.Equal(t, "hod-1", approved.HODApproval.ApprovedBy)

	account, err := f.store.AccountFor(ctx, "emp-1", policyID)
	require.NoError(t, err)
	require.Equal(t, float64(3), account.UsedLeaves)

	require.Len(t, f.tt.assigned, 2)
	require.Equal(t, substitution{"dept-1", "CS-A", "Monday", 1, "emp-2"}, f.tt.assigned[0])
	for _, adj := range approved.Adjustments {
		require.Equal(t, "sent", adj.NotificationStatus)
	}
	require.Contains(t, f.notifier.recipientsOf("substitute_assigned"), "emp-2")
	require.Contains(t, f.notifier.recipientsOf("leave_approved"), "emp-1")
}

func TestSubmitInsufficientBalance(t *testing.T) {
	f := newFixture()
	policyID := f.seedPolicy(t, EffectDeduct, 10)
	f.seedAccount(t, "emp-1", policyID, 2, 0)

	_, err := f.svc.Submit(context.Background(), SubmitInput{
		EmployeeID: "emp-1",
		PolicyID:   policyID,
		StartDate:  date(2026, 4, 13),
		EndDate:    date(2026, 4, 15),
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	var balanceErr *InsufficientBalanceError
	require.ErrorAs(t, err, &balanceErr)
	require.Equal(t, float64(2), balanceErr.Available)
	require.Equal(t, float64(3), balanceErr.Requested)
	require.Empty(t, f.store.requests, "nothing may be persisted on a failed submission")
}

func TestSubmitSubstituteConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	policyID := f.seedPolicy(t, EffectDeduct, 10)
	f.seedAccount(t, "emp-1", policyID, 10, 0)
	f.seedAccount(t, "emp-2", policyID, 10, 0)

	// emp-2 already has approved leave covering Apr 14.
	_, err := f.store.CreateRequest(ctx, LeaveRequest{
		EmployeeID: "emp-2",
		PolicyID:   policyID,
		StartDate:  date(2026, 4, 14),
		EndDate:    date(2026, 4, 16),
		Status:     StatusApproved,
	})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, SubmitInput{
		EmployeeID: "emp-1",
		PolicyID:   policyID,
		StartDate:  date(2026, 4, 13),
		EndDate:    date(2026, 4, 15),
		Adjustments: []PeriodAdjustment{
			{Date: date(2026, 4, 14), Day: "Tuesday", Period: 2, ClassName: "CS-A", DepartmentID: "dept-1", SubstituteFacultyID: "emp-2"},
		},
	})
	require.ErrorIs(t, err, ErrSubstituteConflict)

	var conflict *SubstituteConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "emp-2", conflict.SubstituteID)
	require.Len(t, f.store.requests, 1, "only the pre-existing request may remain")
}

func TestSubmitAutoResolvesPeriodsForTeachingStaff(t *testing.T) {
	f := newFixture()
	policyID := f.seedPolicy(t, EffectDeduct, 10)
	f.seedAccount(t, "emp-1", policyID, 10, 0)
	f.periods.occurrences = []timetable.Occurrence{
		{Date: date(2026, 4, 13), Day: "Monday", Period: 2, ClassName: "CS-B", DepartmentID: "dept-1", SubjectID: "sub-2", FacultyID: "emp-1"},
	}

	req, err := f.svc.Submit(context.Background(), SubmitInput{
		EmployeeID:  "emp-1",
		PolicyID:    policyID,
		StartDate:   date(2026, 4, 13),
		EndDate:     date(2026, 4, 13),
		Description: "checkup",
	})
	require.NoError(t, err)
	require.Len(t, req.Adjustments, 1)
	require.Equal(t, AdjustmentPending, req.Adjustments[0].Status)
	require.Equal(t, "CS-B", req.Adjustments[0].ClassName)
}

func TestSubmitEmergencyWaivesSubstitutes(t *testing.T) {
	f := newFixture()
	policyID := f.seedPolicy(t, EffectDeduct, 10)
	f.seedAccount(t, "emp-1", policyID, 10, 0)
	f.periods.occurrences = []timetable.Occurrence{
		{Date: date(2026, 4, 13), Day: "Monday", Period: 2, ClassName: "CS-B", DepartmentID: "dept-1", FacultyID: "emp-1"},
	}

	req, err := f.svc.Submit(context.Background(), SubmitInput{
		EmployeeID:  "emp-1",
		PolicyID:    policyID,
		StartDate:   date(2026, 4, 13),
		EndDate:     date(2026, 4, 13),
		Description: "Medical Emergency at home",
	})
	require.NoError(t, err)
	require.Len(t, req.Adjustments, 1)
	require.Equal(t, AdjustmentNotRequired, req.Adjustments[0].Status)
}

func TestSubmitHodSelfLeaveRoutesToDirector(t *testing.T) {
	f := newFixture()
	policyID := f.seedPolicy(t, EffectDeduct, 10)
	f.seedAccount(t, "hod-1", policyID, 10, 0)

	req, err := f.svc.Submit(context.Background(), SubmitInput{
		EmployeeID: "hod-1",
		PolicyID:   policyID,
		StartDate:  date(2026, 4, 13),
		EndDate:    date(2026, 4, 14),
	})
	require.NoError(t, err)
	require.Equal(t, StatusPendingDirector, req.Status)
	require.Contains(t, f.notifier.recipientsOf("leave_submitted"), "dir-1")
}

func TestSubmitMissingPolicyOrAccount(t *testing.T) {
	f := newFixture()
	policyID := f.seedPolicy(t, EffectDeduct, 10)

	_, err := f.svc.Submit(context.Background(), SubmitInput{
		EmployeeID: "emp-1",
		PolicyID:   "pol-missing",
		StartDate:  date(2026, 4, 13),
		EndDate:    date(2026, 4, 14),
	})
	require.ErrorIs(t, err, ErrNotFound)

	// Policy exists but was never allocated to the employee.
	_, err = f.svc.Submit(context.Background(), SubmitInput{
		EmployeeID: "emp-1",
		PolicyID:   policyID,
		StartDate:  date(2026, 4, 13),
		EndDate:    date(2026, 4, 14),
	})
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorContains(t, err, "not allocated")
}

func TestSubmitUnknownEmployeeIsNotFound(t *testing.T) {
	f := newFixture()
	policyID := f.seedPolicy(t, EffectDeduct, 10)

	_, err := f.svc.Submit(context.Background(), SubmitInput{
		EmployeeID: "ghost",
		PolicyID:   policyID,
		StartDate:  date(2026, 4, 13),
		EndDate:    date(2026, 4, 14),
	})
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, directory.ErrNotFound, "the directory sentinel must not leak through")
	require.Empty(t, f.store.requests)
}

func TestDecisionByUnknownActorIsNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	policyID := f.seedPolicy(t, EffectDeduct, 10)
	f.seedAccount(t, "emp-1", policyID, 10, 0)

	req, err := f.svc.Submit(ctx, SubmitInput{
		EmployeeID: "emp-1", PolicyID: policyID,
		StartDate: date(2026, 4, 13), EndDate: date(2026, 4, 14),
	})
	require.NoError(t, err)

	_, err = f.svc.HodAction(ctx, req.ID, ActionApprove, "", "ghost")
	require.ErrorIs(t, err, ErrNotFound)

	unchanged, err := f.store.RequestByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPendingHOD, unchanged.Status)
}

func TestHodRejectIsTerminal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	policyID := f.seedPolicy(t, EffectDeduct, 10)
	f.seedAccount(t, "emp-1", policyID, 10, 0)

	req, err := f.svc.Submit(ctx, SubmitInput{
		EmployeeID: "emp-1", PolicyID: policyID,
		StartDate: date(2026, 4, 13), EndDate: date(2026, 4, 14),
	})
	require.NoError(t, err)

	rejected, err := f.svc.HodAction(ctx, req.ID, ActionReject, "short staffed", "hod-1")
	require.NoError(t, err)
	require.Equal(t, StatusRejectedByHOD, rejected.Status)
	require.Equal(t, "short staffed", rejected.HODApproval.Comments)

	account, err := f.store.AccountFor(ctx, "emp-1", policyID)
	require.NoError(t, err)
	require.Zero(t, account.UsedLeaves)

	_, err = f.svc.HodAction(ctx, req.ID, ActionApprove, "", "hod-1")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestHodApproveForwardsPeerHodLeave(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	policyID := f.seedPolicy(t, EffectDeduct, 10)
	f.seedAccount(t, "hod-2", policyID, 10, 0)

	// A peer HOD's request sitting at pending_hod is routed onward, not
	// finally approved.
	id, err := f.store.CreateRequest(ctx, LeaveRequest{
		EmployeeID: "hod-2", PolicyID: policyID,
		StartDate: date(2026, 4, 13), EndDate: date(2026, 4, 14),
		TotalDays: 2, Status: StatusPendingHOD,
	})
	require.NoError(t, err)

	forwarded, err := f.svc.HodAction(ctx, id, ActionApprove, "", "hod-1")
	require.NoError(t, err)
	require.Equal(t, StatusPendingDirector, forwarded.Status)

	account, err := f.store.AccountFor(ctx, "hod-2", policyID)
	require.NoError(t, err)
	require.Zero(t, account.UsedLeaves, "no balance may be spent before the director decides")
	require.Contains(t, f.notifier.recipientsOf("leave_forwarded"), "dir-1")
}

func TestHodActionRequiresHodRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	policyID := f.seedPolicy(t, EffectDeduct, 10)
	f.seedAccount(t, "emp-1", policyID, 10, 0)

	req, err := f.svc.Submit(ctx, SubmitInput{
		EmployeeID: "emp-1", PolicyID: policyID,
		StartDate: date(2026, 4, 13), EndDate: date(2026, 4, 14),
	})
	require.NoError(t, err)

	_, err = f.svc.HodAction(ctx, req.ID, ActionApprove, "", "emp-2")
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.HodAction(ctx, req.ID, "escalate", "", "hod-1")
	require.ErrorIs(t, err, ErrValidation)
}

func TestHodApproveRechecksBalance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	policyID := f.seedPolicy(t, EffectDeduct, 10)
	f.seedAccount(t, "emp-1", policyID, 10, 0)

	req, err := f.svc.Submit(ctx, SubmitInput{
		EmployeeID: "emp-1", PolicyID: policyID,
		StartDate: date(2026, 4, 13), EndDate: date(2026, 4, 15),
	})
	require.NoError(t, err)

	// Balance drains between submission and approval; the conditional
	// update must refuse rather than go negative.
	ok, err := f.store.ConsumeLeave(ctx, "emp-1", policyID, EffectDeduct, 9)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.HodAction(ctx, req.ID, ActionApprove, "", "hod-1")
	require.ErrorIs(t, err, ErrInsufficientBalance)

	unchanged, err := f.store.RequestByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPendingHOD, unchanged.Status)

	account, err := f.store.AccountFor(ctx, "emp-1", policyID)
	require.NoError(t, err)
	require.Equal(t, float64(9), account.UsedLeaves)
}

func TestDirectorApprove(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	policyID := f.seedPolicy(t, EffectDeduct, 10)
	f.seedAccount(t, "hod-1", policyID, 10, 0)

	req, err := f.svc.Submit(ctx, SubmitInput{
		EmployeeID: "hod-1", PolicyID: policyID,
		StartDate: date(2026, 4, 13), EndDate: date(2026, 4, 14),
		Adjustments: []PeriodAdjustment{
			{Date: date(2026, 4, 13), Day: "Monday", Period: 4, ClassName: "CS-A", DepartmentID: "dept-1", SubstituteFacultyID: "emp-2"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPendingDirector, req.Status)

	approved, err := f.svc.DirectorAction(ctx, req.ID, ActionApprove, "fine", "dir-1")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, approved.Status)
	require.Equal(t, "dir-1", approved.DirectorApproval.ApprovedBy)

	account, err := f.store.AccountFor(ctx, "hod-1", policyID)
	require.NoError(t, err)
	require.Equal(t, float64(2), account.UsedLeaves)
	require.Len(t, f.tt.assigned, 1)
	require.Contains(t, f.notifier.recipientsOf("leave_approved"), "hod-1")
}

func TestDirectorLeadTimeCheckedBeforeIdentity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	policyID := f.seedPolicy(t, EffectDeduct, 10)
	f.seedAccount(t, "hod-1", policyID, 10, 0)

	// Leave starting today: Now is pinned to 2026-04-01.
	req, err := f.svc.Submit(ctx, SubmitInput{
		EmployeeID: "hod-1", PolicyID: policyID,
		StartDate: date(2026, 4, 1), EndDate: date(2026, 4, 2),
	})
	require.NoError(t, err)

	// emp-2 is not a director, but the lead-time violation surfaces first.
	_, err = f.svc.DirectorAction(ctx, req.ID, ActionApprove, "", "emp-2")
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.DirectorAction(ctx, req.ID, ActionApprove, "", "dir-1")
	require.ErrorIs(t, err, ErrValidation)

	// Rejecting has no lead-time requirement, only the role check.
	_, err = f.svc.DirectorAction(ctx, req.ID, ActionReject, "", "emp-2")
	require.ErrorIs(t, err, ErrForbidden)

	rejected, err := f.svc.DirectorAction(ctx, req.ID, ActionReject, "too late", "dir-1")
	require.NoError(t, err)
	require.Equal(t, StatusRejectedByDirector, rejected.Status)

	account, err := f.store.AccountFor(ctx, "hod-1", policyID)
	require.NoError(t, err)
	require.Zero(t, account.UsedLeaves)
}

func TestDirectorActionRequiresPendingDirector(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	policyID := f.seedPolicy(t, EffectDeduct, 10)
	f.seedAccount(t, "emp-1", policyID, 10, 0)

	req, err := f.svc.Submit(ctx, SubmitInput{
		EmployeeID: "emp-1", PolicyID: policyID,
		StartDate: date(2026, 4, 13), EndDate: date(2026, 4, 14),
	})
	require.NoError(t, err)

	_, err = f.svc.DirectorAction(ctx, req.ID, ActionApprove, "", "dir-1")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestTimetableCommitFailureDoesNotAbortApproval(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.tt.failAll = true
	policyID := f.seedPolicy(t, EffectDeduct, 10)
	f.seedAccount(t, "emp-1", policyID, 10, 0)

	req, err := f.svc.Submit(ctx, SubmitInput{
		EmployeeID: "emp-1", PolicyID: policyID,
		StartDate: date(2026, 4, 13), EndDate: date(2026, 4, 13),
		Adjustments: []PeriodAdjustment{
			{Date: date(2026, 4, 13), Day: "Monday", Period: 1, ClassName: "CS-A", DepartmentID: "dept-1", SubstituteFacultyID: "emp-2"},
		},
	})
	require.NoError(t, err)

	approved, err := f.svc.HodAction(ctx, req.ID, ActionApprove, "", "hod-1")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, approved.Status)
	require.Equal(t, "pending", approved.Adjustments[0].NotificationStatus)
	require.Empty(t, f.notifier.recipientsOf("substitute_assigned"))
}

func TestAvailableSubstitutes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	policyID := f.seedPolicy(t, EffectDeduct, 10)

	// emp-2 on approved leave Apr 13-15.
	_, err := f.store.CreateRequest(ctx, LeaveRequest{
		EmployeeID: "emp-2", PolicyID: policyID,
		StartDate: date(2026, 4, 13), EndDate: date(2026, 4, 15),
		Status: StatusApproved,
	})
	require.NoError(t, err)

	available, err := f.svc.AvailableSubstitutes(ctx, "dept-1", "emp-1", date(2026, 4, 14))
	require.NoError(t, err)

	ids := make([]string, 0, len(available))
	for _, e := range available {
		ids = append(ids, e.ID)
	}
	require.NotContains(t, ids, "emp-1", "the applicant is excluded")
	require.NotContains(t, ids, "emp-2", "a substitute on leave is excluded")
	require.NotContains(t, ids, "clerk", "non-teaching staff cannot substitute")
	require.Contains(t, ids, "hod-1")

	// Outside the leave window emp-2 is free again.
	available, err = f.svc.AvailableSubstitutes(ctx, "dept-1", "emp-1", date(2026, 4, 20))
	require.NoError(t, err)
	ids = ids[:0]
	for _, e := range available {
		ids = append(ids, e.ID)
	}
	require.Contains(t, ids, "emp-2")
}
