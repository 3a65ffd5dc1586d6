package usage

import (
	"context"
	"sort"
	"time"

	"aitool-service/internal/model"
)

// memLedger is an in-memory Ledger for tests
type memLedger struct {
	records  []model.UsageLog
	nextID   uint
	countErr error
}

func (l *memLedger) add(userID, companyID uint, toolName, status string, ts time.Time) {
	l.nextID++
	l.records = append(l.records, model.UsageLog{
		ID:        l.nextID,
		UserID:    userID,
		CompanyID: companyID,
		ToolName:  toolName,
		Prompt:    "prompt",
		Status:    status,
		Timestamp: ts,
	})
}

func (l *memLedger) Record(ctx context.Context, params RecordParams) (uint, error) {
	l.nextID++
	l.records = append(l.records, model.UsageLog{
		ID:        l.nextID,
		UserID:    params.UserID,
		CompanyID: params.CompanyID,
		ToolName:  params.ToolName,
		Prompt:    params.Prompt,
		Response:  params.Response,
		Status:    params.Status,
		Error:     params.Error,
		Timestamp: time.Now(),
	})
	return l.nextID, nil
}

func (l *memLedger) CountForCompany(ctx context.Context, companyID uint, since time.Time, status string) (int64, error) {
	if l.countErr != nil {
		return 0, l.countErr
	}
	var count int64
	for _, r := range l.records {
		if r.CompanyID != companyID || r.Timestamp.Before(since) {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		count++
	}
	return count, nil
}

func (l *memLedger) CountForUser(ctx context.Context, userID uint, since time.Time) (int64, error) {
	if l.countErr != nil {
		return 0, l.countErr
	}
	var count int64
	for _, r := range l.records {
		if r.UserID == userID && !r.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (l *memLedger) ListForUser(ctx context.Context, userID, companyID uint, from, to time.Time) ([]model.UsageLog, error) {
	var logs []model.UsageLog
	for _, r := range l.records {
		if r.UserID == userID && r.CompanyID == companyID &&
			!r.Timestamp.Before(from) && r.Timestamp.Before(to) {
			logs = append(logs, r)
		}
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Timestamp.After(logs[j].Timestamp) })
	return logs, nil
}

func (l *memLedger) AggregateByTool(ctx context.Context, companyID uint, from, to time.Time) ([]ToolStat, error) {
	byTool := map[string]*ToolStat{}
	for _, r := range l.records {
		if r.CompanyID != companyID || r.Status != model.StatusSuccess ||
			r.Timestamp.Before(from) || !r.Timestamp.Before(to) {
			continue
		}
		stat, ok := byTool[r.ToolName]
		if !ok {
			stat = &ToolStat{ToolName: r.ToolName}
			byTool[r.ToolName] = stat
		}
		stat.Count++
		if r.Timestamp.After(stat.LastUsed) {
			stat.LastUsed = r.Timestamp
		}
	}

	var stats []ToolStat
	for _, s := range byTool {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })
	return stats, nil
}

// fakeCompanies is an in-memory CompanyStore for tests
type fakeCompanies struct {
	companies  map[uint]*model.Company
	increments map[uint]int
}

func newFakeCompanies(companies ...*model.Company) *fakeCompanies {
	f := &fakeCompanies{
		companies:  map[uint]*model.Company{},
		increments: map[uint]int{},
	}
	for _, c := range companies {
		f.companies[c.ID] = c
	}
	return f
}

func (f *fakeCompanies) FindByID(ctx context.Context, id uint) (*model.Company, error) {
	company, ok := f.companies[id]
	if !ok {
		return nil, nil
	}
	copied := *company
	return &copied, nil
}

func (f *fakeCompanies) IncrementUsage(ctx context.Context, id uint) error {
	f.increments[id]++
	return nil
}

// fakeUsers is an in-memory UserStore for tests
type fakeUsers struct {
	users       map[uint]*model.User
	deactivated map[uint]bool
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{
		users:       map[uint]*model.User{},
		deactivated: map[uint]bool{},
	}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByID(ctx context.Context, id uint) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUsers) Deactivate(ctx context.Context, id uint) error {
	f.deactivated[id] = true
	if user, ok := f.users[id]; ok {
		user.IsActive = false
	}
	return nil
}
