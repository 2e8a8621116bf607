package leave

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory StoreAPI used by the unit tests. It mirrors
// the Postgres store's visible behavior: row keys, not-found wrapping,
// and copy-on-read so uncommitted transactions stay invisible.
type memStore struct {
	types     map[string]LeaveType
	balances  map[string]Balance
	userTeams map[string]string
	nextID    int
}

func newMemStore() *memStore {
	return &memStore{
		types:     make(map[string]LeaveType),
		balances:  make(map[string]Balance),
		userTeams: make(map[string]string),
	}
}

func balanceKey(userID, leaveTypeID string, year int) string {
	return fmt.Sprintf("%s|%s|%d", userID, leaveTypeID, year)
}

func (m *memStore) newID() string {
	m.nextID++
	return fmt.Sprintf("id-%d", m.nextID)
}

func (m *memStore) addType(t LeaveType) LeaveType {
	if t.ID == "" {
		t.ID = m.newID()
	}
	m.types[t.ID] = t
	return t
}

func (m *memStore) putBalance(b Balance) {
	if b.ID == "" {
		b.ID = m.newID()
	}
	m.balances[balanceKey(b.UserID, b.LeaveTypeID, b.Year)] = b
}

func (m *memStore) Begin(ctx context.Context) (Tx, error) {
	return &memTx{store: m, staged: make(map[string]*Balance)}, nil
}

func (m *memStore) ListTypes(ctx context.Context) ([]LeaveType, error) {
	out := make([]LeaveType, 0, len(m.types))
	for _, t := range m.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) ListActiveTypes(ctx context.Context) ([]LeaveType, error) {
	all, _ := m.ListTypes(ctx)
	out := all[:0]
	for _, t := range all {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) SearchTypes(ctx context.Context, query string) ([]LeaveType, error) {
	all, _ := m.ListTypes(ctx)
	var out []LeaveType
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Name), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(t.Description), strings.ToLower(query)) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) GetType(ctx context.Context, id string) (LeaveType, error) {
	t, ok := m.types[id]
	if !ok {
		return LeaveType{}, fmt.Errorf("leave type %s: %w", id, ErrNotFound)
	}
	return t, nil
}

func (m *memStore) CreateType(ctx context.Context, t LeaveType) (LeaveType, error) {
	return m.addType(t), nil
}

func (m *memStore) UpdateType(ctx context.Context, t LeaveType) (LeaveType, error) {
	if _, ok := m.types[t.ID]; !ok {
		return LeaveType{}, fmt.Errorf("leave type %s: %w", t.ID, ErrNotFound)
	}
	m.types[t.ID] = t
	return t, nil
}

func (m *memStore) DeleteType(ctx context.Context, id string) error {
	if _, ok := m.types[id]; !ok {
		return fmt.Errorf("leave type %s: %w", id, ErrNotFound)
	}
	delete(m.types, id)
	return nil
}

func (m *memStore) TypeNameExists(ctx context.Context, name, excludeID string) (bool, error) {
	for _, t := range m.types {
		if t.ID == excludeID {
			continue
		}
		if strings.EqualFold(t.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListBalances(ctx context.Context, userID string, year int) ([]Balance, error) {
	var out []Balance
	for _, b := range m.balances {
		if b.UserID == userID && b.Year == year {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveTypeID < out[j].LeaveTypeID })
	return out, nil
}

func (m *memStore) GetBalance(ctx context.Context, userID, leaveTypeID string, year int) (Balance, error) {
	b, ok := m.balances[balanceKey(userID, leaveTypeID, year)]
	if !ok {
		return Balance{}, fmt.Errorf("balance %s/%s/%d: %w", userID, leaveTypeID, year, ErrNotFound)
	}
	return b, nil
}

func (m *memStore) LowBalances(ctx context.Context, threshold decimal.Decimal, year int) ([]Balance, error) {
	var out []Balance
	for _, b := range m.balances {
		if b.Year == year && b.RemainingDays.LessThan(threshold) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemainingDays.LessThan(out[j].RemainingDays) })
	return out, nil
}

func (m *memStore) BalancesToCarryOver(ctx context.Context, year int) ([]Balance, error) {
	var out []Balance
	for _, b := range m.balances {
		if b.Year != year || !b.RemainingDays.IsPositive() {
			continue
		}
		t, ok := m.types[b.LeaveTypeID]
		if !ok || !t.AllowCarryOver {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) TeamUsedDays(ctx context.Context, teamID string, year int) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, b := range m.balances {
		if b.Year == year && m.userTeams[b.UserID] == teamID {
			total = total.Add(b.UsedDays)
		}
	}
	return total, nil
}

type memTx struct {
	store    *memStore
	staged   map[string]*Balance
	rolledUp bool
}

func (t *memTx) GetBalanceForUpdate(ctx context.Context, userID, leaveTypeID string, year int) (*Balance, error) {
	key := balanceKey(userID, leaveTypeID, year)
	if b, ok := t.staged[key]; ok {
		return b, nil
	}
	b, ok := t.store.balances[key]
	if !ok {
		return nil, fmt.Errorf("balance %s/%s/%d: %w", userID, leaveTypeID, year, ErrNotFound)
	}
	copied := b
	t.staged[key] = &copied
	return &copied, nil
}

func (t *memTx) InsertBalance(ctx context.Context, b *Balance) error {
	if b.ID == "" {
		b.ID = t.store.newID()
	}
	t.staged[balanceKey(b.UserID, b.LeaveTypeID, b.Year)] = b
	return nil
}

func (t *memTx) UpdateBalance(ctx context.Context, b *Balance) error {
	t.staged[balanceKey(b.UserID, b.LeaveTypeID, b.Year)] = b
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	for key, b := range t.staged {
		t.store.balances[key] = *b
	}
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.staged = map[string]*Balance{}
	t.rolledUp = true
	return nil
}

// memDirectory is a fixed user list for the engine tests.
type memDirectory struct {
	ids []string
}

func (d *memDirectory) UserExists(ctx context.Context, userID string) (bool, error) {
	for _, id := range d.ids {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (d *memDirectory) ListUserIDs(ctx context.Context) ([]string, error) {
	return append([]string(nil), d.ids...), nil
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}
