package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"expensetracker/internal/entity"
	"expensetracker/internal/notification"
	"expensetracker/internal/repository"

	"github.com/sirupsen/logrus"
)

type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]entity.User
	err    error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{rows: make(map[int64]entity.User)}
}

func (r *memoryUsers) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, row := range r.rows {
		if row.Email == user.Email {
			return repository.ErrDuplicate
		}
		if user.VerificationToken != nil && row.VerificationToken != nil && *row.VerificationToken == *user.VerificationToken {
			return repository.ErrDuplicate
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.rows[user.ID] = *user
	return nil
}

func (r *memoryUsers) FindByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *memoryUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Email == email })
}

func (r *memoryUsers) FindByVerificationToken(_ context.Context, token string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.VerificationToken != nil && *u.VerificationToken == token })
}

func (r *memoryUsers) ConsumeVerificationToken(_ context.Context, token string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for id, row := range r.rows {
		if row.VerificationToken != nil && *row.VerificationToken == token {
			row.IsActive = true
			row.VerificationToken = nil
			r.rows[id] = row
			return &row, nil
		}
	}
	return nil, nil
}

func (r *memoryUsers) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[user.ID]; !ok {
		return errors.New("missing row")
	}
	r.rows[user.ID] = *user
	return nil
}

func (r *memoryUsers) List(_ context.Context, limit, offset int) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]entity.User, 0, len(r.rows))
	for _, row := range r.rows {
		users = append(users, row)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	if offset > len(users) {
		offset = len(users)
	}
	users = users[offset:]
	if limit > 0 && limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

func (r *memoryUsers) find(match func(entity.User) bool) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, row := range r.rows {
		if match(row) {
			return &row, nil
		}
	}
	return nil, nil
}

func (r *memoryUsers) byEmail(email string) entity.User {
	u, _ := r.FindByEmail(context.Background(), email)
	return *u
}

type memorySecurityLogs struct {
	mu   sync.Mutex
	logs []entity.SecurityLog
}

func (r *memorySecurityLogs) Log(_ context.Context, log *entity.SecurityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memorySecurityLogs) ListByUser(_ context.Context, userID int64, limit int) ([]entity.SecurityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var logs []entity.SecurityLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		if r.logs[i].UserID != nil && *r.logs[i].UserID == userID {
			logs = append(logs, r.logs[i])
		}
		if limit > 0 && len(logs) == limit {
			break
		}
	}
	return logs, nil
}

func (r *memorySecurityLogs) actions() []entity.SecurityAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]entity.SecurityAction, 0, len(r.logs))
	for _, l := range r.logs {
		actions = append(actions, l.Action)
	}
	return actions
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notification.Message
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.msgs = append(n.msgs, msg)
	return nil
}

func (n *recordingNotifier) sent() []notification.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Message(nil), n.msgs...)
}

type memoryCategories struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]entity.Category

	// referenced mimics the expenses foreign key.
	referenced func(categoryID int64) bool
}

func newMemoryCategories() *memoryCategories {
	return &memoryCategories{rows: make(map[int64]entity.Category)}
}

func (r *memoryCategories) Create(_ context.Context, category *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Name == category.Name {
			return repository.ErrDuplicate
		}
	}
	r.nextID++
	category.ID = r.nextID
	r.rows[category.ID] = *category
	return nil
}

func (r *memoryCategories) FindByID(_ context.Context, id int64) (*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *memoryCategories) FindByName(_ context.Context, name string) (*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Name == name {
			return &row, nil
		}
	}
	return nil, nil
}

func (r *memoryCategories) List(_ context.Context) ([]entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	categories := make([]entity.Category, 0, len(r.rows))
	for _, row := range r.rows {
		categories = append(categories, row)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r *memoryCategories) Update(_ context.Context, category *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[category.ID] = *category
	return nil
}

func (r *memoryCategories) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.referenced != nil && r.referenced(id) {
		return repository.ErrInUse
	}
	delete(r.rows, id)
	return nil
}

type memoryExpenses struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]entity.Expense

	sumFrom, sumTo time.Time
	total          int64
	totals         []entity.CategoryTotal
}

func newMemoryExpenses() *memoryExpenses {
	return &memoryExpenses{rows: make(map[int64]entity.Expense)}
}

func (r *memoryExpenses) Create(_ context.Context, expense *entity.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	expense.ID = r.nextID
	r.rows[expense.ID] = *expense
	return nil
}

func (r *memoryExpenses) FindByID(_ context.Context, id int64) (*entity.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *memoryExpenses) ListByUser(_ context.Context, userID int64) ([]entity.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expenses []entity.Expense
	for _, row := range r.rows {
		if row.UserID == userID {
			expenses = append(expenses, row)
		}
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].ID < expenses[j].ID })
	return expenses, nil
}

func (r *memoryExpenses) Update(_ context.Context, expense *entity.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[expense.ID] = *expense
	return nil
}

func (r *memoryExpenses) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memoryExpenses) references(categoryID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.CategoryID == categoryID {
			return true
		}
	}
	return false
}

func (r *memoryExpenses) SumByUser(_ context.Context, _ int64, from, to time.Time) (int64, error) {
	r.sumFrom, r.sumTo = from, to
	return r.total, nil
}

func (r *memoryExpenses) SumByCategory(_ context.Context, _ int64, from, to time.Time) ([]entity.CategoryTotal, error) {
	r.sumFrom, r.sumTo = from, to
	return r.totals, nil
}

// mapCache is a Cache that counts reads and can be told to fail.
type mapCache struct {
	mu     sync.Mutex
	values map[string][]byte
	hits   int
	err    error
}

func newMapCache() *mapCache {
	return &mapCache{values: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dst)
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
