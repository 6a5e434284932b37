package expense

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const (
	expensesBucketName = "expenses"
	settingsBucketName = "settings"
	budgetsBucketName  = "category_budgets"
	pendingBucketName  = "pending"
)

// ErrNotFound is returned when an expense does not exist for the user
var ErrNotFound = errors.New("expense not found")

// DB defines the interface for database operations
type DB interface {
	// AddExpense stores a new expense and sets its ID
	AddExpense(e *Expense) error

	// GetExpense retrieves one of the user's expenses by ID
	GetExpense(userKey string, id uint64) (*Expense, error)

	// ListRecent returns the user's newest expenses first
	ListRecent(userKey string, limit int) ([]*Expense, error)

	// ListExpenses returns all of the user's expenses oldest first
	ListExpenses(userKey string) ([]*Expense, error)

	// TotalBetween sums the user's expenses created in [start, end)
	TotalBetween(userKey string, start, end time.Time) (int64, error)

	// TotalByCategoryBetween sums one category of the user's expenses created in [start, end)
	TotalByCategoryBetween(userKey, category string, start, end time.Time) (int64, error)

	// TopCategoriesBetween returns the categories with the highest totals in [start, end)
	TopCategoriesBetween(userKey string, start, end time.Time, limit int) ([]CategoryTotal, error)

	// DeleteExpense removes one of the user's expenses, reporting whether it existed
	DeleteExpense(userKey string, id uint64) (bool, error)

	// ClearUser removes all expenses and category budgets of the user
	ClearUser(userKey string) (int, error)

	// GetWeeklyBudget returns the user's weekly budget or def when none is set
	GetWeeklyBudget(userKey string, def int64) (int64, error)

	// SetWeeklyBudget stores the user's weekly budget
	SetWeeklyBudget(userKey string, amount int64) error

	// GetCategoryBudget returns the weekly limit set for a category
	GetCategoryBudget(userKey, category string) (int64, bool, error)

	// SetCategoryBudget stores a weekly limit for a category
	SetCategoryBudget(userKey, category string, limit int64) error

	// ListCategoryBudgets returns the user's category limits sorted by category
	ListCategoryBudgets(userKey string) ([]CategoryBudget, error)

	// GetPending returns the user's unconfirmed receipt, or nil
	GetPending(userKey string) (*PendingReceipt, error)

	// SavePending stores the user's unconfirmed receipt
	SavePending(userKey string, p *PendingReceipt) error

	// DeletePending removes the user's unconfirmed receipt
	DeletePending(userKey string) error

	// ConfirmPending stores e and removes the user's unconfirmed receipt in one transaction
	ConfirmPending(userKey string, e *Expense) error

	// Close closes the database connection
	Close() error
}

// userSettings is the per-user record in the settings bucket
type userSettings struct {
	WeeklyBudget int64 `json:"weekly_budget"`
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{expensesBucketName, settingsBucketName, budgetsBucketName, pendingBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// itob encodes an expense ID so keys sort numerically
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// budgetKey joins user and category; the NUL separator keeps one user's keys contiguous
func budgetKey(userKey, category string) []byte {
	return []byte(userKey + "\x00" + category)
}

// AddExpense stores a new expense and sets its ID
func (b *BoltDB) AddExpense(e *Expense) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return putExpense(tx, e)
	})
}

// putExpense assigns the next ID to e and writes it
func putExpense(tx *bbolt.Tx, e *Expense) error {
	bucket := tx.Bucket([]byte(expensesBucketName))
	id, err := bucket.NextSequence()
	if err != nil {
		return fmt.Errorf("allocating expense id: %w", err)
	}
	e.ID = id
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling expense: %w", err)
	}
	return bucket.Put(itob(id), data)
}

// GetExpense retrieves one of the user's expenses by ID
func (b *BoltDB) GetExpense(userKey string, id uint64) (*Expense, error) {
	var expense *Expense
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(expensesBucketName)).Get(itob(id))
		if data == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(data, &expense); err != nil {
			return fmt.Errorf("unmarshaling expense: %w", err)
		}
		if expense.UserKey != userKey {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// forEachUserExpense calls fn for every expense of the user in ID order
func forEachUserExpense(tx *bbolt.Tx, userKey string, fn func(e *Expense) error) error {
	return tx.Bucket([]byte(expensesBucketName)).ForEach(func(k, v []byte) error {
		var e Expense
		if err := json.Unmarshal(v, &e); err != nil {
			return fmt.Errorf("unmarshaling expense: %w", err)
		}
		if e.UserKey != userKey {
			return nil
		}
		return fn(&e)
	})
}

// ListExpenses returns all of the user's expenses oldest first
func (b *BoltDB) ListExpenses(userKey string) ([]*Expense, error) {
	expenses := make([]*Expense, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return forEachUserExpense(tx, userKey, func(e *Expense) error {
			expenses = append(expenses, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(expenses, func(a, b *Expense) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return expenses, nil
}

// ListRecent returns the user's newest expenses first
func (b *BoltDB) ListRecent(userKey string, limit int) ([]*Expense, error) {
	expenses, err := b.ListExpenses(userKey)
	if err != nil {
		return nil, err
	}
	slices.Reverse(expenses)
	if limit > 0 && len(expenses) > limit {
		expenses = expenses[:limit]
	}
	return expenses, nil
}

// inRange reports whether t falls in the half-open window [start, end)
func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// TotalBetween sums the user's expenses created in [start, end)
func (b *BoltDB) TotalBetween(userKey string, start, end time.Time) (int64, error) {
	var total int64
	err := b.db.View(func(tx *bbolt.Tx) error {
		return forEachUserExpense(tx, userKey, func(e *Expense) error {
			if inRange(e.CreatedAt, start, end) {
				total += e.Amount
			}
			return nil
		})
	})
	return total, err
}

// TotalByCategoryBetween sums one category of the user's expenses created in [start, end)
func (b *BoltDB) TotalByCategoryBetween(userKey, category string, start, end time.Time) (int64, error) {
	var total int64
	err := b.db.View(func(tx *bbolt.Tx) error {
		return forEachUserExpense(tx, userKey, func(e *Expense) error {
			if e.Category == category && inRange(e.CreatedAt, start, end) {
				total += e.Amount
			}
			return nil
		})
	})
	return total, err
}

// TopCategoriesBetween returns the categories with the highest totals in [start, end).
// Equal totals are ordered by category name.
func (b *BoltDB) TopCategoriesBetween(userKey string, start, end time.Time, limit int) ([]CategoryTotal, error) {
	sums := make(map[string]int64)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return forEachUserExpense(tx, userKey, func(e *Expense) error {
			if inRange(e.CreatedAt, start, end) {
				sums[e.Category] += e.Amount
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	totals := make([]CategoryTotal, 0, len(sums))
	for category, total := range sums {
		totals = append(totals, CategoryTotal{Category: category, Total: total})
	}
	slices.SortFunc(totals, func(a, b CategoryTotal) int {
		if a.Total != b.Total {
			if a.Total > b.Total {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Category, b.Category)
	})
	if limit > 0 && len(totals) > limit {
		totals = totals[:limit]
	}
	return totals, nil
}

// resetSequenceIfEmpty restarts expense IDs at 1 once no expenses remain
func resetSequenceIfEmpty(bucket *bbolt.Bucket) error {
	if k, _ := bucket.Cursor().First(); k != nil {
		return nil
	}
	return bucket.SetSequence(0)
}

// DeleteExpense removes one of the user's expenses, reporting whether it existed
func (b *BoltDB) DeleteExpense(userKey string, id uint64) (bool, error) {
	deleted := false
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(expensesBucketName))
		data := bucket.Get(itob(id))
		if data == nil {
			return nil
		}
		var e Expense
		if err := json.Unmarshal(data, &e); err != nil {
			return fmt.Errorf("unmarshaling expense: %w", err)
		}
		if e.UserKey != userKey {
			return nil
		}
		if err := bucket.Delete(itob(id)); err != nil {
			return err
		}
		deleted = true
		return resetSequenceIfEmpty(bucket)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// ClearUser removes all expenses and category budgets of the user
func (b *BoltDB) ClearUser(userKey string) (int, error) {
	count := 0
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(expensesBucketName))
		var keys [][]byte
		err := forEachUserExpense(tx, userKey, func(e *Expense) error {
			keys = append(keys, itob(e.ID))
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		count = len(keys)

		budgets := tx.Bucket([]byte(budgetsBucketName))
		prefix := budgetKey(userKey, "")
		var budgetKeys [][]byte
		c := budgets.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			budgetKeys = append(budgetKeys, slices.Clone(k))
		}
		for _, k := range budgetKeys {
			if err := budgets.Delete(k); err != nil {
				return err
			}
		}

		return resetSequenceIfEmpty(bucket)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetWeeklyBudget returns the user's weekly budget or def when none is set
func (b *BoltDB) GetWeeklyBudget(userKey string, def int64) (int64, error) {
	budget := def
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(settingsBucketName)).Get([]byte(userKey))
		if data == nil {
			return nil
		}
		var settings userSettings
		if err := json.Unmarshal(data, &settings); err != nil {
			return fmt.Errorf("unmarshaling settings: %w", err)
		}
		budget = settings.WeeklyBudget
		return nil
	})
	if err != nil {
		return 0, err
	}
	return budget, nil
}

// SetWeeklyBudget stores the user's weekly budget
func (b *BoltDB) SetWeeklyBudget(userKey string, amount int64) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(userSettings{WeeklyBudget: amount})
		if err != nil {
			return fmt.Errorf("marshaling settings: %w", err)
		}
		return tx.Bucket([]byte(settingsBucketName)).Put([]byte(userKey), data)
	})
}

// GetCategoryBudget returns the weekly limit set for a category
func (b *BoltDB) GetCategoryBudget(userKey, category string) (int64, bool, error) {
	var (
		limit int64
		found bool
	)
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(budgetsBucketName)).Get(budgetKey(userKey, category))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &limit)
	})
	if err != nil {
		return 0, false, fmt.Errorf("reading category budget: %w", err)
	}
	return limit, found, nil
}

// SetCategoryBudget stores a weekly limit for a category
func (b *BoltDB) SetCategoryBudget(userKey, category string, limit int64) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(limit)
		if err != nil {
			return fmt.Errorf("marshaling category budget: %w", err)
		}
		return tx.Bucket([]byte(budgetsBucketName)).Put(budgetKey(userKey, category), data)
	})
}

// ListCategoryBudgets returns the user's category limits sorted by category
func (b *BoltDB) ListCategoryBudgets(userKey string) ([]CategoryBudget, error) {
	budgets := make([]CategoryBudget, 0)
	prefix := budgetKey(userKey, "")
	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(budgetsBucketName)).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var limit int64
			if err := json.Unmarshal(v, &limit); err != nil {
				return fmt.Errorf("unmarshaling category budget: %w", err)
			}
			budgets = append(budgets, CategoryBudget{
				Category: string(k[len(prefix):]),
				Limit:    limit,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return budgets, nil
}

// GetPending returns the user's unconfirmed receipt, or nil
func (b *BoltDB) GetPending(userKey string) (*PendingReceipt, error) {
	var pending *PendingReceipt
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(pendingBucketName)).Get([]byte(userKey))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &pending)
	})
	if err != nil {
		return nil, fmt.Errorf("reading pending receipt: %w", err)
	}
	return pending, nil
}

// SavePending stores the user's unconfirmed receipt
func (b *BoltDB) SavePending(userKey string, p *PendingReceipt) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshaling pending receipt: %w", err)
		}
		return tx.Bucket([]byte(pendingBucketName)).Put([]byte(userKey), data)
	})
}

// DeletePending removes the user's unconfirmed receipt
func (b *BoltDB) DeletePending(userKey string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(pendingBucketName)).Delete([]byte(userKey))
	})
}

// ConfirmPending stores e and removes the user's unconfirmed receipt in one transaction
func (b *BoltDB) ConfirmPending(userKey string, e *Expense) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if err := putExpense(tx, e); err != nil {
			return err
		}
		return tx.Bucket([]byte(pendingBucketName)).Delete([]byte(userKey))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
