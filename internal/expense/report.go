package expense

import (
	"fmt"
	"strings"
	"time"

	"github.com/zombor/cuanbot/internal/extract"
)

// period is a reporting window in the configured timezone
type period int

const (
	periodDay period = iota
	periodWeek
	periodMonth
)

// dayRange returns today's local midnight to the next one
func (s *Service) dayRange() (time.Time, time.Time) {
	now := s.timeSource.Now().In(s.cfg.Location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.cfg.Location)
	return start, start.AddDate(0, 0, 1)
}

// weekRange returns the current week starting Monday at local midnight
func (s *Service) weekRange() (time.Time, time.Time) {
	day, _ := s.dayRange()
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// monthRange returns the current calendar month in local time
func (s *Service) monthRange() (time.Time, time.Time) {
	now := s.timeSource.Now().In(s.cfg.Location)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.cfg.Location)
	return start, start.AddDate(0, 1, 0)
}

func (s *Service) rangeFor(p period) (time.Time, time.Time) {
	switch p {
	case periodWeek:
		return s.weekRange()
	case periodMonth:
		return s.monthRange()
	}
	return s.dayRange()
}

// total sums the user's spending over a period
func (s *Service) total(userKey string, p period) (int64, error) {
	start, end := s.rangeFor(p)
	total, err := s.db.TotalBetween(userKey, start, end)
	if err != nil {
		return 0, fmt.Errorf("totaling expenses: %w", err)
	}
	return total, nil
}

func (s *Service) replyTotal(userKey string, args []string) (string, error) {
	joined := strings.Join(args, " ")
	p, label := periodDay, "hari ini"
	switch {
	case strings.Contains(joined, "bulan"):
		p, label = periodMonth, "bulan ini"
	case strings.Contains(joined, "minggu"):
		p, label = periodWeek, "minggu ini"
	}

	total, err := s.total(userKey, p)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Total pengeluaran %s: %s", label, extract.FormatIDR(total)), nil
}

func (s *Service) replyReport(userKey, raw string, args []string) (string, error) {
	joined := strings.ToLower(raw)
	if len(args) > 0 {
		joined = strings.Join(args, " ")
	}
	if strings.Contains(joined, "bulan") {
		return s.renderReport(userKey, periodMonth)
	}
	return s.renderReport(userKey, periodWeek)
}

// renderReport summarizes a week or month: total, top three categories and
// what is left of the budget. The monthly budget is four weekly budgets.
func (s *Service) renderReport(userKey string, p period) (string, error) {
	weekly, err := s.weeklyBudget(userKey)
	if err != nil {
		return "", err
	}

	title, budget, budgetLabel := "Laporan minggu ini", weekly, "Sisa anggaran mingguan"
	if p == periodMonth {
		title, budget, budgetLabel = "Laporan bulan ini", weekly*4, "Sisa estimasi anggaran bulanan"
	}

	start, end := s.rangeFor(p)
	total, err := s.db.TotalBetween(userKey, start, end)
	if err != nil {
		return "", fmt.Errorf("totaling expenses: %w", err)
	}
	top, err := s.db.TopCategoriesBetween(userKey, start, end, 3)
	if err != nil {
		return "", fmt.Errorf("ranking categories: %w", err)
	}

	lines := []string{title + " 📊", "Total pengeluaran: " + extract.FormatIDR(total), "Top 3 kategori:"}
	if len(top) == 0 {
		lines = append(lines, "1. Belum ada transaksi.")
	}
	for i, c := range top {
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, c.Category, extract.FormatIDR(c.Total)))
	}

	remaining := budget - total
	if remaining >= 0 {
		lines = append(lines, fmt.Sprintf("%s: %s", budgetLabel, extract.FormatIDR(remaining)))
	} else {
		lines = append(lines, fmt.Sprintf("%s: %s (melewati budget)", budgetLabel, extract.FormatIDR(remaining)))
	}
	return strings.Join(lines, "\n"), nil
}
