package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/cuanbot/internal/extract"
	"github.com/zombor/cuanbot/internal/scanning"
)

const (
	// DefaultWeeklyBudget applies to users who never set one
	DefaultWeeklyBudget int64 = 2_100_000

	// DefaultOCRTimeout bounds a single OCR call
	DefaultOCRTimeout = 45 * time.Second

	// minDefaultCategoryBudget is the floor of the implied per-category budget
	minDefaultCategoryBudget int64 = 300_000

	defaultListLimit = 10
	maxListLimit     = 50
)

// Replies that do not depend on stored data
const (
	emptyMessageReply  = "Kirim item + nominal ya. Contoh: `beli kopi 25rb`"
	unknownFormatReply = "Formatnya belum kebaca.\nCoba: `beli kopi 25rb` atau `/help` untuk lihat contoh lengkap."
	investmentReply    = "Aku fokus bantu pencatatan, budget, dan penghematan dulu ya.\n" +
		"Kalau mau, aku bisa bantu hitung pos pengeluaran yang bisa dipangkas."
	storageErrorReply = "Maaf, catatanmu lagi nggak bisa diakses. Coba lagi sebentar ya."
	scanInactiveReply = "Fitur scan struk belum aktif. Atur `--ocr` dan kunci API-nya dulu ya."
)

const helpText = "Halo, aku CuanBot. Catat pengeluaran jadi cepat dan rapi.\n\n" +
	"Contoh input:\n" +
	"- Beli kopi 25rb\n" +
	"- Bayar listrik 450000 kategori Tagihan\n\n" +
	"Perintah utama:\n" +
	"- /total (hari ini)\n" +
	"- /total minggu\n" +
	"- /total bulan\n" +
	"- /laporan minggu ini\n" +
	"- /list 10\n" +
	"- /budget (lihat budget mingguan)\n" +
	"- /budget 2500000 (atur budget mingguan)\n" +
	"- /budget kategori Makanan & Minuman 700000\n" +
	"- /hapus <id>\n" +
	"- /reset ya\n\n" +
	"Fitur tambahan:\n" +
	"- Split bill: ketik kalimat dengan 'patungan' atau 'split bill'\n" +
	"- Scan struk: kirim foto struk lalu konfirmasi simpan"

var (
	// investmentTopics are declined politely
	investmentTopics = []string{"investasi", "crypto", "kripto", "forex", "leverage", "futures"}

	categoryBudgetCommandRe = regexp.MustCompile(`(?i)budget\s+kategori`)
	categoryBudgetRe        = regexp.MustCompile(`(?i)budget\s+kategori\s+(.+?)\s+((?:rp\.?\s*)?\d[\d.,]*(?:\s*(?:rb|ribu|k|jt|juta))?)$`)
)

// IDGenerator generates unique names for archived receipt images
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Config holds the tunable parts of the Service
type Config struct {
	Location     *time.Location // Reporting timezone, UTC when nil
	WeeklyBudget int64          // Weekly budget for users who never set one
	OCRTimeout   time.Duration
	OCRDebug     bool // Log the raw OCR text of every scan
}

// Service handles the conversation with a user about their expenses
type Service struct {
	db          DB
	scanner     scanning.Scanner
	images      ImageStore
	idGenerator IDGenerator
	timeSource  TimeSource
	cfg         Config
}

// NewService creates a new Service with default ID generator and time source.
// scanner may be nil, in which case photos are answered with a hint.
func NewService(db DB, scanner scanning.Scanner, images ImageStore, cfg Config) *Service {
	return NewServiceWithDeps(db, scanner, images, cfg, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, images ImageStore, cfg Config, idGen IDGenerator, timeSrc TimeSource) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.WeeklyBudget <= 0 {
		cfg.WeeklyBudget = DefaultWeeklyBudget
	}
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = DefaultOCRTimeout
	}
	return &Service{
		db:          db,
		scanner:     scanner,
		images:      images,
		idGenerator: idGen,
		timeSource:  timeSrc,
		cfg:         cfg,
	}
}

// HelpText describes what the bot understands
func (s *Service) HelpText() string {
	return helpText
}

// HandleText answers a chat message. Slash commands are always handled directly;
// any other message first goes to a receipt that is waiting for confirmation.
func (s *Service) HandleText(ctx context.Context, userKey, text string) string {
	clean := strings.TrimSpace(text)

	if clean != "" && !strings.HasPrefix(clean, "/") {
		pending, err := s.db.GetPending(userKey)
		if err != nil {
			slog.Error("Failed to load pending receipt", "user", userKey, "error", err)
			return storageErrorReply
		}
		if pending != nil {
			reply, err := s.handlePending(userKey, pending, clean)
			if err != nil {
				slog.Error("Failed to update pending receipt", "user", userKey, "error", err)
				return storageErrorReply
			}
			return reply
		}
	}

	reply, err := s.handleMessage(userKey, clean)
	if err != nil {
		slog.Error("Failed to handle message", "user", userKey, "error", err)
		return storageErrorReply
	}
	return reply
}

// handleMessage dispatches commands, split bills and expense notes
func (s *Service) handleMessage(userKey, clean string) (string, error) {
	if clean == "" {
		return emptyMessageReply, nil
	}

	normalized := strings.ToLower(clean)
	tokens := strings.Fields(strings.Replace(normalized, "/", "", 1))
	var (
		command string
		args    []string
	)
	if len(tokens) > 0 {
		command, args = tokens[0], tokens[1:]
	}

	switch command {
	case "start", "help":
		return helpText, nil
	case "total":
		return s.replyTotal(userKey, args)
	case "list":
		return s.replyList(userKey, args)
	case "hapus":
		return s.replyDelete(userKey, args)
	case "reset":
		return s.replyReset(userKey, args)
	case "budget", "anggaran":
		return s.replyBudget(userKey, clean, args)
	case "laporan", "report":
		return s.replyReport(userKey, clean, args)
	}

	switch {
	case strings.HasPrefix(normalized, "atur budget"), strings.HasPrefix(normalized, "set budget"):
		return s.replyBudget(userKey, clean, nil)
	case strings.Contains(normalized, "laporan minggu"):
		return s.renderReport(userKey, periodWeek)
	case strings.Contains(normalized, "laporan bulan"):
		return s.renderReport(userKey, periodMonth)
	}
	for _, topic := range investmentTopics {
		if strings.Contains(normalized, topic) {
			return investmentReply, nil
		}
	}

	if split, err := extract.ParseSplitBill(clean); err == nil {
		return splitBillReply(split), nil
	}

	if parsed, err := extract.ParseExpenseInput(clean); err == nil {
		return s.recordExpense(&Expense{
			UserKey:  userKey,
			Item:     parsed.Item,
			Amount:   parsed.Amount,
			Category: parsed.Category,
		})
	}

	return unknownFormatReply, nil
}

// recordExpense stores e and confirms it, appending any budget alerts
func (s *Service) recordExpense(e *Expense) (string, error) {
	return s.storeExpense(e, s.db.AddExpense)
}

// storeExpense is recordExpense with the write done by store
func (s *Service) storeExpense(e *Expense, store func(*Expense) error) (string, error) {
	e.CreatedAt = s.timeSource.Now().UTC()
	if err := store(e); err != nil {
		return "", fmt.Errorf("adding expense: %w", err)
	}

	confirmation := fmt.Sprintf("Siap! %s senilai %s sudah masuk catatan %s. ✅\nID transaksi: #%d",
		e.Item, extract.FormatIDR(e.Amount), e.Category, e.ID)

	alerts, err := s.budgetAlerts(e.UserKey, e.Category)
	if err != nil {
		return "", err
	}
	if alerts != "" {
		return confirmation + "\n\n" + alerts, nil
	}
	return confirmation, nil
}

// weeklyBudget returns the user's weekly budget
func (s *Service) weeklyBudget(userKey string) (int64, error) {
	budget, err := s.db.GetWeeklyBudget(userKey, s.cfg.WeeklyBudget)
	if err != nil {
		return 0, fmt.Errorf("getting weekly budget: %w", err)
	}
	return budget, nil
}

// defaultCategoryBudget is the limit applied to categories without their own budget
func defaultCategoryBudget(weekly int64) int64 {
	return max(minDefaultCategoryBudget, weekly*3/10)
}

// budgetAlerts warns when this week's spending reaches 80% or 100% of the
// weekly budget or of the category's budget
func (s *Service) budgetAlerts(userKey, category string) (string, error) {
	var alerts []string

	weekly, err := s.weeklyBudget(userKey)
	if err != nil {
		return "", err
	}
	start, end := s.weekRange()
	weekTotal, err := s.db.TotalBetween(userKey, start, end)
	if err != nil {
		return "", fmt.Errorf("totaling week: %w", err)
	}
	if weekly > 0 {
		switch {
		case weekTotal >= weekly:
			alerts = append(alerts, fmt.Sprintf("Budget mingguan terlewati (%s / %s). Gas rem dikit ya 😄",
				extract.FormatIDR(weekTotal), extract.FormatIDR(weekly)))
		case weekTotal*5 >= weekly*4:
			alerts = append(alerts, fmt.Sprintf("Budget mingguan sudah %d%% (%s / %s).",
				weekTotal*100/weekly, extract.FormatIDR(weekTotal), extract.FormatIDR(weekly)))
		}
	}

	limit, found, err := s.db.GetCategoryBudget(userKey, category)
	if err != nil {
		return "", fmt.Errorf("getting category budget: %w", err)
	}
	if !found {
		limit = defaultCategoryBudget(weekly)
	}
	categoryTotal, err := s.db.TotalByCategoryBetween(userKey, category, start, end)
	if err != nil {
		return "", fmt.Errorf("totaling category: %w", err)
	}
	if limit > 0 {
		switch {
		case categoryTotal >= limit:
			alerts = append(alerts, fmt.Sprintf("Kategori %s sudah lewat budget (%s / %s).",
				category, extract.FormatIDR(categoryTotal), extract.FormatIDR(limit)))
		case categoryTotal*5 >= limit*4:
			alerts = append(alerts, fmt.Sprintf("Kategori %s sudah %d%% dari limit (%s / %s).",
				category, categoryTotal*100/limit, extract.FormatIDR(categoryTotal), extract.FormatIDR(limit)))
		}
	}

	return strings.Join(alerts, "\n"), nil
}

// isDigits reports whether s is a non-empty run of ASCII digits
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *Service) replyList(userKey string, args []string) (string, error) {
	limit := defaultListLimit
	if len(args) > 0 && isDigits(args[0]) {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			n = maxListLimit
		}
		limit = max(1, min(maxListLimit, n))
	}

	records, err := s.db.ListRecent(userKey, limit)
	if err != nil {
		return "", fmt.Errorf("listing expenses: %w", err)
	}
	if len(records) == 0 {
		return "Belum ada transaksi.", nil
	}

	rows := make([]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, fmt.Sprintf("#%d | %s | %s | %s | %s",
			rec.ID, rec.CreatedAt.In(s.cfg.Location).Format("02-01 15:04"),
			rec.Item, extract.FormatIDR(rec.Amount), rec.Category))
	}
	return "Transaksi terakhir:\n" + strings.Join(rows, "\n"), nil
}

func (s *Service) replyDelete(userKey string, args []string) (string, error) {
	if len(args) == 0 {
		return "Gunakan: /hapus <id>. Contoh: /hapus 10", nil
	}
	if !isDigits(args[0]) {
		return "ID transaksi harus angka. Contoh: /hapus 10", nil
	}

	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Sprintf("Transaksi #%s tidak ditemukan.", args[0]), nil
	}
	if err := s.DeleteExpense(userKey, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Sprintf("Transaksi #%d tidak ditemukan.", id), nil
		}
		return "", err
	}
	return fmt.Sprintf("Transaksi #%d dihapus.", id), nil
}

func (s *Service) replyReset(userKey string, args []string) (string, error) {
	if len(args) == 0 || args[0] != "ya" {
		return "Untuk konfirmasi, gunakan: /reset ya", nil
	}

	expenses, err := s.db.ListExpenses(userKey)
	if err != nil {
		return "", fmt.Errorf("listing expenses for reset: %w", err)
	}
	count, err := s.db.ClearUser(userKey)
	if err != nil {
		return "", fmt.Errorf("clearing user: %w", err)
	}
	for _, e := range expenses {
		s.removeImage(e.ReceiptFile)
	}
	return fmt.Sprintf("Semua data kamu dihapus (%d transaksi).", count), nil
}

func (s *Service) replyBudget(userKey, raw string, args []string) (string, error) {
	if categoryBudgetCommandRe.MatchString(raw) {
		m := categoryBudgetRe.FindStringSubmatch(raw)
		if m == nil {
			return "Format budget kategori: /budget kategori <nama kategori> <nominal>", nil
		}
		category := extract.NormalizeCategory(m[1])
		amount, ok := extract.ParseAmountFromText(m[2])
		if !ok {
			return "Nominal budget kategori tidak valid.", nil
		}
		if err := s.db.SetCategoryBudget(userKey, category, amount); err != nil {
			return "", fmt.Errorf("setting category budget: %w", err)
		}
		return fmt.Sprintf("Budget kategori %s diset ke %s per minggu.", category, extract.FormatIDR(amount)), nil
	}

	var (
		amount int64
		ok     bool
	)
	if len(args) > 0 {
		amount, ok = extract.ParseAmountFromText(strings.Join(args, " "))
	}
	if !ok {
		stripped := strings.ReplaceAll(strings.ReplaceAll(strings.ToLower(raw), "atur", ""), "set", "")
		amount, ok = extract.ParseAmountFromText(stripped)
	}
	if ok {
		if err := s.db.SetWeeklyBudget(userKey, amount); err != nil {
			return "", fmt.Errorf("setting weekly budget: %w", err)
		}
		return fmt.Sprintf("Budget mingguan kamu sekarang %s.", extract.FormatIDR(amount)), nil
	}

	weekly, err := s.weeklyBudget(userKey)
	if err != nil {
		return "", err
	}
	budgets, err := s.db.ListCategoryBudgets(userKey)
	if err != nil {
		return "", fmt.Errorf("listing category budgets: %w", err)
	}
	if len(budgets) == 0 {
		return fmt.Sprintf("Budget mingguan saat ini: %s.\n"+
			"Belum ada budget kategori khusus.\n"+
			"Contoh set: /budget kategori Makanan & Minuman 700000", extract.FormatIDR(weekly)), nil
	}

	lines := []string{"Budget mingguan: " + extract.FormatIDR(weekly), "Budget kategori:"}
	for _, b := range budgets {
		lines = append(lines, fmt.Sprintf("- %s: %s", b.Category, extract.FormatIDR(b.Limit)))
	}
	return strings.Join(lines, "\n"), nil
}

// splitBillReply breaks a shared bill down per person with a message ready to forward
func splitBillReply(split *extract.SplitBill) string {
	total := extract.FormatIDR(split.GrandTotal())
	perPerson := extract.FormatIDR(split.PerPerson())
	return strings.Join([]string{
		"Mode patungan aktif 🤝",
		"Subtotal: " + extract.FormatIDR(split.Subtotal),
		"Service: " + extract.FormatIDR(split.ServiceAmount),
		"Pajak: " + extract.FormatIDR(split.TaxAmount),
		"Total akhir: " + total,
		fmt.Sprintf("Per orang (%d orang): %s", split.People, perPerson),
		"",
		"Teks tagih (copy):",
		fmt.Sprintf("`Patungan ya. Total %s untuk %d orang, jadi per orang %s.`", total, split.People, perPerson),
	}, "\n")
}

// HandleImage reads a receipt photo and keeps the result as a pending receipt
// until the user confirms it. OCR failures are answered like an unreadable photo.
func (s *Service) HandleImage(ctx context.Context, userKey string, data []byte, contentType string) string {
	if s.scanner == nil {
		return scanInactiveReply
	}

	ocrCtx, cancel := context.WithTimeout(ctx, s.cfg.OCRTimeout)
	defer cancel()

	text, err := s.scanner.ReadText(ocrCtx, data, contentType)
	if err != nil {
		slog.Warn("Failed to read receipt text",
			"user", userKey,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		text = ""
	}
	if s.cfg.OCRDebug {
		slog.Info("OCR raw text", "user", userKey, "text", text)
	}

	result := extract.ExtractReceiptData(strings.Split(text, "\n"))
	if result.NeedsManualConfirmation || result.Receipt == nil {
		return result.ReplyText
	}

	reply, err := s.startPending(userKey, result, data, contentType)
	if err != nil {
		slog.Error("Failed to save pending receipt", "user", userKey, "error", err)
		return storageErrorReply
	}
	return reply
}

// GetExpense returns one of the user's expenses
func (s *Service) GetExpense(userKey string, id uint64) (*Expense, error) {
	e, err := s.db.GetExpense(userKey, id)
	if err != nil {
		return nil, fmt.Errorf("getting expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns the user's newest expenses first
func (s *Service) ListExpenses(userKey string, limit int) ([]*Expense, error) {
	expenses, err := s.db.ListRecent(userKey, limit)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	return expenses, nil
}

// DeleteExpense removes an expense and its archived receipt image
func (s *Service) DeleteExpense(userKey string, id uint64) error {
	e, err := s.db.GetExpense(userKey, id)
	if err != nil {
		return fmt.Errorf("getting expense for deletion: %w", err)
	}

	deleted, err := s.db.DeleteExpense(userKey, id)
	if err != nil {
		return fmt.Errorf("deleting expense from database: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	s.removeImage(e.ReceiptFile)
	return nil
}

// GetReceiptImage returns the archived receipt image of an expense
func (s *Service) GetReceiptImage(userKey string, id uint64) ([]byte, string, error) {
	e, err := s.db.GetExpense(userKey, id)
	if err != nil {
		return nil, "", fmt.Errorf("getting expense: %w", err)
	}
	if e.ReceiptFile == "" {
		return nil, "", fmt.Errorf("expense %d has no receipt image: %w", id, ErrNotFound)
	}

	data, err := s.images.Get(e.ReceiptFile)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt image: %w", err)
	}
	return data, e.ContentType, nil
}

// removeImage deletes an archived image, logging failures
func (s *Service) removeImage(name string) {
	if name == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(name); err != nil {
		slog.Warn("Failed to delete receipt image", "filename", name, "error", err)
	}
}
