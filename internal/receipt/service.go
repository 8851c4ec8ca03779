package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zombor/pantry-tracker/internal/expiry"
	"github.com/zombor/pantry-tracker/internal/parsing"
	"github.com/zombor/pantry-tracker/internal/scanning"
)

// IDGenerator generates unique IDs for receipts, items and feedback
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// Improver re-scores an item when a corroborating photo is supplied.
// The returned confidence is never lower than the item's.
type Improver interface {
	Improve(ctx context.Context, item Item, photo []byte, contentType string) (Item, error)
}

// Learner accepts the real expiry date of an item. It is fire-and-forget.
type Learner interface {
	Learn(itemID string, actualExpiry time.Time)
}

type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

var (
	filenameUnsafeRe = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
)

// Service runs the receipt pipeline and answers inventory queries
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
	categorizer *expiry.Categorizer
	estimator   *expiry.Estimator
	improver    Improver
	learner     Learner
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage) *Service {
	return NewServiceWithDeps(db, scanner, storage, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	table := expiry.DefaultTable()
	s := &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
		categorizer: expiry.NewCategorizer(table),
		estimator:   expiry.NewEstimator(table),
		learner:     NewFeedbackLog(db, idGen, timeSrc),
	}
	if scanner != nil {
		s.improver = NewPhotoCorroborator(scanner, table)
	}
	return s
}

// SetImprover replaces the photo re-scoring step; nil disables it
func (s *Service) SetImprover(improver Improver) {
	s.improver = improver
}

// SetLearner replaces the feedback hook
func (s *Service) SetLearner(learner Learner) {
	s.learner = learner
}

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = filenameUnsafeRe.ReplaceAllString(base, "")
	base = strings.TrimSpace(whitespaceRe.ReplaceAllString(base, " "))

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}
	return base + ext
}

// ProcessImage archives an upload, extracts its text and runs the pipeline.
// Nothing is kept when OCR fails or no items are found.
func (s *Service) ProcessImage(ctx context.Context, filename string, data []byte, contentType string) (*ProcessedReceipt, error) {
	if s.scanner == nil {
		return nil, fmt.Errorf("%w: no scanner configured", ErrOCRFailure)
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	text, err := s.scanner.ExtractText(ctx, data, contentType)
	if err == nil && strings.TrimSpace(text) == "" {
		err = scanning.ErrNoText
	}
	if err != nil {
		slog.Error("Failed to extract receipt text",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.discard(savedPath)
		return nil, fmt.Errorf("%w: %w", ErrOCRFailure, err)
	}

	receipt, err := s.assemble(ctx, id, text, now)
	if err != nil {
		s.discard(savedPath)
		return nil, err
	}
	receipt.Filename = savedPath
	receipt.ContentType = contentType

	if err := s.db.SaveReceipt(receipt); err != nil {
		s.discard(savedPath)
		return nil, fmt.Errorf("saving receipt to database: %w", err)
	}

	slog.Info("Processed receipt", "id", receipt.ID, "store", receipt.StoreName, "items", len(receipt.Items))
	return receipt, nil
}

// ProcessText runs the pipeline on already-extracted receipt text
func (s *Service) ProcessText(ctx context.Context, text string) (*ProcessedReceipt, error) {
	receipt, err := s.assemble(ctx, s.idGenerator.Generate(), text, s.timeSource.Now())
	if err != nil {
		return nil, err
	}
	if err := s.db.SaveReceipt(receipt); err != nil {
		return nil, fmt.Errorf("saving receipt to database: %w", err)
	}

	slog.Info("Processed receipt text", "id", receipt.ID, "store", receipt.StoreName, "items", len(receipt.Items))
	return receipt, nil
}

func (s *Service) discard(savedPath string) {
	if err := s.storage.Delete(savedPath); err != nil {
		slog.Warn("Failed to delete file", "filename", savedPath, "error", err)
	}
}

// assemble parses text into a receipt. Items are built concurrently; the
// result keeps receipt order and a cancelled context fails the whole receipt.
func (s *Service) assemble(ctx context.Context, id, text string, now time.Time) (*ProcessedReceipt, error) {
	parsed := parsing.ParseReceipt(text, now)
	if len(parsed.Items) == 0 {
		return nil, ErrEmptyReceipt
	}

	ids := make([]string, len(parsed.Items))
	for i := range ids {
		ids[i] = s.idGenerator.Generate()
	}

	items := make([]Item, len(parsed.Items))
	g, gctx := errgroup.WithContext(ctx)
	for i, raw := range parsed.Items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i] = s.buildItem(ids[i], raw, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("processing items: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("processing items: %w", err)
	}

	return &ProcessedReceipt{
		ID:             id,
		StoreName:      parsed.StoreName,
		StoreAddress:   parsed.StoreAddress,
		Date:           parsed.Date,
		TotalAmount:    parsed.Total,
		Items:          items,
		RawText:        text,
		ProcessingDate: now,
	}, nil
}

func (s *Service) buildItem(id string, raw parsing.RawLineItem, now time.Time) Item {
	pq := parsing.ParseItemName(raw.RawName)
	category := s.categorizer.Categorize(pq.CleanName)
	est := s.estimator.EstimateItem(raw.RawName, pq.CleanName, category, now)

	return Item{
		ID:                  id,
		Name:                cases.Title(language.English).String(pq.CleanName),
		OriginalName:        raw.RawName,
		Quantity:            pq.Quantity,
		Unit:                pq.Unit,
		Price:               raw.Price,
		Category:            category,
		EstimatedExpiryDate: est.ExpiresOn,
		ShelfLifeDays:       est.ShelfLifeDays,
		Confidence:          est.Confidence,
	}
}

// GetReceipt retrieves a receipt by ID
func (s *Service) GetReceipt(id string) (*ProcessedReceipt, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	return receipt, nil
}

// ListReceipts returns all receipts, most recently processed first
func (s *Service) ListReceipts() ([]*ProcessedReceipt, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	sort.SliceStable(receipts, func(i, j int) bool {
		return receipts[i].ProcessingDate.After(receipts[j].ProcessingDate)
	})
	return receipts, nil
}

// DeleteReceipt removes a receipt, its item index and its upload
func (s *Service) DeleteReceipt(id string) error {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return fmt.Errorf("getting receipt for deletion: %w", err)
	}

	if receipt.Filename != "" {
		if err := s.storage.Delete(receipt.Filename); err != nil {
			// Log error but continue with database deletion
			slog.Warn("Failed to delete file", "filename", receipt.Filename, "error", err)
		}
	}

	if err := s.db.DeleteReceipt(id); err != nil {
		return fmt.Errorf("deleting receipt from database: %w", err)
	}
	return nil
}

// GetReceiptFile retrieves the original upload for a receipt
func (s *Service) GetReceiptFile(id string) ([]byte, string, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt: %w", err)
	}
	if receipt.Filename == "" {
		return nil, "", fmt.Errorf("receipt %s has no file: %w", id, ErrNotFound)
	}

	data, err := s.storage.Get(receipt.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}
	return data, receipt.ContentType, nil
}

// GetItem retrieves a single item by ID
func (s *Service) GetItem(id string) (*Item, error) {
	item, _, err := s.db.GetItem(id)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ExpiringItems returns items expiring from today up to days from now,
// soonest first
func (s *Service) ExpiringItems(days int) ([]Item, error) {
	if days < 0 {
		return nil, fmt.Errorf("days must not be negative")
	}

	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}

	now := s.timeSource.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := today.AddDate(0, 0, days)

	items := make([]Item, 0)
	for _, r := range receipts {
		for _, item := range r.Items {
			if item.EstimatedExpiryDate.Before(today) || item.EstimatedExpiryDate.After(cutoff) {
				continue
			}
			items = append(items, item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].EstimatedExpiryDate.Before(items[j].EstimatedExpiryDate)
	})
	return items, nil
}

// ImproveItem re-scores a stored item against a corroborating photo. The
// stored receipt is left untouched.
func (s *Service) ImproveItem(ctx context.Context, itemID string, photo []byte, contentType string) (*Item, error) {
	if s.improver == nil {
		return nil, ErrNoImprover
	}

	item, err := s.GetItem(itemID)
	if err != nil {
		return nil, err
	}

	improved, err := s.improver.Improve(ctx, *item, photo, contentType)
	if err != nil {
		return nil, fmt.Errorf("improving item: %w", err)
	}
	improved.Confidence = expiry.Round(expiry.Clamp(max(improved.Confidence, item.Confidence)))
	return &improved, nil
}

// Learn forwards an observed expiry date to the feedback hook
func (s *Service) Learn(itemID string, actualExpiry time.Time) {
	if s.learner == nil {
		return
	}
	s.learner.Learn(itemID, actualExpiry)
}

// ListFeedback returns all recorded expiry observations
func (s *Service) ListFeedback() ([]*Feedback, error) {
	feedback, err := s.db.ListFeedback()
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	return feedback, nil
}

// IsNotFound reports whether err means an unknown receipt or item
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
