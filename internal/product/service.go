package product

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ImageUploader stores an image on the asset host and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// Fields carries the raw admin form values. Empty strings mean "not sent".
type Fields struct {
	Title           string
	Price           string
	PriceAfterSolde string
	Category        string
	Description     string
	Quantities      map[Size]string
	EurQuantities   map[string]int
}

type CreateInput struct {
	Fields
	Images []ImageUpload
	Colors []string
}

type UpdateInput struct {
	Fields
	NewImages []ImageUpload
	Colors    []string
	// ExistingImages mirrors the edit form slot by slot: an existing URL keeps
	// that image, "" or a blob: preview marks the slot of a new upload.
	// Colors[i] belongs to slot i. nil keeps every existing image.
	ExistingImages []string
}

type Service interface {
	List(ctx context.Context, category string) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, input CreateInput) (*Product, error)
	Update(ctx context.Context, id string, input UpdateInput) (*Product, error)
	Delete(ctx context.Context, id string) error
	DecrementStock(ctx context.Context, items []StockItem) ([]StockResult, error)
}

type service struct {
	repo     Repository
	uploader ImageUploader
	now      func() time.Time
}

func NewService(repo Repository, uploader ImageUploader) Service {
	return &service{repo: repo, uploader: uploader, now: time.Now}
}

// ParseID validates id before any store access.
func ParseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, apperr.InvalidID(id)
	}
	return parsed, nil
}

func (s *service) List(ctx context.Context, category string) ([]Product, error) {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, "all") {
		category = ""
	}
	return s.repo.List(ctx, category)
}

func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	productID, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, productID)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateProduct"),
	)

	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(input.Price) == "" {
		return nil, ErrPriceRequired
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, ErrCategoryRequired
	}
	if len(input.Colors) > len(input.Images) {
		return nil, ErrTooManyColors
	}

	p := &Product{ID: uuid.New()}
	if err := applyFields(p, input.Fields); err != nil {
		return nil, err
	}

	images, err := s.uploadImages(ctx, input.Images, input.Colors)
	if err != nil {
		log.Error("image upload failed", zap.Error(err))
		return nil, err
	}
	p.Images = images

	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	log.Info("product created",
		zap.String("product_id", p.ID.String()),
		zap.String("category", string(p.Category)),
		zap.Int("image_count", len(p.Images)),
	)
	return p, nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (*Product, error) {
	productID, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateProduct"),
		zap.String("product_id", productID.String()),
	)

	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := applyFields(p, input.Fields); err != nil {
		return nil, err
	}

	kept, uploadColors := planImages(p.Images, input.ExistingImages, input.Colors, len(input.NewImages))
	uploaded, err := s.uploadImages(ctx, input.NewImages, uploadColors)
	if err != nil {
		log.Error("image upload failed", zap.Error(err))
		return nil, err
	}
	p.Images = append(kept, uploaded...)
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		log.Error("failed to update product", zap.Error(err))
		return nil, err
	}

	log.Info("product updated", zap.Int("image_count", len(p.Images)))
	return p, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	productID, err := ParseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("product deleted", zap.String("product_id", productID.String()))
	return nil
}

// DecrementStock validates each item and applies the valid ones as guarded
// decrements. Invalid items are reported and skipped, never fatal.
func (s *service) DecrementStock(ctx context.Context, items []StockItem) ([]StockResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DecrementStock"),
		zap.Int("item_count", len(items)),
	)

	results := make([]StockResult, len(items))
	var (
		batch   []Decrement
		batchIx []int
	)

	for i, item := range items {
		results[i] = StockResult{ProductID: item.ProductID, Size: item.Size, Quantity: item.Quantity}

		// Labels outside XS..XXXL are looked up in the EUR counters.
		size, ok := ParseSize(item.Size)
		eurLabel := ""
		if !ok {
			eurLabel = strings.TrimSpace(item.Size)
			if eurLabel == "" {
				results[i].Status = StockInvalidSize
				continue
			}
		}
		if item.Quantity <= 0 || item.Quantity > MaxQuantity {
			results[i].Status = StockInvalidQuantity
			continue
		}
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			results[i].Status = StockInvalidProductID
			continue
		}

		batch = append(batch, Decrement{ProductID: productID, Size: size, EurLabel: eurLabel, Quantity: item.Quantity})
		batchIx = append(batchIx, i)
	}

	if len(batch) > 0 {
		outcomes, err := s.repo.DecrementStock(ctx, batch)
		if err != nil {
			log.Error("stock decrement failed", zap.Error(err))
			return nil, err
		}
		for j, outcome := range outcomes {
			results[batchIx[j]].Status = outcome.status()
		}
	}

	applied := 0
	for _, r := range results {
		if r.Applied() {
			applied++
		}
	}
	if applied < len(results) {
		log.Warn("stock decrement partially applied",
			zap.Int("applied", applied),
			zap.Any("results", results),
		)
	} else {
		log.Info("stock decrement applied", zap.Int("applied", applied))
	}

	return results, nil
}

func (o DecrementOutcome) status() StockStatus {
	switch o {
	case OutcomeApplied:
		return StockApplied
	case OutcomeMissing:
		return StockProductMissing
	case OutcomeUnknownSize:
		return StockInvalidSize
	default:
		return StockInsufficient
	}
}

// applyFields merges the non-empty form values into p and validates the result.
func applyFields(p *Product, f Fields) error {
	if t := strings.TrimSpace(f.Title); t != "" {
		p.Title = t
	}

	if raw := strings.TrimSpace(f.Price); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil || !price.IsPositive() {
			return ErrInvalidPrice
		}
		p.Price = price
	}

	if raw := strings.TrimSpace(f.PriceAfterSolde); raw != "" {
		sale, err := decimal.NewFromString(raw)
		if err != nil || sale.IsNegative() {
			return ErrInvalidSalePrice
		}
		// Zero clears the sale price.
		if sale.IsZero() {
			p.PriceAfterSolde = nil
		} else {
			p.PriceAfterSolde = &sale
		}
	}

	if raw := strings.TrimSpace(f.Category); raw != "" {
		category, ok := ParseCategory(raw)
		if !ok {
			return apperr.Validationf("unknown category %q", raw)
		}
		p.Category = category
	}

	if f.Description != "" {
		p.Description = strings.TrimSpace(f.Description)
	}

	for size, raw := range f.Quantities {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > MaxQuantity {
			return apperr.Validationf("%s must be a non-negative integer", size.Field())
		}
		p.Set(size, n)
	}

	if f.EurQuantities != nil {
		for label, n := range f.EurQuantities {
			if n < 0 || n > MaxQuantity {
				return apperr.Validationf("eurQuantities[%s] must be a non-negative integer", label)
			}
		}
		p.EurQuantities = f.EurQuantities
	}

	if p.Title == "" {
		return ErrTitleRequired
	}
	if !p.Price.IsPositive() {
		return ErrPriceRequired
	}
	if p.Category == "" {
		return ErrCategoryRequired
	}
	return nil
}

// ParseCategory matches label case-insensitively against Categories.
func ParseCategory(label string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(label)) {
			return c, true
		}
	}
	return "", false
}

// isUploadSlot reports whether an existingImages entry stands for a new upload.
func isUploadSlot(entry string) bool {
	entry = strings.TrimSpace(entry)
	return entry == "" || strings.HasPrefix(entry, "blob:")
}

// planImages returns the existing images kept by slots, in slot order, and
// the color of every new upload. The j-th upload takes the color of the j-th
// upload slot; uploads beyond the marked slots continue after the last slot.
// URLs that are not existing images are dropped.
func planImages(existing []Image, slots []string, colors []string, uploads int) ([]Image, []string) {
	uploadColors := make([]string, uploads)

	if slots == nil {
		kept := make([]Image, len(existing))
		copy(kept, existing)
		for j := range uploadColors {
			uploadColors[j] = colorAt(colors, j)
		}
		return kept, uploadColors
	}

	byURL := make(map[string]Image, len(existing))
	for _, img := range existing {
		byURL[img.ImageURL] = img
	}

	kept := make([]Image, 0, len(slots))
	var free []int
	for i, entry := range slots {
		if isUploadSlot(entry) {
			free = append(free, i)
			continue
		}
		img, ok := byURL[strings.TrimSpace(entry)]
		if !ok {
			continue
		}
		if c := colorAt(colors, i); c != "" {
			img.Color = c
		}
		kept = append(kept, img)
	}

	for j := range uploadColors {
		slot := len(slots) + j - len(free)
		if j < len(free) {
			slot = free[j]
		}
		uploadColors[j] = colorAt(colors, slot)
	}
	return kept, uploadColors
}

func colorAt(colors []string, i int) string {
	if i < 0 || i >= len(colors) {
		return ""
	}
	return strings.TrimSpace(colors[i])
}

// uploadImages pushes every file to the asset host. The color of file i is
// colors[i], defaulting to DefaultImageColor. Any failed upload fails the
// whole call.
func (s *service) uploadImages(ctx context.Context, files []ImageUpload, colors []string) ([]Image, error) {
	images := make([]Image, 0, len(files))
	for i, f := range files {
		url, err := s.uploader.Upload(ctx, f.Filename, f.Content)
		if err != nil {
			return nil, apperr.Upstream(imageUploadFailed, err)
		}

		color := colorAt(colors, i)
		if color == "" {
			color = DefaultImageColor
		}
		images = append(images, Image{ImageURL: url, Color: color})
	}
	return images, nil
}
