package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"camisfut-storefront/internal/catalog"
	"camisfut-storefront/internal/domain"
	"camisfut-storefront/internal/events"
	"camisfut-storefront/internal/logging"
)

// Service is the admin product CRUD. Every write goes to the overlay store;
// the upstream catalog is never modified.
type Service struct {
	overlay   overlayStore
	products  adminLister
	publisher events.Publisher
	topic     string
	now       func() time.Time

	createMu sync.Mutex // id allocation and insert happen under it
}

type overlayStore interface {
	List(ctx context.Context) ([]domain.OverlayEntry, error)
	Get(ctx context.Context, productID int) (domain.OverlayEntry, error)
	Upsert(ctx context.Context, entry domain.OverlayEntry) error
	Delete(ctx context.Context, productID int) error
	ReplaceAll(ctx context.Context, entries []domain.OverlayEntry) error
	Clear(ctx context.Context) error
}

type adminLister interface {
	AdminProducts(ctx context.Context) ([]domain.Product, error)
}

func New(overlay overlayStore, products adminLister, publisher events.Publisher, topic string) *Service {
	return &Service{
		overlay:   overlay,
		products:  products,
		publisher: publisher,
		topic:     topic,
		now:       time.Now,
	}
}

// Products is the admin view, deleted records included.
func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	return s.products.AdminProducts(ctx)
}

func (s *Service) Product(ctx context.Context, id int) (domain.Product, error) {
	all, err := s.products.AdminProducts(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	idx := slices.IndexFunc(all, func(p domain.Product) bool { return p.ID == id })
	if idx < 0 {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return all[idx], nil
}

// Create adds a local product. patch may be empty; its fields override the
// defaults, except for the id which is always max+1 over the admin view and
// the overlay.
func (s *Service) Create(ctx context.Context, patch json.RawMessage) (domain.Product, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	maxID, err := s.maxID(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	now := s.now().UTC()
	p := domain.Product{
		ID:        maxID + 1,
		Name:      "Nuevo Producto",
		Type:      domain.TypeNew,
		Category:  domain.CategoryClubs,
		Images:    []string{domain.DefaultImage},
		Sizes:     slices.Clone(domain.DefaultSizes),
		CreatedAt: &now,
	}
	if len(patch) > 0 {
		if p, err = (domain.OverlayEntry{ProductID: p.ID, Doc: patch}).ApplyTo(p); err != nil {
			return domain.Product{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	}
	p.Modified = true
	p.Deleted = false
	if err := s.save(ctx, p); err != nil {
		return domain.Product{}, err
	}
	logging.FromContext(ctx).Info("admin created product", "product_id", p.ID)
	return p, nil
}

// maxID reads the overlay itself as well, since the admin view falls back
// to the upstream catalog alone when the overlay store is unavailable.
func (s *Service) maxID(ctx context.Context) (int, error) {
	all, err := s.products.AdminProducts(ctx)
	if err != nil {
		return 0, err
	}
	entries, err := s.overlay.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("allocate product id: %w", err)
	}
	maxID := 0
	for _, p := range all {
		maxID = max(maxID, p.ID)
	}
	for _, e := range entries {
		maxID = max(maxID, e.ProductID)
	}
	return maxID, nil
}

// Update shallow-merges patch over the current admin record.
func (s *Service) Update(ctx context.Context, id int, patch json.RawMessage) (domain.Product, error) {
	current, err := s.Product(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	p, err := domain.OverlayEntry{ProductID: id, Doc: patch}.ApplyTo(current)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	now := s.now().UTC()
	p.UpdatedAt = &now
	p.Modified = true
	if err := s.save(ctx, p); err != nil {
		return domain.Product{}, err
	}
	logging.FromContext(ctx).Info("admin updated product", "product_id", id)
	return p, nil
}

// Delete soft-deletes a product. Without an overlay entry a placeholder
// entry carrying the deletion is written.
func (s *Service) Delete(ctx context.Context, id int) error {
	entry, err := s.overlay.Get(ctx, id)
	switch {
	case err == nil:
		doc, err := markDeleted(entry.Doc)
		if err != nil {
			return err
		}
		entry.Doc = doc
		entry.Deleted = true
		if err := s.overlay.Upsert(ctx, entry); err != nil {
			return err
		}
	case errors.Is(err, domain.ErrNotFound):
		placeholder := domain.Product{
			ID:      id,
			Name:    fmt.Sprintf("ELIMINADO_%d", id),
			Club:    "ELIMINADO",
			Sizes:   []string{},
			Deleted: true,
		}
		if err := s.save(ctx, placeholder); err != nil {
			return err
		}
	default:
		return err
	}
	logging.FromContext(ctx).Info("admin deleted product", "product_id", id)
	return nil
}

// Restore drops the overlay entry of a deleted product. It reports whether
// anything was restored.
func (s *Service) Restore(ctx context.Context, id int) (bool, error) {
	entry, err := s.overlay.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !entry.Deleted {
		return false, nil
	}
	if err := s.overlay.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// Export renders the overlay as an indented JSON array.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	docs, err := s.docs(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(docs, "", "  ")
}

// Import replaces the whole overlay with the entries in data. Nothing is
// written when data is not a valid array of product documents.
func (s *Service) Import(ctx context.Context, data []byte) (int, error) {
	entries, err := ParseEntries(data)
	if err != nil {
		return 0, err
	}
	entries = catalog.Dedupe(entries)
	if err := s.overlay.ReplaceAll(ctx, entries); err != nil {
		return 0, err
	}
	logging.FromContext(ctx).Info("admin imported overlay", "count", len(entries))
	return len(entries), nil
}

func (s *Service) Clear(ctx context.Context) error {
	return s.overlay.Clear(ctx)
}

// Modifications returns the raw overlay entries.
func (s *Service) Modifications(ctx context.Context) ([]domain.OverlayEntry, error) {
	return s.overlay.List(ctx)
}

func (s *Service) IsModified(ctx context.Context, id int) (bool, error) {
	_, err := s.overlay.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) IsDeleted(ctx context.Context, id int) (bool, error) {
	entry, err := s.overlay.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return entry.Deleted, nil
}

// SyncPayload is the body of a catalog.overlay.synced event.
type SyncPayload struct {
	Count   int               `json:"count"`
	Entries []json.RawMessage `json:"entries"`
}

// Sync publishes the current overlay.
func (s *Service) Sync(ctx context.Context) (int, error) {
	docs, err := s.docs(ctx)
	if err != nil {
		return 0, err
	}
	ev := events.NewEvent(events.TypeCatalogOverlaySynced, SyncPayload{Count: len(docs), Entries: docs})
	if err := s.publisher.PublishEvent(ctx, s.topic, "overlay", ev); err != nil {
		return 0, fmt.Errorf("publish overlay: %w", err)
	}
	logging.FromContext(ctx).Info("overlay synced", "count", len(docs), "event_id", ev.ID)
	return len(docs), nil
}

func (s *Service) docs(ctx context.Context) ([]json.RawMessage, error) {
	entries, err := s.overlay.List(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, e.Doc)
	}
	return docs, nil
}

func (s *Service) save(ctx context.Context, p domain.Product) error {
	entry, err := domain.NewOverlayEntry(p)
	if err != nil {
		return err
	}
	entry.UpdatedAt = s.now().UTC()
	return s.overlay.Upsert(ctx, entry)
}

// ParseEntries decodes a JSON array of product documents.
func ParseEntries(data []byte) ([]domain.OverlayEntry, error) {
	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%w: overlay import: %v", domain.ErrValidation, err)
	}
	entries := make([]domain.OverlayEntry, 0, len(docs))
	for _, d := range docs {
		e, err := domain.OverlayEntryFromDoc(d)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func markDeleted(doc json.RawMessage) (json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, fmt.Errorf("%w: overlay entry: %v", domain.ErrValidation, err)
	}
	fields["eliminado"] = json.RawMessage("true")
	fields["stock"] = json.RawMessage("0")
	return json.Marshal(fields)
}
