package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// OverlayEntry is one admin modification: an edit, a local addition or a
// soft deletion. Doc holds the Product-shaped document exactly as stored so
// that fields it omits leave the underlying record untouched on merge.
type OverlayEntry struct {
	ProductID int
	Deleted   bool
	Doc       json.RawMessage
	UpdatedAt time.Time
}

// NewOverlayEntry encodes a full product as an overlay entry.
func NewOverlayEntry(p Product) (OverlayEntry, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return OverlayEntry{}, fmt.Errorf("encode overlay entry %d: %w", p.ID, err)
	}
	return OverlayEntry{ProductID: p.ID, Deleted: p.Deleted, Doc: doc}, nil
}

// OverlayEntryFromDoc validates a raw document and extracts its id and
// deletion marker.
func OverlayEntryFromDoc(doc json.RawMessage) (OverlayEntry, error) {
	var head struct {
		ID      *int `json:"id"`
		Deleted bool `json:"eliminado"`
	}
	if err := json.Unmarshal(doc, &head); err != nil {
		return OverlayEntry{}, fmt.Errorf("%w: overlay entry: %v", ErrValidation, err)
	}
	if head.ID == nil {
		return OverlayEntry{}, fmt.Errorf("%w: overlay entry without id", ErrValidation)
	}
	return OverlayEntry{ProductID: *head.ID, Deleted: head.Deleted, Doc: doc}, nil
}

// ApplyTo shallow-merges the entry onto base: every field present in the
// document replaces the base value, absent fields are kept.
func (e OverlayEntry) ApplyTo(base Product) (Product, error) {
	out := base.Clone()
	if err := json.Unmarshal(e.Doc, &out); err != nil {
		return base, fmt.Errorf("apply overlay entry %d: %w", e.ProductID, err)
	}
	out.ID = e.ProductID
	return out, nil
}

// Product decodes the entry on its own, without a base record.
func (e OverlayEntry) Product() (Product, error) {
	return e.ApplyTo(Product{})
}
