// Package todo contains the todo item domain model shared by the server
// and the synchronizing client: the Item entity, partial-update patches,
// derived statistics, and identifier normalization for wire documents.
package todo

import (
	"strings"
	"time"
	"unicode/utf8"

	appErrors "todosync/pkg/errors"
)

// MaxTextLength is the maximum allowed item text length after trimming.
const MaxTextLength = 500

// Item is the todo entity. Once exposed, ID is non-empty and never the
// literal "undefined"; UpdatedAt is never before CreatedAt.
type Item struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Text == nil && p.Completed == nil
}

// NormalizeText trims the text and validates it against the domain rules.
func NormalizeText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", appErrors.NewValidation("text cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxTextLength {
		return "", appErrors.NewValidation("text cannot exceed 500 characters")
	}
	return trimmed, nil
}

// New creates an item with validated text and both timestamps set to now.
func New(id, text string, now time.Time) (Item, error) {
	normalized, err := NormalizeText(text)
	if err != nil {
		return Item{}, err
	}
	ts := now.UTC()
	return Item{
		ID:        id,
		Text:      normalized,
		Completed: false,
		CreatedAt: ts,
		UpdatedAt: ts,
	}, nil
}

// Apply returns a copy of the item with the patch applied and UpdatedAt
// bumped. Patched text goes through the same validation as New.
func (i Item) Apply(p Patch, now time.Time) (Item, error) {
	out := i
	if p.Text != nil {
		normalized, err := NormalizeText(*p.Text)
		if err != nil {
			return Item{}, err
		}
		out.Text = normalized
	}
	if p.Completed != nil {
		out.Completed = *p.Completed
	}
	out.UpdatedAt = now.UTC()
	if out.UpdatedAt.Before(out.CreatedAt) {
		out.UpdatedAt = out.CreatedAt
	}
	return out, nil
}

// Toggled returns a copy with the completion flag flipped.
func (i Item) Toggled(now time.Time) Item {
	out := i
	out.Completed = !out.Completed
	out.UpdatedAt = now.UTC()
	if out.UpdatedAt.Before(out.CreatedAt) {
		out.UpdatedAt = out.CreatedAt
	}
	return out
}

// HasResolvableID reports whether the item carries a usable identifier.
func (i Item) HasResolvableID() bool {
	return resolvable(i.ID)
}

func resolvable(id string) bool {
	return id != "" && id != "undefined"
}
