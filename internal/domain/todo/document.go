package todo

import (
	"todosync/pkg/api"
)

// FromDocument normalizes a wire document into an Item. The canonical id
// field wins; the legacy "_id" spelling is accepted as fallback. Returns
// false when neither field resolves, so callers can drop the record
// instead of surfacing it.
func FromDocument(doc api.TodoDocument) (Item, bool) {
	id := doc.ID
	if !resolvable(id) {
		id = doc.LegacyID
	}
	if !resolvable(id) {
		return Item{}, false
	}

	item := Item{
		ID:        id,
		Text:      doc.Text,
		Completed: doc.Completed,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	if item.UpdatedAt.Before(item.CreatedAt) {
		item.UpdatedAt = item.CreatedAt
	}
	return item, true
}

// FromDocuments normalizes a document list, dropping records without a
// resolvable identifier.
func FromDocuments(docs []api.TodoDocument) []Item {
	items := make([]Item, 0, len(docs))
	for _, doc := range docs {
		if item, ok := FromDocument(doc); ok {
			items = append(items, item)
		}
	}
	return items
}

// ToDocument converts an item to its wire form with both identifier
// spellings populated.
func ToDocument(item Item) api.TodoDocument {
	return api.TodoDocument{
		LegacyID:  item.ID,
		ID:        item.ID,
		Text:      item.Text,
		Completed: item.Completed,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// ToDocuments converts an item list to wire form.
func ToDocuments(items []Item) []api.TodoDocument {
	docs := make([]api.TodoDocument, 0, len(items))
	for _, item := range items {
		docs = append(docs, ToDocument(item))
	}
	return docs
}

// Sanitize drops items without a resolvable identifier. Collaborators
// normalize on ingress already; this is the core's own guard before any
// list replaces its state.
func Sanitize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.HasResolvableID() {
			out = append(out, item)
		}
	}
	return out
}
