package livedash

import (
	"fmt"

	"github.com/jondoveston/livedash/internal/dom"
)

// StatCardRegistry keeps one card per metric and rewrites only its value text
type StatCardRegistry struct {
	doc       *dom.Document
	container *dom.Element
	owners    map[string]string
	order     []string
}

func NewStatCardRegistry(doc *dom.Document) *StatCardRegistry {
	return &StatCardRegistry{
		doc:       doc,
		container: doc.GetElementByID(StatsContainerID),
		owners:    map[string]string{},
	}
}

func (r *StatCardRegistry) CreateOrUpdate(m Metric) error {
	id := StatID(m.Name)
	owner, ok := r.owners[id]
	if !ok {
		return r.create(id, m)
	}
	if owner != m.Name {
		return fmt.Errorf("%w: %q and %q both map to %s", ErrSlugCollision, owner, m.Name, id)
	}
	value := r.doc.GetElementByID(statValueID(id))
	if value == nil {
		return fmt.Errorf("update card %s: value element missing", id)
	}
	value.SetText(FormatValue(m.Value))
	return nil
}

func (r *StatCardRegistry) create(id string, m Metric) error {
	if r.container == nil {
		return fmt.Errorf("create card %s: no %s container", id, StatsContainerID)
	}
	card := r.doc.CreateElement("stat-card", id)
	title := r.doc.CreateElement("stat-title", "")
	title.SetText(m.Name)
	value := r.doc.CreateElement("stat-value", statValueID(id))
	value.SetText(FormatValue(m.Value))
	if err := card.AppendChild(title); err != nil {
		return err
	}
	if err := card.AppendChild(value); err != nil {
		return err
	}
	if err := r.container.AppendChild(card); err != nil {
		return fmt.Errorf("create card %s: %w", id, err)
	}
	r.owners[id] = m.Name
	r.order = append(r.order, id)
	return nil
}

func (r *StatCardRegistry) Len() int {
	return len(r.owners)
}

// IDs returns the card ids in creation order
func (r *StatCardRegistry) IDs() []string {
	return append([]string(nil), r.order...)
}
