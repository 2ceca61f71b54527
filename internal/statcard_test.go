package livedash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jondoveston/livedash/internal/dom"
)

func newCardFixture() (*dom.Document, *StatCardRegistry) {
	doc := dom.New(ChartsAreaID, StatsContainerID, LastUpdatedID)
	return doc, NewStatCardRegistry(doc)
}

func TestStatCardCreatedOnce(t *testing.T) {
	doc, cards := newCardFixture()

	require.NoError(t, cards.CreateOrUpdate(metric("Requests", 10, "")))
	inserts := doc.Inserts()
	require.NoError(t, cards.CreateOrUpdate(metric("Requests", 20, "")))
	require.NoError(t, cards.CreateOrUpdate(metric("Requests", 30.5, "")))

	assert.Equal(t, inserts, doc.Inserts())
	assert.Equal(t, 1, cards.Len())
	assert.Len(t, doc.GetElementByID(StatsContainerID).Children(), 1)

	card := doc.GetElementByID("stat-requests")
	require.NotNil(t, card)
	assert.Equal(t, "stat-card", card.Class())
	assert.Equal(t, "Requests", card.Find("stat-title").Text())
	assert.Equal(t, "30.5", doc.GetElementByID("stat-requests-value").Text())
}

func TestStatCardUpdateOnlyTouchesValue(t *testing.T) {
	doc, cards := newCardFixture()
	require.NoError(t, cards.CreateOrUpdate(metric("Requests", 10, "")))
	writes := doc.Writes()

	require.NoError(t, cards.CreateOrUpdate(metric("Requests", 11, "")))
	assert.Equal(t, writes+1, doc.Writes())
}

func TestStatCardSlugCollision(t *testing.T) {
	doc, cards := newCardFixture()
	require.NoError(t, cards.CreateOrUpdate(metric("Hit Ratio", 0.5, "")))

	err := cards.CreateOrUpdate(metric("hit ratio", 0.9, ""))
	assert.ErrorIs(t, err, ErrSlugCollision)
	assert.Equal(t, 1, cards.Len())
	assert.Equal(t, "0.5", doc.GetElementByID("stat-hit-ratio-value").Text())
}

func TestStatCardIDsInCreationOrder(t *testing.T) {
	_, cards := newCardFixture()
	for _, name := range []string{"Memory", "CPU", "Memory", "Disk IO"} {
		require.NoError(t, cards.CreateOrUpdate(metric(name, 1, "")))
	}
	assert.Equal(t, []string{"stat-memory", "stat-cpu", "stat-disk-io"}, cards.IDs())
}

func TestStatCardWithoutContainer(t *testing.T) {
	doc := dom.New(ChartsAreaID)
	cards := NewStatCardRegistry(doc)
	assert.Error(t, cards.CreateOrUpdate(metric("CPU", 1, "")))
	assert.Equal(t, 0, cards.Len())
}
