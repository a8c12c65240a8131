package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReturnsUniqueIDs(t *testing.T) {
	m := NewManager(2)

	a := m.Create()
	b := m.Create()
	assert.NotEmpty(t, a)
	assert.NotEmpty(t, b)
	assert.NotEqual(t, a, b)
}

func TestHistoryEmptyForNewSession(t *testing.T) {
	m := NewManager(2)
	id := m.Create()
	assert.Empty(t, m.History(id))
	assert.Empty(t, m.History("never-seen"))
}

func TestAppendAndHistoryRendering(t *testing.T) {
	m := NewManager(2)
	id := m.Create()

	m.Append(id, "What is Python?", "A programming language.")

	assert.Equal(t, "User: What is Python?\nAssistant: A programming language.", m.History(id))

	m.Append(id, "Who made it?", "Guido van Rossum.")
	want := "User: What is Python?\nAssistant: A programming language.\n" +
		"User: Who made it?\nAssistant: Guido van Rossum."
	assert.Equal(t, want, m.History(id))
}

func TestHistoryBounded(t *testing.T) {
	m := NewManager(2)
	id := m.Create()

	m.Append(id, "first", "1")
	m.Append(id, "second", "2")
	m.Append(id, "third", "3")

	history := m.History(id)
	assert.NotContains(t, history, "first")
	assert.Contains(t, history, "second")
	assert.Contains(t, history, "third")
}

func TestAppendCreatesSessionImplicitly(t *testing.T) {
	m := NewManager(2)
	m.Append("adhoc", "q", "a")
	assert.Equal(t, "User: q\nAssistant: a", m.History("adhoc"))
}

func TestClear(t *testing.T) {
	m := NewManager(2)
	id := m.Create()
	m.Append(id, "q", "a")
	require.NotEmpty(t, m.History(id))

	m.Clear(id)
	assert.Empty(t, m.History(id))
}
