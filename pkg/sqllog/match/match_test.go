package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstPositions(t *testing.T) {
	t.Parallel()

	m, err := New([]string{"SELECT", "users", "DROP"})
	require.NoError(t, err)

	pos := m.FirstPositions("SELECT * FROM users WHERE users.id = 1")
	require.Len(t, pos, 3)
	assert.Equal(t, 0, pos[0])
	assert.Equal(t, 14, pos[1], "first occurrence wins")
	assert.Equal(t, NotFound, pos[2])
}

func TestMatchesAny(t *testing.T) {
	t.Parallel()

	m, err := New([]string{"DELETE", "TRUNCATE"})
	require.NoError(t, err)

	assert.True(t, m.MatchesAny("DELETE FROM t;"))
	assert.False(t, m.MatchesAny("SELECT 1;"))
}

func TestNewRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoPatterns)
	_, err = New([]string{"", ""})
	assert.ErrorIs(t, err, ErrNoPatterns)

	m, err := New([]string{"", "COMMIT"})
	require.NoError(t, err)
	assert.Equal(t, []string{"COMMIT"}, m.Patterns())
}

func TestOverlappingPatterns(t *testing.T) {
	t.Parallel()

	m, err := New([]string{"INSERT", "INS"})
	require.NoError(t, err)

	pos := m.FirstPositions("INSERT INTO t VALUES (1);")
	assert.Equal(t, []int{0, 0}, pos)
}
