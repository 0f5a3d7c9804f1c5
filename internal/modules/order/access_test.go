package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanViewOwnedOrder(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	o := &Order{Code: "DANI-AAAAAA", UserID: &owner}

	assert.True(t, CanView(Viewer{UserID: &owner}, o))
	assert.False(t, CanView(Viewer{UserID: &stranger}, o))
	assert.False(t, CanView(Viewer{}, o))

	// A grant for the code never overrides ownership.
	assert.False(t, CanView(Viewer{Codes: []string{"DANI-AAAAAA"}}, o))
	assert.False(t, CanView(Viewer{UserID: &stranger, Codes: []string{"DANI-AAAAAA"}}, o))
}

func TestCanViewGuestOrder(t *testing.T) {
	o := &Order{Code: "DANI-AAAAAA"}
	somebody := uuid.New()

	assert.True(t, CanView(Viewer{Codes: []string{"DANI-AAAAAA"}}, o))
	assert.True(t, CanView(Viewer{UserID: &somebody, Codes: []string{"DANI-AAAAAA"}}, o))
	assert.False(t, CanView(Viewer{Codes: []string{"DANI-BBBBBB"}}, o))
	assert.False(t, CanView(Viewer{UserID: &somebody}, o))
	assert.False(t, CanView(Viewer{}, o))
}

func TestGrantTokenRoundTrip(t *testing.T) {
	g := NewGrants("test-secret")

	token, err := g.Issue([]string{"DANI-AAAAAA", "DANI-BBBBBB"})
	require.NoError(t, err)

	codes := g.Parse(token)
	assert.Equal(t, []string{"DANI-AAAAAA", "DANI-BBBBBB"}, codes)
}

func TestGrantTokenWrongSecret(t *testing.T) {
	token, err := NewGrants("secret-a").Issue([]string{"DANI-AAAAAA"})
	require.NoError(t, err)

	assert.Nil(t, NewGrants("secret-b").Parse(token))
}

func TestGrantTokenGarbage(t *testing.T) {
	g := NewGrants("test-secret")
	assert.Nil(t, g.Parse("not-a-token"))
	assert.Nil(t, g.Parse(""))
}

func TestGrantAppendsWithoutDuplicates(t *testing.T) {
	codes := Grant(nil, "dani-aaaaaa")
	assert.Equal(t, []string{"DANI-AAAAAA"}, codes)

	codes = Grant(codes, "DANI-AAAAAA")
	assert.Equal(t, []string{"DANI-AAAAAA"}, codes)

	codes = Grant(codes, "DANI-BBBBBB")
	assert.Equal(t, []string{"DANI-AAAAAA", "DANI-BBBBBB"}, codes)

	assert.Len(t, Grant(codes, "  "), 2)
}

func TestNewCodeFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := NewCode()
		require.Len(t, code, 11)
		require.Equal(t, "DANI-", code[:5])
		require.Equal(t, code, NormalizeCode(code))
		seen[code] = true
	}
	// 6 hex chars give little room, but 100 draws should not collide.
	assert.Greater(t, len(seen), 95)
}
