package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	table := Defaults()

	got, err := table.URL(OrderCreate, map[string]string{"client": "acme"})
	require.NoError(t, err)
	assert.Equal(t, "/m/acme/orders", got)

	got, err = table.URL(ContributionCreate, map[string]string{"client": "a b", "extra": "x"})
	require.NoError(t, err)
	assert.Equal(t, "/kiosk/community/a%20b/contributions", got)
}

func TestURL_Errors(t *testing.T) {
	table := Table{
		"broken": "/x/{id",
		"two":    "/t/{tenant}/u/{user}",
	}

	_, err := table.URL("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownRoute)

	_, err = table.URL("two", map[string]string{"tenant": "t1"})
	assert.ErrorIs(t, err, ErrMissingParam)
	assert.Contains(t, err.Error(), `"user"`)

	_, err = table.URL("broken", map[string]string{"id": "1"})
	assert.Error(t, err)

	got, err := table.URL("two", map[string]string{"tenant": "t1", "user": "u1"})
	require.NoError(t, err)
	assert.Equal(t, "/t/t1/u/u1", got)
}
