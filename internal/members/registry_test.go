package members

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContact(t *testing.T) {
	c := NewContact("Jane Doe", "jane@example.com", "", "female")

	assert.Equal(t, "Jane Doe", c.Name)
	require.NotNil(t, c.Email)
	assert.Equal(t, "jane@example.com", *c.Email)
	assert.Nil(t, c.Phone)
	require.NotNil(t, c.Gender)
	assert.Equal(t, "female", *c.Gender)
}

func TestNewContactAllEmpty(t *testing.T) {
	c := NewContact("Walk In", "", "", "")

	assert.Nil(t, c.Email)
	assert.Nil(t, c.Phone)
	assert.Nil(t, c.Gender)
}
