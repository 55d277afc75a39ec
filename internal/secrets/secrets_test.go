package secrets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"jobalert/internal/secrets"
)

func TestResolve(t *testing.T) {
	keyring.MockInit()

	v, err := secrets.Resolve("  from-env ", "", secrets.SendGridAccount)
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)

	_, err = secrets.Resolve("", "", secrets.SendGridAccount)
	assert.ErrorIs(t, err, secrets.ErrNotFound)

	require.NoError(t, secrets.Set(secrets.SendGridAccount, "SG.key"))
	v, err = secrets.Resolve("", "", secrets.SendGridAccount)
	require.NoError(t, err)
	assert.Equal(t, "SG.key", v)

	require.NoError(t, secrets.Set("custom", "other"))
	v, err = secrets.Resolve("", "custom", secrets.SendGridAccount)
	require.NoError(t, err)
	assert.Equal(t, "other", v)

	require.NoError(t, secrets.Delete(secrets.SendGridAccount))
	_, err = secrets.Get(secrets.SendGridAccount)
	assert.ErrorIs(t, err, secrets.ErrNotFound)
}

func TestSet_RejectsEmpty(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, secrets.Set("", "x"))
	assert.Error(t, secrets.Set("acct", " "))
	assert.Error(t, secrets.Delete(""))
}
