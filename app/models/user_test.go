package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	user, err := CreateUser("Mara Vogel", "mara@salonluxe.test", "secret-password")
	require.NoError(t, err)

	assert.Equal(t, ROLE_USER, user.Role)
	assert.Equal(t, STATUS_ACTIVE, user.Status)
	assert.NotEqual(t, "secret-password", user.Password, "password must be stored hashed")
	assert.True(t, user.CheckPassword("secret-password"))
	assert.False(t, user.CheckPassword("wrong-password"))
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"short name", "ab", "mara@salonluxe.test", "secret-password"},
		{"invalid email", "Mara Vogel", "not-an-email", "secret-password"},
		{"short password", "Mara Vogel", "mara@salonluxe.test", "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateUser(tt.userName, tt.email, tt.password)
			assert.Error(t, err)
		})
	}
}

func TestCreateUserMinimumPassword(t *testing.T) {
	// Exactly six characters must pass: the length rule applies to the raw
	// password, not to the stored hash.
	user, err := CreateUser("Mara Vogel", "mara@salonluxe.test", "123456")
	require.NoError(t, err)
	assert.True(t, user.CheckPassword("123456"))
}

func TestUserSetPassword(t *testing.T) {
	user, err := CreateUser("Mara Vogel", "mara@salonluxe.test", "first-password")
	require.NoError(t, err)

	require.NoError(t, user.SetPassword("second-password"))
	assert.False(t, user.CheckPassword("first-password"))
	assert.True(t, user.CheckPassword("second-password"))
}

func TestUserIsActive(t *testing.T) {
	u := &User{Status: STATUS_ACTIVE}
	assert.True(t, u.IsActive())

	u.Status = STATUS_DISABLED
	assert.False(t, u.IsActive())
}
