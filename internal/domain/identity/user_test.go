package identity

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates student with hashed password", func(t *testing.T) {
		user, err := NewStudent("  Juan.Cruz@Example.com ", "secret1", "Juan Dela Cruz", "bsa", 1)

		require.NoError(t, err)
		assert.Equal(t, "juan.cruz@example.com", user.Email)
		assert.Equal(t, "BSA", user.Course)
		assert.Equal(t, 1, user.YearLevel)
		assert.Equal(t, RoleStudent, user.Role)
		assert.NotEqual(t, "secret1", user.PasswordHash)
		assert.True(t, strings.HasPrefix(user.PasswordHash, "$2a$12$"))
		assert.True(t, user.VerifyPassword("secret1"))
		assert.False(t, user.IsAdmin())

		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*UserCreatedEvent)
		assert.True(t, ok)
	})

	t.Run("admin needs no course", func(t *testing.T) {
		user, err := NewUser("admin@example.com", "adminpass", "Accounting Office", "", 0, RoleAdmin)
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
	})

	tests := []struct {
		name     string
		email    string
		password string
		fullName string
		course   string
		year     int
		role     Role
		contains string
	}{
		{"empty email", "", "secret1", "Juan Dela Cruz", "BSA", 1, RoleStudent, "Email is required"},
		{"bad email", "juan@", "secret1", "Juan Dela Cruz", "BSA", 1, RoleStudent, "Invalid email"},
		{"short password", "a@b.co", "12345", "Juan Dela Cruz", "BSA", 1, RoleStudent, "at least 6"},
		{"short name", "a@b.co", "secret1", "Jo", "BSA", 1, RoleStudent, "between 3 and 50"},
		{"long name", "a@b.co", "secret1", strings.Repeat("x", 51), "BSA", 1, RoleStudent, "between 3 and 50"},
		{"missing course", "a@b.co", "secret1", "Juan Dela Cruz", " ", 1, RoleStudent, "Course is required"},
		{"bad year level", "a@b.co", "secret1", "Juan Dela Cruz", "BSA", 0, RoleStudent, "Year level"},
		{"bad role", "a@b.co", "secret1", "Juan Dela Cruz", "BSA", 1, Role("dean"), "Role must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.email, tt.password, tt.fullName, tt.course, tt.year, tt.role)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestUser_ChangePassword(t *testing.T) {
	user, err := NewStudent("maria@example.com", "oldpass", "Maria Clara", "BSHM", 2)
	require.NoError(t, err)
	user.ClearDomainEvents()
	version := user.GetVersion()

	t.Run("rejects wrong current password", func(t *testing.T) {
		err := user.ChangePassword("nope", "newpass")
		assert.True(t, errors.Is(err, ErrIncorrectPassword))
		assert.True(t, user.VerifyPassword("oldpass"))
	})

	t.Run("rejects weak new password", func(t *testing.T) {
		err := user.ChangePassword("oldpass", "123")
		assert.Error(t, err)
	})

	t.Run("changes password", func(t *testing.T) {
		require.NoError(t, user.ChangePassword("oldpass", "newpass"))
		assert.True(t, user.VerifyPassword("newpass"))
		assert.False(t, user.VerifyPassword("oldpass"))
		assert.Equal(t, version+1, user.GetVersion())

		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeUserPasswordChanged, events[0].EventType())
	})
}

func TestUser_RecordLogin(t *testing.T) {
	user, err := NewStudent("maria@example.com", "oldpass", "Maria Clara", "BSHM", 2)
	require.NoError(t, err)
	assert.Nil(t, user.LastLoginAt)
	user.RecordLogin()
	assert.NotNil(t, user.LastLoginAt)
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleStudent.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("").IsValid())
}
