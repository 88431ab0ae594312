package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/innouni-api/internal/models"
)

type memoryUsers struct {
	byEmail map[string]*models.User
	nextID  int64
}

func newMemoryUsers(users ...*models.User) *memoryUsers {
	store := &memoryUsers{byEmail: map[string]*models.User{}, nextID: 100}
	for _, u := range users {
		store.byEmail[u.Email] = u
	}
	return store
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *memoryUsers) Create(_ context.Context, user *models.User) error {
	m.nextID++
	user.ID = m.nextID
	m.byEmail[user.Email] = user
	return nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id int64, hash string, _ time.Time) error {
	for _, u := range m.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return sql.ErrNoRows
}

func setup(users *memoryUsers, password string) *commandLine {
	readPasswordFunc = func(int) ([]byte, error) { return []byte(password), nil }
	return &commandLine{users: users, logger: zap.NewNop(), out: io.Discard}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCases(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommandLineMigrate(t *testing.T) {
	var seen []string
	runMigrationsFunc = func(command string, _ *sql.DB, args ...string) error {
		seen = append(seen, command)
		if command == "down" {
			return errors.New("no migrations to roll back")
		}
		return nil
	}
	cli := setup(newMemoryUsers(), "")

	runCases(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such migrate command"},
		{name: "up-to without version", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "down-to non-int", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "goose failure", args: []string{"migrate", "down"}, wantErrStr: "no migrations to roll back"},
	})
	assert.Equal(t, []string{"up", "up-to", "status", "down"}, seen)
}

func TestCommandLineCreateAdmin(t *testing.T) {
	users := newMemoryUsers(&models.User{ID: 1, Email: "taken@innouni.test", Role: models.RoleStudent})
	cli := setup(users, "s3cure-pass")

	runCases(t, cli, []cliTest{
		{name: "missing flags", args: []string{"createadmin"}, wantErr: errHelp},
		{name: "missing name", args: []string{"createadmin", "-email", "root@innouni.test"}, wantErr: errHelp},
		{name: "duplicate email", args: []string{"createadmin", "-email", "taken@innouni.test", "-name", "Root"}, wantErrStr: "email \"taken@innouni.test\" is already registered"},
		{name: "created", args: []string{"createadmin", "-email", "root@innouni.test", "-name", "Root"}},
	})

	admin := users.byEmail["root@innouni.test"]
	require.NotNil(t, admin)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("s3cure-pass")))
}

func TestCommandLineResetPassword(t *testing.T) {
	users := newMemoryUsers(&models.User{ID: 5, Email: "ada@innouni.test", PasswordHash: "old", Role: models.RoleStudent})

	runCases(t, setup(users, ""), []cliTest{
		{name: "empty password", args: []string{"resetpassword", "-email", "ada@innouni.test"}, wantErr: errHelp},
	})
	runCases(t, setup(users, "short"), []cliTest{
		{name: "weak password", args: []string{"resetpassword", "-email", "ada@innouni.test"}, wantErr: errWeakPassword},
	})
	runCases(t, setup(users, "brand-new-pass"), []cliTest{
		{name: "no email", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "unknown user", args: []string{"resetpassword", "-email", "ghost@innouni.test"}, wantErr: sql.ErrNoRows},
		{name: "reset", args: []string{"resetpassword", "-email", "ada@innouni.test"}},
	})

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.byEmail["ada@innouni.test"].PasswordHash), []byte("brand-new-pass")))
}
