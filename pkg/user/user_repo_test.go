package user

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/calendarapp/calendar/internal/test_utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *test_utils.TestDB

func TestMain(m *testing.M) {
	var cleanup func()
	testDB, cleanup = test_utils.TestWithDB()
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setupRepoTest(t *testing.T) (*UserRepoImpl, context.Context) {
	return NewUserRepo(testDB.Require(t)), context.Background()
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	repo, ctx := setupRepoTest(t)
	newUser := User{Uid: uuid.NewString(), Name: "Test User", Email: "Test@Google.com", PasswordHash: "hash"}

	id, err := repo.CreateUser(ctx, newUser)
	require.NoError(t, err)

	byId, err := repo.GetUser(ctx, id)
	require.NoError(t, err)
	byUid, err := repo.GetUserByUid(ctx, newUser.Uid)
	require.NoError(t, err)
	byEmail, err := repo.GetUserByEmail(ctx, "test@google.com")
	require.NoError(t, err)

	expected := User{Id: id, Uid: newUser.Uid, Name: "Test User", Email: "test@google.com", PasswordHash: "hash"}
	assert.Equal(t, expected, byId)
	assert.Equal(t, expected, byUid)
	assert.Equal(t, expected, byEmail)
}

func TestUserRepo_CreateUser_LongName(t *testing.T) {
	repo, ctx := setupRepoTest(t)
	name := strings.Repeat("name ", 100)

	id, err := repo.CreateUser(ctx, User{Uid: uuid.NewString(), Name: name, Email: "long@name.com", PasswordHash: "hash"})
	require.NoError(t, err)

	fetched, err := repo.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, name, fetched.Name)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	repo, ctx := setupRepoTest(t)
	_, err := repo.CreateUser(ctx, User{Uid: uuid.NewString(), Name: "A", Email: "a@b.com", PasswordHash: "x"})
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, User{Uid: uuid.NewString(), Name: "B", Email: "A@B.com", PasswordHash: "y"})

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserRepo_NotFound(t *testing.T) {
	repo, ctx := setupRepoTest(t)

	_, err := repo.GetUserByUid(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetUser(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
