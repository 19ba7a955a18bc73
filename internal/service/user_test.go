package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user := createUser(t, db, "clerk_client")

	got, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.Get(context.Background(), uuid.New())
	requireKind(t, err, KindNotFound)
}

// The Clerk id is internal identity plumbing and must never appear in API
// responses.
func TestUserJSON_OmitsClerkID(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user := createUser(t, db, "clerk_client")

	got, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)

	raw, err := json.Marshal(got)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotContains(t, out, "clerkId")
	assert.NotContains(t, out, "ClerkID")
	for k := range out {
		assert.NotContains(t, k, "lerk", "clerk identity leaked under key %q", k)
	}
}

func TestUpdateUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	user := createUser(t, db, "clerk_client")

	first := "Jordan"
	phone := "+15551234567"
	got, err := svc.Update(ctx, "clerk_client", user.ID, UpdateUserInput{
		FirstName: &first,
		Phone:     &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jordan", got.FirstName)
	assert.Equal(t, "User", got.LastName)
	require.NotNil(t, got.Phone)
	assert.Equal(t, phone, *got.Phone)

	// Nil fields leave the record untouched.
	got, err = svc.Update(ctx, "clerk_client", user.ID, UpdateUserInput{})
	require.NoError(t, err)
	assert.Equal(t, "Jordan", got.FirstName)
}

func TestUpdateUser_NotOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user := createUser(t, db, "clerk_client")
	createUser(t, db, "clerk_stranger")

	name := "Hijack"
	_, err := svc.Update(context.Background(), "clerk_stranger", user.ID, UpdateUserInput{FirstName: &name})
	requireKind(t, err, KindForbidden)

	got, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test", got.FirstName)
}

func TestSetProfileImage(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user := createUser(t, db, "clerk_client")

	url := "https://cdn.example.com/profile_images/abc.png"
	got, err := svc.SetProfileImage(context.Background(), "clerk_client", user.ID, url)
	require.NoError(t, err)
	require.NotNil(t, got.ProfileImage)
	assert.Equal(t, url, *got.ProfileImage)
}
