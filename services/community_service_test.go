package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsfest/registration-system/models"
)

func TestCommunityCreate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCommunityRepo()
	svc := NewCommunityService(repo, nil)

	t.Run("valid community", func(t *testing.T) {
		community, err := svc.Create(ctx, CreateCommunityInput{
			Name:          " Riverside ",
			ContactPerson: "Asha Nair",
			Phone:         "9876501234",
			Email:         "riverside@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "Riverside", community.Name)
		assert.True(t, community.Active)
		assert.Nil(t, community.AdminUsername)
	})

	t.Run("name required", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateCommunityInput{Name: "   "})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("invalid contact email", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateCommunityInput{Name: "Hilltop", Email: "not-an-address"})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateCommunityInput{Name: "Riverside"})
		assert.ErrorIs(t, err, ErrCommunityNameConflict)
	})

	t.Run("admin credentials are hashed", func(t *testing.T) {
		community, err := svc.Create(ctx, CreateCommunityInput{
			Name:          "Lakeside",
			AdminUsername: "lakeside-admin",
			AdminEmail:    "admin@lakeside.example.com",
			AdminPassword: "winter-games",
		})
		require.NoError(t, err)
		require.NotNil(t, community.AdminPasswordHash)
		assert.NotContains(t, *community.AdminPasswordHash, "winter-games")
		assert.True(t, checkPassword(*community.AdminPasswordHash, "winter-games"))
	})

	t.Run("invalid admin email", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateCommunityInput{Name: "Seaview", AdminEmail: "broken"})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestCommunityUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCommunityRepo()
	repo.add(models.Community{Name: "Riverside", Active: true, Phone: "9876501234"})
	svc := NewCommunityService(repo, nil)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		community, err := svc.Update(ctx, 1, UpdateCommunityInput{Active: boolPtr(false)})
		require.NoError(t, err)
		assert.False(t, community.Active)
		assert.Equal(t, "Riverside", community.Name)
		assert.Equal(t, "9876501234", community.Phone)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, 1, UpdateCommunityInput{Name: strPtr("  ")})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("missing community", func(t *testing.T) {
		_, err := svc.Update(ctx, 9, UpdateCommunityInput{Name: strPtr("Hilltop")})
		assert.ErrorIs(t, err, ErrCommunityNotFound)
	})
}

func TestCommunityContacts(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCommunityRepo()
	repo.add(models.Community{Name: "Riverside", Active: true})
	repo.add(models.Community{Name: "Hilltop", Active: true})
	svc := NewCommunityService(repo, nil)

	t.Run("add contact", func(t *testing.T) {
		contact, err := svc.AddContact(ctx, 1, ContactInput{
			Name:  "Asha Nair",
			Phone: "9876501234",
			Role:  strPtr("Captain"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, contact.CommunityID)
		assert.NotZero(t, contact.ID)
	})

	t.Run("name and phone required", func(t *testing.T) {
		_, err := svc.AddContact(ctx, 1, ContactInput{Name: "Asha Nair"})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("unknown community", func(t *testing.T) {
		_, err := svc.AddContact(ctx, 9, ContactInput{Name: "Asha Nair", Phone: "9876501234"})
		assert.ErrorIs(t, err, ErrCommunityNotFound)
	})

	t.Run("update is scoped to the community", func(t *testing.T) {
		_, err := svc.UpdateContact(ctx, 2, 1, ContactInput{Phone: "9000000000"})
		assert.ErrorIs(t, err, ErrNotFound)

		contact, err := svc.UpdateContact(ctx, 1, 1, ContactInput{Phone: "9000000000"})
		require.NoError(t, err)
		assert.Equal(t, "9000000000", contact.Phone)
		assert.Equal(t, "Asha Nair", contact.Name)
	})

	t.Run("delete is scoped to the community", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteContact(ctx, 2, 1), ErrNotFound)
		require.NoError(t, svc.DeleteContact(ctx, 1, 1))

		contacts, err := svc.ListContacts(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, contacts)
	})
}

func TestCommunityUploadLogo(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCommunityRepo()
	repo.add(models.Community{Name: "Riverside", Active: true})
	uploader := newFakeUploader()
	svc := NewCommunityService(repo, uploader)

	community, err := svc.UploadLogo(ctx, 1, strings.NewReader("png bytes"), "image/png")
	require.NoError(t, err)
	require.NotNil(t, community.LogoKey)
	assert.Equal(t, "communities/1/logo", *community.LogoKey)
	require.NotNil(t, community.LogoURL)
	assert.Equal(t, "https://cdn.test/communities/1/logo", *community.LogoURL)

	_, err = svc.UploadLogo(ctx, 9, strings.NewReader("png bytes"), "image/png")
	assert.ErrorIs(t, err, ErrCommunityNotFound)
}
