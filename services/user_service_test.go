package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homepro-server/apperror"
	"homepro-server/models"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool     { return &b }

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.db, nil, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, f.user.ID, models.ProfileUpdateRequest{})
	requireKind(t, err, apperror.KindValidation, "Please provide fields to update")

	_, err = svc.UpdateProfile(ctx, f.user.ID, models.ProfileUpdateRequest{FullName: strPtr("   ")})
	requireKind(t, err, apperror.KindValidation, "Please provide fields to update")

	user, err := svc.UpdateProfile(ctx, f.user.ID, models.ProfileUpdateRequest{
		FullName: strPtr(" Jane Q. Doe "),
		Phone:    strPtr("+1 (555) 000-1111"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Q. Doe", user.FullName)
	assert.Equal(t, "+15550001111", user.Phone)
	assert.Equal(t, f.user.Email, user.Email)

	_, err = svc.GetProfile(ctx, 4242)
	requireKind(t, err, apperror.KindNotFound, "User not found")
}

func TestUploadAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := NewUserService(f.db, nil, zerolog.Nop()).UploadAvatar(ctx, f.user.ID, strings.NewReader("png"))
	requireKind(t, err, apperror.KindUpstream, "Avatar uploads are not configured")

	uploader := &fakeUploader{}
	user, err := NewUserService(f.db, uploader, zerolog.Nop()).UploadAvatar(ctx, f.user.ID, strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "homepro/avatars", uploader.folder)
	assert.Equal(t, "user-1", uploader.publicID)
	require.NotNil(t, user.AvatarURL)
	assert.Contains(t, *user.AvatarURL, "user-1")

	failing := &fakeUploader{err: errors.New("cloudinary down")}
	_, err = NewUserService(f.db, failing, zerolog.Nop()).UploadAvatar(ctx, f.user.ID, strings.NewReader("png"))
	requireKind(t, err, apperror.KindUpstream, "Failed to upload avatar")
}

func TestAddressLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.db, nil, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.AddAddress(ctx, f.user.ID, models.AddressRequest{AddressLine1: strPtr("2 Oak Ave")})
	requireKind(t, err, apperror.KindValidation, "Please provide all required address fields")

	home, err := svc.AddAddress(ctx, f.user.ID, models.AddressRequest{
		AddressLine1: strPtr("2 Oak Ave"),
		City:         strPtr("Springfield"),
		State:        strPtr("IL"),
		ZipCode:      strPtr("62704"),
		IsPrimary:    boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, home.IsPrimary)

	work, err := svc.AddAddress(ctx, f.user.ID, models.AddressRequest{
		AddressLine1: strPtr("500 Market St"),
		AddressLine2: strPtr("Suite 200"),
		City:         strPtr("Springfield"),
		State:        strPtr("IL"),
		ZipCode:      strPtr("62701-1234"),
		IsPrimary:    boolPtr(true),
	})
	require.NoError(t, err)

	addresses, err := svc.ListAddresses(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, addresses, 3)
	assert.Equal(t, work.ID, addresses[0].ID)
	primaries := 0
	for _, a := range addresses {
		if a.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)

	updated, err := svc.UpdateAddress(ctx, f.user.ID, home.ID, models.AddressRequest{City: strPtr("Chatham"), IsPrimary: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, "Chatham", updated.City)
	assert.True(t, updated.IsPrimary)

	var reloaded models.Address
	require.NoError(t, f.db.First(&reloaded, work.ID).Error)
	assert.False(t, reloaded.IsPrimary)

	_, err = svc.UpdateAddress(ctx, f.other.ID, home.ID, models.AddressRequest{City: strPtr("Elsewhere")})
	requireKind(t, err, apperror.KindNotFound, "Address not found")

	require.NoError(t, svc.DeleteAddress(ctx, f.user.ID, work.ID))
	requireKind(t, svc.DeleteAddress(ctx, f.user.ID, work.ID), apperror.KindNotFound, "Address not found")
}

func TestDeleteAddressInUse(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.db, nil, zerolog.Nop())
	f.insertBooking(t, sunday, "09:00", models.BookingStatusCompleted)

	err := svc.DeleteAddress(context.Background(), f.user.ID, f.address.ID)
	requireKind(t, err, apperror.KindConflict, "Address is used by existing bookings")
}
