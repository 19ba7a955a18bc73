package service

import (
	"fmt"
	"testing"

	"consult-service/pkg/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory sqlite database migrated with the
// full schema. Named per test so parallel tests never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Lawyer{}, &models.Booking{}, &models.Review{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, clerkID string) *models.User {
	t.Helper()
	user := &models.User{
		ClerkID:   clerkID,
		FirstName: "Test",
		LastName:  "User",
		Email:     clerkID + "@example.com",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createLawyer(t *testing.T, db *gorm.DB, clerkID string) *models.Lawyer {
	t.Helper()
	user := createUser(t, db, clerkID)
	lawyer := &models.Lawyer{
		UserID:         user.ID,
		ClerkID:        clerkID,
		Specialization: "Family Law",
		IsActive:       true,
	}
	require.NoError(t, db.Create(lawyer).Error)
	return lawyer
}

func createBooking(t *testing.T, db *gorm.DB, client *models.User, lawyer *models.Lawyer, status models.BookingStatus) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		ClientID: client.ID,
		LawyerID: lawyer.ID,
		ClerkID:  client.ClerkID,
		Status:   status,
		Amount:   15000,
		Currency: "usd",
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func reloadBooking(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Booking {
	t.Helper()
	var booking models.Booking
	require.NoError(t, db.First(&booking, "id = ?", id).Error)
	return &booking
}

// requireKind asserts err is a business-rule error of the given kind.
func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, kind, svcErr.Kind, "unexpected error kind: %s", svcErr.Message)
}
