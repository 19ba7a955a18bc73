package service

import (
	"context"
	"errors"

	"consult-service/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type UpdateUserInput struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Phone        *string `json:"phone"`
	ProfileImage *string `json:"profileImage"`
}

// Get is public. The Clerk id never serializes (json:"-" on the model).
func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update patches the allow-listed profile fields on the caller's own record.
func (s *UserService) Update(ctx context.Context, clerkUserID string, userID uuid.UUID, in UpdateUserInput) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ClerkID != clerkUserID {
		return nil, forbidden("Forbidden")
	}

	updates := map[string]interface{}{}
	if in.FirstName != nil {
		updates["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		updates["last_name"] = *in.LastName
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.ProfileImage != nil {
		updates["profile_image"] = *in.ProfileImage
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", userID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, userID)
}

// SetProfileImage stores the uploaded image URL. Used by the upload endpoint
// after the file lands in object storage.
func (s *UserService) SetProfileImage(ctx context.Context, clerkUserID string, userID uuid.UUID, url string) (*models.User, error) {
	return s.Update(ctx, clerkUserID, userID, UpdateUserInput{ProfileImage: &url})
}
