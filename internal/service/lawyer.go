package service

import (
	"context"
	"encoding/json"
	"errors"

	"consult-service/pkg/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LawyerService struct {
	db *gorm.DB
}

func NewLawyerService(db *gorm.DB) *LawyerService {
	return &LawyerService{db: db}
}

// profileColumns is the allow-list for profile updates. Identity links and
// aggregate counters are never writable through the profile endpoint.
var profileColumns = map[string]string{
	"specialization":    "specialization",
	"bio":               "bio",
	"education":         "education",
	"barNumber":         "bar_number",
	"yearsOfExperience": "years_of_experience",
	"hourlyRate":        "hourly_rate",
	"languages":         "languages",
}

// GetProfile is public and returns the lawyer with the user relation populated.
func (s *LawyerService) GetProfile(ctx context.Context, lawyerID uuid.UUID) (*models.Lawyer, error) {
	var lawyer models.Lawyer
	err := s.db.WithContext(ctx).Preload("User").First(&lawyer, "id = ?", lawyerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Lawyer not found")
	}
	if err != nil {
		return nil, err
	}
	return &lawyer, nil
}

// UpdateProfile merges the allow-listed fields into the lawyer record.
// Unknown fields are silently ignored.
func (s *LawyerService) UpdateProfile(ctx context.Context, clerkUserID string, lawyerID uuid.UUID, fields map[string]json.RawMessage) (*models.Lawyer, error) {
	lawyer, err := s.ownedLawyer(ctx, clerkUserID, lawyerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	for key, raw := range fields {
		column, ok := profileColumns[key]
		if !ok {
			continue
		}
		switch key {
		case "yearsOfExperience":
			var v int
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, invalidInput("Invalid value for " + key)
			}
			updates[column] = v
		case "hourlyRate":
			var v int64
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, invalidInput("Invalid value for " + key)
			}
			updates[column] = v
		case "languages":
			var v []string
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, invalidInput("Invalid value for " + key)
			}
			updates[column] = datatypes.JSON(raw)
		default:
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, invalidInput("Invalid value for " + key)
			}
			updates[column] = v
		}
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Lawyer{}).
			Where("id = ?", lawyer.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.GetProfile(ctx, lawyerID)
}

// Deactivate flips the active flag off. Soft-disable, the record stays.
func (s *LawyerService) Deactivate(ctx context.Context, clerkUserID string, lawyerID uuid.UUID) error {
	lawyer, err := s.ownedLawyer(ctx, clerkUserID, lawyerID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.Lawyer{}).
		Where("id = ?", lawyer.ID).
		UpdateColumn("is_active", false).Error
}

// GetAvailability is public and returns the raw availability sequence.
func (s *LawyerService) GetAvailability(ctx context.Context, lawyerID uuid.UUID) ([]models.AvailabilitySlot, error) {
	var lawyer models.Lawyer
	err := s.db.WithContext(ctx).Select("id", "availability").First(&lawyer, "id = ?", lawyerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Lawyer not found")
	}
	if err != nil {
		return nil, err
	}

	slots := []models.AvailabilitySlot{}
	if len(lawyer.Availability) > 0 {
		if err := json.Unmarshal(lawyer.Availability, &slots); err != nil {
			return nil, err
		}
	}
	return slots, nil
}

// SetAvailability replaces the entire availability sequence. Full overwrite,
// not a merge.
func (s *LawyerService) SetAvailability(ctx context.Context, clerkUserID string, lawyerID uuid.UUID, slots []models.AvailabilitySlot) ([]models.AvailabilitySlot, error) {
	lawyer, err := s.ownedLawyer(ctx, clerkUserID, lawyerID)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Lawyer{}).
		Where("id = ?", lawyer.ID).
		UpdateColumn("availability", datatypes.JSON(raw)).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// ownedLawyer loads the lawyer and enforces that the caller owns the record.
func (s *LawyerService) ownedLawyer(ctx context.Context, clerkUserID string, lawyerID uuid.UUID) (*models.Lawyer, error) {
	var lawyer models.Lawyer
	err := s.db.WithContext(ctx).First(&lawyer, "id = ?", lawyerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Lawyer not found")
	}
	if err != nil {
		return nil, err
	}
	if lawyer.ClerkID != clerkUserID {
		return nil, forbidden("Forbidden")
	}
	return &lawyer, nil
}
