package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"consult-service/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

type ReviewPage struct {
	Reviews    []models.Review `json:"reviews"`
	Pagination Pagination      `json:"pagination"`
	Stats      ReviewStats     `json:"stats"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type ReviewStats struct {
	AverageRating      float64       `json:"averageRating"`
	TotalReviews       int           `json:"totalReviews"`
	RatingDistribution map[int]int64 `json:"ratingDistribution"`
}

// ListForLawyer returns the visible reviews for a lawyer, newest first, with a
// rating histogram over all visible reviews and the lawyer's cached aggregates.
func (s *ReviewService) ListForLawyer(ctx context.Context, lawyerID uuid.UUID, page, limit int) (*ReviewPage, error) {
	var lawyer models.Lawyer
	err := s.db.WithContext(ctx).First(&lawyer, "id = ?", lawyerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Lawyer not found")
	}
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var total int64
	err = s.db.WithContext(ctx).Model(&models.Review{}).
		Where("lawyer_id = ? AND is_visible = ?", lawyerID, true).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	reviews := []models.Review{}
	err = s.db.WithContext(ctx).
		Preload("Client").
		Where("lawyer_id = ? AND is_visible = ?", lawyerID, true).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	distribution := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	var counts []struct {
		Rating int
		N      int64
	}
	err = s.db.WithContext(ctx).Model(&models.Review{}).
		Select("rating, COUNT(*) AS n").
		Where("lawyer_id = ? AND is_visible = ?", lawyerID, true).
		Group("rating").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		if c.Rating >= 1 && c.Rating <= 5 {
			distribution[c.Rating] = c.N
		}
	}

	pages := int64(0)
	if total > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}

	return &ReviewPage{
		Reviews: reviews,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
		Stats: ReviewStats{
			AverageRating:      lawyer.AverageRating,
			TotalReviews:       lawyer.TotalReviews,
			RatingDistribution: distribution,
		},
	}, nil
}

// Respond attaches the lawyer's one-time response to a review.
func (s *ReviewService) Respond(ctx context.Context, clerkUserID string, reviewID uuid.UUID, response string) (*models.Review, error) {
	var lawyer models.Lawyer
	err := s.db.WithContext(ctx).First(&lawyer, "clerk_id = ?", clerkUserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, forbidden("Only lawyers can respond to reviews")
	}
	if err != nil {
		return nil, err
	}

	var review models.Review
	err = s.db.WithContext(ctx).First(&review, "id = ?", reviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Review not found")
	}
	if err != nil {
		return nil, err
	}

	if review.LawyerID != lawyer.ID {
		return nil, forbidden("Forbidden")
	}
	if review.LawyerResponse != nil {
		return nil, invalidState("Already responded to this review")
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return nil, invalidInput("Response cannot be empty")
	}

	// Conditional on the response still being absent, so two racing responses
	// cannot both land.
	res := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ? AND lawyer_response IS NULL", reviewID).
		Updates(map[string]interface{}{
			"lawyer_response": response,
			"responded_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, invalidState("Already responded to this review")
	}

	var updated models.Review
	err = s.db.WithContext(ctx).
		Preload("Client").
		Preload("Lawyer").
		Preload("Lawyer.User").
		First(&updated, "id = ?", reviewID).Error
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
