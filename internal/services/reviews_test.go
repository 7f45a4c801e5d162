package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/example/rentify/internal/logger"
	"github.com/example/rentify/internal/models"
)

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }

func newReviewFixture() (*ReviewService, *fakeReviews) {
	reviews := newFakeReviews()
	cars := newFakeCars(nil)
	cars.put(models.Car{BaseModel: models.BaseModel{ID: 4}, Name: "Golf", IsAvailable: true})
	return NewReviewService(reviews, cars, testURLs, logger.NewNop()), reviews
}

func TestReviewCreateAndRating(t *testing.T) {
	svc, reviews := newReviewFixture()
	ctx := context.Background()
	user := Actor{UserID: 1, Role: models.RoleUser}

	if _, err := svc.Create(ctx, user, ReviewInput{CarID: 4, ReviewRate: intPtr(4), ReviewText: strPtr("good")}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, Actor{UserID: 2}, ReviewInput{CarID: 4, ReviewRate: intPtr(5)}); err != nil {
		t.Fatal(err)
	}

	rating, err := svc.CarRating(ctx, 4)
	if err != nil {
		t.Fatalf("CarRating() error = %v", err)
	}
	if rating.AverageRate != 4.5 || rating.ReviewsCount != 2 {
		t.Errorf("rating = %+v, want 4.5 over 2", rating)
	}

	if _, err := svc.CarRating(ctx, 4); err != nil {
		t.Fatal(err)
	}
	if reviews.averages != 1 {
		t.Errorf("average queries = %d, want 1", reviews.averages)
	}

	if _, err := svc.Create(ctx, user, ReviewInput{CarID: 4, ReviewRate: intPtr(1)}); err != nil {
		t.Fatal(err)
	}
	rating, err = svc.CarRating(ctx, 4)
	if err != nil {
		t.Fatal(err)
	}
	if rating.AverageRate != 3.33 || rating.ReviewsCount != 3 {
		t.Errorf("rating after new review = %+v, want 3.33 over 3", rating)
	}

	_, err = svc.Create(ctx, user, ReviewInput{CarID: 99, ReviewRate: intPtr(3)})
	assertStatus(t, err, http.StatusNotFound)
}

func TestReviewUpdateOwnership(t *testing.T) {
	svc, _ := newReviewFixture()
	ctx := context.Background()
	author := Actor{UserID: 1, Role: models.RoleUser}

	review, err := svc.Create(ctx, author, ReviewInput{CarID: 4, ReviewRate: intPtr(2), ReviewText: strPtr("meh")})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Update(ctx, Actor{UserID: 2, Role: models.RoleUser}, review.ID, ReviewInput{ReviewRate: intPtr(5)})
	assertStatus(t, err, http.StatusForbidden)

	updated, err := svc.Update(ctx, author, review.ID, ReviewInput{ReviewRate: intPtr(5)})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ReviewRate != 5 || updated.ReviewText != "meh" {
		t.Errorf("updated = %+v", updated)
	}

	if err := svc.Remove(ctx, review.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	_, err = svc.FindOne(ctx, review.ID)
	assertStatus(t, err, http.StatusNotFound)
}
