package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/example/rentify/internal/logger"
	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/utils"
)

func TestDiscountCreate(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	newService := func() (*DiscountService, *recordingRefresher) {
		discounts := newFakeDiscounts()
		cars := newFakeCars(discounts)
		cars.put(models.Car{BaseModel: models.BaseModel{ID: 3}, Name: "Civic", IsAvailable: true})
		refresher := &recordingRefresher{}
		return NewDiscountService(discounts, cars, refresher, logger.NewNop()), refresher
	}

	tests := []struct {
		name string
		in   DiscountInput
		code int
	}{
		{name: "valid", in: DiscountInput{CarID: 3, StartDate: start, EndDate: start.Add(72 * time.Hour), Percentage: 15}},
		{name: "end before start", in: DiscountInput{CarID: 3, StartDate: start, EndDate: start.Add(-time.Hour), Percentage: 15}, code: http.StatusBadRequest},
		{name: "zero percent", in: DiscountInput{CarID: 3, StartDate: start, EndDate: start.Add(time.Hour), Percentage: 0}, code: http.StatusBadRequest},
		{name: "full percent", in: DiscountInput{CarID: 3, StartDate: start, EndDate: start.Add(time.Hour), Percentage: 100}, code: http.StatusBadRequest},
		{name: "unknown car", in: DiscountInput{CarID: 8, StartDate: start, EndDate: start.Add(time.Hour), Percentage: 10}, code: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, refresher := newService()
			discount, err := svc.Create(ctx, tt.in)
			if tt.code != 0 {
				assertStatus(t, err, tt.code)
				if len(refresher.ids) != 0 {
					t.Error("car refreshed after a rejected discount")
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if discount.ID == 0 || discount.Percentage != 15 {
				t.Errorf("discount = %+v", discount)
			}
			if len(refresher.ids) != 1 || refresher.ids[0] != 3 {
				t.Errorf("refreshed = %v, want [3]", refresher.ids)
			}
		})
	}
}

func TestDiscountListAndRemove(t *testing.T) {
	ctx := context.Background()
	discounts := newFakeDiscounts()
	cars := newFakeCars(discounts)
	refresher := &recordingRefresher{}
	svc := NewDiscountService(discounts, cars, refresher, logger.NewNop())

	for i := 1; i <= 3; i++ {
		discounts.put(models.Discount{BaseModel: models.BaseModel{ID: uint(i)}, CarID: 5, Percentage: i * 10})
	}

	page, err := svc.FindAll(ctx, utils.NewPagination(1, 2))
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 {
		t.Errorf("page = %+v", page)
	}

	if err := svc.Remove(ctx, 2); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(refresher.ids) != 1 || refresher.ids[0] != 5 {
		t.Errorf("refreshed = %v, want [5]", refresher.ids)
	}
	assertStatus(t, svc.Remove(ctx, 2), http.StatusNotFound)
}
