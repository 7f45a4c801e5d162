package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/rentify/internal/cache"
	"github.com/example/rentify/internal/logger"
	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/utils"
)

type carFixture struct {
	svc       *CarService
	cars      *fakeCars
	discounts *fakeDiscounts
	uploads   *fakeUploads
}

func newCarFixture() *carFixture {
	brands := newFakeBrands()
	brands.put(models.Brand{BaseModel: models.BaseModel{ID: 1}, Name: "toyota", Logo: "toyota.png"})
	locations := newFakeLocations()
	locations.put(models.Location{BaseModel: models.BaseModel{ID: 1}, Address: "Airport", LocationType: models.LocationPickup})

	f := &carFixture{discounts: newFakeDiscounts(), uploads: &fakeUploads{}}
	f.cars = newFakeCars(f.discounts)
	f.svc = NewCarService(f.cars, brands, locations, cache.NewMemory(), f.uploads, testURLs, logger.NewNop())
	f.svc.now = func() time.Time { return time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC) }
	return f
}

func uintPtr(v uint) *uint { return &v }

func corolla() CarInput {
	price := decimal.RequireFromString("99.999")
	transmission := models.TransmissionAutomatic
	fuel := models.FuelPetrol
	return CarInput{
		BrandID:             uintPtr(1),
		Name:                strPtr("Corolla"),
		RentalPrice:         &price,
		MinimumRentalPeriod: intPtr(2),
		PickupLocationID:    uintPtr(1),
		DropoffLocationID:   uintPtr(1),
		Transmission:        &transmission,
		NumberOfSeats:       intPtr(5),
		FuelType:            &fuel,
	}
}

func TestCarCreate(t *testing.T) {
	f := newCarFixture()
	ctx := context.Background()

	car, err := f.svc.Create(ctx, corolla())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !car.IsAvailable || car.Name != "Corolla" || car.MinimumRentalPeriod != 2 {
		t.Errorf("car = %+v", car)
	}
	if got := car.RentalPrice.StringFixed(2); got != "99.99" {
		t.Errorf("price = %s, want 99.99", got)
	}

	missingBrand := corolla()
	missingBrand.BrandID = uintPtr(9)
	_, err = f.svc.Create(ctx, missingBrand)
	assertStatus(t, err, http.StatusNotFound)

	missingLocation := corolla()
	missingLocation.DropoffLocationID = uintPtr(9)
	_, err = f.svc.Create(ctx, missingLocation)
	assertStatus(t, err, http.StatusNotFound)
}

func TestCarFindOneReflectsDiscounts(t *testing.T) {
	f := newCarFixture()
	ctx := context.Background()

	car, err := f.svc.Create(ctx, corolla())
	if err != nil {
		t.Fatal(err)
	}

	discounts := NewDiscountService(f.discounts, f.cars, f.svc, logger.NewNop())
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	if _, err := discounts.Create(ctx, DiscountInput{CarID: car.ID, StartDate: start, EndDate: start.AddDate(0, 1, 0), Percentage: 25}); err != nil {
		t.Fatal(err)
	}

	readsBefore := f.cars.reads
	got, err := f.svc.FindOne(ctx, car.ID)
	if err != nil {
		t.Fatalf("FindOne() error = %v", err)
	}
	if got.DiscountPercentage != 25 {
		t.Errorf("discount = %d, want 25", got.DiscountPercentage)
	}
	if f.cars.reads != readsBefore {
		t.Error("FindOne bypassed the cache")
	}

	_, err = f.svc.FindOne(ctx, 99)
	assertStatus(t, err, http.StatusNotFound)
}

func TestCarUpdateImagesAndPolicies(t *testing.T) {
	f := newCarFixture()
	ctx := context.Background()

	car, err := f.svc.Create(ctx, corolla())
	if err != nil {
		t.Fatal(err)
	}

	updated, err := f.svc.Update(ctx, car.ID, CarInput{Name: strPtr("Corolla Cross")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Corolla Cross" || updated.NumberOfSeats != 5 {
		t.Errorf("updated = %+v", updated)
	}

	withImages, err := f.svc.AddImages(ctx, car.ID, []string{"a.png", "b.png"})
	if err != nil {
		t.Fatalf("AddImages() error = %v", err)
	}
	if len(withImages.Images) != 2 || withImages.Image == nil || *withImages.Image != "http://localhost:3000/uploads/a.png" {
		t.Errorf("images = %v cover = %v", withImages.Images, withImages.Image)
	}

	_, err = f.svc.AddImages(ctx, 99, []string{"x.png"})
	assertStatus(t, err, http.StatusNotFound)
	if len(f.uploads.removed) != 1 || f.uploads.removed[0] != "x.png" {
		t.Errorf("removed = %v, want [x.png]", f.uploads.removed)
	}

	withPolicy, err := f.svc.UpdatePolicies(ctx, car.ID, "No smoking")
	if err != nil {
		t.Fatalf("UpdatePolicies() error = %v", err)
	}
	if withPolicy.Policies == nil || *withPolicy.Policies != "No smoking" {
		t.Errorf("policies = %v", withPolicy.Policies)
	}
}

func TestCarUpdateLeavesAvailabilityToOrders(t *testing.T) {
	f := newCarFixture()
	ctx := context.Background()

	car, err := f.svc.Create(ctx, corolla())
	if err != nil {
		t.Fatal(err)
	}
	if flipped, _ := f.cars.MarkUnavailable(ctx, car.ID); !flipped {
		t.Fatal("car was not rented")
	}

	available := true
	updated, err := f.svc.Update(ctx, car.ID, CarInput{Name: strPtr("Corolla GR"), IsAvailable: &available})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.IsAvailable {
		t.Error("update made a rented car available")
	}
	if stored, _ := f.cars.get(car.ID); stored.IsAvailable || stored.Name != "Corolla GR" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestCarRemoveHidesFromAvailable(t *testing.T) {
	f := newCarFixture()
	ctx := context.Background()

	first, err := f.svc.Create(ctx, corolla())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Create(ctx, corolla()); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Remove(ctx, first.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	available, err := f.svc.FindAvailable(ctx, utils.NewPagination(1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if available.Total != 1 || available.Items[0].ID == first.ID {
		t.Errorf("available = %+v", available.Items)
	}

	all, err := f.svc.FindAll(ctx, utils.NewPagination(1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if all.Total != 2 {
		t.Errorf("all total = %d, want 2", all.Total)
	}

	cached, err := f.svc.FindOne(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cached.IsAvailable {
		t.Error("cached car still available after removal")
	}

	if err := f.cars.MarkAvailable(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	if stored, _ := f.cars.get(first.ID); stored.IsAvailable || !stored.Withdrawn {
		t.Errorf("withdrawn car released: %+v", stored)
	}
	assertStatus(t, f.svc.Remove(ctx, 99), http.StatusNotFound)
}
