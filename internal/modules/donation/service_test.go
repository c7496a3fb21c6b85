package donation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"foodbridge/internal/models"
)

type fakeRepo struct {
	donations map[string]*models.Donation
	active    map[string]bool // donationID|requesterID -> has active request
	lastList  models.DonationFilter
	nextID    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		donations: make(map[string]*models.Donation),
		active:    make(map[string]bool),
	}
}

func (f *fakeRepo) Create(ctx context.Context, d *models.Donation) (*models.Donation, error) {
	f.nextID++
	cp := *d
	cp.ID = fmt.Sprintf("don-%d", f.nextID)
	cp.Status = models.DonationAvailable
	f.donations[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, donationID string) (*models.Donation, error) {
	d, ok := f.donations[donationID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRepo) ListAvailable(ctx context.Context, filter models.DonationFilter) ([]*models.Donation, error) {
	f.lastList = filter
	var out []*models.Donation
	for _, d := range f.donations {
		if d.Status == models.DonationAvailable {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByDonor(ctx context.Context, donorID string) ([]*models.Donation, error) {
	var out []*models.Donation
	for _, d := range f.donations {
		if d.DonorID == donorID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) SetNeedsVolunteer(ctx context.Context, donationID string, needs bool) error {
	d, ok := f.donations[donationID]
	if !ok {
		return models.ErrNotFound
	}
	d.NeedsVolunteer = needs
	return nil
}

func (f *fakeRepo) HasActiveRequest(ctx context.Context, donationID, requesterID string) (bool, error) {
	return f.active[donationID+"|"+requesterID], nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func validCreate() models.CreateDonationRequest {
	return models.CreateDonationRequest{
		FoodName: "Rice and curry",
		Quantity: "10 servings",
		FoodType: "cooked",
		Expiry:   "2026-09-01T18:00:00Z",
		Location: "Chennai",
	}
}

func TestCreateDonation(t *testing.T) {
	fr := newFakeRepo()
	svc := NewService(fr)
	svc.now = fixedClock(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))

	d, err := svc.CreateDonation(context.Background(), "donor1", validCreate())
	if err != nil {
		t.Fatalf("CreateDonation error: %v", err)
	}
	if d.Status != models.DonationAvailable {
		t.Errorf("status = %s; want available", d.Status)
	}
	if d.DonorID != "donor1" {
		t.Errorf("donor = %s; want donor1", d.DonorID)
	}
}

func TestCreateDonationValidation(t *testing.T) {
	fr := newFakeRepo()
	svc := NewService(fr)
	svc.now = fixedClock(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))

	cases := []struct {
		name   string
		mutate func(*models.CreateDonationRequest)
	}{
		{"malformed expiry", func(r *models.CreateDonationRequest) { r.Expiry = "tomorrow" }},
		{"past expiry", func(r *models.CreateDonationRequest) { r.Expiry = "2026-08-27T12:00:00Z" }},
		{"latitude without longitude", func(r *models.CreateDonationRequest) {
			lat := 13.08
			r.Latitude = &lat
		}},
		{"malformed preparation date", func(r *models.CreateDonationRequest) { r.PreparationDate = "yesterday" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreate()
			tc.mutate(&req)
			_, err := svc.CreateDonation(context.Background(), "donor1", req)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("err = %v; want ValidationError", err)
			}
		})
	}

	if len(fr.donations) != 0 {
		t.Errorf("invalid input reached the store: %d rows", len(fr.donations))
	}
}

func TestListAvailableDropsOrphanRadius(t *testing.T) {
	fr := newFakeRepo()
	svc := NewService(fr)

	radius := 5.0
	if _, err := svc.ListAvailable(context.Background(), models.DonationFilter{RadiusKm: &radius}); err != nil {
		t.Fatalf("ListAvailable error: %v", err)
	}
	// No reference point, so the radius must not reach the repository.
	if fr.lastList.RadiusKm != nil {
		t.Error("radius filter passed through without coordinates")
	}

	lat, lon := 13.08, 80.27
	if _, err := svc.ListAvailable(context.Background(), models.DonationFilter{
		Latitude: &lat, Longitude: &lon, RadiusKm: &radius,
	}); err != nil {
		t.Fatalf("ListAvailable error: %v", err)
	}
	if fr.lastList.RadiusKm == nil {
		t.Error("radius filter dropped despite coordinates")
	}
}

func TestSetNeedsVolunteerRequiresActiveRequest(t *testing.T) {
	fr := newFakeRepo()
	svc := NewService(fr)
	svc.now = fixedClock(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))

	d, err := svc.CreateDonation(context.Background(), "donor1", validCreate())
	if err != nil {
		t.Fatalf("CreateDonation error: %v", err)
	}

	if err := svc.SetNeedsVolunteer(context.Background(), d.ID, "ngo1", true); err != models.ErrForbidden {
		t.Errorf("flag without active request err = %v; want ErrForbidden", err)
	}

	fr.active[d.ID+"|ngo1"] = true
	if err := svc.SetNeedsVolunteer(context.Background(), d.ID, "ngo1", true); err != nil {
		t.Fatalf("SetNeedsVolunteer error: %v", err)
	}
	if !fr.donations[d.ID].NeedsVolunteer {
		t.Error("needs_volunteer not set")
	}
}
