package request

import (
	"context"
	"fmt"
	"testing"
	"time"

	"foodbridge/internal/models"
)

// fakeDonation mirrors the columns the coordinator touches.
type fakeDonation struct {
	donorID string
	status  string
}

// fakeRepo mimics the store's conditional-update semantics: a lost
// compare-and-set surfaces as the same sentinel the real repository maps
// zero affected rows to.
type fakeRepo struct {
	donations  map[string]*fakeDonation
	requests   map[string]*models.FoodRequest
	deliveries map[string]*models.Delivery // keyed by request id
	contacts   map[string]string           // user id -> email
	nextID     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		donations:  make(map[string]*fakeDonation),
		requests:   make(map[string]*models.FoodRequest),
		deliveries: make(map[string]*models.Delivery),
		contacts:   make(map[string]string),
	}
}

func (f *fakeRepo) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeRepo) Create(ctx context.Context, donationID, requesterID string) (*models.FoodRequest, error) {
	d, ok := f.donations[donationID]
	if !ok || d.status != models.DonationAvailable {
		return nil, models.ErrDonationUnavailable
	}
	for _, r := range f.requests {
		if r.DonationID == donationID && r.RequesterID == requesterID &&
			(r.Status == models.RequestPending || r.Status == models.RequestApproved) {
			return nil, models.ErrConflict
		}
	}
	req := &models.FoodRequest{
		ID:          f.id("req"),
		DonationID:  donationID,
		RequesterID: requesterID,
		Status:      models.RequestPending,
		CreatedAt:   time.Now(),
	}
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, requestID string) (*models.FoodRequest, error) {
	r, ok := f.requests[requestID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *r
	if d, ok := f.donations[r.DonationID]; ok {
		cp.DonorID = d.donorID
		cp.DonationStatus = d.status
	}
	return &cp, nil
}

func (f *fakeRepo) ListByRequester(ctx context.Context, requesterID string) ([]*models.FoodRequest, error) {
	var out []*models.FoodRequest
	for _, r := range f.requests {
		if r.RequesterID == requesterID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListIncoming(ctx context.Context, donorID string) ([]*models.FoodRequest, error) {
	var out []*models.FoodRequest
	for _, r := range f.requests {
		if d, ok := f.donations[r.DonationID]; ok && d.donorID == donorID && r.Status == models.RequestPending {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, requestID, expected, status string) error {
	r, ok := f.requests[requestID]
	if !ok || r.Status != expected {
		return models.ErrRequestNotActionable
	}
	r.Status = status
	return nil
}

func (f *fakeRepo) BookDelivery(ctx context.Context, requestID, donationID string, volunteerID *string) (*models.Delivery, error) {
	d, ok := f.donations[donationID]
	if !ok {
		return nil, models.ErrNotFound
	}
	status := models.DeliveryPendingPickup
	if volunteerID != nil {
		status = models.DeliveryAssigned
	}

	if existing, ok := f.deliveries[requestID]; ok {
		if existing.Status != models.DeliveryPendingPickup && existing.Status != models.DeliveryAssigned {
			return nil, models.ErrRequestNotActionable
		}
		if d.status != models.DonationOrdered {
			return nil, models.ErrDonationUnavailable
		}
		existing.VolunteerID = volunteerID
		existing.Status = status
		cp := *existing
		return &cp, nil
	}

	if d.status != models.DonationAvailable {
		return nil, models.ErrDonationUnavailable
	}
	d.status = models.DonationOrdered
	dl := &models.Delivery{
		ID:          f.id("dl"),
		RequestID:   requestID,
		VolunteerID: volunteerID,
		Status:      status,
	}
	f.deliveries[requestID] = dl
	cp := *dl
	return &cp, nil
}

func (f *fakeRepo) ConfirmReceived(ctx context.Context, requestID, donationID string) error {
	r, ok := f.requests[requestID]
	if !ok || r.Status != models.RequestApproved {
		return models.ErrRequestNotActionable
	}
	r.Status = models.RequestCompleted
	if d, ok := f.donations[donationID]; ok {
		d.status = models.DonationDelivered
	}
	if dl, ok := f.deliveries[requestID]; ok {
		dl.Status = models.DeliveryDelivered
	}
	return nil
}

func (f *fakeRepo) GetUserContact(ctx context.Context, userID string) (string, string, error) {
	email, ok := f.contacts[userID]
	if !ok {
		return "", "", models.ErrNotFound
	}
	return "user", email, nil
}

// recordingNotifier captures outgoing mail.
type recordingNotifier struct {
	sent []string
}

func (n *recordingNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.sent = append(n.sent, to)
	return nil
}

func seedDonation(fr *fakeRepo, donorID string) string {
	id := fr.id("don")
	fr.donations[id] = &fakeDonation{donorID: donorID, status: models.DonationAvailable}
	return id
}

func TestCreateRequestKeepsDonationAvailable(t *testing.T) {
	fr := newFakeRepo()
	donID := seedDonation(fr, "donor1")
	svc := NewService(fr, nil)

	req, err := svc.CreateRequest(context.Background(), donID, "ngo1", models.RoleNGO)
	if err != nil {
		t.Fatalf("CreateRequest error: %v", err)
	}
	if req.Status != models.RequestPending {
		t.Errorf("request status = %s; want Pending", req.Status)
	}
	// The donation stays open for other requesters until booking.
	if fr.donations[donID].status != models.DonationAvailable {
		t.Errorf("donation status = %s; want available", fr.donations[donID].status)
	}

	// A second NGO may still request the same donation.
	if _, err := svc.CreateRequest(context.Background(), donID, "ngo2", models.RoleNGO); err != nil {
		t.Errorf("second requester rejected: %v", err)
	}

	// But the same NGO cannot hold two active requests on it.
	if _, err := svc.CreateRequest(context.Background(), donID, "ngo1", models.RoleNGO); err == nil {
		t.Error("duplicate active request accepted; want conflict")
	}
}

func TestCreateRequestRoleAndAvailability(t *testing.T) {
	fr := newFakeRepo()
	donID := seedDonation(fr, "donor1")
	svc := NewService(fr, nil)

	if _, err := svc.CreateRequest(context.Background(), donID, "vol1", models.RoleVolunteer); err != models.ErrForbidden {
		t.Errorf("volunteer create request err = %v; want ErrForbidden", err)
	}

	fr.donations[donID].status = models.DonationOrdered
	_, err := svc.CreateRequest(context.Background(), donID, "ngo1", models.RoleNGO)
	if err == nil {
		t.Fatal("request against ordered donation accepted; want error")
	}
}

func TestReviewOwnershipAndTransitions(t *testing.T) {
	fr := newFakeRepo()
	donID := seedDonation(fr, "donor1")
	fr.contacts["ngo1"] = "ngo1@example.org"
	notifier := &recordingNotifier{}
	svc := NewService(fr, notifier)

	req, err := svc.CreateRequest(context.Background(), donID, "ngo1", models.RoleNGO)
	if err != nil {
		t.Fatalf("CreateRequest error: %v", err)
	}

	// A stranger cannot review.
	if _, err := svc.Review(context.Background(), req.ID, "donor2", models.RequestApproved); err != models.ErrForbidden {
		t.Errorf("stranger review err = %v; want ErrForbidden", err)
	}

	approved, err := svc.Review(context.Background(), req.ID, "donor1", models.RequestApproved)
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if approved.Status != models.RequestApproved {
		t.Errorf("status after approval = %s; want Approved", approved.Status)
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != "ngo1@example.org" {
		t.Errorf("approval notification sent = %v; want [ngo1@example.org]", notifier.sent)
	}

	// Approved is not Pending anymore; a second review must fail.
	if _, err := svc.Review(context.Background(), req.ID, "donor1", models.RequestRejected); err != models.ErrRequestNotActionable {
		t.Errorf("re-review err = %v; want ErrRequestNotActionable", err)
	}
}

func TestReviewRejectLeavesDonationAvailable(t *testing.T) {
	fr := newFakeRepo()
	donID := seedDonation(fr, "donor1")
	svc := NewService(fr, nil)

	req, _ := svc.CreateRequest(context.Background(), donID, "ngo1", models.RoleNGO)
	if _, err := svc.Review(context.Background(), req.ID, "donor1", models.RequestRejected); err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if fr.donations[donID].status != models.DonationAvailable {
		t.Errorf("donation status after reject = %s; want available", fr.donations[donID].status)
	}
	// Another NGO can still claim it.
	if _, err := svc.CreateRequest(context.Background(), donID, "ngo2", models.RoleNGO); err != nil {
		t.Errorf("post-reject request failed: %v", err)
	}
}

func TestBookDeliveryHappyPath(t *testing.T) {
	fr := newFakeRepo()
	donID := seedDonation(fr, "donor1")
	svc := NewService(fr, nil)

	req, _ := svc.CreateRequest(context.Background(), donID, "ngo1", models.RoleNGO)
	if _, err := svc.Review(context.Background(), req.ID, "donor1", models.RequestApproved); err != nil {
		t.Fatalf("Review error: %v", err)
	}

	dl, err := svc.BookDelivery(context.Background(), req.ID, "ngo1", models.RoleNGO, nil)
	if err != nil {
		t.Fatalf("BookDelivery error: %v", err)
	}
	// Triad after booking: PendingPickup delivery, donation ordered.
	if dl.Status != models.DeliveryPendingPickup {
		t.Errorf("delivery status = %s; want PendingPickup", dl.Status)
	}
	if fr.donations[donID].status != models.DonationOrdered {
		t.Errorf("donation status = %s; want ordered", fr.donations[donID].status)
	}
	if _, ok := fr.deliveries[req.ID]; !ok {
		t.Error("no delivery row recorded for the request")
	}
}

func TestBookDeliveryWithVolunteerNotifies(t *testing.T) {
	fr := newFakeRepo()
	donID := seedDonation(fr, "donor1")
	fr.contacts["vol1"] = "vol1@example.org"
	notifier := &recordingNotifier{}
	svc := NewService(fr, notifier)

	req, _ := svc.CreateRequest(context.Background(), donID, "ngo1", models.RoleNGO)
	svc.Review(context.Background(), req.ID, "donor1", models.RequestApproved)

	vol := "vol1"
	dl, err := svc.BookDelivery(context.Background(), req.ID, "ngo1", models.RoleNGO, &vol)
	if err != nil {
		t.Fatalf("BookDelivery error: %v", err)
	}
	if dl.Status != models.DeliveryAssigned {
		t.Errorf("delivery status = %s; want Assigned", dl.Status)
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != "vol1@example.org" {
		t.Errorf("assignment notification sent = %v; want [vol1@example.org]", notifier.sent)
	}
}

func TestBookDeliveryExclusivity(t *testing.T) {
	fr := newFakeRepo()
	donID := seedDonation(fr, "donor1")
	svc := NewService(fr, nil)

	req1, _ := svc.CreateRequest(context.Background(), donID, "ngo1", models.RoleNGO)
	req2, _ := svc.CreateRequest(context.Background(), donID, "ngo2", models.RoleNGO)
	svc.Review(context.Background(), req1.ID, "donor1", models.RequestApproved)
	svc.Review(context.Background(), req2.ID, "donor1", models.RequestApproved)

	if _, err := svc.BookDelivery(context.Background(), req1.ID, "ngo1", models.RoleNGO, nil); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	// The second booking loses the donation compare-and-set.
	_, err := svc.BookDelivery(context.Background(), req2.ID, "ngo2", models.RoleNGO, nil)
	if err == nil {
		t.Fatal("second booking succeeded; want conflict")
	}
}

func TestBookDeliveryRebindsVolunteerIdempotently(t *testing.T) {
	fr := newFakeRepo()
	donID := seedDonation(fr, "donor1")
	svc := NewService(fr, nil)

	req, _ := svc.CreateRequest(context.Background(), donID, "ngo1", models.RoleNGO)
	svc.Review(context.Background(), req.ID, "donor1", models.RequestApproved)

	if _, err := svc.BookDelivery(context.Background(), req.ID, "ngo1", models.RoleNGO, nil); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	vol := "vol1"
	dl, err := svc.BookDelivery(context.Background(), req.ID, "ngo1", models.RoleNGO, &vol)
	if err != nil {
		t.Fatalf("re-booking failed: %v", err)
	}
	if dl.Status != models.DeliveryAssigned || dl.VolunteerID == nil || *dl.VolunteerID != "vol1" {
		t.Errorf("re-booking did not bind the volunteer: %+v", dl)
	}
	if len(fr.deliveries) != 1 {
		t.Errorf("delivery rows = %d; want 1 (no duplicate)", len(fr.deliveries))
	}
}

func TestBookDeliveryAuthorization(t *testing.T) {
	fr := newFakeRepo()
	donID := seedDonation(fr, "donor1")
	svc := NewService(fr, nil)

	req, _ := svc.CreateRequest(context.Background(), donID, "ngo1", models.RoleNGO)

	// A third party can never book.
	if _, err := svc.BookDelivery(context.Background(), req.ID, "ngo2", models.RoleNGO, nil); err != models.ErrForbidden {
		t.Errorf("stranger booking err = %v; want ErrForbidden", err)
	}
	// The donor cannot book a request still Pending.
	if _, err := svc.BookDelivery(context.Background(), req.ID, "donor1", models.RoleDonor, nil); err != models.ErrRequestNotActionable {
		t.Errorf("donor booking pending request err = %v; want ErrRequestNotActionable", err)
	}
	// The requester may use the simplified flow and book while Pending.
	if _, err := svc.BookDelivery(context.Background(), req.ID, "ngo1", models.RoleNGO, nil); err != nil {
		t.Errorf("requester booking own pending request failed: %v", err)
	}
}

func TestConfirmReceivedFinalizesTriad(t *testing.T) {
	fr := newFakeRepo()
	donID := seedDonation(fr, "donor1")
	svc := NewService(fr, nil)

	req, _ := svc.CreateRequest(context.Background(), donID, "ngo1", models.RoleNGO)
	svc.Review(context.Background(), req.ID, "donor1", models.RequestApproved)
	svc.BookDelivery(context.Background(), req.ID, "ngo1", models.RoleNGO, nil)

	// Only the requester may confirm.
	if err := svc.ConfirmReceived(context.Background(), req.ID, "ngo2"); err != models.ErrForbidden {
		t.Errorf("stranger confirm err = %v; want ErrForbidden", err)
	}

	if err := svc.ConfirmReceived(context.Background(), req.ID, "ngo1"); err != nil {
		t.Fatalf("ConfirmReceived error: %v", err)
	}
	if fr.requests[req.ID].Status != models.RequestCompleted {
		t.Errorf("request status = %s; want Completed", fr.requests[req.ID].Status)
	}
	if fr.donations[donID].status != models.DonationDelivered {
		t.Errorf("donation status = %s; want delivered", fr.donations[donID].status)
	}
	if fr.deliveries[req.ID].Status != models.DeliveryDelivered {
		t.Errorf("delivery status = %s; want Delivered", fr.deliveries[req.ID].Status)
	}

	// Completed is terminal; nothing moves it again.
	if err := svc.ConfirmReceived(context.Background(), req.ID, "ngo1"); err != models.ErrRequestNotActionable {
		t.Errorf("second confirm err = %v; want ErrRequestNotActionable", err)
	}
	if _, err := svc.Review(context.Background(), req.ID, "donor1", models.RequestRejected); err != models.ErrRequestNotActionable {
		t.Errorf("review of completed request err = %v; want ErrRequestNotActionable", err)
	}
}
