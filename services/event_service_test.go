package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golfcompete/golfcompete/models"
)

type eventServiceFixture struct {
	svc          EventService
	tx           *fakeTxRunner
	eventRepo    *fakeEventRepo
	participants *fakeEventParticipantRepo
	seriesRepo   *fakeSeriesRepo
	seriesPart   *fakeSeriesParticipantRepo
	users        *fakeUserRepo
}

func newEventServiceFixture(users ...*models.User) *eventServiceFixture {
	f := &eventServiceFixture{
		tx:           &fakeTxRunner{},
		eventRepo:    newFakeEventRepo(),
		participants: newFakeEventParticipantRepo(),
		seriesRepo:   newFakeSeriesRepo(),
		seriesPart:   newFakeSeriesParticipantRepo(),
		users:        newFakeUserRepo(users...),
	}
	guard := NewGuard(f.users, f.seriesPart)
	f.svc = NewEventService(f.tx, f.eventRepo, f.participants, f.seriesRepo, f.seriesPart, guard, testLogger())
	return f
}

func (f *eventServiceFixture) seedSeries(t *testing.T, createdBy int) *models.Series {
	t.Helper()
	series := &models.Series{
		Name:      "Summer Tour",
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.SeriesStatusActive,
		CreatedBy: createdBy,
	}
	if err := f.seriesRepo.Create(context.Background(), series); err != nil {
		t.Fatalf("seed series: %v", err)
	}
	return series
}

func (f *eventServiceFixture) seedMember(t *testing.T, seriesID, userID int, role models.SeriesParticipantRole, status models.SeriesParticipantStatus) {
	t.Helper()
	var joined *time.Time
	if status == models.SeriesParticipantActive {
		now := time.Now()
		joined = &now
	}
	err := f.seriesPart.Create(context.Background(), &models.SeriesParticipant{
		SeriesID: seriesID,
		UserID:   userID,
		Role:     role,
		Status:   status,
		JoinedAt: joined,
	})
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}
}

func TestCreateStandaloneEvent(t *testing.T) {
	f := newEventServiceFixture(&models.User{ID: 1, Email: "creator@example.com", Role: models.RolePlayer})

	event, err := f.svc.CreateEvent(context.Background(), 1, CreateEventInput{
		Name:      "Casual Cup",
		EventDate: time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if event.Status != models.EventStatusScheduled {
		t.Errorf("status = %q, want scheduled by default", event.Status)
	}
	if event.SeriesID != nil {
		t.Error("standalone event got a series")
	}
	if event.EventOrder != nil {
		t.Error("standalone event got an event order")
	}
	invites, _ := f.participants.ListByEvent(context.Background(), event.ID, nil)
	if len(invites) != 0 {
		t.Errorf("standalone event fanned out %d invitations", len(invites))
	}
}

func TestCreateNestedEventFansOutInvitations(t *testing.T) {
	f := newEventServiceFixture(
		&models.User{ID: 1, Email: "creator@example.com", Role: models.RolePlayer},
		&models.User{ID: 2, Email: "a@example.com", Role: models.RolePlayer},
		&models.User{ID: 3, Email: "b@example.com", Role: models.RolePlayer},
		&models.User{ID: 4, Email: "c@example.com", Role: models.RolePlayer},
	)
	series := f.seedSeries(t, 1)
	f.seedMember(t, series.ID, 1, models.SeriesRoleAdmin, models.SeriesParticipantActive)
	f.seedMember(t, series.ID, 2, models.SeriesRoleParticipant, models.SeriesParticipantActive)
	f.seedMember(t, series.ID, 3, models.SeriesRoleParticipant, models.SeriesParticipantActive)
	// Invited but not yet active, so no event invitation.
	f.seedMember(t, series.ID, 4, models.SeriesRoleParticipant, models.SeriesParticipantInvited)

	event, err := f.svc.CreateEvent(context.Background(), 1, CreateEventInput{
		Name:      "Round 1",
		EventDate: time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC),
		SeriesID:  &series.ID,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if event.EventOrder == nil || *event.EventOrder != 1 {
		t.Errorf("event order = %v, want 1 for the first event", event.EventOrder)
	}

	invites, _ := f.participants.ListByEvent(context.Background(), event.ID, nil)
	if len(invites) != 3 {
		t.Fatalf("fanned out %d invitations, want 3 active members", len(invites))
	}
	for _, inv := range invites {
		if inv.Status != models.EventInviteInvited {
			t.Errorf("invitation for user %d has status %q, want invited", inv.UserID, inv.Status)
		}
	}

	// Second event in the same series takes the next slot.
	second, err := f.svc.CreateEvent(context.Background(), 1, CreateEventInput{
		Name:      "Round 2",
		EventDate: time.Date(2026, 6, 10, 8, 0, 0, 0, time.UTC),
		SeriesID:  &series.ID,
	})
	if err != nil {
		t.Fatalf("CreateEvent second: %v", err)
	}
	if second.EventOrder == nil || *second.EventOrder != 2 {
		t.Errorf("second event order = %v, want 2", second.EventOrder)
	}
}

func TestCreateNestedEventRequiresSeriesManager(t *testing.T) {
	f := newEventServiceFixture(
		&models.User{ID: 1, Email: "creator@example.com", Role: models.RolePlayer},
		&models.User{ID: 2, Email: "member@example.com", Role: models.RolePlayer},
	)
	series := f.seedSeries(t, 1)
	f.seedMember(t, series.ID, 2, models.SeriesRoleParticipant, models.SeriesParticipantActive)

	_, err := f.svc.CreateEvent(context.Background(), 2, CreateEventInput{
		Name:      "Rogue Round",
		EventDate: time.Now(),
		SeriesID:  &series.ID,
	})
	if !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("CreateEvent by plain member error = %v, want ErrForbiddenOperation", err)
	}
}

func TestCreateEventUnknownSeries(t *testing.T) {
	f := newEventServiceFixture(&models.User{ID: 1, Email: "creator@example.com", Role: models.RolePlayer})
	missing := 42
	_, err := f.svc.CreateEvent(context.Background(), 1, CreateEventInput{
		Name:      "Orphan",
		EventDate: time.Now(),
		SeriesID:  &missing,
	})
	if !errors.Is(err, ErrSeriesNotFound) {
		t.Errorf("error = %v, want ErrSeriesNotFound", err)
	}
}

func TestRespondToEventInvitation(t *testing.T) {
	f := newEventServiceFixture(
		&models.User{ID: 1, Email: "creator@example.com", Role: models.RolePlayer},
		&models.User{ID: 2, Email: "invitee@example.com", Role: models.RolePlayer},
	)
	event, err := f.svc.CreateEvent(context.Background(), 1, CreateEventInput{
		Name:      "Casual Cup",
		EventDate: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	invite, err := f.svc.InviteParticipant(context.Background(), 1, event.ID, 2)
	if err != nil {
		t.Fatalf("InviteParticipant: %v", err)
	}

	p, err := f.svc.RespondToInvitation(context.Background(), 2, invite.ID, true)
	if err != nil {
		t.Fatalf("RespondToInvitation: %v", err)
	}
	if p.Status != models.EventInviteConfirmed {
		t.Errorf("status = %q, want confirmed", p.Status)
	}
	if p.ResponseDate == nil {
		t.Error("response_date not set")
	}

	if _, err := f.svc.RespondToInvitation(context.Background(), 2, invite.ID, false); !errors.Is(err, ErrInvitationNotPending) {
		t.Errorf("second response error = %v, want ErrInvitationNotPending", err)
	}
}

func TestRemoveParticipantSelfRemoval(t *testing.T) {
	f := newEventServiceFixture(
		&models.User{ID: 1, Email: "creator@example.com", Role: models.RolePlayer},
		&models.User{ID: 2, Email: "invitee@example.com", Role: models.RolePlayer},
		&models.User{ID: 3, Email: "stranger@example.com", Role: models.RolePlayer},
	)
	event, err := f.svc.CreateEvent(context.Background(), 1, CreateEventInput{
		Name:      "Casual Cup",
		EventDate: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	invite, err := f.svc.InviteParticipant(context.Background(), 1, event.ID, 2)
	if err != nil {
		t.Fatalf("InviteParticipant: %v", err)
	}

	// A stranger may not remove someone else's invitation.
	if err := f.svc.RemoveParticipant(context.Background(), 3, invite.ID); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("stranger removal error = %v, want ErrForbiddenOperation", err)
	}
	// The invitee may withdraw themselves.
	if err := f.svc.RemoveParticipant(context.Background(), 2, invite.ID); err != nil {
		t.Fatalf("self removal: %v", err)
	}
	if _, err := f.participants.GetByID(context.Background(), invite.ID); err == nil {
		t.Error("invitation still present after removal")
	}
}

func TestDeleteEventCleansUp(t *testing.T) {
	f := newEventServiceFixture(
		&models.User{ID: 1, Email: "creator@example.com", Role: models.RolePlayer},
		&models.User{ID: 2, Email: "member@example.com", Role: models.RolePlayer},
	)
	series := f.seedSeries(t, 1)
	f.seedMember(t, series.ID, 2, models.SeriesRoleParticipant, models.SeriesParticipantActive)

	event, err := f.svc.CreateEvent(context.Background(), 1, CreateEventInput{
		Name:      "Round 1",
		EventDate: time.Now(),
		SeriesID:  &series.ID,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if err := f.svc.DeleteEvent(context.Background(), 1, event.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if _, err := f.eventRepo.GetByID(context.Background(), event.ID); err == nil {
		t.Error("event still present after delete")
	}
	invites, _ := f.participants.ListByEvent(context.Background(), event.ID, nil)
	if len(invites) != 0 {
		t.Errorf("%d invitations left behind", len(invites))
	}
	if order, _ := f.eventRepo.GetEventOrder(context.Background(), event.ID); order != nil {
		t.Error("series ordering row left behind")
	}
}

func TestAutoUpdateEventStatusesByDates(t *testing.T) {
	f := newEventServiceFixture(&models.User{ID: 1, Email: "creator@example.com", Role: models.RolePlayer})
	ctx := context.Background()

	yesterday := time.Now().Add(-36 * time.Hour)
	earlier := time.Now().Add(-time.Hour)
	tomorrow := time.Now().Add(24 * time.Hour)

	due := &models.Event{Name: "Due", EventDate: earlier, Status: models.EventStatusScheduled, CreatedBy: 1}
	stale := &models.Event{Name: "Stale", EventDate: yesterday, Status: models.EventStatusInProgress, CreatedBy: 1}
	future := &models.Event{Name: "Future", EventDate: tomorrow, Status: models.EventStatusScheduled, CreatedBy: 1}
	cancelled := &models.Event{Name: "Cancelled", EventDate: yesterday, Status: models.EventStatusCancelled, CreatedBy: 1}
	for _, e := range []*models.Event{due, stale, future, cancelled} {
		if err := f.eventRepo.Create(ctx, e); err != nil {
			t.Fatalf("seed event: %v", err)
		}
	}

	if err := f.svc.AutoUpdateEventStatusesByDates(ctx); err != nil {
		t.Fatalf("AutoUpdateEventStatusesByDates: %v", err)
	}

	tests := []struct {
		name string
		id   int
		want models.EventStatus
	}{
		{"due event starts", due.ID, models.EventStatusInProgress},
		{"stale event completes", stale.ID, models.EventStatusCompleted},
		{"future event untouched", future.ID, models.EventStatusScheduled},
		{"cancelled event untouched", cancelled.ID, models.EventStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.eventRepo.GetByID(ctx, tt.id)
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}
			if got.Status != tt.want {
				t.Errorf("status = %q, want %q", got.Status, tt.want)
			}
		})
	}
}
