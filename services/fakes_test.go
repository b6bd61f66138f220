package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/golfcompete/golfcompete/models"
	"github.com/golfcompete/golfcompete/repositories"
)

// In-memory repository fakes. WithTx returns the fake itself so service
// transactions run against the same state.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTxRunner struct {
	calls int
}

func (f *fakeTxRunner) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	f.calls++
	return fn(nil)
}

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
	for _, u := range users {
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) WithTx(tx *sql.Tx) repositories.UserRepository { return r }

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, id int, role models.UserRole) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) UpdateAvatarKey(ctx context.Context, id int, key *string) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.AvatarKey = key
	return nil
}

func (r *fakeUserRepo) SetPasswordResetToken(ctx context.Context, id int, token string, expiresAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.PasswordResetToken = &token
	u.PasswordResetExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) GetByPasswordResetToken(ctx context.Context, token string) (*models.User, error) {
	for _, u := range r.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeSeriesRepo struct {
	series     map[int]*models.Series
	nextID     int
	failCreate error
}

func newFakeSeriesRepo(series ...*models.Series) *fakeSeriesRepo {
	r := &fakeSeriesRepo{series: make(map[int]*models.Series), nextID: 1}
	for _, s := range series {
		if s.ID >= r.nextID {
			r.nextID = s.ID + 1
		}
		r.series[s.ID] = s
	}
	return r
}

func (r *fakeSeriesRepo) WithTx(tx *sql.Tx) repositories.SeriesRepository { return r }

func (r *fakeSeriesRepo) Create(ctx context.Context, s *models.Series) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	s.ID = r.nextID
	r.nextID++
	s.CreatedAt = time.Now()
	cp := *s
	r.series[s.ID] = &cp
	return nil
}

func (r *fakeSeriesRepo) GetByID(ctx context.Context, id int) (*models.Series, error) {
	s, ok := r.series[id]
	if !ok {
		return nil, repositories.ErrSeriesNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSeriesRepo) List(ctx context.Context, filter repositories.SeriesFilter) ([]*models.Series, error) {
	out := make([]*models.Series, 0, len(r.series))
	for _, s := range r.series {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSeriesRepo) Update(ctx context.Context, s *models.Series) error {
	if _, ok := r.series[s.ID]; !ok {
		return repositories.ErrSeriesNotFound
	}
	cp := *s
	r.series[s.ID] = &cp
	return nil
}

func (r *fakeSeriesRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.series[id]; !ok {
		return repositories.ErrSeriesNotFound
	}
	delete(r.series, id)
	return nil
}

type fakeSeriesParticipantRepo struct {
	participants map[int]*models.SeriesParticipant
	nextID       int
	failCreate   error
}

func newFakeSeriesParticipantRepo(participants ...*models.SeriesParticipant) *fakeSeriesParticipantRepo {
	r := &fakeSeriesParticipantRepo{participants: make(map[int]*models.SeriesParticipant), nextID: 1}
	for _, p := range participants {
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
		r.participants[p.ID] = p
	}
	return r
}

func (r *fakeSeriesParticipantRepo) WithTx(tx *sql.Tx) repositories.SeriesParticipantRepository {
	return r
}

func (r *fakeSeriesParticipantRepo) Create(ctx context.Context, p *models.SeriesParticipant) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	for _, existing := range r.participants {
		if existing.SeriesID == p.SeriesID && existing.UserID == p.UserID {
			return repositories.ErrSeriesParticipantConflict
		}
	}
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.participants[p.ID] = &cp
	return nil
}

func (r *fakeSeriesParticipantRepo) GetByID(ctx context.Context, id int) (*models.SeriesParticipant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrSeriesParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeSeriesParticipantRepo) GetBySeriesAndUser(ctx context.Context, seriesID, userID int) (*models.SeriesParticipant, error) {
	for _, p := range r.participants {
		if p.SeriesID == seriesID && p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrSeriesParticipantNotFound
}

func (r *fakeSeriesParticipantRepo) ListBySeries(ctx context.Context, seriesID int, statusFilter *models.SeriesParticipantStatus, includeUser bool) ([]*models.SeriesParticipant, error) {
	out := make([]*models.SeriesParticipant, 0)
	for _, p := range r.participants {
		if p.SeriesID != seriesID {
			continue
		}
		if statusFilter != nil && p.Status != *statusFilter {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSeriesParticipantRepo) UpdateStatus(ctx context.Context, id int, status models.SeriesParticipantStatus, joinedAt *time.Time) error {
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrSeriesParticipantNotFound
	}
	p.Status = status
	p.JoinedAt = joinedAt
	return nil
}

func (r *fakeSeriesParticipantRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.participants[id]; !ok {
		return repositories.ErrSeriesParticipantNotFound
	}
	delete(r.participants, id)
	return nil
}

func (r *fakeSeriesParticipantRepo) DeleteBySeries(ctx context.Context, seriesID int) error {
	for id, p := range r.participants {
		if p.SeriesID == seriesID {
			delete(r.participants, id)
		}
	}
	return nil
}

type fakeEventRepo struct {
	events      map[int]*models.Event
	eventOrders map[int]*models.SeriesEvent
	nextID      int
	failOrder   error
}

func newFakeEventRepo(events ...*models.Event) *fakeEventRepo {
	r := &fakeEventRepo{
		events:      make(map[int]*models.Event),
		eventOrders: make(map[int]*models.SeriesEvent),
		nextID:      1,
	}
	for _, e := range events {
		if e.ID >= r.nextID {
			r.nextID = e.ID + 1
		}
		r.events[e.ID] = e
	}
	return r
}

func (r *fakeEventRepo) WithTx(tx *sql.Tx) repositories.EventRepository { return r }

func (r *fakeEventRepo) Create(ctx context.Context, e *models.Event) error {
	e.ID = r.nextID
	r.nextID++
	e.CreatedAt = time.Now()
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id int) (*models.Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEventRepo) List(ctx context.Context, filter repositories.EventFilter) ([]*models.Event, error) {
	out := make([]*models.Event, 0, len(r.events))
	for _, e := range r.events {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeEventRepo) Update(ctx context.Context, e *models.Event) error {
	if _, ok := r.events[e.ID]; !ok {
		return repositories.ErrEventNotFound
	}
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) NextEventOrder(ctx context.Context, seriesID int) (int, error) {
	max := 0
	for _, se := range r.eventOrders {
		if se.SeriesID == seriesID && se.EventOrder > max {
			max = se.EventOrder
		}
	}
	return max + 1, nil
}

func (r *fakeEventRepo) CreateSeriesEvent(ctx context.Context, se *models.SeriesEvent) error {
	if r.failOrder != nil {
		return r.failOrder
	}
	if _, ok := r.eventOrders[se.EventID]; ok {
		return repositories.ErrSeriesEventConflict
	}
	cp := *se
	r.eventOrders[se.EventID] = &cp
	return nil
}

func (r *fakeEventRepo) GetEventOrder(ctx context.Context, eventID int) (*int, error) {
	se, ok := r.eventOrders[eventID]
	if !ok {
		return nil, nil
	}
	order := se.EventOrder
	return &order, nil
}

func (r *fakeEventRepo) DeleteSeriesEvent(ctx context.Context, eventID int) error {
	delete(r.eventOrders, eventID)
	return nil
}

func (r *fakeEventRepo) DetachSeries(ctx context.Context, seriesID int) error {
	for id, se := range r.eventOrders {
		if se.SeriesID == seriesID {
			delete(r.eventOrders, id)
		}
	}
	for _, e := range r.events {
		if e.SeriesID != nil && *e.SeriesID == seriesID {
			e.SeriesID = nil
		}
	}
	return nil
}

func (r *fakeEventRepo) ListDueForStatus(ctx context.Context, now time.Time) ([]*models.Event, error) {
	out := make([]*models.Event, 0)
	for _, e := range r.events {
		due := (e.Status == models.EventStatusScheduled || e.Status == models.EventStatusUpcoming) && !e.EventDate.After(now)
		stale := e.Status == models.EventStatusInProgress && !e.EventDate.After(now.Add(-24*time.Hour))
		if due || stale {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) UpdateStatus(ctx context.Context, id int, status models.EventStatus) error {
	e, ok := r.events[id]
	if !ok {
		return repositories.ErrEventNotFound
	}
	e.Status = status
	return nil
}

type fakeEventParticipantRepo struct {
	participants map[int]*models.EventParticipant
	nextID       int
}

func newFakeEventParticipantRepo(participants ...*models.EventParticipant) *fakeEventParticipantRepo {
	r := &fakeEventParticipantRepo{participants: make(map[int]*models.EventParticipant), nextID: 1}
	for _, p := range participants {
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
		r.participants[p.ID] = p
	}
	return r
}

func (r *fakeEventParticipantRepo) WithTx(tx *sql.Tx) repositories.EventParticipantRepository {
	return r
}

func (r *fakeEventParticipantRepo) Create(ctx context.Context, p *models.EventParticipant) error {
	for _, existing := range r.participants {
		if existing.EventID == p.EventID && existing.UserID == p.UserID {
			return repositories.ErrEventParticipantConflict
		}
	}
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.participants[p.ID] = &cp
	return nil
}

func (r *fakeEventParticipantRepo) CreateBatch(ctx context.Context, participants []*models.EventParticipant) error {
	for _, p := range participants {
		if err := r.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeEventParticipantRepo) GetByID(ctx context.Context, id int) (*models.EventParticipant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrEventParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeEventParticipantRepo) GetByEventAndUser(ctx context.Context, eventID, userID int) (*models.EventParticipant, error) {
	for _, p := range r.participants {
		if p.EventID == eventID && p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrEventParticipantNotFound
}

func (r *fakeEventParticipantRepo) ListByEvent(ctx context.Context, eventID int, statusFilter *models.EventInviteStatus) ([]*models.EventParticipant, error) {
	out := make([]*models.EventParticipant, 0)
	for _, p := range r.participants {
		if p.EventID != eventID {
			continue
		}
		if statusFilter != nil && p.Status != *statusFilter {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeEventParticipantRepo) UpdateStatus(ctx context.Context, id int, status models.EventInviteStatus, responseDate *time.Time) error {
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrEventParticipantNotFound
	}
	p.Status = status
	p.ResponseDate = responseDate
	return nil
}

func (r *fakeEventParticipantRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.participants[id]; !ok {
		return repositories.ErrEventParticipantNotFound
	}
	delete(r.participants, id)
	return nil
}

func (r *fakeEventParticipantRepo) DeleteByEvent(ctx context.Context, eventID int) error {
	for id, p := range r.participants {
		if p.EventID == eventID {
			delete(r.participants, id)
		}
	}
	return nil
}

type fakeRoundRepo struct {
	rounds         map[int]*models.Round
	nextID         int
	completedByBag []*repositories.RoundWithTee
	listBagErr     error
}

func newFakeRoundRepo(rounds ...*models.Round) *fakeRoundRepo {
	r := &fakeRoundRepo{rounds: make(map[int]*models.Round), nextID: 1}
	for _, rd := range rounds {
		if rd.ID >= r.nextID {
			r.nextID = rd.ID + 1
		}
		r.rounds[rd.ID] = rd
	}
	return r
}

func (r *fakeRoundRepo) WithTx(tx *sql.Tx) repositories.RoundRepository { return r }

func (r *fakeRoundRepo) Create(ctx context.Context, round *models.Round) error {
	round.ID = r.nextID
	r.nextID++
	round.CreatedAt = time.Now()
	cp := *round
	r.rounds[round.ID] = &cp
	return nil
}

func (r *fakeRoundRepo) GetByID(ctx context.Context, id int) (*models.Round, error) {
	rd, ok := r.rounds[id]
	if !ok {
		return nil, repositories.ErrRoundNotFound
	}
	cp := *rd
	return &cp, nil
}

func (r *fakeRoundRepo) ListByUser(ctx context.Context, userID int, limit, offset int) ([]*models.Round, error) {
	out := make([]*models.Round, 0)
	for _, rd := range r.rounds {
		if rd.UserID == userID {
			cp := *rd
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRoundRepo) Update(ctx context.Context, round *models.Round) error {
	if _, ok := r.rounds[round.ID]; !ok {
		return repositories.ErrRoundNotFound
	}
	cp := *round
	r.rounds[round.ID] = &cp
	return nil
}

func (r *fakeRoundRepo) UpdateTotalScore(ctx context.Context, id int, total *int) error {
	rd, ok := r.rounds[id]
	if !ok {
		return repositories.ErrRoundNotFound
	}
	rd.TotalScore = total
	return nil
}

func (r *fakeRoundRepo) Complete(ctx context.Context, id int, total int) error {
	rd, ok := r.rounds[id]
	if !ok {
		return repositories.ErrRoundNotFound
	}
	rd.Status = models.RoundStatusCompleted
	rd.TotalScore = &total
	return nil
}

func (r *fakeRoundRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.rounds[id]; !ok {
		return repositories.ErrRoundNotFound
	}
	delete(r.rounds, id)
	return nil
}

func (r *fakeRoundRepo) ListCompletedByBag(ctx context.Context, bagID, limit int) ([]*repositories.RoundWithTee, error) {
	if r.listBagErr != nil {
		return nil, r.listBagErr
	}
	if len(r.completedByBag) > limit {
		return r.completedByBag[:limit], nil
	}
	return r.completedByBag, nil
}

type fakeScoreRepo struct {
	scores map[int][]models.HoleScore
	nextID int
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{scores: make(map[int][]models.HoleScore), nextID: 1}
}

func (r *fakeScoreRepo) WithTx(tx *sql.Tx) repositories.ScoreRepository { return r }

func (r *fakeScoreRepo) Create(ctx context.Context, score *models.HoleScore) error {
	for _, existing := range r.scores[score.RoundID] {
		if existing.HoleNumber == score.HoleNumber {
			return repositories.ErrHoleScoreConflict
		}
	}
	score.ID = r.nextID
	r.nextID++
	r.scores[score.RoundID] = append(r.scores[score.RoundID], *score)
	return nil
}

func (r *fakeScoreRepo) GetByID(ctx context.Context, id int) (*models.HoleScore, error) {
	for _, list := range r.scores {
		for _, s := range list {
			if s.ID == id {
				cp := s
				return &cp, nil
			}
		}
	}
	return nil, repositories.ErrHoleScoreNotFound
}

func (r *fakeScoreRepo) ListByRound(ctx context.Context, roundID int) ([]models.HoleScore, error) {
	out := make([]models.HoleScore, len(r.scores[roundID]))
	copy(out, r.scores[roundID])
	return out, nil
}

func (r *fakeScoreRepo) Update(ctx context.Context, score *models.HoleScore) error {
	list := r.scores[score.RoundID]
	for i, s := range list {
		if s.ID == score.ID {
			list[i] = *score
			return nil
		}
	}
	return repositories.ErrHoleScoreNotFound
}

func (r *fakeScoreRepo) Delete(ctx context.Context, id int) error {
	for roundID, list := range r.scores {
		for i, s := range list {
			if s.ID == id {
				r.scores[roundID] = append(list[:i], list[i+1:]...)
				return nil
			}
		}
	}
	return repositories.ErrHoleScoreNotFound
}

type fakeBagRepo struct {
	bags    map[int]*models.Bag
	nextID  int
	updates []*float64
}

func newFakeBagRepo(bags ...*models.Bag) *fakeBagRepo {
	r := &fakeBagRepo{bags: make(map[int]*models.Bag), nextID: 1}
	for _, b := range bags {
		if b.ID >= r.nextID {
			r.nextID = b.ID + 1
		}
		r.bags[b.ID] = b
	}
	return r
}

func (r *fakeBagRepo) WithTx(tx *sql.Tx) repositories.BagRepository { return r }

func (r *fakeBagRepo) Create(ctx context.Context, bag *models.Bag) error {
	bag.ID = r.nextID
	r.nextID++
	bag.CreatedAt = time.Now()
	cp := *bag
	r.bags[bag.ID] = &cp
	return nil
}

func (r *fakeBagRepo) GetByID(ctx context.Context, id int) (*models.Bag, error) {
	b, ok := r.bags[id]
	if !ok {
		return nil, repositories.ErrBagNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBagRepo) ListByUser(ctx context.Context, userID int) ([]*models.Bag, error) {
	out := make([]*models.Bag, 0)
	for _, b := range r.bags {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeBagRepo) Update(ctx context.Context, bag *models.Bag) error {
	if _, ok := r.bags[bag.ID]; !ok {
		return repositories.ErrBagNotFound
	}
	cp := *bag
	r.bags[bag.ID] = &cp
	return nil
}

func (r *fakeBagRepo) UpdateHandicapIndex(ctx context.Context, id int, index *float64) error {
	b, ok := r.bags[id]
	if !ok {
		return repositories.ErrBagNotFound
	}
	b.HandicapIndex = index
	r.updates = append(r.updates, index)
	return nil
}

func (r *fakeBagRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.bags[id]; !ok {
		return repositories.ErrBagNotFound
	}
	delete(r.bags, id)
	return nil
}

type fakeCourseRepo struct {
	mu      sync.Mutex
	courses map[int]*models.Course
	holes   map[int]*models.Hole
	tees    map[int]*models.CourseTee
	nextID  int
}

func newFakeCourseRepo(courses ...*models.Course) *fakeCourseRepo {
	r := &fakeCourseRepo{
		courses: make(map[int]*models.Course),
		holes:   make(map[int]*models.Hole),
		tees:    make(map[int]*models.CourseTee),
		nextID:  1,
	}
	for _, c := range courses {
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
		r.courses[c.ID] = c
	}
	return r
}

func (r *fakeCourseRepo) WithTx(tx *sql.Tx) repositories.CourseRepository { return r }

func (r *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if c.Name == course.Name {
			return repositories.ErrCourseNameConflict
		}
	}
	course.ID = r.nextID
	r.nextID++
	course.CreatedAt = time.Now()
	cp := *course
	r.courses[course.ID] = &cp
	return nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, id int) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, repositories.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCourseRepo) List(ctx context.Context, limit, offset int) ([]*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Course, 0, len(r.courses))
	for _, c := range r.courses {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[course.ID]; !ok {
		return repositories.ErrCourseNotFound
	}
	cp := *course
	r.courses[course.ID] = &cp
	return nil
}

func (r *fakeCourseRepo) UpdateImageKey(ctx context.Context, id int, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return repositories.ErrCourseNotFound
	}
	c.ImageKey = key
	return nil
}

func (r *fakeCourseRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return repositories.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *fakeCourseRepo) CreateHole(ctx context.Context, hole *models.Hole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.holes {
		if h.CourseID == hole.CourseID && h.Number == hole.Number {
			return repositories.ErrHoleNumberConflict
		}
	}
	hole.ID = r.nextID
	r.nextID++
	cp := *hole
	r.holes[hole.ID] = &cp
	return nil
}

func (r *fakeCourseRepo) GetHoleByID(ctx context.Context, id int) (*models.Hole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holes[id]
	if !ok {
		return nil, repositories.ErrHoleNotFound
	}
	cp := *h
	return &cp, nil
}

func (r *fakeCourseRepo) ListHolesByCourse(ctx context.Context, courseID int) ([]models.Hole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Hole, 0)
	for _, h := range r.holes {
		if h.CourseID == courseID {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) UpdateHole(ctx context.Context, hole *models.Hole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.holes[hole.ID]; !ok {
		return repositories.ErrHoleNotFound
	}
	cp := *hole
	r.holes[hole.ID] = &cp
	return nil
}

func (r *fakeCourseRepo) DeleteHole(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.holes[id]; !ok {
		return repositories.ErrHoleNotFound
	}
	delete(r.holes, id)
	return nil
}

func (r *fakeCourseRepo) DeleteHolesByCourse(ctx context.Context, courseID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, h := range r.holes {
		if h.CourseID == courseID {
			delete(r.holes, id)
		}
	}
	return nil
}

func (r *fakeCourseRepo) CreateTee(ctx context.Context, tee *models.CourseTee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tees {
		if t.CourseID == tee.CourseID && t.Name == tee.Name {
			return repositories.ErrCourseTeeConflict
		}
	}
	tee.ID = r.nextID
	r.nextID++
	cp := *tee
	r.tees[tee.ID] = &cp
	return nil
}

func (r *fakeCourseRepo) GetTeeByID(ctx context.Context, id int) (*models.CourseTee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tees[id]
	if !ok {
		return nil, repositories.ErrCourseTeeNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeCourseRepo) ListTeesByCourse(ctx context.Context, courseID int) ([]models.CourseTee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.CourseTee, 0)
	for _, t := range r.tees {
		if t.CourseID == courseID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) UpdateTee(ctx context.Context, tee *models.CourseTee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tees[tee.ID]; !ok {
		return repositories.ErrCourseTeeNotFound
	}
	cp := *tee
	r.tees[tee.ID] = &cp
	return nil
}

func (r *fakeCourseRepo) DeleteTee(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tees[id]; !ok {
		return repositories.ErrCourseTeeNotFound
	}
	delete(r.tees, id)
	return nil
}

type fakeNoteRepo struct {
	notes  map[int]*models.UserNote
	nextID int
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[int]*models.UserNote), nextID: 1}
}

func (r *fakeNoteRepo) WithTx(tx *sql.Tx) repositories.NoteRepository { return r }

func (r *fakeNoteRepo) Create(ctx context.Context, note *models.UserNote) error {
	note.ID = r.nextID
	r.nextID++
	note.CreatedAt = time.Now()
	note.UpdatedAt = note.CreatedAt
	cp := *note
	r.notes[note.ID] = &cp
	return nil
}

func (r *fakeNoteRepo) GetByID(ctx context.Context, id int) (*models.UserNote, error) {
	n, ok := r.notes[id]
	if !ok {
		return nil, repositories.ErrNoteNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNoteRepo) ListByUser(ctx context.Context, userID int, filter repositories.NoteFilter) ([]*models.UserNote, error) {
	out := make([]*models.UserNote, 0)
	for _, n := range r.notes {
		if n.UserID != userID {
			continue
		}
		if filter.ResourceID != nil && (n.ResourceID == nil || *n.ResourceID != *filter.ResourceID) {
			continue
		}
		if filter.ResourceType != nil && (n.ResourceType == nil || *n.ResourceType != *filter.ResourceType) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeNoteRepo) Update(ctx context.Context, note *models.UserNote) error {
	if _, ok := r.notes[note.ID]; !ok {
		return repositories.ErrNoteNotFound
	}
	note.UpdatedAt = time.Now()
	cp := *note
	r.notes[note.ID] = &cp
	return nil
}

func (r *fakeNoteRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.notes[id]; !ok {
		return repositories.ErrNoteNotFound
	}
	delete(r.notes, id)
	return nil
}

type fakeBroadcaster struct {
	rooms    []string
	messages []interface{}
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.rooms = append(b.rooms, roomID)
	b.messages = append(b.messages, message)
}
