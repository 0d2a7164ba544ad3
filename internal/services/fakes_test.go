package services

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"employee-management/internal/entities"
	"employee-management/internal/repositories"
	apperrors "employee-management/pkg/errors"
	"employee-management/pkg/eventbus"
	"employee-management/pkg/filestorage"
	"employee-management/pkg/mailer"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
)

type membership struct {
	empID  string
	teamID uint64
}

// fakeStore is an in-memory stand-in for the database shared by the fake
// repositories. fakeTxManager restores a snapshot when a transaction fails.
type fakeStore struct {
	mu          sync.Mutex
	users       map[string]*entities.User
	teams       map[uint64]string
	leaveTypes  []entities.LeaveTypeCount
	leaveCounts []entities.UserLeaveCount
	images      []entities.Image
	members     []membership
	notes       []entities.StickyNote
	nextNoteID  uint64
	updates     []*repositories.UpdateQuery
	events      []string

	failLeaveSeed error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: map[string]*entities.User{},
		teams: map[uint64]string{1: "Platform"},
		leaveTypes: []entities.LeaveTypeCount{
			{ID: 1, LeaveType: "casual", LeaveCount: 12},
			{ID: 2, LeaveType: "sick", LeaveCount: 8},
			{ID: 3, LeaveType: "earned", LeaveCount: 15},
		},
	}
}

type storeSnapshot struct {
	users       map[string]entities.User
	leaveCounts []entities.UserLeaveCount
	images      []entities.Image
	members     []membership
}

func (s *fakeStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make(map[string]entities.User, len(s.users))
	for k, u := range s.users {
		users[k] = *u
	}
	return storeSnapshot{
		users:       users,
		leaveCounts: append([]entities.UserLeaveCount(nil), s.leaveCounts...),
		images:      append([]entities.Image(nil), s.images...),
		members:     append([]membership(nil), s.members...),
	}
}

func (s *fakeStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]*entities.User, len(snap.users))
	for k, u := range snap.users {
		u := u
		s.users[k] = &u
	}
	s.leaveCounts = snap.leaveCounts
	s.images = snap.images
	s.members = snap.members
}

func (s *fakeStore) record(event string) {
	s.events = append(s.events, event)
}

type fakeTxManager struct {
	store *fakeStore
}

func (m *fakeTxManager) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	snap := m.store.snapshot()
	if err := fn(nil); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) find(pred func(*entities.User) bool) (*entities.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if pred(u) {
			cp := *u
			for i := len(r.store.images) - 1; i >= 0; i-- {
				if r.store.images[i].EmpID == u.EmpID {
					cp.ProfilePublicID = null.StringFrom(r.store.images[i].PublicID)
					break
				}
			}
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) FindByEmpID(_ context.Context, empID string) (*entities.User, error) {
	return r.find(func(u *entities.User) bool { return u.EmpID == empID })
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entities.User, error) {
	return r.find(func(u *entities.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	email = strings.ToLower(email)
	return r.find(func(u *entities.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) Exists(ctx context.Context, empID string) (bool, error) {
	_, err := r.FindByEmpID(ctx, empID)
	return err == nil, nil
}

func (r *fakeUserRepo) ListEmployeeIDs(_ context.Context) ([]entities.EmployeeRef, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	refs := make([]entities.EmployeeRef, 0, len(r.store.users))
	for _, u := range r.store.users {
		refs = append(refs, entities.EmployeeRef{EmpID: u.EmpID, Name: u.FullName()})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].EmpID < refs[j].EmpID })
	return refs, nil
}

func (r *fakeUserRepo) LockEmployeeIDsInTx(context.Context, pgx.Tx) error { return nil }

func (r *fakeUserRepo) LastEmployeeIDInTx(_ context.Context, _ pgx.Tx, prefix string) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	last := ""
	for id := range r.store.users {
		if strings.HasPrefix(id, prefix) && id > last {
			last = id
		}
	}
	return last, nil
}

func (r *fakeUserRepo) CreateInTx(ctx context.Context, _ pgx.Tx, user *entities.User) (*entities.User, error) {
	r.store.mu.Lock()
	for _, u := range r.store.users {
		if u.Username == user.Username || u.Email == user.Email || u.EmpID == user.EmpID {
			r.store.mu.Unlock()
			return nil, apperrors.NewConflictError("duplicate", nil)
		}
	}
	cp := *user
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.store.users[user.EmpID] = &cp
	r.store.record("create_user")
	r.store.mu.Unlock()
	return r.FindByEmpID(ctx, user.EmpID)
}

var setClause = regexp.MustCompile(`(\w+) = \$(\d+)`)

// UpdateProfileInTx applies the rendered statement by matching "col = $n".
func (r *fakeUserRepo) UpdateProfileInTx(_ context.Context, _ pgx.Tx, q *repositories.UpdateQuery) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.updates = append(r.store.updates, q)
	r.store.record("update_profile")

	setPart, wherePart, _ := strings.Cut(q.SQL, " WHERE ")
	arg := func(n string) interface{} {
		i, _ := strconv.Atoi(n)
		return q.Args[i-1]
	}

	where := setClause.FindStringSubmatch(wherePart)
	user, ok := r.store.users[arg(where[2]).(string)]
	if !ok {
		return apperrors.ErrNotFound
	}
	for _, m := range setClause.FindAllStringSubmatch(setPart, -1) {
		applyColumn(user, m[1], arg(m[2]))
	}
	return nil
}

func applyColumn(u *entities.User, column string, value interface{}) {
	if column == "completed_projects" {
		if value == nil {
			u.CompletedProjects = null.Int{}
		} else {
			u.CompletedProjects = null.IntFrom(value.(int))
		}
		return
	}
	var text null.String
	if value != nil {
		text = null.StringFrom(value.(string))
	}
	switch column {
	case "first_name":
		u.FirstName = text.String
	case "last_name":
		u.LastName = text.String
	case "email":
		u.Email = text.String
	case "address":
		u.Address = text
	case "gender":
		u.Gender = text
	case "dob":
		u.Dob = text
	case "designation":
		u.Designation = text
	case "mobile_number":
		u.MobileNumber = text
	}
}

func (r *fakeUserRepo) UpdateProfilePictureInTx(_ context.Context, _ pgx.Tx, empID, url string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[empID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.ProfilePicture = null.NewString(url, url != "")
	r.store.record("update_picture")
	return nil
}

func (r *fakeUserRepo) UpdateToken(_ context.Context, empID, token string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.users[empID]; ok {
		u.JWTToken = null.NewString(token, token != "")
	}
	return nil
}

func (r *fakeUserRepo) GetToken(_ context.Context, empID string) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[empID]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return u.JWTToken.String, nil
}

func (r *fakeUserRepo) SetOTPByEmail(_ context.Context, email string, otp int) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == strings.ToLower(email) {
			u.OTP = null.IntFrom(otp)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ConsumeOTP(_ context.Context, email string, otp int) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == strings.ToLower(email) && u.OTP.Valid && u.OTP.Int == otp {
			u.OTP = null.Int{}
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdatePasswordByEmail(_ context.Context, email, passwordHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == strings.ToLower(email) {
			u.Password = passwordHash
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type fakeTeamRepo struct {
	store *fakeStore
}

func (r *fakeTeamRepo) Exists(_ context.Context, teamID uint64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.teams[teamID]
	return ok, nil
}

func (r *fakeTeamRepo) Create(_ context.Context, name string) (*entities.Team, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	id := uint64(len(r.store.teams) + 1)
	r.store.teams[id] = name
	return &entities.Team{ID: id, Name: name}, nil
}

func (r *fakeTeamRepo) AddMemberInTx(_ context.Context, _ pgx.Tx, empID string, teamID uint64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.members = append(r.store.members, membership{empID: empID, teamID: teamID})
	r.store.record("add_member")
	return nil
}

type fakeLeaveRepo struct {
	store *fakeStore
}

func (r *fakeLeaveRepo) ListTypes(context.Context) ([]entities.LeaveTypeCount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]entities.LeaveTypeCount(nil), r.store.leaveTypes...), nil
}

func (r *fakeLeaveRepo) UpsertType(_ context.Context, leaveType string, count int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.leaveTypes = append(r.store.leaveTypes, entities.LeaveTypeCount{LeaveType: leaveType, LeaveCount: count})
	return nil
}

func (r *fakeLeaveRepo) SeedForEmployeeInTx(_ context.Context, _ pgx.Tx, empID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failLeaveSeed != nil {
		return 0, r.store.failLeaveSeed
	}
	for _, t := range r.store.leaveTypes {
		r.store.leaveCounts = append(r.store.leaveCounts, entities.UserLeaveCount{
			EmpID: empID, LeaveType: t.LeaveType, LeaveCount: t.LeaveCount,
		})
	}
	r.store.record("seed_leave")
	return int64(len(r.store.leaveTypes)), nil
}

func (r *fakeLeaveRepo) ListForEmployee(_ context.Context, empID string) ([]entities.UserLeaveCount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]entities.UserLeaveCount, 0)
	for _, c := range r.store.leaveCounts {
		if c.EmpID == empID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeImageRepo struct {
	store *fakeStore
}

func (r *fakeImageRepo) CreateInTx(_ context.Context, _ pgx.Tx, image *entities.Image) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	image.ID = uint64(len(r.store.images) + 1)
	r.store.images = append(r.store.images, *image)
	r.store.record("create_image")
	return nil
}

func (r *fakeImageRepo) DeleteByPublicIDInTx(_ context.Context, _ pgx.Tx, empID, publicID string) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, img := range r.store.images {
		if img.PublicID == publicID && img.EmpID == empID {
			r.store.images = append(r.store.images[:i:i], r.store.images[i+1:]...)
			r.store.record("delete_image_row")
			return img.URL, nil
		}
	}
	return "", apperrors.ErrNotFound
}

type fakeStickyNoteRepo struct {
	store *fakeStore
}

func (r *fakeStickyNoteRepo) Create(_ context.Context, note *entities.StickyNote) (*entities.StickyNote, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextNoteID++
	created := *note
	created.ID = r.store.nextNoteID
	created.CreatedAt = time.Now()
	r.store.notes = append(r.store.notes, created)
	return &created, nil
}

func (r *fakeStickyNoteRepo) ListByEmpID(_ context.Context, empID string) ([]entities.StickyNote, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]entities.StickyNote, 0)
	for i := len(r.store.notes) - 1; i >= 0; i-- {
		if r.store.notes[i].EmpID == empID {
			out = append(out, r.store.notes[i])
		}
	}
	return out, nil
}

func (r *fakeStickyNoteRepo) Delete(_ context.Context, id uint64, empID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, n := range r.store.notes {
		if n.ID == id && n.EmpID == empID {
			r.store.notes = append(r.store.notes[:i], r.store.notes[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type fakeStorage struct {
	store     *fakeStore
	mu        sync.Mutex
	objects   map[string]string
	deleted   []string
	uploadErr error
	counter   int
}

func newFakeStorage(store *fakeStore) *fakeStorage {
	return &fakeStorage{store: store, objects: map[string]string{}}
}

func (f *fakeStorage) Upload(_ context.Context, r io.Reader, name, prefix string) (*filestorage.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.counter++
	id := prefix + "/" + strings.Repeat("x", f.counter) + "-" + name
	f.objects[id] = string(body)
	return &filestorage.UploadResult{URL: "http://cdn.test/uploads/" + id, PublicID: id}, nil
}

func (f *fakeStorage) Delete(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, publicID)
	f.deleted = append(f.deleted, publicID)
	if f.store != nil {
		f.store.mu.Lock()
		f.store.record("delete_object")
		f.store.mu.Unlock()
	}
	return nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}}
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = toString(value)
	return nil
}

func (c *fakeCache) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = toString(value)
	return true, nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) GetDel(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	delete(c.data, key)
	return v, nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.data[key], 10, 64)
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (c *fakeCache) Expire(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}

func toString(v interface{}) string {
	return fmt.Sprint(v)
}

type sentMail struct {
	to, body, subject string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, body, subject string) (*mailer.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, sentMail{to: to, body: body, subject: subject})
	return &mailer.Receipt{Accepted: []string{to}}, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []eventbus.Event
}

func (p *fakePublisher) Publish(_ context.Context, event eventbus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, event)
}
