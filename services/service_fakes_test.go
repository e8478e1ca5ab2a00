package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/repositories"
	"github.com/sportsfest/registration-system/storage"
)

// In-memory repository fakes shared by the service tests.

// memDriver backs services that open a transaction around repository calls.
// Its transactions are no-ops; the fakes below ignore the executor they are
// handed, so the full transactional path runs against in-memory state.
type memDriver struct{}

func (memDriver) Open(string) (driver.Conn, error) { return memConn{}, nil }

type memConn struct{}

func (memConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (memConn) Close() error                        { return nil }
func (memConn) Begin() (driver.Tx, error)           { return memTx{}, nil }

type memTx struct{}

func (memTx) Commit() error   { return nil }
func (memTx) Rollback() error { return nil }

var memDriverOnce sync.Once

func openFakeDB(t *testing.T) *sql.DB {
	t.Helper()
	memDriverOnce.Do(func() { sql.Register("inmem", memDriver{}) })
	db, err := sql.Open("inmem", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type fakeSportRepo struct {
	nextID int
	sports map[int]*models.Sport
	edges  map[[2]int]bool
}

func newFakeSportRepo() *fakeSportRepo {
	return &fakeSportRepo{sports: make(map[int]*models.Sport), edges: make(map[[2]int]bool)}
}

func (r *fakeSportRepo) add(s models.Sport) *models.Sport {
	r.nextID++
	s.ID = r.nextID
	r.sports[s.ID] = &s
	return &s
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func (r *fakeSportRepo) Create(ctx context.Context, sport *models.Sport) error {
	r.nextID++
	sport.ID = r.nextID
	cp := *sport
	r.sports[sport.ID] = &cp
	return nil
}

func (r *fakeSportRepo) GetByID(ctx context.Context, id int) (*models.Sport, error) {
	sport, ok := r.sports[id]
	if !ok {
		return nil, repositories.ErrSportNotFound
	}
	cp := *sport
	return &cp, nil
}

func (r *fakeSportRepo) GetAll(ctx context.Context, activeOnly bool) ([]models.Sport, error) {
	out := make([]models.Sport, 0, len(r.sports))
	for _, sport := range r.sports {
		if activeOnly && !sport.Active {
			continue
		}
		out = append(out, *sport)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSportRepo) ListByParent(ctx context.Context, parentID int) ([]models.Sport, error) {
	out := make([]models.Sport, 0)
	for _, sport := range r.sports {
		if sport.ParentID != nil && *sport.ParentID == parentID {
			out = append(out, *sport)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSportRepo) Update(ctx context.Context, sport *models.Sport) error {
	if _, ok := r.sports[sport.ID]; !ok {
		return repositories.ErrSportNotFound
	}
	cp := *sport
	r.sports[sport.ID] = &cp
	return nil
}

func (r *fakeSportRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	sport, ok := r.sports[id]
	if !ok {
		return repositories.ErrSportNotFound
	}
	sport.LogoKey = logoKey
	return nil
}

func (r *fakeSportRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.sports[id]; !ok {
		return repositories.ErrSportNotFound
	}
	delete(r.sports, id)
	return nil
}

func (r *fakeSportRepo) AddIncompatibility(ctx context.Context, sportID, otherID int) error {
	r.edges[edgeKey(sportID, otherID)] = true
	return nil
}

func (r *fakeSportRepo) RemoveIncompatibility(ctx context.Context, sportID, otherID int) error {
	delete(r.edges, edgeKey(sportID, otherID))
	return nil
}

func (r *fakeSportRepo) ListIncompatibleIDs(ctx context.Context, sportID int) ([]int, error) {
	out := make([]int, 0)
	for key := range r.edges {
		switch sportID {
		case key[0]:
			out = append(out, key[1])
		case key[1]:
			out = append(out, key[0])
		}
	}
	sort.Ints(out)
	return out, nil
}

func (r *fakeSportRepo) IncompatiblePairsWithin(ctx context.Context, sportIDs []int) ([][2]int, error) {
	in := make(map[int]bool, len(sportIDs))
	for _, id := range sportIDs {
		in[id] = true
	}
	out := make([][2]int, 0)
	for key := range r.edges {
		if in[key[0]] && in[key[1]] {
			out = append(out, key)
		}
	}
	return out, nil
}

func (r *fakeSportRepo) GetByAdminLogin(ctx context.Context, login string) (*models.Sport, error) {
	for _, sport := range r.sports {
		if sport.AdminUsername != nil && *sport.AdminUsername == login {
			cp := *sport
			return &cp, nil
		}
		if sport.AdminEmail != nil && *sport.AdminEmail == login {
			cp := *sport
			return &cp, nil
		}
	}
	return nil, repositories.ErrSportNotFound
}

type fakeParticipantRepo struct {
	nextID       int
	participants map[int]*models.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: make(map[int]*models.Participant)}
}

func copyParticipant(p *models.Participant) *models.Participant {
	cp := *p
	cp.Sports = append(models.SportSelectionList(nil), p.Sports...)
	if p.PendingSports != nil {
		cp.PendingSports = append(models.SportSelectionList(nil), p.PendingSports...)
	}
	return &cp
}

func (r *fakeParticipantRepo) Create(ctx context.Context, q repositories.SQLExecutor, p *models.Participant) error {
	for _, existing := range r.participants {
		if existing.Email == p.Email && existing.CommunityID == p.CommunityID {
			return repositories.ErrParticipantEmailConflict
		}
	}
	r.nextID++
	p.ID = r.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.participants[p.ID] = copyParticipant(p)
	return nil
}

func (r *fakeParticipantRepo) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	return copyParticipant(p), nil
}

func (r *fakeParticipantRepo) GetByIDForUpdate(ctx context.Context, q repositories.SQLExecutor, id int) (*models.Participant, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeParticipantRepo) GetByUserID(ctx context.Context, userID int) (*models.Participant, error) {
	for _, p := range r.participants {
		if p.UserID != nil && *p.UserID == userID {
			return copyParticipant(p), nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) FindByEmailAndCommunity(ctx context.Context, email string, communityID int) (*models.Participant, error) {
	for _, p := range r.participants {
		if strings.EqualFold(p.Email, email) && p.CommunityID == communityID {
			return copyParticipant(p), nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) List(ctx context.Context, filter repositories.ParticipantFilter) ([]models.Participant, error) {
	out := make([]models.Participant, 0)
	for _, p := range r.participants {
		if filter.CommunityID != nil && p.CommunityID != *filter.CommunityID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.SportID != nil {
			found := false
			for _, sel := range p.Sports {
				if sel.SportID == *filter.SportID {
					found = true
					break
				}
			}
			for _, sel := range p.PendingSports {
				if sel.SportID == *filter.SportID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, *copyParticipant(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeParticipantRepo) Update(ctx context.Context, p *models.Participant) error {
	if _, ok := r.participants[p.ID]; !ok {
		return repositories.ErrParticipantNotFound
	}
	for _, existing := range r.participants {
		if existing.ID != p.ID && existing.Email == p.Email && existing.CommunityID == p.CommunityID {
			return repositories.ErrParticipantEmailConflict
		}
	}
	r.participants[p.ID] = copyParticipant(p)
	return nil
}

func (r *fakeParticipantRepo) UpdateStatusAndPending(ctx context.Context, q repositories.SQLExecutor, id int, status models.ParticipantStatus, pending models.SportSelectionList) error {
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Status = status
	p.PendingSports = pending
	return nil
}

func (r *fakeParticipantRepo) ReplaceSports(ctx context.Context, q repositories.SQLExecutor, id int, sports models.SportSelectionList) error {
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Sports = append(models.SportSelectionList(nil), sports...)
	return nil
}

func (r *fakeParticipantRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.participants[id]; !ok {
		return repositories.ErrParticipantNotFound
	}
	delete(r.participants, id)
	return nil
}

type fakeCommunityRepo struct {
	nextID        int
	communities   map[int]*models.Community
	nextContactID int
	contacts      map[int]*models.CommunityContact
}

func newFakeCommunityRepo() *fakeCommunityRepo {
	return &fakeCommunityRepo{
		communities: make(map[int]*models.Community),
		contacts:    make(map[int]*models.CommunityContact),
	}
}

func (r *fakeCommunityRepo) add(c models.Community) *models.Community {
	r.nextID++
	c.ID = r.nextID
	r.communities[c.ID] = &c
	return &c
}

func (r *fakeCommunityRepo) Create(ctx context.Context, community *models.Community) error {
	for _, existing := range r.communities {
		if existing.Name == community.Name {
			return repositories.ErrCommunityNameConflict
		}
	}
	r.nextID++
	community.ID = r.nextID
	cp := *community
	r.communities[community.ID] = &cp
	return nil
}

func (r *fakeCommunityRepo) GetByID(ctx context.Context, id int) (*models.Community, error) {
	c, ok := r.communities[id]
	if !ok {
		return nil, repositories.ErrCommunityNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCommunityRepo) GetAll(ctx context.Context, activeOnly bool) ([]models.Community, error) {
	out := make([]models.Community, 0, len(r.communities))
	for _, c := range r.communities {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCommunityRepo) Update(ctx context.Context, community *models.Community) error {
	if _, ok := r.communities[community.ID]; !ok {
		return repositories.ErrCommunityNotFound
	}
	cp := *community
	r.communities[community.ID] = &cp
	return nil
}

func (r *fakeCommunityRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	c, ok := r.communities[id]
	if !ok {
		return repositories.ErrCommunityNotFound
	}
	c.LogoKey = logoKey
	return nil
}

func (r *fakeCommunityRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.communities[id]; !ok {
		return repositories.ErrCommunityNotFound
	}
	delete(r.communities, id)
	return nil
}

func (r *fakeCommunityRepo) GetByAdminLogin(ctx context.Context, login string) (*models.Community, error) {
	for _, c := range r.communities {
		if c.AdminUsername != nil && *c.AdminUsername == login {
			cp := *c
			return &cp, nil
		}
		if c.AdminEmail != nil && *c.AdminEmail == login {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrCommunityNotFound
}

func (r *fakeCommunityRepo) AddContact(ctx context.Context, contact *models.CommunityContact) error {
	if _, ok := r.communities[contact.CommunityID]; !ok {
		return repositories.ErrCommunityNotFound
	}
	r.nextContactID++
	contact.ID = r.nextContactID
	cp := *contact
	r.contacts[contact.ID] = &cp
	return nil
}

func (r *fakeCommunityRepo) ListContacts(ctx context.Context, communityID int) ([]models.CommunityContact, error) {
	out := make([]models.CommunityContact, 0)
	for _, c := range r.contacts {
		if c.CommunityID == communityID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCommunityRepo) UpdateContact(ctx context.Context, contact *models.CommunityContact) error {
	if _, ok := r.contacts[contact.ID]; !ok {
		return repositories.ErrContactNotFound
	}
	cp := *contact
	r.contacts[contact.ID] = &cp
	return nil
}

func (r *fakeCommunityRepo) DeleteContact(ctx context.Context, id int) error {
	if _, ok := r.contacts[id]; !ok {
		return repositories.ErrContactNotFound
	}
	delete(r.contacts, id)
	return nil
}

type fakeUserRepo struct {
	nextID int
	users  map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, q repositories.SQLExecutor, user *models.User) error {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return repositories.ErrUserUsernameConflict
		}
		if existing.Email != nil && user.Email != nil && *existing.Email == *user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.ID] = &cp
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

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsernameOrEmail(ctx context.Context, login string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == login || (u.Email != nil && *u.Email == login) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) List(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
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

func (r *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id int, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeLeaderboardRepo struct {
	nextID    int
	entries   map[int]*models.LeaderboardEntry
	standings []models.OverallStanding
}

func newFakeLeaderboardRepo() *fakeLeaderboardRepo {
	return &fakeLeaderboardRepo{entries: make(map[int]*models.LeaderboardEntry)}
}

func (r *fakeLeaderboardRepo) Create(ctx context.Context, e *models.LeaderboardEntry) error {
	for _, existing := range r.entries {
		if existing.CommunityID == e.CommunityID && existing.SportID == e.SportID {
			return repositories.ErrLeaderboardEntryConflict
		}
	}
	r.nextID++
	e.ID = r.nextID
	cp := *e
	r.entries[e.ID] = &cp
	return nil
}

func (r *fakeLeaderboardRepo) GetByID(ctx context.Context, id int) (*models.LeaderboardEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, repositories.ErrLeaderboardEntryNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeLeaderboardRepo) ListBySport(ctx context.Context, sportID int) ([]models.LeaderboardEntry, error) {
	out := make([]models.LeaderboardEntry, 0)
	for _, e := range r.entries {
		if e.SportID == sportID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (r *fakeLeaderboardRepo) ListAll(ctx context.Context) ([]models.LeaderboardEntry, error) {
	out := make([]models.LeaderboardEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLeaderboardRepo) Update(ctx context.Context, e *models.LeaderboardEntry) error {
	if _, ok := r.entries[e.ID]; !ok {
		return repositories.ErrLeaderboardEntryNotFound
	}
	cp := *e
	r.entries[e.ID] = &cp
	return nil
}

func (r *fakeLeaderboardRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.entries[id]; !ok {
		return repositories.ErrLeaderboardEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *fakeLeaderboardRepo) OverallStandings(ctx context.Context) ([]models.OverallStanding, error) {
	return append([]models.OverallStanding(nil), r.standings...), nil
}

type fakeSettingsRepo struct {
	settings models.Settings
	gets     int
}

func (r *fakeSettingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	r.gets++
	cp := r.settings
	return &cp, nil
}

func (r *fakeSettingsRepo) SetFreezeDate(ctx context.Context, freezeDate *time.Time) (*models.Settings, error) {
	r.settings.FreezeDate = freezeDate
	r.settings.UpdatedAt = time.Now()
	cp := r.settings
	return &cp, nil
}

type notifierCall struct {
	participantID int
	accepted      bool
}

type fakeNotifier struct {
	calls []notifierCall
	err   error
}

func (n *fakeNotifier) SendParticipantStatusEmail(ctx context.Context, participant *models.Participant, accepted bool) error {
	n.calls = append(n.calls, notifierCall{participantID: participant.ID, accepted: accepted})
	return n.err
}

type fakeFreeze struct {
	frozen bool
	err    error
}

func (f *fakeFreeze) Frozen(ctx context.Context, now time.Time) (bool, error) {
	return f.frozen, f.err
}

type fakeUploader struct {
	uploads map[string][]byte
	deleted []string
	err     error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: make(map[string][]byte)}
}

func (u *fakeUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.uploads[key] = data
	return &storage.UploadResult{Key: key, Location: "https://cdn.test/" + key, ETag: "etag"}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.deleted = append(u.deleted, key)
	delete(u.uploads, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return fmt.Sprintf("https://cdn.test/%s", key)
}
