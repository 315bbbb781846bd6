package profiles

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NordCoder/Marketus/internal/apperr"
	"github.com/NordCoder/Marketus/internal/domain/profile"
	pg "github.com/NordCoder/Marketus/internal/repository/postgres"
)

type fakeProfileRepo struct {
	mu    sync.Mutex
	byID  map[int64]*profile.Profile
	media *fakeMediaRepo
}

func (r *fakeProfileRepo) Create(_ context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.UserID]; ok {
		return pg.ErrConflict
	}
	for _, existing := range r.byID {
		if existing.Username == p.Username {
			return pg.ErrConflict
		}
	}
	cp := *p
	r.byID[p.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, userID int64) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[userID]
	if !ok {
		return nil, pg.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) Update(_ context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.UserID]; !ok {
		return pg.ErrNotFound
	}
	cp := *p
	r.byID[p.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) Delete(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[userID]; !ok {
		return pg.ErrNotFound
	}
	delete(r.byID, userID)
	r.media.dropUser(userID)
	return nil
}

type fakeMediaRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*profile.Media
}

func (r *fakeMediaRepo) dropUser(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.byID {
		if m.UserID == userID {
			delete(r.byID, id)
		}
	}
}

func (r *fakeMediaRepo) Create(_ context.Context, m *profile.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	cp := *m
	r.byID[m.ID] = &cp
	return nil
}

func (r *fakeMediaRepo) GetByID(_ context.Context, id int64) (*profile.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, pg.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMediaRepo) Update(_ context.Context, m *profile.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[m.ID]; !ok {
		return pg.ErrNotFound
	}
	cp := *m
	r.byID[m.ID] = &cp
	return nil
}

func (r *fakeMediaRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *fakeMediaRepo) ListByUser(_ context.Context, userID int64) ([]profile.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []profile.Media
	for _, m := range r.byID {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func newTestUsecase() *Usecase {
	media := &fakeMediaRepo{byID: map[int64]*profile.Media{}}
	profiles := &fakeProfileRepo{byID: map[int64]*profile.Profile{}, media: media}
	return NewUsecase(profiles, media, nil)
}

func TestProfile_Lifecycle(t *testing.T) {
	uc := newTestUsecase()
	ctx := context.Background()

	p, err := uc.CreateProfile(ctx, 1, ProfileInput{Username: "alice", DisplayName: "Alice"})
	require.NoError(t, err)
	require.Equal(t, int64(1), p.UserID)

	_, err = uc.CreateProfile(ctx, 1, ProfileInput{Username: "alice2"})
	require.True(t, apperr.Is(err, apperr.Conflict))
	require.Contains(t, err.Error(), "Profile already exists")

	got, err := uc.GetProfile(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Alice", got.DisplayName)

	_, err = uc.GetProfile(ctx, 99)
	require.True(t, apperr.Is(err, apperr.NotFound))
	require.Contains(t, err.Error(), "User not found")
}

func TestProfile_UpdateOwnership(t *testing.T) {
	uc := newTestUsecase()
	ctx := context.Background()

	_, err := uc.CreateProfile(ctx, 1, ProfileInput{Username: "alice"})
	require.NoError(t, err)

	_, err = uc.UpdateProfile(ctx, 2, 1, ProfileInput{Username: "stolen"})
	require.True(t, apperr.Is(err, apperr.Forbidden))
	require.Contains(t, err.Error(), "Can only update own profile")

	updated, err := uc.UpdateProfile(ctx, 1, 1, ProfileInput{Username: "alice", DisplayName: "A."})
	require.NoError(t, err)
	require.Equal(t, "A.", updated.DisplayName)
}

func TestProfile_DeleteCascadesMedia(t *testing.T) {
	uc := newTestUsecase()
	ctx := context.Background()

	_, err := uc.CreateProfile(ctx, 1, ProfileInput{Username: "alice"})
	require.NoError(t, err)

	m, err := uc.AddMedia(ctx, 1, MediaInput{FilePath: "a.jpg", IsAvatar: true})
	require.NoError(t, err)

	err = uc.DeleteProfile(ctx, 2, 1)
	require.True(t, apperr.Is(err, apperr.Forbidden))

	require.NoError(t, uc.DeleteProfile(ctx, 1, 1))

	_, err = uc.GetMedia(ctx, m.ID)
	require.True(t, apperr.Is(err, apperr.NotFound))
	require.Contains(t, err.Error(), "Media not found")
}

func TestMedia_RequiresProfile(t *testing.T) {
	uc := newTestUsecase()

	_, err := uc.AddMedia(context.Background(), 1, MediaInput{FilePath: "a.jpg"})
	require.True(t, apperr.Is(err, apperr.NotFound))
	require.Contains(t, err.Error(), "User not found")
}

func TestMedia_Ownership(t *testing.T) {
	uc := newTestUsecase()
	ctx := context.Background()

	_, err := uc.CreateProfile(ctx, 1, ProfileInput{Username: "alice"})
	require.NoError(t, err)

	m, err := uc.AddMedia(ctx, 1, MediaInput{FilePath: "a.jpg"})
	require.NoError(t, err)

	_, err = uc.UpdateMedia(ctx, 2, m.ID, MediaInput{FilePath: "b.jpg"})
	require.True(t, apperr.Is(err, apperr.Forbidden))
	require.Contains(t, err.Error(), "Can only update own media")

	updated, err := uc.UpdateMedia(ctx, 1, m.ID, MediaInput{FilePath: "b.jpg", IsAvatar: true})
	require.NoError(t, err)
	require.True(t, updated.IsAvatar)

	err = uc.DeleteMedia(ctx, 2, m.ID)
	require.True(t, apperr.Is(err, apperr.Forbidden))
	require.Contains(t, err.Error(), "Can only delete own media")

	require.NoError(t, uc.DeleteMedia(ctx, 1, m.ID))

	list, err := uc.ListMedia(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, list)
}
