package profiles

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/NordCoder/Marketus/internal/apperr"
	"github.com/NordCoder/Marketus/internal/domain/profile"
	pg "github.com/NordCoder/Marketus/internal/repository/postgres"
)

// Usecase implements the profile and media flows. Profiles key off the
// user id minted by the gateway; deleting a profile cascades its media.
type Usecase struct {
	profiles profile.Repo
	media    profile.MediaRepo
	log      *zap.Logger
}

func NewUsecase(profiles profile.Repo, media profile.MediaRepo, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{profiles: profiles, media: media, log: log}
}

type ProfileInput struct {
	Username    string
	DisplayName string
	Description string
	Email       string
}

type MediaInput struct {
	FilePath      string
	FilePathThumb string
	Description   string
	IsAvatar      bool
}

func (u *Usecase) CreateProfile(ctx context.Context, userID int64, in ProfileInput) (*profile.Profile, error) {
	p := &profile.Profile{
		UserID:      userID,
		Username:    in.Username,
		DisplayName: in.DisplayName,
		Description: in.Description,
		Email:       in.Email,
	}
	if err := u.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, pg.ErrConflict) {
			return nil, apperr.New(apperr.Conflict, "Profile already exists")
		}
		return nil, err
	}
	u.log.Info("profile created", zap.Int64("user_id", userID))
	return p, nil
}

func (u *Usecase) GetProfile(ctx context.Context, userID int64) (*profile.Profile, error) {
	p, err := u.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "User not found")
		}
		return nil, err
	}
	return p, nil
}

func (u *Usecase) UpdateProfile(ctx context.Context, authUserID, userID int64, in ProfileInput) (*profile.Profile, error) {
	if authUserID != userID {
		return nil, apperr.New(apperr.Forbidden, "Can only update own profile")
	}
	p, err := u.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Username = in.Username
	p.DisplayName = in.DisplayName
	p.Description = in.Description
	p.Email = in.Email
	if err := u.profiles.Update(ctx, p); err != nil {
		if errors.Is(err, pg.ErrConflict) {
			return nil, apperr.New(apperr.Conflict, "Username already taken")
		}
		return nil, err
	}
	return p, nil
}

func (u *Usecase) DeleteProfile(ctx context.Context, authUserID, userID int64) error {
	if authUserID != userID {
		return apperr.New(apperr.Forbidden, "Can only delete own profile")
	}
	if err := u.profiles.Delete(ctx, userID); err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return apperr.New(apperr.NotFound, "User not found")
		}
		return err
	}
	u.log.Info("profile deleted", zap.Int64("user_id", userID))
	return nil
}

func (u *Usecase) AddMedia(ctx context.Context, authUserID int64, in MediaInput) (*profile.Media, error) {
	if _, err := u.GetProfile(ctx, authUserID); err != nil {
		return nil, err
	}
	m := &profile.Media{
		UserID:        authUserID,
		FilePath:      in.FilePath,
		FilePathThumb: in.FilePathThumb,
		Description:   in.Description,
		IsAvatar:      in.IsAvatar,
	}
	if err := u.media.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (u *Usecase) GetMedia(ctx context.Context, id int64) (*profile.Media, error) {
	m, err := u.media.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "Media not found")
		}
		return nil, err
	}
	return m, nil
}

func (u *Usecase) ListMedia(ctx context.Context, userID int64) ([]profile.Media, error) {
	if _, err := u.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	return u.media.ListByUser(ctx, userID)
}

func (u *Usecase) UpdateMedia(ctx context.Context, authUserID, id int64, in MediaInput) (*profile.Media, error) {
	m, err := u.GetMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.UserID != authUserID {
		return nil, apperr.New(apperr.Forbidden, "Can only update own media")
	}
	m.FilePath = in.FilePath
	m.FilePathThumb = in.FilePathThumb
	m.Description = in.Description
	m.IsAvatar = in.IsAvatar
	if err := u.media.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (u *Usecase) DeleteMedia(ctx context.Context, authUserID, id int64) error {
	m, err := u.GetMedia(ctx, id)
	if err != nil {
		return err
	}
	if m.UserID != authUserID {
		return apperr.New(apperr.Forbidden, "Can only delete own media")
	}
	return u.media.Delete(ctx, id)
}
