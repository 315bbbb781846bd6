package profile

import "context"

type Repo interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, userID int64) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	// Delete removes the profile and cascades its media.
	Delete(ctx context.Context, userID int64) error
}

type MediaRepo interface {
	Create(ctx context.Context, m *Media) error
	GetByID(ctx context.Context, id int64) (*Media, error)
	Update(ctx context.Context, m *Media) error
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]Media, error)
}
