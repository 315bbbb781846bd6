package profile

// Profile keys off the user id minted by the gateway; the id is never
// assigned locally.
type Profile struct {
	UserID      int64
	Username    string
	DisplayName string
	Description string
	Email       string
}

type Media struct {
	ID            int64
	UserID        int64
	FilePath      string
	FilePathThumb string
	Description   string
	IsAvatar      bool
}
