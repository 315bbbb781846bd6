package goods

type Product struct {
	ID          int64
	UserID      int64
	Name        string
	Description string
	Price       float64
	ImageURL    string

	// Aggregates maintained alongside review mutations.
	Rating       float64
	ReviewsCount int32
}

type Review struct {
	ID        int64
	ProductID int64
	UserID    int64
	Rating    int32
	Text      string
}
