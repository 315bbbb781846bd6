package user

const DefaultRole = "user"

type User struct {
	ID             int64
	Username       string
	HashedPassword string
	Role           string
}
