package schema

// UsersTable represents the 'users' table
type UsersTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	Password     string
	Confirmed    string
	RefreshToken string
	Avatar       string
	CreatedAt    string
	UpdatedAt    string
}

// Users is the schema definition for users
var Users = UsersTable{
	Table:        "users",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	Password:     "password",
	Confirmed:    "confirmed",
	RefreshToken: "refresh_token",
	Avatar:       "avatar",
	CreatedAt:    "created_at",
	UpdatedAt:    "updated_at",
}

// Columns returns all standard column names
func (t UsersTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.Password, t.Confirmed,
		t.RefreshToken, t.Avatar, t.CreatedAt, t.UpdatedAt,
	}
}
