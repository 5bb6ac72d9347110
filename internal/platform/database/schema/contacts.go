package schema

// ContactsTable represents the 'contacts' table
type ContactsTable struct {
	Table       string
	ID          string
	Name        string
	Fullname    string
	Email       string
	PhoneNumber string
	Birthday    string
	Description string
	UserID      string
	CreatedAt   string
	UpdatedAt   string
}

// Contacts is the schema definition for contacts
var Contacts = ContactsTable{
	Table:       "contacts",
	ID:          "id",
	Name:        "name",
	Fullname:    "fullname",
	Email:       "email",
	PhoneNumber: "phone_number",
	Birthday:    "birthday",
	Description: "description",
	UserID:      "user_id",
	CreatedAt:   "created_at",
	UpdatedAt:   "updated_at",
}

// Columns returns all standard column names
func (t ContactsTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Fullname, t.Email, t.PhoneNumber,
		t.Birthday, t.Description, t.UserID, t.CreatedAt, t.UpdatedAt,
	}
}
