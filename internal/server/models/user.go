package models

// User is a registered participant.
//
// Accepted is tri-state: nil means the organisers have not decided yet.
// CreatedAt is an RFC 3339 UTC timestamp set once at registration.
type User struct {
	ID         string `json:"id" bson:"-" firestore:"-"`
	Username   string `json:"username" bson:"username" firestore:"username"`
	Email      string `json:"email" bson:"email" firestore:"email"`
	Phone      string `json:"phone" bson:"phone" firestore:"phone"`
	Level      string `json:"level" bson:"level" firestore:"level"`
	Club       string `json:"club" bson:"club" firestore:"club"`
	Motivation string `json:"motivation" bson:"motivation" firestore:"motivation"`
	HasLaptop  bool   `json:"hasLaptop" bson:"hasLaptop" firestore:"hasLaptop"`
	Accepted   *bool  `json:"accepted" bson:"accepted" firestore:"accepted"`
	CreatedAt  string `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
}

// Clone returns a deep copy, so callers never share the Accepted pointer.
func (u *User) Clone() *User {
	c := *u
	if u.Accepted != nil {
		v := *u.Accepted
		c.Accepted = &v
	}
	return &c
}

// BoolPtr is a helper for building tri-state values.
func BoolPtr(v bool) *bool {
	return &v
}

// CreatedAtLayout matches ISO-8601 with millisecond precision, e.g. 2025-03-01T10:00:00.000Z.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z07:00"
