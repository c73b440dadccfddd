package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleDonor     Role = "donor"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleDonor || r == RoleVolunteer || r == RoleAdmin
}

type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserBlocked UserStatus = "blocked"
)

func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserBlocked
}

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Avatar     string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	BloodGroup string             `bson:"bloodGroup,omitempty" json:"bloodGroup,omitempty"`
	District   string             `bson:"district,omitempty" json:"district,omitempty"`
	Upazila    string             `bson:"upazila,omitempty" json:"upazila,omitempty"`
	Role       Role               `bson:"role" json:"role"`
	Status     UserStatus         `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

type UserFilter struct {
	Status     string
	Role       string
	BloodGroup string
	District   string
	Upazila    string
}

// ProfilePatch carries the self-service fields. Email, role and status are
// only changed through the admin operations.
type ProfilePatch struct {
	Name       *string `json:"name"`
	Avatar     *string `json:"avatar"`
	BloodGroup *string `json:"bloodGroup"`
	District   *string `json:"district"`
	Upazila    *string `json:"upazila"`
}

func (p ProfilePatch) Fields() map[string]any {
	out := map[string]any{}
	if p.Name != nil {
		out["name"] = *p.Name
	}
	if p.Avatar != nil {
		out["avatar"] = *p.Avatar
	}
	if p.BloodGroup != nil {
		out["bloodGroup"] = *p.BloodGroup
	}
	if p.District != nil {
		out["district"] = *p.District
	}
	if p.Upazila != nil {
		out["upazila"] = *p.Upazila
	}
	return out
}
