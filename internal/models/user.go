package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gender values accepted on profile updates.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// User is the credential and profile record. The password hash and pending
// OTP never leave the server.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	ProfileImage string             `bson:"profileImage" json:"profileImage"`
	Gender       string             `bson:"gender,omitempty" json:"gender,omitempty"`
	Bio          string             `bson:"bio" json:"bio"`
	IsVerified   bool               `bson:"isVerified" json:"isVerified"`
	OTP          string             `bson:"otp,omitempty" json:"-"`
	OTPExpires   *time.Time         `bson:"otpExpires,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary is the denormalized shape embedded in message payloads and
// search results.
type UserSummary struct {
	ID           string `bson:"_id" json:"_id"`
	Username     string `bson:"username" json:"username"`
	Email        string `bson:"email,omitempty" json:"email,omitempty"`
	ProfileImage string `bson:"profileImage" json:"profileImage"`
}

// Summary projects the public fields of a user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:           u.ID.Hex(),
		Username:     u.Username,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
	}
}
