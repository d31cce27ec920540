package models

import (
	"fmt"
	"time"
)

type UserType string

const (
	UserTypeUser   UserType = "user"
	UserTypeSeller UserType = "seller"
)

// ParseUserType accepts only the known account kinds.
func ParseUserType(s string) (UserType, error) {
	switch UserType(s) {
	case UserTypeUser, UserTypeSeller:
		return UserType(s), nil
	default:
		return "", fmt.Errorf("unknown user type %q", s)
	}
}

func (t UserType) String() string {
	return string(t)
}

type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

type User struct {
	ID         int64
	UserID     string
	Email      string
	PassHash   []byte
	Nickname   string
	Birthdate  time.Time
	Role       Role
	Provider   string
	ProviderID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Seller struct {
	ID         int64
	SellerID   string
	Email      string
	PassHash   []byte
	SellerName string
	SellerLogo []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Account is the part of a user or seller needed to issue tokens.
type Account struct {
	ExternalID string
	Email      string
	PassHash   []byte
	Type       UserType
}

func (u User) Account() Account {
	return Account{
		ExternalID: u.UserID,
		Email:      u.Email,
		PassHash:   u.PassHash,
		Type:       UserTypeUser,
	}
}

func (s Seller) Account() Account {
	return Account{
		ExternalID: s.SellerID,
		Email:      s.Email,
		PassHash:   s.PassHash,
		Type:       UserTypeSeller,
	}
}

// AccountInfo is the public view of a user or seller. Fields that do not apply
// to the account type are zero.
type AccountInfo struct {
	ExternalID string
	Email      string
	Type       UserType
	Nickname   string
	Birthdate  time.Time
	SellerName string
	SellerLogo []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (u User) Info() AccountInfo {
	return AccountInfo{
		ExternalID: u.UserID,
		Email:      u.Email,
		Type:       UserTypeUser,
		Nickname:   u.Nickname,
		Birthdate:  u.Birthdate,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func (s Seller) Info() AccountInfo {
	return AccountInfo{
		ExternalID: s.SellerID,
		Email:      s.Email,
		Type:       UserTypeSeller,
		SellerName: s.SellerName,
		SellerLogo: s.SellerLogo,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Claims are the identity fields carried by every issued token.
type Claims struct {
	Email    string
	UserType UserType
	UserID   string
}

// EmailMessage is the queue payload consumed by the mail sender.
type EmailMessage struct {
	Email   string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
