package axl

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

const (
	RolePlayer = "PLAYER"
	RoleStaff  = "STAFF"

	AccessOwner  = "OWNER"
	AccessMember = "MEMBER"

	InviteStatusPending = "PENDING"
)

type Account struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string  `json:"message"`
	Token   string  `json:"token"`
	User    Account `json:"user"`
}

type RegisterRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Firstname string  `json:"firstname"`
	Surname   string  `json:"surname"`
	Phone     *string `json:"phone,omitempty"`
	DNI       *string `json:"dni,omitempty"`
	BirthDate *string `json:"birthDate,omitempty"`
	Position  *string `json:"position,omitempty"`
	Side      *string `json:"side,omitempty"`
}

type RegisterResponse struct {
	Message string  `json:"message"`
	User    Account `json:"user"`
}

// JerseyNumber accepts a JSON number, a numeric string, or null.
type JerseyNumber struct {
	Value int
	Valid bool
}

func (n *JerseyNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = JerseyNumber{}
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*n = JerseyNumber{}
			return nil
		}
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	*n = JerseyNumber{Value: value, Valid: true}
	return nil
}

func (n JerseyNumber) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.Itoa(n.Value)
}

// Profile is the full current-user record returned by the me endpoint.
type Profile struct {
	UserID     string       `json:"userId"`
	Username   string       `json:"username"`
	Email      string       `json:"email"`
	Role       string       `json:"role"`
	Firstname  string       `json:"firstname"`
	Surname    string       `json:"surname"`
	PlayerCode string       `json:"playerCode"`
	CreatedAt  *string      `json:"createdAt"`
	UpdatedAt  *string      `json:"updatedAt"`
	AvatarURL  *string      `json:"avatarUrl"`
	BirthDate  *string      `json:"birthDate"`
	Number     JerseyNumber `json:"number"`
	Side       *string      `json:"side"`
	Phone      *string      `json:"phone"`
	Position   *string      `json:"position"`
	DNI        *string      `json:"dni"`
}

func (p Profile) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.Firstname) + " " + strings.TrimSpace(p.Surname))
}

type MeResponse struct {
	Message string   `json:"message"`
	User    *Profile `json:"user"`
}

// UpdateMeRequest is a partial profile update. Nullable fields are always
// sent so that a nil value clears the stored one.
type UpdateMeRequest struct {
	Firstname string  `json:"firstname,omitempty"`
	Surname   string  `json:"surname,omitempty"`
	Email     string  `json:"email,omitempty"`
	Phone     *string `json:"phone"`
	DNI       *string `json:"dni"`
	BirthDate *string `json:"birthDate"`
	Position  *string `json:"position"`
	Side      *string `json:"side"`
	Number    *int    `json:"number"`
}

type UpdateMeResponse struct {
	Message string   `json:"message"`
	User    *Profile `json:"user"`
}

type Team struct {
	TeamID      string  `json:"teamId"`
	TeamName    string  `json:"teamName"`
	Country     string  `json:"country"`
	Province    string  `json:"province"`
	OwnerUserID string  `json:"ownerUserId"`
	AccessRole  string  `json:"accessRole"`
	TeamRole    string  `json:"teamRole"`
	JoinedAt    string  `json:"joinedAt"`
	LogoURL     *string `json:"logoUrl"`
}

type TeamsResponse struct {
	Message     string `json:"message"`
	OwnedTeams  []Team `json:"ownedTeams"`
	MemberTeams []Team `json:"memberTeams"`
}

type TeamDetail struct {
	TeamID      string  `json:"teamId"`
	TeamName    string  `json:"teamName"`
	Country     string  `json:"country"`
	Province    string  `json:"province"`
	OwnerUserID string  `json:"ownerUserId"`
	LogoURL     *string `json:"logoUrl"`
}

type TeamMember struct {
	UserID     string  `json:"userId"`
	AccessRole string  `json:"accessRole"`
	TeamRole   string  `json:"teamRole"`
	Username   string  `json:"username"`
	Firstname  string  `json:"firstname"`
	Surname    string  `json:"surname"`
	AvatarURL  *string `json:"avatarUrl"`
	JoinedAt   string  `json:"joinedAt"`
}

type TeamDetailResponse struct {
	Message string       `json:"message"`
	Team    TeamDetail   `json:"team"`
	Players []TeamMember `json:"players"`
	Staff   []TeamMember `json:"staff"`
}

type CreateTeamRequest struct {
	TeamName string `json:"teamName"`
	Country  string `json:"country"`
	Province string `json:"province"`
}

type CreateTeamResponse struct {
	Message string  `json:"message"`
	TeamID  *string `json:"teamId"`
}

type Invite struct {
	InviteID        string  `json:"inviteId"`
	TeamID          string  `json:"teamId"`
	TeamName        *string `json:"teamName"`
	InviteRole      string  `json:"inviteRole"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
	CreatedByUserID string  `json:"createdByUserId"`
}

type InvitationsResponse struct {
	Message string   `json:"message"`
	Invites []Invite `json:"invites"`
}

type InviteByCodeRequest struct {
	TeamID     string `json:"teamId"`
	PlayerCode string `json:"playerCode"`
	InviteRole string `json:"inviteRole"`
}

type InviteByCodeResponse struct {
	Message  string  `json:"message"`
	InviteID *string `json:"inviteId"`
}

// InviteDecision is the body of accept and decline calls.
type InviteDecision struct {
	TeamID string `json:"teamId"`
}

type MessageResponse struct {
	Message *string `json:"message"`
}

type presignAvatarRequest struct {
	ContentType string `json:"contentType"`
}

type presignTeamLogoRequest struct {
	TeamID      string `json:"teamId"`
	ContentType string `json:"contentType"`
}

// PresignedUpload is a single-use object storage target.
type PresignedUpload struct {
	Message   string `json:"message"`
	UploadURL string `json:"uploadUrl"`
}

type Event struct {
	EventID              string   `json:"eventId"`
	Name                 string   `json:"name"`
	Venue                string   `json:"venue"`
	City                 string   `json:"city"`
	StartsAt             string   `json:"startsAt"`
	EndsAt               string   `json:"endsAt"`
	RegistrationClosesAt string   `json:"registrationClosesAt"`
	Categories           []string `json:"categories"`
}

type EventResponse struct {
	Message string `json:"message"`
	Event   Event  `json:"event"`
	Open    bool   `json:"open"`
}

type EventRegistrationRequest struct {
	EventID  string `json:"eventId"`
	TeamID   string `json:"teamId"`
	Category string `json:"category"`
}

type EventRegistrationResponse struct {
	Message        string  `json:"message"`
	RegistrationID *string `json:"registrationId"`
}
