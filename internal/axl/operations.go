package axl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, call{
		op:       "Login",
		endpoint: "login",
		method:   http.MethodPost,
		url:      c.endpoints.Login,
		body:     req,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("%w: login response has no token", ErrInvalidResponse)
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	err := c.do(ctx, call{
		op:       "Register",
		endpoint: "register",
		method:   http.MethodPost,
		url:      c.endpoints.Register,
		body:     req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me loads the full profile of the token's owner.
func (c *Client) Me(ctx context.Context, token string) (*Profile, error) {
	var out MeResponse
	err := c.do(ctx, call{
		op:       "Me",
		endpoint: "me",
		method:   http.MethodGet,
		url:      c.endpoints.Me,
		token:    token,
		auth:     true,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, fmt.Errorf("%w: me response has no user", ErrInvalidResponse)
	}
	return out.User, nil
}

func (c *Client) UpdateMe(ctx context.Context, token string, req UpdateMeRequest) (*UpdateMeResponse, error) {
	var out UpdateMeResponse
	err := c.do(ctx, call{
		op:       "Update",
		endpoint: "update_me",
		method:   http.MethodPut,
		url:      c.endpoints.UpdateMe,
		token:    token,
		auth:     true,
		body:     req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Teams lists owned and member teams. Missing lists decode as empty.
func (c *Client) Teams(ctx context.Context, token string) (*TeamsResponse, error) {
	var out TeamsResponse
	err := c.do(ctx, call{
		op:       "Teams",
		endpoint: "teams",
		method:   http.MethodGet,
		url:      c.endpoints.Teams,
		token:    token,
		auth:     true,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.OwnedTeams == nil {
		out.OwnedTeams = []Team{}
	}
	if out.MemberTeams == nil {
		out.MemberTeams = []Team{}
	}
	return &out, nil
}

func (c *Client) TeamDetail(ctx context.Context, token, teamID string) (*TeamDetailResponse, error) {
	var out TeamDetailResponse
	err := c.do(ctx, call{
		op:       "Team detail",
		endpoint: "team_detail",
		method:   http.MethodGet,
		url:      c.endpoints.TeamDetail,
		token:    token,
		auth:     true,
		query:    url.Values{"teamId": {teamID}},
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Players == nil {
		out.Players = []TeamMember{}
	}
	if out.Staff == nil {
		out.Staff = []TeamMember{}
	}
	return &out, nil
}

func (c *Client) CreateTeam(ctx context.Context, token string, req CreateTeamRequest) (*CreateTeamResponse, error) {
	var out CreateTeamResponse
	err := c.do(ctx, call{
		op:       "Create team",
		endpoint: "create_team",
		method:   http.MethodPost,
		url:      c.endpoints.CreateTeam,
		token:    token,
		auth:     true,
		body:     req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Invitations(ctx context.Context, token string) ([]Invite, error) {
	var out InvitationsResponse
	err := c.do(ctx, call{
		op:       "Invitations",
		endpoint: "invitations",
		method:   http.MethodGet,
		url:      c.endpoints.Invitations,
		token:    token,
		auth:     true,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Invites == nil {
		return []Invite{}, nil
	}
	return out.Invites, nil
}

func (c *Client) InviteByPlayerCode(ctx context.Context, token string, req InviteByCodeRequest) (*InviteByCodeResponse, error) {
	var out InviteByCodeResponse
	err := c.do(ctx, call{
		op:       "Invite",
		endpoint: "invite_by_code",
		method:   http.MethodPost,
		url:      c.endpoints.InviteByCode,
		token:    token,
		auth:     true,
		body:     req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AcceptInvite accepts the pending invitation to teamID.
func (c *Client) AcceptInvite(ctx context.Context, token, teamID string) (*MessageResponse, error) {
	return c.decideInvite(ctx, "Accept", "accept_invite", c.endpoints.AcceptInvite, token, teamID)
}

// DeclineInvite declines the pending invitation to teamID.
func (c *Client) DeclineInvite(ctx context.Context, token, teamID string) (*MessageResponse, error) {
	return c.decideInvite(ctx, "Decline", "decline_invite", c.endpoints.DeclineInvite, token, teamID)
}

func (c *Client) decideInvite(ctx context.Context, op, endpoint, target, token, teamID string) (*MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, call{
		op:       op,
		endpoint: endpoint,
		method:   http.MethodPost,
		url:      target,
		token:    token,
		auth:     true,
		body:     InviteDecision{TeamID: teamID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PresignAvatar(ctx context.Context, token, contentType string) (*PresignedUpload, error) {
	var out PresignedUpload
	err := c.do(ctx, call{
		op:       "Presign",
		endpoint: "presign_avatar",
		method:   http.MethodPost,
		url:      c.endpoints.PresignAvatar,
		token:    token,
		auth:     true,
		body:     presignAvatarRequest{ContentType: contentType},
	}, &out)
	if err != nil {
		return nil, err
	}
	return validatePresign(&out)
}

func (c *Client) PresignTeamLogo(ctx context.Context, token, teamID, contentType string) (*PresignedUpload, error) {
	var out PresignedUpload
	err := c.do(ctx, call{
		op:       "Presign",
		endpoint: "presign_team_logo",
		method:   http.MethodPost,
		url:      c.endpoints.PresignTeamLogo,
		token:    token,
		auth:     true,
		body:     presignTeamLogoRequest{TeamID: teamID, ContentType: contentType},
	}, &out)
	if err != nil {
		return nil, err
	}
	return validatePresign(&out)
}

func validatePresign(out *PresignedUpload) (*PresignedUpload, error) {
	parsed, err := url.Parse(strings.TrimSpace(out.UploadURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: presign response has no upload URL", ErrInvalidResponse)
	}
	return out, nil
}

// GetEvent loads a league event. The endpoint is public.
func (c *Client) GetEvent(ctx context.Context, eventID string) (*EventResponse, error) {
	var out EventResponse
	err := c.do(ctx, call{
		op:       "Event",
		endpoint: "get_event",
		method:   http.MethodGet,
		url:      c.endpoints.GetEvent,
		query:    url.Values{"eventId": {eventID}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterTeamToEvent(ctx context.Context, token string, req EventRegistrationRequest) (*EventRegistrationResponse, error) {
	var out EventRegistrationResponse
	err := c.do(ctx, call{
		op:       "Event registration",
		endpoint: "register_event",
		method:   http.MethodPost,
		url:      c.endpoints.RegisterEvent,
		token:    token,
		auth:     true,
		body:     req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
