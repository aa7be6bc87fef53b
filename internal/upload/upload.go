// Package upload runs one image upload attempt: validate, preprocess,
// presign, PUT to object storage, then refresh the session's dashboard.
// Every step is attempted once; the first failure ends the attempt.
package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/axl-portal/internal/axl"
	"github.com/codr1/axl-portal/internal/imaging"
	"github.com/codr1/axl-portal/internal/metrics"
	"github.com/codr1/axl-portal/internal/session"
)

type Kind string

const (
	KindAvatar   Kind = "avatar"
	KindTeamLogo Kind = "team_logo"
)

type Stage string

const (
	StageValidate Stage = "validate"
	StageProcess  Stage = "process"
	StagePresign  Stage = "presign"
	StageUpload   Stage = "upload"
)

var (
	ErrUnauthenticated = errors.New("sesión no iniciada")
	ErrNoFile          = errors.New("no se seleccionó ningún archivo")
	ErrMissingTeam     = errors.New("falta el equipo del logo")
	ErrUnknownKind     = errors.New("tipo de subida desconocido")
)

// StageError reports the step at which an attempt stopped.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	switch e.Stage {
	case StageValidate:
		return e.Err.Error()
	case StageProcess:
		return "No se pudo procesar la imagen. Probá con otro archivo."
	case StagePresign:
		var remote *axl.RemoteError
		if errors.As(e.Err, &remote) {
			return fmt.Sprintf("No se pudo preparar la subida: %s", remote.Message)
		}
		return "No se pudo preparar la subida. Intentá de nuevo."
	case StageUpload:
		return "La subida de la imagen falló. Intentá de nuevo."
	default:
		return e.Err.Error()
	}
}

func (e *StageError) Unwrap() error { return e.Err }

type Request struct {
	Kind   Kind
	TeamID string
	Source *imaging.Source
}

type Result struct {
	Image *imaging.Image
	// RefreshErr is set when the upload succeeded but the follow-up
	// dashboard refresh did not.
	RefreshErr error
}

type Presigner interface {
	PresignAvatar(ctx context.Context, token, contentType string) (*axl.PresignedUpload, error)
	PresignTeamLogo(ctx context.Context, token, teamID, contentType string) (*axl.PresignedUpload, error)
}

type Storage interface {
	Put(ctx context.Context, url string, data []byte, contentType string) error
}

type Refresher interface {
	Refresh(ctx context.Context, sess *session.Session) error
}

type Orchestrator struct {
	presigner Presigner
	storage   Storage
	refresher Refresher
	avatar    imaging.Options
	logo      imaging.Options
	metrics   *metrics.Metrics
}

type Option func(*Orchestrator)

func WithImageOptions(avatar, logo imaging.Options) Option {
	return func(o *Orchestrator) {
		o.avatar = avatar
		o.logo = logo
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func NewOrchestrator(presigner Presigner, storage Storage, refresher Refresher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		presigner: presigner,
		storage:   storage,
		refresher: refresher,
		avatar:    imaging.AvatarOptions(),
		logo:      imaging.LogoOptions(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Run(ctx context.Context, sess *session.Session, req Request) (*Result, error) {
	logger := log.Ctx(ctx).With().Str("kind", string(req.Kind)).Str("team_id", req.TeamID).Logger()

	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if req.Source == nil || (len(req.Source.Data) == 0 && req.Source.Size == 0) {
		return nil, ErrNoFile
	}

	var opts imaging.Options
	switch req.Kind {
	case KindAvatar:
		opts = o.avatar
	case KindTeamLogo:
		opts = o.logo
		if strings.TrimSpace(req.TeamID) == "" {
			return nil, o.fail(req.Kind, StageValidate, ErrMissingTeam)
		}
	default:
		return nil, o.fail(req.Kind, StageValidate, ErrUnknownKind)
	}

	if err := imaging.Validate(*req.Source); err != nil {
		return nil, o.fail(req.Kind, StageValidate, err)
	}

	img, err := imaging.Preprocess(*req.Source, opts)
	if err != nil {
		logger.Warn().Err(err).Msg("Image preprocessing failed")
		return nil, o.fail(req.Kind, StageProcess, err)
	}

	var target *axl.PresignedUpload
	if req.Kind == KindTeamLogo {
		target, err = o.presigner.PresignTeamLogo(ctx, sess.Token, req.TeamID, img.ContentType)
	} else {
		target, err = o.presigner.PresignAvatar(ctx, sess.Token, img.ContentType)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Presign request failed")
		return nil, o.fail(req.Kind, StagePresign, err)
	}

	if err := o.storage.Put(ctx, target.UploadURL, img.Data, img.ContentType); err != nil {
		logger.Warn().Err(err).Msg("Storage upload failed")
		return nil, o.fail(req.Kind, StageUpload, err)
	}

	o.metrics.UploadAttempt(string(req.Kind), "success")
	logger.Info().
		Int("bytes", len(img.Data)).
		Int("width", img.Width).
		Int("height", img.Height).
		Msg("Image uploaded")

	result := &Result{Image: img}
	if o.refresher != nil {
		if err := o.refresher.Refresh(ctx, sess); err != nil {
			logger.Warn().Err(err).Msg("Dashboard refresh after upload failed")
			result.RefreshErr = err
		}
	}
	return result, nil
}

func (o *Orchestrator) fail(kind Kind, stage Stage, err error) error {
	o.metrics.UploadAttempt(string(kind), string(stage))
	return &StageError{Stage: stage, Err: err}
}
