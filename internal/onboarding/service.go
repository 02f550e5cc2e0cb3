// Package onboarding registers a food-service business from one submission:
// it uploads the submitted media and inserts the business, its team members
// and its facility photos in dependency order.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/safeplate/internal/domain"
)

// BlobStore uploads a named byte stream and returns a public URL that is
// stable for the name.
type BlobStore interface {
	Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) (string, error)
}

// Locker serializes onboarding runs per key. Acquire fails with an error
// wrapping domain.ErrConflict when the key is already held.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// EventPublisher broadcasts onboarding step events.
type EventPublisher interface {
	PublishOnboardingEvent(ctx context.Context, ev *domain.OnboardingEvent) error
}

// Notifier is told about every completed onboarding.
type Notifier interface {
	NotifyBusinessOnboarded(ctx context.Context, b *domain.Business, teamMembers, facilityPhotos int) error
}

const (
	defaultLockTTL        = 5 * time.Minute
	defaultSideEffectWait = 5 * time.Second
)

// Service runs onboarding. Blob store and record repositories are required;
// locker, events, audit and notifier are optional side channels whose
// failures are logged and never change the outcome.
type Service struct {
	blobs      BlobStore
	businesses domain.BusinessRepository
	team       domain.TeamMemberRepository
	facilities domain.FacilityPhotoRepository

	audit    domain.AuditRepository
	locker   Locker
	events   EventPublisher
	notifier Notifier

	lockTTL        time.Duration
	sideEffectWait time.Duration
	now            func() time.Time
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithLocker serializes runs for the same license through l.
func WithLocker(l Locker, ttl time.Duration) Option {
	return func(s *Service) {
		s.locker = l
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithAudit records every run that got past validation, with its step log.
func WithAudit(r domain.AuditRepository) Option {
	return func(s *Service) { s.audit = r }
}

// WithEvents publishes step, completed and failed events.
func WithEvents(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithNotifier announces completed onboardings.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides time.Now for step timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(
	blobs BlobStore,
	businesses domain.BusinessRepository,
	team domain.TeamMemberRepository,
	facilities domain.FacilityPhotoRepository,
	opts ...Option,
) *Service {
	s := &Service{
		blobs:          blobs,
		businesses:     businesses,
		team:           team,
		facilities:     facilities,
		lockTTL:        defaultLockTTL,
		sideEffectWait: defaultSideEffectWait,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is a completed onboarding.
type Result struct {
	Business       *domain.Business
	TeamMembers    []*domain.TeamMember
	FacilityPhotos []*domain.FacilityPhoto
	Progress       *Progress
}

// BusinessID returns the id assigned to the new business.
func (r *Result) BusinessID() int64 { return r.Business.ID }

// Onboard validates the submission, uploads the logo and owner photo,
// inserts the business, then uploads and inserts each team member and each
// facility photo in list order. Validation happens before any side effect.
// A failure after the business exists leaves earlier children in place;
// the returned *Error carries the step log describing them.
func (s *Service) Onboard(ctx context.Context, identity domain.Identity, sub *domain.Submission) (res *Result, err error) {
	r := s.newRun(identity, sub)

	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = r.fail(ctx, &Error{
				Kind:   KindUnexpected,
				Op:     r.op,
				Index:  r.index,
				Detail: fmt.Sprintf("panic: %v", p),
			})
		}
	}()

	if !identity.Valid() {
		return nil, r.reject(&Error{
			Kind:   KindUnauthorized,
			Op:     OpValidate,
			Index:  -1,
			Detail: "authenticated identity is required",
			Err:    domain.ErrUnauthorized,
		})
	}
	if sub == nil {
		return nil, r.reject(&Error{Kind: KindInvalidSubmission, Op: OpValidate, Index: -1, Detail: "submission is required"})
	}
	if vErr := sub.Validate(); vErr != nil {
		return nil, r.reject(invalidSubmission(vErr))
	}
	team, facilities, vErr := sub.Entries()
	if vErr != nil {
		return nil, r.reject(invalidSubmission(vErr))
	}

	release, e := r.lock(ctx)
	if e != nil {
		return nil, r.reject(e)
	}
	defer release()

	if e := r.checkDuplicate(ctx); e != nil {
		return nil, r.reject(e)
	}

	r.logger.Info().Int("team_members", len(team)).Int("facility_photos", len(facilities)).Msg("onboarding started")

	logoURL, e := r.upload(ctx, OpUploadLogo, -1, "business_logo", sub.Logo, LogoBlobName(r.license, sub.Logo.Filename))
	if e != nil {
		return nil, r.fail(ctx, e)
	}
	ownerURL, e := r.upload(ctx, OpUploadOwnerPhoto, -1, "owner_photo", sub.OwnerPhoto, OwnerPhotoBlobName(r.license, sub.OwnerPhoto.Filename))
	if e != nil {
		return nil, r.fail(ctx, e)
	}

	business := sub.Business(identity.UserID, logoURL, ownerURL)
	if e := r.insert(ctx, OpInsertBusiness, -1, func() (int64, error) {
		createErr := s.businesses.Create(ctx, business)
		return business.ID, createErr
	}); e != nil {
		return nil, r.fail(ctx, e)
	}
	r.logger = r.logger.With().Int64("business_id", business.ID).Logger()

	members := make([]*domain.TeamMember, 0, len(team))
	for i, entry := range team {
		url, e := r.upload(ctx, OpUploadTeamPhoto, i, "team_member_photos", entry.Photo, TeamPhotoBlobName(business.ID, i, entry.Photo.Filename))
		if e != nil {
			return nil, r.fail(ctx, e)
		}

		m := &domain.TeamMember{
			BusinessID: business.ID,
			Name:       entry.Name,
			Role:       entry.Role,
			PhotoURL:   url,
			Position:   i,
		}
		if e := r.insert(ctx, OpInsertTeamMember, i, func() (int64, error) {
			createErr := s.team.Create(ctx, m)
			return m.ID, createErr
		}); e != nil {
			return nil, r.fail(ctx, e)
		}
		members = append(members, m)
	}

	photos := make([]*domain.FacilityPhoto, 0, len(facilities))
	for i, entry := range facilities {
		url, e := r.upload(ctx, OpUploadFacilityPhoto, i, "facility_photos", entry.Photo, FacilityPhotoBlobName(business.ID, i, entry.Photo.Filename))
		if e != nil {
			return nil, r.fail(ctx, e)
		}

		p := &domain.FacilityPhoto{
			BusinessID: business.ID,
			AreaName:   entry.AreaName,
			PhotoURL:   url,
			Position:   i,
		}
		if e := r.insert(ctx, OpInsertFacilityPhoto, i, func() (int64, error) {
			createErr := s.facilities.Create(ctx, p)
			return p.ID, createErr
		}); e != nil {
			return nil, r.fail(ctx, e)
		}
		photos = append(photos, p)
	}

	res = &Result{
		Business:       business,
		TeamMembers:    members,
		FacilityPhotos: photos,
		Progress:       r.progress.snapshot(),
	}
	r.succeed(ctx, res)

	return res, nil
}

// run holds the state of one Onboard call.
type run struct {
	svc        *Service
	identity   domain.Identity
	license    string
	name       string
	businessID int64
	op         string
	index      int
	progress   Progress
	logger     zerolog.Logger
}

func (s *Service) newRun(identity domain.Identity, sub *domain.Submission) *run {
	r := &run{svc: s, identity: identity, op: OpValidate, index: -1}
	if sub != nil {
		r.license = strings.TrimSpace(sub.FSSAILicense)
		r.name = strings.TrimSpace(sub.BusinessName)
	}
	r.logger = log.With().
		Str("component", "onboarding").
		Str("owner_id", identity.UserID.String()).
		Str("business_name", r.name).
		Str("license", r.license).
		Logger()
	return r
}

func (r *run) at(op string, index int) {
	r.op = op
	r.index = index
}

func (r *run) lock(ctx context.Context) (func(), *Error) {
	if r.svc.locker == nil {
		return func() {}, nil
	}
	r.at(OpLock, -1)

	release, err := r.svc.locker.Acquire(ctx, LockKey(r.license), r.svc.lockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, &Error{
				Kind:   KindInvalidSubmission,
				Op:     OpLock,
				Field:  "fssai_license",
				Index:  -1,
				Detail: "an onboarding for this license is already in progress",
				Err:    err,
			}
		}
		return nil, &Error{Kind: KindUnexpected, Op: OpLock, Index: -1, Err: err}
	}

	return release, nil
}

func (r *run) checkDuplicate(ctx context.Context) *Error {
	r.at(OpCheckDuplicate, -1)

	existing, err := r.svc.businesses.GetByFSSAILicense(ctx, r.license)
	switch {
	case err == nil && existing != nil:
		return &Error{
			Kind:   KindInvalidSubmission,
			Op:     OpCheckDuplicate,
			Field:  "fssai_license",
			Index:  -1,
			Detail: "a business with this license is already registered",
			Err:    fmt.Errorf("business %d: %w", existing.ID, domain.ErrConflict),
		}
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return &Error{Kind: KindPersistenceFailure, Op: OpCheckDuplicate, Index: -1, Err: err}
	}

	return nil
}

func (r *run) upload(ctx context.Context, op string, index int, field string, f *domain.File, name string) (string, *Error) {
	r.at(op, index)

	if err := ctx.Err(); err != nil {
		return "", &Error{Kind: KindStorageFailure, Op: op, Field: field, Index: index, Detail: name, Err: err}
	}

	body, err := f.Open()
	if err != nil {
		return "", &Error{Kind: KindUnexpected, Op: op, Field: field, Index: index, Detail: "open " + f.Filename, Err: err}
	}
	defer body.Close()

	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := r.svc.blobs.Put(ctx, name, body, f.Size, contentType)
	if err != nil {
		return "", &Error{Kind: KindStorageFailure, Op: op, Field: field, Index: index, Detail: name, Err: err}
	}
	if url == "" {
		return "", &Error{Kind: KindStorageFailure, Op: op, Field: field, Index: index, Detail: "blob store returned no url for " + name}
	}

	r.progress.uploaded(op, index, name, r.svc.now())
	r.publish(ctx, "step", op, index, name)

	return url, nil
}

func (r *run) insert(ctx context.Context, op string, index int, create func() (int64, error)) *Error {
	r.at(op, index)

	if err := ctx.Err(); err != nil {
		return &Error{Kind: KindPersistenceFailure, Op: op, Index: index, Err: err}
	}

	id, err := create()
	if err != nil {
		return &Error{Kind: KindPersistenceFailure, Op: op, Index: index, Err: err}
	}
	if id == 0 {
		return &Error{Kind: KindPersistenceFailure, Op: op, Index: index, Detail: "record store returned no id", Err: domain.ErrNoRowReturned}
	}

	r.progress.inserted(op, index, id, r.svc.now())
	if op == OpInsertBusiness {
		r.businessID = id
	}
	r.publish(ctx, "step", op, index, formatID(id))

	return nil
}

// reject returns a failure that happened before any side effect.
func (r *run) reject(e *Error) error {
	e.Progress = &Progress{}

	level := zerolog.WarnLevel
	if e.Kind != KindUnauthorized && e.Kind != KindInvalidSubmission {
		level = zerolog.ErrorLevel
	}
	r.logger.WithLevel(level).Err(e).Str("kind", e.Kind.String()).Str("op", e.Op).Msg("onboarding rejected")

	return e
}

// fail returns a failure that may leave uploads and rows behind.
func (r *run) fail(ctx context.Context, e *Error) error {
	e.Progress = r.progress.snapshot()

	r.logger.Error().Err(e).
		Str("kind", e.Kind.String()).
		Str("op", e.Op).
		Int("index", e.Index).
		Int("completed_steps", len(e.Progress.Steps)).
		Ints64("team_member_ids", e.Progress.TeamMemberIDs).
		Ints64("facility_photo_ids", e.Progress.FacilityPhotoIDs).
		Msg("onboarding failed")

	r.publish(ctx, "failed", e.Op, e.Index, e.Error())
	r.record(ctx, "onboarding.failed", e.Progress, map[string]any{
		"kind":  e.Kind.String(),
		"op":    e.Op,
		"index": e.Index,
		"error": e.Error(),
	})

	return e
}

func (r *run) succeed(ctx context.Context, res *Result) {
	r.logger.Info().
		Int("team_members", len(res.TeamMembers)).
		Int("facility_photos", len(res.FacilityPhotos)).
		Msg("onboarding completed")

	r.publish(ctx, "completed", "", -1, "")
	r.record(ctx, "onboarding.completed", res.Progress, nil)

	if r.svc.notifier == nil {
		return
	}
	sctx, cancel := r.sideEffectContext(ctx)
	defer cancel()
	if err := r.svc.notifier.NotifyBusinessOnboarded(sctx, res.Business, len(res.TeamMembers), len(res.FacilityPhotos)); err != nil {
		r.logger.Warn().Err(err).Msg("onboarding: notify failed")
	}
}

func (r *run) publish(ctx context.Context, typ, op string, index int, detail string) {
	if r.svc.events == nil {
		return
	}
	sctx, cancel := r.sideEffectContext(ctx)
	defer cancel()

	ev := &domain.OnboardingEvent{
		Type:       typ,
		OwnerID:    r.identity.UserID,
		License:    r.license,
		BusinessID: r.businessID,
		Op:         op,
		Index:      index,
		Detail:     detail,
		At:         r.svc.now(),
	}
	if err := r.svc.events.PublishOnboardingEvent(sctx, ev); err != nil {
		r.logger.Warn().Err(err).Str("op", op).Msg("onboarding: publish event failed")
	}
}

func (r *run) record(ctx context.Context, action string, progress *Progress, extra map[string]any) {
	if r.svc.audit == nil {
		return
	}
	sctx, cancel := r.sideEffectContext(ctx)
	defer cancel()

	resourceID := r.license
	if r.businessID != 0 {
		resourceID = formatID(r.businessID)
	}

	details := map[string]any{
		"business_name": r.name,
		"fssai_license": r.license,
		"progress":      progress,
	}
	for k, v := range extra {
		details[k] = v
	}

	entry := &domain.AuditEntry{
		ID:         uuid.New(),
		ActorType:  "user",
		ActorID:    r.identity.UserID.String(),
		Action:     action,
		Resource:   domain.AuditResourceBusiness,
		ResourceID: resourceID,
		Details:    details,
		CreatedAt:  r.svc.now(),
	}
	if err := r.svc.audit.Record(sctx, entry); err != nil {
		r.logger.Warn().Err(err).Str("action", action).Msg("onboarding: audit record failed")
	}
}

// sideEffectContext detaches from the request so a cancelled caller still
// gets its failure audited.
func (r *run) sideEffectContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), r.svc.sideEffectWait)
}

func invalidSubmission(err error) *Error {
	e := &Error{Kind: KindInvalidSubmission, Op: OpValidate, Index: -1, Err: err}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		e.Index = verr.Index
		e.Field = strings.Join(verr.Fields, ",")
	}

	return e
}

// LockKey is the lock key serializing onboarding for one license.
func LockKey(license string) string {
	return "onboarding:license:" + license
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
