package authors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/events"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/validate"
	"github.com/newsdesk/newsdesk/pkg/logger"
	"github.com/newsdesk/newsdesk/pkg/pagination"
)

// Service encapsulates author accounts and the approval workflow.
type Service struct {
	repo   Repository
	events events.Publisher
}

func NewService(r Repository, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.LogPublisher{}
	}
	return &Service{repo: r, events: pub}
}

// RegisterInput is the self-service signup payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio"`
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// Register creates a pending author awaiting review.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Author, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	v := validate.New()
	v.Required("name", in.Name).MaxLen("name", in.Name, 120)
	v.Required("email", in.Email).Email("email", in.Email)
	v.MinLen("password", in.Password, MinPasswordLen).MaxLen("password", in.Password, 72)
	v.MaxLen("bio", in.Bio, 2000)
	if err := v.Err("invalid registration"); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	a := &models.Author{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Bio:          in.Bio,
		Role:         models.RoleAuthor,
		Status:       models.AuthorPending,
	}
	if err := s.create(ctx, a); err != nil {
		return nil, err
	}
	logger.Infof("author registered id=%s (pending review)", a.ID)
	return a, nil
}

func (s *Service) create(ctx context.Context, a *models.Author) error {
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return apperr.Conflict("email already registered")
		}
		return apperr.Internal(err)
	}
	return nil
}

// EnsureAdmin creates (or promotes) an approved admin account. Used for bootstrap.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (*models.Author, error) {
	email = normalizeEmail(email)
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		existing.Role = models.RoleAdmin
		existing.Status = models.AuthorApproved
		if password != "" {
			if existing.PasswordHash, err = hashPassword(password); err != nil {
				return nil, apperr.Internal(err)
			}
		}
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, apperr.Internal(err)
		}
		return existing, nil
	}
	if len(password) < MinPasswordLen {
		return nil, apperr.Validation("invalid admin", map[string]string{"password": fmt.Sprintf("minimum %d characters", MinPasswordLen)})
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	a := &models.Author{Name: name, Email: email, PasswordHash: hash, Role: models.RoleAdmin, Status: models.AuthorApproved}
	if err := s.create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Authenticate checks email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.Author, error) {
	a, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.Unauthorized("invalid email or password")
		}
		return nil, apperr.Internal(err)
	}
	if !checkPassword(password, a.PasswordHash) {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if err := loginAllowed(a); err != nil {
		return nil, err
	}
	return a, nil
}

func loginAllowed(a *models.Author) error {
	switch a.Status {
	case models.AuthorRejected:
		return apperr.Forbidden("author application was rejected")
	case models.AuthorSuspended:
		return apperr.Forbidden("author account is suspended")
	}
	return nil
}

// UpsertFromClaims creates or links an author from OIDC claims of the given
// provider. New accounts start pending review.
func (s *Service) UpsertFromClaims(ctx context.Context, provider string, claims map[string]interface{}) (*models.Author, error) {
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	if sub == "" {
		return nil, apperr.Unauthorized("id token has no subject")
	}
	email = normalizeEmail(email)

	a, err := s.repo.GetByProvider(ctx, provider, sub)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, apperr.Internal(err)
	}
	if a == nil && email != "" {
		// link an existing account with the same email, only on a verified address
		if a, err = s.repo.GetByEmail(ctx, email); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, apperr.Internal(err)
		}
		if a != nil && !emailVerified(claims) {
			logger.Warnf("refusing %s login for %s: email not verified by provider", provider, email)
			return nil, apperr.Conflict("an account with this email already exists; sign in with it to link " + provider)
		}
	}
	if a != nil {
		a.Provider = provider
		a.ProviderSub = sub
		if a.AvatarURL == "" {
			a.AvatarURL = picture
		}
		if err := s.repo.Update(ctx, a); err != nil {
			return nil, apperr.Internal(err)
		}
		if err := loginAllowed(a); err != nil {
			return nil, err
		}
		return a, nil
	}
	if email == "" {
		return nil, apperr.Unauthorized("id token has no email claim")
	}
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	a = &models.Author{
		Name:        name,
		Email:       email,
		AvatarURL:   picture,
		Role:        models.RoleAuthor,
		Status:      models.AuthorPending,
		Provider:    provider,
		ProviderSub: sub,
	}
	if err := s.create(ctx, a); err != nil {
		return nil, err
	}
	logger.Infof("author created from %s login id=%s (pending review)", provider, a.ID)
	return a, nil
}

// emailVerified reads the email_verified claim, which some providers send
// as a string.
func emailVerified(claims map[string]interface{}) bool {
	switch v := claims["email_verified"].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}

func (s *Service) Get(ctx context.Context, id string) (*models.Author, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("author")
		}
		return nil, apperr.Internal(err)
	}
	return a, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*models.Author, error) {
	a, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("author")
		}
		return nil, apperr.Internal(err)
	}
	return a, nil
}

// LoadPrincipal resolves the current role/status of an author id; used by the
// auth middleware so suspensions take effect immediately.
func (s *Service) LoadPrincipal(ctx context.Context, id string) (*models.Principal, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := loginAllowed(a); err != nil {
		return nil, err
	}
	return models.PrincipalOf(a), nil
}

// GetMany returns authors keyed by id; unknown ids are omitted.
func (s *Service) GetMany(ctx context.Context, ids []string) (map[string]*models.Author, error) {
	m, err := s.repo.GetMany(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, f Filter, p pagination.Params) ([]*models.Author, int, error) {
	list, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return list, total, nil
}

// ProfileInput updates self-managed fields; nil fields are left unchanged.
type ProfileInput struct {
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatarUrl"`
	Password  *string `json:"password"`
}

// UpdateProfile lets an author edit their own profile (admins may edit anyone).
func (s *Service) UpdateProfile(ctx context.Context, actor *models.Principal, id string, in ProfileInput) (*models.Author, error) {
	if actor == nil || (actor.ID != id && !actor.IsAdmin()) {
		return nil, apperr.Forbidden("cannot edit another author's profile")
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v := validate.New()
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		v.Required("name", name).MaxLen("name", name, 120)
		a.Name = name
	}
	if in.Bio != nil {
		v.MaxLen("bio", *in.Bio, 2000)
		a.Bio = *in.Bio
	}
	if in.AvatarURL != nil {
		v.URL("avatarUrl", *in.AvatarURL)
		a.AvatarURL = *in.AvatarURL
	}
	if in.Password != nil {
		v.MinLen("password", *in.Password, MinPasswordLen).MaxLen("password", *in.Password, 72)
	}
	if err := v.Err("invalid profile"); err != nil {
		return nil, err
	}
	if in.Password != nil {
		if a.PasswordHash, err = hashPassword(*in.Password); err != nil {
			return nil, apperr.Internal(err)
		}
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, apperr.Internal(err)
	}
	return a, nil
}

// Decision is a review action taken by an admin.
type Decision string

const (
	DecisionApprove   Decision = "approve"
	DecisionReject    Decision = "reject"
	DecisionSuspend   Decision = "suspend"
	DecisionReinstate Decision = "reinstate"
	DecisionReopen    Decision = "reopen"
)

// transitions lists the allowed status changes per decision.
var transitions = map[Decision]struct {
	from []models.AuthorStatus
	to   models.AuthorStatus
}{
	DecisionApprove:   {from: []models.AuthorStatus{models.AuthorPending}, to: models.AuthorApproved},
	DecisionReject:    {from: []models.AuthorStatus{models.AuthorPending}, to: models.AuthorRejected},
	DecisionSuspend:   {from: []models.AuthorStatus{models.AuthorApproved}, to: models.AuthorSuspended},
	DecisionReinstate: {from: []models.AuthorStatus{models.AuthorSuspended}, to: models.AuthorApproved},
	DecisionReopen:    {from: []models.AuthorStatus{models.AuthorRejected}, to: models.AuthorPending},
}

// NextStatus applies d to the current status.
func NextStatus(current models.AuthorStatus, d Decision) (models.AuthorStatus, error) {
	t, ok := transitions[d]
	if !ok {
		return "", apperr.BadRequest("unknown review decision " + string(d))
	}
	for _, from := range t.from {
		if from == current {
			return t.to, nil
		}
	}
	return "", apperr.Conflict(fmt.Sprintf("cannot %s an author who is %s", d, current))
}

// Review applies an admin decision to an author's application/account.
func (s *Service) Review(ctx context.Context, actor *models.Principal, id string, d Decision, note string) (*models.Author, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("only admins review authors")
	}
	if actor.ID == id {
		return nil, apperr.Forbidden("cannot review your own account")
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := NextStatus(a.Status, d)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	a.Status = next
	a.ReviewedBy = actor.ID
	a.ReviewedAt = &now
	a.ReviewNote = note
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, apperr.Internal(err)
	}
	logger.Infof("author %s %s by %s -> %s", a.ID, d, actor.ID, next)
	events.Emit(ctx, s.events, events.New(events.AuthorReviewed, a.ID, map[string]interface{}{
		"status":   string(next),
		"decision": string(d),
		"email":    a.Email,
	}))
	return a, nil
}

// SetRole changes an author's role (admin only).
func (s *Service) SetRole(ctx context.Context, actor *models.Principal, id string, role models.Role) (*models.Author, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("only admins change roles")
	}
	if !models.ValidRole(role) {
		return nil, apperr.Validation("invalid role", map[string]string{"role": "must be one of: admin, editor, author"})
	}
	if actor.ID == id && role != models.RoleAdmin {
		return nil, apperr.Forbidden("cannot demote yourself")
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Role = role
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, apperr.Internal(err)
	}
	return a, nil
}

// Delete removes an author account (admin only). Their posts keep the raw id.
func (s *Service) Delete(ctx context.Context, actor *models.Principal, id string) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("only admins delete authors")
	}
	if actor.ID == id {
		return apperr.Forbidden("cannot delete your own account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("author")
		}
		return apperr.Internal(err)
	}
	return nil
}
