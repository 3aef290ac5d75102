package service

import (
	"context"
	"strings"

	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/policy"
	"blogicum/internal/repository"
	"blogicum/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgUsernameTaken = "A user with that username already exists."
	msgEmailTaken    = "A user with that email already exists."
)

type UserService struct {
	userRepo repository.UserRepository
	hashCost int
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, hashCost: bcrypt.DefaultCost}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, staffOnly bool, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, staffOnly, limit, offset)
}

// LoadActor resolves a session's user id into the request actor.
func (s *UserService) LoadActor(ctx context.Context, userID uint) (policy.Actor, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return policy.Actor{}, err
	}
	return policy.ActorFromUser(user), nil
}

// uniqueFields reports username/email clashes with users other than selfID.
func (s *UserService) uniqueFields(ctx context.Context, selfID uint, username, email string) (map[string]string, error) {
	fields := map[string]string{}

	other, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if other != nil && other.ID != selfID {
		fields["username"] = msgUsernameTaken
	}

	other, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if other != nil && other.ID != selfID {
		fields["email"] = msgEmailTaken
	}
	return fields, nil
}

// Register creates an account from the registration form.
func (s *UserService) Register(ctx context.Context, form validation.RegistrationForm) (_ *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "Register", attribute.String("user.username", form.Username))
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		observability.SessionEvents.WithLabelValues("register", outcome).Inc()
		observability.EndSpan(span, err)
	}()

	form.Email = strings.TrimSpace(form.Email)
	if fields := validation.Struct(&form); fields != nil {
		return nil, models.NewFieldErrors(fields)
	}
	fields, err := s.uniqueFields(ctx, 0, form.Username, form.Email)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, models.NewFieldErrors(fields)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Username: form.Username, Email: form.Email, Password: string(hashed)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords fail the same way.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (_ *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "Authenticate")
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		observability.SessionEvents.WithLabelValues("login", outcome).Inc()
		observability.EndSpan(span, err)
	}()

	invalid := models.NewUnauthorizedError("Please enter a correct username and password.")

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, invalid
	}
	return user, nil
}

// UpdateProfile edits the actor's own username, email and names.
func (s *UserService) UpdateProfile(ctx context.Context, actor policy.Actor, form validation.ProfileForm) (_ *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "UpdateProfile", attribute.Int64("user.id", int64(actor.ID)))
	defer func() { observability.EndSpan(span, err) }()

	if actor.Anonymous() {
		return nil, models.NewUnauthorizedError("login required")
	}
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	form.Email = strings.TrimSpace(form.Email)
	if fields := validation.Struct(&form); fields != nil {
		return nil, models.NewFieldErrors(fields)
	}
	fields, err := s.uniqueFields(ctx, user.ID, form.Username, form.Email)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, models.NewFieldErrors(fields)
	}

	user.Username = form.Username
	user.Email = form.Email
	user.FirstName = form.FirstName
	user.LastName = form.LastName
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureStaff creates or promotes a staff account. Used for local bootstrap only.
func (s *UserService) EnsureStaff(ctx context.Context, username, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if !user.IsStaff {
			if err := s.userRepo.SetStaff(ctx, username, true); err != nil {
				return nil, err
			}
			user.IsStaff = true
		}
		return user, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user = &models.User{Username: username, Email: email, Password: string(hashed), IsStaff: true}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
