package service

import (
	"context"
	"errors"
	"testing"

	"blogicum/internal/models"
	"blogicum/internal/repository"

	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	getFn     func(context.Context, repository.PostFilter) (*models.Post, error)
	getByIDFn func(context.Context, uint) (*models.Post, error)
	deleteFn  func(context.Context, uint) error
}

func (s *postRepoStub) Find(context.Context, repository.PostFilter) ([]*models.Post, error) {
	return []*models.Post{}, nil
}
func (s *postRepoStub) Count(context.Context, repository.PostFilter) (int64, error) { return 0, nil }
func (s *postRepoStub) Get(ctx context.Context, f repository.PostFilter) (*models.Post, error) {
	return s.getFn(ctx, f)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Create(context.Context, *models.Post) error { return nil }
func (s *postRepoStub) Update(context.Context, *models.Post) error { return nil }
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	updateTextFn func(context.Context, uint, string) error
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(context.Context, uint) ([]*models.Comment, error) {
	return []*models.Comment{}, nil
}
func (s *commentRepoStub) UpdateText(ctx context.Context, id uint, text string) error {
	return s.updateTextFn(ctx, id, text)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return nil, models.NewNotFoundError("Comment", id) },
		updateTextFn: func(_ context.Context, _ uint, _ string) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// userRepoStub is an in-memory repository.UserRepository.
type userRepoStub struct {
	users map[uint]*models.User
}

func newUserRepoStub(users ...*models.User) *userRepoStub {
	s := &userRepoStub{users: map[uint]*models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *userRepoStub) find(match func(*models.User) bool) *models.User {
	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (s *userRepoStub) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Email == email }), nil
}

func (s *userRepoStub) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Username == username }), nil
}

func (s *userRepoStub) Create(_ context.Context, user *models.User) error {
	user.ID = uint(len(s.users) + 1)
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *userRepoStub) UpdateProfile(_ context.Context, user *models.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return models.NewNotFoundError("User", user.ID)
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *userRepoStub) SetStaff(_ context.Context, username string, staff bool) error {
	for _, u := range s.users {
		if u.Username == username {
			u.IsStaff = staff
			return nil
		}
	}
	return models.NewNotFoundError("User", username)
}

func (s *userRepoStub) List(context.Context, bool, int, int) ([]models.User, error) {
	return nil, nil
}

func requireCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}
