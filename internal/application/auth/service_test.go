package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/domain"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/infrastructure/memory"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/pkg/code"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/pkg/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) SendCode(ctx context.Context, email, codeValue string) error {
	return m.Called(ctx, email, codeValue).Error(0)
}

type mockCodeRepo struct{ mock.Mock }

func (m *mockCodeRepo) Create(ctx context.Context, c *domain.AuthCode) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCodeRepo) FindValid(ctx context.Context, email, codeValue string) (*domain.AuthCode, error) {
	args := m.Called(ctx, email, codeValue)
	if c, _ := args.Get(0).(*domain.AuthCode); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCodeRepo) Consume(ctx context.Context, codeID string) (bool, error) {
	args := m.Called(ctx, codeID)
	return args.Bool(0), args.Error(1)
}

// --- builder ---

func newMemService(notifier Notifier) (Service, *memory.Store) {
	store := memory.NewStore()
	return NewService(store.Users(), store.Codes(), notifier, code.NewGenerator()), store
}

func okNotifier() *mockNotifier {
	n := &mockNotifier{}
	n.On("SendCode", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return n
}

// --- RequestCode ---

func TestRequestCode_InvalidEmail(t *testing.T) {
	n := &mockNotifier{}
	svc, _ := newMemService(n)

	for _, email := range []string{"", "   ", "no-at-sign"} {
		err := svc.RequestCode(context.Background(), email)
		assert.ErrorIs(t, err, domain.ErrBadRequest, "email %q", email)
	}
	n.AssertNotCalled(t, "SendCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestCode_PersistsAndNotifies(t *testing.T) {
	n := okNotifier()
	svc, store := newMemService(n)

	before := time.Now().UTC()
	require.NoError(t, svc.RequestCode(context.Background(), "a@b.com"))

	u, ok := store.UserByEmail("a@b.com")
	require.True(t, ok)
	codes := store.CodesFor(u.UserID)
	require.Len(t, codes, 1)

	ac := codes[0]
	assert.Len(t, ac.Code, 6)
	assert.False(t, ac.Used)
	assert.WithinDuration(t, before.Add(10*time.Minute), ac.ExpiresAt, 5*time.Second)

	n.AssertCalled(t, "SendCode", mock.Anything, "a@b.com", ac.Code)
}

func TestRequestCode_TwiceKeepsBothCodes(t *testing.T) {
	svc, store := newMemService(okNotifier())
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "a@b.com"))
	require.NoError(t, svc.RequestCode(ctx, "a@b.com"))

	u, ok := store.UserByEmail("a@b.com")
	require.True(t, ok)
	codes := store.CodesFor(u.UserID)
	require.Len(t, codes, 2)
	assert.Equal(t, codes[0].UserID, codes[1].UserID)
	for _, c := range codes {
		assert.False(t, c.Used)
	}
}

func TestRequestCode_NormalizesEmail(t *testing.T) {
	svc, store := newMemService(okNotifier())
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "  User@Example.com "))
	require.NoError(t, svc.RequestCode(ctx, "user@example.com"))

	u, ok := store.UserByEmail("user@example.com")
	require.True(t, ok)
	assert.Len(t, store.CodesFor(u.UserID), 2)
}

func TestRequestCode_NotifierFailureIsNotFatal(t *testing.T) {
	n := &mockNotifier{}
	n.On("SendCode", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("provider down"))
	svc, store := newMemService(n)

	require.NoError(t, svc.RequestCode(context.Background(), "a@b.com"))

	// The code row must exist even though delivery failed: the user can
	// simply request again.
	u, ok := store.UserByEmail("a@b.com")
	require.True(t, ok)
	assert.Len(t, store.CodesFor(u.UserID), 1)
}

// --- VerifyCode ---

func TestVerifyCode_MissingFields(t *testing.T) {
	svc, _ := newMemService(okNotifier())
	ctx := context.Background()

	_, err := svc.VerifyCode(ctx, "", "123456")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	_, err = svc.VerifyCode(ctx, "a@b.com", "")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	_, err = svc.VerifyCode(ctx, "a@b.com", "   ")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestVerifyCode_UnknownCode(t *testing.T) {
	svc, _ := newMemService(okNotifier())

	_, err := svc.VerifyCode(context.Background(), "a@b.com", "000000")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerifyCode_SuccessThenReplayRejected(t *testing.T) {
	n := &mockNotifier{}
	var sentCode string
	n.On("SendCode", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sentCode = args.String(2) }).
		Return(nil)
	svc, store := newMemService(n)
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "a@b.com"))
	require.NotEmpty(t, sentCode)

	u, err := svc.VerifyCode(ctx, "a@b.com", sentCode)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)
	assert.NotEmpty(t, u.UserID)

	stored, ok := store.UserByEmail("a@b.com")
	require.True(t, ok)
	assert.Equal(t, stored.UserID, u.UserID)
	assert.True(t, store.CodesFor(u.UserID)[0].Used)

	// Replay with the exact same pair is an authentication failure.
	_, err = svc.VerifyCode(ctx, "a@b.com", sentCode)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerifyCode_NormalizedEmailMatches(t *testing.T) {
	n := &mockNotifier{}
	var sentCode string
	n.On("SendCode", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sentCode = args.String(2) }).
		Return(nil)
	svc, _ := newMemService(n)
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "user@example.com"))

	u, err := svc.VerifyCode(ctx, " User@Example.COM ", sentCode)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", u.Email)
}

func TestVerifyCode_Expired(t *testing.T) {
	svc, store := newMemService(okNotifier())
	ctx := context.Background()

	u, err := store.Users().Upsert(ctx, "a@b.com")
	require.NoError(t, err)
	now := time.Now().UTC()
	store.Seed(domain.AuthCode{
		CodeID: id.New(), UserID: u.UserID, Code: "123456",
		CreatedAt: now.Add(-20 * time.Minute), ExpiresAt: now.Add(-10 * time.Minute),
	})

	_, err = svc.VerifyCode(ctx, "a@b.com", "123456")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerifyCode_LostConsumeRace(t *testing.T) {
	repo := &mockCodeRepo{}
	ac := &domain.AuthCode{CodeID: "c1", UserID: "u1", Code: "123456"}
	repo.On("FindValid", mock.Anything, "a@b.com", "123456").Return(ac, nil)
	repo.On("Consume", mock.Anything, "c1").Return(false, nil)

	store := memory.NewStore()
	svc := NewService(store.Users(), repo, okNotifier(), code.NewGenerator())

	// A concurrent request consumed the code between lookup and update;
	// losing the compare-and-set must read as invalid code, not success.
	_, err := svc.VerifyCode(context.Background(), "a@b.com", "123456")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
