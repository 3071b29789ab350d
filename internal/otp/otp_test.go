package otp_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"marmomart/internal/otp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const phone = "+919876543210"

// recordingSender keeps the last code sent to each phone.
type recordingSender struct {
	codes map[string]string
	err   error
}

func newRecordingSender() *recordingSender {
	return &recordingSender{codes: make(map[string]string)}
}

func (s *recordingSender) SendOTP(_ context.Context, phone, code string) error {
	if s.err != nil {
		return s.err
	}
	s.codes[phone] = code
	return nil
}

// MockStore is a mock implementation of otp.SessionStore
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, s *otp.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStore) Get(ctx context.Context, id string) (*otp.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*otp.Session), args.Error(1)
}

func (m *MockStore) Consume(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newManager(t *testing.T) (*otp.Manager, *recordingSender, *fakeClock) {
	t.Helper()
	sender := newRecordingSender()
	clock := &fakeClock{t: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}
	m := otp.NewManager(otp.NewMemoryStore(), sender,
		otp.WithHashCost(bcrypt.MinCost),
		otp.WithClock(clock.Now),
	)
	return m, sender, clock
}

func TestManager_IssueAndVerify(t *testing.T) {
	ctx := context.Background()
	m, sender, _ := newManager(t)

	sessionID, err := m.Issue(ctx, phone)
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)

	code := sender.codes[phone]
	assert.Regexp(t, regexp.MustCompile(`^[1-9][0-9]{5}$`), code)

	assert.NoError(t, m.Verify(ctx, sessionID, phone, code))

	// Single use.
	assert.ErrorIs(t, m.Verify(ctx, sessionID, phone, code), otp.ErrSessionNotFound)
}

func TestManager_ConcurrentVerifySucceedsOnce(t *testing.T) {
	ctx := context.Background()
	m, sender, _ := newManager(t)

	for round := 0; round < 20; round++ {
		sessionID, err := m.Issue(ctx, phone)
		require.NoError(t, err)
		code := sender.codes[phone]

		const callers = 8
		var wg sync.WaitGroup
		var successes int32
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := m.Verify(ctx, sessionID, phone, code)
				if err == nil {
					atomic.AddInt32(&successes, 1)
					return
				}
				assert.ErrorIs(t, err, otp.ErrSessionNotFound)
			}()
		}
		wg.Wait()
		require.Equal(t, int32(1), successes, "round %d", round)
	}
}

func TestManager_VerifyFailsWhenSessionAlreadyConsumed(t *testing.T) {
	store := new(MockStore)
	m := otp.NewManager(store, newRecordingSender(), otp.WithHashCost(bcrypt.MinCost))

	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	require.NoError(t, err)
	session := &otp.Session{ID: "s1", Phone: phone, CodeHash: string(hash), ExpiresAt: time.Now().Add(time.Minute)}
	store.On("Get", mock.Anything, "s1").Return(session, nil).Once()
	store.On("Consume", mock.Anything, "s1").Return(otp.ErrSessionNotFound).Once()

	assert.ErrorIs(t, m.Verify(context.Background(), "s1", phone, "123456"), otp.ErrSessionNotFound)
	store.AssertExpectations(t)
}

func TestManager_VerifyExpired(t *testing.T) {
	ctx := context.Background()
	m, sender, clock := newManager(t)

	sessionID, err := m.Issue(ctx, phone)
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)
	assert.ErrorIs(t, m.Verify(ctx, sessionID, phone, sender.codes[phone]), otp.ErrExpired)
}

func TestManager_ExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	m, sender, clock := newManager(t)

	sessionID, err := m.Issue(ctx, phone)
	require.NoError(t, err)

	clock.Advance(otp.DefaultTTL)
	assert.ErrorIs(t, m.Verify(ctx, sessionID, phone, sender.codes[phone]), otp.ErrExpired)

	sessionID, err = m.Issue(ctx, phone)
	require.NoError(t, err)
	clock.Advance(otp.DefaultTTL - time.Second)
	assert.NoError(t, m.Verify(ctx, sessionID, phone, sender.codes[phone]))
}

func TestManager_WrongCodeDoesNotConsume(t *testing.T) {
	ctx := context.Background()
	m, sender, _ := newManager(t)

	sessionID, err := m.Issue(ctx, phone)
	require.NoError(t, err)
	code := sender.codes[phone]

	wrong := "100000"
	if code == wrong {
		wrong = "100001"
	}
	assert.ErrorIs(t, m.Verify(ctx, sessionID, phone, wrong), otp.ErrCodeMismatch)
	assert.NoError(t, m.Verify(ctx, sessionID, phone, code))
}

func TestManager_PhoneMismatch(t *testing.T) {
	ctx := context.Background()
	m, sender, _ := newManager(t)

	sessionID, err := m.Issue(ctx, phone)
	require.NoError(t, err)

	assert.ErrorIs(t, m.Verify(ctx, sessionID, "+919000000000", sender.codes[phone]), otp.ErrPhoneMismatch)
}

func TestManager_UnknownSession(t *testing.T) {
	m, _, _ := newManager(t)
	assert.ErrorIs(t, m.Verify(context.Background(), "nope", phone, "123456"), otp.ErrSessionNotFound)
}

func TestManager_ReissueSupersedes(t *testing.T) {
	ctx := context.Background()
	m, sender, _ := newManager(t)

	first, err := m.Issue(ctx, phone)
	require.NoError(t, err)
	firstCode := sender.codes[phone]

	second, err := m.Issue(ctx, phone)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	assert.ErrorIs(t, m.Verify(ctx, first, phone, firstCode), otp.ErrSessionNotFound)
	assert.NoError(t, m.Verify(ctx, second, phone, sender.codes[phone]))
}

func TestManager_DeliveryFailureRemovesSession(t *testing.T) {
	store := new(MockStore)
	sender := newRecordingSender()
	sender.err = errors.New("whatsapp unavailable")
	m := otp.NewManager(store, sender, otp.WithHashCost(bcrypt.MinCost))

	var saved *otp.Session
	store.On("Save", mock.Anything, mock.AnythingOfType("*otp.Session")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*otp.Session) }).
		Return(nil).Once()
	store.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()

	sessionID, err := m.Issue(context.Background(), phone)
	assert.Empty(t, sessionID)
	assert.ErrorIs(t, err, otp.ErrDelivery)
	assert.Contains(t, err.Error(), "whatsapp unavailable")

	require.NotNil(t, saved)
	store.AssertCalled(t, "Delete", mock.Anything, saved.ID)
	store.AssertExpectations(t)
}

func TestManager_StoreFailure(t *testing.T) {
	store := new(MockStore)
	sender := newRecordingSender()
	m := otp.NewManager(store, sender, otp.WithHashCost(bcrypt.MinCost))

	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	_, err := m.Issue(context.Background(), phone)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.Empty(t, sender.codes, "code must not be sent when the session was not stored")
	store.AssertExpectations(t)
}

func TestManager_CodeNotStoredInClear(t *testing.T) {
	store := otp.NewMemoryStore()
	sender := newRecordingSender()
	m := otp.NewManager(store, sender, otp.WithHashCost(bcrypt.MinCost))

	sessionID, err := m.Issue(context.Background(), phone)
	require.NoError(t, err)

	s, err := store.Get(context.Background(), sessionID)
	require.NoError(t, err)
	assert.NotEqual(t, sender.codes[phone], s.CodeHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(s.CodeHash), []byte(sender.codes[phone])))
}
