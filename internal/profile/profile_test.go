package profile

import (
	"context"
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/errors"
)

type stubRemote struct {
	details    *citycare.UserDetails
	detailsErr error
	referral   string
	ratings    []citycare.Rating
	updateErr  error
	sendErr    error
	verifyErr  error
	applyErr   error
	updates    []citycare.ProfileUpdate
	sentTo     []string
}

func (s *stubRemote) UserDetails(context.Context, int64) (*citycare.UserDetails, error) {
	if s.detailsErr != nil {
		return nil, s.detailsErr
	}
	d := *s.details
	return &d, nil
}

func (s *stubRemote) UpdateCustomer(_ context.Context, _ int64, u citycare.ProfileUpdate) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = append(s.updates, u)
	if u.FullName != nil {
		s.details.User.FullName = *u.FullName
	}
	return nil
}

func (s *stubRemote) SendEmailOTP(_ context.Context, _ int64, email string) error {
	s.sentTo = append(s.sentTo, email)
	return s.sendErr
}

func (s *stubRemote) ValidateEmailOTP(context.Context, int64, string) error {
	if s.verifyErr != nil {
		return s.verifyErr
	}
	s.details.User.IsEmailValid = true
	return nil
}

func (s *stubRemote) ReferralCode(context.Context) (string, error) {
	return s.referral, nil
}

func (s *stubRemote) ApplyReferralCode(context.Context, string) error {
	return s.applyErr
}

func (s *stubRemote) CustomerRatings(context.Context, int64) ([]citycare.Rating, error) {
	return s.ratings, nil
}

func newAccount(t *testing.T) (*Account, *stubRemote, *[]citycare.User) {
	t.Helper()
	remote := &stubRemote{
		details: &citycare.UserDetails{
			User:    citycare.User{ID: 7, FullName: "Asha Rao", Email: "asha@example.com"},
			Profile: &citycare.UserProfile{ID: 3, ProfileImageURL: "https://img.example.com/a.jpg"},
		},
		referral: "ASHA50",
		ratings:  []citycare.Rating{{ID: 1, Rating: 5}},
	}
	var published []citycare.User
	a, err := NewAccount(Deps{
		Remote: remote,
		OnUser: func(_ context.Context, u citycare.User) { published = append(published, u) },
	})
	require.NoError(t, err)
	return a, remote, &published
}

func TestLoadFillsDrawer(t *testing.T) {
	a, _, published := newAccount(t)

	a.Load(context.Background(), 7)
	v := a.View()
	require.NotNil(t, v.Details)
	assert.Equal(t, "ASHA50", v.ReferralCode)
	assert.Len(t, v.Ratings, 1)
	require.Len(t, *published, 1)
	require.NotNil(t, (*published)[0].Profile)
	assert.Equal(t, int64(3), (*published)[0].Profile.ID)
}

func TestLoadFailureKeepsDetails(t *testing.T) {
	a, remote, _ := newAccount(t)
	a.Load(context.Background(), 7)

	remote.detailsErr = stdErrors.New("timeout")
	a.Load(context.Background(), 7)
	assert.NotNil(t, a.View().Details)
}

func TestUpdateValidatesEmail(t *testing.T) {
	a, remote, _ := newAccount(t)

	err := a.Update(context.Background(), 7, "", "not-an-email")
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
	err = a.Update(context.Background(), 7, "  ", "")
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
	assert.Empty(t, remote.updates)
}

func TestUpdateRefreshesAndPublishes(t *testing.T) {
	a, remote, published := newAccount(t)

	require.NoError(t, a.Update(context.Background(), 7, " Asha R ", ""))
	require.Len(t, remote.updates, 1)
	assert.Nil(t, remote.updates[0].Email)
	assert.Equal(t, "Asha R", a.View().Details.User.FullName)
	assert.Equal(t, "Asha R", (*published)[len(*published)-1].FullName)
}

func TestUpdateFailureSetsError(t *testing.T) {
	a, remote, _ := newAccount(t)
	remote.updateErr = stdErrors.New("boom")

	require.Error(t, a.Update(context.Background(), 7, "Asha", ""))
	assert.Equal(t, ErrMsgUpdate, a.View().Error)
}

func TestSendEmailOTPFallsBackToLoadedEmail(t *testing.T) {
	a, remote, _ := newAccount(t)

	err := a.SendEmailOTP(context.Background(), 7, "")
	assert.True(t, errors.IsCode(err, errors.CodeValidation))

	a.Load(context.Background(), 7)
	require.NoError(t, a.SendEmailOTP(context.Background(), 7, ""))
	assert.Equal(t, []string{"asha@example.com"}, remote.sentTo)
}

func TestSendEmailOTPMessages(t *testing.T) {
	a, remote, _ := newAccount(t)

	remote.sendErr = errors.New(errors.CodeRemoteRejected, "")
	require.Error(t, a.SendEmailOTP(context.Background(), 7, "asha@example.com"))
	assert.Equal(t, ErrMsgSendRejected, a.View().EmailError)

	remote.sendErr = stdErrors.New("dial tcp")
	require.Error(t, a.SendEmailOTP(context.Background(), 7, "asha@example.com"))
	assert.Equal(t, ErrMsgSendOTP, a.View().EmailError)
}

func TestVerifyEmailOTP(t *testing.T) {
	a, remote, _ := newAccount(t)

	remote.verifyErr = errors.New(errors.CodeRemoteRejected, "")
	require.Error(t, a.VerifyEmailOTP(context.Background(), 7, "1234"))
	assert.Equal(t, ErrMsgInvalidOTP, a.View().EmailError)

	remote.verifyErr = nil
	require.NoError(t, a.VerifyEmailOTP(context.Background(), 7, "1234"))
	v := a.View()
	assert.Empty(t, v.EmailError)
	assert.Equal(t, MsgEmailVerified, v.Notice)
	assert.True(t, v.Details.User.IsEmailValid)
}

func TestApplyReferral(t *testing.T) {
	a, remote, _ := newAccount(t)

	assert.True(t, errors.IsCode(a.ApplyReferral(context.Background(), " "), errors.CodeValidation))

	remote.applyErr = errors.New(errors.CodeRemoteRejected, "Code already used")
	require.Error(t, a.ApplyReferral(context.Background(), "FRIEND"))
	assert.Equal(t, "Code already used", a.View().Error)

	remote.applyErr = nil
	require.NoError(t, a.ApplyReferral(context.Background(), "FRIEND"))
	assert.Equal(t, MsgReferralApplied, a.View().Notice)
}

func TestResetClearsDrawer(t *testing.T) {
	a, _, _ := newAccount(t)
	a.Load(context.Background(), 7)
	a.Reset()
	v := a.View()
	assert.Nil(t, v.Details)
	assert.Empty(t, v.Ratings)
}
