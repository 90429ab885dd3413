package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "contact-book/pkg/common/errors"
	"contact-book/pkg/core/account/repository/dao/memory"
	"contact-book/pkg/core/field"
)

func newTestService(t *testing.T) (*Service, *memory.AccountRepo) {
	t.Helper()
	repo := memory.NewAccountRepo()
	return NewService(repo, BcryptHasher{Cost: bcrypt.MinCost}), repo
}

var validAttempt = SignupAttempt{
	Name:     "alice",
	Email:    "alice@example.org",
	Password: "Abcdefg1",
}

func TestSubmitRoundTrip(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	id, err := svc.Submit(ctx, validAttempt)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Len())
	assert.Equal(t, StageCommitted, OutcomeOf(err))

	acct, err := repo.QueryByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", acct.Name)
	assert.NotEqual(t, validAttempt.Password, acct.PasswordHash)

	// 相同输入再次提交：名称先被检查
	_, err = svc.Submit(ctx, validAttempt)
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, field.KindName, rejected.Err.Field())
	assert.Equal(t, field.CategoryConflict, rejected.Err.Category())
	assert.Equal(t, validAttempt, rejected.Attempt)
	assert.Equal(t, StageRejected, OutcomeOf(err))
	assert.Equal(t, 1, repo.Len())
}

func TestSubmitErrorPriority(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Submit(context.Background(), validAttempt)
	require.NoError(t, err)

	tests := []struct {
		name    string
		attempt SignupAttempt
		want    field.Kind
	}{
		{"all bad", SignupAttempt{Name: "x", Email: "nope", Password: "a"}, field.KindName},
		{"email before password", SignupAttempt{Name: "bob_1", Email: "nope", Password: "a"}, field.KindEmail},
		{"email taken", SignupAttempt{Name: "bob_1", Email: "alice@example.org", Password: "Abcdefg1"}, field.KindEmail},
		{"password last", SignupAttempt{Name: "bob_1", Email: "bob@example.org", Password: "abcdefgh"}, field.KindPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.attempt)
			var rejected *RejectedError
			require.ErrorAs(t, err, &rejected)
			assert.Equal(t, tt.want, rejected.Err.Field())
		})
	}
}

func TestSubmitPasswordNoUpper(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Submit(context.Background(), SignupAttempt{Name: "bob_1", Email: "bob@example.org", Password: "abcdefgh"})
	var pe *field.PasswordError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, field.PasswordNoUpper, pe.Kind)
}

// racingRepo 预检查看不到已存在的记录，模拟并发提交
type racingRepo struct {
	*memory.AccountRepo
}

func (racingRepo) FindIDByName(context.Context, string) (uint, bool, error)  { return 0, false, nil }
func (racingRepo) FindIDByEmail(context.Context, string) (uint, bool, error) { return 0, false, nil }

func TestSubmitRace(t *testing.T) {
	repo := racingRepo{memory.NewAccountRepo()}
	svc := NewService(repo, BcryptHasher{Cost: bcrypt.MinCost})

	_, err := svc.Submit(context.Background(), validAttempt)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), validAttempt)
	var insertErr *InsertError
	require.ErrorAs(t, err, &insertErr)
	assert.Equal(t, field.CategoryRace, insertErr.Category)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEntry)
	assert.Equal(t, StageInsertFailed, OutcomeOf(err))
	assert.Equal(t, 1, repo.Len())
}

type brokenRepo struct {
	*memory.AccountRepo
	lookupErr error
	insertErr error
}

func (r brokenRepo) FindIDByName(ctx context.Context, name string) (uint, bool, error) {
	if r.lookupErr != nil {
		return 0, false, r.lookupErr
	}
	return r.AccountRepo.FindIDByName(ctx, name)
}

func (r brokenRepo) Insert(ctx context.Context, name, email, hash string) (uint, error) {
	if r.insertErr != nil {
		return 0, r.insertErr
	}
	return r.AccountRepo.Insert(ctx, name, email, hash)
}

func TestSubmitInfraFailures(t *testing.T) {
	boom := errors.New("db down")

	svc := NewService(brokenRepo{AccountRepo: memory.NewAccountRepo(), lookupErr: boom}, BcryptHasher{Cost: bcrypt.MinCost})
	_, err := svc.Submit(context.Background(), validAttempt)
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, field.CategoryInfra, rejected.Err.Category())
	assert.False(t, rejected.Err.Category().Inline())
	assert.ErrorIs(t, err, boom)

	svc = NewService(brokenRepo{AccountRepo: memory.NewAccountRepo(), insertErr: boom}, BcryptHasher{Cost: bcrypt.MinCost})
	_, err = svc.Submit(context.Background(), validAttempt)
	var insertErr *InsertError
	require.ErrorAs(t, err, &insertErr)
	assert.Equal(t, field.CategoryInfra, insertErr.Category)
}

func TestStage(t *testing.T) {
	assert.Equal(t, "validating_email", StageValidatingEmail.String())
	assert.True(t, StageRejected.Terminal())
	assert.False(t, StageInserting.Terminal())
}
