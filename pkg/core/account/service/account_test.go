package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"contact-book/pkg/core/field"
)

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id, err := svc.Submit(ctx, validAttempt)
	require.NoError(t, err)

	acct, err := svc.Login(ctx, "alice", "Abcdefg1")
	require.NoError(t, err)
	assert.Equal(t, id, acct.ID)

	acct, err = svc.Login(ctx, "alice@example.org", "Abcdefg1")
	require.NoError(t, err)
	assert.Equal(t, id, acct.ID)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "Abcdefg1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangeEmail(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	alice, err := svc.Submit(ctx, validAttempt)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, SignupAttempt{Name: "bob_1", Email: "bob@example.org", Password: "Abcdefg1"})
	require.NoError(t, err)

	// 保留自己的邮箱
	require.NoError(t, svc.ChangeEmail(ctx, alice, "alice@example.org"))
	acct, err := repo.QueryByID(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, acct.Version, "unchanged email is not written")

	err = svc.ChangeEmail(ctx, alice, "bob@example.org")
	var ee *field.EmailError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, field.EmailTaken, ee.Kind)

	require.NoError(t, svc.ChangeEmail(ctx, alice, "alice@new.example.org"))
	acct, err = repo.QueryByID(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.org", acct.Email)
	assert.Equal(t, 2, acct.Version)
}

func TestHashers(t *testing.T) {
	bc, err := NewPasswordHasher("bcrypt", bcrypt.MinCost)
	require.NoError(t, err)
	ar, err := NewPasswordHasher("argon2id", 0)
	require.NoError(t, err)

	for _, h := range []PasswordHasher{bc, ar} {
		enc, err := h.Hash("Abcdefg1")
		require.NoError(t, err)

		ok, err := h.Verify("Abcdefg1", enc)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = h.Verify("Abcdefg2", enc)
		require.NoError(t, err)
		assert.False(t, ok)

		// 任一实现都能校验另一种编码
		ok, err = bc.Verify("Abcdefg1", enc)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	enc, err := ar.Hash("x")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc, "argon2id$"))

	_, err = NewPasswordHasher("md5", 0)
	assert.Error(t, err)
	_, err = NewPasswordHasher("bcrypt", 99)
	assert.Error(t, err)
}
