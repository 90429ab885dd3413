package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "contact-book/pkg/common/errors"
	"contact-book/pkg/core/contact/repository/dao/memory"
	"contact-book/pkg/core/field"
)

func seed(t *testing.T, svc *Service, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := svc.Create(context.Background(), Input{
			Name:  fmt.Sprintf("Person %02d", i),
			Email: fmt.Sprintf("p%d@example.org", i),
		})
		require.NoError(t, err)
	}
}

func TestListPaging(t *testing.T) {
	svc := NewService(memory.NewContactRepo(), 10)
	seed(t, svc, 25)
	ctx := context.Background()

	p, err := svc.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, p.Contacts, 10)
	assert.False(t, p.HasPrev)
	assert.True(t, p.HasNext)

	p, err = svc.List(ctx, "", 3)
	require.NoError(t, err)
	assert.Len(t, p.Contacts, 5)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)
	assert.Equal(t, "Person 21", p.Contacts[0].Name)

	// 页码非法时回到第一页
	p, err = svc.List(ctx, "", -2)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Number)
}

func TestListSearch(t *testing.T) {
	svc := NewService(memory.NewContactRepo(), 0)
	seed(t, svc, 12)

	p, err := svc.List(context.Background(), "  person 1 ", 1)
	require.NoError(t, err)
	assert.Equal(t, "person 1", p.Query)
	require.Len(t, p.Contacts, 3)
	assert.Equal(t, "Person 10", p.Contacts[0].Name)
	assert.False(t, p.HasNext)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(memory.NewContactRepo(), 10)
	ctx := context.Background()
	seed(t, svc, 1)

	_, err := svc.Create(ctx, Input{Name: "   ", Email: "bad"})
	var invalid *InvalidError
	require.ErrorAs(t, err, &invalid)
	assert.ErrorIs(t, invalid.Name, ErrNameRequired)
	require.NotNil(t, invalid.Email)
	assert.Equal(t, field.CategoryFormat, invalid.Email.Category())

	_, err = svc.Create(ctx, Input{Name: strings.Repeat("é", NameMaxLen+1), Email: "p1@example.org"})
	require.ErrorAs(t, err, &invalid)
	assert.ErrorIs(t, invalid.Name, ErrNameTooLong)
	var ee *field.EmailError
	require.ErrorAs(t, invalid.Email, &ee)
	assert.Equal(t, field.EmailTaken, ee.Kind)

	id, err := svc.Create(ctx, Input{Name: "  Ann ", Email: "ann@example.org"})
	require.NoError(t, err)
	c, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ann", c.Name)
}

func TestUpdateKeepsOwnEmail(t *testing.T) {
	svc := NewService(memory.NewContactRepo(), 10)
	ctx := context.Background()
	seed(t, svc, 2)

	require.NoError(t, svc.Update(ctx, 1, Input{Name: "Renamed", Email: "p1@example.org"}))
	c, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", c.Name)

	err = svc.Update(ctx, 1, Input{Name: "Renamed", Email: "p2@example.org"})
	var invalid *InvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Nil(t, invalid.Name)

	err = svc.Update(ctx, 99, Input{Name: "Ghost", Email: "ghost@example.org"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc := NewService(memory.NewContactRepo(), 10)
	ctx := context.Background()
	seed(t, svc, 1)

	require.NoError(t, svc.Delete(ctx, 1))
	assert.ErrorIs(t, svc.Delete(ctx, 1), apperrors.ErrNotFound)
}

func TestExport(t *testing.T) {
	svc := NewService(memory.NewContactRepo(), 10)
	seed(t, svc, 2)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), &buf))
	assert.Equal(t,
		"name: 'Person 01'\temail: 'p1@example.org'\n"+
			"name: 'Person 02'\temail: 'p2@example.org'\n",
		buf.String())
}

type failingLookup struct {
	*memory.ContactRepo
}

func (failingLookup) FindIDByEmail(context.Context, string) (uint, bool, error) {
	return 0, false, errors.New("db down")
}

func TestCreateLookupFailure(t *testing.T) {
	svc := NewService(failingLookup{memory.NewContactRepo()}, 10)

	_, err := svc.Create(context.Background(), Input{Name: "Ann", Email: "ann@example.org"})
	var invalid *InvalidError
	assert.False(t, errors.As(err, &invalid))
	var fe field.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, field.CategoryInfra, fe.Category())
}
