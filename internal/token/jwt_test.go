package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "lineage/pkg/domain"
	dErrors "lineage/pkg/domain-errors"
)

func newTestService() *Service {
	return NewService("test-signing-key", "lineage", "lineage-api")
}

func TestValidateToken_RoundTrip(t *testing.T) {
	svc := newTestService()
	ownerID := id.UserID(uuid.New())

	tok, err := svc.Mint(ownerID, time.Minute)
	require.NoError(t, err)

	got, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, ownerID, got)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService()
	tok, err := svc.Mint(id.UserID(uuid.New()), -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(tok)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_WrongKey(t *testing.T) {
	tok, err := newTestService().Mint(id.UserID(uuid.New()), time.Minute)
	require.NoError(t, err)

	other := NewService("different-key", "lineage", "lineage-api")
	_, err = other.ValidateToken(tok)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	minter := NewService("test-signing-key", "someone-else", "lineage-api")
	tok, err := minter.Mint(id.UserID(uuid.New()), time.Minute)
	require.NoError(t, err)

	_, err = newTestService().ValidateToken(tok)
	require.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := newTestService().ValidateToken("not-a-jwt")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
