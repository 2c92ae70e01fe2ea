package echoapi

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/masolab/soko/core"
	"github.com/masolab/soko/core/user"
)

func TestGetUserClaims(t *testing.T) {
	conf := core.NewTestConfig()
	usr := user.User{ID: 7, Username: "janedoe", Email: "janedoe@test.soko", Roles: user.TeacherRoles}

	claims := GetUserClaims(usr, conf)
	assert.Equal(t, tokenTypeAccess, claims.TokenType)
	assert.Equal(t, strconv.Itoa(usr.ID), claims.Subject)
	assert.Equal(t, usr.ID, claims.userID())
	assert.True(t, claims.IsTeacher)
	assert.False(t, claims.IsStudent)
	assert.False(t, claims.IsAdmin)
	assert.Empty(t, claims.Id) // access tokens carry no jti

	admin := user.User{ID: 8, Roles: user.AllRoles}
	adminClaims := GetUserClaims(admin, conf)
	assert.True(t, adminClaims.IsAdmin)
	assert.True(t, adminClaims.IsTeacher)
	assert.True(t, adminClaims.IsStudent)
}

func TestParseRefreshToken(t *testing.T) {
	conf := core.NewTestConfig()
	usr := user.User{ID: 7, Username: "janedoe"}

	refreshClaims := GetRefreshClaims(usr, conf)
	assert.Equal(t, tokenTypeRefresh, refreshClaims.TokenType)
	assert.NotEmpty(t, refreshClaims.Id)

	refresh, err := GenerateToken(refreshClaims, conf)
	assert.NoError(t, err)
	claims, err := parseRefreshToken(refresh, conf)
	assert.NoError(t, err)
	assert.Equal(t, refreshClaims.Id, claims.Id)
	assert.Equal(t, usr.ID, claims.userID())

	// an access token is not accepted as a refresh token
	access, err := GenerateToken(GetUserClaims(usr, conf), conf)
	assert.NoError(t, err)
	_, err = parseRefreshToken(access, conf)
	assert.Equal(t, errInvalidRefreshToken, err)

	// neither is garbage
	_, err = parseRefreshToken("not.a.token", conf)
	assert.Equal(t, errInvalidRefreshToken, err)

	// nor a token signed with another key
	otherConf := core.NewTestConfig()
	otherConf.SecretKey = []byte("other-secret")
	forged, err := GenerateToken(GetRefreshClaims(usr, otherConf), otherConf)
	assert.NoError(t, err)
	_, err = parseRefreshToken(forged, conf)
	assert.Equal(t, errInvalidRefreshToken, err)

	// nor an expired one
	expiredClaims := GetRefreshClaims(usr, conf)
	expiredClaims.StandardClaims.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	expired, err := GenerateToken(expiredClaims, conf)
	assert.NoError(t, err)
	_, err = parseRefreshToken(expired, conf)
	assert.Equal(t, errInvalidRefreshToken, err)

	// nor a refresh token missing its jti
	noJTI := GetRefreshClaims(usr, conf)
	noJTI.StandardClaims.Id = ""
	ss, err := GenerateToken(noJTI, conf)
	assert.NoError(t, err)
	_, err = parseRefreshToken(ss, conf)
	assert.Equal(t, errInvalidRefreshToken, err)
}
