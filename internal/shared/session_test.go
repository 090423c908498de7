package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "djr_session", time.Hour, false), mr
}

func TestSessionRoundTripAndFlash(t *testing.T) {
	ctx := context.Background()
	sm, mr := newTestManager(t)

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser(7)
	sess.AddFlash(FlashMessage{Kind: FlashSuccess, Message: "Salvo"})

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	require.True(t, mr.Exists(sessionKeyPrefix+sess.ID))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.Equal(t, sess.ID, loaded.ID)
	require.Equal(t, int64(7), loaded.User())
	flash := loaded.PopFlash()
	require.NotNil(t, flash)
	require.Equal(t, "Salvo", flash.Message)
	require.Nil(t, loaded.PopFlash())
}

func TestSessionUnknownCookieGetsFreshID(t *testing.T) {
	sm, _ := newTestManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "djr_session", Value: "forged"})
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	require.NotEqual(t, "forged", sess.ID)
}

func TestSessionRotateAndDestroy(t *testing.T) {
	ctx := context.Background()
	sm, mr := newTestManager(t)

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), sess))
	first := sess.ID

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "djr_session", Value: first})
	sess, err = sm.Load(ctx, req)
	require.NoError(t, err)
	sm.Rotate(sess)
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), sess))
	require.False(t, mr.Exists(sessionKeyPrefix+first))
	require.True(t, mr.Exists(sessionKeyPrefix+sess.ID))

	sm.Destroy(sess)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	require.False(t, mr.Exists(sessionKeyPrefix+sess.ID))
	require.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}
