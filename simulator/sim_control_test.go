package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rook-computer/reticle/internal/app"
	"github.com/rook-computer/reticle/internal/render"
	"github.com/rook-computer/reticle/internal/reticle"
	"github.com/rook-computer/reticle/internal/settings"
	"github.com/rook-computer/reticle/internal/state"
	"github.com/rook-computer/reticle/internal/svg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunningControl(t *testing.T) (*SimControl, http.Handler) {
	t.Helper()
	store, err := settings.Open("", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	doc := svg.NewDocument(1, 1)
	doc.AddSurface("reticle")
	ret, err := reticle.New(doc, "reticle")
	require.NoError(t, err)

	stateStore := state.NewStore()
	a := app.New(stateStore, &render.NoopRenderer{Width: 640, Height: 480}, settings.NewNode(store), doc, ret)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = a.Start(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	require.Eventually(t, func() bool { return stateStore.Snapshot().Phase == state.READY }, time.Second, 5*time.Millisecond)

	control := &SimControl{App: a, Store: stateStore}
	mux := http.NewServeMux()
	registerSimEndpoints(mux, control)
	return control, mux
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rec
}

func TestSimEndpoints_GameAndHotkey(t *testing.T) {
	control, h := newRunningControl(t)

	require.Equal(t, http.StatusAccepted, post(h, "/sim/game", `{"inGame":true}`).Code)
	require.Eventually(t, func() bool { return control.Store.Snapshot().InGame }, time.Second, 5*time.Millisecond)
	assert.False(t, control.Store.Snapshot().MenuVisible)

	require.Equal(t, http.StatusAccepted, post(h, "/sim/hotkey/"+app.HotkeyMenu, "").Code)
	require.Eventually(t, func() bool { return control.Store.Snapshot().MenuVisible }, time.Second, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sim/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got simStateResponse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.InGame)
	assert.True(t, got.MenuVisible)
	assert.Equal(t, 640, got.Width)
}

func TestSimEndpoints_Resize(t *testing.T) {
	control, h := newRunningControl(t)

	require.Equal(t, http.StatusAccepted, post(h, "/sim/resize", `{"width":1024,"height":768}`).Code)
	require.Eventually(t, func() bool { return control.Store.Snapshot().Width == 1024 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, http.StatusBadRequest, post(h, "/sim/resize", `{"width":0,"height":768}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, "/sim/game", `nope`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, "/sim/hotkey/", "").Code)
}

func TestSimControl_ToggleGame(t *testing.T) {
	control, _ := newRunningControl(t)

	require.NoError(t, control.ToggleGame())
	require.Eventually(t, func() bool { return control.Store.Snapshot().InGame }, time.Second, 5*time.Millisecond)
	require.NoError(t, control.ToggleGame())
	require.Eventually(t, func() bool { return !control.Store.Snapshot().InGame }, time.Second, 5*time.Millisecond)
}
