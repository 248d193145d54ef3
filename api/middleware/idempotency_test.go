package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/Coco120903/BananaMeow-sub000/pkg/errors"
)

const orderRoute = "/api/v1/checkout/order"

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func post(handler http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, orderRoute, strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Error.Code
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusCreated, post(handler, "", `{}`).Code)
	}
	require.Equal(t, 2, calls)
	require.Empty(t, store.data)
}

func TestIdempotencyIgnoresReads(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/sessions/cs_1", nil)
	req.Header.Set(IdempotencyKeyHeader, "abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.Empty(t, store.data)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"session_id":"cs_1"}}`))
	}))

	first := post(handler, "abc", `{"items":[1]}`)
	require.Equal(t, http.StatusCreated, first.Code)
	require.Empty(t, first.Header().Get(IdempotentReplayHeader))

	replay := post(handler, "abc", `{"items":[1]}`)
	require.Equal(t, http.StatusCreated, replay.Code)
	require.Equal(t, "application/json", replay.Header().Get("Content-Type"))
	require.Equal(t, "true", replay.Header().Get(IdempotentReplayHeader))
	require.Equal(t, `{"data":{"session_id":"cs_1"}}`, replay.Body.String())
	require.Equal(t, 1, calls)
}

func TestIdempotencyCachesClientErrors(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))

	require.Equal(t, http.StatusBadRequest, post(handler, "bad-cart", `{}`).Code)
	require.Equal(t, http.StatusBadRequest, post(handler, "bad-cart", `{}`).Code)
	require.Equal(t, 1, calls)
}

func TestIdempotencyReleasesKeyOnServerErrors(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))

	for i := 0; i < 2; i++ {
		post(handler, "retry-me", `{}`)
	}
	require.Equal(t, 2, calls)
	require.Empty(t, store.data)
}

func TestIdempotencyRejectsConcurrentDuplicate(t *testing.T) {
	store := newFakeStore()
	var inner http.Handler
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// a duplicate arrives while the first request still holds the key
		dup := post(inner, "same", `{"items":[1]}`)
		require.Equal(t, http.StatusConflict, dup.Code)
		require.Equal(t, string(pkgerrors.CodeIdempotency), errorCode(t, dup))
		w.WriteHeader(http.StatusCreated)
	}))
	inner = handler

	require.Equal(t, http.StatusCreated, post(handler, "same", `{"items":[1]}`).Code)
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	post(handler, "xyz", `{"foo":"bar"}`)
	resp := post(handler, "xyz", `{"foo":"diff"}`)

	require.Equal(t, http.StatusConflict, resp.Code)
	require.Equal(t, string(pkgerrors.CodeIdempotency), errorCode(t, resp))
}

func TestIdempotencyRejectsOversizedKey(t *testing.T) {
	handler := Idempotency(newFakeStore(), time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	resp := post(handler, strings.Repeat("k", maxIdempotencyKeyLen+1), `{}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, string(pkgerrors.CodeValidation), errorCode(t, resp))
}

func TestIdempotencyNilStorePassesThrough(t *testing.T) {
	calls := 0
	handler := Idempotency(nil, 0, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	post(handler, "abc", `{}`)
	post(handler, "abc", `{}`)
	require.Equal(t, 2, calls)
}
