package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/recordbox/recordbox/internal/repository"
	"github.com/recordbox/recordbox/internal/testutil"
)

func newTestRepository(t *testing.T, ctx context.Context) *repository.Repository {
	t.Helper()

	dsn := testutil.RequireEnv(t, "TEST_DATABASE_URL")

	repo, err := repository.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(repo.Close)

	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	return repo
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDBSession_PublishesAndReleases(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	var seen *repository.Session
	handler := DBSession(SessionConfig{
		Logger:     discardLogger(),
		Repository: repo,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = repository.SessionFromContext(r.Context())
		if seen == nil {
			t.Error("expected session in context")
			return
		}
		if seen.Released() {
			t.Error("session must be open while the handler runs")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if seen == nil || !seen.Released() {
		t.Error("session must be released after the request")
	}
}

func TestDBSession_ReleasesOnPanic(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	var seen *repository.Session

	// Same nesting as production: Recoverer outside, DBSession inside.
	// The deferred release runs while the panic unwinds, before recovery.
	inner := DBSession(SessionConfig{
		Logger:     discardLogger(),
		Repository: repo,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = repository.SessionFromContext(r.Context())
		panic("handler blew up")
	}))
	handler := Recoverer(discardLogger())(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if seen == nil {
		t.Fatal("handler never saw a session")
	}
	if !seen.Released() {
		t.Error("session must be released even when the handler panics")
	}
}

func TestAuth_ResolvesUserThroughSession(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)
	if err := testutil.ResetTables(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset tables: %v", err)
	}

	sess, err := repo.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	user, err := sess.CreateUser(ctx, "resolve@b.com", "$argon2id$hash")
	sess.Release()
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}

	mw := testAuthMiddleware(t)
	codecToken := issueTestToken(t, user.ID)

	var resolvedID int64
	inner := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := userFromRequest(r); u != nil {
			resolvedID = u.ID
		}
		w.WriteHeader(http.StatusOK)
	}))
	handler := DBSession(SessionConfig{
		Logger:     discardLogger(),
		Repository: repo,
	})(inner)

	req := httptest.NewRequest(http.MethodGet, "/records/", nil)
	req.Header.Set("Authorization", "Bearer "+codecToken)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resolvedID != user.ID {
		t.Errorf("resolved user id = %d, want %d", resolvedID, user.ID)
	}
}

func TestAuth_UnknownSubjectRejected(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)
	if err := testutil.ResetTables(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset tables: %v", err)
	}

	mw := testAuthMiddleware(t)
	token := issueTestToken(t, 424242) // no such user

	inner := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))
	handler := DBSession(SessionConfig{
		Logger:     discardLogger(),
		Repository: repo,
	})(inner)

	req := httptest.NewRequest(http.MethodGet, "/records/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("WWW-Authenticate = %q, want %q", got, "Bearer")
	}
}
