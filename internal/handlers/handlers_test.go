package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notekeeper-app/notekeeper/internal/auth"
	"github.com/notekeeper-app/notekeeper/internal/db"
	"github.com/notekeeper-app/notekeeper/internal/models"
	"github.com/notekeeper-app/notekeeper/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	conn, err := db.Open(db.Config{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	st := store.New(conn)
	tokens := auth.NewTokenService("test-secret", time.Hour)

	h, err := New(st, tokens, zerolog.Nop())
	require.NoError(t, err)

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv, st
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func register(t *testing.T, client *http.Client, srv *httptest.Server, username, password string) {
	t.Helper()
	resp, err := client.PostForm(srv.URL+"/register", url.Values{
		"username": {username},
		"password": {password},
	})
	require.NoError(t, err)
	readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/", resp.Request.URL.Path, "registration should log in and land on the note list")
}

func userNotes(t *testing.T, st *store.Store, username string) []models.Note {
	t.Helper()
	user, err := st.GetUserByUsername(context.Background(), username)
	require.NoError(t, err)
	notes, err := st.ListNotes(context.Background(), user.ID, store.NoteFilter{})
	require.NoError(t, err)
	return notes
}

func TestRegisterLoginCreateViewScenario(t *testing.T) {
	srv, st := newTestServer(t)
	client := newClient(t)

	register(t, client, srv, "alice", "pw1")

	// Fresh session: log out, then back in with the same credentials.
	resp, err := client.Get(srv.URL + "/logout")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, "/login", resp.Request.URL.Path)

	resp, err = client.PostForm(srv.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"pw1"},
	})
	require.NoError(t, err)
	readBody(t, resp)
	require.Equal(t, "/", resp.Request.URL.Path)

	resp, err = client.PostForm(srv.URL+"/note/new", url.Values{
		"title":   {"T"},
		"content": {"C"},
		"tags":    {"x,y"},
	})
	require.NoError(t, err)
	readBody(t, resp)
	require.Equal(t, "/", resp.Request.URL.Path)

	notes := userNotes(t, st, "alice")
	require.Len(t, notes, 1)
	note := notes[0]
	assert.Equal(t, "T", note.Title)
	assert.False(t, note.IsPinned)
	assert.Equal(t, []string{"x", "y"}, note.TagNames())

	resp, err = client.Get(fmt.Sprintf("%s/note/%d", srv.URL, note.ID))
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "T")
	assert.Contains(t, body, "x, y")
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	register(t, newClient(t), srv, "alice", "pw1")

	client := newClient(t)
	resp, err := client.PostForm(srv.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, "/login", resp.Request.URL.Path, "no redirect on failure")
	assert.Contains(t, body, "Invalid username or password")
	assert.NotContains(t, body, "wrong", "the password is never echoed back")

	// No session was established.
	resp, err = client.Get(srv.URL + "/")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, "/login", resp.Request.URL.Path)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	srv, st := newTestServer(t)

	register(t, newClient(t), srv, "alice", "pw1")

	client := newClient(t)
	resp, err := client.PostForm(srv.URL+"/register", url.Values{
		"username": {"alice"},
		"password": {"pw2"},
	})
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, "/register", resp.Request.URL.Path)
	assert.Contains(t, body, "Username already exists")

	// Still exactly one alice, with the original password hash intact.
	user, err := st.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NoError(t, auth.VerifyPassword(user.PasswordHash, "pw1"))
}

func TestProtectedRoutesRedirectAnonymous(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(t)

	for _, path := range []string{"/", "/note/new", "/note/1", "/categories", "/category/new"} {
		resp, err := client.Get(srv.URL + path)
		require.NoError(t, err)
		readBody(t, resp)
		assert.Equal(t, "/login", resp.Request.URL.Path, "GET %s should bounce to login", path)
	}
}

func TestTamperedSessionCookie(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(t)

	register(t, client, srv, "alice", "pw1")

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	cookies := client.Jar.Cookies(u)
	require.NotEmpty(t, cookies)
	for _, c := range cookies {
		if c.Name == auth.SessionCookie {
			c.Value += "tampered"
		}
	}
	client.Jar.SetCookies(u, cookies)

	resp, err := client.Get(srv.URL + "/")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, "/login", resp.Request.URL.Path)
}

func TestCrossUserNoteIsNotFound(t *testing.T) {
	srv, st := newTestServer(t)

	alice := newClient(t)
	register(t, alice, srv, "alice", "pw1")
	resp, err := alice.PostForm(srv.URL+"/note/new", url.Values{
		"title":   {"secret"},
		"content": {"C"},
	})
	require.NoError(t, err)
	readBody(t, resp)

	noteID := userNotes(t, st, "alice")[0].ID

	bob := newClient(t)
	register(t, bob, srv, "bob", "pw2")

	resp, err = bob.Get(fmt.Sprintf("%s/note/%d", srv.URL, noteID))
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = bob.PostForm(fmt.Sprintf("%s/note/%d/delete", srv.URL, noteID), url.Values{})
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = bob.PostForm(fmt.Sprintf("%s/note/%d/toggle-pin", srv.URL, noteID), url.Values{})
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.Len(t, userNotes(t, st, "alice"), 1)
}

func TestTogglePinOverHTTP(t *testing.T) {
	srv, st := newTestServer(t)
	client := newClient(t)

	register(t, client, srv, "alice", "pw1")
	resp, err := client.PostForm(srv.URL+"/note/new", url.Values{
		"title":   {"T"},
		"content": {"C"},
	})
	require.NoError(t, err)
	readBody(t, resp)

	noteID := userNotes(t, st, "alice")[0].ID

	resp, err = client.PostForm(fmt.Sprintf("%s/note/%d/toggle-pin", srv.URL, noteID), url.Values{})
	require.NoError(t, err)
	readBody(t, resp)
	assert.True(t, userNotes(t, st, "alice")[0].IsPinned)

	resp, err = client.PostForm(fmt.Sprintf("%s/note/%d/toggle-pin", srv.URL, noteID), url.Values{})
	require.NoError(t, err)
	readBody(t, resp)
	assert.False(t, userNotes(t, st, "alice")[0].IsPinned)
}

func TestCategoryFormValidation(t *testing.T) {
	srv, st := newTestServer(t)
	client := newClient(t)

	register(t, client, srv, "alice", "pw1")

	resp, err := client.PostForm(srv.URL+"/category/new", url.Values{
		"name":  {"Reading"},
		"color": {"not-a-color"},
	})
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, "must be a #rrggbb value")

	resp, err = client.PostForm(srv.URL+"/category/new", url.Values{
		"name":  {"Reading"},
		"color": {"#112233"},
	})
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, "/categories", resp.Request.URL.Path)

	user, err := st.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	categories, err := st.ListCategories(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, categories, 4, "three defaults plus the new one")
}

func TestNoteFormValidationRerenders(t *testing.T) {
	srv, st := newTestServer(t)
	client := newClient(t)

	register(t, client, srv, "alice", "pw1")

	resp, err := client.PostForm(srv.URL+"/note/new", url.Values{
		"title":   {""},
		"content": {"kept content"},
		"tags":    {"a,b"},
	})
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Contains(t, body, "title is required")
	assert.Contains(t, body, "kept content", "the form keeps what was typed")
	assert.True(t, strings.Contains(body, "a, b"))
	assert.Empty(t, userNotes(t, st, "alice"))
}

func TestDeleteCategoryOverHTTP(t *testing.T) {
	srv, st := newTestServer(t)
	client := newClient(t)

	register(t, client, srv, "alice", "pw1")

	user, err := st.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	categories, err := st.ListCategories(context.Background(), user.ID)
	require.NoError(t, err)
	categoryID := categories[0].ID

	resp, err := client.PostForm(fmt.Sprintf("%s/category/%d/delete", srv.URL, categoryID), url.Values{})
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, "/categories", resp.Request.URL.Path)

	remaining, err := st.ListCategories(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}
