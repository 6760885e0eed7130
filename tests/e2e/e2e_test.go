//go:build e2e

// Package e2e exercises a running server end to end: register, sign
// in, and walk a post through its full lifecycle over real HTTP.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"
)

type page struct {
	Component string         `json:"component"`
	Props     map[string]any `json:"props"`
	URL       string         `json:"url"`
	Version   string         `json:"version"`
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("QUILLPOST_BASE_URL", "http://localhost:8080")

	client := newClient(t)
	email := fmt.Sprintf("e2e-%d@example.com", time.Now().UnixNano())
	password := "correct horse battery staple"

	// Register signs the new account in and lands on the posts page.
	resp := postForm(t, client, baseURL+"/register", url.Values{
		"name":     {"E2E Tester"},
		"email":    {email},
		"password": {password},
	})
	assertRedirect(t, resp, "/posts")

	// Fresh account, empty list.
	index := getPage(t, client, baseURL+"/posts")
	if index.Component != "Posts/Index" {
		t.Fatalf("expected Posts/Index, got %s", index.Component)
	}
	if n := len(propSlice(t, index, "posts")); n != 0 {
		t.Fatalf("expected empty post list, got %d", n)
	}

	// Validation failure persists nothing.
	resp = postJSON(t, client, http.MethodPost, baseURL+"/posts", `{"title":"","body":""}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty form, got %d", resp.StatusCode)
	}
	drain(resp)

	// Create a post and observe the one-shot flash.
	resp = postJSON(t, client, http.MethodPost, baseURL+"/posts", `{"title":"Hello","body":"First body"}`)
	assertRedirect(t, resp, "/posts")

	index = getPage(t, client, baseURL+"/posts")
	posts := propSlice(t, index, "posts")
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	postID, _ := posts[0].(map[string]any)["id"].(string)
	if postID == "" {
		t.Fatal("post id missing from props")
	}
	if msg := flashSuccess(index); msg != "Post created." {
		t.Errorf("expected creation flash, got %q", msg)
	}

	// The flash is gone on the next render.
	index = getPage(t, client, baseURL+"/posts")
	if msg := flashSuccess(index); msg != "" {
		t.Errorf("flash must render exactly once, got %q", msg)
	}

	// Update through the edit flow.
	edit := getPage(t, client, baseURL+"/posts/"+postID+"/edit")
	if edit.Component != "Posts/Edit" {
		t.Fatalf("expected Posts/Edit, got %s", edit.Component)
	}

	resp = postJSON(t, client, http.MethodPut, baseURL+"/posts/"+postID, `{"title":"Hello v2","body":"Second body"}`)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 after PUT, got %d", resp.StatusCode)
	}
	drain(resp)

	show := getPage(t, client, baseURL+"/posts/"+postID)
	if title, _ := propMap(t, show, "post")["title"].(string); title != "Hello v2" {
		t.Errorf("expected updated title, got %q", title)
	}

	// Delete is permanent; a second attempt is a 404.
	resp = postJSON(t, client, http.MethodDelete, baseURL+"/posts/"+postID, "")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 after DELETE, got %d", resp.StatusCode)
	}
	drain(resp)

	resp = postJSON(t, client, http.MethodDelete, baseURL+"/posts/"+postID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on repeat delete, got %d", resp.StatusCode)
	}
	drain(resp)

	// Logout ends the session; post pages now bounce to login.
	resp = postForm(t, client, baseURL+"/logout", url.Values{})
	assertRedirect(t, resp, "/login")

	resp = get(t, client, baseURL+"/posts")
	assertRedirect(t, resp, "/login")
}

func TestE2ELoginRejectsBadPassword(t *testing.T) {
	baseURL := envOrDefault("QUILLPOST_BASE_URL", "http://localhost:8080")

	client := newClient(t)
	email := fmt.Sprintf("e2e-login-%d@example.com", time.Now().UnixNano())

	resp := postForm(t, client, baseURL+"/register", url.Values{
		"name":     {"E2E Tester"},
		"email":    {email},
		"password": {"correct horse battery staple"},
	})
	assertRedirect(t, resp, "/posts")

	resp = postForm(t, client, baseURL+"/logout", url.Values{})
	assertRedirect(t, resp, "/login")

	resp = postJSON(t, client, http.MethodPost, baseURL+"/login",
		fmt.Sprintf(`{"email":%q,"password":"wrong password here"}`, email))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad password, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !bytes.Contains(body, []byte("These credentials do not match our records.")) {
		t.Errorf("expected generic credentials message, got %s", body)
	}
}

// ============================================================================
// Helpers
// ============================================================================

func newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, client *http.Client, target string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("X-Inertia", "true")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	return resp
}

func getPage(t *testing.T, client *http.Client, target string) page {
	t.Helper()

	resp := get(t, client, target)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: expected 200, got %d", target, resp.StatusCode)
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode page object: %v", err)
	}
	return p
}

func postForm(t *testing.T, client *http.Client, target string, values url.Values) *http.Response {
	t.Helper()

	resp, err := client.PostForm(target, values)
	if err != nil {
		t.Fatalf("POST %s: %v", target, err)
	}
	return resp
}

func postJSON(t *testing.T, client *http.Client, method, target, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, target, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Inertia", "true")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return resp
}

func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusFound && resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func propSlice(t *testing.T, p page, key string) []any {
	t.Helper()
	value, ok := p.Props[key]
	if !ok || value == nil {
		return nil
	}
	slice, ok := value.([]any)
	if !ok {
		t.Fatalf("prop %s: expected list, got %T", key, value)
	}
	return slice
}

func propMap(t *testing.T, p page, key string) map[string]any {
	t.Helper()
	m, ok := p.Props[key].(map[string]any)
	if !ok {
		t.Fatalf("prop %s: expected object, got %T", key, p.Props[key])
	}
	return m
}

func flashSuccess(p page) string {
	flash, ok := p.Props["flash"].(map[string]any)
	if !ok {
		return ""
	}
	msg, _ := flash["success"].(string)
	return msg
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
