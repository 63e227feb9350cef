package relay_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vaultferry/internal/relay"
)

func startRelay(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(relay.New(relay.Config{}))
	t.Cleanup(srv.Close)
	return srv
}

func publish(t *testing.T, srv *httptest.Server, ext, name, body string) uint64 {
	t.Helper()
	u := srv.URL + "/v1/box/" + ext
	if name != "" {
		u += "?name=" + name
	}
	resp, err := http.Post(u, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST %s: %s", u, resp.Status)
	}
	var out struct {
		Name string `json:"name"`
		Seq  uint64 `json:"seq"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding publish response: %v", err)
	}
	if name != "" && out.Name != name {
		t.Fatalf("published name = %q, want %q", out.Name, name)
	}
	return out.Seq
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestPublishAndLatest(t *testing.T) {
	srv := startRelay(t)

	publish(t, srv, "openbox", "announce-1", `{"publicKey":"AAAA"}`)
	seq := publish(t, srv, "openbox", "announce-2", `{"publicKey":"BBBB"}`)
	if seq != 2 {
		t.Fatalf("second publish seq = %d, want 2", seq)
	}

	resp := get(t, srv.URL+"/v1/box/openbox/latest")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("latest: %s", resp.Status)
	}
	if got := resp.Header.Get(relay.NameHeader); got != "announce-2" {
		t.Fatalf("name header = %q, want announce-2", got)
	}
	if got := resp.Header.Get(relay.SeqHeader); got != "2" {
		t.Fatalf("seq header = %q, want 2", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"publicKey":"BBBB"}` {
		t.Fatalf("latest body = %s", body)
	}
}

func TestLatest_Empty(t *testing.T) {
	srv := startRelay(t)
	resp := get(t, srv.URL+"/v1/box/sealedbox/latest")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("latest on empty box: %s", resp.Status)
	}
}

func TestNext_ReturnsOldestAfterCursor(t *testing.T) {
	srv := startRelay(t)
	publish(t, srv, "sealedbox", "box-1", `{"n":1}`)
	publish(t, srv, "sealedbox", "box-2", `{"n":2}`)

	resp := get(t, srv.URL+"/v1/box/sealedbox/next")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("next: %s", resp.Status)
	}
	if got := resp.Header.Get(relay.NameHeader); got != "box-1" {
		t.Fatalf("name header = %q, want box-1", got)
	}

	resp = get(t, srv.URL+"/v1/box/sealedbox/next?after=1")
	if got := resp.Header.Get(relay.NameHeader); got != "box-2" {
		t.Fatalf("after=1 name header = %q, want box-2", got)
	}
}

func TestNext_NoContentOnTimeout(t *testing.T) {
	srv := startRelay(t)
	resp := get(t, srv.URL+"/v1/box/openbox/next?wait=50ms")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("next on empty box: %s", resp.Status)
	}
}

func TestNext_WakesOnPublish(t *testing.T) {
	srv := startRelay(t)

	type result struct {
		status int
		name   string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := http.Get(srv.URL + "/v1/box/openbox/next?wait=10s")
		if err != nil {
			done <- result{err: err}
			return
		}
		defer resp.Body.Close()
		done <- result{status: resp.StatusCode, name: resp.Header.Get(relay.NameHeader)}
	}()

	time.Sleep(50 * time.Millisecond)
	publish(t, srv, "openbox", "announce-1", `{"publicKey":"AAAA"}`)

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("next: %v", r.err)
		}
		if r.status != http.StatusOK || r.name != "announce-1" {
			t.Fatalf("next woke with status %d name %q", r.status, r.name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("long poll never woke")
	}
}

func TestNext_OtherKindDoesNotSatisfyWait(t *testing.T) {
	srv := startRelay(t)
	publish(t, srv, "sealedbox", "box-1", `{"n":1}`)

	resp := get(t, srv.URL+"/v1/box/openbox/next?wait=50ms")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("openbox next: %s", resp.Status)
	}
}

func TestUnknownKind(t *testing.T) {
	srv := startRelay(t)

	resp, err := http.Post(srv.URL+"/v1/box/zip", "application/json", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("publish unknown kind: %s", resp.Status)
	}

	if resp := get(t, srv.URL+"/v1/box/zip/latest"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("latest unknown kind: %s", resp.Status)
	}
}

func TestPublish_RejectsEmptyBody(t *testing.T) {
	srv := startRelay(t)
	resp, err := http.Post(srv.URL+"/v1/box/openbox", "application/json", strings.NewReader(""))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty publish: %s", resp.Status)
	}
}

func TestHealthz(t *testing.T) {
	srv := startRelay(t)
	resp := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: %s", resp.Status)
	}
}
