package relay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/muurk/govee-panel/internal/color"
)

const mockRegistryResponse = `[
	{"device":"A","deviceName":"Desk","sku":"H6008","type":"devices.types.light"},
	{"device":"B","deviceName":"Heater","sku":"H5080","type":"devices.types.socket"},
	{"device":"C","deviceName":"Fan","sku":"H7100","type":"devices.types.fan"}
]`

// recorder captures requests seen by a test server
type recorder struct {
	mu       sync.Mutex
	paths    []string
	keys     []string
	ids      []string
	handlers map[string]func(w http.ResponseWriter)
}

func newRecorder() *recorder {
	return &recorder{handlers: make(map[string]func(w http.ResponseWriter))}
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec.mu.Lock()
	rec.paths = append(rec.paths, r.Method+" "+r.URL.Path)
	rec.keys = append(rec.keys, r.Header.Get(AuthHeader))
	rec.ids = append(rec.ids, r.Header.Get(RequestIDHeader))
	h := rec.handlers[r.URL.Path]
	rec.mu.Unlock()

	if h == nil {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
		return
	}
	h(w)
}

func (rec *recorder) respond(path string, status int, body string) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.handlers[path] = func(w http.ResponseWriter) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func newTestClient(t *testing.T, rec *recorder, key string) *Client {
	t.Helper()
	server := httptest.NewServer(rec)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/api/govee", StaticKey(key))
}

func TestNewClient(t *testing.T) {
	client := NewClient("https://relay.example.com/api/govee/", nil)

	if client.BaseURL != "https://relay.example.com/api/govee" {
		t.Errorf("BaseURL = %s, want trailing slash trimmed", client.BaseURL)
	}
	if client.Keys == nil || client.Keys.Key() != "" {
		t.Error("nil KeySource should default to an empty key")
	}
	if client.HTTPClient == nil || client.HTTPClient.Timeout != DefaultTimeout {
		t.Errorf("HTTPClient timeout = %v, want %v", client.HTTPClient.Timeout, DefaultTimeout)
	}
	if client.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", client.MaxRetries)
	}
}

func TestSetTimeoutAndRetry(t *testing.T) {
	client := NewClient("https://relay.example.com", nil)
	client.SetTimeout(3 * time.Second)
	client.SetRetry(4, time.Second)

	if client.HTTPClient.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", client.HTTPClient.Timeout)
	}
	if client.MaxRetries != 4 || client.RetryDelay != time.Second {
		t.Errorf("retry = %d/%v, want 4/1s", client.MaxRetries, client.RetryDelay)
	}
}

func TestListDevices(t *testing.T) {
	rec := newRecorder()
	rec.respond("/api/govee/devices", http.StatusOK, mockRegistryResponse)
	client := newTestClient(t, rec, "k-1")

	devices, err := client.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}

	if len(devices) != 3 {
		t.Fatalf("len(devices) = %d, want 3", len(devices))
	}

	want := []struct {
		id   string
		name string
		typ  DeviceType
	}{
		{"A", "Desk", TypeLight},
		{"B", "Heater", TypeSocket},
		{"C", "Fan", TypeOther},
	}
	for i, w := range want {
		if devices[i].ID != w.id || devices[i].Name != w.name || devices[i].Type != w.typ {
			t.Errorf("devices[%d] = %+v, want id=%s name=%s type=%s", i, devices[i], w.id, w.name, w.typ)
		}
	}

	if rec.paths[0] != "GET /api/govee/devices" {
		t.Errorf("request = %s, want GET /api/govee/devices", rec.paths[0])
	}
	if rec.keys[0] != "k-1" {
		t.Errorf("%s = %q, want k-1", AuthHeader, rec.keys[0])
	}
	if rec.ids[0] == "" {
		t.Errorf("%s header missing", RequestIDHeader)
	}
}

func TestListDevices_Empty(t *testing.T) {
	rec := newRecorder()
	rec.respond("/api/govee/devices", http.StatusOK, `[]`)
	client := newTestClient(t, rec, "k")

	devices, err := client.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
	if devices == nil || len(devices) != 0 {
		t.Errorf("devices = %v, want empty non-nil slice", devices)
	}
}

func TestListDevices_ParseError(t *testing.T) {
	rec := newRecorder()
	rec.respond("/api/govee/devices", http.StatusOK, `<html>nope</html>`)
	client := newTestClient(t, rec, "k")

	_, err := client.ListDevices(context.Background())
	if !IsParseError(err) {
		t.Fatalf("error = %v, want parse error", err)
	}

	var re *RelayError
	if errors.As(err, &re) && re.Path != "/devices" {
		t.Errorf("Path = %q, want /devices", re.Path)
	}
}

func TestGetState(t *testing.T) {
	rec := newRecorder()
	rec.respond("/api/govee/A/state", http.StatusOK, `{"MACAddress":"AA:BB","On":true,"Color":"rgb(255,0,0)"}`)
	client := newTestClient(t, rec, "k")

	state, err := client.GetState(context.Background(), "A")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}

	if state.MACAddress != "AA:BB" || !state.On || state.Color != "rgb(255,0,0)" {
		t.Errorf("state = %+v", state)
	}
}

func TestGetState_SocketHasNoColor(t *testing.T) {
	rec := newRecorder()
	rec.respond("/api/govee/B/state", http.StatusOK, `{"MACAddress":"CC:DD","On":false}`)
	client := newTestClient(t, rec, "k")

	state, err := client.GetState(context.Background(), "B")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if state.On || state.Color != "" {
		t.Errorf("state = %+v, want off with no color", state)
	}
}

func TestSetPower(t *testing.T) {
	tests := []struct {
		on   bool
		want string
	}{
		{true, "GET /api/govee/AA:BB/power/on"},
		{false, "GET /api/govee/AA:BB/power/off"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			rec := newRecorder()
			client := newTestClient(t, rec, "secret")

			if err := client.SetPower(context.Background(), "AA:BB", tt.on); err != nil {
				t.Fatalf("SetPower() error = %v", err)
			}
			if len(rec.paths) != 1 {
				t.Fatalf("requests = %d, want exactly 1", len(rec.paths))
			}
			if rec.paths[0] != tt.want {
				t.Errorf("request = %s, want %s", rec.paths[0], tt.want)
			}
			if rec.keys[0] != "secret" {
				t.Errorf("key = %q, want secret", rec.keys[0])
			}
		})
	}
}

func TestSetColor(t *testing.T) {
	rec := newRecorder()
	client := newTestClient(t, rec, "k")

	err := client.SetColor(context.Background(), "AA:BB", color.RGB{R: 0, G: 128, B: 255})
	if err != nil {
		t.Fatalf("SetColor() error = %v", err)
	}
	if rec.paths[0] != "GET /api/govee/AA:BB/color/0/128/255" {
		t.Errorf("request = %s", rec.paths[0])
	}
}

func TestCommands_IgnoreResponseBody(t *testing.T) {
	rec := newRecorder()
	rec.respond("/api/govee/AA:BB/power/on", http.StatusOK, `not json at all`)
	client := newTestClient(t, rec, "k")

	if err := client.SetPower(context.Background(), "AA:BB", true); err != nil {
		t.Errorf("SetPower() error = %v, want body ignored", err)
	}
}

func TestKeyReadPerRequest(t *testing.T) {
	rec := newRecorder()
	server := httptest.NewServer(rec)
	defer server.Close()

	key := "first"
	client := NewClient(server.URL, KeyFunc(func() string { return key }))

	_ = client.Ping(context.Background())
	key = "second"
	_ = client.Ping(context.Background())

	if rec.keys[0] != "first" || rec.keys[1] != "second" {
		t.Errorf("keys = %v, want [first second]", rec.keys)
	}
	if rec.ids[0] == rec.ids[1] {
		t.Error("request ids should differ per request")
	}
}

func TestAuthErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		status  int
		missing bool
	}{
		{"rejected key", "bad", http.StatusUnauthorized, false},
		{"forbidden key", "bad", http.StatusForbidden, false},
		{"empty key", "", http.StatusUnauthorized, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			rec.respond("/api/govee/devices", tt.status, "")
			client := newTestClient(t, rec, tt.key)

			_, err := client.ListDevices(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if IsMissingCredential(err) != tt.missing {
				t.Errorf("IsMissingCredential() = %v, want %v", IsMissingCredential(err), tt.missing)
			}
			if IsAuthError(err) == tt.missing {
				t.Errorf("IsAuthError() = %v, want %v", IsAuthError(err), !tt.missing)
			}
		})
	}
}

func TestHTTPError(t *testing.T) {
	rec := newRecorder()
	rec.respond("/api/govee/A/state", http.StatusNotFound, "no such device")
	client := newTestClient(t, rec, "k")

	_, err := client.GetState(context.Background(), "A")
	if !IsHTTPError(err) {
		t.Fatalf("error = %v, want HTTP error", err)
	}

	var re *RelayError
	if !errors.As(err, &re) {
		t.Fatal("expected *RelayError")
	}
	if re.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", re.StatusCode)
	}
	if re.Retryable {
		t.Error("404 should not be retryable")
	}
}

func TestGetState_Retries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"MACAddress":"AA","On":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, StaticKey("k"))
	client.SetRetry(3, time.Millisecond)

	state, err := client.GetState(context.Background(), "A")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if !state.On {
		t.Error("state.On = false, want true")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestSetPower_NeverRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, StaticKey("k"))
	client.SetRetry(5, time.Millisecond)

	if err := client.SetPower(context.Background(), "AA", true); err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL, StaticKey("k"))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.ListDevices(ctx)
	if !IsNetworkError(err) {
		t.Errorf("error = %v, want network error", err)
	}
}

func TestConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(url, StaticKey("k"))
	_, err := client.GetState(context.Background(), "A")
	if !IsNetworkError(err) {
		t.Errorf("error = %v, want network error", err)
	}
}
