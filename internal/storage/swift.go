package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
)

// SwiftBackend talks to an OpenStack Swift container over its plain REST
// API (Keystone token auth + GET/PUT object), wired per spec.md §6's
// ROK4_SWIFT_AUTHURL/USER/PASSWD. Swift's object API is a small enough
// REST surface (token exchange, ranged GET, PUT) that net/http directly
// is used instead of pulling in a dedicated client library (see
// DESIGN.md).
type SwiftBackend struct {
	AuthURL  string
	User     string
	Password string
	Account  string
	Client   *http.Client

	mu        sync.Mutex
	token     string
	storageURL string
}

// NewSwiftBackend constructs a backend; authentication happens lazily on
// first use and is cached until a request reports the token expired.
func NewSwiftBackend(authURL, user, password, account string) *SwiftBackend {
	return &SwiftBackend{
		AuthURL:  authURL,
		User:     user,
		Password: password,
		Account:  account,
		Client:   &http.Client{},
	}
}

func (b *SwiftBackend) Kind() string { return "swift" }

func (b *SwiftBackend) authenticate(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.AuthURL, nil)
	if err != nil {
		return fmt.Errorf("swift backend: building auth request: %w", err)
	}
	req.Header.Set("X-Auth-User", b.User)
	req.Header.Set("X-Auth-Key", b.Password)
	resp, err := b.Client.Do(req)
	if err != nil {
		return fmt.Errorf("swift backend: authenticating: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("swift backend: auth failed with status %d", resp.StatusCode)
	}
	b.token = resp.Header.Get("X-Auth-Token")
	b.storageURL = resp.Header.Get("X-Storage-Url")
	if b.token == "" || b.storageURL == "" {
		return fmt.Errorf("swift backend: auth response missing token or storage URL")
	}
	return nil
}

func (b *SwiftBackend) ensureAuth(ctx context.Context) (token, storageURL string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.token == "" {
		if err := b.authenticate(ctx); err != nil {
			return "", "", err
		}
	}
	return b.token, b.storageURL, nil
}

func (b *SwiftBackend) objectURL(storageURL, object string) string {
	return storageURL + "/" + b.Account + "/" + object
}

func (b *SwiftBackend) Read(ctx context.Context, object string, offset, length int64) ([]byte, error) {
	token, storageURL, err := b.ensureAuth(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.objectURL(storageURL, object), nil)
	if err != nil {
		return nil, fmt.Errorf("swift backend: building request: %w", err)
	}
	req.Header.Set("X-Auth-Token", token)
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))
	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("swift backend: reading %s: %w", object, err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusUnauthorized:
		b.mu.Lock()
		b.token = ""
		b.mu.Unlock()
		return nil, fmt.Errorf("swift backend: token rejected reading %s", object)
	case http.StatusOK, http.StatusPartialContent:
	default:
		return nil, fmt.Errorf("swift backend: unexpected status %d reading %s", resp.StatusCode, object)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("swift backend: reading body of %s: %w", object, err)
	}
	if resp.StatusCode == http.StatusOK && int64(len(data)) >= offset+length {
		data = data[offset:] // Range was ignored and the whole object sent
	}
	if int64(len(data)) < length {
		return nil, ErrOutOfRange
	}
	return data[:length], nil
}

func (b *SwiftBackend) Write(ctx context.Context, object string, offset int64, data []byte) error {
	if offset != 0 {
		return fmt.Errorf("swift backend: partial object writes are not supported")
	}
	token, storageURL, err := b.ensureAuth(ctx)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.objectURL(storageURL, object), newByteReader(data))
	if err != nil {
		return fmt.Errorf("swift backend: building request: %w", err)
	}
	req.Header.Set("X-Auth-Token", token)
	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Length", strconv.Itoa(len(data)))
	resp, err := b.Client.Do(req)
	if err != nil {
		return fmt.Errorf("swift backend: writing %s: %w", object, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		b.mu.Lock()
		b.token = ""
		b.mu.Unlock()
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("swift backend: unexpected status %d writing %s", resp.StatusCode, object)
	}
	return nil
}
