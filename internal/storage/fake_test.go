package storage

import (
	"context"
	"errors"
	"sync"
)

type putCall struct {
	Key         string
	ContentType string
	Data        []byte
}

type fakeStore struct {
	mu        sync.Mutex
	puts      []putCall
	deletes   []string
	putErr    error
	deleteErr error
}

func (f *fakeStore) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts = append(f.puts, putCall{Key: key, ContentType: contentType, Data: append([]byte(nil), data...)})
	return "https://cdn.example.com/" + key, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, key)
	return f.deleteErr
}

var errOutage = errors.New("store unavailable")
