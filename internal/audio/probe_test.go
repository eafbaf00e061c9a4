package audio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPathProber_Exists(t *testing.T) {
	p := NewPathProber()
	p.lookPath = func(name string) (string, error) {
		if name == "paplay" {
			return "/usr/bin/paplay", nil
		}
		return "", errors.New("not found")
	}

	assert.True(t, p.Exists(context.Background(), "paplay"))
	assert.False(t, p.Exists(context.Background(), "afplay"))
	assert.False(t, p.Exists(context.Background(), ""))
}

func TestPathProber_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	p := NewPathProber()
	p.SetTimeout(20 * time.Millisecond)
	p.lookPath = func(string) (string, error) {
		<-release
		return "/bin/slow", nil
	}

	start := time.Now()
	assert.False(t, p.Exists(context.Background(), "slow"))
	assert.Less(t, time.Since(start), time.Second)
}

func TestPathProber_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPathProber()
	p.lookPath = func(string) (string, error) {
		time.Sleep(50 * time.Millisecond)
		return "/bin/x", nil
	}
	assert.False(t, p.Exists(ctx, "x"))
}

func TestPathProber_RealLookup(t *testing.T) {
	assert.False(t, NewPathProber().Exists(context.Background(), "ocnotify-definitely-not-a-command"))
}
