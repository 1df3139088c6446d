package twitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsername(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://twitter.com/alice/status/123", "alice"},
		{"https://twitter.com/Some_User42/status/9", "Some_User42"},
		{"http://mobile.twitter.com/bob", "bob"},
		{"https://twitter.com/account/suspended", SuspendedUsername},
		{"https://x.com/carol/status/77", "carol"},
		{"https://mobile.x.com/dave", "dave"},
		{"https://example.com/alice/status/1", ""},
		{"https://netflix.com/alice", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Username(tt.url))
		})
	}
}

func TestIsSuspended(t *testing.T) {
	const sentinel = "https://twitter.com/account/suspended"
	assert.True(t, IsSuspended(sentinel, sentinel))
	assert.True(t, IsSuspended(sentinel+"/", sentinel))
	assert.False(t, IsSuspended("https://twitter.com/alice/status/1", sentinel))
}
