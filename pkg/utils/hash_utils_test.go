package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong-pass", hash))
	assert.False(t, CheckPasswordHash("s3cret-pass", "not-a-bcrypt-hash"))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	first, err := HashPassword("same-password")
	require.NoError(t, err)
	second, err := HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, CheckPasswordHash("same-password", first))
	assert.True(t, CheckPasswordHash("same-password", second))
}

func TestAttachmentFileName(t *testing.T) {
	name := AttachmentFileName("breaker-photo.JPG")
	assert.True(t, strings.HasPrefix(name, "attachment-"))
	assert.True(t, strings.HasSuffix(name, ".JPG"))

	// 无扩展名也能生成合法文件名
	bare := AttachmentFileName("report")
	assert.True(t, strings.HasPrefix(bare, "attachment-"))
	assert.NotContains(t, bare, "/")
}
