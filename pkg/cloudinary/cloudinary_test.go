package cloudinary

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBuildPublicID(t *testing.T) {
	now := time.Unix(1700000000, 0)

	require.Equal(t, "observation-5f0c3c1e-1700000000000000000", BuildPublicID("observation-5f0c3c1e.jpg", now))
	require.Equal(t, "observation-1700000000000000000", BuildPublicID("구름.png", now))
	require.Equal(t, "a-b-1700000000000000000", BuildPublicID("a b.webp", now))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)
	require.False(t, Config{APIKey: "k"}.Enabled())
	require.True(t, Config{CloudName: "c", APIKey: "k", APISecret: "s"}.Enabled())
}
