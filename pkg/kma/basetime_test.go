package kma

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBaseTimeAt(t *testing.T) {
	cases := []struct {
		name     string
		now      time.Time
		expected BaseTime
	}{
		{"half past in kst", time.Date(2026, 10, 18, 10, 30, 0, 0, kst), BaseTime{Date: "20261018", Time: "0900"}},
		{"ten past in kst", time.Date(2026, 10, 18, 10, 10, 0, 0, kst), BaseTime{Date: "20261018", Time: "0900"}},
		{"quarter to in kst", time.Date(2026, 10, 18, 10, 50, 0, 0, kst), BaseTime{Date: "20261018", Time: "1000"}},
		{"utc server", time.Date(2026, 10, 18, 1, 50, 0, 0, time.UTC), BaseTime{Date: "20261018", Time: "1000"}},
		{"crosses midnight", time.Date(2026, 10, 18, 0, 20, 0, 0, kst), BaseTime{Date: "20261017", Time: "2300"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, BaseTimeAt(tc.now))
		})
	}
}

func TestPrecipLabel(t *testing.T) {
	require.Equal(t, "없음", PrecipLabel(0))
	require.Equal(t, "비", PrecipLabel(1))
	require.Equal(t, "눈날림", PrecipLabel(7))
	require.Equal(t, "알 수 없음", PrecipLabel(4))
}
