package main

import (
	"bytes"
	"testing"

	"github.com/relaycrm/outreach-api/internal/domain/model"
	"github.com/stretchr/testify/require"
)

func TestPrintJobStats(t *testing.T) {
	var buf bytes.Buffer

	err := printJobStats(&buf, "ws-1", statRows(&model.JobStats{
		Pending: 3,
		Running: 1,
		Success: 12,
		Failed:  2,
	}))
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, `workspace "ws-1"`)
	require.Contains(t, out, "pending")
	require.Contains(t, out, "total")
	require.Contains(t, out, "18")
}

func TestParseJobStatsFlagsRequiresWorkspace(t *testing.T) {
	_, err := parseJobStatsFlags(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "--workspace is required")
}

func TestIsLikelyRemoteHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{host: "localhost", want: false},
		{host: "127.0.0.1", want: false},
		{host: "::1", want: false},
		{host: "db.internal.local", want: false},
		{host: "", want: false},
		{host: "10.1.2.3", want: true},
		{host: "db.prod.example.com", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			require.Equal(t, tt.want, isLikelyRemoteHost(tt.host))
		})
	}
}
