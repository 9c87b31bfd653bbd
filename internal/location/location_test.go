/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package location

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLocationFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lat_long.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write location file: %v", err)
	}
	return path
}

func TestReadFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Location
		wantErr bool
	}{
		{
			name:    "valid pair",
			content: "51.4934\n-0.0098\n",
			want:    Location{Lat: 51.4934, Long: -0.0098},
		},
		{
			name:    "whitespace tolerated",
			content: "  51.5 \n 0.12 \n",
			want:    Location{Lat: 51.5, Long: 0.12},
		},
		{
			name:    "missing longitude",
			content: "51.4934\n",
			wantErr: true,
		},
		{
			name:    "empty file",
			content: "",
			wantErr: true,
		},
		{
			name:    "non-numeric latitude",
			content: "fifty-one\n-0.0098\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeLocationFile(t, tt.content)
			got, err := ReadFile(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ReadFile = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
