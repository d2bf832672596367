package targets

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/large-farva/swath-planner/internal/schedule"
)

func TestDefaults(t *testing.T) {
	if len(Defaults) != 48 {
		t.Fatalf("len(Defaults) = %d, want 48", len(Defaults))
	}
	for i, tgt := range Defaults {
		if err := Validate(tgt); err != nil {
			t.Errorf("Defaults[%d] %s: %v", i, tgt.Name, err)
		}
	}

	list := DefaultList()
	list[0].Lat = 0
	if Defaults[0].Lat == 0 {
		t.Fatal("DefaultList shares storage with Defaults")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    []schedule.Target
		wantErr error
	}{
		{
			name: "bare list",
			data: "- {name: Canberra, lat: -35.28, lon: 149.13}\n- {lat: 1.5, lon: 2.5}\n",
			want: []schedule.Target{{Name: "Canberra", Lat: -35.28, Lon: 149.13}, {Lat: 1.5, Lon: 2.5}},
		},
		{
			name: "targets document",
			data: "targets:\n  - name: Perth\n    lat: -31.95\n    lon: 115.86\n",
			want: []schedule.Target{{Name: "Perth", Lat: -31.95, Lon: 115.86}},
		},
		{
			name:    "latitude out of range",
			data:    "- {lat: 91, lon: 0}\n",
			wantErr: ErrOutOfRange,
		},
		{
			name:    "longitude out of range",
			data:    "targets:\n  - {lat: 0, lon: -181}\n",
			wantErr: ErrOutOfRange,
		},
		{
			name:    "latitude not a number",
			data:    "- {lat: .nan, lon: 0}\n",
			wantErr: ErrOutOfRange,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse([]byte(tc.data))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d targets, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("target %d = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("targets: [unterminated")); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	if err := os.WriteFile(path, []byte("- {name: Tokyo, lat: 35.6895, lon: 139.6917}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Tokyo" {
		t.Fatalf("Load = %+v", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadFix(t *testing.T) {
	stream := strings.Join([]string{
		`{"class":"VERSION","release":"3.25"}`,
		`not json`,
		`{"class":"TPV","mode":1}`,
		`{"class":"TPV","mode":3,"lat":-35.28,"lon":149.13}`,
	}, "\n")

	got, err := readFix(strings.NewReader(stream))
	if err != nil {
		t.Fatalf("readFix: %v", err)
	}
	if got.Lat != -35.28 || got.Lon != 149.13 {
		t.Fatalf("fix = %+v", got)
	}

	if _, err := readFix(strings.NewReader(`{"class":"TPV","mode":1}`)); err == nil {
		t.Fatal("expected error when no fix is reported")
	}
}

func TestFromGPSD(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 128)
		_, _ = conn.Read(buf)
		_, _ = conn.Write([]byte(`{"class":"TPV","mode":2,"lat":51.5,"lon":-0.12}` + "\n"))
	}()

	got, err := FromGPSD(ln.Addr().String(), 2*time.Second)
	if err != nil {
		t.Fatalf("FromGPSD: %v", err)
	}
	if got.Lat != 51.5 || got.Lon != -0.12 {
		t.Fatalf("FromGPSD = %+v", got)
	}
}
