package store

import (
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func TestPaidQueueRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewPaidQueueStore(fs, "PaidMusicPlayList.txt")

	if err := s.Write([]int{5, 7, 2}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got := s.Read()
	if !reflect.DeepEqual(got, []int{5, 7, 2}) {
		t.Errorf("Read = %v, want [5 7 2]", got)
	}
}

func TestPaidQueueMissingFileReadsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewPaidQueueStore(fs, "PaidMusicPlayList.txt")

	got := s.Read()
	if len(got) != 0 {
		t.Errorf("Read = %v, want empty", got)
	}
}

func TestPaidQueueMalformedFileReadsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated JSON", `[1, 2,`},
		{"wrong shape", `{"a": 1}`},
		{"not JSON at all", `hello`},
		{"empty file", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if err := afero.WriteFile(fs, "PaidMusicPlayList.txt", []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			s := NewPaidQueueStore(fs, "PaidMusicPlayList.txt")
			if got := s.Read(); len(got) != 0 {
				t.Errorf("Read = %v, want empty", got)
			}
		})
	}
}

func TestPaidQueueDiscardsNonIntegerEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "PaidMusicPlayList.txt", []byte(`[1, 2.5, 3]`), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewPaidQueueStore(fs, "PaidMusicPlayList.txt")
	got := s.Read()
	if !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("Read = %v, want [1 3]", got)
	}
}

func TestPaidQueueWriteNilPersistsEmptyList(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewPaidQueueStore(fs, "PaidMusicPlayList.txt")

	if err := s.Write(nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := afero.ReadFile(fs, "PaidMusicPlayList.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("file content = %q, want %q", data, "[]")
	}
}

func TestPaidQueueEnsure(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewPaidQueueStore(fs, "PaidMusicPlayList.txt")

	if err := s.Ensure(); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if got := s.Read(); len(got) != 0 {
		t.Errorf("Read after Ensure = %v, want empty", got)
	}

	// Ensure must not clobber existing content.
	if err := s.Write([]int{9}); err != nil {
		t.Fatal(err)
	}
	if err := s.Ensure(); err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}
	if got := s.Read(); !reflect.DeepEqual(got, []int{9}) {
		t.Errorf("Read after second Ensure = %v, want [9]", got)
	}
}

func TestAtomicWriteLeavesNoTempFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewPaidQueueStore(fs, "PaidMusicPlayList.txt")

	if err := s.Write([]int{1}); err != nil {
		t.Fatal(err)
	}
	if err := s.Write([]int{1, 2}); err != nil {
		t.Fatal(err)
	}

	if _, err := fs.Stat("PaidMusicPlayList.txt.tmp"); err == nil {
		t.Error("temp file left behind after successful writes")
	}
}

func TestAtomicWriteReplacesWholeContent(t *testing.T) {
	// Overwriting a long queue with a short one must never leave a suffix of
	// the old content behind, which is the whole point of the temp+rename.
	fs := afero.NewMemMapFs()
	s := NewPaidQueueStore(fs, "PaidMusicPlayList.txt")

	long := make([]int, 100)
	for i := range long {
		long[i] = i
	}
	if err := s.Write(long); err != nil {
		t.Fatal(err)
	}
	if err := s.Write([]int{1}); err != nil {
		t.Fatal(err)
	}

	got := s.Read()
	if !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("Read = %v, want [1]", got)
	}
}

func TestMarkerRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := NewMarkerStore(fs, "CurrentSongPlaying.txt")

	if err := m.Write("/music/song.mp3"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := m.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != "/music/song.mp3" {
		t.Errorf("Read = %q, want %q", got, "/music/song.mp3")
	}
}

func TestMarkerMissingReadsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := NewMarkerStore(fs, "CurrentSongPlaying.txt")

	got, err := m.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != "" {
		t.Errorf("Read = %q, want empty", got)
	}
}

func TestWriteJSONReadJSONRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()

	if err := WriteJSON(fs, "check.txt", 42); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := ReadJSON(fs, "check.txt", &count); err != nil {
		t.Fatal(err)
	}
	if count != 42 {
		t.Errorf("count = %d, want 42", count)
	}
}
