package container

import (
	"strings"
	"testing"
)

func TestForEachLineSplitsLines(t *testing.T) {
	var lines []string
	err := ForEachLine(strings.NewReader("one\ntwo\r\n\nthree"), func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"one", "two", "", "three"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %q, want %d", len(lines), lines, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestForEachLineDrainsOverlongLines(t *testing.T) {
	// Two buffer-lengths of output with no newline must still be read to
	// EOF, in chunks, rather than aborting the stream.
	long := strings.Repeat("a", 200*1024)
	input := long + "\ntrailing\n"

	var total int
	var count int
	err := ForEachLine(strings.NewReader(input), func(line string) {
		total += len(line)
		count++
	})
	if err != nil {
		t.Fatal(err)
	}
	if count < 3 {
		t.Errorf("got %d callbacks, want the long line chunked into several", count)
	}
	if want := len(long) + len("trailing"); total != want {
		t.Errorf("delivered %d bytes, want %d", total, want)
	}
}
