package cli

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestStepProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(3)
	progress.Update(1)
	progress.Update(2)
	progress.Finish()

	output := buf.String()
	for _, want := range []string{"Progress:", "(1/3)", "(2/3)", "(3/3)", "100%"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q: %q", want, output)
		}
	}
	if !strings.HasSuffix(output, "\n") {
		t.Error("Finish() should end the line")
	}
}

func TestStepProgress_ClampsOverrun(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(2)
	progress.Update(5)

	if !strings.Contains(buf.String(), "(2/2)") {
		t.Errorf("overrun not clamped: %q", buf.String())
	}
}

func TestStepProgress_ZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(0)
	progress.Update(0)
	progress.Finish()

	if strings.Contains(buf.String(), "Progress:") {
		t.Errorf("zero total should not render a bar: %q", buf.String())
	}
}

func TestStepProgress_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(3)
	progress.Error(fmt.Errorf("backend still cold"))

	output := buf.String()
	if !strings.Contains(output, "Error:") || !strings.Contains(output, "backend still cold") {
		t.Errorf("error output = %q", output)
	}
}

func TestStepProgress_Concurrent(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)
	progress.Start(1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(start int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				progress.Update(int64(start*100 + j))
			}
		}(i)
	}
	wg.Wait()
	progress.Finish()

	if buf.Len() == 0 {
		t.Error("expected progress output")
	}
}

func TestStepProgress_Options(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, WithLabel("Waking"), WithWidth(4), WithLabel(""), WithWidth(-1))

	progress.Start(4)
	progress.Update(2)

	output := buf.String()
	if !strings.Contains(output, "Waking: [==  ]  50% (2/4)") {
		t.Errorf("output = %q", output)
	}
	if strings.Contains(output, "Progress:") {
		t.Errorf("default label still rendered: %q", output)
	}
}

func TestNewProgressReporter_NilWriter(t *testing.T) {
	if NewProgressReporter(nil) == nil {
		t.Error("NewProgressReporter(nil) should not return nil")
	}
}
