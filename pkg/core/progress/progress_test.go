package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestDisabledIsNoop(t *testing.T) {
	b := New(10, "Annotating...", false)
	b.Add(3)
	b.Finish()
	if b.bar != nil {
		t.Errorf("disabled bar should not render")
	}
}

func TestProgressWritesDescription(t *testing.T) {
	var buf bytes.Buffer
	b := &Bar{bar: progressCreate(4, "Annotating...", &buf)}
	b.Add(4)
	b.Finish()
	if !strings.Contains(buf.String(), "Annotating...") {
		t.Errorf("description not rendered: %q", buf.String())
	}
}
