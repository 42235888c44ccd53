package monitoring

import (
	"errors"
	"testing"
	"time"
)

type captureMonitor struct {
	errs []error
	tags []map[string]string
}

func (c *captureMonitor) CaptureException(err error, tags map[string]string) {
	c.errs = append(c.errs, err)
	c.tags = append(c.tags, tags)
}
func (c *captureMonitor) Recover()            {}
func (c *captureMonitor) Flush(time.Duration) {}

func TestCaptureUsesInstalledMonitor(t *testing.T) {
	prev := Current()
	defer Init(prev)

	m := &captureMonitor{}
	Init(m)
	Init(nil)

	CaptureException(nil, nil)
	CaptureException(errors.New("provider down"), map[string]string{"operation": "refresh"})
	if len(m.errs) != 1 {
		t.Fatalf("expected 1 captured error, got %d", len(m.errs))
	}
	if m.tags[0]["operation"] != "refresh" {
		t.Fatalf("tags not forwarded: %v", m.tags[0])
	}
}
