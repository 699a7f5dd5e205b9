package server

import (
	"testing"
	"time"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := &Metrics{}

	m.RecordUpload(100, 10*time.Millisecond)
	m.RecordUpload(50, 30*time.Millisecond)
	m.RecordUploadError()
	m.RecordStatic(7, time.Millisecond)
	m.RecordStaticNotFound()
	m.RecordStaticNotFound()
	m.RecordStaticError()
	m.RecordRequest(200)
	m.RecordRequest(404)
	m.RecordRequest(500)

	s := m.Snapshot()
	if s.UploadsTotal != 2 || s.UploadBytesTotal != 150 || s.UploadErrorsTotal != 1 {
		t.Errorf("upload counters = %+v", s)
	}
	if s.UploadAvgDurationMs != 20 {
		t.Errorf("upload avg = %v, want 20", s.UploadAvgDurationMs)
	}
	if s.StaticServedTotal != 1 || s.StaticBytesTotal != 7 || s.StaticNotFoundTotal != 2 || s.StaticErrorsTotal != 1 {
		t.Errorf("static counters = %+v", s)
	}
	if s.RequestsTotal != 3 || s.RequestErrors4xx != 1 || s.RequestErrors5xx != 1 {
		t.Errorf("request counters = %+v", s)
	}
}

func TestAvgDuration_Zero(t *testing.T) {
	if got := avgDuration(time.Second, 0); got != 0 {
		t.Errorf("avgDuration with zero count = %v", got)
	}
}
