package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(filepath.Join(t.TempDir(), "catalog", "mupetalk.db"))
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestInterviewRoundTrip(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	rec := &InterviewRecord{
		InterviewID:     "7",
		InterviewerCode: "hv229",
		BlockCount:      42,
		MissingFileIDs:  []int{4, 5, 6},
	}
	if err := c.UpsertInterview(ctx, rec); err != nil {
		t.Fatalf("UpsertInterview() error = %v", err)
	}

	got, err := c.GetInterview(ctx, "7")
	if err != nil {
		t.Fatalf("GetInterview() error = %v", err)
	}
	if got.InterviewerCode != "hv229" || got.BlockCount != 42 {
		t.Errorf("got %+v", got)
	}
	if !reflect.DeepEqual(got.MissingFileIDs, []int{4, 5, 6}) {
		t.Errorf("MissingFileIDs = %v, want [4 5 6]", got.MissingFileIDs)
	}
}

func TestUpsertInterviewUpdatesInPlace(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	if err := c.UpsertInterview(ctx, &InterviewRecord{InterviewID: "7", InterviewerCode: "hv229", BlockCount: 10}); err != nil {
		t.Fatal(err)
	}
	if err := c.UpsertInterview(ctx, &InterviewRecord{InterviewID: "7", InterviewerCode: "hv229_hv230", BlockCount: 12}); err != nil {
		t.Fatalf("second UpsertInterview() error = %v", err)
	}

	got, err := c.GetInterview(ctx, "7")
	if err != nil {
		t.Fatal(err)
	}
	if got.InterviewerCode != "hv229_hv230" || got.BlockCount != 12 {
		t.Errorf("got %+v, want updated record", got)
	}
}

func TestGetInterviewNotFound(t *testing.T) {
	c := newTestCatalog(t)
	if _, err := c.GetInterview(context.Background(), "999"); err == nil {
		t.Error("GetInterview() expected error for unknown interview")
	}
}

func TestSampleRecords(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	if err := c.UpsertInterview(ctx, &InterviewRecord{InterviewID: "7", InterviewerCode: "hv229", BlockCount: 3}); err != nil {
		t.Fatal(err)
	}

	records := []*SampleRecord{
		{InterviewID: "7", UnitIndex: 0, GroupID: -1, AudioPath: "sample_0.wav", MetadataPath: "sample_0.json"},
		{InterviewID: "7", UnitIndex: 0, GroupID: 1, AudioPath: "sample_0_group_1.wav", MetadataPath: "sample_0_group_1.json"},
	}
	for _, rec := range records {
		if err := c.RecordSample(ctx, rec); err != nil {
			t.Fatalf("RecordSample() error = %v", err)
		}
		if rec.ID == "" {
			t.Error("RecordSample() did not assign an id")
		}
	}

	got, err := c.ListSamples(ctx, "7")
	if err != nil {
		t.Fatalf("ListSamples() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListSamples() returned %d records, want 2", len(got))
	}
	if got[0].GroupID != -1 || got[1].GroupID != 1 {
		t.Errorf("group ids = %d, %d, want -1, 1", got[0].GroupID, got[1].GroupID)
	}
}
