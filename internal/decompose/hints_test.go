package decompose

import (
	"reflect"
	"testing"
)

func TestExtractHintsMarkers(t *testing.T) {
	tests := []struct {
		name            string
		request         string
		wantSequencing  bool
		wantParallel    bool
		wantConditional bool
	}{
		{
			"sequencing words",
			"First migrate the schema, then backfill, finally cut over",
			true, false, false,
		},
		{
			"parallel phrase",
			"run the linters and the tests in parallel",
			false, true, false,
		},
		{
			"conditional phrase",
			"roll back if the error rate climbs",
			false, false, true,
		},
		{
			"no markers",
			"fix the bug in login",
			false, false, false,
		},
		{
			"sequencing word inside another word does not count",
			"update the firstname field",
			false, false, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hints := ExtractHints(tt.request)
			if hints.HasSequencing != tt.wantSequencing {
				t.Errorf("HasSequencing = %v, want %v", hints.HasSequencing, tt.wantSequencing)
			}
			if hints.HasParallel != tt.wantParallel {
				t.Errorf("HasParallel = %v, want %v", hints.HasParallel, tt.wantParallel)
			}
			if hints.HasConditional != tt.wantConditional {
				t.Errorf("HasConditional = %v, want %v", hints.HasConditional, tt.wantConditional)
			}
		})
	}
}

func TestExtractHintsNumberedSteps(t *testing.T) {
	tests := []struct {
		name    string
		request string
		want    []string
	}{
		{
			"inline steps",
			"do the migration: 1. add the schema 2) backfill old rows",
			[]string{"add the schema", "backfill old rows"},
		},
		{
			"steps on separate lines",
			"1. export the data\n2. verify the checksums\n3. import into the replica",
			[]string{"export the data", "verify the checksums", "import into the replica"},
		},
		{
			"no steps",
			"refactor the session handling",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hints := ExtractHints(tt.request)
			if !reflect.DeepEqual(hints.NumberedSteps, tt.want) {
				t.Errorf("NumberedSteps = %v, want %v", hints.NumberedSteps, tt.want)
			}
		})
	}
}
