package inventory

import (
	"errors"
	"strings"
	"testing"
)

func TestReadRecords_Flat(t *testing.T) {
	in := `Item Code,Inv Org,Type,Current Inv,Target Inv
FG-1,THRYPM,FG,"1,200",1000
RM-1,THRYPM,RM,,50
,THRYPM,RM,1,1
`
	recs, err := ReadRecords(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}

	if recs[0].Current != 1200 || !recs[0].HasCurrent {
		t.Errorf("recs[0].Current = %v (has %v), want 1200", recs[0].Current, recs[0].HasCurrent)
	}
	if recs[0].Target != 1000 || !recs[0].HasTarget {
		t.Errorf("recs[0].Target = %v (has %v), want 1000", recs[0].Target, recs[0].HasTarget)
	}
	if recs[1].HasCurrent {
		t.Error("recs[1] has empty current, HasCurrent should be false")
	}
	if recs[1].Category != "RM" {
		t.Errorf("recs[1].Category = %q, want RM", recs[1].Category)
	}
	if recs[2].Valid() {
		t.Error("row without item code should not be valid")
	}
}

func TestReadRecords_Long(t *testing.T) {
	in := `Item Code,Inv Org,Type,Metric,Date,Value
FG-1,THRYPM,FG,Tot.Inventory (Forecast),2024-01-01,100
FG-1,THRYPM,FG,Tot.Target Inv.,2024-01-01,80
FG-1,THRYPM,FG,Safety Stock,2024-01-01,5
FG-1,THRYPM,FG,Tot.Inventory (Forecast),2024-01-02,oops
`
	recs, err := ReadRecords(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("expected 4 records, got %d", len(recs))
	}

	tests := []struct {
		idx                   int
		hasCurrent, hasTarget bool
		current, target       float64
	}{
		{0, true, false, 100, 0},
		{1, false, true, 0, 80},
		{2, false, false, 0, 0},
		{3, false, false, 0, 0},
	}
	for _, tt := range tests {
		r := recs[tt.idx]
		if r.HasCurrent != tt.hasCurrent || r.HasTarget != tt.hasTarget ||
			r.Current != tt.current || r.Target != tt.target {
			t.Errorf("recs[%d] = %+v, want current=%v/%v target=%v/%v",
				tt.idx, r, tt.current, tt.hasCurrent, tt.target, tt.hasTarget)
		}
	}
}

func TestReadRecords_Errors(t *testing.T) {
	if _, err := ReadRecords(strings.NewReader("")); !errors.Is(err, ErrNoHeader) {
		t.Errorf("empty input error = %v, want ErrNoHeader", err)
	}
	if _, err := ReadRecords(strings.NewReader("Foo,Bar\n1,2\n")); err == nil {
		t.Error("expected error for missing item/location columns")
	}
}

func TestReadBOM(t *testing.T) {
	in := ` Plant , Parent Item , Child Item , Quantity Per
THRYPM,FG-1,RM-1,2.5
THRYPM,FG-1,,1
,FG-2,RM-2,
`
	boms, err := ReadBOM(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadBOM: %v", err)
	}
	if len(boms) != 3 {
		t.Fatalf("expected 3 rows, got %d: %+v", len(boms), boms)
	}
	want := BOM{Parent: "FG-1", Child: "RM-1", Site: "THRYPM", Ratio: 2.5}
	if boms[0] != want {
		t.Errorf("boms[0] = %+v, want %+v", boms[0], want)
	}
	if boms[1].Valid() {
		t.Error("row without child should be kept but not valid")
	}
	if boms[2].Valid() {
		t.Error("row without site should be kept but not valid")
	}
}

func TestReadBOM_Aliases(t *testing.T) {
	in := "site,parent,child,ratio\nP,A,B,1\n"
	boms, err := ReadBOM(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadBOM: %v", err)
	}
	if len(boms) != 1 || boms[0].Site != "P" || boms[0].Ratio != 1 {
		t.Errorf("boms = %+v", boms)
	}
}
