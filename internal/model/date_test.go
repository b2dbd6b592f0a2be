package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDateSet_Malformed(t *testing.T) {
	tests := []string{"2021-13-01", "01.02.2021", "", "2021-02-30"}
	for _, v := range tests {
		if _, err := ParseDateSet("2021-01-01", v); !errors.Is(err, ErrMalformedDate) {
			t.Errorf("%q: expected ErrMalformedDate, got %v", v, err)
		}
	}
}

func TestInterval_JSON(t *testing.T) {
	iv := NewInterval(MustParseDateSet("2021-01-10")[0], MustParseDateSet("2021-01-01")[0])
	data, err := json.Marshal(iv)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"start":"2021-01-01","end":"2021-01-10"}` {
		t.Errorf("Unexpected JSON %s", data)
	}

	var back Interval
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back != iv {
		t.Errorf("Expected %s, got %s", iv, back)
	}

	null, _ := json.Marshal(Interval{})
	if string(null) != `{"start":null,"end":null}` {
		t.Errorf("Expected nulls for the empty interval, got %s", null)
	}

	err = json.Unmarshal([]byte(`{"start":"2021-01-01","end":"soon"}`), &back)
	if !errors.Is(err, ErrMalformedDate) {
		t.Errorf("Expected ErrMalformedDate, got %v", err)
	}
}

func TestLabelSet_SortedJSON(t *testing.T) {
	ls := NewLabelSet("Therapie", "Diagnose")
	ls.Add("Diagnose")
	data, err := json.Marshal(ls)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `["Diagnose","Therapie"]` {
		t.Errorf("Unexpected JSON %s", data)
	}
}
