package world

import (
	"encoding/json"
	"testing"
)

func TestEventCodecRoundTrip(t *testing.T) {
	events := []Event{
		&PlaceBuilding{Building: "hut", X: 3, Y: 4},
		&DemolishBuilding{Building: 7},
		&AssignWorker{Worker: 2, Building: 7},
		&UnassignWorker{Worker: 2},
		&SetRecipe{Building: 7, Recipe: "cut_wood"},
		&RecruitWorker{Worker: "porter", X: 1, Y: 1},
		&GrantResources{Resources: map[string]int{"wood": 5}},
	}
	for _, ev := range events {
		raw, err := EncodeEvent(ev)
		if err != nil {
			t.Fatalf("%s: encode: %v", ev.Kind(), err)
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s: envelope: %v", ev.Kind(), err)
		}
		if env.Type != ev.Kind() {
			t.Fatalf("type tag %q, want %q", env.Type, ev.Kind())
		}
		back, err := DecodeEvent(raw)
		if err != nil {
			t.Fatalf("%s: decode: %v", ev.Kind(), err)
		}
		if back.Kind() != ev.Kind() {
			t.Fatalf("decoded kind %q, want %q", back.Kind(), ev.Kind())
		}
	}
}

func TestDecodeEventErrors(t *testing.T) {
	if _, err := DecodeEvent([]byte(`{`)); err == nil {
		t.Fatalf("malformed JSON accepted")
	}
	if _, err := DecodeEvent([]byte(`{"type":"teleport"}`)); err == nil {
		t.Fatalf("unknown event type accepted")
	}
}

func TestMalformedEventRejectedNotFatal(t *testing.T) {
	w := testWorld(t)
	res, err := w.Step([][]byte{[]byte(`{"type":"teleport"}`)})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if len(res.Rejections) != 1 || res.Rejections[0].Kind != "decode" {
		t.Fatalf("rejections = %+v", res.Rejections)
	}
}
