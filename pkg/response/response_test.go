//go:build !integration

package response

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSuccessEnvelope(t *testing.T) {
	res := Success("OK", "override saved", nil)

	if res.Code != "OK" || res.Message != "override saved" {
		t.Fatalf("unexpected envelope: %+v", res)
	}

	// nil data must vanish from the wire shape
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(raw), "data") {
		t.Fatalf("nil data must be omitted, got %s", raw)
	}
}

func TestErrorEnvelopeCarriesData(t *testing.T) {
	res := Error("BAD_REQUEST", "invalid body", map[string]string{"field": "floor_price"})

	if res.Code != "BAD_REQUEST" || res.Data == nil {
		t.Fatalf("unexpected envelope: %+v", res)
	}
}
