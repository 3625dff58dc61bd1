package http

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestReportDataMarshalsCamelCaseKeys(t *testing.T) {
	payload, err := json.Marshal(ReportData{
		CurrentStatus: "Draft",
		ReviewedBy:    "Lena Leader",
	})
	if err != nil {
		t.Fatalf("marshal report: %v", err)
	}
	body := string(payload)
	for _, key := range []string{`"currentStatus":"Draft"`, `"reviewedBy":"Lena Leader"`, `"reportTitle"`, `"testerName"`} {
		if !strings.Contains(body, key) {
			t.Fatalf("expected %s in %s", key, body)
		}
	}
	if strings.Contains(body, "_") {
		t.Fatalf("report payload must not carry snake_case keys: %s", body)
	}
}

func TestCreateReportRequestAcceptsCamelCaseKeys(t *testing.T) {
	var req CreateReportRequest
	raw := `{"reportTitle":"Q1 Assessment","associatedAssetId":10}`
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if req.ReportTitle != "Q1 Assessment" || req.AssociatedAssetID != 10 {
		t.Fatalf("request keys not bound: %+v", req)
	}
}
