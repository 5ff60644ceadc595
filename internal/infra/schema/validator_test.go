package schema

import "testing"

const testSchema = `{
  "type": "object",
  "required": ["packageId"],
  "properties": {"packageId": {"type": "string"}}
}`

func TestValidateJSON(t *testing.T) {
	doc, err := Compile("state.json", []byte(testSchema))
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	if err := doc.ValidateJSON([]byte(`{"packageId":"0x1","extra":true}`)); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}
	if err := doc.ValidateJSON([]byte(`{"packageId":7}`)); err == nil {
		t.Fatalf("expected type violation")
	}
	if err := doc.ValidateJSON([]byte(`{"packageId":`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestCompileRejectsInvalidSchema(t *testing.T) {
	if _, err := Compile("bad.json", []byte(`{"type": 12}`)); err == nil {
		t.Fatalf("expected compile error")
	}
}
