package descriptions

import (
	"testing"
)

func TestGetToolDescription(t *testing.T) {
	for _, name := range []string{"pdf_map_fields", "pdf_fill_form", "pdf_scan_fields", "pdf_read_text", "pdf_validate_file", "pdf_search_directory", "pdf_server_info"} {
		if desc := GetToolDescription(name); desc == "" || desc == "Tool description not available" {
			t.Errorf("Expected a description for %s", name)
		}
	}

	if got := GetToolDescription("pdf_unknown"); got != "Tool description not available" {
		t.Errorf("Unexpected description for unknown tool: %s", got)
	}
}

func TestGetAllToolNames(t *testing.T) {
	names := GetAllToolNames()
	if len(names) != len(ToolDescriptions) {
		t.Fatalf("Expected %d names, got %d", len(ToolDescriptions), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("Names are not sorted: %v", names)
		}
	}
}
