// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestWriterText(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, "")
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	records := []Record{
		{Masked: "SELECT ?"},
		{Masked: "SELECT ? -- tail\n"},
		{Err: errors.New("boom")},
		{Masked: "SELECT ?", Attributes: map[string]string{"db.system": "mysql", "db.operation": "SELECT"}},
	}
	for _, r := range records {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	want := "SELECT ?\nSELECT ? -- tail\n\n-- db.operation=SELECT db.system=mysql\nSELECT ?\n"
	if buf.String() != want {
		t.Errorf("text output = %q, want %q", buf.String(), want)
	}
}

func TestWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, FormatJSON)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	w.Write(Record{Source: "q.sql", Masked: "SELECT ? FROM t WHERE id IN (?) LIMIT 5", MaskedLiterals: 1, CollapsedLists: 1, PreservedLiterals: 1})
	w.Write(Record{Source: "line:2", Err: errors.New("sqlparse: line 1, column 8: unterminated string")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON lines, got %d: %q", len(lines), buf.String())
	}

	var first map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if first["source"] != "q.sql" || first["masked"] != "SELECT ? FROM t WHERE id IN (?) LIMIT 5" {
		t.Errorf("unexpected record %v", first)
	}
	if first["masked_literals"] != float64(1) || first["collapsed_lists"] != float64(1) || first["preserved_literals"] != float64(1) {
		t.Errorf("unexpected counts %v", first)
	}
	if _, ok := first["error"]; ok {
		t.Error("error should be omitted on success")
	}

	var second map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !strings.Contains(second["error"].(string), "unterminated string") {
		t.Errorf("error = %v", second["error"])
	}
}

func TestWriterUnknownFormat(t *testing.T) {
	if _, err := NewWriter(&bytes.Buffer{}, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriterConcurrent(t *testing.T) {
	var buf bytes.Buffer
	w, _ := NewWriter(&buf, FormatText)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Write(Record{Masked: "SELECT ?"})
		}()
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "SELECT ?\n"); got != 50 {
		t.Errorf("expected 50 whole records, got %d", got)
	}
}
