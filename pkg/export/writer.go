// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Record is the outcome of masking one input.
type Record struct {
	Source            string
	Masked            string
	MaskedLiterals    int
	CollapsedLists    int
	PreservedLiterals int
	Fallback          bool
	Attributes        map[string]string // wire metadata such as db.system
	Err               error
}

// Writer prints records as plain masked SQL or as JSON lines. It is safe
// for concurrent use; each record is written with a single call.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	format string
}

// NewWriter creates a Writer. An empty format selects text.
func NewWriter(w io.Writer, format string) (*Writer, error) {
	switch format {
	case "":
		format = FormatText
	case FormatText, FormatJSON:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return &Writer{w: w, format: format}, nil
}

type jsonRecord struct {
	Source            string            `json:"source"`
	Masked            string            `json:"masked"`
	MaskedLiterals    int               `json:"masked_literals"`
	CollapsedLists    int               `json:"collapsed_lists"`
	PreservedLiterals int               `json:"preserved_literals"`
	Fallback          bool              `json:"fallback,omitempty"`
	Attributes        map[string]string `json:"attributes,omitempty"`
	Error             string            `json:"error,omitempty"`
}

// Write prints one record. In text mode a failed record prints an empty
// line so line-oriented output stays aligned with its input.
func (w *Writer) Write(r Record) error {
	var b []byte
	if w.format == FormatJSON {
		jr := jsonRecord{
			Source:            r.Source,
			Masked:            r.Masked,
			MaskedLiterals:    r.MaskedLiterals,
			CollapsedLists:    r.CollapsedLists,
			PreservedLiterals: r.PreservedLiterals,
			Fallback:          r.Fallback,
			Attributes:        r.Attributes,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		var err error
		b, err = json.Marshal(jr)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		b = append(b, '\n')
	} else {
		var sb strings.Builder
		if len(r.Attributes) > 0 {
			sb.WriteString("-- ")
			sb.WriteString(formatAttrs(r.Attributes))
			sb.WriteByte('\n')
		}
		if r.Err == nil {
			sb.WriteString(r.Masked)
		}
		if !strings.HasSuffix(sb.String(), "\n") || r.Err != nil {
			sb.WriteByte('\n')
		}
		b = []byte(sb.String())
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.w.Write(b)
	return err
}

func formatAttrs(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, attrs[k]))
	}
	return strings.Join(parts, " ")
}
