// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package protocol

import (
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		expect string
	}{
		{"PostgreSQL query", []byte{'Q', 0, 0, 0, 13, 'S', 'E', 'L', 'E', 'C', 'T', ' ', '1', 0}, ProtoPostgres},
		{"MySQL query", buildMySQLPacket(mysqlComQuery, []byte("SELECT 1")), ProtoMySQL},
		{"HTTP", []byte("GET / HTTP/1.1\r\n"), ProtoUnknown},
		{"empty", nil, ProtoUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.data)
			if got != tt.expect {
				t.Errorf("Detect() = %q, want %q", got, tt.expect)
			}
		})
	}
}

func TestDetectAndParse(t *testing.T) {
	attrs, err := DetectAndParse(buildPgMsg('Q', buildCString("DELETE FROM sessions WHERE expires < now()")))
	if err != nil {
		t.Fatalf("DetectAndParse: %v", err)
	}
	if attrs.Protocol != ProtoPostgres || attrs.DBOperation != "DELETE" || attrs.DBTable != "sessions" {
		t.Errorf("attrs = %+v", attrs)
	}

	attrs, err = DetectAndParse([]byte("garbage"))
	if err != nil {
		t.Fatalf("DetectAndParse: %v", err)
	}
	if attrs.Protocol != ProtoUnknown || attrs.HasStatement() {
		t.Errorf("attrs = %+v, want unknown without statement", attrs)
	}
}

func TestDescribeSQL(t *testing.T) {
	tests := []struct {
		query string
		op    string
		table string
	}{
		{"SELECT * FROM users WHERE id = 1", "SELECT", "users"},
		{"select name from public.accounts", "SELECT", "accounts"},
		{"INSERT INTO orders (a) VALUES (1)", "INSERT", "orders"},
		{"UPDATE \"Users\" SET a = 1", "UPDATE", "Users"},
		{"DELETE FROM t", "DELETE", "t"},
		{"CREATE TABLE IF NOT EXISTS events (id int)", "CREATE", "events"},
		{"/* hint */ SELECT 1", "SELECT", ""},
		{"SELECT * FROM (SELECT 1) s", "SELECT", ""},
		{"VACUUM", "QUERY", ""},
		{"SELECT * FROM items WHERE name = 'unterminated", "SELECT", "items"},
		{"", "QUERY", ""},
	}
	for _, tt := range tests {
		op, table := describeSQL(tt.query, "QUERY")
		if op != tt.op || table != tt.table {
			t.Errorf("describeSQL(%q) = %q, %q, want %q, %q", tt.query, op, table, tt.op, tt.table)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name    string
		proto   string
		data    []byte
		wantErr bool
	}{
		{"pg startup length zero", ProtoPostgres, []byte{0, 0, 0, 0, 0, 3, 0, 0}, true},
		{"pg startup length four", ProtoPostgres, []byte{0, 0, 0, 4, 0, 3, 0, 0, 'x'}, true},
		{"pg startup header only", ProtoPostgres, []byte{0, 0, 0, 8, 0, 3, 0, 0}, false},
		{"pg startup length past buffer", ProtoPostgres, []byte{0, 0, 1, 0, 0, 3, 0, 0, 'd', 'b'}, false},
		{"pg query length zero", ProtoPostgres, []byte{'Q', 0, 0, 0, 0}, true},
		{"pg short", ProtoPostgres, []byte{'Q', 0}, false},
		{"mysql empty payload", ProtoMySQL, []byte{0, 0, 0, 0, 3}, true},
		{"mysql length past buffer", ProtoMySQL, []byte{0xff, 0, 0, 0, mysqlComQuery, 'S'}, false},
		{"mysql short", ProtoMySQL, []byte{1, 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs, err := Parse(tt.proto, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%s, %v) error = %v, wantErr %v", tt.proto, tt.data, err, tt.wantErr)
			}
			if attrs == nil || attrs.Protocol != tt.proto {
				t.Errorf("Parse(%s, %v) attrs = %+v", tt.proto, tt.data, attrs)
			}
		})
	}
}
