// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package protocol

import (
	"testing"
)

// buildMySQLPacket builds a command packet: len(3, LE) + seq(1) + cmd(1) + body
func buildMySQLPacket(cmd byte, body []byte) []byte {
	n := len(body) + 1
	pkt := []byte{byte(n), byte(n >> 8), byte(n >> 16), 0, cmd}
	return append(pkt, body...)
}

func TestMySQLParse(t *testing.T) {
	p := &MySQLParser{}
	tests := []struct {
		name      string
		packet    []byte
		operation string
		statement string
		table     string
		prepared  string
		db        string
	}{
		{
			name:      "query",
			packet:    buildMySQLPacket(mysqlComQuery, []byte("UPDATE accounts SET balance = 10 WHERE id = 3")),
			operation: "UPDATE",
			statement: "UPDATE accounts SET balance = 10 WHERE id = 3",
			table:     "accounts",
		},
		{
			name:      "prepare",
			packet:    buildMySQLPacket(mysqlComStmtPrepare, []byte("SELECT * FROM `shop`.`items` WHERE id = ?")),
			operation: "PREPARE",
			statement: "SELECT * FROM `shop`.`items` WHERE id = ?",
			table:     "items",
		},
		{
			name:      "execute",
			packet:    buildMySQLPacket(mysqlComStmtExecute, []byte{7, 0, 0, 0, 0, 1, 0, 0, 0}),
			operation: "EXECUTE",
			prepared:  "7",
		},
		{
			name:      "init db",
			packet:    buildMySQLPacket(mysqlComInitDB, []byte("shop")),
			operation: "USE",
			db:        "shop",
		},
		{
			name:      "ping",
			packet:    buildMySQLPacket(mysqlComPing, nil),
			operation: "PING",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs, err := p.Parse(tt.packet)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if attrs.DBOperation != tt.operation {
				t.Errorf("DBOperation = %q, want %q", attrs.DBOperation, tt.operation)
			}
			if attrs.DBStatement != tt.statement {
				t.Errorf("DBStatement = %q, want %q", attrs.DBStatement, tt.statement)
			}
			if attrs.DBTable != tt.table {
				t.Errorf("DBTable = %q, want %q", attrs.DBTable, tt.table)
			}
			if attrs.PreparedName != tt.prepared {
				t.Errorf("PreparedName = %q, want %q", attrs.PreparedName, tt.prepared)
			}
			if attrs.DBName != tt.db {
				t.Errorf("DBName = %q, want %q", attrs.DBName, tt.db)
			}
		})
	}
}

func TestMySQLParseShort(t *testing.T) {
	p := &MySQLParser{}
	if _, err := p.Parse([]byte{1, 0, 0}); err == nil {
		t.Error("expected error for short packet")
	}
}

func TestMySQLDetect(t *testing.T) {
	p := &MySQLParser{}
	if !p.Detect(buildMySQLPacket(mysqlComQuery, []byte("SELECT 1"))) {
		t.Error("should detect COM_QUERY")
	}
	pkt := buildMySQLPacket(mysqlComQuery, []byte("SELECT 1"))
	pkt[3] = 2
	if p.Detect(pkt) {
		t.Error("should not detect non-zero sequence id")
	}
	if p.Detect(buildMySQLPacket(0x42, nil)) {
		t.Error("should not detect unknown command")
	}
}
