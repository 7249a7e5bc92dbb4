// Copyright 2024-2026 Madhukar Beema, Distinguished Engineer. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package protocol

import (
	"encoding/binary"
	"fmt"
)

// PostgreSQL frontend message types
const (
	pgQuery    = 'Q'
	pgParse    = 'P'
	pgBind     = 'B'
	pgDescribe = 'D'
	pgExecute  = 'E'
	pgSync     = 'S'
	pgClose    = 'C'
)

// maxPgMessage bounds a single message length accepted by Detect.
const maxPgMessage = 1 << 20

// PostgresParser parses PostgreSQL frontend messages. It follows
// Parse→Bind→Execute within one buffer; statements prepared in earlier
// buffers are not remembered.
type PostgresParser struct{}

func (p *PostgresParser) Name() string { return ProtoPostgres }

func (p *PostgresParser) Detect(data []byte) bool {
	if len(data) < 5 {
		return false
	}

	switch data[0] {
	case pgQuery, pgParse, pgBind, pgExecute:
		msgLen := binary.BigEndian.Uint32(data[1:5])
		if msgLen > 4 && msgLen < maxPgMessage {
			return true
		}
	}

	// Startup message (no type byte, starts with length + version 3.0)
	if len(data) >= 8 {
		msgLen := binary.BigEndian.Uint32(data[0:4])
		version := binary.BigEndian.Uint32(data[4:8])
		if version == 0x00030000 && msgLen > 8 && msgLen < 1024 {
			return true
		}
	}

	return false
}

func (p *PostgresParser) Parse(request []byte) (*QueryAttributes, error) {
	attrs := &QueryAttributes{
		Protocol:    ProtoPostgres,
		DBSystem:    "postgresql",
		DBOperation: "QUERY",
	}

	if len(request) >= 8 && binary.BigEndian.Uint32(request[4:8]) == 0x00030000 {
		attrs.DBOperation = "CONNECT"
		db, err := startupDatabase(request)
		if err != nil {
			return attrs, err
		}
		attrs.DBName = db
		return attrs, nil
	}

	if err := p.walk(request, attrs); err != nil {
		return attrs, err
	}

	attrs.DBOperation, attrs.DBTable = describeSQL(attrs.DBStatement, attrs.DBOperation)
	return attrs, nil
}

// walk visits every message in the buffer. Extended query sends
// Parse + Bind + Describe + Execute + Sync in sequence.
func (p *PostgresParser) walk(data []byte, attrs *QueryAttributes) error {
	parsed := map[string]string{} // statement name → SQL in this buffer
	var lastBound string

	offset := 0
	for offset+5 <= len(data) {
		msgType := data[offset]
		msgLen := binary.BigEndian.Uint32(data[offset+1 : offset+5])

		if msgLen < 4 || offset+1+int(msgLen) > len(data) {
			if attrs.DBStatement == "" {
				return fmt.Errorf("postgres: truncated %q message at offset %d", msgType, offset)
			}
			return nil
		}
		payload := data[offset+5 : offset+1+int(msgLen)]

		switch msgType {
		case pgQuery:
			attrs.DBStatement = extractCString(payload)
			return nil

		case pgParse:
			// name(cstring) + query(cstring) + numparams(int16) + param types
			stmtName := extractCString(payload)
			if len(stmtName)+1 > len(payload) {
				break
			}
			query := extractCString(payload[len(stmtName)+1:])
			parsed[stmtName] = query
			if attrs.DBStatement == "" {
				attrs.DBStatement = query
				attrs.PreparedName = stmtName
			}

		case pgBind:
			// portal(cstring) + statement(cstring) + ...
			portal := extractCString(payload)
			if len(portal)+1 > len(payload) {
				break
			}
			lastBound = extractCString(payload[len(portal)+1:])
			if sql, ok := parsed[lastBound]; ok {
				attrs.DBStatement = sql
				attrs.PreparedName = lastBound
			} else if attrs.DBStatement == "" {
				attrs.PreparedName = lastBound
			}

		case pgExecute:
			if attrs.DBStatement == "" && lastBound != "" {
				attrs.PreparedName = lastBound
				attrs.DBOperation = "EXECUTE"
			}

		case pgDescribe, pgSync, pgClose:
		}

		offset += 1 + int(msgLen)
	}
	return nil
}

// startupDatabase returns the "database" parameter of a startup message.
// The length field counts itself and the protocol version.
func startupDatabase(data []byte) (string, error) {
	msgLen := binary.BigEndian.Uint32(data[0:4])
	if msgLen < 8 {
		return "", fmt.Errorf("postgres: startup message length %d is shorter than its header", msgLen)
	}
	end := len(data)
	if uint64(msgLen) < uint64(end) {
		end = int(msgLen)
	}
	params := data[8:end]
	for len(params) > 0 {
		key := extractCString(params)
		if key == "" || len(key)+1 > len(params) {
			return "", nil
		}
		params = params[len(key)+1:]
		value := extractCString(params)
		if key == "database" {
			return value, nil
		}
		if len(value)+1 > len(params) {
			return "", nil
		}
		params = params[len(value)+1:]
	}
	return "", nil
}

// extractCString extracts a null-terminated string from a byte slice.
func extractCString(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}
