// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package protocol

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// MySQL command types
const (
	mysqlComQuit        = 0x01
	mysqlComInitDB      = 0x02
	mysqlComQuery       = 0x03
	mysqlComPing        = 0x0e
	mysqlComStmtPrepare = 0x16
	mysqlComStmtExecute = 0x17
	mysqlComStmtClose   = 0x19
)

// MySQLParser parses MySQL client command packets.
type MySQLParser struct{}

func (p *MySQLParser) Name() string { return ProtoMySQL }

func (p *MySQLParser) Detect(data []byte) bool {
	if len(data) < 5 {
		return false
	}

	// MySQL packet: 3-byte length + 1-byte sequence + payload
	pktLen := packetLen(data)
	if data[3] != 0 || pktLen < 1 || pktLen >= 1<<20 {
		return false
	}
	switch data[4] {
	case mysqlComQuery, mysqlComStmtPrepare, mysqlComStmtExecute,
		mysqlComStmtClose, mysqlComPing, mysqlComQuit, mysqlComInitDB:
		return true
	}
	return false
}

func (p *MySQLParser) Parse(request []byte) (*QueryAttributes, error) {
	attrs := &QueryAttributes{
		Protocol:    ProtoMySQL,
		DBSystem:    "mysql",
		DBOperation: "QUERY",
	}
	if len(request) < 5 {
		return attrs, fmt.Errorf("mysql: packet too short (%d bytes)", len(request))
	}

	// The payload length includes the command byte.
	pktLen := packetLen(request)
	if pktLen < 1 {
		return attrs, fmt.Errorf("mysql: empty packet")
	}
	end := pktLen + 4
	if end > len(request) {
		end = len(request)
	}
	body := string(request[5:end])

	switch request[4] {
	case mysqlComQuery:
		attrs.DBStatement = body
		attrs.DBOperation, attrs.DBTable = describeSQL(body, "QUERY")

	case mysqlComStmtPrepare:
		attrs.DBStatement = body
		_, attrs.DBTable = describeSQL(body, "")
		attrs.DBOperation = "PREPARE"

	case mysqlComStmtExecute, mysqlComStmtClose:
		attrs.DBOperation = "EXECUTE"
		if request[4] == mysqlComStmtClose {
			attrs.DBOperation = "CLOSE"
		}
		if len(request) >= 9 {
			attrs.PreparedName = strconv.FormatUint(uint64(binary.LittleEndian.Uint32(request[5:9])), 10)
		}

	case mysqlComInitDB:
		attrs.DBName = body
		attrs.DBOperation = "USE"

	case mysqlComPing:
		attrs.DBOperation = "PING"

	case mysqlComQuit:
		attrs.DBOperation = "QUIT"
	}

	return attrs, nil
}

func packetLen(data []byte) int {
	return int(uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16)
}
