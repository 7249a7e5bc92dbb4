// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

// Package protocol pulls SQL statements out of captured database wire
// traffic so they can be masked.
package protocol

// Protocol names.
const (
	ProtoPostgres = "postgres"
	ProtoMySQL    = "mysql"
	ProtoUnknown  = "unknown"
)

// QueryAttributes holds the statement and metadata found in one client
// request buffer.
type QueryAttributes struct {
	Protocol    string
	DBSystem    string
	DBOperation string
	DBTable     string
	DBName      string
	DBStatement string

	// PreparedName is the statement name of an extended-protocol Parse or
	// the statement id of a MySQL execute.
	PreparedName string
}

// HasStatement reports whether a SQL statement was found.
func (a *QueryAttributes) HasStatement() bool {
	return a != nil && a.DBStatement != ""
}

// QueryParser extracts query attributes from a client request buffer.
type QueryParser interface {
	// Name returns the protocol name.
	Name() string

	// Detect checks if the data matches this protocol.
	Detect(data []byte) bool

	// Parse extracts attributes from a request buffer.
	Parse(request []byte) (*QueryAttributes, error)
}

// registry holds all registered protocol parsers.
var registry []QueryParser

func init() {
	// PostgreSQL first: its type byte framing is stricter than a MySQL
	// length prefix.
	registry = []QueryParser{
		&PostgresParser{},
		&MySQLParser{},
	}
}

// Detect identifies the protocol of a request buffer.
func Detect(data []byte) string {
	for _, p := range registry {
		if p.Detect(data) {
			return p.Name()
		}
	}
	return ProtoUnknown
}

// Parse uses the named protocol's parser to extract query attributes.
func Parse(proto string, request []byte) (*QueryAttributes, error) {
	for _, p := range registry {
		if p.Name() == proto {
			return p.Parse(request)
		}
	}

	return &QueryAttributes{
		Protocol:    ProtoUnknown,
		DBOperation: "QUERY",
	}, nil
}

// DetectAndParse detects the protocol and parses in one step.
func DetectAndParse(request []byte) (*QueryAttributes, error) {
	return Parse(Detect(request), request)
}
