// Package sqlcore runs Query, Append and schema creation for the SQL engines.
//
// The engines differ in how a filter predicate is expressed, how values are cast,
// how a row is scanned and which DDL creates the table. A Dialect captures these
// differences; everything else, including logging, metrics and tracing, lives here.
package sqlcore
