// Package presser implements the gRPC transport for the button presser.
//
// The service is described by hand with protobuf well-known types
// (Empty, UInt32Value, Struct) so no generated code is needed. The package
// provides the service descriptor, a server that calls into a business-service
// interface, and a thin client.
package presser
