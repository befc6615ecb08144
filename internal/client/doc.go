// Package client provides the requester side of the status protocol: it signs a
// status request, delivers it over a Transport and verifies the authenticity of
// the signed response before any of its contents are trusted.
package client
