// Package connectors holds the remote store implementations.
//
// google/drive implements driven.RemoteStore and driven.RemoteStoreFactory
// over the Google Drive v3 API. Shared Google infrastructure (credentials,
// error mapping, rate limiting) lives in google.
package connectors
