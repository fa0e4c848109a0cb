// Package mirror publishes mod archives to an S3-compatible bucket so clients
// can download from object storage instead of the game server's CDN.
//
// Objects are stored as {prefix}/{name}.zip, the same layout
// transfer.ObjectSource reads from.
package mirror
