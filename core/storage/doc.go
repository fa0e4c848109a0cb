// Package storage provides access to an S3-compatible bucket used as a mod mirror.
//
// A LAN or self-hosted MinIO mirror can stand in for the game server's HTTP
// CDN: archives are stored as {prefix}/{modName}.zip and downloaded through
// the same transfer pipeline (see transfer.ObjectSource). The mirror command
// uses the write side of the interface to publish and prune archives.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: verify or create the mirror bucket.
//   - StatObject: size of an archive before streaming it.
//   - GetObject: retrieves an archive as a stream.
//   - PutObject: publishes an archive.
//   - ListObjects / RemoveObjects: enumerate and prune archives under a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, config.Bucket)
//	key := storage.ObjectKey(config.Prefix, "FS25_cropA")
package storage
