// Package objectstore removes user-owned assets (profile images) from object storage.
//
// Assets are referenced from user records either by an internally managed object key
// ("avatars/u123.png?v=2") or by an external URL ("https://cdn.example.com/x.png").
// Only internal keys are owned by this system and eligible for deletion. See
// [AssetKey] and [DeleteUserImage].
//
// [S3Store] talks to any S3-compatible service (AWS S3, Cloudflare R2, MinIO).
// [MemoryStore] records deletes for tests.
package objectstore
