// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so S3 and
// self-hosted MinIO both work, and so tests can use core/storage/mocks.
//
// The object cursor backend keeps one JSON document per budget and pass
// reports are archived as JSON. PutJSON, GetJSON and EnsureBucket cover
// both uses; IsNotFound recognises missing keys, which MinIO may only
// report on the first read.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    return err
//	}
//	err = storage.PutJSON(ctx, client, cfg.Storage.Bucket, "cursors/budget.json", cursor)
package storage
