// Package storage provides the object-store capability snapshots are read from.
//
// Keys use a flat, slash separated namespace:
//
//	{Category}/{PropertyFolder}/{Year}/{filename}
//
// Three backends implement ObjectStore:
//
//	FileStore    a directory tree on local disk
//	MemoryStore  an in-process map, used by tests and the report CLI
//	GCSStore     a Google Cloud Storage bucket
//
// The store is the source of truth. Nothing in this package caches.
package storage
