// Package simpleassets provides a reusable library for accepting binary assets
// (images and videos), publishing them asynchronously to a storage location and
// searching previously uploaded assets.
//
// It exposes a single Service interface that orchestrates upload acceptance and
// search. Uploads are persisted synchronously in PENDING state and then handed
// to a Dispatcher, which runs the Publisher state machine out-of-band:
//
//	PENDING -> UPLOADING -> COMPLETED | FAILED
//
// Publish outcomes are never returned to callers; they are only observable
// through the persisted Status of the asset.
//
// Repository implementations (memory, Postgres, SQLite) live under repo/ and
// blob stores (memory, filesystem) live under storage/.
package simpleassets
