// Package importers turns other read-later services' export files into
// saved entries.
//
// # Architecture
//
//	Export file → Normalizer → iter.Seq[Item] → Importer → actions.Dispatcher
//
// A Normalizer only parses. It yields one Item per link, in file order, and
// never touches storage. The Importer feeds every Item through the
// dispatcher's add verb in bulk mode and then applies the item's favorite
// and archived flags with the regular toggle verbs, so an import follows the
// exact same rules as links saved by hand.
//
// # Providers
//
//   - pocket: HTML, links in <ul> lists; the second list holds read items
//   - instapaper: HTML, links in <ol> lists; the second list holds archived items
//   - readability: JSON, flat records with article__url, favorite and archive
//   - poche: JSON, this application's own export; -1 marks a set flag
//
// # Example Usage
//
//	importer := importers.NewImporter(dispatcher, db, auditService, sessionQueue)
//	result, err := importer.Import(ctx, importers.ProviderPocket, file, userID, nil)
package importers
