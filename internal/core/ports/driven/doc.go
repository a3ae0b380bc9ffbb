// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Chunk Production
//
// These run locally and never block on the network:
//
//   - FileSource: Enumerates eligible files and watches for changes
//   - Splitter: Produces natural chunk boundaries for one file
//   - PageExtractor: Extracts page text from paginated formats (PDF)
//   - ChunkProcessor: Post-merge chunk enrichment (keywords)
//
// # Ingestion
//
// These wrap external services and may fail per call:
//
//   - EmbeddingService: Generates vector embeddings
//   - VectorStore: Persists and searches embedded chunks
//   - DocStore: Snapshot of stored chunks for hash-based change detection
//   - RunStore: Records indexing runs
//   - KeywordExtractor: Optional LLM keyword enrichment
//   - LLMService: Language model used for answers and extraction
//
// # Other
//
//   - ConfigStore: Application configuration file
//   - Fetcher: Downloads web pages for scraping
//   - PageParser: Extracts links and readable text from HTML
//   - AIConfigValidator: Pings configured AI providers
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
