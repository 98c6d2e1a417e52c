// Package client assembles the generation engine from configuration.
//
// A Client owns the pieces every entry point needs:
//
//   - a catalog Session that lists Gemini models once and serves the fast
//     and standard chains, with configured OpenAI or Anthropic models
//     appended as an external tail
//   - a backend Registry that builds provider adapters lazily, so a
//     provider without an API key only fails when its tail entry is tried
//   - a Dispatcher and an Extractor wired to both
//
// # Basic Usage
//
//	c, err := client.New(client.Config{
//	    APIKeys: client.APIKeys{Google: os.Getenv("GOOGLE_API_KEY")},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := c.Extractor().SelectTop(ctx, articles, 3)
//
// Use [Client.NewExtractor] to build a request-scoped extractor whose
// events go to per-request channels.
package client
